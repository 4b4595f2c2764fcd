package helpers

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/doeshing/voicectl/internal/domain"
)

func rec(text string, status domain.Status, source domain.Source, platform domain.Platform) domain.CommandRecord {
	return domain.CommandRecord{Text: text, Status: status, Source: source, Platform: string(platform)}
}

func TestAnalyzeHistory(t *testing.T) {
	records := []domain.CommandRecord{
		rec("Open  Google.com", domain.StatusSuccess, domain.SourceVoice, domain.PlatformLinux),
		rec("open google.com", domain.StatusSuccess, domain.SourceText, domain.PlatformLinux),
		rec("make me a sandwich", domain.StatusError, domain.SourceVoice, domain.PlatformLinux),
		rec("mute", domain.StatusSuccess, domain.SourceVoice, domain.PlatformLinux),
	}

	stats := AnalyzeHistory(records)
	assert.Equal(t, 4, stats.Total)
	assert.Equal(t, 3, stats.Successful)
	assert.Equal(t, 3, stats.BySource[domain.SourceVoice])
	assert.Equal(t, 75.0, CalculateSuccessRate(stats.Successful, stats.Total))

	top := CalculateTopCommands(stats.Frequency, 2)
	assert.Equal(t, []CommandStatistic{
		{Command: "open google.com", Count: 2},
		{Command: "make me a sandwich", Count: 1},
	}, top)
}

func TestCalculateSuccessRateEmpty(t *testing.T) {
	assert.Zero(t, CalculateSuccessRate(0, 0))
}

func TestDeriveUndoHints(t *testing.T) {
	records := []domain.CommandRecord{
		rec("shutdown in 5 minutes", domain.StatusSuccess, domain.SourceVoice, domain.PlatformLinux),
		rec("shut down the computer", domain.StatusSuccess, domain.SourceVoice, domain.PlatformLinux),
		rec("shutdown", domain.StatusError, domain.SourceText, domain.PlatformWindows),
		rec("open calculator", domain.StatusSuccess, domain.SourceText, domain.PlatformDarwin),
	}
	assert.Equal(t, []string{cancelShutdownHints[string(domain.PlatformLinux)]}, DeriveUndoHints(records))
}
