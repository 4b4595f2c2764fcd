package helpers

import (
	"sort"

	"github.com/doeshing/voicectl/internal/application/intent"
	"github.com/doeshing/voicectl/internal/domain"
)

// CommandStatistic represents usage statistics for a command
type CommandStatistic struct {
	Command string
	Count   int
}

// HistoryStats summarizes a window of command records.
type HistoryStats struct {
	Total      int
	Successful int
	BySource   map[domain.Source]int
	Frequency  map[string]int
}

// AnalyzeHistory counts outcomes, sources and normalized command texts.
func AnalyzeHistory(records []domain.CommandRecord) HistoryStats {
	stats := HistoryStats{
		BySource:  make(map[domain.Source]int),
		Frequency: make(map[string]int),
	}
	for _, rec := range records {
		stats.Total++
		if rec.Status == domain.StatusSuccess {
			stats.Successful++
		}
		stats.BySource[rec.Source]++
		stats.Frequency[intent.Normalize(rec.Text)]++
	}
	return stats
}

// CalculateTopCommands returns the top N most frequently used commands
// If limit is 0 or negative, returns all commands
func CalculateTopCommands(commandFrequency map[string]int, limit int) []CommandStatistic {
	stats := make([]CommandStatistic, 0, len(commandFrequency))
	for cmd, count := range commandFrequency {
		stats = append(stats, CommandStatistic{Command: cmd, Count: count})
	}
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Count == stats[j].Count {
			return stats[i].Command < stats[j].Command
		}
		return stats[i].Count > stats[j].Count
	})

	if limit > 0 && len(stats) > limit {
		return stats[:limit]
	}
	return stats
}

// CalculateSuccessRate calculates the success rate as a percentage
func CalculateSuccessRate(successfulCount int, totalCount int) float64 {
	if totalCount == 0 {
		return 0.0
	}
	return float64(successfulCount) / float64(totalCount) * 100.0
}

var cancelShutdownHints = map[string]string{
	string(domain.PlatformDarwin):  "A shutdown was scheduled on darwin: cancel it with `sudo killall shutdown`.",
	string(domain.PlatformWindows): "A shutdown was scheduled on windows: cancel it with `shutdown /a`.",
	string(domain.PlatformLinux):   "A shutdown was scheduled on linux: cancel it with `shutdown -c`.",
}

// DeriveUndoHints suggests how to revert successful shutdown commands.
// Returns a sorted list of unique hints
func DeriveUndoHints(records []domain.CommandRecord) []string {
	classifier := intent.NewClassifier()
	seen := make(map[string]bool)
	for _, rec := range records {
		if rec.Status != domain.StatusSuccess {
			continue
		}
		if kind, _ := classifier.Classify(rec.Text); kind != domain.IntentShutdown {
			continue
		}
		if hint, ok := cancelShutdownHints[rec.Platform]; ok {
			seen[hint] = true
		}
	}

	hints := make([]string, 0, len(seen))
	for hint := range seen {
		hints = append(hints, hint)
	}
	sort.Strings(hints)
	return hints
}
