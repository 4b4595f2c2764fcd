package intent

import (
	"errors"
	"regexp"
	"strconv"

	"github.com/doeshing/voicectl/internal/domain"
)

var (
	reDelay = regexp.MustCompile(`(\d+)\s*(seconds?|secs?|s|minutes?|mins?|m|hours?|hrs?|h)\b`)
	reNow   = regexp.MustCompile(`\b(?:now|immediately)\b`)
)

// ParseDelaySeconds extracts a "<n> <unit>" delay from text and returns it in seconds.
// "now" and "immediately" mean zero; no delay at all means DefaultShutdownDelaySeconds.
// Results are capped at MaxShutdownDelaySeconds.
func ParseDelaySeconds(text string) int {
	m := reDelay.FindStringSubmatch(text)
	if m == nil {
		if reNow.MatchString(text) {
			return 0
		}
		return domain.DefaultShutdownDelaySeconds
	}
	unit := 1
	switch m[2][0] {
	case 'm':
		unit = 60
	case 'h':
		unit = 3600
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return domain.MaxShutdownDelaySeconds
		}
		return domain.DefaultShutdownDelaySeconds
	}
	if n > domain.MaxShutdownDelaySeconds/unit {
		return domain.MaxShutdownDelaySeconds
	}
	return n * unit
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
