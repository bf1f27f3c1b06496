package evaluation

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"signal-impact-lab/internal/domain"
)

// durationPhrase matches phrases like "3 days", "2w", "48 hours", "1 month".
var durationPhrase = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(hours?|hrs?|h|days?|d|weeks?|wks?|w|months?|mo)\b`)

// Date layouts accepted for absolute timeline targets.
var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 January 2006",
	"Jan 2 2006",
}

// ParseTimelineDays converts a signal's free-form timeline descriptor into a
// whole day count anchored at the signal's creation time. Supported forms
// are explicit duration phrases ("3 days", "2 weeks", "48h") and absolute
// dates ("2025-03-01", "by Mar 1, 2025"). Anything unparseable, including an
// empty descriptor or a date at or before creation, falls back to
// domain.DefaultTimelineDays.
func ParseTimelineDays(descriptor string, createdAt time.Time) int {
	text := strings.ToLower(strings.TrimSpace(descriptor))
	if text == "" {
		return domain.DefaultTimelineDays
	}

	if m := durationPhrase.FindStringSubmatch(text); m != nil {
		value, err := strconv.ParseFloat(m[1], 64)
		if err == nil && value > 0 {
			if days := phraseDays(value, m[2]); days > 0 {
				return days
			}
		}
	}

	// Bare number means days ("7").
	if value, err := strconv.ParseFloat(text, 64); err == nil && value > 0 {
		return int(math.Ceil(value))
	}

	if target, ok := parseDate(descriptor); ok {
		days := int(math.Ceil(target.Sub(createdAt).Hours() / 24))
		if days > 0 {
			return days
		}
	}

	return domain.DefaultTimelineDays
}

func phraseDays(value float64, unit string) int {
	switch {
	case strings.HasPrefix(unit, "h"):
		return int(math.Ceil(value / 24))
	case strings.HasPrefix(unit, "w"):
		return int(math.Ceil(value * 7))
	case strings.HasPrefix(unit, "mo") || strings.HasPrefix(unit, "month"):
		return int(math.Ceil(value * 30))
	default: // days
		return int(math.Ceil(value))
	}
}

func parseDate(descriptor string) (time.Time, bool) {
	text := strings.TrimSpace(descriptor)
	// Strip a leading "by"/"until"/"before" qualifier.
	lower := strings.ToLower(text)
	for _, prefix := range []string{"by ", "until ", "before ", "till "} {
		if strings.HasPrefix(lower, prefix) {
			text = strings.TrimSpace(text[len(prefix):])
			break
		}
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, text); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
