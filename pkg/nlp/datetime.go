package nlp

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// The searcher recognizes a fixed set of date shapes with regex passes and a
// month map. Numeric dates prefer day-before-month order; dates without a
// year roll forward when they land far in the past.

var monthMap = map[string]time.Month{
	"jan": time.January, "feb": time.February, "mar": time.March,
	"apr": time.April, "may": time.May, "jun": time.June,
	"jul": time.July, "aug": time.August, "sep": time.September,
	"oct": time.October, "nov": time.November, "dec": time.December,
}

const monthPattern = `(jan(?:uary)?|feb(?:ruary)?|mar(?:ch)?|apr(?:il)?|may|jun(?:e)?|jul(?:y)?|aug(?:ust)?|sep(?:t(?:ember)?)?|oct(?:ober)?|nov(?:ember)?|dec(?:ember)?)`

var (
	relativeDayRe = regexp.MustCompile(`(?i)\b(day after tomorrow|tomorrow|today)\b`)
	weekdayRe     = regexp.MustCompile(`(?i)\b(?:(next|this)\s+)?(monday|tuesday|wednesday|thursday|friday|saturday|sunday)\b`)
	numericDateRe = regexp.MustCompile(`\b(\d{1,2})[/.-](\d{1,2})(?:[/.-](\d{2,4}))?\b`)
	dayMonthRe    = regexp.MustCompile(`(?i)\b(\d{1,2})(?:st|nd|rd|th)?\s+` + monthPattern + `\b(?:\s+(\d{4}))?`)
	monthDayRe    = regexp.MustCompile(`(?i)\b` + monthPattern + `\b\.?\s+(\d{1,2})(?:st|nd|rd|th)?,?(?:\s+(\d{4}))?`)
	isoDateRe     = regexp.MustCompile(`\b(\d{4})-(\d{2})-(\d{2})(?:[T ](\d{2}):(\d{2})(?::(\d{2}))?)?`)
	inOffsetRe    = regexp.MustCompile(`(?i)\bin\s+(\d+)\s+(minutes?|mins?|hours?|days?|weeks?)\b`)
	clockAmPmRe   = regexp.MustCompile(`(?i)\b(\d{1,2})(?::(\d{2}))?\s*(am|pm)\b`)
	clock24Re     = regexp.MustCompile(`\b([01]?\d|2[0-3]):([0-5]\d)\b`)

	weekdayMap = map[string]time.Weekday{
		"monday": time.Monday, "tuesday": time.Tuesday, "wednesday": time.Wednesday,
		"thursday": time.Thursday, "friday": time.Friday,
		"saturday": time.Saturday, "sunday": time.Sunday,
	}
)

// dateCandidate is one possible reading of a date phrase. Explicit calendar
// dates outrank relative phrases, which outrank bare clock times.
type dateCandidate struct {
	index    int
	datetime time.Time
	explicit bool
}

// SearchDateTime scans text for the first date-like phrase and returns the
// corresponding absolute timestamp in loc. When the matched time-of-day is
// exactly midnight the phrase is treated as date-only and an explicit clock
// time elsewhere in the text refills the hour and minute. Returns false when
// nothing date-like is present.
func SearchDateTime(text string, now time.Time, loc *time.Location) (time.Time, bool) {
	now = now.In(loc)

	explicit := explicitCandidates(text, now, loc)
	relative := relativeCandidates(text, now, loc)

	var chosen *dateCandidate
	switch {
	case len(explicit) > 0:
		chosen = earliest(explicit)
	case len(relative) > 0:
		chosen = earliest(relative)
	default:
		// A bare clock time still anchors to today.
		if h, m, ok := searchClockTime(text); ok {
			t := time.Date(now.Year(), now.Month(), now.Day(), h, m, 0, 0, loc)
			return t, true
		}
		return time.Time{}, false
	}

	dt := chosen.datetime
	if dt.Hour() == 0 && dt.Minute() == 0 {
		if h, m, ok := searchClockTime(text); ok {
			dt = time.Date(dt.Year(), dt.Month(), dt.Day(), h, m, 0, 0, loc)
		}
	}
	return dt, true
}

func earliest(candidates []dateCandidate) *dateCandidate {
	best := &candidates[0]
	for i := range candidates[1:] {
		if candidates[i+1].index < best.index {
			best = &candidates[i+1]
		}
	}
	return best
}

func explicitCandidates(text string, now time.Time, loc *time.Location) []dateCandidate {
	var out []dateCandidate

	if m := isoDateRe.FindStringSubmatchIndex(text); m != nil {
		year := atoi(slice(text, m, 1))
		month := atoi(slice(text, m, 2))
		day := atoi(slice(text, m, 3))
		hour, minute, sec := 0, 0, 0
		if slice(text, m, 4) != "" {
			hour = atoi(slice(text, m, 4))
			minute = atoi(slice(text, m, 5))
			if slice(text, m, 6) != "" {
				sec = atoi(slice(text, m, 6))
			}
		}
		if validMonthDay(month, day) {
			out = append(out, dateCandidate{
				index:    m[0],
				datetime: time.Date(year, time.Month(month), day, hour, minute, sec, 0, loc),
				explicit: true,
			})
		}
	}

	if m := numericDateRe.FindStringSubmatchIndex(text); m != nil {
		day := atoi(slice(text, m, 1))
		month := atoi(slice(text, m, 2))
		// Day-before-month ordering preference; swap only when forced.
		if month > 12 && day <= 12 {
			day, month = month, day
		}
		if validMonthDay(month, day) {
			year := 0
			if ys := slice(text, m, 3); ys != "" {
				year = atoi(ys)
				if year < 100 {
					year += 2000
				}
			}
			out = append(out, dateCandidate{
				index:    m[0],
				datetime: dateWithYearRoll(year, time.Month(month), day, now, loc),
				explicit: true,
			})
		}
	}

	if m := dayMonthRe.FindStringSubmatchIndex(text); m != nil {
		day := atoi(slice(text, m, 1))
		month := monthMap[strings.ToLower(slice(text, m, 2))[:3]]
		year := 0
		if ys := slice(text, m, 3); ys != "" {
			year = atoi(ys)
		}
		if validMonthDay(int(month), day) {
			out = append(out, dateCandidate{
				index:    m[0],
				datetime: dateWithYearRoll(year, month, day, now, loc),
				explicit: true,
			})
		}
	}

	if m := monthDayRe.FindStringSubmatchIndex(text); m != nil {
		month := monthMap[strings.ToLower(slice(text, m, 1))[:3]]
		day := atoi(slice(text, m, 2))
		year := 0
		if ys := slice(text, m, 3); ys != "" {
			year = atoi(ys)
		}
		if validMonthDay(int(month), day) {
			out = append(out, dateCandidate{
				index:    m[0],
				datetime: dateWithYearRoll(year, month, day, now, loc),
				explicit: true,
			})
		}
	}

	return out
}

func relativeCandidates(text string, now time.Time, loc *time.Location) []dateCandidate {
	var out []dateCandidate

	if m := relativeDayRe.FindStringSubmatchIndex(text); m != nil {
		offset := 0
		switch strings.ToLower(slice(text, m, 1)) {
		case "tomorrow":
			offset = 1
		case "day after tomorrow":
			offset = 2
		}
		d := now.AddDate(0, 0, offset)
		out = append(out, dateCandidate{
			index:    m[0],
			datetime: time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, loc),
		})
	}

	if m := weekdayRe.FindStringSubmatchIndex(text); m != nil {
		target := weekdayMap[strings.ToLower(slice(text, m, 2))]
		ahead := (int(target) - int(now.Weekday()) + 7) % 7
		if ahead == 0 {
			ahead = 7
		}
		d := now.AddDate(0, 0, ahead)
		out = append(out, dateCandidate{
			index:    m[0],
			datetime: time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, loc),
		})
	}

	if m := inOffsetRe.FindStringSubmatchIndex(text); m != nil {
		n := atoi(slice(text, m, 1))
		var d time.Time
		switch unit := strings.ToLower(slice(text, m, 2)); {
		case strings.HasPrefix(unit, "min"):
			d = now.Add(time.Duration(n) * time.Minute)
		case strings.HasPrefix(unit, "hour"):
			d = now.Add(time.Duration(n) * time.Hour)
		case strings.HasPrefix(unit, "day"):
			d = now.AddDate(0, 0, n)
		default:
			d = now.AddDate(0, 0, 7*n)
		}
		out = append(out, dateCandidate{index: m[0], datetime: d})
	}

	return out
}

// searchClockTime finds an explicit time-of-day anywhere in the text.
// The 12-hour form wins over the 24-hour form; pm adds 12 unless the hour is
// already 12, and 12am maps to 0.
func searchClockTime(text string) (hour, minute int, ok bool) {
	if m := clockAmPmRe.FindStringSubmatch(text); m != nil {
		hour = atoi(m[1])
		if m[2] != "" {
			minute = atoi(m[2])
		}
		if hour > 12 {
			return 0, 0, false
		}
		switch strings.ToLower(m[3]) {
		case "pm":
			if hour != 12 {
				hour += 12
			}
		case "am":
			if hour == 12 {
				hour = 0
			}
		}
		return hour, minute, true
	}
	if m := clock24Re.FindStringSubmatch(text); m != nil {
		return atoi(m[1]), atoi(m[2]), true
	}
	return 0, 0, false
}

// dateWithYearRoll builds a date, defaulting the year to the current one and
// assuming next year when the result would sit more than six months in the
// past.
func dateWithYearRoll(year int, month time.Month, day int, now time.Time, loc *time.Location) time.Time {
	if year != 0 {
		return time.Date(year, month, day, 0, 0, 0, 0, loc)
	}
	dt := time.Date(now.Year(), month, day, 0, 0, 0, 0, loc)
	if now.Sub(dt) > 180*24*time.Hour {
		dt = dt.AddDate(1, 0, 0)
	}
	return dt
}

// ParseTimestamp parses a stored timestamp string. Ledger rows carry ISO
// strings, but replies and older rows may embed the human layout, so a few
// fixed layouts are tried before falling back to the free-text searcher.
func ParseTimestamp(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}

	layouts := []string{
		time.RFC3339,
		"2006-01-02T15:04:05",
		DateLayout,
		"2006-01-02 15:04:05",
		"2006-01-02",
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}

	if t, ok := SearchDateTime(raw, time.Now().UTC(), time.UTC); ok {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("cannot parse timestamp %q", raw)
}

func validMonthDay(month, day int) bool {
	return month >= 1 && month <= 12 && day >= 1 && day <= 31
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

func slice(text string, idx []int, group int) string {
	if idx[2*group] < 0 {
		return ""
	}
	return text[idx[2*group]:idx[2*group+1]]
}
