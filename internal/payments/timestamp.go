package payments

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// OCR output mangles digits in predictable ways. These run against the text
// before any timestamp pattern is tried.
var (
	digitThenOPattern  = regexp.MustCompile(`([0-9])[Oo]`)
	oThenDigitPattern  = regexp.MustCompile(`[Oo]([0-9])`)
	digitBarPattern    = regexp.MustCompile(`([0-9])[Il|]([0-9])`)
	gluedMeridiemRegex = regexp.MustCompile(`([0-9])(AM|PM|am|pm)`)
)

var monthsByName = map[string]time.Month{
	"jan": time.January, "january": time.January,
	"feb": time.February, "february": time.February,
	"mar": time.March, "march": time.March,
	"apr": time.April, "april": time.April,
	"may": time.May,
	"jun": time.June, "june": time.June,
	"jul": time.July, "july": time.July,
	"aug": time.August, "august": time.August,
	"sep": time.September, "sept": time.September, "september": time.September,
	"oct": time.October, "october": time.October,
	"nov": time.November, "november": time.November,
	"dec": time.December, "december": time.December,
}

// Ordered most specific first. Later strategies fall back to the current
// date when the receipt only carries a time of day.
var (
	monthNameDateTimePattern = regexp.MustCompile(`(?i)\b([A-Za-z]{3,9})\s+(\d{1,2}),?\s+(\d{4})\s+(\d{1,2})[:.](\d{2})(?::(\d{2}))?\s*(AM|PM)?`)
	isoDateTimePattern       = regexp.MustCompile(`(\d{4})[-/.](\d{1,2})[-/.](\d{1,2})[T\s]+(\d{1,2})[:.](\d{2})(?::(\d{2}))?`)
	usDateTimePattern        = regexp.MustCompile(`(?i)(\d{1,2})[-/](\d{1,2})[-/](\d{4})\s+(\d{1,2})[:.](\d{2})(?::(\d{2}))?\s*(AM|PM)?`)
	dayMonthYearPattern      = regexp.MustCompile(`(?i)(\d{1,2})[\s-]([A-Za-z]{3,9})[\s-](\d{4})\s+(\d{1,2})[:.](\d{2})(?::(\d{2}))?\s*(AM|PM)?`)
	todayTimePattern         = regexp.MustCompile(`(?i)\b(?:today|now)\s+(\d{1,2})[:.](\d{2})(?::(\d{2}))?\s*(AM|PM)?`)
	dateOnlyPattern          = regexp.MustCompile(`(\d{4})[-/.](\d{1,2})[-/.](\d{1,2})`)
	contextTimePattern       = regexp.MustCompile(`(?i)(?:date|time|on|at)[\s:]*(\d{1,2})[:.](\d{2})(?::(\d{2}))?\s*(AM|PM)?`)
	bareTimePattern          = regexp.MustCompile(`(?i)\b(\d{1,2})[:.](\d{2})(?::(\d{2}))?\s*(AM|PM)?\b`)
	nearbyTimePattern        = regexp.MustCompile(`(?i)(\d{1,2})[:.](\d{2})(?::(\d{2}))?\s*(AM|PM)?`)
)

// ExtractTransactionTimestamp scans OCR text for the moment the transfer
// happened. Candidates outside a ten-years-back to one-year-forward window
// are treated as misreads and skipped; every match of a strategy is tried
// before falling to the next strategy.
func ExtractTransactionTimestamp(text string, now time.Time) (time.Time, bool) {
	text = normalizeOCRArtifacts(text)
	loc := now.Location()

	for _, m := range monthNameDateTimePattern.FindAllStringSubmatch(text, -1) {
		month, ok := monthsByName[strings.ToLower(m[1])]
		if !ok {
			continue
		}
		if t, ok := buildTimestamp(atoi(m[3]), month, atoi(m[2]), m[4], m[5], m[6], m[7], loc); ok && inSanityWindow(t, now) {
			return t, true
		}
	}

	for _, m := range isoDateTimePattern.FindAllStringSubmatch(text, -1) {
		if t, ok := buildTimestamp(atoi(m[1]), time.Month(atoi(m[2])), atoi(m[3]), m[4], m[5], m[6], "", loc); ok && inSanityWindow(t, now) {
			return t, true
		}
	}

	for _, m := range usDateTimePattern.FindAllStringSubmatch(text, -1) {
		if t, ok := buildTimestamp(atoi(m[3]), time.Month(atoi(m[1])), atoi(m[2]), m[4], m[5], m[6], m[7], loc); ok && inSanityWindow(t, now) {
			return t, true
		}
	}

	for _, m := range dayMonthYearPattern.FindAllStringSubmatch(text, -1) {
		month, ok := monthsByName[strings.ToLower(m[2])]
		if !ok {
			continue
		}
		if t, ok := buildTimestamp(atoi(m[3]), month, atoi(m[1]), m[4], m[5], m[6], m[7], loc); ok && inSanityWindow(t, now) {
			return t, true
		}
	}

	for _, m := range todayTimePattern.FindAllStringSubmatch(text, -1) {
		if t, ok := buildTimestamp(now.Year(), now.Month(), now.Day(), m[1], m[2], m[3], m[4], loc); ok && inSanityWindow(t, now) {
			return t, true
		}
	}

	for _, loci := range dateOnlyPattern.FindAllStringSubmatchIndex(text, -1) {
		year := atoi(text[loci[2]:loci[3]])
		month := time.Month(atoi(text[loci[4]:loci[5]]))
		day := atoi(text[loci[6]:loci[7]])

		// Receipts often print the date and time on separate lines, so
		// look a short distance past the date for a time of day.
		tail := text[loci[1]:]
		if len(tail) > 50 {
			tail = tail[:50]
		}
		if tm := nearbyTimePattern.FindStringSubmatch(tail); tm != nil {
			if t, ok := buildTimestamp(year, month, day, tm[1], tm[2], tm[3], tm[4], loc); ok && inSanityWindow(t, now) {
				return t, true
			}
		}
		hour := strconv.Itoa(now.Hour())
		minute := strconv.Itoa(now.Minute())
		if t, ok := buildTimestamp(year, month, day, hour, minute, "", "", loc); ok && inSanityWindow(t, now) {
			return t, true
		}
	}

	for _, pattern := range []*regexp.Regexp{contextTimePattern, bareTimePattern} {
		for _, m := range pattern.FindAllStringSubmatch(text, -1) {
			if t, ok := buildTimestamp(now.Year(), now.Month(), now.Day(), m[1], m[2], m[3], m[4], loc); ok && inSanityWindow(t, now) {
				return t, true
			}
		}
	}

	return time.Time{}, false
}

func normalizeOCRArtifacts(text string) string {
	for {
		next := digitThenOPattern.ReplaceAllString(text, "${1}0")
		next = oThenDigitPattern.ReplaceAllString(next, "0${1}")
		next = digitBarPattern.ReplaceAllString(next, "${1}1${2}")
		if next == text {
			break
		}
		text = next
	}
	return gluedMeridiemRegex.ReplaceAllString(text, "${1} ${2}")
}

func buildTimestamp(year int, month time.Month, day int, hourStr, minStr, secStr, meridiem string, loc *time.Location) (time.Time, bool) {
	hour := atoi(hourStr)
	minute := atoi(minStr)
	second := 0
	if secStr != "" {
		second = atoi(secStr)
	}

	switch strings.ToUpper(meridiem) {
	case "AM":
		if hour < 1 || hour > 12 {
			return time.Time{}, false
		}
		if hour == 12 {
			hour = 0
		}
	case "PM":
		if hour < 1 || hour > 12 {
			return time.Time{}, false
		}
		if hour != 12 {
			hour += 12
		}
	default:
		if hour > 23 {
			return time.Time{}, false
		}
	}
	if month < time.January || month > time.December || minute > 59 || second > 59 {
		return time.Time{}, false
	}

	t := time.Date(year, month, day, hour, minute, second, 0, loc)
	// time.Date normalizes overflow, so Feb 30 silently becomes March.
	// A shifted day means the receipt text was misread.
	if t.Day() != day || t.Month() != month || t.Year() != year {
		return time.Time{}, false
	}
	return t, true
}

func inSanityWindow(t, now time.Time) bool {
	return !t.Before(now.AddDate(-10, 0, 0)) && !t.After(now.AddDate(1, 0, 0))
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
