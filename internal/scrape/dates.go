package scrape

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/Veraticus/lng-shipment-tracker/internal/model"
)

const monthAlternation = `Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec`

var (
	listingDatePattern = regexp.MustCompile(`(?i)\b(` + monthAlternation + `)\s+(\d{1,2})\b,?\s*(\d{4})?`)
	etaPattern         = regexp.MustCompile(`(?i)\b(` + monthAlternation + `)\s+(\d{1,2})\b,?\s*(\d{4})?,?\s*(?:(\d{1,2}):(\d{2}))?`)
)

// ParseListingDate finds a "Jan 28, 2026" or "Jan 28" style date in text.
// A missing year defaults to the year of now. Dates that do not exist on the
// calendar are treated as absent.
func ParseListingDate(text string, now time.Time, loc *time.Location) model.Optional[time.Time] {
	m := listingDatePattern.FindStringSubmatch(text)
	if m == nil {
		return model.None[time.Time]()
	}
	return parseMonthDay(m[1], m[2], m[3], now, loc)
}

func parseMonthDay(month, day, year string, now time.Time, loc *time.Location) model.Optional[time.Time] {
	if loc == nil {
		loc = time.UTC
	}
	if year == "" {
		year = strconv.Itoa(now.In(loc).Year())
	}
	t, err := time.ParseInLocation("Jan 2 2006", fmt.Sprintf("%s %s %s", month, day, year), loc)
	if err != nil {
		return model.None[time.Time]()
	}
	return model.Some(t)
}

// etaLayouts are the absolute timestamp forms seen in ETA/ATA fields and in
// hand-edited ledger cells.
var etaLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04",
	"2006-01-02 15:04:05",
	time.DateOnly,
}

// ParseVoyageTime parses an ETA or ATA value such as "Jan 25, 12:00" or
// "2025-01-25 12:00". Year-less values that would land more than six months
// in the future are assumed to belong to the previous year.
func ParseVoyageTime(text string, now time.Time, loc *time.Location) model.Optional[time.Time] {
	if loc == nil {
		loc = time.UTC
	}
	text = strings.TrimSpace(text)
	for _, layout := range etaLayouts {
		if t, err := time.ParseInLocation(layout, text, loc); err == nil {
			return model.Some(t)
		}
	}

	m := etaPattern.FindStringSubmatch(text)
	if m == nil {
		return model.None[time.Time]()
	}
	day, ok := parseMonthDay(m[1], m[2], m[3], now, loc).Get()
	if !ok {
		return model.None[time.Time]()
	}
	if m[4] != "" {
		hour, _ := strconv.Atoi(m[4])
		minute, _ := strconv.Atoi(m[5])
		if hour > 23 || minute > 59 {
			return model.None[time.Time]()
		}
		day = day.Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute)
	}
	if m[3] == "" && day.After(now.AddDate(0, 6, 0)) {
		day = day.AddDate(-1, 0, 0)
	}
	return model.Some(day)
}
