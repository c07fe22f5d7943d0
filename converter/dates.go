package converter

import (
	"time"

	"github.com/rs/zerolog/log"
)

// The feed writes local wall-clock times with no offset, so each timestamp is
// interpreted through a fixed standard/daylight UTC offset table keyed by the
// station's timezone identifier. Whether daylight saving applies is decided
// once at process start from the US rule (second Sunday of March through
// first Sunday of November); timestamps displayed across a DST boundary are
// approximate by design.
type tzOffset struct {
	standard int
	daylight int
}

var tzOffsets = map[string]tzOffset{
	"America/New_York":    {-5, -4},
	"America/Detroit":     {-5, -4},
	"America/Toronto":     {-5, -4},
	"America/Chicago":     {-6, -5},
	"America/Denver":      {-7, -6},
	"America/Boise":       {-7, -6},
	"America/Phoenix":     {-7, -7},
	"America/Los_Angeles": {-8, -7},
	"America/Vancouver":   {-8, -7},
}

var daylightNow = isUSDaylightTime(time.Now())

func isUSDaylightTime(t time.Time) bool {
	switch m := t.Month(); {
	case m > time.March && m < time.November:
		return true
	case m == time.March:
		return t.Day() >= nthSunday(t.Year(), time.March, 2)
	case m == time.November:
		return t.Day() < nthSunday(t.Year(), time.November, 1)
	default:
		return false
	}
}

// nthSunday returns the day of month of the n-th Sunday.
func nthSunday(year int, month time.Month, n int) int {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return 1 + (7-int(first.Weekday()))%7 + (n-1)*7
}

var feedTimeLayouts = []string{
	"1/2/2006 3:04:05 PM",
	"1/2/2006 15:04:05",
}

// parseFeedTime interprets a feed timestamp in the given station timezone.
// A nil or unparseable value returns false; downstream logic treats that as
// a valid "unknown" input.
func parseFeedTime(raw *string, tzID string) (time.Time, bool) {
	return parseFeedTimeAt(raw, tzID, daylightNow)
}

func parseFeedTimeAt(raw *string, tzID string, daylight bool) (time.Time, bool) {
	if raw == nil || *raw == "" {
		return time.Time{}, false
	}

	off, ok := tzOffsets[tzID]
	if !ok {
		log.Debug().Str("tz", tzID).Str("value", *raw).Msg("No offset entry for timezone")
		return time.Time{}, false
	}
	hours := off.standard
	if daylight {
		hours = off.daylight
	}
	loc := time.FixedZone(tzID, hours*3600)

	for _, layout := range feedTimeLayouts {
		if t, err := time.ParseInLocation(layout, *raw, loc); err == nil {
			return t, true
		}
	}
	log.Warn().Str("value", *raw).Str("tz", tzID).Msg("Could not parse feed timestamp")
	return time.Time{}, false
}

func formatISO(t time.Time) string {
	return t.Format("2006-01-02T15:04:05-07:00")
}
