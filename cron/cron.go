package cron

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

type field int

const (
	fieldMinute field = iota
	fieldHour
	fieldDayOfMonth
	fieldMonth
	fieldDayOfWeek
)

var dayNames = []string{"sun", "mon", "tue", "wed", "thu", "fri", "sat"}

var monthNames = []string{
	"jan", "feb", "mar", "apr", "may", "jun",
	"jul", "aug", "sep", "oct", "nov", "dec",
}

var (
	rangeRe = regexp.MustCompile(`(\d+)-(\d+)`)
	stepRe  = regexp.MustCompile(`[\d*-]+/(\d+)`)
)

func current(now time.Time, f field) int {
	switch f {
	case fieldMinute:
		return now.Minute()
	case fieldHour:
		return now.Hour()
	case fieldDayOfMonth:
		return now.Day()
	case fieldMonth:
		return int(now.Month())
	default:
		return int(now.Weekday())
	}
}

// Matches reports whether now is a firing instant for the 5-field crontab
// expression expr. It is a pure function of its inputs.
//
// Each field is a comma-separated list of items: "*", an exact value, a
// 3-letter month or weekday name, an inclusive range "a-b", or a range or
// "*" followed by "/n" for step values. The two day fields are combined with
// OR, so a "*" in either one makes the other irrelevant.
func Matches(now time.Time, expr string) bool {
	fields := strings.Fields(expr)
	if len(fields) != 5 {
		return false
	}

	minute := fieldMatches(now, fields[0], fieldMinute)
	hour := fieldMatches(now, fields[1], fieldHour)
	dayOfMonth := fieldMatches(now, fields[2], fieldDayOfMonth)
	month := fieldMatches(now, fields[3], fieldMonth)
	dayOfWeek := fieldMatches(now, fields[4], fieldDayOfWeek)

	return minute && hour && month && (dayOfMonth || dayOfWeek)
}

func fieldMatches(now time.Time, spec string, f field) bool {
	for _, item := range strings.Split(spec, ",") {
		if itemMatches(current(now, f), strings.TrimSpace(item), f) {
			return true
		}
	}
	return false
}

func itemMatches(curr int, item string, f field) bool {
	if item == "*" {
		return true
	}
	if item == strconv.Itoa(curr) {
		return true
	}

	name := strings.ToLower(item)
	if f == fieldMonth && curr >= 1 && curr <= 12 && name == monthNames[curr-1] {
		return true
	}
	if f == fieldDayOfWeek && name == dayNames[curr] {
		return true
	}

	rangeMatch := rangeRe.FindStringSubmatch(item)
	stepMatch := stepRe.FindStringSubmatch(item)

	rangeStart := 0
	rangeOK := true
	stepOK := true

	if rangeMatch != nil {
		lo, _ := strconv.Atoi(rangeMatch[1])
		hi, _ := strconv.Atoi(rangeMatch[2])
		rangeStart = lo
		rangeOK = lo <= curr && curr <= hi
	}
	// A step with no preceding range counts from 0.
	if stepMatch != nil {
		step, _ := strconv.Atoi(stepMatch[1])
		if step > 0 {
			stepOK = (curr-rangeStart)%step == 0
		}
	}

	switch {
	case rangeMatch != nil:
		return rangeOK && stepOK
	case stepMatch != nil:
		return stepOK
	default:
		return false
	}
}
