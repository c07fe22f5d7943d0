package converter

import (
	"fmt"
	"time"
)

// onTimeWindow is how late a train can run and still be reported "On Time".
// The collapse is asymmetric: an early train is always reported "Early".
const onTimeWindow = 5 * time.Minute

// generateComment renders the lateness of actual against scheduled as a
// human-readable string, e.g. "0 Hours, 12 Minutes Late". Both timestamps
// are feed text in the station's timezone; if either is missing or
// unparseable the comment is empty.
func generateComment(scheduled, actual *string, tzID string) string {
	schedTime, ok := parseFeedTime(scheduled, tzID)
	if !ok {
		return ""
	}
	actualTime, ok := parseFeedTime(actual, tzID)
	if !ok {
		return ""
	}

	diff := actualTime.Sub(schedTime)
	direction := "Late"
	if diff < 0 {
		direction = "Early"
		diff = -diff
	}

	if direction == "Late" && diff < onTimeWindow {
		return "On Time"
	}

	hours := int(diff / time.Hour)
	minutes := int(diff % time.Hour / time.Minute)
	return fmt.Sprintf("%d Hours, %d Minutes %s", hours, minutes, direction)
}
