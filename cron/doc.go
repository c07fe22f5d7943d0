// Package cron implements the 5-field crontab grammar (minute, hour, day of
// month, month, day of week) and a minute-boundary scheduler driving the
// periodic feed refresh. It is not a general crontab replacement: only "*",
// lists, ranges, step values and 3-letter names are supported.
package cron
