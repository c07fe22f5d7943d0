package refdata

import (
	_ "embed"
	"fmt"

	"github.com/gocarina/gocsv"
)

//go:embed stations.csv
var stationsCSV []byte

type stationRow struct {
	Code     string `csv:"code"`
	Name     string `csv:"name"`
	Timezone string `csv:"timezone"`
}

// Lookup resolves station codes to display names and IANA timezone
// identifiers. It is loaded once at startup and read-only afterwards, so it
// is safe for concurrent use.
type Lookup struct {
	names     map[string]string
	timezones map[string]string
}

// New parses the embedded station table.
func New() (*Lookup, error) {
	var rows []stationRow
	if err := gocsv.UnmarshalBytes(stationsCSV, &rows); err != nil {
		return nil, fmt.Errorf("parse station table: %w", err)
	}

	l := &Lookup{
		names:     make(map[string]string, len(rows)),
		timezones: make(map[string]string, len(rows)),
	}
	for _, row := range rows {
		l.names[row.Code] = row.Name
		l.timezones[row.Code] = row.Timezone
	}
	return l, nil
}

// Name returns the display name for a station code, or "" when unknown.
func (l *Lookup) Name(code string) string {
	return l.names[code]
}

// Timezone returns the IANA timezone identifier for a station code, or ""
// when unknown.
func (l *Lookup) Timezone(code string) string {
	return l.timezones[code]
}
