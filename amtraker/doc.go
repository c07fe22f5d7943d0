// Package amtraker defines the public data model served by the API: trains
// keyed by number, their normalized per-stop records, and station reference
// records with the derived station->train back-reference index.
package amtraker
