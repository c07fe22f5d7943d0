// Package converter is the normalization core of the ingestion pipeline.
//
// It turns raw train features, each embedding up to 40 per-station timing
// records with ambiguous scheduled/estimated/posted timestamps, into the
// definite status model served by the API:
//   - NormalizeStation classifies one timing record into an
//     Enroute/Station/Departed/Unknown status with display times and
//     lateness comments.
//   - AssembleTrain builds a train record from its station slots, deriving
//     the run-disambiguating train ID and the headline status fields.
//
// Timestamps in the feed carry no UTC offset; they are interpreted through a
// fixed per-timezone offset table with a single daylight-saving flag computed
// at process start. See dates.go for the trade-off.
package converter
