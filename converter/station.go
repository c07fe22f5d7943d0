package converter

import (
	"github.com/rs/zerolog/log"

	"github.com/eiiot/amtraker-v3/amtraker"
	"github.com/eiiot/amtraker-v3/feed"
)

// NormalizeStation resolves one raw per-station timing record into a definite
// status with display times and lateness comments.
//
// The classification is an ordered decision tree over which timing fields are
// present, not a stored state:
//
//  1. No estimated and no posted arrival: the train's first station. A posted
//     departure means it already left; otherwise it is at the station with an
//     estimated departure.
//  2. No posted arrival and no posted departure: the train's final station,
//     still enroute on its estimated arrival.
//  3. Interior stations: both estimates present means enroute; posted arrival
//     with an estimated departure means at the station; a posted departure
//     means departed.
//  4. Anything else is a data-quality case: status Unknown, times unset,
//     logged but never an error.
func (c *Converter) NormalizeStation(raw feed.RawStation) amtraker.Station {
	st := amtraker.Station{
		Name:   c.ref.Name(raw.Code),
		Code:   raw.Code,
		TZ:     c.ref.Timezone(raw.Code),
		Bus:    raw.Bus,
		Status: amtraker.StatusUnknown,
	}
	tz := st.TZ

	if t, ok := parseFeedTime(raw.SchArr, tz); ok {
		st.SchArr = formatISO(t)
	}
	if t, ok := parseFeedTime(raw.SchDep, tz); ok {
		st.SchDep = formatISO(t)
	}

	if raw.EstArr == nil && raw.EstDep == nil && raw.PostArr == nil && raw.PostDep == nil {
		log.Debug().Str("code", raw.Code).Msg("Station record carries no timing data")
		return st
	}

	switch {
	case raw.EstArr == nil && raw.PostArr == nil:
		// First station of the run.
		if raw.PostDep != nil {
			st.Status = amtraker.StatusDeparted
			if t, ok := parseFeedTime(raw.PostDep, tz); ok {
				st.Dep = formatISO(t)
			}
			st.DepCmnt = generateComment(raw.SchDep, raw.PostDep, tz)
		} else {
			st.Status = amtraker.StatusStation
			if t, ok := parseFeedTime(raw.EstDep, tz); ok {
				st.Dep = formatISO(t)
			}
			st.DepCmnt = generateComment(raw.SchDep, raw.EstDep, tz)
		}

	case raw.PostArr == nil && raw.PostDep == nil:
		// Final station, not yet reached.
		st.Status = amtraker.StatusEnroute
		if t, ok := parseFeedTime(raw.EstArr, tz); ok {
			st.Arr = formatISO(t)
		}
		st.ArrCmnt = generateComment(raw.SchArr, raw.EstArr, tz)

	default:
		switch {
		case raw.EstArr != nil && raw.EstDep != nil:
			st.Status = amtraker.StatusEnroute
			if t, ok := parseFeedTime(raw.EstArr, tz); ok {
				st.Arr = formatISO(t)
			}
			if t, ok := parseFeedTime(raw.EstDep, tz); ok {
				st.Dep = formatISO(t)
			}
			st.ArrCmnt = generateComment(coalesce(raw.SchArr, raw.SchDep), raw.EstArr, tz)
			st.DepCmnt = generateComment(raw.SchDep, raw.EstDep, tz)

		case raw.PostArr != nil && raw.EstDep != nil:
			// Arrived, not yet departed.
			st.Status = amtraker.StatusStation
			if t, ok := parseFeedTime(raw.PostArr, tz); ok {
				st.Arr = formatISO(t)
			}
			if t, ok := parseFeedTime(raw.EstDep, tz); ok {
				st.Dep = formatISO(t)
			}
			st.ArrCmnt = generateComment(coalesce(raw.SchArr, raw.SchDep), raw.PostArr, tz)
			st.DepCmnt = generateComment(raw.SchDep, raw.EstDep, tz)

		case raw.PostDep != nil:
			st.Status = amtraker.StatusDeparted
			if t, ok := parseFeedTime(raw.PostArr, tz); ok {
				st.Arr = formatISO(t)
			}
			if t, ok := parseFeedTime(raw.PostDep, tz); ok {
				st.Dep = formatISO(t)
			}
			st.ArrCmnt = generateComment(coalesce(raw.SchArr, raw.SchDep), raw.PostArr, tz)
			st.DepCmnt = generateComment(raw.SchDep, raw.PostDep, tz)

		default:
			log.Debug().Str("code", raw.Code).Msg("Station timing fields match no known pattern")
		}
	}

	// Keep both sides populated once either could be computed, so consumers
	// never see a half-empty record outside of Unknown.
	if st.Status != amtraker.StatusUnknown {
		if st.Arr == "" {
			st.Arr = st.Dep
		}
		if st.Dep == "" {
			st.Dep = st.Arr
		}
	}

	return st
}

func coalesce(a, b *string) *string {
	if a != nil {
		return a
	}
	return b
}
