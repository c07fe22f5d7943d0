package converter

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/eiiot/amtraker-v3/amtraker"
	"github.com/eiiot/amtraker-v3/feed"
	"github.com/eiiot/amtraker-v3/refdata"
)

// busConnectionCode is a pseudo-station the feed injects for bus legs; it is
// excluded from every route regardless of slot position.
const busConnectionCode = "CBN"

// serviceDisruptionMsg replaces the upstream status message when the feed has
// lost track of the train at its current event station.
const serviceDisruptionMsg = "SERVICE DISRUPTION"

// Converter turns raw feed features into the normalized train and station
// model, resolving names and timezones through the reference lookup.
type Converter struct {
	ref *refdata.Lookup
}

func New(ref *refdata.Lookup) *Converter {
	return &Converter{ref: ref}
}

// AssembleTrain builds one normalized train from a raw feature. The second
// return is false when the feature should be dropped from the batch: train
// properties that do not decode, a train number that is not numeric, or no
// resolvable stations after filtering.
func (c *Converter) AssembleTrain(f feed.TrainFeature) (amtraker.Train, bool) {
	props, err := f.Props()
	if err != nil {
		log.Warn().Err(err).Msg("Skipping train with undecodable properties")
		return amtraker.Train{}, false
	}

	num, err := strconv.Atoi(props.TrainNum)
	if err != nil {
		log.Warn().Str("trainNum", props.TrainNum).Msg("Skipping train with non-numeric number")
		return amtraker.Train{}, false
	}

	slots := f.StationSlots()
	stations := make([]amtraker.Station, 0, len(slots))
	for i, slot := range slots {
		var raw feed.RawStation
		if err := json.Unmarshal([]byte(slot), &raw); err != nil {
			log.Warn().Err(err).Int("slot", i+1).Int("trainNum", num).Msg("Skipping malformed station slot")
			continue
		}
		if raw.Code == busConnectionCode {
			continue
		}
		stations = append(stations, c.NormalizeStation(raw))
	}
	if len(stations) == 0 {
		log.Info().Int("trainNum", num).Msg("Dropping train with no resolvable stations")
		return amtraker.Train{}, false
	}

	eventTZ := c.ref.Timezone(props.EventCode)
	velocity, _ := strconv.ParseFloat(props.Velocity, 64)

	train := amtraker.Train{
		RouteName:  props.RouteName,
		TrainNum:   num,
		TrainID:    fmt.Sprintf("%d-%d", num, runDay(stations[0])),
		Lat:        props.Lat,
		Lon:        props.Lon,
		Stations:   stations,
		Heading:    props.Heading,
		EventCode:  props.EventCode,
		OrigCode:   props.OrigCode,
		OriginTZ:   c.ref.Timezone(props.OrigCode),
		DestCode:   props.DestCode,
		DestTZ:     c.ref.Timezone(props.DestCode),
		TrainState: props.TrainState,
		Velocity:   velocity,
		StatusMsg:  props.StatusMsg,
		ObjectID:   props.ObjectID,
	}

	if t, ok := parseFeedTime(&props.CreatedAt, eventTZ); ok {
		train.CreatedAt = formatISO(t)
	}
	if t, ok := parseFeedTime(&props.UpdatedAt, eventTZ); ok {
		train.UpdatedAt = formatISO(t)
	}
	if t, ok := parseFeedTime(&props.LastValTS, eventTZ); ok {
		train.LastValTS = formatISO(t)
	}

	// The current event station drives the headline comment and the
	// disruption override; fall back to the first station when the event
	// code matches nothing.
	curr := stations[0]
	for _, s := range stations {
		if s.Code == props.EventCode {
			curr = s
			break
		}
	}
	train.CurrentStationComment = curr.ArrCmnt
	if train.CurrentStationComment == "" {
		train.CurrentStationComment = "Unknown"
	}
	if curr.Arr == "" && curr.Dep == "" {
		train.StatusMsg = serviceDisruptionMsg
	}

	return train, true
}

// runDay is the day-of-month component of the train ID, taken from the first
// station's scheduled departure.
func runDay(first amtraker.Station) int {
	if first.SchDep == "" {
		return 0
	}
	t, err := time.Parse("2006-01-02T15:04:05-07:00", first.SchDep)
	if err != nil {
		return 0
	}
	return t.Day()
}

// AssembleAll builds the full train set for one refresh cycle, keyed by train
// number. Dropped features are logged inside AssembleTrain and skipped.
func (c *Converter) AssembleAll(features []feed.TrainFeature) map[int][]amtraker.Train {
	trains := make(map[int][]amtraker.Train)
	for _, f := range features {
		train, ok := c.AssembleTrain(f)
		if !ok {
			continue
		}
		trains[train.TrainNum] = append(trains[train.TrainNum], train)
	}
	return trains
}

// StationMeta builds the reference record for one station feed feature.
func (c *Converter) StationMeta(f feed.StationFeature) amtraker.StationMeta {
	p := f.Properties
	return amtraker.StationMeta{
		Name:     c.ref.Name(p.Code),
		Code:     p.Code,
		TZ:       c.ref.Timezone(p.Code),
		Lat:      p.Lat,
		Lon:      p.Lon,
		Address1: p.Address1,
		Address2: p.Address2,
		City:     p.City,
		State:    p.State,
		Zip:      p.Zip,
		Trains:   []string{},
	}
}
