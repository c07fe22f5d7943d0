package store

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/eiiot/amtraker-v3/amtraker"
)

// Store is the authoritative in-memory dataset: trains keyed by number,
// stations keyed by code, plus the derived station->train-IDs index.
//
// Commit swaps fresh map references under the write lock, so a reader always
// observes either the pre- or post-commit snapshot, never a torn one. The
// maps handed out by the read methods are those snapshots; callers must not
// mutate them.
type Store struct {
	mu          sync.RWMutex
	trains      map[int][]amtraker.Train
	stations    map[string]amtraker.StationMeta
	lastRefresh time.Time

	sink Sink
}

func New() *Store {
	return &Store{
		trains:   map[int][]amtraker.Train{},
		stations: map[string]amtraker.StationMeta{},
	}
}

// SetSink installs a write-behind snapshot sink invoked after each commit.
func (s *Store) SetSink(sink Sink) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sink = sink
}

// Commit installs the result of one refresh cycle. The trains map is
// replaced wholesale. Stations are merged: codes not seen before are added,
// existing records are kept, and each station's back-reference list gains the
// IDs of the new trains serving it. Back-references are never pruned, so the
// index grows monotonically within a process lifetime; stale IDs age out only
// on restart.
func (s *Store) Commit(trains map[int][]amtraker.Train, stations []amtraker.StationMeta) {
	s.mu.Lock()

	next := make(map[string]amtraker.StationMeta, len(s.stations)+len(stations))
	for code, meta := range s.stations {
		next[code] = meta
	}
	for _, meta := range stations {
		if _, ok := next[meta.Code]; !ok {
			if meta.Trains == nil {
				meta.Trains = []string{}
			}
			next[meta.Code] = meta
		}
	}

	for _, runs := range trains {
		for _, train := range runs {
			for _, stop := range train.Stations {
				meta, ok := next[stop.Code]
				if !ok {
					continue
				}
				if slices.Contains(meta.Trains, train.TrainID) {
					continue
				}
				meta.Trains = append(slices.Clone(meta.Trains), train.TrainID)
				next[stop.Code] = meta
			}
		}
	}

	s.trains = trains
	s.stations = next
	s.lastRefresh = time.Now()
	sink := s.sink
	s.mu.Unlock()

	if sink != nil {
		// Write-behind: the snapshot is best-effort and never fails the
		// commit.
		go func() {
			if err := sink.Write(context.Background(), trains); err != nil {
				log.Error().Err(err).Msg("Snapshot write failed")
			}
		}()
	}
}

// Trains returns the current train snapshot keyed by train number.
func (s *Store) Trains() map[int][]amtraker.Train {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.trains
}

// TrainsByNumber returns all current runs of a numbered train.
func (s *Store) TrainsByNumber(num int) ([]amtraker.Train, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	runs, ok := s.trains[num]
	return runs, ok
}

// Stations returns the current station snapshot keyed by code.
func (s *Store) Stations() map[string]amtraker.StationMeta {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stations
}

// Station returns one station's reference record.
func (s *Store) Station(code string) (amtraker.StationMeta, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	meta, ok := s.stations[code]
	return meta, ok
}

// LastRefresh is the time of the last successful commit, zero before the
// first one.
func (s *Store) LastRefresh() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastRefresh
}
