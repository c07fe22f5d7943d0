package store

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/eiiot/amtraker-v3/amtraker"
)

func trainWithStops(num int, id string, codes ...string) amtraker.Train {
	stops := make([]amtraker.Station, len(codes))
	for i, code := range codes {
		stops[i] = amtraker.Station{Code: code}
	}
	return amtraker.Train{TrainNum: num, TrainID: id, Stations: stops}
}

func metas(codes ...string) []amtraker.StationMeta {
	out := make([]amtraker.StationMeta, len(codes))
	for i, code := range codes {
		out[i] = amtraker.StationMeta{Code: code, Trains: []string{}}
	}
	return out
}

func TestCommitReplacesTrainsWholesale(t *testing.T) {
	s := New()

	s.Commit(map[int][]amtraker.Train{
		123: {trainWithStops(123, "123-15", "NYP")},
	}, nil)
	s.Commit(map[int][]amtraker.Train{
		91: {trainWithStops(91, "91-15", "NYP")},
	}, nil)

	if _, ok := s.TrainsByNumber(123); ok {
		t.Error("train 123 survived a commit that did not include it")
	}
	runs, ok := s.TrainsByNumber(91)
	if !ok || len(runs) != 1 {
		t.Fatalf("train 91 lookup = %v, %v", runs, ok)
	}
}

func TestCommitMergesStations(t *testing.T) {
	s := New()

	s.Commit(nil, metas("NYP", "PHL"))

	// Mark the existing record so a second commit can prove it is kept
	// rather than replaced.
	s.Commit(map[int][]amtraker.Train{
		123: {trainWithStops(123, "123-15", "NYP")},
	}, nil)

	s.Commit(nil, []amtraker.StationMeta{
		{Code: "NYP", Name: "Overwritten", Trains: []string{}},
		{Code: "WAS", Trains: []string{}},
	})

	if got := len(s.Stations()); got != 3 {
		t.Fatalf("got %d stations, want 3", got)
	}
	nyp, ok := s.Station("NYP")
	if !ok {
		t.Fatal("NYP missing")
	}
	if nyp.Name == "Overwritten" {
		t.Error("existing station record was replaced by a later commit")
	}
	if len(nyp.Trains) != 1 || nyp.Trains[0] != "123-15" {
		t.Errorf("NYP back-references = %v, want [123-15]", nyp.Trains)
	}
	if _, ok := s.Station("WAS"); !ok {
		t.Error("new station WAS was not added")
	}
}

func TestCommitBackReferencesGrowWithoutDuplicates(t *testing.T) {
	s := New()
	s.Commit(nil, metas("NYP", "PHL"))

	day15 := map[int][]amtraker.Train{
		123: {trainWithStops(123, "123-15", "NYP", "PHL")},
	}
	s.Commit(day15, nil)
	s.Commit(day15, nil) // same run again: no duplicate IDs
	s.Commit(map[int][]amtraker.Train{
		123: {trainWithStops(123, "123-16", "NYP")},
	}, nil)

	nyp, _ := s.Station("NYP")
	if len(nyp.Trains) != 2 || nyp.Trains[0] != "123-15" || nyp.Trains[1] != "123-16" {
		t.Errorf("NYP back-references = %v, want [123-15 123-16]", nyp.Trains)
	}

	// The 123-15 reference outlives the commit that dropped the run.
	phl, _ := s.Station("PHL")
	if len(phl.Trains) != 1 || phl.Trains[0] != "123-15" {
		t.Errorf("PHL back-references = %v, want [123-15]", phl.Trains)
	}
}

func TestCommitIgnoresUnknownStopCodes(t *testing.T) {
	s := New()
	s.Commit(map[int][]amtraker.Train{
		123: {trainWithStops(123, "123-15", "ZZZ")},
	}, metas("NYP"))

	if got := len(s.Stations()); got != 1 {
		t.Errorf("got %d stations, want 1", got)
	}
}

func TestSnapshotsAreStableAcrossCommits(t *testing.T) {
	s := New()
	s.Commit(nil, metas("NYP"))
	s.Commit(map[int][]amtraker.Train{
		123: {trainWithStops(123, "123-15", "NYP")},
	}, nil)

	before := s.Stations()
	nypBefore := before["NYP"]

	s.Commit(map[int][]amtraker.Train{
		123: {trainWithStops(123, "123-16", "NYP")},
	}, nil)

	// The earlier snapshot must not have been mutated in place.
	if len(nypBefore.Trains) != 1 || nypBefore.Trains[0] != "123-15" {
		t.Errorf("earlier snapshot changed: %v", nypBefore.Trains)
	}
	nypAfter, _ := s.Station("NYP")
	if len(nypAfter.Trains) != 2 {
		t.Errorf("current snapshot = %v, want two IDs", nypAfter.Trains)
	}
}

type recordingSink struct {
	wrote chan map[int][]amtraker.Train
	err   error
}

func (r *recordingSink) Write(_ context.Context, trains map[int][]amtraker.Train) error {
	r.wrote <- trains
	return r.err
}

func TestCommitNotifiesSink(t *testing.T) {
	s := New()
	sink := &recordingSink{wrote: make(chan map[int][]amtraker.Train, 1)}
	s.SetSink(sink)

	trains := map[int][]amtraker.Train{123: {trainWithStops(123, "123-15", "NYP")}}
	s.Commit(trains, nil)

	select {
	case got := <-sink.wrote:
		if len(got) != 1 {
			t.Errorf("sink received %d train numbers, want 1", len(got))
		}
	case <-time.After(2 * time.Second):
		t.Fatal("sink was never invoked")
	}
}

func TestCommitSurvivesSinkFailure(t *testing.T) {
	s := New()
	sink := &recordingSink{wrote: make(chan map[int][]amtraker.Train, 1), err: errors.New("disk full")}
	s.SetSink(sink)

	s.Commit(map[int][]amtraker.Train{123: {trainWithStops(123, "123-15", "NYP")}}, nil)

	<-sink.wrote
	if _, ok := s.TrainsByNumber(123); !ok {
		t.Error("commit lost after sink failure")
	}
	if s.LastRefresh().IsZero() {
		t.Error("last refresh not recorded after sink failure")
	}
}

func TestFileSinkRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshots", "trains.json")
	sink := NewFileSink(path)

	trains := map[int][]amtraker.Train{123: {trainWithStops(123, "123-15", "NYP")}}
	if err := sink.Write(context.Background(), trains); err != nil {
		t.Fatalf("Write: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var got map[int][]amtraker.Train
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatal(err)
	}
	if len(got[123]) != 1 || got[123][0].TrainID != "123-15" {
		t.Errorf("round-tripped snapshot = %+v", got)
	}
}
