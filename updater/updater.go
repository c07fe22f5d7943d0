package updater

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc/pool"

	"github.com/eiiot/amtraker-v3/amtraker"
	"github.com/eiiot/amtraker-v3/converter"
	"github.com/eiiot/amtraker-v3/feed"
	"github.com/eiiot/amtraker-v3/store"
)

// Updater runs one refresh cycle: fetch and decrypt both feeds, assemble the
// normalized train and station sets, and commit them. A failed cycle leaves
// the previous snapshot untouched; the next scheduled tick is the only retry.
type Updater struct {
	store  *store.Store
	client *feed.Client
	conv   *converter.Converter

	trainsURL   string
	stationsURL string

	running atomic.Bool
}

func New(st *store.Store, client *feed.Client, conv *converter.Converter, trainsURL, stationsURL string) *Updater {
	return &Updater{
		store:       st,
		client:      client,
		conv:        conv,
		trainsURL:   trainsURL,
		stationsURL: stationsURL,
	}
}

// Refresh executes one cycle. At most one refresh is in flight at a time; a
// tick that arrives while one is still running is skipped, not queued.
func (u *Updater) Refresh(ctx context.Context) error {
	if !u.running.CompareAndSwap(false, true) {
		log.Warn().Msg("Refresh already in flight, skipping tick")
		return nil
	}
	defer u.running.Store(false)

	start := time.Now()

	var trainsDoc, stationsDoc []byte
	p := pool.New().WithErrors()
	p.Go(func() error {
		doc, err := u.client.FetchDecrypted(ctx, u.trainsURL)
		if err != nil {
			return fmt.Errorf("trains feed: %w", err)
		}
		trainsDoc = doc
		return nil
	})
	p.Go(func() error {
		doc, err := u.client.FetchDecrypted(ctx, u.stationsURL)
		if err != nil {
			return fmt.Errorf("stations feed: %w", err)
		}
		stationsDoc = doc
		return nil
	})
	if err := p.Wait(); err != nil {
		return err
	}

	features, err := feed.ParseTrains(trainsDoc)
	if err != nil {
		return err
	}
	stationFeatures, err := feed.ParseStations(stationsDoc)
	if err != nil {
		return err
	}

	trains := u.conv.AssembleAll(features)
	stations := make([]amtraker.StationMeta, 0, len(stationFeatures))
	for _, f := range stationFeatures {
		stations = append(stations, u.conv.StationMeta(f))
	}

	u.store.Commit(trains, stations)

	runs := 0
	for _, r := range trains {
		runs += len(r)
	}
	log.Info().
		Int("trains", runs).
		Int("stations", len(stations)).
		Dur("took", time.Since(start)).
		Msg("Refresh complete")
	return nil
}

// Job wraps Refresh for registration on the cron scheduler; errors are logged
// rather than propagated so one bad cycle never unregisters the job.
func (u *Updater) Job(ctx context.Context) func() {
	return func() {
		if err := u.Refresh(ctx); err != nil {
			log.Error().Err(err).Msg("Refresh failed, keeping previous snapshot")
		}
	}
}
