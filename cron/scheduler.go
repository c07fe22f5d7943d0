package cron

import (
	"fmt"
	"regexp"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// scheduleRe is a coarse shape check on registration: five space-separated
// fields of digits/punctuation or 3-letter names. Semantic nonsense that
// still matches (minute 99, say) is accepted and simply never fires.
var scheduleRe = regexp.MustCompile(`^(?:[0-9*,/-]+|[A-Za-z]{3})(?: (?:[0-9*,/-]+|[A-Za-z]{3})){4}$`)

type job struct {
	schedule string
	fn       func()
}

// Scheduler fires registered jobs on wall-clock minute boundaries. Each tick
// evaluates every job's expression against the same time snapshot; matching
// jobs run concurrently and a panic in one never disturbs its siblings or the
// tick loop.
type Scheduler struct {
	mu      sync.Mutex
	jobs    []job
	started bool
	stop    chan struct{}
	done    chan struct{}
}

func NewScheduler() *Scheduler {
	return &Scheduler{
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
}

// Add registers fn to run whenever schedule matches. Malformed schedules are
// rejected immediately rather than at first tick.
func (s *Scheduler) Add(schedule string, fn func()) error {
	if !scheduleRe.MatchString(schedule) {
		return fmt.Errorf("invalid crontab %q", schedule)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs = append(s.jobs, job{schedule: schedule, fn: fn})
	return nil
}

// Start launches the tick loop.
func (s *Scheduler) Start() {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return
	}
	s.started = true
	s.mu.Unlock()
	go s.loop()
}

// Stop cancels the tick loop and waits for it to exit. Jobs already running
// are not interrupted.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	started := s.started
	s.mu.Unlock()
	if !started {
		return
	}
	close(s.stop)
	<-s.done
}

func (s *Scheduler) loop() {
	defer close(s.done)
	for {
		// Sleep to second 1 of the next minute so a tick never lands on
		// the boundary it just evaluated.
		now := time.Now()
		timer := time.NewTimer(time.Duration(61-now.Second()) * time.Second)
		select {
		case <-s.stop:
			timer.Stop()
			return
		case <-timer.C:
			s.tick(time.Now())
		}
	}
}

func (s *Scheduler) tick(now time.Time) {
	s.mu.Lock()
	jobs := make([]job, len(s.jobs))
	copy(jobs, s.jobs)
	s.mu.Unlock()

	var wg sync.WaitGroup
	for _, j := range jobs {
		if !Matches(now, j.schedule) {
			continue
		}
		wg.Add(1)
		go func(j job) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					log.Error().Str("schedule", j.schedule).Interface("panic", r).Msg("Cron job panicked")
				}
			}()
			j.fn()
		}(j)
	}
	wg.Wait()
}
