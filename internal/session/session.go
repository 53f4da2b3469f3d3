// Package session orchestrates a measurement run: it samples the frame
// source at a fixed cadence, feeds the detector, and accumulates the latest
// count. Persistence is a distinct explicit action; stopping a session
// never writes anything by itself.
package session

import (
	"image"
	"sync"
	"time"

	"github.com/aquasense/shrimpscale/internal/datastore"
	"github.com/aquasense/shrimpscale/internal/detector"
	"github.com/aquasense/shrimpscale/internal/errors"
	"github.com/aquasense/shrimpscale/internal/feed"
	"github.com/aquasense/shrimpscale/internal/frame"
	"github.com/aquasense/shrimpscale/internal/observability"
)

// State is the session lifecycle state.
type State int

const (
	StateIdle State = iota
	StateRunning
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// ErrAlreadyRunning is returned when Start is called on a running session.
var ErrAlreadyRunning = errors.Newf("session already running").
	Component("session").
	Category(errors.CategoryState).
	Build()

// Counter is the detection surface the session samples. Satisfied by
// *detector.Detector.
type Counter interface {
	Detect(frame image.Image, annotate bool) detector.Result
}

// Session drives the sampling loop and holds the live measurement state.
// All mutable state is owned by one logical frontend; accessors are safe
// for concurrent reads.
type Session struct {
	source   frame.Source
	counter  Counter
	compute  feed.Calculator
	store    datastore.Interface
	interval time.Duration
	obs      *observability.Metrics

	mu        sync.Mutex
	state     State
	count     int
	metrics   feed.Metrics
	startedAt time.Time
	stop      chan struct{}
	done      chan struct{}
}

// New creates an idle session.
func New(source frame.Source, counter Counter, compute feed.Calculator, store datastore.Interface, interval time.Duration, obs *observability.Metrics) *Session {
	return &Session{
		source:   source,
		counter:  counter,
		compute:  compute,
		store:    store,
		interval: interval,
		obs:      obs,
	}
}

// Start begins periodic sampling.
func (s *Session) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateRunning {
		return ErrAlreadyRunning
	}
	s.state = StateRunning
	s.startedAt = time.Now()
	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	go s.run(s.stop, s.done)

	getLogger().Info("measurement session started", "interval", s.interval)
	return nil
}

func (s *Session) run(stop, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			s.sample()
		}
	}
}

// sample pulls one frame and updates the live count. Detection and storage
// calls are synchronous; a slow inference simply stalls the next tick,
// which is acceptable at a human-perceptible cadence.
func (s *Session) sample() {
	img, err := s.source.Frame()
	if err != nil {
		getLogger().Debug("no frame this tick")
		return
	}
	s.obs.IncFramesSampled()

	result := s.counter.Detect(img, false)

	s.mu.Lock()
	s.count = result.Count
	s.metrics = s.compute(result.Count)
	s.mu.Unlock()
}

// Stop ends sampling and freezes the count at its last sampled value. It
// does not persist anything.
func (s *Session) Stop() {
	s.mu.Lock()
	if s.state != StateRunning {
		s.mu.Unlock()
		return
	}
	stop, done := s.stop, s.done
	s.mu.Unlock()

	close(stop)
	<-done

	s.mu.Lock()
	s.state = StateStopped
	s.mu.Unlock()

	getLogger().Info("measurement session stopped", "count", s.Count())
}

// Reset discards the accumulated count and returns to Idle without
// touching storage.
func (s *Session) Reset() {
	s.mu.Lock()
	if s.state == StateRunning {
		stop, done := s.stop, s.done
		s.mu.Unlock()
		close(stop)
		<-done
		s.mu.Lock()
	}
	s.count = 0
	s.metrics = feed.Metrics{}
	s.state = StateIdle
	s.mu.Unlock()

	getLogger().Info("measurement session reset")
}

// Save computes the feed metrics from the frozen count and persists a new
// record for the owner. It may be called in any state; saving before a
// session has ever run yields a record for count 0.
func (s *Session) Save(ownerID string) (string, error) {
	s.mu.Lock()
	count := s.count
	s.mu.Unlock()

	m := s.compute(count)
	recordID, err := s.store.CreateRecord(ownerID, count, m.Biomass, m.Feed)
	if err != nil {
		return "", err
	}

	getLogger().Info("measurement saved",
		"record_id", recordID, "owner_id", ownerID, "count", count)
	return recordID, nil
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Count returns the live (or frozen) shrimp count.
func (s *Session) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.count
}

// Metrics returns the feed metrics derived from the current count.
func (s *Session) Metrics() feed.Metrics {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.metrics
}

// StartedAt returns when the current or last run began.
func (s *Session) StartedAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.startedAt
}
