// Package pipeline re-imports configured remote exports on cron schedules.
package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"safety-analytics-go/internal/config"
	"safety-analytics-go/internal/logger"
	"safety-analytics-go/internal/processor"
	"safety-analytics-go/internal/types"
)

// URLImporter is the part of processor.Importer the scheduler drives.
type URLImporter interface {
	ImportURL(ctx context.Context, kind types.RecordKind, url string) (processor.ImportResult, error)
}

// FeedStatus is the outcome of a feed's most recent run.
type FeedStatus struct {
	Name    string                  `json:"name"`
	Kind    types.RecordKind        `json:"kind"`
	URL     string                  `json:"url"`
	LastRun *time.Time              `json:"last_run,omitempty"`
	NextRun *time.Time              `json:"next_run,omitempty"`
	Last    *processor.ImportResult `json:"last_result,omitempty"`
}

type Scheduler struct {
	cron     *cron.Cron
	importer URLImporter
	timeout  time.Duration
	log      *logger.Logger

	mu      sync.Mutex
	feeds   []config.Feed
	entries map[string]cron.EntryID
	status  map[string]FeedStatus
}

// New registers every feed. timeout bounds each individual import.
func New(feeds []config.Feed, importer URLImporter, timeout time.Duration) (*Scheduler, error) {
	s := &Scheduler{
		cron:     cron.New(),
		importer: importer,
		timeout:  timeout,
		log:      logger.New().WithComponent("pipeline"),
		entries:  map[string]cron.EntryID{},
		status:   map[string]FeedStatus{},
	}
	for _, f := range feeds {
		id, err := s.cron.AddFunc(f.Schedule, func() { s.RunFeed(context.Background(), f) })
		if err != nil {
			return nil, fmt.Errorf("feed %q: %w", f.Name, err)
		}
		s.feeds = append(s.feeds, f)
		s.entries[f.Name] = id
		s.status[f.Name] = FeedStatus{Name: f.Name, Kind: f.Kind, URL: f.URL}
	}
	return s, nil
}

// WithLogger replaces the scheduler's logger.
func (s *Scheduler) WithLogger(l *logger.Logger) *Scheduler {
	s.log = l.WithComponent("pipeline")
	return s
}

func (s *Scheduler) Start() {
	s.log.WithField("feeds", len(s.feeds)).Info("feed scheduler started")
	s.cron.Start()
}

// Stop halts scheduling and waits for running imports.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

// RunFeed imports one feed now and records the outcome.
func (s *Scheduler) RunFeed(ctx context.Context, f config.Feed) processor.ImportResult {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	log := s.log.WithField("feed", f.Name).WithField("kind", f.Kind)
	res, err := s.importer.ImportURL(ctx, f.Kind, f.URL)
	if err != nil {
		log.WithError(err).Warn("scheduled import failed")
	} else {
		log.WithField("rows", res.Rows).Info("scheduled import finished")
	}

	now := time.Now()
	s.mu.Lock()
	st := s.status[f.Name]
	st.Name, st.Kind, st.URL = f.Name, f.Kind, f.URL
	st.LastRun = &now
	st.Last = &res
	s.status[f.Name] = st
	s.mu.Unlock()
	return res
}

// RunAll imports every feed once, in configuration order.
func (s *Scheduler) RunAll(ctx context.Context) []processor.ImportResult {
	out := make([]processor.ImportResult, 0, len(s.feeds))
	for _, f := range s.feeds {
		out = append(out, s.RunFeed(ctx, f))
	}
	return out
}

func (s *Scheduler) Status() []FeedStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]FeedStatus, 0, len(s.feeds))
	for _, f := range s.feeds {
		st := s.status[f.Name]
		if e := s.cron.Entry(s.entries[f.Name]); !e.Next.IsZero() {
			next := e.Next
			st.NextRun = &next
		}
		out = append(out, st)
	}
	return out
}
