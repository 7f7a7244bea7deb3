package etl

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/BartekS5/airline-etl/pkg/models"
)

type memSource struct {
	name    string
	lines   []string
	openErr error
}

func (m memSource) Name() string { return m.name }

func (m memSource) Lines(context.Context) (Lines, func() error, error) {
	if m.openErr != nil {
		return nil, nil, m.openErr
	}
	return linesOf(m.lines...), func() error { return nil }, nil
}

func linesOf(lines ...string) Lines {
	return func(yield func(string, error) bool) {
		for _, l := range lines {
			if !yield(l, nil) {
				return
			}
		}
	}
}

type memSink struct {
	mu   sync.Mutex
	rows []models.EnrichedFlight
	err  error
}

func (s *memSink) Name() string { return "mem" }

func (s *memSink) Write(_ context.Context, rows []models.EnrichedFlight) (int64, error) {
	if s.err != nil {
		return 0, s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = append(s.rows, rows...)
	return int64(len(rows)), nil
}

// slowSink holds every write for delay unless the context ends first.
type slowSink struct {
	memSink
	delay time.Duration
}

func (s *slowSink) Write(ctx context.Context, rows []models.EnrichedFlight) (int64, error) {
	select {
	case <-time.After(s.delay):
	case <-ctx.Done():
		return 0, ctx.Err()
	}
	return s.memSink.Write(ctx, rows)
}

// stagingSink keeps written rows hidden until Commit.
type stagingSink struct {
	memSink
	staged    int64
	commits   int
	commitErr error
}

func (s *stagingSink) Write(_ context.Context, rows []models.EnrichedFlight) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return 0, s.err
	}
	s.staged += int64(len(rows))
	return int64(len(rows)), nil
}

func (s *stagingSink) Commit(context.Context) (int64, error) {
	s.commits++
	if s.commitErr != nil {
		return 0, s.commitErr
	}
	return s.staged, nil
}

// reopenSource returns the next slice of lines on every open, repeating
// the last one.
type reopenSource struct {
	name  string
	opens [][]string
	n     int
}

func (r *reopenSource) Name() string { return r.name }

func (r *reopenSource) Lines(context.Context) (Lines, func() error, error) {
	i := min(r.n, len(r.opens)-1)
	r.n++
	return linesOf(r.opens[i]...), func() error { return nil }, nil
}

var errSinkDown = errors.New("sink down")

func testAirports() models.AirportIndex {
	return models.AirportIndex{
		1: {City: "SEA", State: "WA"},
		2: {City: "LAX", State: "CA"},
	}
}
