package etl

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BartekS5/airline-etl/internal/config"
	"github.com/BartekS5/airline-etl/pkg/models"
)

var airportLines = []string{"1,SEA,WA", "2,LAX,CA"}

func newTestPipeline(flights []string, sink Sink, workers, batch int) *Pipeline {
	return NewPipeline(
		memSource{name: "airports.csv", lines: airportLines},
		memSource{name: "flights.csv", lines: flights},
		sink, workers, batch, false,
	)
}

func TestPipelineRun(t *testing.T) {
	sink := &memSink{}
	p := newTestPipeline([]string{
		"AA,1,2,10,-5",
		"DL,1,999,0,0",
		"UA,2,1,3,4",
		"WN,2,2,0,1",
		"B6,7,8,0,0",
	}, sink, 3, 2)

	sum, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, StateSucceeded, p.State())
	assert.Equal(t, 2, sum.AirportsLoaded)
	assert.Equal(t, int64(5), sum.FlightsRead)
	assert.Equal(t, int64(5), sum.RowsWritten)
	assert.Equal(t, int64(3), sum.LookupMisses)

	require.Len(t, sink.rows, 5)
	sort.Slice(sink.rows, func(i, j int) bool { return sink.rows[i].Carrier < sink.rows[j].Carrier })
	assert.Equal(t, models.EnrichedFlight{
		Carrier: "AA", OriginAirportID: 1, OriginCity: "SEA", OriginState: "WA",
		DestAirportID: 2, DestCity: "LAX", DestState: "CA", DepDelay: 10, ArrDelay: -5,
	}, sink.rows[0])
	assert.Equal(t, models.EnrichedFlight{
		Carrier: "DL", OriginAirportID: 1, OriginCity: "SEA", OriginState: "WA",
		DestAirportID: 999,
	}, sink.rows[2])
}

func TestPipelineManyBatches(t *testing.T) {
	var flights []string
	for i := 0; i < 1000; i++ {
		flights = append(flights, fmt.Sprintf("C%d,%d,%d,%d,0", i, i%3, (i+1)%3, i))
	}
	sink := &memSink{}
	sum, err := newTestPipeline(flights, sink, 4, 64).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1000), sum.RowsWritten)
	assert.Len(t, sink.rows, 1000)
}

func TestPipelineMalformedAirportWritesNothing(t *testing.T) {
	sink := &memSink{}
	p := NewPipeline(
		memSource{name: "airports.csv", lines: []string{"1,SEA,WA", "two,LAX,CA"}},
		memSource{name: "flights.csv", lines: []string{"AA,1,2,10,-5"}},
		sink, 2, 10, false,
	)

	_, err := p.Run(context.Background())

	var pe *ParseError
	require.True(t, errors.As(err, &pe), "want *ParseError, got %v", err)
	assert.Equal(t, "airports.csv", pe.Source)
	assert.Equal(t, 2, pe.Line)
	assert.Contains(t, err.Error(), "airports.csv:2")
	assert.Empty(t, sink.rows)
	assert.Equal(t, StateFailed, p.State())
}

func TestPipelineMalformedFlight(t *testing.T) {
	p := newTestPipeline([]string{"AA,1,2,10,-5", "DL,1,2,soon,0"}, &memSink{}, 1, 10)

	_, err := p.Run(context.Background())

	var pe *ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "flights.csv", pe.Source)
	assert.Equal(t, "DepDelay", pe.Field)
	assert.Equal(t, StateFailed, p.State())
}

func TestPipelineWriteError(t *testing.T) {
	p := newTestPipeline([]string{"AA,1,2,10,-5", "DL,1,2,0,0"}, &memSink{err: errSinkDown}, 2, 1)

	_, err := p.Run(context.Background())

	var we *WriteError
	require.True(t, errors.As(err, &we), "want *WriteError, got %v", err)
	assert.Equal(t, "mem", we.Sink)
	assert.ErrorIs(t, err, errSinkDown)
	assert.Equal(t, StateFailed, p.State())
}

func TestPipelineOpenError(t *testing.T) {
	openErr := errors.New("no such file")
	p := NewPipeline(
		memSource{name: "airports.csv", openErr: openErr},
		memSource{name: "flights.csv"},
		&memSink{}, 1, 1, false,
	)
	_, err := p.Run(context.Background())
	assert.ErrorIs(t, err, openErr)
}

func TestPipelineDryRun(t *testing.T) {
	p := NewPipeline(
		memSource{name: "airports.csv", lines: airportLines},
		memSource{name: "flights.csv", lines: []string{"AA,1,2,10,-5", "DL,1,999,0,0"}},
		nil, 2, 1, true,
	)
	sum, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), sum.FlightsRead)
	assert.Zero(t, sum.RowsWritten)
	assert.Equal(t, int64(1), sum.LookupMisses)
}

func TestPipelineRequiresSink(t *testing.T) {
	p := newTestPipeline(nil, nil, 1, 1)
	_, err := p.Run(context.Background())
	assert.Error(t, err)
	assert.Equal(t, StateFailed, p.State())
}

func TestPipelineRunsOnce(t *testing.T) {
	p := newTestPipeline([]string{"AA,1,2,0,0"}, &memSink{}, 1, 1)
	assert.Equal(t, StatePending, p.State())

	_, err := p.Run(context.Background())
	require.NoError(t, err)

	_, err = p.Run(context.Background())
	assert.Error(t, err)
	assert.Equal(t, StateSucceeded, p.State())
}

func TestPipelineDefaults(t *testing.T) {
	p := NewPipeline(memSource{}, memSource{}, &memSink{}, 0, 0, false)
	assert.Equal(t, 1, p.Workers)
	assert.Equal(t, config.DefaultBatchSize, p.BatchSize)
}

func TestPipelineMalformedFlightWritesNothing(t *testing.T) {
	var flights []string
	for i := 0; i < 600; i++ {
		flights = append(flights, fmt.Sprintf("AA,1,2,%d,0", i))
	}
	flights = append(flights, "DL,1,2,x,0")
	sink := &memSink{}

	sum, err := newTestPipeline(flights, sink, 1, 500).Run(context.Background())

	var pe *ParseError
	require.True(t, errors.As(err, &pe), "want *ParseError, got %v", err)
	assert.Equal(t, 601, pe.Line)
	assert.Zero(t, sum.RowsWritten)
	assert.Empty(t, sink.rows)
}

func TestPipelineMalformedFlightWithSlowSink(t *testing.T) {
	sink := &slowSink{delay: 200 * time.Millisecond}
	p := newTestPipeline([]string{"AA,1,2,10,-5", "DL,1,2,soon,0"}, sink, 2, 1)

	_, err := p.Run(context.Background())

	var pe *ParseError
	require.True(t, errors.As(err, &pe), "want *ParseError, got %v", err)
	assert.Equal(t, "DepDelay", pe.Field)
	assert.Empty(t, sink.rows)
}

func TestPipelineReadErrorBeatsCancelledWrites(t *testing.T) {
	flights := &reopenSource{name: "flights.csv", opens: [][]string{
		{"AA,1,2,10,-5", "DL,1,2,3,0"},
		{"AA,1,2,10,-5", "DL,1,2,soon,0"},
	}}
	sink := &slowSink{delay: 200 * time.Millisecond}
	p := NewPipeline(memSource{name: "airports.csv", lines: airportLines}, flights, sink, 2, 1, false)

	_, err := p.Run(context.Background())

	var pe *ParseError
	require.True(t, errors.As(err, &pe), "want *ParseError, got %v", err)
	assert.Equal(t, "flights.csv", pe.Source)
	assert.Equal(t, 2, pe.Line)
}

func TestPipelineFlightsChangedBetweenPasses(t *testing.T) {
	flights := &reopenSource{name: "flights.csv", opens: [][]string{
		{"AA,1,2,10,-5", "DL,1,2,3,0"},
		{"AA,1,2,10,-5"},
	}}
	p := NewPipeline(memSource{name: "airports.csv", lines: airportLines}, flights, &memSink{}, 1, 10, false)

	_, err := p.Run(context.Background())
	assert.ErrorContains(t, err, "flights.csv changed")
	assert.Equal(t, StateFailed, p.State())
}

func TestPipelineCommitsStagedRows(t *testing.T) {
	sink := &stagingSink{}
	sum, err := newTestPipeline([]string{"AA,1,2,0,0", "DL,2,1,0,0", "UA,1,1,0,0"}, sink, 2, 2).
		Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, sink.commits)
	assert.Equal(t, int64(3), sum.RowsWritten)
}

func TestPipelineNoCommitAfterParseError(t *testing.T) {
	sink := &stagingSink{}
	_, err := newTestPipeline([]string{"AA,1,2,0,0", "DL,two,1,0,0"}, sink, 1, 1).Run(context.Background())

	var pe *ParseError
	require.True(t, errors.As(err, &pe))
	assert.Zero(t, sink.commits)
	assert.Zero(t, sink.staged)
}

func TestPipelineCommitError(t *testing.T) {
	sink := &stagingSink{commitErr: errSinkDown}
	p := newTestPipeline([]string{"AA,1,2,0,0"}, sink, 1, 1)
	_, err := p.Run(context.Background())

	var we *WriteError
	require.True(t, errors.As(err, &we), "want *WriteError, got %v", err)
	assert.ErrorIs(t, err, errSinkDown)
	assert.Equal(t, StateFailed, p.State())
}

func TestFirstCause(t *testing.T) {
	parse := &ParseError{Line: 3, Err: errors.New("bad")}
	cancelled := &WriteError{Sink: "mem", Rows: 1, Err: context.Canceled}
	down := &WriteError{Sink: "mem", Rows: 1, Err: errSinkDown}

	assert.NoError(t, firstCause(nil, nil))
	assert.Same(t, parse, firstCause(parse, nil))
	assert.Same(t, down, firstCause(nil, down))
	assert.Same(t, parse, firstCause(parse, cancelled))
	assert.Same(t, down, firstCause(context.Canceled, down))
}
