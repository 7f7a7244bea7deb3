package etl

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/BartekS5/airline-etl/internal/config"
	"github.com/BartekS5/airline-etl/internal/metrics"
	"github.com/BartekS5/airline-etl/pkg/logger"
	"github.com/BartekS5/airline-etl/pkg/models"
)

// Pipeline runs the job: load airports, check that every flight line parses,
// then enrich the flight stream in batches and append each batch to the sink.
// Sinks implementing Committer publish the staged rows once all batches are in.
type Pipeline struct {
	Airports  Source
	Flights   Source
	Sink      Sink
	Workers   int
	BatchSize int
	DryRun    bool
	Metrics   metrics.Recorder

	state *JobState
}

// Summary describes a finished run.
type Summary struct {
	AirportsLoaded int
	FlightsRead    int64
	RowsWritten    int64
	LookupMisses   int64
	Duration       time.Duration
}

// NewPipeline creates a pipeline. sink may be nil when dryRun is set.
func NewPipeline(airports, flights Source, sink Sink, workers, batchSize int, dryRun bool) *Pipeline {
	if workers < 1 {
		workers = 1
	}
	if batchSize < 1 {
		batchSize = config.DefaultBatchSize
	}
	return &Pipeline{
		Airports:  airports,
		Flights:   flights,
		Sink:      sink,
		Workers:   workers,
		BatchSize: batchSize,
		DryRun:    dryRun,
		Metrics:   metrics.Nop{},
		state:     newJobState(),
	}
}

// State returns the current job state.
func (p *Pipeline) State() string { return p.state.Current() }

// Run executes the job once. A pipeline cannot be rerun.
func (p *Pipeline) Run(ctx context.Context) (Summary, error) {
	if p.Metrics == nil {
		p.Metrics = metrics.Nop{}
	}
	if err := p.state.fire(ctx, eventStart); err != nil {
		return Summary{}, fmt.Errorf("pipeline already started: %w", err)
	}
	if p.Sink == nil && !p.DryRun {
		err := errors.New("no sink configured")
		_ = p.state.fire(ctx, eventFail)
		return Summary{}, err
	}

	log := logger.WithFields(logrus.Fields{
		"airports":   p.Airports.Name(),
		"flights":    p.Flights.Name(),
		"workers":    p.Workers,
		"batch_size": p.BatchSize,
		"dry_run":    p.DryRun,
	})
	log.Info("Starting pipeline")

	start := time.Now()
	sum, err := p.run(ctx)
	sum.Duration = time.Since(start)
	p.Metrics.RecordStep(metrics.StepJob, err, sum.Duration)

	if err != nil {
		_ = p.state.fire(ctx, eventFail)
		log.WithError(err).Error("Pipeline failed")
		return sum, err
	}
	_ = p.state.fire(ctx, eventSucceed)

	rate := 0.0
	if sum.Duration.Seconds() > 0 {
		rate = float64(sum.FlightsRead) / sum.Duration.Seconds()
	}
	log.WithFields(logrus.Fields{
		"airports_loaded": sum.AirportsLoaded,
		"flights_read":    sum.FlightsRead,
		"rows_written":    sum.RowsWritten,
		"lookup_misses":   sum.LookupMisses,
	}).Infof("Pipeline finished successfully. Rate: %.2f flights/sec", rate)
	if sum.LookupMisses > 0 {
		log.Warnf("%d airport lookups missed; city/state left empty", sum.LookupMisses)
	}
	return sum, nil
}

func (p *Pipeline) run(ctx context.Context) (Summary, error) {
	var sum Summary

	airports, err := p.loadAirports(ctx)
	if err != nil {
		return sum, err
	}
	sum.AirportsLoaded = airports.Len()
	enricher := NewEnricher(airports, p.Metrics)

	// The sink is append-only, so a malformed flight must be found before
	// the first batch is written.
	var checked int64
	if !p.DryRun {
		if checked, err = p.checkFlights(ctx); err != nil {
			return sum, err
		}
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.Workers)

	var written, misses atomic.Int64
	submit := func(batch []models.Flight) {
		g.Go(func() error {
			t := time.Now()
			rows, m := enricher.EnrichBatch(batch)
			misses.Add(int64(m))
			p.Metrics.RecordStep(metrics.StepEnrich, nil, time.Since(t))
			if p.DryRun {
				logger.Debugf("[DRY RUN] Would write %d rows", len(rows))
				return nil
			}
			n, err := p.write(gctx, rows)
			if err != nil {
				return err
			}
			written.Add(n)
			return nil
		})
	}

	lines, closeFlights, err := p.Flights.Lines(gctx)
	if err != nil {
		return sum, fmt.Errorf("open %s: %w", p.Flights.Name(), err)
	}
	defer closeFlights()

	var readErr error
	batch := make([]models.Flight, 0, p.BatchSize)
	for f, err := range Flights(gctx, lines) {
		if err != nil {
			readErr = withSource(err, p.Flights.Name())
			break
		}
		sum.FlightsRead++
		batch = append(batch, f)
		if len(batch) == p.BatchSize {
			submit(batch)
			batch = make([]models.Flight, 0, p.BatchSize)
		}
	}
	if readErr == nil && len(batch) > 0 {
		submit(batch)
	}
	if readErr != nil {
		cancel()
	}
	werr := g.Wait()

	sum.RowsWritten = written.Load()
	sum.LookupMisses = misses.Load()
	p.Metrics.RecordRows(metrics.KindFlightsRead, sum.FlightsRead)

	if err := firstCause(readErr, werr); err != nil {
		return sum, err
	}
	if !p.DryRun && sum.FlightsRead != checked {
		return sum, fmt.Errorf("%s changed while the job ran: checked %d flights, read %d",
			p.Flights.Name(), checked, sum.FlightsRead)
	}

	if c, ok := p.Sink.(Committer); ok && !p.DryRun {
		t := time.Now()
		n, err := c.Commit(ctx)
		p.Metrics.RecordStep(metrics.StepCommit, err, time.Since(t))
		if err != nil {
			var we *WriteError
			if !errors.As(err, &we) {
				err = &WriteError{Sink: p.Sink.Name(), Rows: int(sum.RowsWritten), Err: err}
			}
			return sum, err
		}
		sum.RowsWritten = n
	}
	return sum, nil
}

// checkFlights parses the whole flight input once without writing anything
// and returns the number of flights in it.
func (p *Pipeline) checkFlights(ctx context.Context) (int64, error) {
	t := time.Now()
	lines, closeFn, err := p.Flights.Lines(ctx)
	if err != nil {
		err = fmt.Errorf("open %s: %w", p.Flights.Name(), err)
		p.Metrics.RecordStep(metrics.StepCheckFlights, err, time.Since(t))
		return 0, err
	}
	defer closeFn()

	var n int64
	for _, err := range Flights(ctx, lines) {
		if err != nil {
			err = withSource(err, p.Flights.Name())
			p.Metrics.RecordStep(metrics.StepCheckFlights, err, time.Since(t))
			return n, err
		}
		n++
	}
	p.Metrics.RecordStep(metrics.StepCheckFlights, nil, time.Since(t))
	logger.Infof("Checked %d flights from %s", n, p.Flights.Name())
	return n, nil
}

// firstCause picks the error that stopped the run. Cancelling the group on a
// read error makes in-flight writes fail with context.Canceled, so those
// never hide the read error.
func firstCause(readErr, werr error) error {
	switch {
	case werr == nil:
		return readErr
	case readErr == nil:
		return werr
	case errors.Is(werr, context.Canceled) && !errors.Is(readErr, context.Canceled):
		return readErr
	default:
		return werr
	}
}

func (p *Pipeline) loadAirports(ctx context.Context) (models.AirportIndex, error) {
	t := time.Now()
	lines, closeFn, err := p.Airports.Lines(ctx)
	if err != nil {
		err = fmt.Errorf("open %s: %w", p.Airports.Name(), err)
		p.Metrics.RecordStep(metrics.StepLoadAirports, err, time.Since(t))
		return nil, err
	}
	defer closeFn()

	index, err := LoadAirports(ctx, lines)
	p.Metrics.RecordStep(metrics.StepLoadAirports, err, time.Since(t))
	if err != nil {
		return nil, withSource(err, p.Airports.Name())
	}
	p.Metrics.RecordRows(metrics.KindAirportsLoaded, int64(index.Len()))
	logger.Infof("Loaded %d airports from %s", index.Len(), p.Airports.Name())
	return index, nil
}

func (p *Pipeline) write(ctx context.Context, rows []models.EnrichedFlight) (int64, error) {
	t := time.Now()
	n, err := p.Sink.Write(ctx, rows)
	p.Metrics.RecordStep(metrics.StepWrite, err, time.Since(t))
	if err != nil {
		var we *WriteError
		if !errors.As(err, &we) {
			err = &WriteError{Sink: p.Sink.Name(), Rows: len(rows), Err: err}
		}
		return n, err
	}
	p.Metrics.RecordRows(metrics.KindRowsWritten, n)
	return n, nil
}

func withSource(err error, name string) error {
	var pe *ParseError
	if errors.As(err, &pe) && pe.Source == "" {
		pe.Source = name
	}
	return err
}
