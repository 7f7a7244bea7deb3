// Package metrics records job counters and step timings. The pipeline only
// sees the Recorder interface; Nop is used when no backend is configured.
package metrics

import "time"

// Record kinds counted by the job.
const (
	KindAirportsLoaded = "airports_loaded"
	KindFlightsRead    = "flights_read"
	KindLookupMisses   = "lookup_misses"
	KindRowsWritten    = "rows_written"
)

// Step names timed by the job.
const (
	StepLoadAirports = "load_airports"
	StepCheckFlights = "check_flights"
	StepEnrich       = "enrich"
	StepWrite        = "write"
	StepCommit       = "commit"
	StepJob          = "job"
)

// Recorder is implemented by metrics backends.
type Recorder interface {
	// RecordStep counts one execution of step and observes its duration,
	// labelled success or failure depending on err.
	RecordStep(step string, err error, d time.Duration)
	// RecordRows adds delta to the counter for kind. Non-positive deltas are ignored.
	RecordRows(kind string, delta int64)
	// Flush hands collected metrics to the backend, if it needs that.
	Flush() error
}

// Nop discards everything.
type Nop struct{}

func (Nop) RecordStep(string, error, time.Duration) {}
func (Nop) RecordRows(string, int64)                {}
func (Nop) Flush() error                            { return nil }

func status(err error) string {
	if err != nil {
		return "failure"
	}
	return "success"
}
