package etl

import (
	"github.com/BartekS5/airline-etl/internal/metrics"
	"github.com/BartekS5/airline-etl/pkg/models"
)

// Enrich joins a flight with its origin and destination airports. An id that
// is not in the index leaves that side's city and state empty.
func Enrich(f models.Flight, airports models.AirportIndex) models.EnrichedFlight {
	out, _ := enrich(f, airports)
	return out
}

func enrich(f models.Flight, airports models.AirportIndex) (models.EnrichedFlight, int) {
	misses := 0
	origin, ok := airports.Lookup(f.OriginAirportID)
	if !ok {
		misses++
	}
	dest, ok := airports.Lookup(f.DestAirportID)
	if !ok {
		misses++
	}
	return models.EnrichedFlight{
		Carrier:         f.Carrier,
		OriginAirportID: f.OriginAirportID,
		OriginCity:      origin.City,
		OriginState:     origin.State,
		DestAirportID:   f.DestAirportID,
		DestCity:        dest.City,
		DestState:       dest.State,
		DepDelay:        f.DepDelay,
		ArrDelay:        f.ArrDelay,
	}, misses
}

// Enricher applies Enrich over batches and reports lookup misses.
type Enricher struct {
	Airports models.AirportIndex
	Metrics  metrics.Recorder
}

func NewEnricher(airports models.AirportIndex, rec metrics.Recorder) *Enricher {
	if rec == nil {
		rec = metrics.Nop{}
	}
	return &Enricher{Airports: airports, Metrics: rec}
}

// EnrichBatch enriches flights in order and returns the number of missed lookups.
func (e *Enricher) EnrichBatch(flights []models.Flight) ([]models.EnrichedFlight, int) {
	out := make([]models.EnrichedFlight, len(flights))
	misses := 0
	for i, f := range flights {
		var m int
		out[i], m = enrich(f, e.Airports)
		misses += m
	}
	e.Metrics.RecordRows(metrics.KindLookupMisses, int64(misses))
	return out, misses
}
