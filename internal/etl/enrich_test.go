package etl

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/BartekS5/airline-etl/internal/metrics"
	"github.com/BartekS5/airline-etl/pkg/models"
)

func TestEnrichBothAirportsKnown(t *testing.T) {
	got := Enrich(models.Flight{Carrier: "AA", OriginAirportID: 1, DestAirportID: 2, DepDelay: 10, ArrDelay: -5}, testAirports())

	assert.Equal(t, models.EnrichedFlight{
		Carrier:         "AA",
		OriginAirportID: 1,
		OriginCity:      "SEA",
		OriginState:     "WA",
		DestAirportID:   2,
		DestCity:        "LAX",
		DestState:       "CA",
		DepDelay:        10,
		ArrDelay:        -5,
	}, got)
}

func TestEnrichMissingDestination(t *testing.T) {
	got := Enrich(models.Flight{Carrier: "DL", OriginAirportID: 1, DestAirportID: 999}, testAirports())

	assert.Equal(t, models.EnrichedFlight{
		Carrier:         "DL",
		OriginAirportID: 1,
		OriginCity:      "SEA",
		OriginState:     "WA",
		DestAirportID:   999,
	}, got)
}

func TestEnrichKeepsAirportIDs(t *testing.T) {
	airports := testAirports()
	flights := []models.Flight{
		{Carrier: "AA", OriginAirportID: 1, DestAirportID: 2},
		{Carrier: "B6", OriginAirportID: 404, DestAirportID: 2},
		{Carrier: "WN", OriginAirportID: 500, DestAirportID: 501},
	}
	for _, f := range flights {
		got := Enrich(f, airports)
		assert.Equal(t, f.OriginAirportID, got.OriginAirportID)
		assert.Equal(t, f.DestAirportID, got.DestAirportID)

		origin, ok := airports.Lookup(f.OriginAirportID)
		assert.Equal(t, !ok, got.OriginCity == "" && got.OriginState == "")
		assert.Equal(t, origin.City, got.OriginCity)

		dest, ok := airports.Lookup(f.DestAirportID)
		assert.Equal(t, !ok, got.DestCity == "" && got.DestState == "")
		assert.Equal(t, dest.State, got.DestState)
	}
}

func TestEnrichIsIdempotent(t *testing.T) {
	airports := testAirports()
	f := models.Flight{Carrier: "UA", OriginAirportID: 2, DestAirportID: 3, DepDelay: 7, ArrDelay: 1}
	assert.Equal(t, Enrich(f, airports), Enrich(f, airports))
}

type rowCounter struct {
	metrics.Nop
	rows map[string]int64
}

func (r *rowCounter) RecordRows(kind string, delta int64) { r.rows[kind] += delta }

func TestEnricherCountsMisses(t *testing.T) {
	rec := &rowCounter{rows: map[string]int64{}}
	e := NewEnricher(testAirports(), rec)

	out, misses := e.EnrichBatch([]models.Flight{
		{Carrier: "AA", OriginAirportID: 1, DestAirportID: 2},
		{Carrier: "DL", OriginAirportID: 1, DestAirportID: 999},
		{Carrier: "NK", OriginAirportID: 998, DestAirportID: 999},
	})

	assert.Len(t, out, 3)
	assert.Equal(t, 3, misses)
	assert.Equal(t, int64(3), rec.rows[metrics.KindLookupMisses])
	assert.Equal(t, "DL", out[1].Carrier)
}
