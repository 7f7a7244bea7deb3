package etl

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BartekS5/airline-etl/pkg/models"
)

func TestParseAirport(t *testing.T) {
	tests := []struct {
		name string
		line string
		want models.Airport
	}{
		{"plain", "10397,Atlanta,GA", models.Airport{ID: 10397, City: "Atlanta", State: "GA"}},
		{"quoted city with comma", `12478,"New York, NY",NY`, models.Airport{ID: 12478, City: "New York, NY", State: "NY"}},
		{"padded id", " 42 ,Boise,ID", models.Airport{ID: 42, City: "Boise", State: "ID"}},
		{"extra fields ignored", "7,Reno,NV,extra", models.Airport{ID: 7, City: "Reno", State: "NV"}},
		{"empty city", "8,,AK", models.Airport{ID: 8, City: "", State: "AK"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAirport(tt.line)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseAirportErrors(t *testing.T) {
	tests := []struct {
		name  string
		line  string
		field string
	}{
		{"non-integer id", "SEA,Seattle,WA", "id"},
		{"float id", "1.5,Seattle,WA", "id"},
		{"empty id", ",Seattle,WA", "id"},
		{"too few fields", "1,Seattle", ""},
		{"bad quoting", `1,"Seattle,WA`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseAirport(tt.line)
			var pe *ParseError
			require.True(t, errors.As(err, &pe), "want *ParseError, got %v", err)
			assert.Equal(t, tt.field, pe.Field)
		})
	}
}

func TestLoadAirportsRoundTrip(t *testing.T) {
	in := []models.Airport{
		{ID: 1, City: "SEA", State: "WA"},
		{ID: 2, City: "LAX", State: "CA"},
		{ID: 13930, City: "Chicago", State: "IL"},
	}
	lines := []string{"1,SEA,WA", "2,LAX,CA", "13930,Chicago,IL"}

	index, err := LoadAirports(context.Background(), linesOf(lines...))
	require.NoError(t, err)
	require.Equal(t, len(in), index.Len())

	for _, a := range in {
		info, ok := index.Lookup(a.ID)
		require.True(t, ok, "airport %d missing", a.ID)
		assert.Equal(t, a.City, info.City)
		assert.Equal(t, a.State, info.State)
	}
}

func TestLoadAirportsDuplicateLastWins(t *testing.T) {
	index, err := LoadAirports(context.Background(), linesOf(
		"1,Old City,OC",
		"2,LAX,CA",
		"1,SEA,WA",
	))
	require.NoError(t, err)

	assert.Equal(t, 2, index.Len())
	assert.Equal(t, models.AirportInfo{City: "SEA", State: "WA"}, index[1])
}

func TestLoadAirportsSkipsBlankLines(t *testing.T) {
	index, err := LoadAirports(context.Background(), linesOf("1,SEA,WA", "", "  ", "2,LAX,CA"))
	require.NoError(t, err)
	assert.Equal(t, 2, index.Len())
}

func TestLoadAirportsFailsFast(t *testing.T) {
	index, err := LoadAirports(context.Background(), linesOf("1,SEA,WA", "x,LAX,CA", "3,PDX,OR"))
	assert.Nil(t, index)

	var pe *ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, 2, pe.Line)
	assert.Equal(t, "id", pe.Field)
	assert.Equal(t, "x", pe.Value)
}

func TestLoadAirportsInputError(t *testing.T) {
	readErr := errors.New("disk gone")
	lines := func(yield func(string, error) bool) {
		if !yield("1,SEA,WA", nil) {
			return
		}
		yield("", readErr)
	}
	_, err := LoadAirports(context.Background(), lines)
	assert.ErrorIs(t, err, readErr)
}

func TestLoadAirportsCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := LoadAirports(ctx, linesOf("1,SEA,WA"))
	assert.ErrorIs(t, err, context.Canceled)
}
