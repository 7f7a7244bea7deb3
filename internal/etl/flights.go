package etl

import (
	"context"
	"iter"

	"github.com/BartekS5/airline-etl/pkg/models"
)

// ParseFlight parses one "carrier,origin,dest,depDelay,arrDelay" line.
func ParseFlight(line string) (models.Flight, error) {
	fields, err := splitRecord(line, 5)
	if err != nil {
		return models.Flight{}, err
	}
	f := models.Flight{Carrier: fields[0]}
	ints := []struct {
		name string
		dst  *int64
	}{
		{"OriginAirportID", &f.OriginAirportID},
		{"DestAirportID", &f.DestAirportID},
		{"DepDelay", &f.DepDelay},
		{"ArrDelay", &f.ArrDelay},
	}
	for i, fld := range ints {
		v, err := intField(fld.name, fields[i+1])
		if err != nil {
			return models.Flight{}, err
		}
		*fld.dst = v
	}
	return f, nil
}

// Flights lazily parses lines into flights in input order. The sequence ends
// after yielding the first error, whether from the input or from parsing.
// It reads lines only as it is iterated and cannot be restarted.
func Flights(ctx context.Context, lines Lines) iter.Seq2[models.Flight, error] {
	return func(yield func(models.Flight, error) bool) {
		n := 0
		for line, err := range lines {
			if err != nil {
				yield(models.Flight{}, err)
				return
			}
			n++
			if err := ctx.Err(); err != nil {
				yield(models.Flight{}, err)
				return
			}
			if isBlank(line) {
				continue
			}
			f, err := ParseFlight(line)
			if err != nil {
				yield(models.Flight{}, atLine(err, n))
				return
			}
			if !yield(f, nil) {
				return
			}
		}
	}
}
