package etl

import (
	"context"

	"github.com/BartekS5/airline-etl/pkg/models"
)

// ParseAirport parses one "id,city,state" line.
func ParseAirport(line string) (models.Airport, error) {
	fields, err := splitRecord(line, 3)
	if err != nil {
		return models.Airport{}, err
	}
	id, err := intField("id", fields[0])
	if err != nil {
		return models.Airport{}, err
	}
	return models.Airport{ID: id, City: fields[1], State: fields[2]}, nil
}

// LoadAirports reads every line into an index keyed by airport id. The first
// malformed line aborts the load and no index is returned. A repeated id
// overwrites the earlier entry.
func LoadAirports(ctx context.Context, lines Lines) (models.AirportIndex, error) {
	index := make(models.AirportIndex)
	n := 0
	for line, err := range lines {
		if err != nil {
			return nil, err
		}
		n++
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if isBlank(line) {
			continue
		}
		a, err := ParseAirport(line)
		if err != nil {
			return nil, atLine(err, n)
		}
		index[a.ID] = models.AirportInfo{City: a.City, State: a.State}
	}
	return index, nil
}
