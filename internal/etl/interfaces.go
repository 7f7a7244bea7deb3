package etl

import (
	"context"
	"iter"

	"github.com/BartekS5/airline-etl/pkg/models"
)

// Lines is a sequence of raw input lines. A non-nil error ends the sequence.
type Lines = iter.Seq2[string, error]

// Source opens one input dataset as a line sequence.
type Source interface {
	Name() string
	Lines(ctx context.Context) (Lines, func() error, error)
}

// Sink appends enriched rows to the destination table. Implementations must
// be safe for concurrent Write calls.
type Sink interface {
	Name() string
	Write(ctx context.Context, rows []models.EnrichedFlight) (int64, error)
}

// Committer is implemented by sinks that stage rows during Write and make
// them visible in one step. Commit runs once after every batch was written
// and returns the number of rows published.
type Committer interface {
	Commit(ctx context.Context) (int64, error)
}
