package sink

import (
	"context"
	"encoding/json"
	"io"
	"sync"

	"github.com/BartekS5/airline-etl/pkg/models"
)

// JSONLines writes one JSON object per row. It is used for local runs and
// inspection; rows from concurrent writers never interleave.
type JSONLines struct {
	mu    sync.Mutex
	enc   *json.Encoder
	table string
}

func NewJSONLines(w io.Writer, table string) *JSONLines {
	return &JSONLines{enc: json.NewEncoder(w), table: table}
}

func (s *JSONLines) Name() string { return "stdout:" + s.table }

func (s *JSONLines) Write(ctx context.Context, rows []models.EnrichedFlight) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for _, r := range rows {
		if err := ctx.Err(); err != nil {
			return n, writeErr(s.Name(), len(rows), err)
		}
		if err := s.enc.Encode(r); err != nil {
			return n, writeErr(s.Name(), len(rows), err)
		}
		n++
	}
	return n, nil
}
