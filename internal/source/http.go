package source

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/BartekS5/airline-etl/internal/etl"
)

// HTTP streams a dataset from a URL.
type HTTP struct {
	URL    string
	Client *http.Client
}

func NewHTTP(url string) *HTTP {
	return &HTTP{URL: url, Client: http.DefaultClient}
}

func (h *HTTP) Name() string { return h.URL }

func (h *HTTP) open(ctx context.Context) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.URL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := h.Client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, fmt.Errorf("GET %s: unexpected status: %d", h.URL, resp.StatusCode)
	}
	return resp.Body, nil
}

func (h *HTTP) Lines(ctx context.Context) (etl.Lines, func() error, error) {
	return lines(ctx, h)
}
