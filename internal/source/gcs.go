package source

import (
	"context"
	"errors"
	"fmt"
	"io"

	"cloud.google.com/go/storage"

	"github.com/BartekS5/airline-etl/internal/config"
	"github.com/BartekS5/airline-etl/internal/etl"
	"github.com/BartekS5/airline-etl/pkg/database"
)

// GCS reads one Cloud Storage object. Without a Client, each open creates
// one from application default credentials and closes it with the reader.
type GCS struct {
	Location config.GCSLocation
	Client   *storage.Client
}

func NewGCS(loc config.GCSLocation) *GCS { return &GCS{Location: loc} }

func (g *GCS) Name() string { return g.Location.String() }

func (g *GCS) open(ctx context.Context) (io.ReadCloser, error) {
	client, owned := g.Client, false
	if client == nil {
		c, err := database.ConnectStorage(ctx)
		if err != nil {
			return nil, err
		}
		client, owned = c, true
	}
	r, err := client.Bucket(g.Location.Bucket).Object(g.Location.Object).NewReader(ctx)
	if err != nil {
		if owned {
			client.Close()
		}
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, fmt.Errorf("%s: %w", g.Name(), err)
		}
		return nil, fmt.Errorf("read %s: %w", g.Name(), err)
	}
	if !owned {
		return r, nil
	}
	return &clientReader{Reader: r, client: client}, nil
}

func (g *GCS) Lines(ctx context.Context) (etl.Lines, func() error, error) {
	return lines(ctx, g)
}

type clientReader struct {
	*storage.Reader
	client *storage.Client
}

func (c *clientReader) Close() error {
	err := c.Reader.Close()
	if cerr := c.client.Close(); err == nil {
		err = cerr
	}
	return err
}
