package sink

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"path"
	"sync"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/storage"
	"google.golang.org/api/googleapi"

	"github.com/BartekS5/airline-etl/internal/config"
	"github.com/BartekS5/airline-etl/pkg/logger"
	"github.com/BartekS5/airline-etl/pkg/models"
)

// BigQuery stages every batch as a newline-delimited JSON object under a
// Cloud Storage prefix and appends all of them with one load job on Commit.
// Nothing reaches the table unless the whole job gets that far.
type BigQuery struct {
	table  *bigquery.Table
	gcs    *storage.Client
	ref    config.TableRef
	bucket string
	prefix string

	mu      sync.Mutex
	objects []string
	staged  int64
}

func NewBigQuery(bq *bigquery.Client, gcs *storage.Client, ref config.TableRef, staging config.GCSLocation, runID string) *BigQuery {
	project := ref.Project
	if project == "" {
		project = bq.Project()
	}
	return &BigQuery{
		table:  bq.DatasetInProject(project, ref.Dataset).Table(ref.Table),
		gcs:    gcs,
		ref:    ref,
		bucket: staging.Bucket,
		prefix: path.Join(staging.Object, "airline-etl", runID),
	}
}

func (b *BigQuery) Name() string { return "bigquery:" + b.ref.String() }

func (b *BigQuery) Write(ctx context.Context, recs []models.EnrichedFlight) (int64, error) {
	if len(recs) == 0 {
		return 0, nil
	}
	data, err := encodeNDJSON(recs)
	if err != nil {
		return 0, writeErr(b.Name(), len(recs), err)
	}

	b.mu.Lock()
	name := fmt.Sprintf("%s/part-%05d.json", b.prefix, len(b.objects))
	b.objects = append(b.objects, name)
	b.mu.Unlock()

	w := b.gcs.Bucket(b.bucket).Object(name).NewWriter(ctx)
	w.ContentType = "application/json"
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return 0, writeErr(b.Name(), len(recs), fmt.Errorf("stage gs://%s/%s: %w", b.bucket, name, err))
	}
	if err := w.Close(); err != nil {
		return 0, writeErr(b.Name(), len(recs), fmt.Errorf("stage gs://%s/%s: %w", b.bucket, name, err))
	}

	b.mu.Lock()
	b.staged += int64(len(recs))
	b.mu.Unlock()
	return int64(len(recs)), nil
}

// Commit runs a WRITE_APPEND load job over every staged object.
func (b *BigQuery) Commit(ctx context.Context) (int64, error) {
	b.mu.Lock()
	uris := make([]string, len(b.objects))
	for i, o := range b.objects {
		uris[i] = fmt.Sprintf("gs://%s/%s", b.bucket, o)
	}
	staged := b.staged
	b.mu.Unlock()
	if len(uris) == 0 {
		return 0, nil
	}

	src := bigquery.NewGCSReference(uris...)
	src.SourceFormat = bigquery.JSON
	src.Schema = bigQuerySchema()
	loader := b.table.LoaderFrom(src)
	loader.WriteDisposition = bigquery.WriteAppend
	loader.CreateDisposition = bigquery.CreateNever

	job, err := loader.Run(ctx)
	if err != nil {
		return 0, writeErr(b.Name(), int(staged), fmt.Errorf("start load job: %w", err))
	}
	status, err := job.Wait(ctx)
	if err == nil {
		err = status.Err()
	}
	if err != nil {
		return 0, writeErr(b.Name(), int(staged), fmt.Errorf("load job %s: %w", job.ID(), err))
	}
	logger.Infof("BigQuery load job %s appended %d rows from %d files", job.ID(), staged, len(uris))
	return staged, nil
}

// Cleanup deletes the staged objects. Failures are only logged.
func (b *BigQuery) Cleanup(ctx context.Context) {
	b.mu.Lock()
	objects := b.objects
	b.objects = nil
	b.mu.Unlock()
	for _, o := range objects {
		err := b.gcs.Bucket(b.bucket).Object(o).Delete(ctx)
		if err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
			logger.Warnf("Could not delete staged file gs://%s/%s: %v", b.bucket, o, err)
		}
	}
}

// Columns lists the destination table's columns.
func (b *BigQuery) Columns(ctx context.Context) ([]string, error) {
	md, err := b.table.Metadata(ctx)
	if err != nil {
		return nil, err
	}
	cols := make([]string, len(md.Schema))
	for i, f := range md.Schema {
		cols[i] = f.Name
	}
	return cols, nil
}

// EnsureTable creates the destination table when it does not exist.
func (b *BigQuery) EnsureTable(ctx context.Context) error {
	_, err := b.table.Metadata(ctx)
	if err == nil {
		return nil
	}
	if !isNotFound(err) {
		return err
	}
	return b.table.Create(ctx, &bigquery.TableMetadata{Schema: bigQuerySchema()})
}

func bigQuerySchema() bigquery.Schema {
	schema := make(bigquery.Schema, len(models.OutputSchema))
	for i, c := range models.OutputSchema {
		typ := bigquery.StringFieldType
		if c.Type == models.TypeInteger {
			typ = bigquery.IntegerFieldType
		}
		schema[i] = &bigquery.FieldSchema{Name: c.Name, Type: typ}
	}
	return schema
}

func encodeNDJSON(recs []models.EnrichedFlight) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for i := range recs {
		if err := enc.Encode(recs[i]); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

// stagingLocation picks the gs:// prefix for load files: the temp location,
// else the staging location.
func stagingLocation(opts Options) (config.GCSLocation, error) {
	for _, loc := range []string{opts.TempLocation, opts.StagingLocation} {
		if config.IsGCS(loc) {
			return config.ParseGCSLocation(loc)
		}
	}
	return config.GCSLocation{}, fmt.Errorf("sink %s: ETL_TEMP_LOCATION or ETL_STAGING_LOCATION must be a gs:// location", KindBigQuery)
}

func isNotFound(err error) bool {
	var gerr *googleapi.Error
	return errors.As(err, &gerr) && gerr.Code == http.StatusNotFound
}
