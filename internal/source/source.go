// Package source opens input datasets (local files, HTTP URLs or Cloud
// Storage objects) and exposes them as line sequences. Gzip input (".gz") is decompressed and a leading
// UTF-8 byte order mark is dropped.
package source

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/gzip"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/BartekS5/airline-etl/internal/config"
	"github.com/BartekS5/airline-etl/internal/etl"
)

// MaxLineSize bounds a single input line.
const MaxLineSize = 1 << 20

type opener interface {
	Name() string
	open(ctx context.Context) (io.ReadCloser, error)
}

// FromLocation picks a source for loc: http(s) URLs are fetched, gs://
// objects are read from Cloud Storage, anything without a scheme is a local
// path.
func FromLocation(loc string) (etl.Source, error) {
	switch {
	case config.IsGCS(loc):
		gl, err := config.ParseGCSLocation(loc)
		if err != nil {
			return nil, err
		}
		if gl.Object == "" {
			return nil, fmt.Errorf("input %s names a bucket, not an object", loc)
		}
		return NewGCS(gl), nil
	case strings.HasPrefix(loc, "http://"), strings.HasPrefix(loc, "https://"):
		return NewHTTP(loc), nil
	case strings.HasPrefix(loc, "file://"):
		return NewFile(strings.TrimPrefix(loc, "file://")), nil
	case strings.Contains(loc, "://"):
		scheme, _, _ := strings.Cut(loc, "://")
		return nil, fmt.Errorf("unsupported input scheme %q in %s", scheme, loc)
	default:
		return NewFile(loc), nil
	}
}

// lines opens o and wraps it with decompression, BOM removal and a line scanner.
func lines(ctx context.Context, o opener) (etl.Lines, func() error, error) {
	rc, err := o.open(ctx)
	if err != nil {
		return nil, nil, err
	}
	r, closeFn, err := decode(o.Name(), rc)
	if err != nil {
		rc.Close()
		return nil, nil, err
	}
	return Lines(r), closeFn, nil
}

func decode(name string, rc io.ReadCloser) (io.Reader, func() error, error) {
	var r io.Reader = rc
	closeFn := rc.Close
	if strings.HasSuffix(strings.ToLower(name), ".gz") {
		zr, err := gzip.NewReader(rc)
		if err != nil {
			return nil, nil, fmt.Errorf("gzip %s: %w", name, err)
		}
		r = zr
		closeFn = func() error {
			zerr := zr.Close()
			if err := rc.Close(); err != nil {
				return err
			}
			return zerr
		}
	}
	// BOMOverride strips a UTF-8 BOM and otherwise passes bytes through.
	r = transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
	return r, closeFn, nil
}

// Lines splits r into lines without their terminators ("\n" or "\r\n").
func Lines(r io.Reader) etl.Lines {
	return func(yield func(string, error) bool) {
		sc := bufio.NewScanner(r)
		sc.Buffer(make([]byte, 0, 64*1024), MaxLineSize)
		for sc.Scan() {
			if !yield(sc.Text(), nil) {
				return
			}
		}
		if err := sc.Err(); err != nil {
			yield("", err)
		}
	}
}
