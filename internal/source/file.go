package source

import (
	"context"
	"io"
	"os"

	"github.com/BartekS5/airline-etl/internal/etl"
)

// File reads a local file.
type File struct {
	Path string
}

func NewFile(path string) *File { return &File{Path: path} }

func (f *File) Name() string { return f.Path }

func (f *File) open(context.Context) (io.ReadCloser, error) {
	return os.Open(f.Path)
}

func (f *File) Lines(ctx context.Context) (etl.Lines, func() error, error) {
	return lines(ctx, f)
}
