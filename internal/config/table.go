package config

import (
	"fmt"
	"strings"
)

// TableRef is a parsed output table identifier of the form
// "project:dataset.table". Project and dataset are optional.
type TableRef struct {
	Project string
	Dataset string
	Table   string
}

// ParseTableRef splits an output table identifier.
func ParseTableRef(id string) (TableRef, error) {
	var ref TableRef
	rest := strings.TrimSpace(id)
	if p, r, ok := strings.Cut(rest, ":"); ok {
		ref.Project, rest = p, r
	}
	if d, t, ok := strings.Cut(rest, "."); ok {
		ref.Dataset, rest = d, t
	}
	ref.Table = rest
	if ref.Table == "" || strings.ContainsAny(ref.Table, ".:") {
		return TableRef{}, fmt.Errorf("invalid output table %q: want [project:][dataset.]table", id)
	}
	return ref, nil
}

// Qualified returns "dataset.table", or just the table without a dataset.
func (r TableRef) Qualified() string {
	if r.Dataset == "" {
		return r.Table
	}
	return r.Dataset + "." + r.Table
}

func (r TableRef) String() string {
	s := r.Qualified()
	if r.Project != "" {
		s = r.Project + ":" + s
	}
	return s
}

// GCSLocation is a parsed "gs://bucket/path" location.
type GCSLocation struct {
	Bucket string
	Object string
}

// IsGCS reports whether loc uses the gs:// scheme.
func IsGCS(loc string) bool { return strings.HasPrefix(loc, "gs://") }

// ParseGCSLocation splits a gs:// location. The object path may be empty
// when the location names a bucket or prefix.
func ParseGCSLocation(loc string) (GCSLocation, error) {
	rest, ok := strings.CutPrefix(strings.TrimSpace(loc), "gs://")
	if !ok {
		return GCSLocation{}, fmt.Errorf("invalid location %q: want gs://bucket/path", loc)
	}
	bucket, object, _ := strings.Cut(rest, "/")
	if bucket == "" {
		return GCSLocation{}, fmt.Errorf("invalid location %q: missing bucket", loc)
	}
	return GCSLocation{Bucket: bucket, Object: strings.Trim(object, "/")}, nil
}

func (l GCSLocation) String() string {
	if l.Object == "" {
		return "gs://" + l.Bucket
	}
	return "gs://" + l.Bucket + "/" + l.Object
}
