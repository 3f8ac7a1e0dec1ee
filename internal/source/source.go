// Package source loads the observation data set from the embedded sample, a
// YAML file, or the Postgres repository, and keeps the current copy in a Store.
package source

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sawpanic/selicinsights/internal/series"
)

// Kinds accepted by configuration.
const (
	KindEmbedded = "embedded"
	KindFile     = "file"
	KindPostgres = "postgres"
)

// Source produces a complete data set on demand.
type Source interface {
	Name() string
	Load(ctx context.Context) (series.Dataset, error)
}

// Embedded serves the compiled-in sample.
type Embedded struct{}

func (Embedded) Name() string { return KindEmbedded }

func (Embedded) Load(context.Context) (series.Dataset, error) {
	return series.Sample(), nil
}

// File reads a YAML data set from disk.
type File struct {
	path     string
	debounce time.Duration
}

// NewFile resolves path to an absolute file name.
func NewFile(path string) (*File, error) {
	if path == "" {
		return nil, fmt.Errorf("file source requires a path")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}
	return &File{path: abs, debounce: 250 * time.Millisecond}, nil
}

func (f *File) Name() string { return KindFile + ":" + f.path }

// Path returns the absolute file name being read.
func (f *File) Path() string { return f.path }

func (f *File) Load(context.Context) (series.Dataset, error) {
	fh, err := os.Open(f.path)
	if err != nil {
		return nil, fmt.Errorf("open data file: %w", err)
	}
	defer fh.Close()

	ds, err := series.Decode(fh)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", f.path, err)
	}
	return ds, nil
}
