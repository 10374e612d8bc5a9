package dataset

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"cloud.google.com/go/storage"
)

const gcsScheme = "gs://"

// ErrInvalidGCSURI is returned for gs:// URIs without an object path
var ErrInvalidGCSURI = errors.New("invalid gs:// URI")

// Source opens the raw dataset bytes
type Source interface {
	Open(ctx context.Context) (io.ReadCloser, error)
	String() string
}

// NewSource picks a source implementation from the configured location
func NewSource(cfg *Config) (Source, error) {
	if strings.HasPrefix(cfg.Source, gcsScheme) {
		src, err := NewGCSSource(cfg.Source)
		if err != nil {
			return nil, err
		}

		return src, nil
	}

	return &FileSource{Path: cfg.Source}, nil
}

// FileSource reads the dataset from the local filesystem
type FileSource struct {
	Path string
}

// Open opens the file
func (s *FileSource) Open(_ context.Context) (io.ReadCloser, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", s.Path, err)
	}

	return f, nil
}

func (s *FileSource) String() string {
	return s.Path
}

// GCSSource reads the dataset from a Google Cloud Storage object
type GCSSource struct {
	Bucket string
	Object string
}

// NewGCSSource parses a gs://bucket/object URI
func NewGCSSource(uri string) (*GCSSource, error) {
	trimmed := strings.TrimPrefix(uri, gcsScheme)

	parts := strings.SplitN(trimmed, "/", 2)
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return nil, fmt.Errorf("%w: %s", ErrInvalidGCSURI, uri)
	}

	return &GCSSource{Bucket: parts[0], Object: parts[1]}, nil
}

// Open downloads the object into memory and closes the client
func (s *GCSSource) Open(ctx context.Context) (io.ReadCloser, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}
	defer client.Close()

	r, err := client.Bucket(s.Bucket).Object(s.Object).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("open GCS object reader: %w", err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read GCS object: %w", err)
	}

	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *GCSSource) String() string {
	return gcsScheme + s.Bucket + "/" + s.Object
}

// BytesSource serves an in-memory dataset, mainly for tests and embedding
type BytesSource struct {
	Name string
	Data []byte
}

// Open returns a reader over the data
func (s *BytesSource) Open(_ context.Context) (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(s.Data)), nil
}

func (s *BytesSource) String() string {
	if s.Name == "" {
		return "memory"
	}

	return s.Name
}
