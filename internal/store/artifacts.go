package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var ErrBadArtifactName = errors.New("invalid artifact name")

// ArtifactStore owns the upload directory. Every record references exactly
// one file here by its stored name; names are generated server side, so
// anything that is not a bare file name is rejected outright.
type ArtifactStore struct {
	dir string
}

func NewArtifactStore(dir string) *ArtifactStore {
	return &ArtifactStore{dir: dir}
}

func (s *ArtifactStore) Dir() string {
	return s.dir
}

func validName(name string) bool {
	return name != "" && name != "." && name != ".." && filepath.Base(name) == name
}

func (s *ArtifactStore) Path(name string) (string, error) {
	if !validName(name) {
		return "", ErrBadArtifactName
	}
	return filepath.Join(s.dir, name), nil
}

// Save writes the artifact under the given stored name and reports the byte
// count written.
func (s *ArtifactStore) Save(ctx context.Context, name string, r io.Reader) (int64, error) {
	_, span := tracer.Start(ctx, "ArtifactStore.Save")
	defer span.End()

	span.SetAttributes(attribute.String("artifact", name))

	path, err := s.Path(name)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "rejected artifact name")
		return 0, err
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to create upload directory")
		return 0, fmt.Errorf("failed to create upload directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to create artifact file")
		return 0, fmt.Errorf("failed to create artifact file: %w", err)
	}
	defer f.Close()

	n, err := io.Copy(f, r)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to write artifact file")
		return n, fmt.Errorf("failed to write artifact file: %w", err)
	}

	span.SetAttributes(attribute.Int64("bytes", n))
	span.SetStatus(codes.Ok, "saved artifact")
	return n, nil
}

// Remove deletes the named artifact. A file that is already gone is not an
// error; the record is the source of truth and the file merely follows it.
func (s *ArtifactStore) Remove(ctx context.Context, name string) error {
	_, span := tracer.Start(ctx, "ArtifactStore.Remove")
	defer span.End()

	span.SetAttributes(attribute.String("artifact", name))

	path, err := s.Path(name)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "rejected artifact name")
		return err
	}

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to remove artifact file")
		return fmt.Errorf("failed to remove artifact file: %w", err)
	}

	span.SetStatus(codes.Ok, "removed artifact")
	return nil
}

func (s *ArtifactStore) Open(name string) (*os.File, error) {
	path, err := s.Path(name)
	if err != nil {
		return nil, err
	}
	return os.Open(path)
}
