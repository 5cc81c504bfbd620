package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/indokarya/registration-portal/internal/types"
)

var tracer = otel.Tracer("github.com/indokarya/registration-portal/internal/store")

// RecordStore persists submission records as one JSON document, rewritten
// whole on every mutation. The mutex serializes read-modify-write cycles so
// an upload racing a delete cannot lose either update. A missing document is
// an empty collection, never an error.
type RecordStore struct {
	path string
	mu   sync.Mutex
}

func NewRecordStore(path string) *RecordStore {
	return &RecordStore{path: path}
}

func (s *RecordStore) load() ([]types.SubmissionRecord, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []types.SubmissionRecord{}, nil
		}
		return nil, fmt.Errorf("failed to read record document: %w", err)
	}

	var records []types.SubmissionRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to decode record document: %w", err)
	}

	return records, nil
}

// Replaces the document atomically so a crash mid-write cannot leave a
// truncated collection behind.
func (s *RecordStore) write(records []types.SubmissionRecord) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode record document: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write record document: %w", err)
	}

	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace record document: %w", err)
	}

	return nil
}

// List returns all records in storage order, oldest first.
func (s *RecordStore) List(ctx context.Context) ([]types.SubmissionRecord, error) {
	_, span := tracer.Start(ctx, "RecordStore.List")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to load record document")
		return nil, err
	}

	span.SetAttributes(attribute.Int("records", len(records)))

	return records, nil
}

func (s *RecordStore) Append(ctx context.Context, record types.SubmissionRecord) error {
	_, span := tracer.Start(ctx, "RecordStore.Append")
	defer span.End()

	span.SetAttributes(attribute.String("record.id", record.ID))

	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to load record document")
		return err
	}

	records = append(records, record)

	if err := s.write(records); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to persist record document")
		return err
	}

	span.SetStatus(codes.Ok, "appended record")
	return nil
}

// Remove deletes the record with the given id and returns it. A nil record
// with a nil error means the id was not present, which callers treat as
// success.
func (s *RecordStore) Remove(ctx context.Context, id string) (*types.SubmissionRecord, error) {
	_, span := tracer.Start(ctx, "RecordStore.Remove")
	defer span.End()

	span.SetAttributes(attribute.String("record.id", id))

	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to load record document")
		return nil, err
	}

	var removed *types.SubmissionRecord
	kept := records[:0]
	for i := range records {
		if records[i].ID == id {
			r := records[i]
			removed = &r
			continue
		}
		kept = append(kept, records[i])
	}

	if removed == nil {
		span.AddEvent("record not present")
		span.SetStatus(codes.Ok, "nothing to remove")
		return nil, nil
	}

	if err := s.write(kept); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to persist record document")
		return nil, err
	}

	span.SetStatus(codes.Ok, "removed record")
	return removed, nil
}
