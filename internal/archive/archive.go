package archive

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("github.com/indokarya/registration-portal/internal/archive")

// WriteZip streams a zip archive of the named files under dir to w, each
// entry named by its bare file name. Files missing on disk are skipped
// silently; the record store, not the directory, decides what belongs in the
// export.
func WriteZip(ctx context.Context, w io.Writer, dir string, names []string) error {
	_, span := tracer.Start(ctx, "WriteZip")
	defer span.End()

	span.SetAttributes(
		attribute.String("dir", dir),
		attribute.Int("files", len(names)),
	)

	zw := zip.NewWriter(w)

	packed := 0
	for _, name := range names {
		if err := packFile(zw, filepath.Join(dir, name), name); err != nil {
			if os.IsNotExist(err) {
				span.AddEvent("skipped missing file", trace.WithAttributes(
					attribute.String("file", name),
				))
				continue
			}
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to pack file")
			return err
		}
		packed++
	}

	if err := zw.Close(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to finalize archive")
		return fmt.Errorf("failed to finalize archive: %w", err)
	}

	span.SetAttributes(attribute.Int("packed", packed))
	span.SetStatus(codes.Ok, "wrote archive")
	return nil
}

func packFile(zw *zip.Writer, path, name string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	entry, err := zw.Create(name)
	if err != nil {
		return fmt.Errorf("failed to create archive entry: %w", err)
	}

	if _, err := io.Copy(entry, f); err != nil {
		return fmt.Errorf("failed to copy file into archive: %w", err)
	}

	return nil
}
