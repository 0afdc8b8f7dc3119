package file

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"ledgerly/internal/export"
)

// Sink writes exports into a directory, replacing files with the same name.
type Sink struct {
	dir string
}

var _ export.Sink = (*Sink)(nil)

func New(dir string) *Sink {
	return &Sink{dir: dir}
}

func (s *Sink) Deliver(ctx context.Context, filename, csv string) error {
	if filename == "" {
		return export.ErrEmptyFilename
	}
	// Only the base name is honoured so a filename can't escape the directory.
	name := filepath.Base(filename)

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create export dir: %w", err)
	}

	// Write to a temp file first so readers never see a partial export.
	tmp, err := os.CreateTemp(s.dir, name+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(csv); err != nil {
		tmp.Close()
		return fmt.Errorf("write export: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close export: %w", err)
	}

	path := filepath.Join(s.dir, name)
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("move export into place: %w", err)
	}

	slog.InfoContext(ctx, "Export written", "path", path, "bytes", len(csv))
	return nil
}
