package service

import (
	"context"
	"fmt"
	"io"

	"github.com/Eigenbraid/Dice/internal/core"
)

// ExportRows reads every name from the store as CSV rows, ordered by id.
func (s *Service) ExportRows(ctx context.Context) ([]core.Row, error) {
	// Names are fully read before the per-name tag queries; SQLite runs on
	// a single connection.
	names, err := s.store.ListNames(ctx)
	if err != nil {
		return nil, err
	}

	rows := make([]core.Row, len(names))
	for i := range names {
		tags, err := s.store.NameTags(ctx, names[i].ID)
		if err != nil {
			return nil, err
		}
		names[i].Tags = tags
		rows[i] = names[i].Row()
	}
	return rows, nil
}

// Export writes every name as CSV to w and returns the number of rows written.
func (s *Service) Export(ctx context.Context, w io.Writer) (int, error) {
	rows, err := s.ExportRows(ctx)
	if err != nil {
		return 0, err
	}
	if err := core.WriteRows(w, rows); err != nil {
		return 0, fmt.Errorf("write csv: %w", err)
	}
	return len(rows), nil
}

// ExportFile writes every name to the CSV at path. The previous file is
// replaced only once the export has been written in full.
func (s *Service) ExportFile(ctx context.Context, path string) (int, error) {
	var n int
	err := core.ReplaceFile(path, func(w io.Writer) error {
		var err error
		n, err = s.Export(ctx, w)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("export %s: %w", path, err)
	}

	s.logger.Info("export finished", "file", path, "rows", n)
	return n, nil
}
