package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/Eigenbraid/Dice/internal/core"
	"github.com/Eigenbraid/Dice/internal/logging"
	"github.com/Eigenbraid/Dice/internal/store"
	"github.com/google/uuid"
)

// FailureKind classifies a skipped row.
type FailureKind string

const (
	FailureValidation FailureKind = "validation"
	FailureDuplicate  FailureKind = "duplicate"
	FailureDatabase   FailureKind = "database"
)

// ImportOptions controls an import run.
type ImportOptions struct {
	// Reset deletes every name and association before the first row is
	// processed. The delete runs inside the import transaction, so it is
	// committed together with the imported rows and rolled back with them
	// when the run aborts.
	Reset bool
}

// RowFailure is a row that was not imported.
type RowFailure struct {
	Row     int // CSV record number, header is row 1
	Kind    FailureKind
	Message string // "Row N: ..." report line
}

// ImportResult summarizes an import run.
type ImportResult struct {
	RunID        string
	File         string
	Total        int
	Succeeded    int
	Failures     []RowFailure
	NamesInStore int64
	ResetRemoved int64
	Duration     time.Duration
}

// Failed returns the number of rows that were skipped.
func (r *ImportResult) Failed() int {
	return len(r.Failures)
}

// Messages returns the failure report lines in row order.
func (r *ImportResult) Messages() []string {
	msgs := make([]string, len(r.Failures))
	for i, f := range r.Failures {
		msgs[i] = f.Message
	}
	return msgs
}

// ImportFile imports the CSV at path. A missing or unreadable file is
// reported before the store is touched, so Reset never runs on a bad path.
func (s *Service) ImportFile(ctx context.Context, path string, opts ImportOptions) (*ImportResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	result, err := s.importReader(ctx, f, path, opts)
	if err != nil {
		return nil, fmt.Errorf("import %s: %w", path, err)
	}
	return result, nil
}

// Import imports CSV rows read from r.
func (s *Service) Import(ctx context.Context, r io.Reader, opts ImportOptions) (*ImportResult, error) {
	return s.importReader(ctx, r, "", opts)
}

// Reset deletes every name and name/tag association. Reference tables are
// kept. Returns the number of names removed.
func (s *Service) Reset(ctx context.Context) (int64, error) {
	removed, err := s.store.Reset(ctx)
	if err != nil {
		return 0, err
	}
	s.logger.Info("names reset", "removed", removed)
	return removed, nil
}

func (s *Service) importReader(ctx context.Context, r io.Reader, file string, opts ImportOptions) (*ImportResult, error) {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, DefaultImportTimeout)
		defer cancel()
	}

	start := time.Now()
	result := &ImportResult{
		RunID: uuid.New().String(),
		File:  file,
	}
	logger := logging.WithFields(logging.NewContext(ctx, s.logger),
		"run_id", result.RunID,
		"file", file,
	)

	// Header problems are fatal and must surface before any reset.
	reader, err := core.NewReader(r)
	if err != nil {
		return nil, err
	}
	if missing := reader.Missing(); len(missing) > 0 {
		return nil, fmt.Errorf("missing required columns: %s", strings.Join(missing, ", "))
	}

	vocab, err := s.store.LoadVocabulary(ctx)
	if err != nil {
		return nil, err
	}
	validator := core.NewRowValidator(vocab)

	logger.Info("import started", "reset", opts.Reset)

	// The reset shares the import transaction, so an aborted run keeps the
	// previous names.
	err = s.store.WithTx(ctx, func(tx *store.Tx) error {
		if opts.Reset {
			removed, err := tx.DeleteNames(ctx)
			if err != nil {
				return err
			}
			result.ResetRemoved = removed
			logger.Info("names reset", "removed", removed)
		}

		for {
			if err := ctx.Err(); err != nil {
				return err
			}

			row, rowNum, err := reader.Next()
			if errors.Is(err, io.EOF) {
				result.NamesInStore, err = tx.CountNames(ctx)
				return err
			}
			if err != nil {
				return err
			}
			result.Total++

			entry, verrs := validator.Validate(row)
			if len(verrs) > 0 {
				failure := RowFailure{
					Row:     rowNum,
					Kind:    FailureValidation,
					Message: core.FormatRowErrors(rowNum, verrs),
				}
				logger.Debug("row rejected", "row", rowNum, "reason", failure.Message)
				result.Failures = append(result.Failures, failure)
				continue
			}

			failure, err := insertRow(ctx, tx, rowNum, entry)
			if err != nil {
				return err
			}
			if failure != nil {
				logger.Debug("row failed", "row", rowNum, "kind", failure.Kind, "reason", failure.Message)
				result.Failures = append(result.Failures, *failure)
				continue
			}
			result.Succeeded++
		}
	})
	if err != nil {
		logger.Warn("import aborted", "error", err, "rows_read", result.Total, "reset", opts.Reset)
		return nil, err
	}

	result.Duration = time.Since(start)

	logger.Info("import finished",
		"total", result.Total,
		"succeeded", result.Succeeded,
		"failed", result.Failed(),
		"names_in_store", result.NamesInStore,
		"duration", result.Duration,
	)
	return result, nil
}

// insertRow inserts one entry inside its own savepoint. A database error
// rolls back only this row and is returned as a failure; the error return
// is reserved for failures of the savepoint machinery itself.
func insertRow(ctx context.Context, tx *store.Tx, rowNum int, entry core.NameEntry) (*RowFailure, error) {
	savepoint := fmt.Sprintf("row_%d", rowNum)
	if err := tx.Savepoint(ctx, savepoint); err != nil {
		return nil, fmt.Errorf("create savepoint: %w", err)
	}

	if _, err := tx.InsertName(ctx, entry); err != nil {
		if rbErr := tx.RollbackTo(ctx, savepoint); rbErr != nil {
			return nil, fmt.Errorf("rollback savepoint: %w", rbErr)
		}
		kind := FailureDatabase
		if store.IsUniqueViolation(err) {
			kind = FailureDuplicate
		}
		return &RowFailure{
			Row:     rowNum,
			Kind:    kind,
			Message: fmt.Sprintf("Row %d: database error - %v", rowNum, err),
		}, nil
	}

	if err := tx.Release(ctx, savepoint); err != nil {
		return nil, fmt.Errorf("release savepoint: %w", err)
	}
	return nil, nil
}
