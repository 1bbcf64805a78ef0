// Package service implements the import and export of the names dataset
// between CSV files and the store.
package service

import (
	"log/slog"
	"time"

	"github.com/Eigenbraid/Dice/internal/store"
)

// DefaultImportTimeout bounds an import run whose context has no deadline.
var DefaultImportTimeout = 10 * time.Minute

// Service moves names between CSV and the store.
type Service struct {
	store  *store.Store
	logger *slog.Logger
}

// New creates a Service over an open store.
func New(st *store.Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: st, logger: logger}
}

// Store returns the underlying store.
func (s *Service) Store() *store.Store {
	return s.store
}
