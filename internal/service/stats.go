package service

import (
	"context"

	"github.com/Eigenbraid/Dice/internal/heritage"
)

// HeritageStats returns the heritage distribution of the stored names.
func (s *Service) HeritageStats(ctx context.Context) ([]heritage.HeritageCount, error) {
	rows, err := s.ExportRows(ctx)
	if err != nil {
		return nil, err
	}
	return heritage.Distribution(rows), nil
}
