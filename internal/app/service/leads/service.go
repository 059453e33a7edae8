package leads

import (
	"context"
	"fmt"

	"github.com/ronsystem/fcpdigital-backend/internal/models"
	"github.com/ronsystem/fcpdigital-backend/pkg/types"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service struct {
	db  *gorm.DB
	log *zap.SugaredLogger
}

func New(db *gorm.DB, log *zap.SugaredLogger) *Service { return &Service{db: db, log: log} }

type ScanRequest struct {
	Filters []*types.CommonFilter `json:"filters"`
	From    int                   `json:"from"`
	Size    int                   `json:"size"`
}

type ScanResponse struct {
	Items []*models.Lead `json:"items"`
	Total int64          `json:"total"`
}

// Scan lists leads for the admin panel, highest score first.
func (s *Service) Scan(ctx context.Context, req *ScanRequest) (*ScanResponse, error) {
	q := s.db.WithContext(ctx).Model(&models.Lead{})
	if len(req.Filters) > 0 {
		q = q.Where(types.FiltersAnd(req.Filters))
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count leads: %w", err)
	}

	size := req.Size
	if size <= 0 || size > 500 {
		size = 100
	}
	var items []*models.Lead
	if err := q.Order("score DESC, created_at DESC").Offset(req.From).Limit(size).Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to scan leads: %w", err)
	}
	return &ScanResponse{Items: items, Total: total}, nil
}
