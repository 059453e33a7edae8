package auditlog

import (
	"context"
	"fmt"

	"github.com/ronsystem/fcpdigital-backend/internal/models"
	"github.com/ronsystem/fcpdigital-backend/pkg/logctx"
	"github.com/ronsystem/fcpdigital-backend/pkg/tool"
	"github.com/ronsystem/fcpdigital-backend/pkg/types"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service struct {
	db  *gorm.DB
	log *zap.SugaredLogger
}

func New(db *gorm.DB, log *zap.SugaredLogger) *Service { return &Service{db: db, log: log} }

// Record persists an audit entry best-effort: a failed write is logged and
// swallowed so audit problems never fail the operation being audited.
func (s *Service) Record(ctx context.Context, entry *models.AuditLog) {
	if entry == nil {
		return
	}
	if entry.ID == "" {
		entry.ID = tool.GenerateUUIDV7()
	}
	if entry.ActorType == "" {
		entry.ActorType = types.ActorTypeSystem
	}
	if err := s.db.WithContext(ctx).Create(entry).Error; err != nil {
		logctx.FromCtx(ctx, s.log).Errorf("failed to write audit log: %v", err)
	}
}

// Scan returns a filtered, paginated slice of the audit trail for the admin
// panel, newest first.
func (s *Service) Scan(ctx context.Context, req *ScanRequest) (*ScanResponse, error) {
	q := s.db.WithContext(ctx).Model(&models.AuditLog{})
	if len(req.Filters) > 0 {
		q = q.Where(types.FiltersAnd(req.Filters))
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count audit log: %w", err)
	}

	size := req.Size
	if size <= 0 || size > 500 {
		size = 100
	}
	var items []*models.AuditLog
	if err := q.Order("created_at DESC").Offset(req.From).Limit(size).Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to scan audit log: %w", err)
	}
	return &ScanResponse{Items: items, Total: total}, nil
}

type ScanRequest struct {
	Filters []*types.CommonFilter `json:"filters"`
	From    int                   `json:"from"`
	Size    int                   `json:"size"`
}

type ScanResponse struct {
	Items []*models.AuditLog `json:"items"`
	Total int64              `json:"total"`
}
