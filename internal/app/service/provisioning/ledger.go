package provisioning

import (
	"context"
	"fmt"

	"github.com/ronsystem/fcpdigital-backend/internal/models"
	"github.com/ronsystem/fcpdigital-backend/pkg/types"

	"gorm.io/gorm"
)

// Ledger is the read side of the webhook event ledger, used by the admin
// panel to inspect processed deliveries.
type Ledger struct {
	db *gorm.DB
}

func NewLedger(db *gorm.DB) *Ledger { return &Ledger{db: db} }

type LedgerScanRequest struct {
	Filters []*types.CommonFilter `json:"filters"`
	From    int                   `json:"from"`
	Size    int                   `json:"size"`
}

type LedgerScanResponse struct {
	Items []*models.WebhookEvent `json:"items"`
	Total int64                  `json:"total"`
}

func (l *Ledger) Scan(ctx context.Context, req *LedgerScanRequest) (*LedgerScanResponse, error) {
	q := l.db.WithContext(ctx).Model(&models.WebhookEvent{})
	if len(req.Filters) > 0 {
		q = q.Where(types.FiltersAnd(req.Filters))
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count webhook events: %w", err)
	}

	size := req.Size
	if size <= 0 || size > 500 {
		size = 100
	}
	var items []*models.WebhookEvent
	if err := q.Order("created_at DESC").Offset(req.From).Limit(size).Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to scan webhook events: %w", err)
	}
	return &LedgerScanResponse{Items: items, Total: total}, nil
}
