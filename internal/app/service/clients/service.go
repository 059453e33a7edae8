package clients

import (
	"context"
	"errors"
	"fmt"

	"github.com/ronsystem/fcpdigital-backend/internal/models"
	"github.com/ronsystem/fcpdigital-backend/internal/platform/stripegw"
	"github.com/ronsystem/fcpdigital-backend/pkg/config"
	"github.com/ronsystem/fcpdigital-backend/pkg/logctx"
	"github.com/ronsystem/fcpdigital-backend/pkg/types"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

var ErrNotFound = errors.New("client not found")

type Service struct {
	cfg *config.Config
	db  *gorm.DB
	gw  *stripegw.Gateway
	log *zap.SugaredLogger
}

func New(cfg *config.Config, db *gorm.DB, gw *stripegw.Gateway, log *zap.SugaredLogger) *Service {
	return &Service{cfg: cfg, db: db, gw: gw, log: log}
}

func (s *Service) Get(ctx context.Context, id string) (*models.Client, error) {
	var client models.Client
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&client).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load client %s: %w", id, err)
	}
	return &client, nil
}

// GetByEmail is the dashboard lookup path; the portal identifies the tenant
// by contact email.
func (s *Service) GetByEmail(ctx context.Context, email string) (*models.Client, error) {
	var client models.Client
	err := s.db.WithContext(ctx).Where("contact_email = ?", email).First(&client).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load client by email: %w", err)
	}
	return &client, nil
}

type ScanRequest struct {
	Filters []*types.CommonFilter `json:"filters"`
	From    int                   `json:"from"`
	Size    int                   `json:"size"`
}

type ScanResponse struct {
	Items []*models.Client `json:"items"`
	Total int64            `json:"total"`
}

// Scan is the admin listing: filtered, paginated, newest first.
func (s *Service) Scan(ctx context.Context, req *ScanRequest) (*ScanResponse, error) {
	q := s.db.WithContext(ctx).Model(&models.Client{})
	if len(req.Filters) > 0 {
		q = q.Where(types.FiltersAnd(req.Filters))
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count clients: %w", err)
	}

	size := req.Size
	if size <= 0 || size > 500 {
		size = 100
	}
	var items []*models.Client
	if err := q.Order("created_at DESC").Offset(req.From).Limit(size).Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to scan clients: %w", err)
	}
	return &ScanResponse{Items: items, Total: total}, nil
}

// Overview is the admin panel's headline aggregate. MRR counts active
// clients only.
type Overview struct {
	TotalClients   int64   `json:"total_clients"`
	ActiveClients  int64   `json:"active_clients"`
	PendingClients int64   `json:"pending_clients"`
	MRR            float64 `json:"mrr"`
	AvgPlanValue   float64 `json:"avg_plan_value"`
}

func (s *Service) GetOverview(ctx context.Context) (*Overview, error) {
	var agg struct {
		TotalClients   int64
		ActiveClients  int64
		PendingClients int64
		MRR            float64
	}
	err := s.db.WithContext(ctx).Model(&models.Client{}).
		Select(`COUNT(*) AS total_clients,
			COUNT(*) FILTER (WHERE status = ?) AS active_clients,
			COUNT(*) FILTER (WHERE status = ?) AS pending_clients,
			COALESCE(SUM(monthly_fee) FILTER (WHERE status = ?), 0) AS mrr`,
			types.ClientStatusActive, types.ClientStatusPendingProvisioning, types.ClientStatusActive).
		Scan(&agg).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate clients: %w", err)
	}

	overview := &Overview{
		TotalClients:   agg.TotalClients,
		ActiveClients:  agg.ActiveClients,
		PendingClients: agg.PendingClients,
		MRR:            agg.MRR,
	}
	if agg.ActiveClients > 0 {
		overview.AvgPlanValue = float64(int64(agg.MRR/float64(agg.ActiveClients)*100+0.5)) / 100
	}
	return overview, nil
}

type CheckoutRequest struct {
	PlanID   types.PlanTier    `json:"plan_id" binding:"required"`
	Email    string            `json:"email" binding:"required,email"`
	Metadata map[string]string `json:"metadata"`
}

type CheckoutResponse struct {
	SessionID string `json:"session_id"`
	URL       string `json:"url,omitempty"`
}

// StartCheckout resolves the plan's Stripe price, finds or creates the
// customer by email, and opens a subscription checkout session. The created
// customer carries the signup metadata so the provisioning bridge can read
// business_name and phone off the webhook later.
func (s *Service) StartCheckout(ctx context.Context, req *CheckoutRequest) (*CheckoutResponse, error) {
	plan := s.cfg.GetPlanByID(req.PlanID)
	if plan == nil {
		return nil, fmt.Errorf("unknown plan %q", req.PlanID)
	}

	cust, err := s.gw.FindOrCreateCustomer(ctx, req.Email, req.Metadata)
	if err != nil {
		return nil, err
	}
	sess, err := s.gw.CreateCheckoutSession(ctx, cust.ID, plan.StripePriceID)
	if err != nil {
		return nil, err
	}

	logctx.FromCtx(ctx, s.log).Infow("checkout_started",
		"plan", plan.ID,
		"customer_id", cust.ID,
		"session_id", sess.ID,
	)
	return &CheckoutResponse{SessionID: sess.ID, URL: sess.URL}, nil
}
