package provisioning

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ronsystem/fcpdigital-backend/internal/models"
	"github.com/ronsystem/fcpdigital-backend/pkg/tool"
	"github.com/ronsystem/fcpdigital-backend/pkg/types"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type gormStore struct {
	db *gorm.DB
}

// NewGormStore returns the Postgres-backed Store used in production.
func NewGormStore(db *gorm.DB) Store { return &gormStore{db: db} }

func (s *gormStore) HasProcessedEvent(ctx context.Context, stripeEventID string) (bool, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.WebhookEvent{}).
		Where("stripe_event_id = ?", stripeEventID).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to query webhook ledger: %w", err)
	}
	return count > 0, nil
}

func (s *gormStore) SaveLedgerEntry(ctx context.Context, entry *models.WebhookEvent) error {
	if entry.ID == "" {
		entry.ID = tool.GenerateUUIDV7()
	}
	err := s.db.WithContext(ctx).Create(entry).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicateEvent
	}
	return err
}

func (s *gormStore) CreateClient(ctx context.Context, client *models.Client) error {
	if client.ID == "" {
		client.ID = tool.GenerateUUIDV7()
	}
	return s.db.WithContext(ctx).Create(client).Error
}

func (s *gormStore) SetClientStatus(ctx context.Context, clientID string, status types.ClientStatus) error {
	res := s.db.WithContext(ctx).Model(&models.Client{}).
		Where("id = ?", clientID).
		Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrClientNotFound
	}
	return nil
}

func (s *gormStore) MarkClientPendingProvisioning(ctx context.Context, clientID, reason string, at time.Time) error {
	meta := datatypes.NewJSONType(&models.ClientMetadata{
		LastProvisionAttempt: &at,
		ProvisionError:       reason,
	})
	res := s.db.WithContext(ctx).Model(&models.Client{}).
		Where("id = ?", clientID).
		Updates(map[string]any{
			"status":   types.ClientStatusPendingProvisioning,
			"metadata": meta,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrClientNotFound
	}
	return nil
}

func (s *gormStore) CancelClientByCustomerID(ctx context.Context, customerID string) (*models.Client, error) {
	if customerID == "" {
		return nil, ErrClientNotFound
	}
	var client models.Client
	err := s.db.WithContext(ctx).Where("stripe_customer_id = ?", customerID).First(&client).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrClientNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up client by customer id: %w", err)
	}
	if err := s.db.WithContext(ctx).Model(&client).Update("status", types.ClientStatusCancelled).Error; err != nil {
		return nil, fmt.Errorf("failed to cancel client: %w", err)
	}
	client.Status = types.ClientStatusCancelled
	return &client, nil
}

func (s *gormStore) GetClient(ctx context.Context, clientID string) (*models.Client, error) {
	var client models.Client
	err := s.db.WithContext(ctx).Where("id = ?", clientID).First(&client).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrClientNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load client: %w", err)
	}
	return &client, nil
}
