package models

import (
	"time"

	"github.com/ronsystem/fcpdigital-backend/pkg/types"

	"gorm.io/datatypes"
)

// WebhookEvent is the append-only idempotency ledger for inbound Stripe
// events. The unique index on StripeEventID turns a racing duplicate insert
// into a detectable conflict instead of a silent double-provision.
type WebhookEvent struct {
	ID            string                   `gorm:"column:id;type:uuid;primary_key" json:"id"`
	StripeEventID string                   `gorm:"column:stripe_event_id;type:varchar(128);not null;uniqueIndex" json:"stripe_event_id"`
	EventType     string                   `gorm:"column:event_type;type:varchar(64);not null" json:"event_type"`
	CustomerID    string                   `gorm:"column:customer_id;type:varchar(64);index" json:"customer_id"`
	ClientID      *string                  `gorm:"column:client_id;type:uuid;index" json:"client_id"`
	Status        types.WebhookEventStatus `gorm:"column:status;type:varchar(32);not null" json:"status"`
	Metadata      datatypes.JSON           `gorm:"column:metadata;type:jsonb;default:'{}'" json:"metadata"`
	CreatedAt     time.Time                `json:"created_at"`
}

func (WebhookEvent) TableName() string { return "webhook_events" }
