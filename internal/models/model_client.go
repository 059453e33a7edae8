package models

import (
	"time"

	"github.com/ronsystem/fcpdigital-backend/pkg/types"

	"gorm.io/datatypes"
)

// ClientMetadata is populated only on the provisioning failure path.
type ClientMetadata struct {
	LastProvisionAttempt *time.Time `json:"last_provision_attempt,omitempty"`
	ProvisionError       string     `json:"provision_error,omitempty"`
}

// Client is a paying (or provisioning, or cancelled) tenant of the
// call-answering service. Rows are never deleted; cancellation is a status
// transition.
type Client struct {
	ID           string         `gorm:"column:id;type:uuid;primary_key" json:"id"`
	BusinessName string         `gorm:"column:business_name;type:varchar(255);not null" json:"business_name"`
	ContactEmail string         `gorm:"column:contact_email;type:varchar(255);not null" json:"contact_email"`
	ContactPhone string         `gorm:"column:contact_phone;type:varchar(64)" json:"contact_phone"`
	Plan         types.PlanTier `gorm:"column:plan;type:varchar(32);not null" json:"plan"`
	// MonthlyFee is derived from Stripe's charged amount, not the local plan
	// table, so provider-side price changes survive a stale plan config.
	MonthlyFee           float64 `gorm:"column:monthly_fee;type:numeric(10,2);not null" json:"monthly_fee"`
	StripeCustomerID     *string `gorm:"column:stripe_customer_id;type:varchar(64);index" json:"stripe_customer_id"`
	StripeSubscriptionID *string `gorm:"column:stripe_subscription_id;type:varchar(64)" json:"stripe_subscription_id"`
	// TwilioNumber and VapiAssistantID stay nil until the external onboarder
	// populates them.
	TwilioNumber    *string                               `gorm:"column:twilio_number;type:varchar(32)" json:"twilio_number"`
	VapiAssistantID *string                               `gorm:"column:vapi_assistant_id;type:varchar(64);index" json:"vapi_assistant_id"`
	Status          types.ClientStatus                    `gorm:"column:status;type:varchar(32);not null" json:"status"`
	CallMinutesUsed int64                                 `gorm:"column:call_minutes_used;not null;default:0" json:"call_minutes_used"`
	CallMinutesLimit int64                                `gorm:"column:call_minutes_limit;not null;default:0" json:"call_minutes_limit"`
	Metadata        datatypes.JSONType[*ClientMetadata]   `gorm:"column:metadata;type:jsonb;default:'{}'" json:"metadata"`
	CreatedAt       time.Time                             `json:"created_at"`
	UpdatedAt       time.Time                             `json:"updated_at"`
}

func (Client) TableName() string { return "clients" }

func (c *Client) NeedsManualProvisioning() bool {
	return c != nil && c.Status == types.ClientStatusPendingProvisioning
}

func (c *Client) MinutesRemaining() int64 {
	if c == nil {
		return 0
	}
	if rem := c.CallMinutesLimit - c.CallMinutesUsed; rem > 0 {
		return rem
	}
	return 0
}
