package models

import (
	"time"

	"github.com/ronsystem/fcpdigital-backend/pkg/types"

	"gorm.io/datatypes"
)

// Call is one answered call, ingested from the Vapi call-completed webhook.
type Call struct {
	ID              string             `gorm:"column:id;type:uuid;primary_key" json:"id"`
	ClientID        string             `gorm:"column:client_id;type:uuid;not null;index:idx_call_client_created,priority:1" json:"client_id"`
	CallerName      *string            `gorm:"column:caller_name;type:varchar(128)" json:"caller_name"`
	CallerPhone     *string            `gorm:"column:caller_phone;type:varchar(32)" json:"caller_phone"`
	ServiceNeeded   *string            `gorm:"column:service_needed;type:varchar(128)" json:"service_needed"`
	Urgency         *types.CallUrgency `gorm:"column:urgency;type:varchar(16)" json:"urgency"`
	DurationSeconds int64              `gorm:"column:duration_seconds;not null;default:0" json:"duration_seconds"`
	RecordingURL    *string            `gorm:"column:recording_url;type:varchar(512)" json:"recording_url"`
	Transcript      *string            `gorm:"column:transcript;type:text" json:"transcript"`
	Metadata        datatypes.JSON     `gorm:"column:metadata;type:jsonb;default:'{}'" json:"metadata"`
	CreatedAt       time.Time          `gorm:"index:idx_call_client_created,priority:2,sort:desc" json:"created_at"`
}

func (Call) TableName() string { return "calls" }

// BilledMinutes rounds duration up to whole minutes, matching how the
// usage allowance is metered.
func (c *Call) BilledMinutes() int64 {
	if c == nil || c.DurationSeconds <= 0 {
		return 0
	}
	return (c.DurationSeconds + 59) / 60
}
