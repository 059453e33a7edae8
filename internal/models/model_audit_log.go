package models

import (
	"time"

	"github.com/ronsystem/fcpdigital-backend/pkg/types"

	"gorm.io/datatypes"
)

// AuditLog is a cross-cutting append-only record. Writes are best-effort:
// a failed audit insert is logged and swallowed, never propagated.
type AuditLog struct {
	ID           string          `gorm:"column:id;type:uuid;primary_key" json:"id"`
	UserID       *string         `gorm:"column:user_id;type:varchar(64);index" json:"user_id"`
	ActorType    types.ActorType `gorm:"column:actor_type;type:varchar(32);not null" json:"actor_type"`
	Action       string          `gorm:"column:action;type:varchar(64);not null;index" json:"action"`
	ResourceType string          `gorm:"column:resource_type;type:varchar(64);not null" json:"resource_type"`
	ResourceID   *string         `gorm:"column:resource_id;type:varchar(128)" json:"resource_id"`
	IPAddress    *string         `gorm:"column:ip_address;type:varchar(64)" json:"ip_address"`
	UserAgent    *string         `gorm:"column:user_agent;type:varchar(255)" json:"user_agent"`
	Success      bool            `gorm:"column:success;not null;default:true" json:"success"`
	ErrorMessage *string         `gorm:"column:error_message;type:text" json:"error_message"`
	Metadata     datatypes.JSON  `gorm:"column:metadata;type:jsonb;default:'{}'" json:"metadata"`
	CreatedAt    time.Time       `gorm:"index" json:"created_at"`
}

func (AuditLog) TableName() string { return "audit_log" }
