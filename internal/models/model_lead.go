package models

import (
	"time"

	"github.com/ronsystem/fcpdigital-backend/pkg/types"

	"gorm.io/datatypes"
)

// Lead is a prospect surfaced in the admin panel.
type Lead struct {
	ID           string           `gorm:"column:id;type:uuid;primary_key" json:"id"`
	BusinessName string           `gorm:"column:business_name;type:varchar(255);not null" json:"business_name"`
	Website      *string          `gorm:"column:website;type:varchar(255)" json:"website"`
	Phone        *string          `gorm:"column:phone;type:varchar(32)" json:"phone"`
	Email        *string          `gorm:"column:email;type:varchar(255)" json:"email"`
	Industry     *string          `gorm:"column:industry;type:varchar(64)" json:"industry"`
	City         *string          `gorm:"column:city;type:varchar(128)" json:"city"`
	State        *string          `gorm:"column:state;type:varchar(32)" json:"state"`
	Score        int              `gorm:"column:score;not null;default:0" json:"score"`
	Status       types.LeadStatus `gorm:"column:status;type:varchar(32);not null;index" json:"status"`
	ResearchData datatypes.JSON   `gorm:"column:research_data;type:jsonb;default:'{}'" json:"research_data"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

func (Lead) TableName() string { return "leads" }
