package models

import "time"

// UsageTracking is a per-client per-day rollup of answered calls. One row per
// (client_id, date); the call ingestion path increments counters in place.
type UsageTracking struct {
	ID          string    `gorm:"column:id;type:uuid;primary_key" json:"id"`
	ClientID    string    `gorm:"column:client_id;type:uuid;not null;uniqueIndex:unique_client_date,priority:1" json:"client_id"`
	Date        string    `gorm:"column:date;type:date;not null;uniqueIndex:unique_client_date,priority:2" json:"date"`
	CallsCount  int64     `gorm:"column:calls_count;not null;default:0" json:"calls_count"`
	CallMinutes int64     `gorm:"column:call_minutes;not null;default:0" json:"call_minutes"`
	EmailsSent  int64     `gorm:"column:emails_sent;not null;default:0" json:"emails_sent"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (UsageTracking) TableName() string { return "usage_tracking" }
