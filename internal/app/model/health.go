package model

import (
	"time"
)

// HealthCheck is one recorded probe outcome. The table is append-only:
// there is no update or delete path and no retention policy.
type HealthCheck struct {
	ID          uint      `gorm:"primarykey" json:"id"`
	ServiceName string    `gorm:"not null;index" json:"service_name"`
	OK          bool      `gorm:"not null" json:"ok"`
	Status      *int      `json:"status"`
	TimeMs      int64     `gorm:"not null" json:"time_ms"`
	Body        *string   `json:"body"`
	Error       *string   `json:"error"`
	CheckedAt   time.Time `gorm:"not null;index" json:"checked_at"`
}

func (HealthCheck) TableName() string {
	return "service_health"
}
