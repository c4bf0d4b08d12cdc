package models

import (
	"time"
)

// ActivityLog is the append-only action trail written alongside mutations.
type ActivityLog struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Action    string    `json:"action" gorm:"size:64;index"`
	RelatedID *uint     `json:"relatedID" gorm:"index"`
	UserID    *uint     `json:"userID" gorm:"index"`
	IPAddress string    `json:"ipAddress" gorm:"size:45"`
	CreatedAt time.Time `json:"createdAt"`
}
