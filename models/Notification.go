package models

import (
	"time"
)

type Notification struct {
	ID               uint      `json:"id" gorm:"primaryKey"`
	UserID           *uint     `json:"userID" gorm:"index"`
	UserType         string    `json:"userType" gorm:"type:varchar(20);default:'all';index"` // citizen, official, admin, all
	Title            string    `json:"title" gorm:"size:255"`
	Message          string    `json:"message" gorm:"type:text"`
	NotificationType string    `json:"notificationType" gorm:"type:varchar(20);default:'info'"` // info, success, warning, error
	RelatedID        *uint     `json:"relatedID"`
	ReadStatus       bool      `json:"readStatus" gorm:"default:false"`
	CreatedAt        time.Time `json:"createdAt"`
}
