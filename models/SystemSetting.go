package models

import (
	"time"

	"gorm.io/datatypes"
)

type SystemSetting struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	SettingKey  string         `json:"settingKey" gorm:"uniqueIndex;size:100;not null"`
	Value       datatypes.JSON `json:"value" gorm:"type:jsonb"`
	Description string         `json:"description" gorm:"type:text"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}
