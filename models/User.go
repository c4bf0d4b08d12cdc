package models

import (
	"encoding/json"

	"gorm.io/gorm"
)

type User struct {
	gorm.Model
	FullName     string  `json:"fullName"`
	Email        string  `json:"email" gorm:"uniqueIndex;size:255"`
	Phone        string  `json:"phone" gorm:"size:20"`
	Password     string  `json:"password"`
	UserType     string  `json:"userType" gorm:"type:varchar(20);default:'citizen';index"` // citizen, official, admin
	ProvinceID   *uint   `json:"provinceID"`
	District     string  `json:"district" gorm:"size:100;index"`
	Municipality string  `json:"municipality" gorm:"size:100"`
	WardNo       *int    `json:"wardNo"`
	OfficialID   string  `json:"officialID" gorm:"size:50;index"`
	Jurisdiction string  `json:"jurisdiction" gorm:"type:varchar(20)"` // ward, municipality, district, province
	Verified     *bool   `json:"verified" gorm:"default:false"`
	Issues       []Issue `json:"issues" gorm:"foreignKey:UserID;references:ID"`
}

// Custom JSON marshaling so the password hash never leaves the server.
func (u *User) MarshalJSON() ([]byte, error) {
	type Alias User
	aux := &struct {
		Password string `json:"password,omitempty"`
		*Alias
	}{
		Alias: (*Alias)(u),
	}
	aux.Password = ""
	return json.Marshal(aux)
}
