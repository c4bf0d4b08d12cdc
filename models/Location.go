package models

// Fixed administrative hierarchy: Province -> District -> Municipality.
// Seeded once at migration time, read-only afterwards.

type Province struct {
	ID         uint   `json:"id" gorm:"primaryKey"`
	Name       string `json:"name" gorm:"size:100;not null"`
	NameNepali string `json:"nameNepali" gorm:"size:100"`
}

type District struct {
	ID         uint   `json:"id" gorm:"primaryKey"`
	Name       string `json:"name" gorm:"size:100;not null"`
	NameNepali string `json:"nameNepali" gorm:"size:100"`
	ProvinceID uint   `json:"provinceID" gorm:"not null;index"`
}

type Municipality struct {
	ID         uint   `json:"id" gorm:"primaryKey"`
	Name       string `json:"name" gorm:"size:100;not null"`
	NameNepali string `json:"nameNepali" gorm:"size:100"`
	DistrictID uint   `json:"districtID" gorm:"not null;index"`
	Type       string `json:"type" gorm:"type:varchar(30)"` // metropolitan, sub_metropolitan, municipality, rural_municipality
	TotalWards int    `json:"totalWards" gorm:"default:1"`
}
