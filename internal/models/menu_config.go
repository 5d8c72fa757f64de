package models

import "gorm.io/datatypes"

// MenuConfig stores one revision of the menu document. The row with the
// highest Version is the active configuration.
type MenuConfig struct {
	BaseModel
	Version   int            `gorm:"not null;uniqueIndex" json:"version"`
	Document  datatypes.JSON `gorm:"not null" json:"document"`
	Source    string         `gorm:"size:32" json:"source"`
	UpdatedBy string         `gorm:"size:128" json:"updated_by,omitempty"`
}
