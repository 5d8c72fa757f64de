package models

import "time"

// SystemSetting is a persisted key/value pair such as the generated JWT signing secret.
type SystemSetting struct {
	Key       string    `gorm:"column:setting_key;primaryKey;size:128" json:"key"`
	Value     string    `gorm:"type:text;not null" json:"-"`
	UpdatedAt time.Time `json:"updated_at"`
}
