package models

import "time"

// Account is a login principal. TableName names the back-office table the
// account belongs to and Role is its front-domain role; either may be empty.
type Account struct {
	BaseModel
	Username    string     `gorm:"not null;size:64;uniqueIndex:idx_accounts_table_username" json:"username"`
	Password    string     `gorm:"not null" json:"-"`
	Table       string     `gorm:"column:table_name;not null;size:64;uniqueIndex:idx_accounts_table_username" json:"table_name"`
	Role        string     `gorm:"size:64;index" json:"role,omitempty"`
	DisplayName string     `gorm:"size:128" json:"display_name,omitempty"`
	IsActive    bool       `gorm:"default:true" json:"is_active"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	LastLoginIP string     `gorm:"size:64" json:"last_login_ip,omitempty"`
}
