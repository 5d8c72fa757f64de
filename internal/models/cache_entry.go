package models

import "time"

// CacheEntry backs sessions and login counters when Redis is not configured.
// A zero ExpiresAt never expires.
type CacheEntry struct {
	Key       string    `gorm:"column:cache_key;primaryKey;size:255"`
	Value     []byte    `gorm:"not null"`
	ExpiresAt time.Time `gorm:"index"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Expired reports whether the entry has a deadline at or before now.
func (e CacheEntry) Expired(now time.Time) bool {
	return !e.ExpiresAt.IsZero() && !e.ExpiresAt.After(now)
}
