package domain

import "time"

// CacheEntry stores one cached knowledge answer.
type CacheEntry struct {
	Key       string    `json:"key"`
	Topic     string    `json:"topic"`
	Answer    string    `json:"answer"`
	CreatedAt time.Time `json:"created_at"`
}
