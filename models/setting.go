package models

import "time"

// Setting is one key/value pair of shop configuration.
type Setting struct {
	Key       string    `gorm:"primaryKey;size:64" json:"key"`
	Value     string    `gorm:"not null" json:"value"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// DefaultSettings are seeded on first store initialization if absent.
var DefaultSettings = map[string]string{
	"theme":               "light",
	"printFormat":         "A5",
	"currency":            "AFN",
	"autosave":            "true",
	"backupIntervalHours": "24",
}
