package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"
)

// BackupPayload is the interchange document: the same shape is stored in a
// snapshot row, returned by export and accepted by import.
type BackupPayload struct {
	Customers      []Customer `json:"customers"`
	Timestamp      time.Time  `json:"timestamp"`
	Version        int        `json:"version"`
	TotalCustomers int        `json:"totalCustomers"`
}

func (p BackupPayload) Value() (driver.Value, error) {
	return json.Marshal(p)
}

func (p *BackupPayload) Scan(value interface{}) error {
	if value == nil {
		*p = BackupPayload{}
		return nil
	}
	b, err := rawBytes(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, p)
}

// Backup is one immutable snapshot of every customer record, soft-deleted
// ones included. Rows are append-only; rotation is not the store's concern.
type Backup struct {
	ID   uint          `gorm:"primaryKey;autoIncrement" json:"id"`
	Date time.Time     `gorm:"not null" json:"date"`
	Data BackupPayload `gorm:"type:text" json:"data"`
}
