package models

import "time"

// StorageSlot is one named text slot. The waitlist keeps its whole serialised
// collection in a single row.
type StorageSlot struct {
	SlotKey   string    `gorm:"column:slot_key;primaryKey;size:191"`
	Value     string    `gorm:"column:value;type:text;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null"`
}

func (StorageSlot) TableName() string {
	return "storage_slots"
}
