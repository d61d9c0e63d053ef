package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Vijayesvar/PLEDG-MF/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DatabaseSlot keeps the value in one row of storage_slots.
type DatabaseSlot struct {
	db  *gorm.DB
	key string
	now func() time.Time
}

func NewDatabaseSlot(db *gorm.DB, key string) (*DatabaseSlot, error) {
	if db == nil {
		return nil, errors.New("storage: database slot needs a db")
	}
	if err := ValidateKey(key); err != nil {
		return nil, err
	}
	return &DatabaseSlot{db: db, key: key, now: time.Now}, nil
}

func (s *DatabaseSlot) Key() string { return s.key }

func (s *DatabaseSlot) Read(ctx context.Context) ([]byte, bool, error) {
	var row models.StorageSlot

	err := s.db.WithContext(ctx).Where("slot_key = ?", s.key).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("storage: read slot %q: %w", s.key, err)
	}
	return []byte(row.Value), true, nil
}

func (s *DatabaseSlot) Write(ctx context.Context, data []byte) error {
	row := models.StorageSlot{
		SlotKey:   s.key,
		Value:     string(data),
		UpdatedAt: s.now().UTC(),
	}

	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "slot_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(&row).Error
	if err != nil {
		return fmt.Errorf("storage: write slot %q: %w", s.key, err)
	}
	return nil
}

func (s *DatabaseSlot) Remove(ctx context.Context) error {
	err := s.db.WithContext(ctx).Where("slot_key = ?", s.key).Delete(&models.StorageSlot{}).Error
	if err != nil {
		return fmt.Errorf("storage: remove slot %q: %w", s.key, err)
	}
	return nil
}

func (s *DatabaseSlot) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("storage: database handle: %w", err)
	}
	return sqlDB.PingContext(ctx)
}
