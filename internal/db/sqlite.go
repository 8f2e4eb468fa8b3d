package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// Entry is a single key-value row
type Entry struct {
	Key       string `gorm:"primaryKey;column:entry_key"`
	Value     []byte `gorm:"not null"`
	UpdatedAt time.Time
}

// TableName keeps the table name stable across struct renames
func (Entry) TableName() string {
	return "kv_entries"
}

// SQLiteStore is a Store backed by a sqlite database through gorm
type SQLiteStore struct {
	db *gorm.DB
}

// OpenSQLite opens the database file at path and runs migrations
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent), // Quiet by default
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(&Entry{}); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Get implements Store.
func (s *SQLiteStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var entry Entry
	err := s.db.WithContext(ctx).First(&entry, "entry_key = ?", key).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to read %q: %w", key, err)
	}
	return entry.Value, true, nil
}

// Set implements Store.
func (s *SQLiteStore) Set(ctx context.Context, key string, value []byte) error {
	if err := upsert(s.db.WithContext(ctx), key, value); err != nil {
		return fmt.Errorf("failed to write %q: %w", key, err)
	}
	return nil
}

// Delete implements Store.
func (s *SQLiteStore) Delete(ctx context.Context, key string) error {
	if err := s.db.WithContext(ctx).Delete(&Entry{}, "entry_key = ?", key).Error; err != nil {
		return fmt.Errorf("failed to delete %q: %w", key, err)
	}
	return nil
}

// SetMany implements Store.
func (s *SQLiteStore) SetMany(ctx context.Context, entries map[string][]byte) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for k, v := range entries {
			if err := upsert(tx, k, v); err != nil {
				return fmt.Errorf("failed to write %q: %w", k, err)
			}
		}
		return nil
	})
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func upsert(tx *gorm.DB, key string, value []byte) error {
	if value == nil {
		value = []byte{}
	}
	entry := Entry{Key: key, Value: value, UpdatedAt: time.Now()}
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "entry_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entry).Error
}
