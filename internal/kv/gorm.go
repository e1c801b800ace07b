package kv

import (
	"context"
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// GORM is a Store backed by a gorm database, one row per key.
type GORM struct {
	db *gorm.DB
}

// entry is a single stored key.
type entry struct {
	Name      string `gorm:"primaryKey;size:128"`
	Value     string
	UpdatedAt time.Time
}

func (entry) TableName() string { return "kv_entries" }

// NewGORM wraps db, creating the kv_entries table if it doesn't exist.
func NewGORM(db *gorm.DB) (*GORM, error) {
	if err := db.AutoMigrate(&entry{}); err != nil {
		return nil, fmt.Errorf("migrate kv_entries: %w", err)
	}
	return &GORM{db: db}, nil
}

// OpenSQLite opens (or creates) a sqlite database at path.
func OpenSQLite(path string) (*GORM, error) {
	if path == "" {
		path = "file::memory:"
	}
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{Logger: logger.Discard})
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	// sqlite allows one writer; a single connection also keeps
	// file::memory: databases from splitting across the pool.
	sqlDB.SetMaxOpenConns(1)
	return NewGORM(db)
}

func (s *GORM) Get(ctx context.Context, key string) (string, bool, error) {
	var e entry
	tx := s.db.WithContext(ctx).Where("name = ?", key).Limit(1).Find(&e)
	if tx.Error != nil {
		return "", false, tx.Error
	}
	if tx.RowsAffected == 0 {
		return "", false, nil
	}
	return e.Value, true, nil
}

func (s *GORM) Set(ctx context.Context, key, value string) error {
	e := entry{Name: key, Value: value, UpdatedAt: time.Now()}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(&e).Error
}

func (s *GORM) Delete(ctx context.Context, key string) error {
	return s.db.WithContext(ctx).Delete(&entry{}, "name = ?", key).Error
}

// Close releases the underlying connection pool.
func (s *GORM) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
