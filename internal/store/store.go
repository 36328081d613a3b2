// Package store persists analysis outputs. Outputs are keyed by engineer and
// kind; saving the same pair again replaces the content, which is what makes
// the workflow's reentrant terminal step safe.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"
)

// OutputRecord is one persisted analysis output.
type OutputRecord struct {
	ID        uint   `gorm:"primaryKey"`
	Engineer  string `gorm:"size:255;uniqueIndex:idx_engineer_kind,priority:1;not null"`
	Kind      string `gorm:"size:64;uniqueIndex:idx_engineer_kind,priority:2;not null"`
	Content   string `gorm:"type:text;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName fixes the table name independent of gorm's pluralization.
func (OutputRecord) TableName() string { return "outputs" }

// SQLiteStore keeps outputs in a local SQLite database.
type SQLiteStore struct {
	db     *gorm.DB
	logger *zap.Logger
}

// Open opens (and migrates) the database at path. Use ":memory:" for an
// ephemeral store.
func Open(path string, logger *zap.Logger) (*SQLiteStore, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Discard,
	})
	if err != nil {
		return nil, fmt.Errorf("open outputs database: %w", err)
	}
	if err := db.AutoMigrate(&OutputRecord{}); err != nil {
		return nil, fmt.Errorf("migrate outputs schema: %w", err)
	}
	return &SQLiteStore{
		db:     db,
		logger: logger.With(zap.String("component", "output_store")),
	}, nil
}

// Save upserts one output. Saving identical content twice is a no-op apart
// from the updated timestamp.
func (s *SQLiteStore) Save(ctx context.Context, engineer, kind, content string) error {
	rec := OutputRecord{Engineer: engineer, Kind: kind, Content: content}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "engineer"}, {Name: "kind"}},
		DoUpdates: clause.AssignmentColumns([]string{"content", "updated_at"}),
	}).Create(&rec).Error
	if err != nil {
		return fmt.Errorf("save output %s/%s: %w", engineer, kind, err)
	}
	s.logger.Debug("output saved",
		zap.String("engineer", engineer),
		zap.String("kind", kind),
		zap.Int("bytes", len(content)),
	)
	return nil
}

// Load returns the stored output for (engineer, kind). ok is false when no
// record exists.
func (s *SQLiteStore) Load(ctx context.Context, engineer, kind string) (string, bool, error) {
	var rec OutputRecord
	err := s.db.WithContext(ctx).
		Where("engineer = ? AND kind = ?", engineer, kind).
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("load output %s/%s: %w", engineer, kind, err)
	}
	return rec.Content, true, nil
}
