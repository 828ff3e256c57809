// Copyright (c) 2026 Sepehrz All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package history keeps a durable audit trail of completed checks in a
// relational store, one row per check, fed through the engine's
// recorder hook. The trail is optional; the service runs without it.
package history

import (
	"context"
	"fmt"
	"strings"

	"github.com/glebarez/sqlite" // pure go sqlite driver
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/sepehrz/filterwatch/src/filterwatch"
)

// Record is one persisted check outcome.
type Record struct {
	ID            string `gorm:"type:varchar(36);primaryKey"`
	Domain        string `gorm:"type:varchar(255);not null;index"`
	Category      string `gorm:"type:varchar(64);not null"`
	Verdict       string `gorm:"type:varchar(16);not null"`
	PublicAnswers string `gorm:"type:varchar(512)"`
	LocalAnswers  string `gorm:"type:varchar(512)"`
	CheckedAt     int64  `gorm:"not null;index"`
}

// Store wraps the gorm handle.
type Store struct {
	db  *gorm.DB
	log *zap.SugaredLogger
}

// Open connects to the configured backend and migrates the schema.
// Supported drivers: "sqlite" (pure Go) and "mysql".
func Open(driver, dsn string, log *zap.SugaredLogger) (*Store, error) {
	var db *gorm.DB
	var err error

	switch driver {
	case "sqlite":
		db, err = gorm.Open(sqlite.Open(dsn), &gorm.Config{
			Logger: gormlogger.Default.LogMode(gormlogger.Silent),
		})
	case "mysql":
		db, err = gorm.Open(mysql.Open(dsn), &gorm.Config{})
	default:
		return nil, fmt.Errorf("unsupported history driver: %s", driver)
	}
	if err != nil {
		return nil, fmt.Errorf("open history store: %w", err)
	}

	if err := db.AutoMigrate(&Record{}); err != nil {
		return nil, fmt.Errorf("migrate history schema: %w", err)
	}

	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Store{db: db, log: log}, nil
}

// Append stores one completed check.
func (s *Store) Append(ctx context.Context, ev filterwatch.CheckEvent) error {
	rec := Record{
		ID:            uuid.NewString(),
		Domain:        ev.Domain,
		Category:      ev.Category,
		Verdict:       string(ev.Verdict),
		PublicAnswers: ev.Details.Public.Summary(),
		LocalAnswers:  ev.Details.Local.Summary(),
		CheckedAt:     ev.CheckedAt.Unix(),
	}
	if err := s.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return fmt.Errorf("append history record: %w", err)
	}
	return nil
}

// Recent returns the latest records for a domain, newest first.
func (s *Store) Recent(ctx context.Context, domain string, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 20
	}
	domain = strings.ToLower(strings.TrimSpace(domain))

	var records []Record
	err := s.db.WithContext(ctx).
		Where("domain = ?", domain).
		Order("checked_at desc").
		Limit(limit).
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("query history for %s: %w", domain, err)
	}
	return records, nil
}

// Recorder adapts the store to the engine's recorder hook. Append
// failures are logged; the audit trail never disturbs a check.
func (s *Store) Recorder() func(context.Context, filterwatch.CheckEvent) {
	return func(ctx context.Context, ev filterwatch.CheckEvent) {
		if err := s.Append(ctx, ev); err != nil {
			s.log.Errorw("failed to record check", "domain", ev.Domain, "err", err)
		}
	}
}
