package main

import (
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Terminal pipeline outcomes, as recorded in the journal.
const (
	outcomeDelivered   = "delivered"
	outcomeInvalid     = "invalid"
	outcomeRateLimited = "rate_limited"
	outcomeFailed      = "failed"
)

// FactRequest is one row per processed location request. The journal only
// feeds the /stats command; no admission or delivery decision reads it.
type FactRequest struct {
	gorm.Model
	ChatID     int64 `gorm:"index"`
	UserID     int64 `gorm:"index"`
	Latitude   float64
	Longitude  float64
	Outcome    string `gorm:"index"`
	DurationMs int64
}

type JournalStats struct {
	TotalRequests int64
	Delivered     int64
	DistinctUsers int64
}

// RequestJournal is the sqlite-backed request log. A nil journal is valid and
// records nothing, which is how the feature is disabled.
type RequestJournal struct {
	db *gorm.DB
}

func openJournal(path string) (*RequestJournal, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open journal database: %w", err)
	}

	if err := db.AutoMigrate(&FactRequest{}); err != nil {
		return nil, fmt.Errorf("failed to migrate journal schema: %w", err)
	}

	return &RequestJournal{db: db}, nil
}

func (j *RequestJournal) Record(req *FactRequest) error {
	if j == nil {
		return nil
	}
	return j.db.Create(req).Error
}

func (j *RequestJournal) Stats() (JournalStats, error) {
	var stats JournalStats
	if err := j.db.Model(&FactRequest{}).Count(&stats.TotalRequests).Error; err != nil {
		return JournalStats{}, err
	}
	if err := j.db.Model(&FactRequest{}).Where("outcome = ?", outcomeDelivered).Count(&stats.Delivered).Error; err != nil {
		return JournalStats{}, err
	}
	if err := j.db.Model(&FactRequest{}).Distinct("user_id").Count(&stats.DistinctUsers).Error; err != nil {
		return JournalStats{}, err
	}
	return stats, nil
}
