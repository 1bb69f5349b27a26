// Package report persists per-deployment QC run summaries to a local
// SQLite database.
package report

import (
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/rucool/gliderqc/internal/log"
)

// Run is one recorded QC pass over a deployment's file queue.
type Run struct {
	ID           string `gorm:"primaryKey"`
	Deployment   string `gorm:"index"`
	Test         string
	Mode         string
	TotalFiles   int
	SuspectFiles int
	FailedFiles  int
	FileErrors   int
	StartedAt    time.Time
	CompletedAt  time.Time
}

// Store records QC runs.
type Store struct {
	db *gorm.DB
}

// Open opens the run database at path, creating it and its schema when
// needed.
func Open(path string) (*Store, error) {
	// Create a logger for gorm
	dbLogger := logger.New(
		zap.NewStdLog(log.GetZapLogger()),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
		},
	)

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{Logger: dbLogger})
	if err != nil {
		return nil, fmt.Errorf("unable to open run database %s: %w", path, err)
	}
	if err := db.AutoMigrate(&Run{}); err != nil {
		return nil, fmt.Errorf("unable to migrate run database %s: %w", path, err)
	}
	return &Store{db: db}, nil
}

// Record inserts one completed run, assigning it an ID if it has none.
func (s *Store) Record(r *Run) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return s.db.Create(r).Error
}

// Runs returns the recorded runs for a deployment, most recent first.
func (s *Store) Runs(deployment string) ([]Run, error) {
	var runs []Run
	err := s.db.Where("deployment = ?", deployment).Order("completed_at desc").Find(&runs).Error
	return runs, err
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
