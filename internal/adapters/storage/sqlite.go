package storage

import (
	"fmt"
	"time"

	"github.com/lcalzada-xor/wdeck/internal/core/ports"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/plugin/opentelemetry/tracing"
)

// MemoryDSN keeps the journal in RAM. Nothing survives a restart.
const MemoryDSN = "file:wdeck-journal?mode=memory&cache=shared"

// SQLiteAdapter implements ports.Storage using GORM and SQLite.
type SQLiteAdapter struct {
	db *gorm.DB
}

var _ ports.Storage = (*SQLiteAdapter)(nil)

// JournalModel is the GORM model for journal entries.
type JournalModel struct {
	ID        uint   `gorm:"primaryKey"`
	SessionID string `gorm:"index"`
	Action    string `gorm:"index"`
	Target    string
	Details   string
	Timestamp time.Time `gorm:"index"`
}

// NewSQLiteAdapter opens the database and migrates the schema. An empty dsn
// selects MemoryDSN.
func NewSQLiteAdapter(dsn string) (*SQLiteAdapter, error) {
	if dsn == "" {
		dsn = MemoryDSN
	}
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}

	// An in-memory database lives only as long as its connection.
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.Use(tracing.NewPlugin(tracing.WithoutMetrics())); err != nil {
		return nil, fmt.Errorf("journal tracing: %w", err)
	}

	if err := db.AutoMigrate(&JournalModel{}); err != nil {
		return nil, fmt.Errorf("migrate journal: %w", err)
	}

	return &SQLiteAdapter{db: db}, nil
}

// Close closes the underlying connection.
func (a *SQLiteAdapter) Close() error {
	sqlDB, err := a.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
