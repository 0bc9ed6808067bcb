// Package store persists conversation records in a local SQLite
// database. The log is append-only: records are never updated or
// deleted by the application.
package store

import (
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// TimestampLayout is the format conversation timestamps are stored in.
const TimestampLayout = "2006-01-02 15:04:05"

// Conversation is one stored prompt/image/response exchange.
// Base64Image is empty when the exchange carried no image.
type Conversation struct {
	ID          uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	UserPrompt  string `gorm:"column:user_prompt;type:text" json:"user_prompt"`
	Base64Image string `gorm:"column:base64_image;type:text" json:"base64_image"`
	BotResponse string `gorm:"column:bot_response;type:text" json:"bot_response"`
	Timestamp   string `gorm:"column:timestamp;type:text;not null" json:"timestamp"`
}

// TableName sets the table name for gorm
func (Conversation) TableName() string {
	return "conversations"
}

// Store wraps a long-lived database handle reused across requests
type Store struct {
	db *gorm.DB
}

// Open opens (or creates) the database at path and ensures the
// conversations table exists.
func Open(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", path, err)
	}

	if err := db.AutoMigrate(&Conversation{}); err != nil {
		return nil, fmt.Errorf("failed to create conversations table: %w", err)
	}

	return &Store{db: db}, nil
}

// Save appends a record. A missing timestamp is filled with the
// current time; every row always has one.
func (s *Store) Save(rec *Conversation) error {
	if rec.Timestamp == "" {
		rec.Timestamp = time.Now().Format(TimestampLayout)
	}
	if err := s.db.Create(rec).Error; err != nil {
		return fmt.Errorf("failed to save conversation: %w", err)
	}
	return nil
}

// All returns every stored record, most recent first.
func (s *Store) All() ([]Conversation, error) {
	var recs []Conversation
	if err := s.db.Order("id DESC").Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("failed to load conversations: %w", err)
	}
	return recs, nil
}

// Get returns a single record by id
func (s *Store) Get(id uint) (*Conversation, error) {
	var rec Conversation
	if err := s.db.First(&rec, id).Error; err != nil {
		return nil, fmt.Errorf("failed to load conversation %d: %w", id, err)
	}
	return &rec, nil
}

// Close releases the underlying database handle
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
