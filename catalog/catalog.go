// Package catalog records what a build produced, one row per piece, in a
// sqlite file next to the chunks. The report command reads it back.
package catalog

import (
	"errors"
	"fmt"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

const errClientNil = "catalog client is nil"

type PieceRecord struct {
	ID            uint    `gorm:"primaryKey;autoIncrement"`
	Name          string  `gorm:"uniqueIndex:idx_piece_name" json:"name"`
	NumNotes      int     `json:"num_notes"`
	NumChords     int     `json:"num_chords"`
	NumKeys       int     `json:"num_keys"`
	TotalDuration float64 `json:"total_duration"` // whole notes
}

type Client struct {
	DB *gorm.DB
}

func Open(path string) (*Client, error) {
	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	}
	db, err := gorm.Open(sqlite.Open(path), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite catalog: %w", err)
	}
	if err := db.AutoMigrate(&PieceRecord{}); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}
	return &Client{DB: db}, nil
}

func (c *Client) Close() error {
	if c == nil || c.DB == nil {
		return nil
	}
	sqlDB, err := c.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// RecordPiece upserts by piece name, so rebuilding a corpus replaces stale
// rows instead of stacking duplicates.
func (c *Client) RecordPiece(rec PieceRecord) error {
	if c == nil || c.DB == nil {
		return errors.New(errClientNil)
	}
	return c.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		UpdateAll: true,
	}).Create(&rec).Error
}

func (c *Client) AllPieces() ([]PieceRecord, error) {
	if c == nil || c.DB == nil {
		return nil, errors.New(errClientNil)
	}
	var recs []PieceRecord
	if err := c.DB.Order("name").Find(&recs).Error; err != nil {
		return nil, err
	}
	return recs, nil
}

type Stats struct {
	NumPieces     int
	NumNotes      int64
	NumChords     int64
	NumKeys       int64
	TotalDuration float64
}

func (c *Client) Stats() (Stats, error) {
	recs, err := c.AllPieces()
	if err != nil {
		return Stats{}, err
	}
	var s Stats
	s.NumPieces = len(recs)
	for _, r := range recs {
		s.NumNotes += int64(r.NumNotes)
		s.NumChords += int64(r.NumChords)
		s.NumKeys += int64(r.NumKeys)
		s.TotalDuration += r.TotalDuration
	}
	return s, nil
}
