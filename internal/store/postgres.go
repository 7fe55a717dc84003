package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/avillega/conquian-backend/internal/engine"
)

// gameRecord is the games table row: the full state document plus the
// version column the CAS check runs against.
type gameRecord struct {
	GameID    string `gorm:"primaryKey;column:game_id"`
	Version   int64  `gorm:"column:version;not null"`
	Document  []byte `gorm:"column:document;type:jsonb;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (gameRecord) TableName() string { return "games" }

// Postgres stores game documents in a single Postgres table.
type Postgres struct {
	db *gorm.DB
}

// OpenPostgres connects and migrates the games table.
func OpenPostgres(dsn string) (*Postgres, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}
	if err := db.AutoMigrate(&gameRecord{}); err != nil {
		return nil, fmt.Errorf("migrating games table: %w", err)
	}
	return &Postgres{db: db}, nil
}

func (p *Postgres) Create(ctx context.Context, state engine.GameState) error {
	doc, err := json.Marshal(state)
	if err != nil {
		return err
	}

	rec := gameRecord{GameID: state.GameID, Version: 1, Document: doc}
	if err := p.db.WithContext(ctx).Create(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrExists
		}
		return err
	}
	return nil
}

func (p *Postgres) Load(ctx context.Context, gameID string) (engine.GameState, int64, error) {
	var rec gameRecord
	err := p.db.WithContext(ctx).First(&rec, "game_id = ?", gameID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return engine.GameState{}, 0, ErrNotFound
	}
	if err != nil {
		return engine.GameState{}, 0, err
	}

	var state engine.GameState
	if err := json.Unmarshal(rec.Document, &state); err != nil {
		return engine.GameState{}, 0, err
	}
	state.Normalize()
	return state, rec.Version, nil
}

func (p *Postgres) Save(ctx context.Context, state engine.GameState, expectedVersion int64) (int64, error) {
	doc, err := json.Marshal(state)
	if err != nil {
		return 0, err
	}

	res := p.db.WithContext(ctx).
		Model(&gameRecord{}).
		Where("game_id = ? AND version = ?", state.GameID, expectedVersion).
		Updates(map[string]any{
			"version":  expectedVersion + 1,
			"document": doc,
		})
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		// Either the row is gone or another writer bumped the version.
		var count int64
		if err := p.db.WithContext(ctx).Model(&gameRecord{}).
			Where("game_id = ?", state.GameID).Count(&count).Error; err != nil {
			return 0, err
		}
		if count == 0 {
			return 0, ErrNotFound
		}
		return 0, ErrConflict
	}
	return expectedVersion + 1, nil
}

func (p *Postgres) Delete(ctx context.Context, gameID string) error {
	return p.db.WithContext(ctx).Delete(&gameRecord{}, "game_id = ?", gameID).Error
}
