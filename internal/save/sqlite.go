package save

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"pocketpet/internal/game"
)

// SQLiteGateway keeps the same JSON documents in a single SQLite table.
type SQLiteGateway struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewSQLiteGateway opens (creating if needed) the database at dbPath.
func NewSQLiteGateway(dbPath string, logger *zap.Logger) (*SQLiteGateway, error) {
	db, err := InitSQLite(dbPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return &SQLiteGateway{db: db, logger: logger}, nil
}

// InitSQLite opens the database and creates the saves table.
func InitSQLite(dbPath string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	// One writer at a time keeps SQLite free of "database is locked" errors.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping sqlite database: %w", err)
	}
	if err := createSchemas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schemas: %w", err)
	}
	return db, nil
}

func createSchemas(db *sql.DB) error {
	schemas := []string{
		`CREATE TABLE IF NOT EXISTS saves (
			slot INTEGER PRIMARY KEY,
			data TEXT NOT NULL,
			updated_at INTEGER NOT NULL
		);`,
	}
	for _, query := range schemas {
		if _, err := db.Exec(query); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteGateway) Save(ctx context.Context, g *game.GameState) error {
	data, err := Encode(g)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO saves (slot, data, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(slot) DO UPDATE SET data=excluded.data, updated_at=excluded.updated_at
	`
	if _, err := s.db.ExecContext(ctx, query, g.SaveSlot, string(data), TimeNow().UnixMilli()); err != nil {
		return fmt.Errorf("%w: saving slot %d: %v", ErrStorageUnavailable, g.SaveSlot, err)
	}
	s.logger.Debug("slot saved", zap.Int("slot", g.SaveSlot), zap.String("backend", "sqlite"))
	return nil
}

func (s *SQLiteGateway) Load(ctx context.Context, slot int) (*game.GameState, error) {
	if err := checkSlot(slot); err != nil {
		return nil, err
	}
	var data string
	err := s.db.QueryRowContext(ctx, `SELECT data FROM saves WHERE slot = ?`, slot).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: slot %d", ErrSlotEmpty, slot)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: loading slot %d: %v", ErrStorageUnavailable, slot, err)
	}
	g, err := Decode(slot, []byte(data))
	if err != nil {
		s.logger.Warn("corrupt save slot", zap.Int("slot", slot), zap.Error(err))
		return nil, err
	}
	return g, nil
}

func (s *SQLiteGateway) List(ctx context.Context) ([]SlotInfo, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT slot, data, updated_at FROM saves ORDER BY slot ASC`)
	if err != nil {
		return nil, fmt.Errorf("%w: listing saves: %v", ErrStorageUnavailable, err)
	}
	defer rows.Close()

	var out []SlotInfo
	for rows.Next() {
		var (
			slot    int
			data    string
			updated int64
		)
		if err := rows.Scan(&slot, &data, &updated); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
		}
		at := time.UnixMilli(updated)
		g, err := Decode(slot, []byte(data))
		if err != nil {
			out = append(out, SlotInfo{Slot: slot, UpdatedAt: at, Corrupt: true})
			continue
		}
		out = append(out, summarize(g, at))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return out, nil
}

func (s *SQLiteGateway) Delete(ctx context.Context, slot int) error {
	if err := checkSlot(slot); err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM saves WHERE slot = ?`, slot)
	if err != nil {
		return fmt.Errorf("%w: deleting slot %d: %v", ErrStorageUnavailable, slot, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: slot %d", ErrSlotEmpty, slot)
	}
	s.logger.Info("slot deleted", zap.Int("slot", slot), zap.String("backend", "sqlite"))
	return nil
}

func (s *SQLiteGateway) Close() error { return s.db.Close() }
