// Package save persists game states into numbered slots.
package save

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"pocketpet/internal/config"
	"pocketpet/internal/game"
	"pocketpet/internal/pet"
)

// TimeNow is used for slot timestamps and can be replaced in tests.
var TimeNow = time.Now

var (
	// ErrSlotUnavailable covers every reason a slot cannot be loaded.
	ErrSlotUnavailable = errors.New("save slot unavailable")
	// ErrSlotEmpty means nothing has been saved in the slot.
	ErrSlotEmpty = fmt.Errorf("slot is empty: %w", ErrSlotUnavailable)
	// ErrSlotCorrupt means the stored document could not be decoded.
	ErrSlotCorrupt = fmt.Errorf("slot is corrupt: %w", ErrSlotUnavailable)
	// ErrStorageUnavailable wraps I/O failures of the backing store.
	ErrStorageUnavailable = errors.New("save storage unavailable")
)

// Gateway stores and retrieves game states by slot number.
type Gateway interface {
	Save(ctx context.Context, g *game.GameState) error
	Load(ctx context.Context, slot int) (*game.GameState, error)
	List(ctx context.Context) ([]SlotInfo, error)
	Delete(ctx context.Context, slot int) error
	Close() error
}

// SlotInfo summarises one stored slot for listings.
type SlotInfo struct {
	Slot       int
	PlayerName string
	PetName    string
	Archetype  pet.Archetype
	State      pet.State
	Score      int
	UpdatedAt  time.Time
	Corrupt    bool
}

// Open returns the gateway selected by cfg.SaveBackend.
func Open(cfg config.DataConfig, logger *zap.Logger) (Gateway, error) {
	switch cfg.SaveBackend {
	case config.BackendFile, "":
		return NewFileGateway(cfg.SavesDir(), logger)
	case config.BackendSQLite:
		return NewSQLiteGateway(cfg.SQLitePath(), logger)
	default:
		return nil, fmt.Errorf("unknown save backend %q", cfg.SaveBackend)
	}
}

// Encode renders a game state as an indented JSON document.
func Encode(g *game.GameState) ([]byte, error) {
	if g == nil || g.SaveSlot < 1 {
		return nil, game.ErrInvalidSlot
	}
	return json.MarshalIndent(g, "", "  ")
}

// Decode parses a stored document for slot. The slot number on disk wins over
// the one inside the document. A document without a player or an inventory is
// corrupt; it is never filled in with a blank game.
func Decode(slot int, data []byte) (*game.GameState, error) {
	var g game.GameState
	if err := json.Unmarshal(data, &g); err != nil {
		return nil, fmt.Errorf("%w: slot %d: %v", ErrSlotCorrupt, slot, err)
	}
	switch {
	case g.Player == nil:
		return nil, fmt.Errorf("%w: slot %d: missing player", ErrSlotCorrupt, slot)
	case g.Player.Inventory == nil:
		return nil, fmt.Errorf("%w: slot %d: missing inventory", ErrSlotCorrupt, slot)
	}
	g.Normalize()
	g.SaveSlot = slot
	return &g, nil
}

func summarize(g *game.GameState, updated time.Time) SlotInfo {
	info := SlotInfo{
		Slot:       g.SaveSlot,
		PlayerName: g.Player.Name,
		Score:      g.Player.Score,
		UpdatedAt:  updated,
	}
	if p := g.Pet(); p != nil {
		info.PetName = p.Name
		info.Archetype = p.Type
		info.State = p.MainState()
	}
	return info
}

func checkSlot(slot int) error {
	if slot < 1 {
		return fmt.Errorf("%w: got %d", game.ErrInvalidSlot, slot)
	}
	return nil
}

// Revive restores the pet stored in slot to full vitals.
func Revive(ctx context.Context, gw Gateway, slot int) (*game.GameState, error) {
	g, err := gw.Load(ctx, slot)
	if err != nil {
		return nil, err
	}
	p := g.Pet()
	if p == nil {
		return nil, game.ErrNoPet
	}
	p.Revive()
	if err := gw.Save(ctx, g); err != nil {
		return nil, err
	}
	return g, nil
}
