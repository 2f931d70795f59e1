// Package game holds the player and the save-slot state that is persisted.
package game

import (
	"errors"
	"fmt"
	"strings"

	"pocketpet/internal/inventory"
	"pocketpet/internal/pet"
)

var (
	ErrPetExists   = errors.New("player already has a pet")
	ErrNoPet       = errors.New("player has no pet")
	ErrInvalidName = errors.New("name must not be blank")
	ErrInvalidSlot = errors.New("save slot must be positive")
)

// Player is the owner of a pet and an inventory.
type Player struct {
	Name       string               `json:"name"`
	Score      int                  `json:"score"`
	CurrentPet *pet.Pet             `json:"currentPet"`
	Inventory  *inventory.Inventory `json:"inventory"`
}

// NewPlayer returns a player with an empty inventory and no pet.
func NewPlayer(name string) *Player {
	return &Player{Name: name, Inventory: inventory.New()}
}

// HasPet reports whether a named pet has been adopted.
func (p *Player) HasPet() bool {
	return p.CurrentPet != nil && p.CurrentPet.Name != ""
}

// AdoptPet gives the player a new pet with every vital at full.
func (p *Player) AdoptPet(name string, archetype pet.Archetype) (*pet.Pet, error) {
	if p.HasPet() {
		return nil, fmt.Errorf("%w: %s", ErrPetExists, p.CurrentPet.Name)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrInvalidName
	}
	p.CurrentPet = pet.New(name, archetype)
	return p.CurrentPet, nil
}

// Interact performs one interaction against the player's pet and inventory
// and scores it on success.
func (p *Player) Interact(kind pet.Interaction, item string) error {
	if !p.HasPet() {
		return ErrNoPet
	}
	if err := p.CurrentPet.Interact(kind, item, p.Inventory); err != nil {
		return err
	}
	p.Score++
	return nil
}

// Clone returns a deep copy.
func (p *Player) Clone() *Player {
	if p == nil {
		return nil
	}
	c := *p
	c.CurrentPet = p.CurrentPet.Clone()
	if p.Inventory != nil {
		c.Inventory = p.Inventory.Clone()
	}
	return &c
}

// GameState is everything stored in one save slot.
type GameState struct {
	Player   *Player `json:"player"`
	SaveSlot int     `json:"saveSlot"`
}

// New returns the state for a fresh slot.
func New(slot int, playerName string) (*GameState, error) {
	if slot < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidSlot, slot)
	}
	return &GameState{Player: NewPlayer(playerName), SaveSlot: slot}, nil
}

// Pet returns the current pet or nil.
func (g *GameState) Pet() *pet.Pet {
	if g.Player == nil {
		return nil
	}
	return g.Player.CurrentPet
}

// Clone returns a deep copy.
func (g *GameState) Clone() *GameState {
	if g == nil {
		return nil
	}
	return &GameState{Player: g.Player.Clone(), SaveSlot: g.SaveSlot}
}

// Normalize fills in the parts a decoded document may lack. A pet with an
// empty name counts as not yet adopted.
func (g *GameState) Normalize() {
	if g.Player == nil {
		g.Player = NewPlayer("")
	}
	if g.Player.Inventory == nil {
		g.Player.Inventory = inventory.New()
	}
	if g.Player.CurrentPet != nil && g.Player.CurrentPet.Name == "" {
		g.Player.CurrentPet = nil
	}
	if g.Player.Score < 0 {
		g.Player.Score = 0
	}
}
