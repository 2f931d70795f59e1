// Package pet implements the pet's vitals, its derived state and the
// interactions a player can perform on it.
package pet

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"

	"pocketpet/internal/inventory"
)

// Testable random source for the generic decay profile.
var RandIntn = rand.Intn

var (
	ErrInvalidItem        = errors.New("invalid item for interaction")
	ErrInvalidInteraction = errors.New("invalid interaction")
	ErrPetDead            = errors.New("pet is dead")
	ErrPetSleeping        = errors.New("pet is sleeping")
	ErrPetAngry           = errors.New("pet is angry")
)

// Archetype identifies a pet species. It is persisted as the integer petType.
type Archetype int

const (
	ArchetypeGeneric Archetype = iota
	ArchetypePatch
	ArchetypeGunchi
	ArchetypeAsh
)

// State is the primary state derived from the vitals.
type State string

const (
	StateNormal   State = "normal"
	StateDead     State = "dead"
	StateSleeping State = "sleeping"
	StateHungry   State = "hungry"
	StateAngry    State = "angry"
)

// Pet holds the identity and vitals of the virtual pet. State is never
// stored; it is always computed from the vitals.
type Pet struct {
	Name      string
	Type      Archetype
	Health    int
	Sleep     int
	Fullness  int
	Happiness int
}

// New creates a pet with every vital at full.
func New(name string, archetype Archetype) *Pet {
	return &Pet{
		Name:      name,
		Type:      archetype,
		Health:    MaxStat,
		Sleep:     MaxStat,
		Fullness:  MaxStat,
		Happiness: MaxStat,
	}
}

// MainState returns the single reported state using the precedence
// dead > sleeping > hungry > angry > normal.
func (p Pet) MainState() State {
	switch {
	case p.Health <= 0:
		return StateDead
	case p.Sleep <= 0:
		return StateSleeping
	case p.Fullness <= 0:
		return StateHungry
	case p.Happiness <= AngryThreshold:
		return StateAngry
	default:
		return StateNormal
	}
}

// States returns every state flag that currently holds. A dead pet only
// reports dead. An empty result means normal.
func (p Pet) States() []State {
	if p.Health <= 0 {
		return []State{StateDead}
	}
	states := []State{}
	if p.Sleep <= 0 {
		states = append(states, StateSleeping)
	}
	if p.Fullness <= 0 {
		states = append(states, StateHungry)
	}
	if p.Happiness <= AngryThreshold {
		states = append(states, StateAngry)
	}
	return states
}

// Dead reports whether health has run out.
func (p Pet) Dead() bool { return p.Health <= 0 }

// Warning reports whether any vital is low enough to warn the player.
func (p Pet) Warning() bool {
	return p.Health < WarningThreshold || p.Sleep < WarningThreshold ||
		p.Fullness < WarningThreshold || p.Happiness < WarningThreshold
}

// CanInteract applies the state gate: dead pets accept nothing, sleeping
// pets only accept being put to bed, angry pets only accept happiness
// interactions.
func (p Pet) CanInteract(kind Interaction) error {
	def := GetInteractionDefinition(kind)
	if def == nil {
		return fmt.Errorf("%w: %q", ErrInvalidInteraction, kind)
	}
	switch p.MainState() {
	case StateDead:
		return ErrPetDead
	case StateSleeping:
		if kind != InteractSleep {
			return fmt.Errorf("%w: only sleep is possible", ErrPetSleeping)
		}
	case StateAngry:
		if def.Stat != StatHappiness {
			return fmt.Errorf("%w: only play or gifts will help", ErrPetAngry)
		}
	}
	return nil
}

// Interact performs one interaction. item and inv are only used by feed and
// gift. On error nothing is changed.
func (p *Pet) Interact(kind Interaction, item string, inv *inventory.Inventory) error {
	if err := p.CanInteract(kind); err != nil {
		return err
	}
	return GetInteractionDefinition(kind).Apply(p, item, inv)
}

// Feed consumes one food item and raises fullness.
func (p *Pet) Feed(item string, inv *inventory.Inventory) error {
	return p.Interact(InteractFeed, item, inv)
}

// Gift consumes one gift item and raises happiness.
func (p *Pet) Gift(item string, inv *inventory.Inventory) error {
	return p.Interact(InteractGift, item, inv)
}

// Play raises happiness.
func (p *Pet) Play() error { return p.Interact(InteractPlay, "", nil) }

// Exercise trades sleep and fullness for health.
func (p *Pet) Exercise() error { return p.Interact(InteractExercise, "", nil) }

// TakeToVet raises health.
func (p *Pet) TakeToVet() error { return p.Interact(InteractVet, "", nil) }

// RestStep raises sleep by one ramp increment and reports whether sleep is
// now full.
func (p *Pet) RestStep(increment int) bool {
	p.Sleep = clamp(p.Sleep + increment)
	return p.Sleep >= MaxStat
}

// AdjustStats applies one decay tick. Empty sleep or fullness costs health,
// empty fullness also costs happiness. When health runs out every other vital
// drops to zero as well.
func (p *Pet) AdjustStats(d Decay) {
	if p.Dead() {
		return
	}
	sleep, fullness, happiness := d.Decrements()
	p.Sleep = clamp(p.Sleep - sleep)
	p.Fullness = clamp(p.Fullness - fullness)
	p.Happiness = clamp(p.Happiness - happiness)

	if p.Sleep <= 0 {
		p.Health = clamp(p.Health - DeprivationHealthPenalty)
	}
	if p.Fullness <= 0 {
		p.Health = clamp(p.Health - DeprivationHealthPenalty)
		p.Happiness = clamp(p.Happiness - HungerHappinessPenalty)
	}
	if p.Dead() {
		p.Sleep, p.Fullness, p.Happiness = MinStat, MinStat, MinStat
	}
}

// Revive restores every vital to full, which also clears the dead state.
func (p *Pet) Revive() {
	p.Health, p.Sleep, p.Fullness, p.Happiness = MaxStat, MaxStat, MaxStat, MaxStat
}

// Clone returns a copy that shares nothing with p.
func (p *Pet) Clone() *Pet {
	if p == nil {
		return nil
	}
	c := *p
	return &c
}

// petJSON is the save-file shape of a pet.
type petJSON struct {
	Name             string    `json:"name"`
	Health           int       `json:"health"`
	Sleep            int       `json:"sleep"`
	Fullness         int       `json:"fullness"`
	Happiness        int       `json:"happiness"`
	CurrentPetStates []string  `json:"currentPetStates"`
	PetType          Archetype `json:"petType"`
}

// MarshalJSON writes the derived state flags alongside the vitals.
func (p Pet) MarshalJSON() ([]byte, error) {
	states := p.States()
	names := make([]string, 0, len(states))
	for _, s := range states {
		names = append(names, string(s))
	}
	return json.Marshal(petJSON{
		Name:             p.Name,
		Health:           p.Health,
		Sleep:            p.Sleep,
		Fullness:         p.Fullness,
		Happiness:        p.Happiness,
		CurrentPetStates: names,
		PetType:          p.Type,
	})
}

// UnmarshalJSON reads a pet and clamps its vitals. Stored state flags are
// ignored since state is recomputed from vitals.
func (p *Pet) UnmarshalJSON(data []byte) error {
	var raw petJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*p = Pet{
		Name:      raw.Name,
		Type:      raw.PetType,
		Health:    clamp(raw.Health),
		Sleep:     clamp(raw.Sleep),
		Fullness:  clamp(raw.Fullness),
		Happiness: clamp(raw.Happiness),
	}
	return nil
}

// String renders the vitals for logs.
func (p Pet) String() string {
	return fmt.Sprintf("%s(health=%d sleep=%d fullness=%d happiness=%d state=%s)",
		p.Name, p.Health, p.Sleep, p.Fullness, p.Happiness, p.MainState())
}

func clamp(v int) int {
	if v < MinStat {
		return MinStat
	}
	if v > MaxStat {
		return MaxStat
	}
	return v
}
