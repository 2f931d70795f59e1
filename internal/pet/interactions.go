package pet

import (
	"fmt"
	"strings"

	"pocketpet/internal/inventory"
)

// Interaction kinds a player can perform.
type Interaction string

const (
	InteractFeed     Interaction = "feed"
	InteractGift     Interaction = "gift"
	InteractPlay     Interaction = "play"
	InteractExercise Interaction = "exercise"
	InteractSleep    Interaction = "sleep"
	InteractVet      Interaction = "vet"
)

// Stat groups interactions by the vital they mainly serve.
type Stat string

const (
	StatHealth    Stat = "health"
	StatSleep     Stat = "sleep"
	StatFullness  Stat = "fullness"
	StatHappiness Stat = "happiness"
)

// InteractionDefinition describes an interaction's properties and effect
type InteractionDefinition struct {
	Kind      Interaction
	Emoji     string
	Label     string
	Stat      Stat
	NeedsItem bool
	Apply     func(p *Pet, item string, inv *inventory.Inventory) error
}

// GetInteractionDefinitions returns every interaction in menu order
func GetInteractionDefinitions() []InteractionDefinition {
	return []InteractionDefinition{
		{
			Kind:      InteractFeed,
			Emoji:     "🍖",
			Label:     "Feed",
			Stat:      StatFullness,
			NeedsItem: true,
			Apply: func(p *Pet, item string, inv *inventory.Inventory) error {
				value := FoodValue(item)
				if value == 0 {
					return fmt.Errorf("%w: %q is not food", ErrInvalidItem, item)
				}
				if err := useOne(inv, item); err != nil {
					return err
				}
				p.Fullness = clamp(p.Fullness + value)
				return nil
			},
		},
		{
			Kind:      InteractGift,
			Emoji:     "🎁",
			Label:     "Give gift",
			Stat:      StatHappiness,
			NeedsItem: true,
			Apply: func(p *Pet, item string, inv *inventory.Inventory) error {
				value := GiftValue(item)
				if value == 0 {
					return fmt.Errorf("%w: %q is not a gift", ErrInvalidItem, item)
				}
				if err := useOne(inv, item); err != nil {
					return err
				}
				p.Happiness = clamp(p.Happiness + value)
				return nil
			},
		},
		{
			Kind:  InteractPlay,
			Emoji: "🎾",
			Label: "Play",
			Stat:  StatHappiness,
			Apply: func(p *Pet, _ string, _ *inventory.Inventory) error {
				p.Happiness = clamp(p.Happiness + PlayHappinessIncrease)
				return nil
			},
		},
		{
			Kind:  InteractExercise,
			Emoji: "🏃",
			Label: "Exercise",
			Stat:  StatHealth,
			Apply: func(p *Pet, _ string, _ *inventory.Inventory) error {
				p.Health = clamp(p.Health + ExerciseHealthIncrease)
				p.Sleep = clamp(p.Sleep - ExerciseSleepDecrease)
				p.Fullness = clamp(p.Fullness - ExerciseFullnessDecrease)
				return nil
			},
		},
		{
			Kind:  InteractSleep,
			Emoji: "🛏️",
			Label: "Go to bed",
			Stat:  StatSleep,
			Apply: func(p *Pet, _ string, _ *inventory.Inventory) error {
				p.RestStep(DefaultSleepIncrement)
				return nil
			},
		},
		{
			Kind:  InteractVet,
			Emoji: "💉",
			Label: "Take to the vet",
			Stat:  StatHealth,
			Apply: func(p *Pet, _ string, _ *inventory.Inventory) error {
				p.Health = clamp(p.Health + VetHealthIncrease)
				return nil
			},
		},
	}
}

// GetInteractionDefinition returns the definition for a given kind
func GetInteractionDefinition(kind Interaction) *InteractionDefinition {
	for _, def := range GetInteractionDefinitions() {
		if def.Kind == kind {
			return &def
		}
	}
	return nil
}

// ParseInteraction maps user input, including the menu labels, to a kind.
func ParseInteraction(s string) (Interaction, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	for _, def := range GetInteractionDefinitions() {
		if norm == string(def.Kind) || norm == strings.ToLower(def.Label) {
			return def.Kind, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidInteraction, s)
}

func useOne(inv *inventory.Inventory, item string) error {
	if inv == nil {
		return fmt.Errorf("%w: no inventory", ErrInvalidItem)
	}
	return inv.Use(item, 1)
}
