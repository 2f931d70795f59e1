// Package inventory holds the player's consumable items: three foods and
// three gifts, each with a non-negative count.
package inventory

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Item identifiers. These are also the JSON map keys of a save file.
const (
	Vegetable = "vegetable"
	Fruit     = "fruit"
	Meat      = "meat"

	Toy       = "toy"
	Ball      = "ball"
	PlayPlace = "play place"
)

var (
	ErrUnknownItem          = errors.New("unknown item")
	ErrInsufficientQuantity = errors.New("insufficient quantity")
	ErrInvalidQuantity      = errors.New("quantity must be at least 1")
)

var (
	foodOrder = []string{Vegetable, Fruit, Meat}
	giftOrder = []string{Toy, Ball, PlayPlace}
)

// FoodItems returns the food identifiers in display order.
func FoodItems() []string { return append([]string(nil), foodOrder...) }

// GiftItems returns the gift identifiers in display order.
func GiftItems() []string { return append([]string(nil), giftOrder...) }

// IsFood reports whether name is one of the food identifiers.
func IsFood(name string) bool { return contains(foodOrder, name) }

// IsGift reports whether name is one of the gift identifiers.
func IsGift(name string) bool { return contains(giftOrder, name) }

func contains(list []string, name string) bool {
	for _, v := range list {
		if v == name {
			return true
		}
	}
	return false
}

// Inventory maps item identifiers to counts, split by category.
type Inventory struct {
	FoodItems map[string]int `json:"foodItems"`
	GiftItems map[string]int `json:"giftItems"`
}

// New returns an inventory with every item at zero.
func New() *Inventory {
	inv := &Inventory{
		FoodItems: make(map[string]int, len(foodOrder)),
		GiftItems: make(map[string]int, len(giftOrder)),
	}
	for _, name := range foodOrder {
		inv.FoodItems[name] = 0
	}
	for _, name := range giftOrder {
		inv.GiftItems[name] = 0
	}
	return inv
}

// bucket returns the category map that holds name.
func (inv *Inventory) bucket(name string) (map[string]int, error) {
	switch {
	case IsFood(name):
		return inv.FoodItems, nil
	case IsGift(name):
		return inv.GiftItems, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownItem, name)
	}
}

// Add increases the count of name by qty.
func (inv *Inventory) Add(name string, qty int) error {
	b, err := inv.bucket(name)
	if err != nil {
		return err
	}
	if qty < 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidQuantity, qty)
	}
	b[name] += qty
	return nil
}

// Use consumes qty units of name. It fails without changing anything when
// fewer than qty units are available.
func (inv *Inventory) Use(name string, qty int) error {
	b, err := inv.bucket(name)
	if err != nil {
		return err
	}
	if qty < 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidQuantity, qty)
	}
	if b[name] < qty {
		return fmt.Errorf("%w: want %d %s, have %d", ErrInsufficientQuantity, qty, name, b[name])
	}
	b[name] -= qty
	return nil
}

// Quantity returns the current count of name.
func (inv *Inventory) Quantity(name string) (int, error) {
	b, err := inv.bucket(name)
	if err != nil {
		return 0, err
	}
	return b[name], nil
}

// TotalFood sums all food counts.
func (inv *Inventory) TotalFood() int { return sum(inv.FoodItems) }

// TotalGifts sums all gift counts.
func (inv *Inventory) TotalGifts() int { return sum(inv.GiftItems) }

func sum(m map[string]int) int {
	total := 0
	for _, v := range m {
		total += v
	}
	return total
}

// Snapshot returns a flat copy of all six counts.
func (inv *Inventory) Snapshot() map[string]int {
	out := make(map[string]int, len(foodOrder)+len(giftOrder))
	for _, name := range foodOrder {
		out[name] = inv.FoodItems[name]
	}
	for _, name := range giftOrder {
		out[name] = inv.GiftItems[name]
	}
	return out
}

// Clone returns a deep copy.
func (inv *Inventory) Clone() *Inventory {
	out := New()
	for _, name := range foodOrder {
		out.FoodItems[name] = inv.FoodItems[name]
	}
	for _, name := range giftOrder {
		out.GiftItems[name] = inv.GiftItems[name]
	}
	return out
}

// UnmarshalJSON accepts partial or stale maps: known items missing from the
// document start at zero, unknown keys are dropped and negative counts are
// clamped to zero.
func (inv *Inventory) UnmarshalJSON(data []byte) error {
	var raw struct {
		FoodItems map[string]int `json:"foodItems"`
		GiftItems map[string]int `json:"giftItems"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	fresh := New()
	for _, name := range foodOrder {
		fresh.FoodItems[name] = max(raw.FoodItems[name], 0)
	}
	for _, name := range giftOrder {
		fresh.GiftItems[name] = max(raw.GiftItems[name], 0)
	}
	*inv = *fresh
	return nil
}
