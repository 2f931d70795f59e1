package inventory

import (
	"encoding/json"
	"errors"
	"testing"

	"pgregory.net/rapid"
)

func TestNewInventoryIsEmpty(t *testing.T) {
	inv := New()
	for _, name := range append(FoodItems(), GiftItems()...) {
		got, err := inv.Quantity(name)
		if err != nil {
			t.Fatalf("Quantity(%q) error: %v", name, err)
		}
		if got != 0 {
			t.Errorf("Quantity(%q) = %d, want 0", name, got)
		}
	}
	if inv.TotalFood() != 0 || inv.TotalGifts() != 0 {
		t.Errorf("totals = %d/%d, want 0/0", inv.TotalFood(), inv.TotalGifts())
	}
}

func TestAddUseMeatScenario(t *testing.T) {
	inv := New()

	if err := inv.Add(Meat, 3); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if got, _ := inv.Quantity(Meat); got != 3 {
		t.Fatalf("after add: meat = %d, want 3", got)
	}

	if err := inv.Use(Meat, 1); err != nil {
		t.Fatalf("Use(1): %v", err)
	}
	if got, _ := inv.Quantity(Meat); got != 2 {
		t.Fatalf("after use: meat = %d, want 2", got)
	}

	err := inv.Use(Meat, 5)
	if !errors.Is(err, ErrInsufficientQuantity) {
		t.Fatalf("Use(5) error = %v, want ErrInsufficientQuantity", err)
	}
	if got, _ := inv.Quantity(Meat); got != 2 {
		t.Errorf("after failed use: meat = %d, want 2", got)
	}
}

func TestErrors(t *testing.T) {
	tests := []struct {
		name    string
		run     func(inv *Inventory) error
		wantErr error
	}{
		{"add unknown", func(inv *Inventory) error { return inv.Add("candy", 1) }, ErrUnknownItem},
		{"use unknown", func(inv *Inventory) error { return inv.Use("candy", 1) }, ErrUnknownItem},
		{"quantity unknown", func(inv *Inventory) error { _, err := inv.Quantity("candy"); return err }, ErrUnknownItem},
		{"use empty", func(inv *Inventory) error { return inv.Use(Toy, 1) }, ErrInsufficientQuantity},
		{"add zero", func(inv *Inventory) error { return inv.Add(Toy, 0) }, ErrInvalidQuantity},
		{"use negative", func(inv *Inventory) error { return inv.Use(Toy, -2) }, ErrInvalidQuantity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv := New()
			if err := tt.run(inv); !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
			if inv.TotalFood() != 0 || inv.TotalGifts() != 0 {
				t.Error("failed operation changed the inventory")
			}
		})
	}
}

func TestTotalsByCategory(t *testing.T) {
	inv := New()
	_ = inv.Add(Vegetable, 2)
	_ = inv.Add(Fruit, 1)
	_ = inv.Add(PlayPlace, 4)

	if got := inv.TotalFood(); got != 3 {
		t.Errorf("TotalFood = %d, want 3", got)
	}
	if got := inv.TotalGifts(); got != 4 {
		t.Errorf("TotalGifts = %d, want 4", got)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	inv := New()
	_ = inv.Add(Ball, 2)
	c := inv.Clone()
	_ = c.Use(Ball, 2)

	if got, _ := inv.Quantity(Ball); got != 2 {
		t.Errorf("original ball = %d, want 2", got)
	}
}

func TestUnmarshalNormalizes(t *testing.T) {
	doc := `{"foodItems":{"meat":4,"candy":9,"fruit":-3},"giftItems":{"toy":1}}`
	var inv Inventory
	if err := json.Unmarshal([]byte(doc), &inv); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	want := map[string]int{Vegetable: 0, Fruit: 0, Meat: 4, Toy: 1, Ball: 0, PlayPlace: 0}
	got := inv.Snapshot()
	for k, v := range want {
		if got[k] != v {
			t.Errorf("%s = %d, want %d", k, got[k], v)
		}
	}
	if _, ok := inv.FoodItems["candy"]; ok {
		t.Error("unknown key survived decoding")
	}
}

func TestPropertyUseNeverUnderflows(t *testing.T) {
	names := append(FoodItems(), GiftItems()...)
	rapid.Check(t, func(t *rapid.T) {
		inv := New()
		steps := rapid.IntRange(1, 50).Draw(t, "steps")
		for i := 0; i < steps; i++ {
			name := rapid.SampledFrom(names).Draw(t, "item")
			qty := rapid.IntRange(1, 6).Draw(t, "qty")
			before, _ := inv.Quantity(name)
			if rapid.Bool().Draw(t, "add") {
				if err := inv.Add(name, qty); err != nil {
					t.Fatalf("Add: %v", err)
				}
				continue
			}
			err := inv.Use(name, qty)
			after, _ := inv.Quantity(name)
			if before < qty {
				if !errors.Is(err, ErrInsufficientQuantity) {
					t.Fatalf("Use(%d) with %d available: err = %v", qty, before, err)
				}
				if after != before {
					t.Fatalf("failed Use changed count %d -> %d", before, after)
				}
			} else if after != before-qty {
				t.Fatalf("Use(%d): %d -> %d", qty, before, after)
			}
			if after < 0 {
				t.Fatalf("negative count %d for %s", after, name)
			}
		}
	})
}
