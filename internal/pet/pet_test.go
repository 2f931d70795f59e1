package pet

import (
	"encoding/json"
	"errors"
	"testing"

	"pocketpet/internal/inventory"

	"pgregory.net/rapid"
)

// mockRandIntn pins RandIntn to a fixed value for the duration of the test
func mockRandIntn(t *testing.T, v int) {
	t.Helper()
	orig := RandIntn
	RandIntn = func(n int) int {
		if v >= n {
			return n - 1
		}
		return v
	}
	t.Cleanup(func() { RandIntn = orig })
}

func vitals(health, sleep, fullness, happiness int) *Pet {
	return &Pet{Name: "Tester", Type: ArchetypeAsh, Health: health, Sleep: sleep, Fullness: fullness, Happiness: happiness}
}

func TestNewPetIsFull(t *testing.T) {
	p := New("Rex", ArchetypePatch)
	if p.Health != MaxStat || p.Sleep != MaxStat || p.Fullness != MaxStat || p.Happiness != MaxStat {
		t.Errorf("New() vitals = %v, want all %d", p, MaxStat)
	}
	if got := p.MainState(); got != StateNormal {
		t.Errorf("MainState() = %s, want normal", got)
	}
	if len(p.States()) != 0 {
		t.Errorf("States() = %v, want none", p.States())
	}
}

func TestMainStatePrecedence(t *testing.T) {
	tests := []struct {
		name string
		pet  *Pet
		want State
	}{
		{"normal", vitals(100, 100, 100, 100), StateNormal},
		{"angry at threshold", vitals(100, 100, 100, AngryThreshold), StateAngry},
		{"just above angry", vitals(100, 100, 100, AngryThreshold+1), StateNormal},
		{"hungry beats angry", vitals(100, 100, 0, 10), StateHungry},
		{"sleeping beats hungry", vitals(100, 0, 0, 10), StateSleeping},
		{"dead beats everything", vitals(0, 0, 0, 0), StateDead},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.pet.MainState(); got != tt.want {
				t.Errorf("MainState() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestStatesListsEveryFlag(t *testing.T) {
	p := vitals(50, 0, 0, 20)
	got := p.States()
	want := []State{StateSleeping, StateHungry, StateAngry}
	if len(got) != len(want) {
		t.Fatalf("States() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("States()[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestAdjustStatsArchetypeDecay(t *testing.T) {
	reg := DefaultRegistry()
	p := New("Ash", ArchetypeAsh)

	p.AdjustStats(reg.Decay(ArchetypeAsh))

	if p.Sleep != 99 || p.Fullness != 98 || p.Happiness != 94 || p.Health != 100 {
		t.Errorf("after one tick: %v, want sleep=99 fullness=98 happiness=94 health=100", p)
	}
	if got := p.MainState(); got != StateNormal {
		t.Errorf("MainState() = %s, want normal", got)
	}
}

func TestAdjustStatsPenalties(t *testing.T) {
	tests := []struct {
		name  string
		pet   *Pet
		decay Decay
		want  Pet
	}{
		{
			name:  "sleep runs out",
			pet:   vitals(100, 2, 100, 100),
			decay: FixedDecay{Sleep: 5, Fullness: 1, Happiness: 3},
			want:  Pet{Health: 95, Sleep: 0, Fullness: 99, Happiness: 97},
		},
		{
			name:  "fullness runs out",
			pet:   vitals(100, 100, 1, 100),
			decay: FixedDecay{Sleep: 2, Fullness: 4, Happiness: 3},
			want:  Pet{Health: 95, Sleep: 98, Fullness: 0, Happiness: 92},
		},
		{
			name:  "both empty",
			pet:   vitals(40, 0, 0, 60),
			decay: FixedDecay{},
			want:  Pet{Health: 30, Sleep: 0, Fullness: 0, Happiness: 55},
		},
		{
			name:  "death zeroes vitals",
			pet:   vitals(5, 0, 30, 80),
			decay: FixedDecay{Sleep: 1, Fullness: 1, Happiness: 1},
			want:  Pet{Health: 0, Sleep: 0, Fullness: 0, Happiness: 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.pet.AdjustStats(tt.decay)
			got := *tt.pet
			if got.Health != tt.want.Health || got.Sleep != tt.want.Sleep ||
				got.Fullness != tt.want.Fullness || got.Happiness != tt.want.Happiness {
				t.Errorf("got %v, want health=%d sleep=%d fullness=%d happiness=%d",
					got, tt.want.Health, tt.want.Sleep, tt.want.Fullness, tt.want.Happiness)
			}
		})
	}
}

func TestAdjustStatsDeadPetIsInert(t *testing.T) {
	p := vitals(0, 0, 0, 0)
	p.AdjustStats(FixedDecay{Sleep: 5, Fullness: 5, Happiness: 5})
	if p.Health != 0 || p.MainState() != StateDead {
		t.Errorf("dead pet changed: %v", p)
	}
}

func TestRandomDecayUsesRandIntn(t *testing.T) {
	mockRandIntn(t, 3)
	s, f, h := RandomDecay{Max: 5}.Decrements()
	if s != 3 || f != 3 || h != 3 {
		t.Errorf("Decrements() = %d/%d/%d, want 3/3/3", s, f, h)
	}

	var bound int
	RandIntn = func(n int) int { bound = n; return 0 }
	RandomDecay{Max: 5}.Decrements()
	if bound != 6 {
		t.Errorf("RandIntn bound = %d, want 6 so that 5 is reachable", bound)
	}
}

func TestFeedHungryPet(t *testing.T) {
	p := vitals(100, 100, 0, 80)
	inv := inventory.New()
	_ = inv.Add(inventory.Meat, 1)

	if got := p.MainState(); got != StateHungry {
		t.Fatalf("precondition: MainState() = %s, want hungry", got)
	}
	if err := p.Feed(inventory.Meat, inv); err != nil {
		t.Fatalf("Feed: %v", err)
	}
	if p.Fullness != 15 {
		t.Errorf("Fullness = %d, want 15", p.Fullness)
	}
	if got, _ := inv.Quantity(inventory.Meat); got != 0 {
		t.Errorf("meat left = %d, want 0", got)
	}
	if got := p.MainState(); got != StateNormal {
		t.Errorf("MainState() = %s, want normal", got)
	}
}

func TestFeedAndGiftAreAllOrNothing(t *testing.T) {
	tests := []struct {
		name    string
		run     func(p *Pet, inv *inventory.Inventory) error
		wantErr error
	}{
		{"feed a gift", func(p *Pet, inv *inventory.Inventory) error { return p.Feed(inventory.Toy, inv) }, ErrInvalidItem},
		{"gift a food", func(p *Pet, inv *inventory.Inventory) error { return p.Gift(inventory.Fruit, inv) }, ErrInvalidItem},
		{"feed unknown", func(p *Pet, inv *inventory.Inventory) error { return p.Feed("cake", inv) }, ErrInvalidItem},
		{"feed without stock", func(p *Pet, inv *inventory.Inventory) error { return p.Feed(inventory.Meat, inv) }, inventory.ErrInsufficientQuantity},
		{"gift without stock", func(p *Pet, inv *inventory.Inventory) error { return p.Gift(inventory.Ball, inv) }, inventory.ErrInsufficientQuantity},
		{"feed without inventory", func(p *Pet, _ *inventory.Inventory) error { return p.Feed(inventory.Meat, nil) }, ErrInvalidItem},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := vitals(90, 90, 60, 70)
			before := *p
			inv := inventory.New()
			_ = inv.Add(inventory.Toy, 1)
			_ = inv.Add(inventory.Fruit, 1)

			if err := tt.run(p, inv); !errors.Is(err, tt.wantErr) {
				t.Fatalf("error = %v, want %v", err, tt.wantErr)
			}
			if *p != before {
				t.Errorf("pet changed on failure: %v -> %v", before, *p)
			}
			if inv.TotalFood() != 1 || inv.TotalGifts() != 1 {
				t.Errorf("inventory changed on failure: %v", inv.Snapshot())
			}
		})
	}
}

func TestInteractionEffects(t *testing.T) {
	tests := []struct {
		name string
		run  func(p *Pet) error
		want Pet
	}{
		{"play", (*Pet).Play, Pet{Health: 60, Sleep: 60, Fullness: 60, Happiness: 75}},
		{"exercise", (*Pet).Exercise, Pet{Health: 65, Sleep: 55, Fullness: 55, Happiness: 60}},
		{"vet", (*Pet).TakeToVet, Pet{Health: 75, Sleep: 60, Fullness: 60, Happiness: 60}},
		{"sleep", func(p *Pet) error { return p.Interact(InteractSleep, "", nil) }, Pet{Health: 60, Sleep: 85, Fullness: 60, Happiness: 60}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := vitals(60, 60, 60, 60)
			if err := tt.run(p); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if p.Health != tt.want.Health || p.Sleep != tt.want.Sleep ||
				p.Fullness != tt.want.Fullness || p.Happiness != tt.want.Happiness {
				t.Errorf("got %v, want %+v", p, tt.want)
			}
		})
	}
}

func TestInteractionsClampAtMax(t *testing.T) {
	p := vitals(95, 100, 95, 95)
	inv := inventory.New()
	_ = inv.Add(inventory.Meat, 1)
	_ = inv.Add(inventory.PlayPlace, 1)

	_ = p.TakeToVet()
	_ = p.Feed(inventory.Meat, inv)
	_ = p.Gift(inventory.PlayPlace, inv)
	if p.Health != MaxStat || p.Fullness != MaxStat || p.Happiness != MaxStat {
		t.Errorf("vitals exceeded max: %v", p)
	}
}

func TestCanInteractGate(t *testing.T) {
	all := []Interaction{InteractFeed, InteractGift, InteractPlay, InteractExercise, InteractSleep, InteractVet}
	tests := []struct {
		name    string
		pet     *Pet
		allowed map[Interaction]bool
		wantErr error
	}{
		{"dead", vitals(0, 0, 0, 0), map[Interaction]bool{}, ErrPetDead},
		{"sleeping", vitals(80, 0, 80, 80), map[Interaction]bool{InteractSleep: true}, ErrPetSleeping},
		{"angry", vitals(80, 80, 80, 30), map[Interaction]bool{InteractPlay: true, InteractGift: true}, ErrPetAngry},
		{"hungry", vitals(80, 80, 0, 80), map[Interaction]bool{
			InteractFeed: true, InteractGift: true, InteractPlay: true, InteractExercise: true, InteractSleep: true, InteractVet: true,
		}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, kind := range all {
				err := tt.pet.CanInteract(kind)
				if tt.allowed[kind] {
					if err != nil {
						t.Errorf("CanInteract(%s) = %v, want nil", kind, err)
					}
					continue
				}
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("CanInteract(%s) = %v, want %v", kind, err, tt.wantErr)
				}
			}
		})
	}
}

func TestUnknownInteraction(t *testing.T) {
	p := New("Rex", ArchetypePatch)
	if err := p.Interact("dance", "", nil); !errors.Is(err, ErrInvalidInteraction) {
		t.Errorf("Interact(dance) = %v, want ErrInvalidInteraction", err)
	}
}

func TestParseInteraction(t *testing.T) {
	tests := []struct {
		in   string
		want Interaction
	}{
		{"feed", InteractFeed},
		{"Give gift", InteractGift},
		{" PLAY ", InteractPlay},
		{"go to bed", InteractSleep},
		{"Take to the vet", InteractVet},
	}
	for _, tt := range tests {
		got, err := ParseInteraction(tt.in)
		if err != nil || got != tt.want {
			t.Errorf("ParseInteraction(%q) = %q, %v; want %q", tt.in, got, err, tt.want)
		}
	}
	if _, err := ParseInteraction("juggle"); !errors.Is(err, ErrInvalidInteraction) {
		t.Errorf("ParseInteraction(juggle) error = %v", err)
	}
}

func TestRestStep(t *testing.T) {
	p := vitals(100, 40, 100, 100)
	steps := 0
	for !p.RestStep(DefaultSleepIncrement) {
		steps++
		if steps > 10 {
			t.Fatal("RestStep never reported full")
		}
	}
	if p.Sleep != MaxStat {
		t.Errorf("Sleep = %d, want %d", p.Sleep, MaxStat)
	}
	if steps != 2 {
		t.Errorf("took %d partial steps, want 2 (40 -> 65 -> 90 -> 100)", steps)
	}
}

func TestRevive(t *testing.T) {
	p := vitals(0, 0, 0, 0)
	p.Revive()
	if p.MainState() != StateNormal || p.Health != MaxStat || p.Happiness != MaxStat {
		t.Errorf("after Revive: %v", p)
	}
}

func TestJSONWritesDerivedStatesAndIgnoresThemOnRead(t *testing.T) {
	p := vitals(70, 0, 40, 20)
	data, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("Unmarshal raw: %v", err)
	}
	states, _ := raw["currentPetStates"].([]any)
	if len(states) != 2 || states[0] != "sleeping" || states[1] != "angry" {
		t.Errorf("currentPetStates = %v, want [sleeping angry]", raw["currentPetStates"])
	}
	if raw["petType"] != float64(ArchetypeAsh) {
		t.Errorf("petType = %v, want %d", raw["petType"], ArchetypeAsh)
	}

	stale := `{"name":"Old","health":150,"sleep":-4,"fullness":50,"happiness":80,"currentPetStates":["dead"],"petType":2}`
	var loaded Pet
	if err := json.Unmarshal([]byte(stale), &loaded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if loaded.Health != MaxStat || loaded.Sleep != 0 || loaded.Type != ArchetypeGunchi {
		t.Errorf("loaded = %v, want clamped vitals and Gunchi", loaded)
	}
	if got := loaded.MainState(); got != StateSleeping {
		t.Errorf("MainState() = %s, want sleeping (stored flags ignored)", got)
	}
}

func TestStatusLabels(t *testing.T) {
	tests := []struct {
		pet  *Pet
		want string
	}{
		{vitals(100, 100, 100, 100), StatusEmojiNormal + " Happy"},
		{vitals(0, 0, 0, 0), StatusEmojiDead + " Dead"},
		{vitals(100, 100, 100, 40), StatusEmojiAngry + " Angry"},
		{vitals(100, 100, 10, 90), StatusEmojiNormal + "🍽️ Needs care"},
	}
	for _, tt := range tests {
		if got := GetStatusWithLabel(*tt.pet); got != tt.want {
			t.Errorf("GetStatusWithLabel(%v) = %q, want %q", tt.pet, got, tt.want)
		}
	}
}

func TestPropertyVitalsStayBounded(t *testing.T) {
	reg := DefaultRegistry()
	kinds := []Interaction{InteractFeed, InteractGift, InteractPlay, InteractExercise, InteractSleep, InteractVet}
	items := append(inventory.FoodItems(), inventory.GiftItems()...)

	rapid.Check(t, func(t *rapid.T) {
		p := New("Prop", Archetype(rapid.IntRange(0, 3).Draw(t, "archetype")))
		inv := inventory.New()
		for _, name := range items {
			_ = inv.Add(name, rapid.IntRange(1, 3).Draw(t, "stock"))
		}
		steps := rapid.IntRange(1, 200).Draw(t, "steps")
		for i := 0; i < steps; i++ {
			if rapid.Bool().Draw(t, "decay") {
				p.AdjustStats(reg.Decay(p.Type))
			} else {
				kind := rapid.SampledFrom(kinds).Draw(t, "kind")
				item := rapid.SampledFrom(items).Draw(t, "item")
				_ = p.Interact(kind, item, inv)
			}
			for _, v := range []int{p.Health, p.Sleep, p.Fullness, p.Happiness} {
				if v < MinStat || v > MaxStat {
					t.Fatalf("vital out of range: %v", p)
				}
			}
			if p.Dead() && (p.Sleep != 0 || p.Fullness != 0 || p.Happiness != 0) {
				t.Fatalf("dead pet with non-zero vitals: %v", p)
			}
		}
	})
}
