package session

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"pocketpet/internal/game"
	"pocketpet/internal/inventory"
	"pocketpet/internal/pet"
	"pocketpet/internal/save"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// mockTimeNow replaces TimeNow with a manually advanced clock
func mockTimeNow(t *testing.T) *fakeClock {
	t.Helper()
	c := &fakeClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	orig := TimeNow
	TimeNow = c.Now
	t.Cleanup(func() { TimeNow = orig })
	return c
}

// quietConfig never ticks on its own within a test
func quietConfig() Config {
	cfg := DefaultConfig()
	cfg.DecayInterval = time.Hour
	cfg.SleepInterval = time.Hour
	return cfg
}

func newSession(t *testing.T, cfg Config, setup func(g *game.GameState)) *Session {
	t.Helper()
	g, err := game.New(1, "Ada")
	require.NoError(t, err)
	if setup != nil {
		setup(g)
	}
	s := New(g, pet.DefaultRegistry(), cfg, zap.NewNop())
	t.Cleanup(s.Close)
	return s
}

func withPet(archetype pet.Archetype, adjust func(p *pet.Pet)) func(g *game.GameState) {
	return func(g *game.GameState) {
		p, _ := g.Player.AdoptPet("Rex", archetype)
		if adjust != nil {
			adjust(p)
		}
	}
}

func snap(t *testing.T, s *Session) Snapshot {
	t.Helper()
	sn, err := s.Snapshot(context.Background())
	require.NoError(t, err)
	return sn
}

func TestBeginStartsDecayForNamedPet(t *testing.T) {
	cfg := quietConfig()
	cfg.DecayInterval = 5 * time.Millisecond
	s := newSession(t, cfg, withPet(pet.ArchetypeAsh, nil))
	ctx := context.Background()

	require.NoError(t, s.Begin(ctx))
	assert.True(t, snap(t, s).DecayRunning)

	require.Eventually(t, func() bool {
		sn := snap(t, s)
		return sn.Pet.Happiness < pet.MaxStat && sn.Pet.Sleep < pet.MaxStat
	}, 2*time.Second, 5*time.Millisecond)

	require.NoError(t, s.StopDecay(ctx))
	frozen := snap(t, s).Pet
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, *frozen, *snap(t, s).Pet)
	assert.False(t, snap(t, s).DecayRunning)
}

func TestDecayWaitsForAdoption(t *testing.T) {
	s := newSession(t, quietConfig(), nil)
	ctx := context.Background()

	require.NoError(t, s.Begin(ctx))
	sn := snap(t, s)
	assert.False(t, sn.DecayRunning)
	assert.False(t, sn.HasPet())
	assert.ErrorIs(t, s.StartDecay(ctx), game.ErrNoPet)

	require.NoError(t, s.AdoptPet(ctx, "Rex", pet.ArchetypeGunchi))
	sn = snap(t, s)
	assert.True(t, sn.DecayRunning)
	assert.Equal(t, "Rex", sn.Pet.Name)

	assert.ErrorIs(t, s.AdoptPet(ctx, "Max", pet.ArchetypeAsh), game.ErrPetExists)
}

func TestDeadPetDoesNotRestartDecay(t *testing.T) {
	ctx := context.Background()
	s := newSession(t, quietConfig(), withPet(pet.ArchetypeAsh, func(p *pet.Pet) { p.Health = 0 }))
	require.NoError(t, s.Begin(ctx))
	assert.False(t, snap(t, s).DecayRunning)

	assert.ErrorIs(t, s.StartDecay(ctx), pet.ErrPetDead)
	assert.False(t, snap(t, s).DecayRunning)
}

func TestInteractPublishesAndScores(t *testing.T) {
	s := newSession(t, quietConfig(), withPet(pet.ArchetypePatch, func(p *pet.Pet) { p.Fullness = 0 }))
	ctx := context.Background()

	_, err := s.RewardClick(ctx, inventory.Meat)
	require.NoError(t, err)
	for i := 0; i < 4; i++ {
		_, err = s.RewardClick(ctx, inventory.Meat)
		require.NoError(t, err)
	}

	require.NoError(t, s.Interact(ctx, pet.InteractFeed, inventory.Meat))

	var last Snapshot
	select {
	case last = <-s.Updates():
	case <-time.After(time.Second):
		t.Fatal("no update published")
	}
	assert.Equal(t, 15, last.Pet.Fullness)
	assert.Equal(t, pet.StateNormal, last.State)
	assert.Equal(t, 1, last.Score)
	assert.Equal(t, 0, last.Inventory[inventory.Meat])

	err = s.Interact(ctx, pet.InteractFeed, inventory.Meat)
	assert.ErrorIs(t, err, inventory.ErrInsufficientQuantity)
	assert.Equal(t, 1, snap(t, s).Score)
}

func TestCooldown(t *testing.T) {
	clock := mockTimeNow(t)
	s := newSession(t, quietConfig(), withPet(pet.ArchetypePatch, nil))
	ctx := context.Background()

	require.NoError(t, s.Interact(ctx, pet.InteractPlay, ""))
	assert.ErrorIs(t, s.Interact(ctx, pet.InteractPlay, ""), ErrCooldown)
	require.NoError(t, s.Interact(ctx, pet.InteractVet, ""), "cooldowns are per interaction")
	require.NoError(t, s.Interact(ctx, pet.InteractExercise, ""))
	require.NoError(t, s.Interact(ctx, pet.InteractExercise, ""), "exercise has no cooldown")

	clock.Advance(9 * time.Second)
	assert.ErrorIs(t, s.Interact(ctx, pet.InteractPlay, ""), ErrCooldown)
	clock.Advance(time.Second)
	assert.NoError(t, s.Interact(ctx, pet.InteractPlay, ""))
}

func TestSleepRamp(t *testing.T) {
	cfg := quietConfig()
	cfg.SleepInterval = 5 * time.Millisecond
	s := newSession(t, cfg, withPet(pet.ArchetypePatch, func(p *pet.Pet) { p.Sleep = 40 }))
	ctx := context.Background()

	start := time.Now()
	require.NoError(t, s.Interact(ctx, pet.InteractSleep, ""))
	assert.Less(t, time.Since(start), time.Second, "GoToSleep must not block")

	require.Eventually(t, func() bool { return !snap(t, s).Resting }, 2*time.Second, 2*time.Millisecond)
	sn := snap(t, s)
	assert.Equal(t, pet.MaxStat, sn.Pet.Sleep)
	assert.Equal(t, pet.StateNormal, sn.State)
	assert.Equal(t, 1, sn.Score)
}

func TestRestingBlocksOtherInteractions(t *testing.T) {
	s := newSession(t, quietConfig(), withPet(pet.ArchetypePatch, func(p *pet.Pet) { p.Sleep = 0 }))
	ctx := context.Background()

	assert.ErrorIs(t, s.Interact(ctx, pet.InteractPlay, ""), pet.ErrPetSleeping)

	require.NoError(t, s.GoToSleep(ctx))
	require.NoError(t, s.GoToSleep(ctx), "second call while resting is a no-op")
	sn := snap(t, s)
	assert.True(t, sn.Resting)
	assert.Equal(t, pet.StateSleeping, sn.State)
	assert.ErrorIs(t, s.Interact(ctx, pet.InteractVet, ""), ErrResting)

	require.NoError(t, s.WakeUp(ctx))
	assert.False(t, snap(t, s).Resting)
	assert.Equal(t, 0, snap(t, s).Pet.Sleep)
}

func TestGoToSleepGate(t *testing.T) {
	ctx := context.Background()

	angry := newSession(t, quietConfig(), withPet(pet.ArchetypeAsh, func(p *pet.Pet) { p.Happiness = 10; p.Sleep = 50 }))
	assert.ErrorIs(t, angry.GoToSleep(ctx), pet.ErrPetAngry)

	full := newSession(t, quietConfig(), withPet(pet.ArchetypeAsh, nil))
	require.NoError(t, full.GoToSleep(ctx))
	assert.False(t, snap(t, full).Resting)

	none := newSession(t, quietConfig(), nil)
	assert.ErrorIs(t, none.GoToSleep(ctx), game.ErrNoPet)
}

func TestPetDeathStopsDecay(t *testing.T) {
	cfg := quietConfig()
	cfg.DecayInterval = 5 * time.Millisecond
	s := newSession(t, cfg, withPet(pet.ArchetypePatch, func(p *pet.Pet) {
		p.Health, p.Sleep, p.Fullness = 5, 0, 50
	}))
	ctx := context.Background()
	require.NoError(t, s.Begin(ctx))

	require.Eventually(t, func() bool { return snap(t, s).State == pet.StateDead }, 2*time.Second, 5*time.Millisecond)
	sn := snap(t, s)
	assert.False(t, sn.DecayRunning)
	assert.Equal(t, 0, sn.Pet.Fullness)
	assert.ErrorIs(t, s.Interact(ctx, pet.InteractVet, ""), pet.ErrPetDead)
}

func TestRewardClicks(t *testing.T) {
	clock := mockTimeNow(t)
	s := newSession(t, quietConfig(), nil)
	ctx := context.Background()

	total := 0
	for i := 0; i < 7; i++ {
		n, err := s.RewardClick(ctx, inventory.Ball)
		require.NoError(t, err)
		total += n
		clock.Advance(500 * time.Millisecond)
	}
	assert.Equal(t, 1, total)
	sn := snap(t, s)
	assert.Equal(t, 1, sn.Inventory[inventory.Ball])
	assert.Equal(t, 2, sn.RewardClicks[inventory.Ball], "remainder carries over")

	clock.Advance(6 * time.Second)
	assert.Empty(t, snap(t, s).RewardClicks, "expired burst is not shown")
	for i := 0; i < 4; i++ {
		n, err := s.RewardClick(ctx, inventory.Ball)
		require.NoError(t, err)
		assert.Zero(t, n, "a new burst starts from zero")
	}

	require.NoError(t, s.CloseRewards(ctx))
	n, err := s.RewardClick(ctx, inventory.Ball)
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = s.RewardClick(ctx, "cake")
	assert.ErrorIs(t, err, inventory.ErrUnknownItem)
}

func TestSave(t *testing.T) {
	gw, err := save.NewFileGateway(filepath.Join(t.TempDir(), "saves"), zap.NewNop())
	require.NoError(t, err)
	s := newSession(t, quietConfig(), withPet(pet.ArchetypeGunchi, func(p *pet.Pet) { p.Happiness = 77 }))
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, gw))
	loaded, err := gw.Load(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 77, loaded.Pet().Happiness)
	assert.Equal(t, "Ada", loaded.Player.Name)
}

func TestStateIsACopy(t *testing.T) {
	s := newSession(t, quietConfig(), withPet(pet.ArchetypeGunchi, nil))
	st, err := s.State(context.Background())
	require.NoError(t, err)
	st.Pet().Health = 1
	assert.Equal(t, pet.MaxStat, snap(t, s).Pet.Health)
}

func TestCloseIsIdempotent(t *testing.T) {
	cfg := quietConfig()
	cfg.DecayInterval = time.Millisecond
	s := newSession(t, cfg, withPet(pet.ArchetypeAsh, nil))
	ctx := context.Background()
	require.NoError(t, s.Begin(ctx))

	s.Close()
	s.Close()

	assert.ErrorIs(t, s.Interact(ctx, pet.InteractPlay, ""), ErrClosed)
	_, err := s.Snapshot(ctx)
	assert.ErrorIs(t, err, ErrClosed)

	for range s.Updates() {
	}
}

func TestContextCancellation(t *testing.T) {
	s := newSession(t, quietConfig(), withPet(pet.ArchetypeAsh, nil))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, s.Interact(ctx, pet.InteractPlay, ""), context.Canceled)
}
