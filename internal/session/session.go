// Package session runs one gameplay session: it owns a game state on a
// single goroutine and drives stat decay, the sleep ramp, interaction
// cooldowns and the reward mini-game against it.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"pocketpet/internal/config"
	"pocketpet/internal/game"
	"pocketpet/internal/inventory"
	"pocketpet/internal/pet"
	"pocketpet/internal/save"
)

// TimeNow is used for cooldowns and reward windows and can be replaced in tests.
var TimeNow = time.Now

var (
	ErrClosed   = errors.New("session closed")
	ErrResting  = errors.New("pet is resting")
	ErrCooldown = errors.New("interaction is cooling down")
)

// Config holds the session cadence.
type Config struct {
	DecayInterval  time.Duration
	SleepInterval  time.Duration
	SleepIncrement int
	Cooldown       time.Duration
	RewardClicks   int
	RewardWindow   time.Duration
}

// DefaultConfig returns the standard game cadence.
func DefaultConfig() Config {
	return Config{
		DecayInterval:  5 * time.Second,
		SleepInterval:  time.Second,
		SleepIncrement: pet.DefaultSleepIncrement,
		Cooldown:       10 * time.Second,
		RewardClicks:   5,
		RewardWindow:   5 * time.Second,
	}
}

// ConfigFrom maps the game section of the application config.
func ConfigFrom(c config.GameConfig) Config {
	return Config{
		DecayInterval:  c.DecayInterval,
		SleepInterval:  c.SleepInterval,
		SleepIncrement: c.SleepIncrement,
		Cooldown:       c.InteractionCooldown,
		RewardClicks:   c.RewardClicks,
		RewardWindow:   c.RewardWindow,
	}
}

// cooled lists the interactions subject to the cooldown.
var cooled = map[pet.Interaction]bool{
	pet.InteractPlay: true,
	pet.InteractVet:  true,
}

// Snapshot is an immutable view of the session published to observers.
type Snapshot struct {
	SessionID    string
	Slot         int
	PlayerName   string
	Score        int
	Pet          *pet.Pet // nil until a pet is adopted
	State        pet.State
	Resting      bool
	Warning      bool
	Inventory    map[string]int
	RewardClicks map[string]int
	DecayRunning bool
	At           time.Time
}

// HasPet reports whether the snapshot carries an adopted pet.
func (s Snapshot) HasPet() bool { return s.Pet != nil }

type request struct {
	fn    func() error
	reply chan error
}

type burst struct {
	clicks   int
	deadline time.Time
}

// Session owns a game state. All mutation happens on the run goroutine;
// exported methods submit work to it and wait for the result.
type Session struct {
	id       string
	cfg      Config
	registry *pet.Registry
	logger   *zap.Logger

	reqs    chan request
	updates chan Snapshot
	quit    chan struct{}
	stopped chan struct{}
	once    sync.Once

	// owned by run
	state    *game.GameState
	decay    pet.Decay
	decayT   *time.Ticker
	rampT    *time.Ticker
	lastUsed map[pet.Interaction]time.Time
	bursts   map[string]*burst
}

// New starts a session over state. The caller must not touch state afterwards.
func New(state *game.GameState, registry *pet.Registry, cfg Config, logger *zap.Logger) *Session {
	if registry == nil {
		registry = pet.DefaultRegistry()
	}
	if cfg.SleepIncrement < 1 {
		cfg.SleepIncrement = pet.DefaultSleepIncrement
	}
	if cfg.RewardClicks < 1 {
		cfg.RewardClicks = 1
	}
	state.Normalize()
	id := uuid.NewString()
	s := &Session{
		id:       id,
		cfg:      cfg,
		registry: registry,
		logger:   logger.With(zap.String("session", id), zap.Int("slot", state.SaveSlot)),
		reqs:     make(chan request),
		updates:  make(chan Snapshot, 1),
		quit:     make(chan struct{}),
		stopped:  make(chan struct{}),
		state:    state,
		lastUsed: make(map[pet.Interaction]time.Time),
		bursts:   make(map[string]*burst),
	}
	if p := state.Pet(); p != nil {
		s.decay = registry.Decay(p.Type)
	}
	go s.run()
	s.logger.Info("session started")
	return s
}

// ID returns the session's unique identifier.
func (s *Session) ID() string { return s.id }

// Updates delivers the latest snapshot after every change. Slow readers
// only ever see the most recent one. The channel is closed by Close.
func (s *Session) Updates() <-chan Snapshot { return s.updates }

func (s *Session) run() {
	defer close(s.stopped)
	for {
		var decayC, rampC <-chan time.Time
		if s.decayT != nil {
			decayC = s.decayT.C
		}
		if s.rampT != nil {
			rampC = s.rampT.C
		}

		select {
		case <-s.quit:
			s.stopDecay()
			s.stopRamp()
			s.bursts = map[string]*burst{}
			return
		case r := <-s.reqs:
			r.reply <- r.fn()
		case <-decayC:
			s.tickDecay()
		case <-rampC:
			s.stepRamp()
		}
	}
}

// do runs fn on the session goroutine.
func (s *Session) do(ctx context.Context, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r := request{fn: fn, reply: make(chan error, 1)}
	select {
	case s.reqs <- r:
	case <-s.quit:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-r.reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops every timer and the session goroutine. It is safe to call
// more than once.
func (s *Session) Close() {
	s.once.Do(func() {
		close(s.quit)
		<-s.stopped
		close(s.updates)
		s.logger.Info("session closed")
	})
}

// Begin starts decay when the loaded state already has a named pet and
// publishes the first snapshot.
func (s *Session) Begin(ctx context.Context) error {
	return s.do(ctx, func() error {
		if s.state.Player.HasPet() && !s.state.Pet().Dead() {
			s.startDecay()
		}
		s.publish()
		return nil
	})
}

// AdoptPet names the player's first pet and starts decay.
func (s *Session) AdoptPet(ctx context.Context, name string, archetype pet.Archetype) error {
	return s.do(ctx, func() error {
		p, err := s.state.Player.AdoptPet(name, archetype)
		if err != nil {
			return err
		}
		s.decay = s.registry.Decay(p.Type)
		s.logger.Info("pet adopted", zap.String("pet", p.Name), zap.String("archetype", s.registry.Name(p.Type)))
		s.startDecay()
		s.publish()
		return nil
	})
}

// Interact performs one interaction. Sleep starts the sleep ramp.
func (s *Session) Interact(ctx context.Context, kind pet.Interaction, item string) error {
	if kind == pet.InteractSleep {
		return s.GoToSleep(ctx)
	}
	return s.do(ctx, func() error {
		if s.rampT != nil {
			return ErrResting
		}
		now := TimeNow()
		if cooled[kind] {
			if last, ok := s.lastUsed[kind]; ok && now.Sub(last) < s.cfg.Cooldown {
				return fmt.Errorf("%w: %s ready in %s", ErrCooldown, kind,
					(s.cfg.Cooldown - now.Sub(last)).Round(time.Second))
			}
		}
		if err := s.state.Player.Interact(kind, item); err != nil {
			return err
		}
		if cooled[kind] {
			s.lastUsed[kind] = now
		}
		s.logger.Debug("interaction", zap.String("kind", string(kind)), zap.String("item", item),
			zap.Stringer("pet", s.state.Pet()))
		s.publish()
		return nil
	})
}

// GoToSleep starts raising sleep by the configured increment every sleep
// interval until it is full. It returns immediately.
func (s *Session) GoToSleep(ctx context.Context) error {
	return s.do(ctx, func() error {
		if !s.state.Player.HasPet() {
			return game.ErrNoPet
		}
		if s.rampT != nil {
			return nil
		}
		p := s.state.Pet()
		if err := p.CanInteract(pet.InteractSleep); err != nil {
			return err
		}
		if p.Sleep >= pet.MaxStat {
			return nil
		}
		s.state.Player.Score++
		s.rampT = time.NewTicker(s.cfg.SleepInterval)
		s.logger.Debug("sleep ramp started", zap.Int("sleep", p.Sleep))
		s.publish()
		return nil
	})
}

// WakeUp cancels a running sleep ramp.
func (s *Session) WakeUp(ctx context.Context) error {
	return s.do(ctx, func() error {
		if s.rampT != nil {
			s.stopRamp()
			s.publish()
		}
		return nil
	})
}

// StartDecay starts the decay ticker. It is a no-op when already running.
// A missing or dead pet cannot decay.
func (s *Session) StartDecay(ctx context.Context) error {
	return s.do(ctx, func() error {
		if !s.state.Player.HasPet() {
			return game.ErrNoPet
		}
		if s.state.Pet().Dead() {
			return pet.ErrPetDead
		}
		s.startDecay()
		s.publish()
		return nil
	})
}

// StopDecay pauses decay.
func (s *Session) StopDecay(ctx context.Context) error {
	return s.do(ctx, func() error {
		s.stopDecay()
		s.publish()
		return nil
	})
}

// RewardClick registers one click on item in the reward mini-game and
// returns how many units were granted by it. Every RewardClicks clicks grant
// one unit; the count resets when no click arrives within RewardWindow.
func (s *Session) RewardClick(ctx context.Context, item string) (int, error) {
	var granted int
	err := s.do(ctx, func() error {
		if !inventory.IsFood(item) && !inventory.IsGift(item) {
			return fmt.Errorf("%w: %q", inventory.ErrUnknownItem, item)
		}
		now := TimeNow()
		b := s.bursts[item]
		if b == nil || now.After(b.deadline) {
			b = &burst{}
			s.bursts[item] = b
		}
		b.clicks++
		b.deadline = now.Add(s.cfg.RewardWindow)

		if b.clicks >= s.cfg.RewardClicks {
			granted = b.clicks / s.cfg.RewardClicks
			b.clicks %= s.cfg.RewardClicks
			if err := s.state.Player.Inventory.Add(item, granted); err != nil {
				return err
			}
			s.logger.Info("reward granted", zap.String("item", item), zap.Int("qty", granted))
		}
		s.publish()
		return nil
	})
	return granted, err
}

// CloseRewards discards any partial click bursts.
func (s *Session) CloseRewards(ctx context.Context) error {
	return s.do(ctx, func() error {
		s.bursts = make(map[string]*burst)
		s.publish()
		return nil
	})
}

// Snapshot returns the current view.
func (s *Session) Snapshot(ctx context.Context) (Snapshot, error) {
	var snap Snapshot
	err := s.do(ctx, func() error {
		snap = s.snapshot()
		return nil
	})
	return snap, err
}

// State returns a deep copy of the game state.
func (s *Session) State(ctx context.Context) (*game.GameState, error) {
	var out *game.GameState
	err := s.do(ctx, func() error {
		out = s.state.Clone()
		return nil
	})
	return out, err
}

// Save writes a copy of the state through gw without blocking the session.
func (s *Session) Save(ctx context.Context, gw save.Gateway) error {
	st, err := s.State(ctx)
	if err != nil {
		return err
	}
	if err := gw.Save(ctx, st); err != nil {
		s.logger.Error("save failed", zap.Error(err))
		return err
	}
	s.logger.Info("game saved")
	return nil
}

func (s *Session) startDecay() {
	if s.decayT != nil || s.cfg.DecayInterval <= 0 {
		return
	}
	s.decayT = time.NewTicker(s.cfg.DecayInterval)
	s.logger.Debug("decay started", zap.Duration("interval", s.cfg.DecayInterval))
}

func (s *Session) stopDecay() {
	if s.decayT != nil {
		s.decayT.Stop()
		s.decayT = nil
		s.logger.Debug("decay stopped")
	}
}

func (s *Session) stopRamp() {
	if s.rampT != nil {
		s.rampT.Stop()
		s.rampT = nil
	}
}

func (s *Session) tickDecay() {
	p := s.state.Pet()
	if p == nil || s.decay == nil {
		return
	}
	wasAlive := !p.Dead()
	p.AdjustStats(s.decay)
	if wasAlive && p.Dead() {
		s.logger.Warn("pet died", zap.String("pet", p.Name))
		s.stopRamp()
		s.stopDecay()
	}
	s.publish()
}

func (s *Session) stepRamp() {
	p := s.state.Pet()
	if p == nil || p.Dead() || p.RestStep(s.cfg.SleepIncrement) {
		s.stopRamp()
		s.logger.Debug("sleep ramp finished")
	}
	s.publish()
}

func (s *Session) snapshot() Snapshot {
	snap := Snapshot{
		SessionID:    s.id,
		Slot:         s.state.SaveSlot,
		PlayerName:   s.state.Player.Name,
		Score:        s.state.Player.Score,
		Inventory:    s.state.Player.Inventory.Snapshot(),
		RewardClicks: make(map[string]int, len(s.bursts)),
		Resting:      s.rampT != nil,
		DecayRunning: s.decayT != nil,
		State:        pet.StateNormal,
		At:           TimeNow(),
	}
	now := TimeNow()
	for item, b := range s.bursts {
		if b.clicks > 0 && !now.After(b.deadline) {
			snap.RewardClicks[item] = b.clicks
		}
	}
	if p := s.state.Pet(); p != nil {
		snap.Pet = p.Clone()
		snap.State = p.MainState()
		snap.Warning = p.Warning()
		if snap.Resting && snap.State != pet.StateDead {
			snap.State = pet.StateSleeping
		}
	}
	return snap
}

// publish replaces any unread snapshot with the current one.
func (s *Session) publish() {
	snap := s.snapshot()
	select {
	case <-s.updates:
	default:
	}
	select {
	case s.updates <- snap:
	default:
	}
}
