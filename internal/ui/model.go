package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"pocketpet/internal/game"
	"pocketpet/internal/inventory"
	"pocketpet/internal/pet"
	"pocketpet/internal/session"
)

// TimeNow drives message expiry and animation start times.
var TimeNow = time.Now

const (
	actionTimeout   = 2 * time.Second
	messageDuration = 3 * time.Second
	maxNameLength   = 16
)

// Game is the part of a session the screen drives.
type Game interface {
	Interact(ctx context.Context, kind pet.Interaction, item string) error
	AdoptPet(ctx context.Context, name string, archetype pet.Archetype) error
	RewardClick(ctx context.Context, item string) (int, error)
	CloseRewards(ctx context.Context) error
	WakeUp(ctx context.Context) error
	StartDecay(ctx context.Context) error
	StopDecay(ctx context.Context) error
	Updates() <-chan session.Snapshot
}

// SaveFunc persists the running game.
type SaveFunc func(ctx context.Context) error

type screen int

const (
	screenAdoptName screen = iota
	screenAdoptType
	screenMain
	screenItems
	screenRewards
	screenLocked
)

type menuEntry struct {
	label string
	kind  pet.Interaction // empty for non-interaction entries
	id    string
}

var mainMenu = []menuEntry{
	{label: "Feed", kind: pet.InteractFeed},
	{label: "Give gift", kind: pet.InteractGift},
	{label: "Play", kind: pet.InteractPlay},
	{label: "Exercise", kind: pet.InteractExercise},
	{label: "Take to the vet", kind: pet.InteractVet},
	{label: "Go to bed", kind: pet.InteractSleep},
	{label: "Rewards", id: "rewards"},
	{label: "Save", id: "save"},
	{label: "Quit", id: "quit"},
}

// Model represents the game screen
type Model struct {
	game     Game
	save     SaveFunc
	registry *pet.Registry

	Snap           session.Snapshot
	Screen         screen
	Choice         int
	NameInput      string
	ItemKind       pet.Interaction
	Items          []string
	Message        string
	MessageExpires time.Time
	Animation      Animation
	Quitting       bool
}

// snapshotMsg carries a session update
type snapshotMsg session.Snapshot

type updatesClosedMsg struct{}

type actionMsg struct {
	kind pet.Interaction
	item string
	err  error
}

type adoptedMsg struct {
	name string
	err  error
}

type rewardMsg struct {
	item    string
	granted int
	err     error
}

type savedMsg struct{ err error }

type pausedMsg struct {
	paused bool
	err    error
}

// ParentalMsg tells the screen whether play is still allowed.
type ParentalMsg struct{ Allowed bool }

type animTickMsg struct {
	started time.Time
}

// NewModel creates a new game model starting from the given snapshot
func NewModel(g Game, save SaveFunc, registry *pet.Registry, initial session.Snapshot) Model {
	m := Model{game: g, save: save, registry: registry, Snap: initial}
	if initial.HasPet() {
		m.Screen = screenMain
	}
	return m
}

// Init implements tea.Model
func (m Model) Init() tea.Cmd {
	return waitForSnapshot(m.game.Updates())
}

func waitForSnapshot(ch <-chan session.Snapshot) tea.Cmd {
	return func() tea.Msg {
		snap, ok := <-ch
		if !ok {
			return updatesClosedMsg{}
		}
		return snapshotMsg(snap)
	}
}

func animTick(start time.Time) tea.Cmd {
	return tea.Tick(AnimationFrameDuration, func(t time.Time) tea.Msg {
		return animTickMsg{started: start}
	})
}

func (m Model) interactCmd(kind pet.Interaction, item string) tea.Cmd {
	g := m.game
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
		defer cancel()
		return actionMsg{kind: kind, item: item, err: g.Interact(ctx, kind, item)}
	}
}

func (m Model) adoptCmd(name string, archetype pet.Archetype) tea.Cmd {
	g := m.game
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
		defer cancel()
		return adoptedMsg{name: name, err: g.AdoptPet(ctx, name, archetype)}
	}
}

func (m Model) rewardCmd(item string) tea.Cmd {
	g := m.game
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
		defer cancel()
		n, err := g.RewardClick(ctx, item)
		return rewardMsg{item: item, granted: n, err: err}
	}
}

func (m Model) closeRewardsCmd() tea.Cmd {
	g := m.game
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
		defer cancel()
		_ = g.CloseRewards(ctx)
		return nil
	}
}

func (m Model) wakeCmd() tea.Cmd {
	g := m.game
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
		defer cancel()
		_ = g.WakeUp(ctx)
		return nil
	}
}

func (m Model) pauseCmd(pause bool) tea.Cmd {
	g := m.game
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
		defer cancel()
		if pause {
			return pausedMsg{paused: true, err: g.StopDecay(ctx)}
		}
		return pausedMsg{paused: false, err: g.StartDecay(ctx)}
	}
}

// lockCmd freezes the pet and saves it once play time is over.
func (m Model) lockCmd() tea.Cmd {
	g, save := m.game, m.saveCmd()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
		err := g.StopDecay(ctx)
		cancel()
		if err != nil {
			return savedMsg{err: fmt.Errorf("pausing: %w", err)}
		}
		return save()
	}
}

func (m Model) saveCmd() tea.Cmd {
	save := m.save
	return func() tea.Msg {
		if save == nil {
			return savedMsg{err: errors.New("saving is not available")}
		}
		ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
		defer cancel()
		return savedMsg{err: save(ctx)}
	}
}

// Update implements tea.Model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.Quitting = true
			return m, tea.Quit
		}
		// While an animation is playing, ignore inputs except quit keys
		if m.Animation.Type != AnimNone {
			if msg.String() == "q" && m.Screen != screenAdoptName {
				m.Quitting = true
				return m, tea.Quit
			}
			return m, nil
		}
		switch m.Screen {
		case screenAdoptName:
			return m.updateAdoptName(msg)
		case screenAdoptType:
			return m.updateAdoptType(msg)
		case screenItems:
			return m.updateItems(msg)
		case screenRewards:
			return m.updateRewards(msg)
		case screenLocked:
			m.Quitting = true
			return m, tea.Quit
		default:
			return m.updateMain(msg)
		}

	case snapshotMsg:
		m.Snap = session.Snapshot(msg)
		return m, waitForSnapshot(m.game.Updates())

	case updatesClosedMsg:
		m.Quitting = true
		return m, tea.Quit

	case actionMsg:
		if msg.err != nil {
			m.setMessage(describeError(msg.err, m.petName()))
			return m, nil
		}
		m.setMessage(successMessage(msg.kind, msg.item, m.petName()))
		m.Screen = screenMain
		m.startAnimation(AnimationFor(msg.kind))
		return m, animTick(m.Animation.StartTime)

	case adoptedMsg:
		if msg.err != nil {
			m.setMessage(describeError(msg.err, msg.name))
			m.Screen = screenAdoptName
			return m, nil
		}
		m.Screen = screenMain
		m.Choice = 0
		m.setMessage(fmt.Sprintf("🎉 Welcome home, %s!", msg.name))
		return m, nil

	case rewardMsg:
		if msg.err != nil {
			m.setMessage(describeError(msg.err, m.petName()))
			return m, nil
		}
		if msg.granted > 0 {
			m.setMessage(fmt.Sprintf("🎉 Rewarded %d %s!", msg.granted, msg.item))
			m.startAnimation(AnimReward)
			return m, animTick(m.Animation.StartTime)
		}
		return m, nil

	case savedMsg:
		if msg.err != nil {
			m.setMessage("⚠️ Save failed: " + msg.err.Error())
		} else {
			m.setMessage("💾 Game saved")
		}
		return m, nil

	case pausedMsg:
		switch {
		case msg.err != nil:
			m.setMessage(describeError(msg.err, m.petName()))
		case msg.paused:
			m.setMessage("⏸️ Paused. Press p to resume")
		default:
			m.setMessage("▶️ Welcome back!")
		}
		return m, nil

	case ParentalMsg:
		if !msg.Allowed {
			m.Screen = screenLocked
			m.Animation = Animation{}
			return m, m.lockCmd()
		}
		return m, nil

	case animTickMsg:
		// Drop ticks that belong to an older animation (e.g., if a new action started)
		if m.Animation.Type == AnimNone || !m.Animation.StartTime.Equal(msg.started) {
			return m, nil
		}

		m.Animation.Frame++
		if IsAnimationComplete(m.Animation) {
			m.Animation = Animation{}
			return m, nil
		}

		return m, animTick(m.Animation.StartTime)
	}

	return m, nil
}

func (m Model) updateAdoptName(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		if strings.TrimSpace(m.NameInput) == "" {
			m.setMessage("✏️ Your pet needs a name")
			return m, nil
		}
		m.Screen = screenAdoptType
		m.Choice = 0
	case tea.KeyBackspace:
		if r := []rune(m.NameInput); len(r) > 0 {
			m.NameInput = string(r[:len(r)-1])
		}
	case tea.KeySpace:
		if len([]rune(m.NameInput)) < maxNameLength {
			m.NameInput += " "
		}
	case tea.KeyRunes:
		if len([]rune(m.NameInput))+len(msg.Runes) <= maxNameLength {
			m.NameInput += string(msg.Runes)
		}
	case tea.KeyEsc:
		m.Quitting = true
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) updateAdoptType(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	choices := m.registry.Selectable()
	switch msg.String() {
	case "q":
		m.Quitting = true
		return m, tea.Quit
	case "esc":
		m.Screen = screenAdoptName
	case "up", "k":
		if m.Choice > 0 {
			m.Choice--
		}
	case "down", "j":
		if m.Choice < len(choices)-1 {
			m.Choice++
		}
	case "enter", " ":
		if len(choices) == 0 {
			return m, m.adoptCmd(strings.TrimSpace(m.NameInput), pet.ArchetypeGeneric)
		}
		return m, m.adoptCmd(strings.TrimSpace(m.NameInput), choices[m.Choice].ID)
	}
	return m, nil
}

func (m Model) updateMain(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		m.Quitting = true
		return m, tea.Quit
	case "w":
		if m.Snap.Resting {
			return m, m.wakeCmd()
		}
	case "p":
		if m.Snap.Pet != nil && !m.Snap.Pet.Dead() {
			return m, m.pauseCmd(m.Snap.DecayRunning)
		}
	case "up", "k":
		if m.Choice > 0 {
			m.Choice--
		}
	case "down", "j":
		if m.Choice < len(mainMenu)-1 {
			m.Choice++
		}
	case "enter", " ":
		entry := mainMenu[m.Choice]
		switch entry.id {
		case "quit":
			m.Quitting = true
			return m, tea.Quit
		case "save":
			return m, m.saveCmd()
		case "rewards":
			m.Screen = screenRewards
			m.Choice = 0
			return m, nil
		}
		if m.Snap.Pet == nil || m.Snap.Pet.Dead() {
			return m, nil
		}
		switch entry.kind {
		case pet.InteractFeed:
			m.openItems(pet.InteractFeed, inventory.FoodItems())
			return m, nil
		case pet.InteractGift:
			m.openItems(pet.InteractGift, inventory.GiftItems())
			return m, nil
		}
		return m, m.interactCmd(entry.kind, "")
	}
	return m, nil
}

func (m *Model) openItems(kind pet.Interaction, items []string) {
	m.ItemKind = kind
	m.Items = items
	m.Screen = screenItems
	m.Choice = 0
}

func (m Model) updateItems(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		m.Quitting = true
		return m, tea.Quit
	case "esc":
		m.Screen = screenMain
		m.Choice = 0
	case "up", "k":
		if m.Choice > 0 {
			m.Choice--
		}
	case "down", "j":
		if m.Choice < len(m.Items)-1 {
			m.Choice++
		}
	case "enter", " ":
		return m, m.interactCmd(m.ItemKind, m.Items[m.Choice])
	}
	return m, nil
}

func rewardItems() []string {
	return append(inventory.FoodItems(), inventory.GiftItems()...)
}

func (m Model) updateRewards(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	items := rewardItems()
	switch msg.String() {
	case "q":
		m.Quitting = true
		return m, tea.Quit
	case "esc":
		m.Screen = screenMain
		m.Choice = 0
		return m, m.closeRewardsCmd()
	case "up", "k":
		if m.Choice > 0 {
			m.Choice--
		}
	case "down", "j":
		if m.Choice < len(items)-1 {
			m.Choice++
		}
	case "enter", " ":
		return m, m.rewardCmd(items[m.Choice])
	}
	return m, nil
}

func (m *Model) setMessage(msg string) {
	m.Message = msg
	m.MessageExpires = TimeNow().Add(messageDuration)
}

func (m *Model) startAnimation(animType AnimationType) {
	m.Animation = Animation{
		Type:      animType,
		Frame:     0,
		StartTime: TimeNow(),
	}
}

func (m Model) petName() string {
	if m.Snap.Pet == nil {
		return "Your pet"
	}
	return m.Snap.Pet.Name
}

func successMessage(kind pet.Interaction, item, name string) string {
	switch kind {
	case pet.InteractFeed:
		return fmt.Sprintf("🍖 %s munches the %s. Yum!", name, item)
	case pet.InteractGift:
		return fmt.Sprintf("🎁 %s loves the %s!", name, item)
	case pet.InteractPlay:
		return "🎾 Wheee!"
	case pet.InteractExercise:
		return fmt.Sprintf("🏃 %s had a good workout", name)
	case pet.InteractSleep:
		return fmt.Sprintf("🛏️ %s is off to bed. Press w to wake them", name)
	case pet.InteractVet:
		return "💉 All patched up!"
	}
	return ""
}

func describeError(err error, name string) string {
	switch {
	case errors.Is(err, pet.ErrPetDead):
		return fmt.Sprintf("💀 %s can no longer play", name)
	case errors.Is(err, pet.ErrPetSleeping):
		return fmt.Sprintf("😴 %s is exhausted. Only bed will help", name)
	case errors.Is(err, pet.ErrPetAngry):
		return fmt.Sprintf("😾 %s is angry. Try play or a gift", name)
	case errors.Is(err, session.ErrResting):
		return fmt.Sprintf("🛌 %s is resting. Press w to wake them", name)
	case errors.Is(err, session.ErrCooldown):
		return "⏳ " + err.Error()
	case errors.Is(err, inventory.ErrInsufficientQuantity):
		return "📦 You are out of that. Earn more in Rewards"
	case errors.Is(err, game.ErrPetExists):
		return "🐾 You already have a pet"
	case errors.Is(err, game.ErrInvalidName):
		return "✏️ Your pet needs a name"
	}
	return "⚠️ " + err.Error()
}
