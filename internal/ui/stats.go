package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"pocketpet/internal/game"
	"pocketpet/internal/pet"
)

// StatsModel is a simple Bubble Tea model for displaying one slot's stats
type StatsModel struct {
	State    *game.GameState
	Registry *pet.Registry
}

// Init implements tea.Model
func (m StatsModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (m StatsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m, tea.Quit
	case tea.MouseMsg:
		if msg.Action == tea.MouseActionPress {
			return m, tea.Quit
		}
	}
	return m, nil
}

// View implements tea.Model
func (m StatsModel) View() string {
	return RenderStatsCard(m.State, m.Registry) + "\nPress ESC, click, or any key to close..."
}

// RenderStatsCard draws the boxed stats card for a slot.
func RenderStatsCard(g *game.GameState, reg *pet.Registry) string {
	var s strings.Builder
	s.WriteString("╔════════════════════════════════════╗\n")
	s.WriteString(fmt.Sprintf("║  Slot %-2d  Player: %-17s║\n", g.SaveSlot, g.Player.Name))
	s.WriteString("╠════════════════════════════════════╣\n")

	p := g.Pet()
	if p == nil {
		s.WriteString("║  No pet adopted yet                ║\n")
		s.WriteString("╚════════════════════════════════════╝\n")
		return s.String()
	}

	archetype := "Unknown"
	if reg != nil {
		archetype = reg.Name(p.Type)
	}
	s.WriteString(fmt.Sprintf("║  Name:    %-24s ║\n", p.Name))
	s.WriteString(fmt.Sprintf("║  Type:    %-24s ║\n", archetype))
	s.WriteString(fmt.Sprintf("║  Status:  %-24s ║\n", string(p.MainState())))
	s.WriteString(fmt.Sprintf("║  Score:   %-24d ║\n", g.Player.Score))
	s.WriteString("║                                    ║\n")
	s.WriteString(fmt.Sprintf("║  Health:    [%s] %3d%%   ║\n", makeBar(p.Health), p.Health))
	s.WriteString(fmt.Sprintf("║  Sleep:     [%s] %3d%%   ║\n", makeBar(p.Sleep), p.Sleep))
	s.WriteString(fmt.Sprintf("║  Fullness:  [%s] %3d%%   ║\n", makeBar(p.Fullness), p.Fullness))
	s.WriteString(fmt.Sprintf("║  Happiness: [%s] %3d%%   ║\n", makeBar(p.Happiness), p.Happiness))
	s.WriteString("║                                    ║\n")
	inv := g.Player.Inventory
	s.WriteString(fmt.Sprintf("║  Food:    %-24d ║\n", inv.TotalFood()))
	s.WriteString(fmt.Sprintf("║  Gifts:   %-24d ║\n", inv.TotalGifts()))
	s.WriteString("╚════════════════════════════════════╝\n")
	return s.String()
}

// DisplayStats shows the stats display
func DisplayStats(g *game.GameState, reg *pet.Registry) error {
	program := tea.NewProgram(StatsModel{State: g, Registry: reg}, tea.WithAltScreen(), tea.WithMouseAllMotion())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("running stats display: %w", err)
	}
	return nil
}
