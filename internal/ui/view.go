package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"pocketpet/internal/inventory"
	"pocketpet/internal/pet"
)

var gameStyles = struct {
	title    lipgloss.Style
	status   lipgloss.Style
	menu     lipgloss.Style
	menuBox  lipgloss.Style
	stats    lipgloss.Style
	disabled lipgloss.Style
	warning  lipgloss.Style
}{
	title: lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#FF75B5")).
		Padding(0, 1),

	status: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#FF75B5")).
		Width(40),

	stats: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#FF75B5")).
		Width(40),

	menu: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#FF75B5")),

	menuBox: lipgloss.NewStyle().
		Padding(0, 2),

	disabled: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#777777")),

	warning: lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#FF0000")),
}

// View implements tea.Model
func (m Model) View() string {
	if m.Quitting {
		return "Thanks for playing!\n"
	}
	switch m.Screen {
	case screenLocked:
		return m.lockedView()
	case screenAdoptName:
		return m.adoptNameView()
	case screenAdoptType:
		return m.adoptTypeView()
	}
	if m.Snap.Pet != nil && m.Snap.Pet.Dead() {
		return m.deadView()
	}

	// Show animation if one is active
	if m.Animation.Type != AnimNone {
		return m.renderAnimation()
	}

	sections := []string{m.renderTitle(), "", m.renderStats(), "", m.renderStatus()}
	if m.Snap.Warning {
		sections = append(sections, gameStyles.warning.Render(pet.StatusEmojiWarning+"  "+m.petName()+" needs attention!"))
	}
	if msg := m.activeMessage(); msg != "" {
		sections = append(sections, "", gameStyles.status.Render(msg))
	}

	var body, help string
	switch m.Screen {
	case screenItems:
		body = m.renderItems()
		help = "Use arrows to move • enter to use • esc to go back"
	case screenRewards:
		body = m.renderRewards()
		help = "Press enter 5 times within 5 seconds to earn an item • esc to go back"
	default:
		body = m.renderMenu()
		help = "Use arrows to move • enter to select • p to pause • q to quit"
		if m.Snap.Resting {
			help = "w to wake up • " + help
		}
	}
	sections = append(sections, "", body, "", gameStyles.status.Render(help))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) activeMessage() string {
	if m.Message != "" && TimeNow().Before(m.MessageExpires) {
		return m.Message
	}
	return ""
}

func (m Model) renderTitle() string {
	emoji := "🐾"
	if m.registry != nil && m.Snap.Pet != nil {
		if def, ok := m.registry.Lookup(m.Snap.Pet.Type); ok && def.Emoji != "" {
			emoji = def.Emoji
		}
	}
	return gameStyles.title.Render(emoji + " " + m.petName() + " " + emoji)
}

func makeBar(value int) string {
	filled := value / 10
	var b strings.Builder
	for i := 0; i < 10; i++ {
		if i < filled {
			b.WriteString("█")
		} else {
			b.WriteString("░")
		}
	}
	return b.String()
}

func (m Model) renderStats() string {
	p := m.Snap.Pet
	if p == nil {
		return ""
	}
	archetype := "Unknown"
	if m.registry != nil {
		archetype = m.registry.Name(p.Type)
	}

	stats := []struct {
		name  string
		value string
	}{
		{"Type", archetype},
		{"Health", fmt.Sprintf("[%s] %3d%%", makeBar(p.Health), p.Health)},
		{"Sleep", fmt.Sprintf("[%s] %3d%%", makeBar(p.Sleep), p.Sleep)},
		{"Fullness", fmt.Sprintf("[%s] %3d%%", makeBar(p.Fullness), p.Fullness)},
		{"Happiness", fmt.Sprintf("[%s] %3d%%", makeBar(p.Happiness), p.Happiness)},
		{"Score", fmt.Sprintf("%d", m.Snap.Score)},
	}

	var lines []string
	for _, stat := range stats {
		lines = append(lines, fmt.Sprintf("%-10s %s", stat.name+":", stat.value))
	}

	return gameStyles.stats.Render(strings.Join(lines, "\n"))
}

func (m Model) renderStatus() string {
	if m.Snap.Pet == nil {
		return ""
	}
	label := pet.GetStatusWithLabel(*m.Snap.Pet)
	if m.Snap.Resting {
		label = pet.StatusEmojiResting + " Resting"
	}
	if !m.Snap.DecayRunning && !m.Snap.Pet.Dead() {
		label += " (paused)"
	}
	return gameStyles.status.Render(fmt.Sprintf("Status: %s", label))
}

// menuEnabled reports whether the entry can currently be chosen.
func (m Model) menuEnabled(e menuEntry) bool {
	if e.kind == "" {
		return true
	}
	if m.Snap.Pet == nil || m.Snap.Resting {
		return false
	}
	if m.Snap.Pet.CanInteract(e.kind) != nil {
		return false
	}
	switch e.kind {
	case pet.InteractFeed:
		return foodCount(m.Snap.Inventory) > 0
	case pet.InteractGift:
		return giftCount(m.Snap.Inventory) > 0
	}
	return true
}

func (m Model) renderMenu() string {
	var menuItems []string
	for i, entry := range mainMenu {
		cursor := " "
		if m.Choice == i {
			cursor = ">"
		}
		line := fmt.Sprintf("%s %s", cursor, entry.label)
		if !m.menuEnabled(entry) {
			line = gameStyles.disabled.Render(line)
		}
		menuItems = append(menuItems, line)
	}
	return gameStyles.menuBox.Render(strings.Join(menuItems, "\n"))
}

func (m Model) renderItems() string {
	var lines []string
	for i, item := range m.Items {
		cursor := " "
		if m.Choice == i {
			cursor = ">"
		}
		qty := m.Snap.Inventory[item]
		line := fmt.Sprintf("%s %-11s x%d", cursor, item, qty)
		if qty == 0 {
			line = gameStyles.disabled.Render(line)
		}
		lines = append(lines, line)
	}
	return gameStyles.menuBox.Render(strings.Join(lines, "\n"))
}

func (m Model) renderRewards() string {
	var lines []string
	for i, item := range rewardItems() {
		cursor := " "
		if m.Choice == i {
			cursor = ">"
		}
		clicks := m.Snap.RewardClicks[item]
		lines = append(lines, fmt.Sprintf("%s %-11s x%-3d %s", cursor, item, m.Snap.Inventory[item], strings.Repeat("●", clicks)))
	}
	return gameStyles.menuBox.Render(strings.Join(lines, "\n"))
}

func (m Model) adoptNameView() string {
	sections := []string{
		gameStyles.title.Render("🐾 A new friend 🐾"),
		"",
		gameStyles.status.Render("Give your pet a name and press enter."),
		"",
		gameStyles.menuBox.Render("> " + m.NameInput + "▏"),
	}
	if msg := m.activeMessage(); msg != "" {
		sections = append(sections, "", gameStyles.status.Render(msg))
	}
	sections = append(sections, "", gameStyles.status.Render("esc to quit"))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) adoptTypeView() string {
	var lines []string
	if m.registry != nil {
		for i, def := range m.registry.Selectable() {
			cursor := " "
			if m.Choice == i {
				cursor = ">"
			}
			lines = append(lines, fmt.Sprintf("%s %s %-8s %s", cursor, def.Emoji, def.Name, def.Description))
		}
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		gameStyles.title.Render("What kind of pet is "+strings.TrimSpace(m.NameInput)+"?"),
		"",
		gameStyles.menuBox.Render(strings.Join(lines, "\n")),
		"",
		gameStyles.status.Render("Use arrows to move • enter to adopt • esc to rename"),
	)
}

func (m Model) renderAnimation() string {
	frame := GetAnimationFrame(m.Animation)

	animStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#FFD700")).
		Bold(true).
		Padding(1, 2)

	sections := []string{
		m.renderTitle(),
		"",
		animStyle.Render(frame),
	}
	if msg := m.activeMessage(); msg != "" {
		sections = append(sections, "", gameStyles.status.Render(msg))
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) deadView() string {
	return lipgloss.JoinVertical(
		lipgloss.Center,
		gameStyles.title.Render(pet.StatusEmojiDead+" "+m.petName()+" "+pet.StatusEmojiDead),
		"",
		gameStyles.status.Render("Your pet has passed away..."),
		gameStyles.status.Render(fmt.Sprintf("Final score: %d", m.Snap.Score)),
		"",
		gameStyles.status.Render("A parent can revive them from the parental menu."),
		"",
		gameStyles.status.Render("Press q to exit"),
	)
}

func (m Model) lockedView() string {
	return lipgloss.JoinVertical(
		lipgloss.Center,
		gameStyles.title.Render("⏰ Play time is over ⏰"),
		"",
		gameStyles.status.Render("Your game has been saved."),
		gameStyles.status.Render("Come back during your allowed hours!"),
		"",
		gameStyles.status.Render("Press any key to exit"),
	)
}

func foodCount(inv map[string]int) int { return countOf(inv, inventory.FoodItems()) }

func giftCount(inv map[string]int) int { return countOf(inv, inventory.GiftItems()) }

func countOf(inv map[string]int, names []string) int {
	total := 0
	for _, name := range names {
		total += inv[name]
	}
	return total
}
