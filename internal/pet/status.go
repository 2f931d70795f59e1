package pet

// StateEmoji returns the emoji shown for a state.
func StateEmoji(s State) string {
	switch s {
	case StateDead:
		return StatusEmojiDead
	case StateSleeping:
		return StatusEmojiSleeping
	case StateHungry:
		return StatusEmojiHungry
	case StateAngry:
		return StatusEmojiAngry
	default:
		return StatusEmojiNormal
	}
}

// GetStatus returns the status emoji(s) for the pet
func GetStatus(p Pet) string {
	if p.Dead() {
		return StatusEmojiDead
	}
	status := StateEmoji(p.MainState())
	if need := GetNeedEmoji(p); need != "" {
		status += need
	}
	return status
}

// GetNeedEmoji returns the emoji of the lowest vital when it is below the
// warning threshold.
func GetNeedEmoji(p Pet) string {
	lowest, emoji := p.Health, "🤒"
	if p.Sleep < lowest {
		lowest, emoji = p.Sleep, "🥱"
	}
	if p.Fullness < lowest {
		lowest, emoji = p.Fullness, "🍽️"
	}
	if p.Happiness < lowest {
		lowest, emoji = p.Happiness, "💔"
	}
	if lowest < WarningThreshold {
		return emoji
	}
	return ""
}

// GetStatusWithLabel returns status with text labels for the UI
func GetStatusWithLabel(p Pet) string {
	status := GetStatus(p)
	switch p.MainState() {
	case StateDead:
		return status + " Dead"
	case StateSleeping:
		return status + " Sleeping"
	case StateHungry:
		return status + " Hungry"
	case StateAngry:
		return status + " Angry"
	}
	if p.Warning() {
		return status + " Needs care"
	}
	return status + " Happy"
}
