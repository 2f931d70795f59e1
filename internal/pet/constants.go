package pet

// Game constants
const (
	MaxStat          = 100
	MinStat          = 0
	WarningThreshold = 25 // any vital below this flags urgency in the UI
	AngryThreshold   = 50 // happiness at or below this makes the pet angry

	// Interaction effects
	PlayHappinessIncrease    = 15
	VetHealthIncrease        = 15
	ExerciseHealthIncrease   = 5
	ExerciseSleepDecrease    = 5
	ExerciseFullnessDecrease = 5
	DefaultSleepIncrement    = 25

	// Decay side effects
	DeprivationHealthPenalty = 5 // per tick while sleep or fullness is empty
	HungerHappinessPenalty   = 5 // per tick while fullness is empty
	DefaultMaxRandomDecay    = 5

	// Status emojis
	StatusEmojiNormal   = "😸"
	StatusEmojiSleeping = "😴"
	StatusEmojiHungry   = "🙀"
	StatusEmojiAngry    = "😾"
	StatusEmojiDead     = "💀"
	StatusEmojiResting  = "🛌"
	StatusEmojiWarning  = "⚠️"
)

// Food values in fullness points, gift values in happiness points.
var (
	foodValues = map[string]int{
		"vegetable": 5,
		"fruit":     10,
		"meat":      15,
	}
	giftValues = map[string]int{
		"toy":        5,
		"ball":       10,
		"play place": 15,
	}
)

// FoodValue returns the fullness a food item restores, or 0 for non-food.
func FoodValue(item string) int { return foodValues[item] }

// GiftValue returns the happiness a gift item restores, or 0 for non-gifts.
func GiftValue(item string) int { return giftValues[item] }
