package ui

import (
	"time"

	"pocketpet/internal/pet"
)

// AnimationType represents the type of action animation
type AnimationType int

const (
	AnimNone AnimationType = iota
	AnimFeed
	AnimGift
	AnimPlay
	AnimExercise
	AnimSleep
	AnimVet
	AnimReward
)

// Animation holds the current animation state
type Animation struct {
	Type      AnimationType
	Frame     int
	StartTime time.Time
}

// AnimationFrames contains ASCII art frames for each animation type
var AnimationFrames = map[AnimationType][]string{
	AnimFeed: {
		`
   🍖
     \
      😺
`,
		`

   🍖→😺

`,
		`

     😸
   *nom*
`,
		`

     😋
   *munch*
`,
	},
	AnimGift: {
		`
  🎁        😺
`,
		`
      🎁    😺
`,
		`
          🎁😸
`,
		`
           😻
        *ooh!*
`,
	},
	AnimPlay: {
		`
  🎾        😺
`,
		`
     🎾     😸
`,
		`
        🎾  😺
`,
		`
     🎾     😸
              *boing*
`,
		`
  🎾        😺
              *catch!*
`,
	},
	AnimExercise: {
		`
  😺
`,
		`
     😺💨
`,
		`
          😺💨
`,
		`
             😸
          *pant*
`,
	},
	AnimSleep: {
		`
     😺
`,
		`
     😪
      z
`,
		`
     😴
     z
      z
`,
		`
     😴
    z
     z
      z
`,
	},
	AnimVet: {
		`
  💉       😿
`,
		`
     💉    😿
`,
		`
       💉→ 😺
`,
		`
           😺
          +15
`,
		`
           😸
        ✨ +15 ✨
`,
	},
	AnimReward: {
		`
      ✨
`,
		`
    ✨ 🎉 ✨
`,
		`
  ✨  +1 item  ✨
`,
	},
}

// AnimationFrameDuration is how long each frame displays
const AnimationFrameDuration = 200 * time.Millisecond

// AnimationFor returns the animation played after a successful interaction.
func AnimationFor(kind pet.Interaction) AnimationType {
	switch kind {
	case pet.InteractFeed:
		return AnimFeed
	case pet.InteractGift:
		return AnimGift
	case pet.InteractPlay:
		return AnimPlay
	case pet.InteractExercise:
		return AnimExercise
	case pet.InteractSleep:
		return AnimSleep
	case pet.InteractVet:
		return AnimVet
	default:
		return AnimNone
	}
}

// GetAnimationFrame returns the current frame for an animation
func GetAnimationFrame(anim Animation) string {
	frames := AnimationFrames[anim.Type]
	if len(frames) == 0 {
		return ""
	}
	if anim.Frame >= len(frames) {
		return frames[len(frames)-1]
	}
	return frames[anim.Frame]
}

// IsAnimationComplete returns true if the animation has finished
func IsAnimationComplete(anim Animation) bool {
	frames := AnimationFrames[anim.Type]
	return anim.Frame >= len(frames)
}

// AnimationTotalFrames returns the number of frames for an animation type
func AnimationTotalFrames(animType AnimationType) int {
	return len(AnimationFrames[animType])
}
