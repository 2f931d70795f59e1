package pet

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

//go:embed archetypes.yaml
var defaultArchetypes []byte

var ErrInvalidArchetype = errors.New("invalid archetype")

// Decay yields the amounts removed from sleep, fullness and happiness on one
// decay tick.
type Decay interface {
	Decrements() (sleep, fullness, happiness int)
}

// FixedDecay removes the same amounts on every tick.
type FixedDecay struct {
	Sleep, Fullness, Happiness int
}

func (d FixedDecay) Decrements() (int, int, int) {
	return d.Sleep, d.Fullness, d.Happiness
}

// RandomDecay removes an independent amount in [0, Max] from each vital.
type RandomDecay struct {
	Max int
}

func (d RandomDecay) Decrements() (int, int, int) {
	n := d.Max + 1
	return RandIntn(n), RandIntn(n), RandIntn(n)
}

// DecayProfile is the YAML form of a decay rule.
type DecayProfile struct {
	Random    bool `yaml:"random"`
	Max       int  `yaml:"max"`
	Sleep     int  `yaml:"sleep"`
	Fullness  int  `yaml:"fullness"`
	Happiness int  `yaml:"happiness"`
}

// Decay builds the rule described by the profile.
func (d DecayProfile) Decay() Decay {
	if d.Random {
		return RandomDecay{Max: d.Max}
	}
	return FixedDecay{Sleep: d.Sleep, Fullness: d.Fullness, Happiness: d.Happiness}
}

func (d DecayProfile) validate() error {
	if d.Random {
		if d.Max < 1 {
			return fmt.Errorf("random decay max must be positive, got %d", d.Max)
		}
		return nil
	}
	if d.Sleep < 0 || d.Fullness < 0 || d.Happiness < 0 {
		return fmt.Errorf("decay amounts must be non-negative")
	}
	return nil
}

// ArchetypeDefinition describes one pet species.
type ArchetypeDefinition struct {
	ID          Archetype    `yaml:"id"`
	Name        string       `yaml:"name"`
	Emoji       string       `yaml:"emoji"`
	Description string       `yaml:"description"`
	Decay       DecayProfile `yaml:"decay"`
}

// Registry maps archetype ids to their definitions.
type Registry struct {
	defs map[Archetype]ArchetypeDefinition
}

// LoadRegistry parses a YAML archetype document. The generic archetype is
// always present; a document that omits it gets the built-in random profile.
func LoadRegistry(data []byte) (*Registry, error) {
	var doc struct {
		Archetypes []ArchetypeDefinition `yaml:"archetypes"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing archetypes: %w", err)
	}
	r := &Registry{defs: make(map[Archetype]ArchetypeDefinition, len(doc.Archetypes)+1)}
	for _, def := range doc.Archetypes {
		if def.ID < 0 {
			return nil, fmt.Errorf("%w: negative id %d", ErrInvalidArchetype, def.ID)
		}
		if def.Name == "" {
			return nil, fmt.Errorf("%w: id %d has no name", ErrInvalidArchetype, def.ID)
		}
		if _, dup := r.defs[def.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate id %d", ErrInvalidArchetype, def.ID)
		}
		if err := def.Decay.validate(); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidArchetype, def.Name, err)
		}
		r.defs[def.ID] = def
	}
	if _, ok := r.defs[ArchetypeGeneric]; !ok {
		r.defs[ArchetypeGeneric] = ArchetypeDefinition{
			ID:    ArchetypeGeneric,
			Name:  "Generic",
			Emoji: "🐾",
			Decay: DecayProfile{Random: true, Max: DefaultMaxRandomDecay},
		}
	}
	return r, nil
}

// LoadRegistryFile reads archetypes from path.
func LoadRegistryFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading archetypes file: %w", err)
	}
	return LoadRegistry(data)
}

// DefaultRegistry returns the archetypes compiled into the binary.
func DefaultRegistry() *Registry {
	r, err := LoadRegistry(defaultArchetypes)
	if err != nil {
		panic(fmt.Sprintf("embedded archetypes: %v", err))
	}
	return r
}

// Lookup returns the definition for id.
func (r *Registry) Lookup(id Archetype) (ArchetypeDefinition, bool) {
	def, ok := r.defs[id]
	return def, ok
}

// Decay returns the decay rule for id. Unknown ids decay like the generic
// archetype.
func (r *Registry) Decay(id Archetype) Decay {
	if def, ok := r.defs[id]; ok {
		return def.Decay.Decay()
	}
	return r.defs[ArchetypeGeneric].Decay.Decay()
}

// Name returns the display name for id, or "Unknown".
func (r *Registry) Name(id Archetype) string {
	if def, ok := r.defs[id]; ok {
		return def.Name
	}
	return "Unknown"
}

// All returns every definition ordered by id.
func (r *Registry) All() []ArchetypeDefinition {
	out := make([]ArchetypeDefinition, 0, len(r.defs))
	for _, def := range r.defs {
		out = append(out, def)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Selectable returns the archetypes a player can adopt, which excludes the
// generic fallback.
func (r *Registry) Selectable() []ArchetypeDefinition {
	all := r.All()
	out := all[:0]
	for _, def := range all {
		if def.ID != ArchetypeGeneric {
			out = append(out, def)
		}
	}
	return out
}
