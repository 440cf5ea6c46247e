// Package persona defines agent persona profiles, their conversational
// memory, and the library of built-in and user-defined personas.
package persona

import (
	"fmt"
	"sort"

	"github.com/hay-kot/symposium/internal/core/validate"
)

// Profile describes a persona agent: who it is, what it knows, and how it
// behaves. Immutable after construction; one instance per participant for
// the lifetime of a session.
type Profile struct {
	ID          string             `yaml:"id" json:"id"`
	Name        string             `yaml:"name" json:"name"`
	Era         string             `yaml:"era,omitempty" json:"era,omitempty"`
	Description string             `yaml:"description,omitempty" json:"description,omitempty"`
	Expertise   []string           `yaml:"expertise" json:"expertise"`
	Traits      map[string]float64 `yaml:"traits" json:"traits"`
	Style       string             `yaml:"style,omitempty" json:"style,omitempty"`
	Method      string             `yaml:"method,omitempty" json:"method,omitempty"`
	KeyIdeas    []string           `yaml:"key_ideas,omitempty" json:"key_ideas,omitempty"`
	Quotes      []string           `yaml:"quotes,omitempty" json:"quotes,omitempty"`
	Background  string             `yaml:"background,omitempty" json:"background,omitempty"`
}

// Trait returns the named trait, or 0.5 when the profile does not define it.
// Absent traits are always neutral, never an error.
func (p Profile) Trait(name string) float64 {
	v, ok := p.Traits[name]
	if !ok {
		return 0.5
	}
	return v
}

// DominantTrait returns the profile's strongest trait. Ties break
// alphabetically so the result is stable across runs.
func (p Profile) DominantTrait() string {
	names := make([]string, 0, len(p.Traits))
	for name := range p.Traits {
		names = append(names, name)
	}
	sort.Strings(names)

	best := ""
	bestV := -1.0
	for _, name := range names {
		if p.Traits[name] > bestV {
			best, bestV = name, p.Traits[name]
		}
	}
	return best
}

// Validate checks the profile is well formed.
func (p Profile) Validate() error {
	if err := validate.Identifier("persona id", p.ID); err != nil {
		return err
	}
	if err := validate.Name("persona name", p.Name); err != nil {
		return err
	}
	for name, v := range p.Traits {
		if err := validate.UnitInterval(fmt.Sprintf("trait %q", name), v); err != nil {
			return fmt.Errorf("persona %s: %w", p.ID, err)
		}
	}
	return nil
}
