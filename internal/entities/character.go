// Package entities contains the spell planner's domain types
package entities

import "time"

// Level bounds for characters
const (
	MinCharacterLevel = 1
	MaxCharacterLevel = 125
)

// ExportVersion is written into every exported character document
const ExportVersion = "1.0"

// CharacterSpell is a known spell together with the quality it is trained to
type CharacterSpell struct {
	Spell
	Quality SpellQuality `json:"quality"`
}

// Character is the unit of persistence
type Character struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	Class     string            `json:"class"`
	Level     int               `json:"level"`
	Spells    []*CharacterSpell `json:"spells"`
	CreatedAt time.Time         `json:"createdAt"`
	UpdatedAt time.Time         `json:"updatedAt"`
}

// FindSpell returns the tracked spell with the given name
func (c *Character) FindSpell(spellName string) *CharacterSpell {
	for _, spell := range c.Spells {
		if spell.Name == spellName {
			return spell
		}
	}
	return nil
}

// Clone returns a deep copy so callers cannot mutate stored state
func (c *Character) Clone() *Character {
	if c == nil {
		return nil
	}
	out := *c
	out.Spells = make([]*CharacterSpell, 0, len(c.Spells))
	for _, spell := range c.Spells {
		cp := *spell
		out.Spells = append(out.Spells, &cp)
	}
	return &out
}

// ExportDocument is the file format for sharing a single character
type ExportDocument struct {
	Character  *Character `json:"character"`
	ExportDate time.Time  `json:"exportDate"`
	Version    string     `json:"version"`
}
