package entities

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// SpellLevel is a spell's level as it appears in catalog data. Catalogs
// store levels as text; Int parses the leading digits for comparisons.
type SpellLevel string

// Int returns the numeric level and false when the text has no leading digits
func (l SpellLevel) Int() (int, bool) {
	s := strings.TrimSpace(string(l))
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}

// SortKey orders unparsable levels after every parsable one
func (l SpellLevel) SortKey() int {
	if n, ok := l.Int(); ok {
		return n
	}
	return math.MaxInt
}

// UnmarshalJSON accepts both "20" and 20
func (l *SpellLevel) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*l = SpellLevel(s)
		return nil
	}
	if bytes.Equal(data, []byte("null")) {
		*l = ""
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*l = SpellLevel(n.String())
	return nil
}

// Spell is a single entry of a class catalog. Spells sharing a Line are
// successive upgrades of the same ability.
type Spell struct {
	Name  string     `json:"name"`
	Line  string     `json:"line"`
	Level SpellLevel `json:"level"`
}

// ClassCatalog is the spell list of one class
type ClassCatalog struct {
	Class     string   `json:"class"`
	Spells    []*Spell `json:"spells"`
	NoQuality []string `json:"noquality,omitempty"`
}

// IsNoQuality reports whether the spell is exempt from quality tracking
func (c *ClassCatalog) IsNoQuality(spellName string) bool {
	if c == nil {
		return false
	}
	for _, name := range c.NoQuality {
		if name == spellName {
			return true
		}
	}
	return false
}

// FindSpell returns the first catalog spell with the given name
func (c *ClassCatalog) FindSpell(spellName string) *Spell {
	if c == nil {
		return nil
	}
	for _, spell := range c.Spells {
		if spell.Name == spellName {
			return spell
		}
	}
	return nil
}

// SpellWithReplacement annotates a spell with the level of the next spell
// in its line. ReplacedAtLevel is nil for the last spell of a line.
type SpellWithReplacement struct {
	Spell
	ReplacedAtLevel *int `json:"replacedAtLevel,omitempty"`
}

// IsOutlevelled reports whether a character of the given level has already
// reached the replacement of this spell
func (s *SpellWithReplacement) IsOutlevelled(characterLevel int) bool {
	if characterLevel <= 0 || s.ReplacedAtLevel == nil {
		return false
	}
	return characterLevel >= *s.ReplacedAtLevel
}
