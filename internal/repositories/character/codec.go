package character

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"

	"github.com/KirkDiggler/spell-planner/internal/entities"
	"github.com/KirkDiggler/spell-planner/internal/errors"
)

// record is one element of the stored array. Records that fail validation
// keep their raw bytes so a later write puts them back untouched.
type record struct {
	character *entities.Character
	raw       json.RawMessage
}

type collection struct {
	records []record
	// unreadable is set when the document is not a JSON array. The
	// collection then reads as empty and must not be written back.
	unreadable error
}

// decodeCollection parses the stored document. A document that is not a
// JSON array is treated as an empty collection.
func decodeCollection(ctx context.Context, data []byte) *collection {
	col := &collection{}
	if len(bytes.TrimSpace(data)) == 0 {
		return col
	}

	var elements []json.RawMessage
	if err := json.Unmarshal(data, &elements); err != nil {
		col.unreadable = errors.UnreadableStore(err, len(data))
		slog.WarnContext(ctx, "stored character data is unreadable, treating as empty",
			errors.LogAttrs(col.unreadable)...)
		return col
	}

	seen := make(map[string]bool, len(elements))
	for i, element := range elements {
		char, reason := decodeRecord(ctx, element)
		if char != nil && seen[char.ID] {
			char, reason = nil, "duplicate id "+char.ID
		}
		if char == nil {
			slog.WarnContext(ctx, "quarantining invalid character record",
				errors.LogAttrs(errors.QuarantinedRecord(i, reason))...)
			col.records = append(col.records, record{raw: element})
			continue
		}
		seen[char.ID] = true
		col.records = append(col.records, record{character: char})
	}
	return col
}

// decodeRecord returns the validated character or the reason it was rejected
func decodeRecord(ctx context.Context, element json.RawMessage) (*entities.Character, string) {
	var char entities.Character
	if err := json.Unmarshal(element, &char); err != nil {
		return nil, err.Error()
	}

	switch {
	case char.ID == "":
		return nil, "missing id"
	case char.Name == "":
		return nil, "missing name"
	case char.Class == "":
		return nil, "missing class"
	case char.Level < entities.MinCharacterLevel || char.Level > entities.MaxCharacterLevel:
		return nil, "level out of range"
	}

	spells := make([]*entities.CharacterSpell, 0, len(char.Spells))
	names := make(map[string]bool, len(char.Spells))
	for _, spell := range char.Spells {
		if spell == nil || spell.Name == "" || names[spell.Name] {
			slog.DebugContext(ctx, "dropping unusable spell entry",
				"character_id", char.ID)
			continue
		}
		names[spell.Name] = true
		spell.Quality = canonicalQuality(ctx, char.ID, spell)
		spells = append(spells, spell)
	}
	char.Spells = spells

	return &char, ""
}

// canonicalQuality replaces stored quality details with the table entry
func canonicalQuality(ctx context.Context, characterID string, spell *entities.CharacterSpell) entities.SpellQuality {
	if q, ok := entities.LookupQuality(spell.Quality.Name); ok {
		return q
	}
	slog.WarnContext(ctx, "unknown stored quality, using default",
		"character_id", characterID,
		"spell", spell.Name,
		"quality", spell.Quality.Name)
	return entities.DefaultQuality()
}

func (c *collection) characters() []*entities.Character {
	out := make([]*entities.Character, 0, len(c.records))
	for _, r := range c.records {
		if r.character != nil {
			out = append(out, r.character)
		}
	}
	return out
}

func (c *collection) quarantined() int {
	n := 0
	for _, r := range c.records {
		if r.character == nil {
			n++
		}
	}
	return n
}

func (c *collection) indexOf(id string) int {
	for i, r := range c.records {
		if r.character != nil && r.character.ID == id {
			return i
		}
	}
	return -1
}

func (c *collection) find(id string) *entities.Character {
	if i := c.indexOf(id); i >= 0 {
		return c.records[i].character
	}
	return nil
}

func (c *collection) findByName(name string) *entities.Character {
	for _, r := range c.records {
		if r.character != nil && r.character.Name == name {
			return r.character
		}
	}
	return nil
}

// upsert replaces the record with the same ID in place or appends
func (c *collection) upsert(char *entities.Character) {
	if i := c.indexOf(char.ID); i >= 0 {
		c.records[i].character = char
		return
	}
	c.records = append(c.records, record{character: char})
}

func (c *collection) remove(id string) bool {
	i := c.indexOf(id)
	if i < 0 {
		return false
	}
	c.records = append(c.records[:i], c.records[i+1:]...)
	return true
}

func (c *collection) encode() ([]byte, error) {
	elements := make([]json.RawMessage, 0, len(c.records))
	for _, r := range c.records {
		if r.character == nil {
			elements = append(elements, r.raw)
			continue
		}
		data, err := json.Marshal(r.character)
		if err != nil {
			return nil, err
		}
		elements = append(elements, data)
	}
	return json.Marshal(elements)
}
