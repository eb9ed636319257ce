package catalog

import (
	"sort"

	"github.com/KirkDiggler/spell-planner/internal/entities"
)

// DeriveReplacementInfo annotates every catalog spell with the level at
// which the next spell of its line replaces it. The result holds one entry
// per catalog spell ordered by ascending level; equal levels keep catalog
// order.
func DeriveReplacementInfo(doc *entities.ClassCatalog) []*entities.SpellWithReplacement {
	if doc == nil {
		return []*entities.SpellWithReplacement{}
	}

	byLine := make(map[string][]int)
	for i, spell := range doc.Spells {
		byLine[spell.Line] = append(byLine[spell.Line], i)
	}

	result := make([]*entities.SpellWithReplacement, len(doc.Spells))
	for _, indexes := range byLine {
		sort.SliceStable(indexes, func(a, b int) bool {
			return doc.Spells[indexes[a]].Level.SortKey() < doc.Spells[indexes[b]].Level.SortKey()
		})
		for pos, idx := range indexes {
			entry := &entities.SpellWithReplacement{Spell: *doc.Spells[idx]}
			if pos+1 < len(indexes) {
				if next, ok := doc.Spells[indexes[pos+1]].Level.Int(); ok {
					entry.ReplacedAtLevel = &next
				}
			}
			result[idx] = entry
		}
	}

	sort.SliceStable(result, func(a, b int) bool {
		return result[a].Level.SortKey() < result[b].Level.SortKey()
	})
	return result
}

// DeriveKnownSpells returns the spells a character of the given level knows:
// the highest spell at or below the level in each line. Spells listed as
// no-quality get the none quality, everything else the default quality.
func DeriveKnownSpells(doc *entities.ClassCatalog, level int) []*entities.CharacterSpell {
	if doc == nil {
		return []*entities.CharacterSpell{}
	}

	best := make(map[string]*entities.Spell)
	var lines []string
	for _, spell := range doc.Spells {
		n, ok := spell.Level.Int()
		if !ok || n > level {
			continue
		}
		current, seen := best[spell.Line]
		if !seen {
			lines = append(lines, spell.Line)
			best[spell.Line] = spell
			continue
		}
		// first spell wins a tie
		if cur, _ := current.Level.Int(); n > cur {
			best[spell.Line] = spell
		}
	}

	known := make([]*entities.CharacterSpell, 0, len(lines))
	for _, line := range lines {
		spell := best[line]
		quality := entities.DefaultQuality()
		if doc.IsNoQuality(spell.Name) {
			quality = entities.NoneQuality()
		}
		known = append(known, &entities.CharacterSpell{Spell: *spell, Quality: quality})
	}

	sort.SliceStable(known, func(a, b int) bool {
		return known[a].Level.SortKey() < known[b].Level.SortKey()
	})
	return known
}
