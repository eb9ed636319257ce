package catalog_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KirkDiggler/spell-planner/internal/entities"
	"github.com/KirkDiggler/spell-planner/internal/orchestrators/catalog"
	"github.com/KirkDiggler/spell-planner/internal/testutils"
)

func knownNames(spells []*entities.CharacterSpell) []string {
	out := make([]string, 0, len(spells))
	for _, spell := range spells {
		out = append(out, spell.Name)
	}
	return out
}

func TestDeriveKnownSpells_Warlock(t *testing.T) {
	doc := testutils.WarlockCatalog()

	t.Run("level 15 knows Bolt I and Ward", func(t *testing.T) {
		known := catalog.DeriveKnownSpells(doc, 15)
		assert.Equal(t, []string{"Bolt I", "Ward"}, knownNames(known))
		for _, spell := range known {
			assert.Equal(t, entities.QualityApprentice, spell.Quality.Name)
		}
	})

	t.Run("level 25 replaces Bolt I with Bolt II ordered by level", func(t *testing.T) {
		known := catalog.DeriveKnownSpells(doc, 25)
		assert.Equal(t, []string{"Ward", "Bolt II"}, knownNames(known))
	})

	t.Run("level 0 knows nothing", func(t *testing.T) {
		assert.Empty(t, catalog.DeriveKnownSpells(doc, 0))
	})

	t.Run("no-quality spells get none", func(t *testing.T) {
		for _, level := range []int{10, 50, 125} {
			known := catalog.DeriveKnownSpells(testutils.WarlockCatalogNoQualityWard(), level)
			for _, spell := range known {
				if spell.Name == "Ward" {
					assert.Equal(t, entities.QualityNone, spell.Quality.Name)
				} else {
					assert.Equal(t, entities.QualityApprentice, spell.Quality.Name)
				}
			}
		}
	})
}

func TestDeriveKnownSpells_TieKeepsFirst(t *testing.T) {
	doc := &entities.ClassCatalog{
		Class: "warlock",
		Spells: []*entities.Spell{
			{Name: "Gift A", Line: "gift", Level: "30"},
			{Name: "Gift B", Line: "gift", Level: "30"},
		},
	}

	known := catalog.DeriveKnownSpells(doc, 40)
	require.Len(t, known, 1)
	assert.Equal(t, "Gift A", known[0].Name)
}

func TestDeriveKnownSpells_SkipsUnparsableLevels(t *testing.T) {
	doc := &entities.ClassCatalog{
		Class: "warlock",
		Spells: []*entities.Spell{
			{Name: "Mystery", Line: "mystery", Level: "?"},
			{Name: "Bolt I", Line: "bolt", Level: "1"},
		},
	}

	assert.Equal(t, []string{"Bolt I"}, knownNames(catalog.DeriveKnownSpells(doc, 125)))
}

func TestDeriveKnownSpells_OnePerLineWithMaxLevel(t *testing.T) {
	doc := generatedCatalog(6, 5)

	for level := 0; level <= 125; level += 7 {
		known := catalog.DeriveKnownSpells(doc, level)

		seen := map[string]bool{}
		for _, spell := range known {
			require.False(t, seen[spell.Line], "line %s appears twice at level %d", spell.Line, level)
			seen[spell.Line] = true

			got, _ := spell.Level.Int()
			for _, candidate := range doc.Spells {
				n, _ := candidate.Level.Int()
				if candidate.Line == spell.Line && n <= level {
					assert.LessOrEqual(t, n, got)
				}
			}
		}
		for _, candidate := range doc.Spells {
			if n, _ := candidate.Level.Int(); n <= level {
				assert.True(t, seen[candidate.Line], "line %s missing at level %d", candidate.Line, level)
			}
		}
	}
}

func TestDeriveReplacementInfo_Warlock(t *testing.T) {
	info := catalog.DeriveReplacementInfo(testutils.WarlockCatalog())
	require.Len(t, info, 3)

	assert.Equal(t, "Bolt I", info[0].Name)
	require.NotNil(t, info[0].ReplacedAtLevel)
	assert.Equal(t, 20, *info[0].ReplacedAtLevel)

	assert.Equal(t, "Ward", info[1].Name)
	assert.Nil(t, info[1].ReplacedAtLevel)

	assert.Equal(t, "Bolt II", info[2].Name)
	assert.Nil(t, info[2].ReplacedAtLevel)
}

func TestDeriveReplacementInfo_ChainPerLine(t *testing.T) {
	doc := generatedCatalog(4, 6)
	info := catalog.DeriveReplacementInfo(doc)
	require.Len(t, info, len(doc.Spells))

	prev := -1
	byLine := map[string][]*entities.SpellWithReplacement{}
	for _, entry := range info {
		n, _ := entry.Level.Int()
		assert.GreaterOrEqual(t, n, prev, "output must be ordered by level")
		prev = n
		byLine[entry.Line] = append(byLine[entry.Line], entry)
	}

	for line, entries := range byLine {
		for i, entry := range entries {
			if i == len(entries)-1 {
				assert.Nil(t, entry.ReplacedAtLevel, "last spell of %s", line)
				continue
			}
			next, _ := entries[i+1].Level.Int()
			require.NotNil(t, entry.ReplacedAtLevel)
			assert.Equal(t, next, *entry.ReplacedAtLevel)
		}
	}
}

func TestDeriveReplacementInfo_StableForEqualLevels(t *testing.T) {
	doc := &entities.ClassCatalog{
		Spells: []*entities.Spell{
			{Name: "Zeta", Line: "z", Level: "5"},
			{Name: "Alpha", Line: "a", Level: "5"},
			{Name: "Later", Line: "a", Level: "9"},
		},
	}

	first := catalog.DeriveReplacementInfo(doc)
	second := catalog.DeriveReplacementInfo(doc)
	assert.Equal(t, first, second)
	assert.Equal(t, "Zeta", first[0].Name)
	assert.Equal(t, "Alpha", first[1].Name)
}

// generatedCatalog builds lines whose spells are listed newest first so the
// derivations cannot rely on catalog order
func generatedCatalog(lines, perLine int) *entities.ClassCatalog {
	doc := &entities.ClassCatalog{Class: "generated"}
	for l := 0; l < lines; l++ {
		for p := perLine - 1; p >= 0; p-- {
			level := 1 + l*3 + p*17
			doc.Spells = append(doc.Spells, &entities.Spell{
				Name:  fmt.Sprintf("line%d-%d", l, p),
				Line:  fmt.Sprintf("line%d", l),
				Level: entities.SpellLevel(fmt.Sprint(level)),
			})
		}
	}
	return doc
}
