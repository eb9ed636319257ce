package testutils

import (
	"time"

	"github.com/KirkDiggler/spell-planner/internal/entities"
)

// FixedTime is the start of every deterministic test clock
var FixedTime = time.Date(2025, time.March, 14, 12, 0, 0, 0, time.UTC)

// WarlockCatalog returns a small catalog with two lines, one of them
// upgraded at level 20
func WarlockCatalog() *entities.ClassCatalog {
	return &entities.ClassCatalog{
		Class: "warlock",
		Spells: []*entities.Spell{
			{Name: "Bolt I", Line: "bolt", Level: "1"},
			{Name: "Bolt II", Line: "bolt", Level: "20"},
			{Name: "Ward", Line: "ward", Level: "10"},
		},
	}
}

// WarlockCatalogNoQualityWard is WarlockCatalog with Ward exempt from quality
func WarlockCatalogNoQualityWard() *entities.ClassCatalog {
	c := WarlockCatalog()
	c.NoQuality = []string{"Ward"}
	return c
}

// CreateTestCharacter returns a stored-shape character with no spells
func CreateTestCharacter(id, name, class string, level int) *entities.Character {
	return &entities.Character{
		ID:        id,
		Name:      name,
		Class:     class,
		Level:     level,
		Spells:    []*entities.CharacterSpell{},
		CreatedAt: FixedTime,
		UpdatedAt: FixedTime,
	}
}
