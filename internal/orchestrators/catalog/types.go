package catalog

import "github.com/KirkDiggler/spell-planner/internal/entities"

// LoadClassCatalogInput defines the request for loading a class catalog
type LoadClassCatalogInput struct {
	ClassName string
}

// LoadClassCatalogOutput defines the response for loading a class catalog.
// Catalog is never nil; a class whose data could not be fetched has no spells.
type LoadClassCatalogOutput struct {
	Catalog *entities.ClassCatalog
}

// ListSpellsWithReplacementInput defines the request for the replacement view
type ListSpellsWithReplacementInput struct {
	ClassName string
}

// ListSpellsWithReplacementOutput defines the response for the replacement view
type ListSpellsWithReplacementOutput struct {
	Spells []*entities.SpellWithReplacement
}

// ListKnownSpellsInput defines the request for the spells known at a level
type ListKnownSpellsInput struct {
	ClassName string
	Level     int
}

// ListKnownSpellsOutput defines the response for the spells known at a level
type ListKnownSpellsOutput struct {
	Spells []*entities.CharacterSpell
}

// ListSpellsAtLevelInput defines the request for every spell available at a level
type ListSpellsAtLevelInput struct {
	ClassName string
	Level     int
}

// ListSpellsAtLevelOutput defines the response for every spell available at a level
type ListSpellsAtLevelOutput struct {
	Spells []*entities.Spell
}

// PreloadInput defines the request for warming the catalog cache
type PreloadInput struct {
	// ClassNames defaults to every available class when empty
	ClassNames []string
}

// PreloadOutput reports how many spells each class loaded
type PreloadOutput struct {
	SpellCounts map[string]int
}

// InvalidateInput defines the request for dropping cached catalogs
type InvalidateInput struct {
	// ClassName drops a single class; empty drops every cached class
	ClassName string
}
