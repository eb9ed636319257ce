package character

import "github.com/KirkDiggler/spell-planner/internal/entities"

// CreateInput defines the request for creating a character
type CreateInput struct {
	Name  string
	Class string
	Level int
	// SyncSpells populates the spell set right after creation
	SyncSpells bool
}

// CreateOutput defines the response for creating a character
type CreateOutput struct {
	Character *entities.Character
}

// SaveInput defines the request for upserting a character
type SaveInput struct {
	Character *entities.Character
}

// SaveOutput defines the response for upserting a character
type SaveOutput struct {
	Character *entities.Character
}

// GetInput defines the request for getting a character
type GetInput struct {
	ID string
}

// GetOutput defines the response for getting a character
type GetOutput struct {
	Character *entities.Character
}

// ListOutput defines the response for listing characters
type ListOutput struct {
	Characters []*entities.Character
}

// DeleteInput defines the request for deleting a character
type DeleteInput struct {
	ID string
}

// DeleteOutput defines the response for deleting a character
type DeleteOutput struct {
	// Deleted is false when the ID was not stored
	Deleted bool
}

// SyncSpellsInput defines the request for refreshing a character's spells
type SyncSpellsInput struct {
	ID string
}

// SyncSpellsOutput defines the response for refreshing a character's spells
type SyncSpellsOutput struct {
	Character *entities.Character
}

// SetSpellQualityInput defines the request for choosing a spell's quality
type SetSpellQualityInput struct {
	ID        string
	SpellName string
	Quality   string
}

// SetSpellQualityOutput defines the response for choosing a spell's quality
type SetSpellQualityOutput struct {
	// Character is nil when the character does not exist
	Character *entities.Character
	// Applied is false when nothing was changed
	Applied bool
}

// ApplyNoQualityDefaultsInput defines the request for forcing "none" qualities
type ApplyNoQualityDefaultsInput struct {
	ID string
}

// ApplyNoQualityDefaultsOutput defines the response for forcing "none" qualities
type ApplyNoQualityDefaultsOutput struct {
	Character *entities.Character
	// Changed counts spells whose quality was switched to "none"
	Changed int
}

// QualityOfInput defines the request for a spell's quality
type QualityOfInput struct {
	ID        string
	SpellName string
}

// QualityOfOutput defines the response for a spell's quality
type QualityOfOutput struct {
	Quality entities.SpellQuality
}

// UpdateCharacterInput defines the request for editing a character
type UpdateCharacterInput struct {
	ID    string
	Name  string
	Class string
	Level int
}

// UpdateCharacterOutput defines the response for editing a character
type UpdateCharacterOutput struct {
	Character *entities.Character
}

// LevelUpInput defines the request for raising a character one level
type LevelUpInput struct {
	ID string
}

// LevelUpOutput defines the response for raising a character one level
type LevelUpOutput struct {
	Character *entities.Character
}

// ExportInput defines the request for exporting a character
type ExportInput struct {
	ID string
}

// ExportOutput defines the response for exporting a character
type ExportOutput struct {
	Document *entities.ExportDocument
}

// ImportInput defines the request for importing an exported character
type ImportInput struct {
	Document *entities.ExportDocument
	// Overwrite replaces an existing character with the same name
	Overwrite bool
}

// ImportOutput defines the response for importing an exported character
type ImportOutput struct {
	Character *entities.Character
	// ReplacedID is the ID of the overwritten character, if any
	ReplacedID string
}

// SpellViewInput defines the request for a filtered spell list
type SpellViewInput struct {
	// ClassName defaults to the character's class
	ClassName string
	// CharacterID enables quality and outlevelled information
	CharacterID string
	// HiddenQualities drops spells whose quality is listed
	HiddenQualities []string
	// MaxLevel drops spells above it; zero disables the filter
	MaxLevel int
	// HideOutlevelled drops spells the character has outgrown
	HideOutlevelled bool
}

// SpellViewRow is one spell of the filtered list
type SpellViewRow struct {
	*entities.SpellWithReplacement
	// Quality is only set for a character view
	Quality     *entities.SpellQuality `json:"quality,omitempty"`
	Outlevelled bool                   `json:"outlevelled"`
}

// SpellViewOutput defines the response for a filtered spell list
type SpellViewOutput struct {
	Class     string
	Character *entities.Character
	Rows      []*SpellViewRow
	// NoneQualitySpells names the class spells the character set to "none"
	NoneQualitySpells []string
}
