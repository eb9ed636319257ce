package character

import (
	"context"
	"log/slog"
	"strings"

	"github.com/KirkDiggler/spell-planner/internal/entities"
	"github.com/KirkDiggler/spell-planner/internal/errors"
	characterrepo "github.com/KirkDiggler/spell-planner/internal/repositories/character"
)

// Export wraps a stored character in a versioned export document
func (o *orchestrator) Export(ctx context.Context, input *ExportInput) (*ExportOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	got, err := o.repo.Get(ctx, characterrepo.GetInput{ID: input.ID})
	if err != nil {
		return nil, err
	}

	return &ExportOutput{Document: &entities.ExportDocument{
		Character:  got.Character,
		ExportDate: o.clock.Now(),
		Version:    entities.ExportVersion,
	}}, nil
}

// Import stores an exported character under a fresh ID. A character with
// the same name blocks the import unless Overwrite is set, in which case it
// is replaced in the same write.
func (o *orchestrator) Import(ctx context.Context, input *ImportInput) (*ImportOutput, error) {
	if input == nil || input.Document == nil || input.Document.Character == nil {
		return nil, errors.InvalidArgument("document does not contain a character")
	}
	doc := input.Document
	src := doc.Character

	vb := errors.NewValidationBuilder()
	errors.ValidateRequired("character.name", src.Name, vb)
	errors.ValidateRequired("character.class", src.Class, vb)
	level := src.Level
	if level == 0 {
		level = entities.MinCharacterLevel
	}
	errors.ValidateRange("character.level", level, entities.MinCharacterLevel, entities.MaxCharacterLevel, vb)
	if err := vb.Build(); err != nil {
		return nil, err
	}

	if doc.Version != "" && doc.Version != entities.ExportVersion {
		slog.WarnContext(ctx, "importing character from a different export version",
			"version", doc.Version,
			"expected", entities.ExportVersion)
	}

	var replaceID string
	existing, err := o.repo.FindByName(ctx, characterrepo.FindByNameInput{Name: src.Name})
	switch {
	case err == nil && !input.Overwrite:
		return nil, errors.AlreadyExistsf("a character named %q already exists", src.Name).
			WithMeta(errors.MetaCharacterID, existing.Character.ID)
	case err == nil:
		replaceID = existing.Character.ID
	case !errors.IsNotFound(err):
		return nil, errors.Wrap(err, "failed to check for existing character")
	}

	spells := make([]*entities.CharacterSpell, 0, len(src.Spells))
	for _, spell := range src.Spells {
		if spell != nil {
			cp := *spell
			spells = append(spells, &cp)
		}
	}

	char := &entities.Character{
		ID:     o.idGen.Generate(),
		Name:   src.Name,
		Class:  strings.ToLower(strings.TrimSpace(src.Class)),
		Level:  level,
		Spells: normalizeSpells(ctx, spells),
	}

	saved, err := o.repo.Save(ctx, characterrepo.SaveInput{Character: char, ReplaceID: replaceID})
	if err != nil {
		return nil, errors.Wrap(err, "failed to import character")
	}

	slog.InfoContext(ctx, "imported character",
		"character_id", saved.Character.ID,
		"replaced_id", replaceID,
		"spells", len(saved.Character.Spells))

	return &ImportOutput{Character: saved.Character, ReplacedID: replaceID}, nil
}
