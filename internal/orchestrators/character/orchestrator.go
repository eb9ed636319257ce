// Package character implements the character store: character lifecycle,
// spell synchronization against the class catalog and quality tracking.
package character

import (
	"context"
	stderrors "errors"
	"log/slog"
	"strings"

	"github.com/KirkDiggler/spell-planner/internal/entities"
	"github.com/KirkDiggler/spell-planner/internal/errors"
	"github.com/KirkDiggler/spell-planner/internal/orchestrators/catalog"
	"github.com/KirkDiggler/spell-planner/internal/pkg/clock"
	"github.com/KirkDiggler/spell-planner/internal/pkg/idgen"
	characterrepo "github.com/KirkDiggler/spell-planner/internal/repositories/character"
)

// maxClassRetries bounds re-reads when a character's class changes between
// loading its catalog and writing it
const maxClassRetries = 3

var (
	errClassChanged = stderrors.New("character class changed during update")
	errNothingToDo  = stderrors.New("nothing to change")
)

// Service defines the character store operations
type Service interface {
	Create(ctx context.Context, input *CreateInput) (*CreateOutput, error)
	Save(ctx context.Context, input *SaveInput) (*SaveOutput, error)
	Get(ctx context.Context, input *GetInput) (*GetOutput, error)
	List(ctx context.Context) (*ListOutput, error)
	Delete(ctx context.Context, input *DeleteInput) (*DeleteOutput, error)

	SyncSpells(ctx context.Context, input *SyncSpellsInput) (*SyncSpellsOutput, error)
	SetSpellQuality(ctx context.Context, input *SetSpellQualityInput) (*SetSpellQualityOutput, error)
	ApplyNoQualityDefaults(ctx context.Context, input *ApplyNoQualityDefaultsInput) (*ApplyNoQualityDefaultsOutput, error)
	QualityOf(ctx context.Context, input *QualityOfInput) (*QualityOfOutput, error)

	UpdateCharacter(ctx context.Context, input *UpdateCharacterInput) (*UpdateCharacterOutput, error)
	LevelUp(ctx context.Context, input *LevelUpInput) (*LevelUpOutput, error)
	Export(ctx context.Context, input *ExportInput) (*ExportOutput, error)
	Import(ctx context.Context, input *ImportInput) (*ImportOutput, error)
	SpellView(ctx context.Context, input *SpellViewInput) (*SpellViewOutput, error)

	// Clear removes every stored character
	Clear(ctx context.Context) error
}

// Config holds the dependencies for the character orchestrator
type Config struct {
	Repository  characterrepo.Repository
	Catalog     catalog.Service
	IDGenerator idgen.Generator
	Clock       clock.Clock
}

// Validate ensures all required dependencies are provided
func (c *Config) Validate() error {
	if c == nil {
		return errors.InvalidArgument("config cannot be nil")
	}

	vb := errors.NewValidationBuilder()
	if c.Repository == nil {
		vb.RequiredField("Repository")
	}
	if c.Catalog == nil {
		vb.RequiredField("Catalog")
	}
	return vb.Build()
}

type orchestrator struct {
	repo    characterrepo.Repository
	catalog catalog.Service
	idGen   idgen.Generator
	clock   clock.Clock
}

// NewOrchestrator creates a new character orchestrator
func NewOrchestrator(cfg *Config) (Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	idGen := cfg.IDGenerator
	if idGen == nil {
		idGen = idgen.NewUUID(idgen.CharacterPrefix)
	}
	c := cfg.Clock
	if c == nil {
		c = clock.New()
	}

	return &orchestrator{
		repo:    cfg.Repository,
		catalog: cfg.Catalog,
		idGen:   idGen,
		clock:   c,
	}, nil
}

func (o *orchestrator) validateProfile(name, class string, level int) error {
	vb := errors.NewValidationBuilder()
	errors.ValidateRequired("name", name, vb)
	errors.ValidateRequired("class", class, vb)
	if level == 0 {
		vb.RequiredField("level")
	} else {
		errors.ValidateRange("level", level, entities.MinCharacterLevel, entities.MaxCharacterLevel, vb)
	}
	if strings.TrimSpace(class) != "" && !o.catalog.IsKnownClass(class) {
		errors.ValidateEnum("class", class, o.catalog.ListAvailableClasses(), vb)
	}
	return vb.Build()
}

func (o *orchestrator) Create(ctx context.Context, input *CreateInput) (*CreateOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if err := o.validateProfile(input.Name, input.Class, input.Level); err != nil {
		return nil, err
	}

	now := o.clock.Now()
	char := &entities.Character{
		ID:        o.idGen.Generate(),
		Name:      strings.TrimSpace(input.Name),
		Class:     strings.ToLower(strings.TrimSpace(input.Class)),
		Level:     input.Level,
		Spells:    []*entities.CharacterSpell{},
		CreatedAt: now,
		UpdatedAt: now,
	}

	saved, err := o.repo.Save(ctx, characterrepo.SaveInput{Character: char})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create character")
	}

	slog.InfoContext(ctx, "created character",
		"character_id", saved.Character.ID,
		"class", saved.Character.Class,
		"level", saved.Character.Level)

	if !input.SyncSpells {
		return &CreateOutput{Character: saved.Character}, nil
	}

	synced, err := o.SyncSpells(ctx, &SyncSpellsInput{ID: saved.Character.ID})
	if err != nil {
		return nil, err
	}
	return &CreateOutput{Character: synced.Character}, nil
}

func (o *orchestrator) Save(ctx context.Context, input *SaveInput) (*SaveOutput, error) {
	if input == nil || input.Character == nil {
		return nil, errors.InvalidArgument("character is required")
	}

	vb := errors.NewValidationBuilder()
	errors.ValidateRequired("id", input.Character.ID, vb)
	errors.ValidateRequired("name", input.Character.Name, vb)
	errors.ValidateRequired("class", input.Character.Class, vb)
	errors.ValidateRange("level", input.Character.Level, entities.MinCharacterLevel, entities.MaxCharacterLevel, vb)
	if err := vb.Build(); err != nil {
		return nil, err
	}

	char := input.Character.Clone()
	char.Spells = normalizeSpells(ctx, char.Spells)

	saved, err := o.repo.Save(ctx, characterrepo.SaveInput{Character: char})
	if err != nil {
		return nil, errors.Wrap(err, "failed to save character")
	}
	return &SaveOutput{Character: saved.Character}, nil
}

func (o *orchestrator) Get(ctx context.Context, input *GetInput) (*GetOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	got, err := o.repo.Get(ctx, characterrepo.GetInput{ID: input.ID})
	if err != nil {
		return nil, err
	}
	return &GetOutput{Character: got.Character}, nil
}

func (o *orchestrator) List(ctx context.Context) (*ListOutput, error) {
	listed, err := o.repo.List(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list characters")
	}
	if listed.Quarantined > 0 {
		slog.WarnContext(ctx, "some stored characters are invalid and hidden",
			"quarantined", listed.Quarantined)
	}
	return &ListOutput{Characters: listed.Characters}, nil
}

func (o *orchestrator) Delete(ctx context.Context, input *DeleteInput) (*DeleteOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	out, err := o.repo.Delete(ctx, characterrepo.DeleteInput{ID: input.ID})
	if err != nil {
		return nil, errors.Wrap(err, "failed to delete character")
	}
	if out.Deleted {
		slog.InfoContext(ctx, "deleted character", "character_id", input.ID)
	}
	return &DeleteOutput{Deleted: out.Deleted}, nil
}

// updateWithCatalog loads the catalog for the character's class, then
// applies fn inside a repository transaction. The class is re-checked
// inside the transaction and the whole step retried if it changed.
func (o *orchestrator) updateWithCatalog(
	ctx context.Context,
	id string,
	fn func(char *entities.Character, doc *entities.ClassCatalog) error,
) (*entities.Character, error) {
	for attempt := 1; attempt <= maxClassRetries; attempt++ {
		got, err := o.repo.Get(ctx, characterrepo.GetInput{ID: id})
		if err != nil {
			return nil, err
		}
		class := got.Character.Class

		loaded, err := o.catalog.LoadClassCatalog(ctx, &catalog.LoadClassCatalogInput{ClassName: class})
		if err != nil {
			return nil, errors.Wrapf(err, "failed to load catalog for %s", class)
		}

		updated, err := o.repo.Update(ctx, characterrepo.UpdateInput{
			ID: id,
			Apply: func(char *entities.Character) error {
				if !strings.EqualFold(char.Class, class) {
					return errClassChanged
				}
				return fn(char, loaded.Catalog)
			},
		})
		if stderrors.Is(err, errClassChanged) {
			slog.DebugContext(ctx, "character class changed during update, retrying",
				"character_id", id,
				"attempt", attempt)
			continue
		}
		if err != nil {
			return nil, err
		}
		return updated.Character, nil
	}

	return nil, errors.Abortedf("character %s kept changing class", id).
		WithMeta(errors.MetaCharacterID, id)
}

// SyncSpells replaces the spell set with the spells known at the current
// class and level. Qualities of spells that stay known are kept; spells that
// are no longer known are dropped with their qualities.
func (o *orchestrator) SyncSpells(ctx context.Context, input *SyncSpellsInput) (*SyncSpellsOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	char, err := o.updateWithCatalog(ctx, input.ID, func(char *entities.Character, doc *entities.ClassCatalog) error {
		known := catalog.DeriveKnownSpells(doc, char.Level)
		for _, spell := range known {
			if existing := char.FindSpell(spell.Name); existing != nil {
				spell.Quality = existing.Quality
			}
		}
		char.Spells = known
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to sync spells for character %s", input.ID)
	}

	slog.DebugContext(ctx, "synced character spells",
		"character_id", char.ID,
		"level", char.Level,
		"spells", len(char.Spells))

	return &SyncSpellsOutput{Character: char}, nil
}

// SetSpellQuality sets the quality of one spell, adding it from the class
// catalog when the character does not track it yet. A missing character or
// a spell outside the catalog leaves the store untouched.
func (o *orchestrator) SetSpellQuality(ctx context.Context, input *SetSpellQualityInput) (*SetSpellQualityOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	vb := errors.NewValidationBuilder()
	errors.ValidateRequired("id", input.ID, vb)
	errors.ValidateRequired("spell_name", input.SpellName, vb)
	errors.ValidateEnum("quality", input.Quality, entities.QualityNames(), vb)
	if err := vb.Build(); err != nil {
		return nil, err
	}
	quality, ok := entities.LookupQuality(strings.ToLower(input.Quality))
	if !ok {
		return nil, errors.InvalidArgumentf("unknown quality %q", input.Quality)
	}

	char, err := o.updateWithCatalog(ctx, input.ID, func(char *entities.Character, doc *entities.ClassCatalog) error {
		if existing := char.FindSpell(input.SpellName); existing != nil {
			existing.Quality = quality
			return nil
		}

		spell := doc.FindSpell(input.SpellName)
		if spell == nil {
			return errNothingToDo
		}
		char.Spells = append(char.Spells, &entities.CharacterSpell{Spell: *spell, Quality: quality})
		return nil
	})
	switch {
	case errors.IsNotFound(err) || stderrors.Is(err, errNothingToDo):
		slog.DebugContext(ctx, "spell quality not applied",
			"character_id", input.ID,
			"spell", input.SpellName)
		return &SetSpellQualityOutput{}, nil
	case err != nil:
		return nil, errors.Wrap(err, "failed to set spell quality")
	}

	return &SetSpellQualityOutput{Character: char, Applied: true}, nil
}

// ApplyNoQualityDefaults forces "none" on tracked spells the class catalog
// lists as having no quality
func (o *orchestrator) ApplyNoQualityDefaults(
	ctx context.Context,
	input *ApplyNoQualityDefaultsInput,
) (*ApplyNoQualityDefaultsOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	var changed int
	char, err := o.updateWithCatalog(ctx, input.ID, func(char *entities.Character, doc *entities.ClassCatalog) error {
		changed = 0
		none := entities.NoneQuality()
		for _, spell := range char.Spells {
			if doc.IsNoQuality(spell.Name) && spell.Quality.Name != none.Name {
				spell.Quality = none
				changed++
			}
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to apply no-quality defaults for character %s", input.ID)
	}

	slog.InfoContext(ctx, "applied no-quality defaults",
		"character_id", char.ID,
		"changed", changed)

	return &ApplyNoQualityDefaultsOutput{Character: char, Changed: changed}, nil
}

func (o *orchestrator) QualityOf(ctx context.Context, input *QualityOfInput) (*QualityOfOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	got, err := o.repo.Get(ctx, characterrepo.GetInput{ID: input.ID})
	if errors.IsNotFound(err) {
		return &QualityOfOutput{Quality: entities.DefaultQuality()}, nil
	}
	if err != nil {
		return nil, err
	}

	if spell := got.Character.FindSpell(input.SpellName); spell != nil {
		return &QualityOfOutput{Quality: spell.Quality}, nil
	}
	return &QualityOfOutput{Quality: entities.DefaultQuality()}, nil
}

// UpdateCharacter edits the profile fields and then resyncs spells
func (o *orchestrator) UpdateCharacter(ctx context.Context, input *UpdateCharacterInput) (*UpdateCharacterOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if err := o.validateProfile(input.Name, input.Class, input.Level); err != nil {
		return nil, err
	}

	_, err := o.repo.Update(ctx, characterrepo.UpdateInput{
		ID: input.ID,
		Apply: func(char *entities.Character) error {
			char.Name = strings.TrimSpace(input.Name)
			char.Class = strings.ToLower(strings.TrimSpace(input.Class))
			char.Level = input.Level
			return nil
		},
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to update character %s", input.ID)
	}

	synced, err := o.SyncSpells(ctx, &SyncSpellsInput{ID: input.ID})
	if err != nil {
		return nil, err
	}
	return &UpdateCharacterOutput{Character: synced.Character}, nil
}

// LevelUp raises the character one level and resyncs spells
func (o *orchestrator) LevelUp(ctx context.Context, input *LevelUpInput) (*LevelUpOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	_, err := o.repo.Update(ctx, characterrepo.UpdateInput{
		ID: input.ID,
		Apply: func(char *entities.Character) error {
			if char.Level >= entities.MaxCharacterLevel {
				return errors.FailedPreconditionf("character is already at max level %d", entities.MaxCharacterLevel).
					WithMeta(errors.MetaCharacterID, char.ID)
			}
			char.Level++
			return nil
		},
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to level up character %s", input.ID)
	}

	synced, err := o.SyncSpells(ctx, &SyncSpellsInput{ID: input.ID})
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "character leveled up",
		"character_id", input.ID,
		"level", synced.Character.Level)

	return &LevelUpOutput{Character: synced.Character}, nil
}

// Clear removes every stored character
func (o *orchestrator) Clear(ctx context.Context) error {
	if err := o.repo.Clear(ctx); err != nil {
		return errors.Wrap(err, "failed to clear characters")
	}
	return nil
}

// normalizeSpells drops unnamed and duplicate spells and maps qualities to
// the quality table
func normalizeSpells(ctx context.Context, spells []*entities.CharacterSpell) []*entities.CharacterSpell {
	out := make([]*entities.CharacterSpell, 0, len(spells))
	seen := make(map[string]bool, len(spells))
	for _, spell := range spells {
		if spell == nil || spell.Name == "" || seen[spell.Name] {
			continue
		}
		seen[spell.Name] = true

		quality, ok := entities.LookupQuality(spell.Quality.Name)
		if !ok {
			slog.WarnContext(ctx, "unknown spell quality, using default",
				"spell", spell.Name,
				"quality", spell.Quality.Name)
			quality = entities.DefaultQuality()
		}
		spell.Quality = quality
		out = append(out, spell)
	}
	return out
}
