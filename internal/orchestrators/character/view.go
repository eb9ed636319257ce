package character

import (
	"context"

	"github.com/KirkDiggler/spell-planner/internal/entities"
	"github.com/KirkDiggler/spell-planner/internal/errors"
	"github.com/KirkDiggler/spell-planner/internal/orchestrators/catalog"
	characterrepo "github.com/KirkDiggler/spell-planner/internal/repositories/character"
)

// DefaultViewMaxLevel is the level cap the spell list starts with
const DefaultViewMaxLevel = 70

// SpellView lists a class's spells with replacement levels, optionally in
// the context of a character, and applies the spell list filters
func (o *orchestrator) SpellView(ctx context.Context, input *SpellViewInput) (*SpellViewOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if input.MaxLevel < 0 {
		return nil, errors.InvalidArgument("max level cannot be negative")
	}

	var char *entities.Character
	if input.CharacterID != "" {
		got, err := o.repo.Get(ctx, characterrepo.GetInput{ID: input.CharacterID})
		if err != nil {
			return nil, err
		}
		char = got.Character
	}

	class := input.ClassName
	if class == "" && char != nil {
		class = char.Class
	}
	if class == "" {
		return nil, errors.InvalidArgument("class name or character ID is required")
	}

	listed, err := o.catalog.ListSpellsWithReplacement(ctx, &catalog.ListSpellsWithReplacementInput{ClassName: class})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list spells for %s", class)
	}

	hidden := make(map[string]bool, len(input.HiddenQualities))
	for _, q := range input.HiddenQualities {
		hidden[q] = true
	}

	out := &SpellViewOutput{
		Class:             class,
		Character:         char,
		Rows:              make([]*SpellViewRow, 0, len(listed.Spells)),
		NoneQualitySpells: []string{},
	}
	for _, spell := range listed.Spells {
		row := &SpellViewRow{SpellWithReplacement: spell}
		if char != nil {
			quality := entities.DefaultQuality()
			if tracked := char.FindSpell(spell.Name); tracked != nil {
				quality = tracked.Quality
				if quality.Name == entities.QualityNone {
					out.NoneQualitySpells = append(out.NoneQualitySpells, spell.Name)
				}
			}
			row.Quality = &quality
			row.Outlevelled = spell.IsOutlevelled(char.Level)
		}

		if row.Quality != nil && hidden[row.Quality.Name] {
			continue
		}
		if input.MaxLevel > 0 {
			// unparsable levels never pass the cap
			if n, ok := spell.Level.Int(); !ok || n > input.MaxLevel {
				continue
			}
		}
		if input.HideOutlevelled && row.Outlevelled {
			continue
		}
		out.Rows = append(out.Rows, row)
	}

	return out, nil
}
