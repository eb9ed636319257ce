package character

import (
	"context"
	stderrors "errors"
	"log/slog"
	"time"

	"github.com/KirkDiggler/spell-planner/internal/entities"
	"github.com/KirkDiggler/spell-planner/internal/errors"
	"github.com/KirkDiggler/spell-planner/internal/pkg/clock"
)

const (
	errCharacterNil     = "character cannot be nil"
	errCharacterIDEmpty = "character ID cannot be empty"
	errApplyNil         = "apply function cannot be nil"
)

// Config contains configuration for a character repository over any backend
type Config struct {
	Backend Backend
	Clock   clock.Clock
}

// Validate validates the Config
func (cfg *Config) Validate() error {
	if cfg == nil {
		return errors.InvalidArgument("config cannot be nil")
	}
	if cfg.Backend == nil {
		return errors.InvalidArgument("backend cannot be nil")
	}
	return nil
}

// errUnchanged aborts a mutation without writing
var errUnchanged = stderrors.New("collection unchanged")

type repository struct {
	backend Backend
	clock   clock.Clock
}

// New creates a character repository over the configured backend
func New(cfg *Config) (Repository, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := cfg.Clock
	if c == nil {
		c = clock.New()
	}

	return &repository{
		backend: cfg.Backend,
		clock:   c,
	}, nil
}

func (r *repository) load(ctx context.Context) (*collection, error) {
	data, err := r.backend.Load(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load characters")
	}
	return decodeCollection(ctx, data), nil
}

// mutate runs fn against the freshly read collection and writes the result.
// now is read once per mutation and is the write time of every change.
// An unreadable document is never overwritten; Clear is the way out.
func (r *repository) mutate(ctx context.Context, fn func(col *collection, now time.Time) error) error {
	now := r.clock.Now()
	err := r.backend.Transact(ctx, now, func(current []byte) ([]byte, error) {
		col := decodeCollection(ctx, current)
		if col.unreadable != nil {
			slog.ErrorContext(ctx, "refusing to overwrite unreadable character data",
				errors.LogAttrs(col.unreadable)...)
			return nil, col.unreadable
		}
		if err := fn(col, now); err != nil {
			return nil, err
		}
		return col.encode()
	})
	if stderrors.Is(err, errUnchanged) {
		return nil
	}
	if err != nil {
		if errors.GetCode(err) != errors.CodeInternal {
			return err
		}
		return errors.Wrap(err, "failed to write characters")
	}
	return nil
}

func (r *repository) List(ctx context.Context) (*ListOutput, error) {
	col, err := r.load(ctx)
	if err != nil {
		return nil, err
	}

	return &ListOutput{
		Characters:  col.characters(),
		Quarantined: col.quarantined(),
	}, nil
}

func (r *repository) Get(ctx context.Context, input GetInput) (*GetOutput, error) {
	if input.ID == "" {
		return nil, errors.InvalidArgument(errCharacterIDEmpty)
	}

	col, err := r.load(ctx)
	if err != nil {
		return nil, err
	}

	char := col.find(input.ID)
	if char == nil {
		return nil, errors.CharacterNotFound(input.ID)
	}

	return &GetOutput{Character: char}, nil
}

func (r *repository) FindByName(ctx context.Context, input FindByNameInput) (*FindByNameOutput, error) {
	if input.Name == "" {
		return nil, errors.InvalidArgument("character name cannot be empty")
	}

	col, err := r.load(ctx)
	if err != nil {
		return nil, err
	}

	char := col.findByName(input.Name)
	if char == nil {
		return nil, errors.NotFoundf("character named %q not found", input.Name)
	}

	return &FindByNameOutput{Character: char}, nil
}

func (r *repository) Save(ctx context.Context, input SaveInput) (*SaveOutput, error) {
	if input.Character == nil {
		return nil, errors.InvalidArgument(errCharacterNil)
	}
	if input.Character.ID == "" {
		return nil, errors.InvalidArgument(errCharacterIDEmpty)
	}

	var (
		saved   *entities.Character
		created bool
	)
	err := r.mutate(ctx, func(col *collection, now time.Time) error {
		if input.ReplaceID != "" && input.ReplaceID != input.Character.ID {
			col.remove(input.ReplaceID)
		}

		char := input.Character.Clone()
		if char.Spells == nil {
			char.Spells = []*entities.CharacterSpell{}
		}
		char.UpdatedAt = now

		existing := col.find(char.ID)
		created = existing == nil
		if created {
			char.CreatedAt = now
		}

		col.upsert(char)
		saved = char
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.DebugContext(ctx, "saved character",
		"character_id", saved.ID,
		"created", created)

	return &SaveOutput{Character: saved.Clone(), Created: created}, nil
}

func (r *repository) Update(ctx context.Context, input UpdateInput) (*UpdateOutput, error) {
	if input.ID == "" {
		return nil, errors.InvalidArgument(errCharacterIDEmpty)
	}
	if input.Apply == nil {
		return nil, errors.InvalidArgument(errApplyNil)
	}

	var updated *entities.Character
	err := r.mutate(ctx, func(col *collection, now time.Time) error {
		existing := col.find(input.ID)
		if existing == nil {
			return errors.CharacterNotFound(input.ID)
		}

		char := existing.Clone()
		if err := input.Apply(char); err != nil {
			return err
		}
		char.ID = existing.ID
		char.CreatedAt = existing.CreatedAt
		char.UpdatedAt = now

		col.upsert(char)
		updated = char
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &UpdateOutput{Character: updated.Clone()}, nil
}

func (r *repository) Delete(ctx context.Context, input DeleteInput) (*DeleteOutput, error) {
	if input.ID == "" {
		return nil, errors.InvalidArgument(errCharacterIDEmpty)
	}

	var deleted bool
	err := r.mutate(ctx, func(col *collection, _ time.Time) error {
		deleted = col.remove(input.ID)
		if !deleted {
			return errUnchanged
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &DeleteOutput{Deleted: deleted}, nil
}

func (r *repository) Clear(ctx context.Context) error {
	err := r.backend.Transact(ctx, r.clock.Now(), func([]byte) ([]byte, error) {
		return nil, nil
	})
	if err != nil {
		return errors.Wrap(err, "failed to clear characters")
	}

	slog.InfoContext(ctx, "cleared all character data")
	return nil
}
