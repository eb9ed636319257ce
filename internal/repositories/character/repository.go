// Package character provides persistence for the character collection.
// The whole collection lives in one document under a single key; every
// mutation is a read-modify-write of that document inside a backend
// transaction.
package character

//go:generate mockgen -destination=mock/mock_repository.go -package=charactermock github.com/KirkDiggler/spell-planner/internal/repositories/character Repository

import (
	"context"

	"github.com/KirkDiggler/spell-planner/internal/entities"
)

// DefaultKey is the namespaced key holding the character collection
const DefaultKey = "eq2-spell-planner-data"

// Repository defines the interface for character persistence
type Repository interface {
	// List returns every valid character in stored order
	// Returns an Internal-coded error for storage failures
	List(ctx context.Context) (*ListOutput, error)

	// Get retrieves a character by ID
	// Returns errors.InvalidArgument for empty IDs
	// Returns errors.NotFound if character doesn't exist
	Get(ctx context.Context, input GetInput) (*GetOutput, error)

	// FindByName retrieves the first character with the exact name
	// Returns errors.NotFound if no character has that name
	FindByName(ctx context.Context, input FindByNameInput) (*FindByNameOutput, error)

	// Save upserts a character by ID. UpdatedAt is always refreshed and
	// CreatedAt is set when the ID is new.
	// Returns errors.InvalidArgument for validation failures
	Save(ctx context.Context, input SaveInput) (*SaveOutput, error)

	// Update applies Apply to the stored character inside one transaction
	// Returns errors.NotFound if character doesn't exist
	// Returns whatever error Apply returns, leaving the store unchanged
	Update(ctx context.Context, input UpdateInput) (*UpdateOutput, error)

	// Delete removes a character by ID; deleting a missing ID is not an error
	// Returns errors.InvalidArgument for empty IDs
	Delete(ctx context.Context, input DeleteInput) (*DeleteOutput, error)

	// Clear removes the whole collection, quarantined records included
	Clear(ctx context.Context) error
}

// ListOutput defines the output for listing characters
type ListOutput struct {
	Characters []*entities.Character
	// Quarantined counts stored records that failed validation
	Quarantined int
}

// GetInput defines the input for getting a character
type GetInput struct {
	ID string
}

// GetOutput defines the output for getting a character
type GetOutput struct {
	Character *entities.Character
}

// FindByNameInput defines the input for finding a character by name
type FindByNameInput struct {
	Name string
}

// FindByNameOutput defines the output for finding a character by name
type FindByNameOutput struct {
	Character *entities.Character
}

// SaveInput defines the input for saving a character
type SaveInput struct {
	Character *entities.Character
	// ReplaceID removes another record in the same transaction
	ReplaceID string
}

// SaveOutput defines the output for saving a character
type SaveOutput struct {
	Character *entities.Character
	Created   bool
}

// UpdateInput defines the input for updating a character in place
type UpdateInput struct {
	ID    string
	Apply func(character *entities.Character) error
}

// UpdateOutput defines the output for updating a character in place
type UpdateOutput struct {
	Character *entities.Character
}

// DeleteInput defines the input for deleting a character
type DeleteInput struct {
	ID string
}

// DeleteOutput defines the output for deleting a character
type DeleteOutput struct {
	Deleted bool
}
