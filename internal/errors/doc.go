// Package errors provides the coded errors used across the spell planner.
//
// An Error carries a Code, a caller-facing Message, an optional Cause and
// metadata such as character_id. Wrap keeps the code of a wrapped Error,
// so a NotFound raised by the store is still a NotFound after the
// orchestrator adds context:
//
//	if err := repo.Update(ctx, input); err != nil {
//	    return errors.Wrap(err, "failed to sync spells")
//	}
//
// The character store reports missing ids with CharacterNotFound, invalid
// stored records with QuarantinedRecord and an unreadable document with
// UnreadableStore. Catalog fetch failures never leave the catalog
// orchestrator; they are logged with LogAttrs and replaced by an empty
// catalog. The HTTP layer maps codes with Code.HTTPStatus and hides the
// message of internal errors.
//
// Validation collects field problems into one InvalidArgument error:
//
//	vb := errors.NewValidationBuilder()
//	errors.ValidateRequired("name", input.Name, vb)
//	errors.ValidateRange("level", input.Level, 1, 125, vb)
//	if err := vb.Build(); err != nil {
//	    return err
//	}
package errors
