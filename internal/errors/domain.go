package errors

import (
	"context"
	"errors"
)

// Metadata keys shared by the store, the orchestrators and the API
const (
	MetaCharacterID = "character_id"
	MetaRecordIndex = "record_index"
	MetaReason      = "reason"
	MetaBytes       = "bytes"
)

// CharacterNotFound reports a missing character id
func CharacterNotFound(id string) *Error {
	return NotFoundf("character with ID %s not found", id).WithMeta(MetaCharacterID, id)
}

// Canceled wraps a context error. DeadlineExceeded is reported as
// Unavailable since the work itself did not finish in time.
func Canceled(err error, message string) *Error {
	if errors.Is(err, context.DeadlineExceeded) {
		return WrapWithCode(err, CodeUnavailable, message)
	}
	return WrapWithCode(err, CodeCanceled, message)
}

// QuarantinedRecord describes a stored character record that failed
// validation and is kept verbatim instead of being loaded
func QuarantinedRecord(index int, reason string) *Error {
	return Newf(CodeDataLoss, "character record %d is invalid: %s", index, reason).
		WithMeta(MetaRecordIndex, index).
		WithMeta(MetaReason, reason)
}

// UnreadableStore reports a stored collection that is not a JSON array.
// Writes are refused until the store is cleared so the bytes survive.
func UnreadableStore(cause error, size int) *Error {
	return WrapWithCode(cause, CodeDataLoss,
		"stored character data is unreadable, clear the store before writing").
		WithMeta(MetaBytes, size)
}

// LogAttrs flattens err into slog key/value pairs: code, error and every
// metadata entry
func LogAttrs(err error) []any {
	if err == nil {
		return nil
	}
	attrs := []any{"code", GetCode(err).String(), "error", err.Error()}
	for k, v := range GetMeta(err) {
		attrs = append(attrs, k, v)
	}
	return attrs
}
