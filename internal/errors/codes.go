package errors

import "net/http"

// Code classifies a failure for callers and for the HTTP layer
type Code string

// Codes raised by the planner
const (
	CodeOK                 Code = "OK"
	CodeInvalidArgument    Code = "INVALID_ARGUMENT"
	CodeNotFound           Code = "NOT_FOUND"
	CodeAlreadyExists      Code = "ALREADY_EXISTS"
	CodeFailedPrecondition Code = "FAILED_PRECONDITION"
	CodeAborted            Code = "ABORTED"
	CodeCanceled           Code = "CANCELED"
	CodeUnavailable        Code = "UNAVAILABLE"
	CodeDataLoss           Code = "DATA_LOSS"
	CodeInternal           Code = "INTERNAL"
)

var httpStatus = map[Code]int{
	CodeOK:                 http.StatusOK,
	CodeInvalidArgument:    http.StatusBadRequest,
	CodeNotFound:           http.StatusNotFound,
	CodeAlreadyExists:      http.StatusConflict,
	CodeAborted:            http.StatusConflict,
	CodeFailedPrecondition: http.StatusPreconditionFailed,
	CodeCanceled:           http.StatusRequestTimeout,
	CodeUnavailable:        http.StatusServiceUnavailable,
	CodeDataLoss:           http.StatusInternalServerError,
}

func (c Code) String() string {
	return string(c)
}

// HTTPStatus returns the response status for the code. Unknown codes are
// treated as internal errors.
func (c Code) HTTPStatus() int {
	if status, ok := httpStatus[c]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// Retryable reports whether repeating the same call may succeed without
// any change from the caller: write contention and unreachable stores
func (c Code) Retryable() bool {
	return c == CodeAborted || c == CodeUnavailable
}

// Exposed reports whether the message may be shown to API clients
func (c Code) Exposed() bool {
	return c != CodeInternal
}
