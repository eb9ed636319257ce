package errors

import "errors"

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// GetCode returns the code of the outermost *Error, OK for nil and
// Internal for foreign errors
func GetCode(err error) Code {
	if err == nil {
		return CodeOK
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}

func GetMeta(err error) map[string]any {
	var e *Error
	if errors.As(err, &e) {
		return e.Meta
	}
	return nil
}

// GetMessage returns the message meant for callers
func GetMessage(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

func IsNotFound(err error) bool {
	return GetCode(err) == CodeNotFound
}

func IsInvalidArgument(err error) bool {
	return GetCode(err) == CodeInvalidArgument
}

func IsAlreadyExists(err error) bool {
	return GetCode(err) == CodeAlreadyExists
}

func IsFailedPrecondition(err error) bool {
	return GetCode(err) == CodeFailedPrecondition
}

func IsAborted(err error) bool {
	return GetCode(err) == CodeAborted
}

func IsCanceled(err error) bool {
	return GetCode(err) == CodeCanceled
}

func IsUnavailable(err error) bool {
	return GetCode(err) == CodeUnavailable
}

func IsDataLoss(err error) bool {
	return GetCode(err) == CodeDataLoss
}
