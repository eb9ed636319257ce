package errors_test

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/KirkDiggler/spell-planner/internal/errors"
)

type ErrorsTestSuite struct {
	suite.Suite
}

func TestErrorsSuite(t *testing.T) {
	suite.Run(t, new(ErrorsTestSuite))
}

func (s *ErrorsTestSuite) TestErrorString() {
	s.Equal("NOT_FOUND: character not found", errors.NotFound("character not found").Error())

	wrapped := errors.Wrap(fmt.Errorf("connection refused"), "failed to load characters")
	s.Equal("INTERNAL: failed to load characters: connection refused", wrapped.Error())
}

func (s *ErrorsTestSuite) TestWrapKeepsCodeAndCopiesMeta() {
	base := errors.CharacterNotFound("char_1")
	wrapped := errors.Wrapf(base, "failed to sync %s", "char_1")
	wrapped.WithMeta("spell", "Ward")

	s.Equal(errors.CodeNotFound, wrapped.Code)
	s.Equal("char_1", errors.GetMeta(wrapped)[errors.MetaCharacterID])
	s.NotContains(base.Meta, "spell")
	s.Same(base, wrapped.Unwrap())
}

func (s *ErrorsTestSuite) TestWrapWithCode() {
	base := errors.QuarantinedRecord(2, "missing class")
	wrapped := errors.WrapWithCode(base, errors.CodeAborted, "gave up")

	s.Equal(errors.CodeAborted, wrapped.Code)
	s.Equal(2, wrapped.Meta[errors.MetaRecordIndex])
}

func (s *ErrorsTestSuite) TestWrapNil() {
	s.Nil(errors.Wrap(nil, "should be nil"))
	s.Nil(errors.WrapWithCode(nil, errors.CodeNotFound, "should be nil"))
}

func (s *ErrorsTestSuite) TestIsMatchesCode() {
	s.True(errors.Is(errors.Wrap(errors.NotFound("a"), "ctx"), errors.NotFound("b")))
	s.False(errors.Is(errors.NotFound("a"), errors.InvalidArgument("a")))
}

func (s *ErrorsTestSuite) TestGetters() {
	err := errors.Wrap(errors.NotFound("user friendly message").WithMeta("key", "value"), "wrapped message")
	stdErr := fmt.Errorf("standard error")

	s.Equal(errors.CodeNotFound, errors.GetCode(err))
	s.Equal(errors.CodeInternal, errors.GetCode(stdErr))
	s.Equal(errors.CodeOK, errors.GetCode(nil))
	s.Equal("value", errors.GetMeta(err)["key"])
	s.Nil(errors.GetMeta(stdErr))
	s.Equal("wrapped message", errors.GetMessage(err))
	s.Equal("standard error", errors.GetMessage(stdErr))
}

func (s *ErrorsTestSuite) TestCanceled() {
	s.True(errors.IsCanceled(errors.Canceled(context.Canceled, "load canceled")))
	s.True(errors.IsUnavailable(errors.Canceled(context.DeadlineExceeded, "load timed out")))
	s.True(errors.Is(errors.Canceled(context.Canceled, "x"), context.Canceled))
}

func (s *ErrorsTestSuite) TestUnreadableStore() {
	err := errors.UnreadableStore(fmt.Errorf("unexpected end of JSON input"), 17)

	s.True(errors.IsDataLoss(err))
	s.Equal(17, errors.GetMeta(err)[errors.MetaBytes])
}

func (s *ErrorsTestSuite) TestLogAttrs() {
	s.Nil(errors.LogAttrs(nil))

	attrs := errors.LogAttrs(errors.CharacterNotFound("char_9"))
	s.Equal([]any{
		"code", "NOT_FOUND",
		"error", "NOT_FOUND: character with ID char_9 not found",
		errors.MetaCharacterID, "char_9",
	}, attrs)
}

func (s *ErrorsTestSuite) TestHTTPStatus() {
	testCases := []struct {
		code     errors.Code
		expected int
	}{
		{errors.CodeOK, http.StatusOK},
		{errors.CodeNotFound, http.StatusNotFound},
		{errors.CodeInvalidArgument, http.StatusBadRequest},
		{errors.CodeAlreadyExists, http.StatusConflict},
		{errors.CodeAborted, http.StatusConflict},
		{errors.CodeFailedPrecondition, http.StatusPreconditionFailed},
		{errors.CodeCanceled, http.StatusRequestTimeout},
		{errors.CodeDataLoss, http.StatusInternalServerError},
		{errors.CodeInternal, http.StatusInternalServerError},
		{errors.CodeUnavailable, http.StatusServiceUnavailable},
		{errors.Code("SOMETHING_ELSE"), http.StatusInternalServerError},
	}

	for _, tc := range testCases {
		s.Run(string(tc.code), func() {
			s.Equal(tc.expected, tc.code.HTTPStatus())
		})
	}
}

func (s *ErrorsTestSuite) TestRetryableAndExposed() {
	s.True(errors.CodeAborted.Retryable())
	s.True(errors.CodeUnavailable.Retryable())
	s.False(errors.CodeNotFound.Retryable())

	s.True(errors.CodeDataLoss.Exposed())
	s.False(errors.CodeInternal.Exposed())
}
