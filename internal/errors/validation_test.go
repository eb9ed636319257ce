package errors_test

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/KirkDiggler/spell-planner/internal/errors"
)

type ValidationTestSuite struct {
	suite.Suite
}

func TestValidationSuite(t *testing.T) {
	suite.Run(t, new(ValidationTestSuite))
}

func (s *ValidationTestSuite) TestBuildListsFieldsInOrder() {
	err := errors.NewValidationBuilder().
		Fieldf("level", "must be between %d and %d", 1, 125).
		RequiredField("name").
		Build()

	s.Require().Error(err)
	s.True(errors.IsInvalidArgument(err))
	s.Equal("INVALID_ARGUMENT: validation failed: level: must be between 1 and 125; name: is required", err.Error())
	s.NotNil(errors.GetMeta(err)[errors.MetaValidation])
}

func (s *ValidationTestSuite) TestValidationBuilderNoErrors() {
	s.Nil(errors.NewValidationBuilder().Build())
}

func (s *ValidationTestSuite) TestValidateRequired() {
	testCases := []struct {
		name      string
		value     string
		shouldErr bool
	}{
		{"valid value", "Zed", false},
		{"empty string", "", true},
		{"whitespace only", "   ", true},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			vb := errors.NewValidationBuilder()
			errors.ValidateRequired("name", tc.value, vb)
			if tc.shouldErr {
				s.Error(vb.Build())
			} else {
				s.NoError(vb.Build())
			}
		})
	}
}

func (s *ValidationTestSuite) TestValidateRange() {
	vb := errors.NewValidationBuilder()
	errors.ValidateRange("level", 0, 1, 125, vb)
	err := vb.Build()
	s.Require().Error(err)
	s.Contains(err.Error(), "level: must be between 1 and 125")

	vb = errors.NewValidationBuilder()
	errors.ValidateRange("level", 125, 1, 125, vb)
	s.NoError(vb.Build())
}

func (s *ValidationTestSuite) TestValidateEnum() {
	vb := errors.NewValidationBuilder()
	errors.ValidateEnum("class", "bard", []string{"warlock", "wizard"}, vb)
	err := vb.Build()
	s.Require().Error(err)
	s.Contains(err.Error(), "must be one of: warlock, wizard")
}
