package validation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/suite"

	dErrors "testadmin/pkg/domain-errors"
)

type sample struct {
	FirstName   string `json:"first_name" validate:"required,notblank,max=5"`
	Email       string `json:"email" validate:"required,email"`
	IDType      string `json:"id_type" validate:"required,oneof=SA_ID PASSPORT"`
	DateOfBirth string `json:"date_of_birth,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

func valid() sample {
	return sample{FirstName: "Ada", Email: "ada@example.com", IDType: "SA_ID"}
}

// ValidationSuite checks that struct tag failures map to field-scoped
// validation errors with stable messages.
type ValidationSuite struct {
	suite.Suite
}

func TestValidationSuite(t *testing.T) {
	suite.Run(t, new(ValidationSuite))
}

func (s *ValidationSuite) assertField(req sample, field, msg string) {
	err := Validate(req)
	s.Require().Error(err)
	var de *dErrors.Error
	s.Require().True(errors.As(err, &de))
	s.Equal(dErrors.CodeValidation, de.Code)
	s.Equal(field, de.Field)
	s.Equal(msg, de.Message)
}

func (s *ValidationSuite) TestValidRequestPasses() {
	s.NoError(Validate(valid()))
}

func (s *ValidationSuite) TestMessages() {
	r := valid()
	r.FirstName = ""
	s.assertField(r, "first_name", "first_name is required")

	r = valid()
	r.FirstName = "   "
	s.assertField(r, "first_name", "first_name must not be blank")

	r = valid()
	r.FirstName = "Adelaide"
	s.assertField(r, "first_name", "first_name must be at most 5")

	r = valid()
	r.Email = "nope"
	s.assertField(r, "email", "email must be a valid email")

	r = valid()
	r.IDType = "DRIVERS"
	s.assertField(r, "id_type", "id_type must be one of [SA_ID PASSPORT]")

	r = valid()
	r.DateOfBirth = "01/02/1980"
	s.assertField(r, "date_of_birth", "date_of_birth must be a date in YYYY-MM-DD format")
}

func (s *ValidationSuite) TestErrorMessage_NonValidatorError() {
	s.Equal("invalid request body", ErrorMessage(errors.New("x")))
	s.Empty(FieldName(errors.New("x")))
}
