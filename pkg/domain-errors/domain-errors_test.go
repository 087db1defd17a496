package domainerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/suite"
)

// DomainErrorsSuite tests the domain error primitives.
//
// Justification: Every service boundary relies on "wrapped domain errors keep
// their code" and "errors.Is matches by code".
type DomainErrorsSuite struct {
	suite.Suite
}

func TestDomainErrorsSuite(t *testing.T) {
	suite.Run(t, new(DomainErrorsSuite))
}

func (s *DomainErrorsSuite) TestErrorString() {
	s.Equal("applicant not found", New(CodeNotFound, "applicant not found").Error())
	s.Equal("not_found", (&Error{Code: CodeNotFound}).Error())
}

func (s *DomainErrorsSuite) TestIsMatchesByCode() {
	s.True(errors.Is(New(CodeConflict, "a"), &Error{Code: CodeConflict}))
	s.False(errors.Is(New(CodeConflict, "a"), &Error{Code: CodeNotFound}))
	s.False((&Error{Code: CodeNotFound}).Is(errors.New("not_found")))

	inner := New(CodeNotFound, "inner")
	outer := &Error{Code: CodeInternal, Err: inner}
	s.True(errors.Is(outer, &Error{Code: CodeNotFound}))
}

func (s *DomainErrorsSuite) TestWrap() {
	s.Run("preserves existing code and field", func() {
		inner := NewField(CodeValidation, "id_number", "ID number checksum is invalid")
		err := Wrap(fmt.Errorf("register: %w", inner), CodeInternal, "registration failed")

		var de *Error
		s.Require().True(errors.As(err, &de))
		s.Equal(CodeValidation, de.Code)
		s.Equal("id_number", de.Field)
		s.Equal("registration failed", de.Message)
	})

	s.Run("applies code to foreign errors", func() {
		root := errors.New("connection refused")
		err := Wrap(root, CodeInternal, "store unavailable")
		s.True(HasCode(err, CodeInternal))
		s.ErrorIs(err, root)
	})
}

func (s *DomainErrorsSuite) TestHasCode() {
	s.True(HasCode(fmt.Errorf("ctx: %w", New(CodeForbidden, "x")), CodeForbidden))
	s.False(HasCode(errors.New("plain"), CodeForbidden))
	s.False(HasCode(nil, CodeForbidden))
}
