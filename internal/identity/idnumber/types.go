// Package idnumber validates identity document numbers supplied at applicant
// registration and extracts the attributes embedded in South African ID numbers.
//
// Domain Purity: This package contains only pure domain logic with no I/O,
// no context.Context, and no time.Now() calls. The reference year used for
// century inference is received from the caller.
//
// Every exported validation entry point returns an Outcome value. Parse
// failures and unexpected faults are converted at the boundary, so the
// package is safe to call with arbitrary untrusted input from any goroutine.
package idnumber

import (
	"fmt"
	"strings"
)

// IDType selects the validation strategy for an identity document.
type IDType string

const (
	IDTypeSAID      IDType = "SA_ID"
	IDTypeForeignID IDType = "FOREIGN_ID"
	IDTypePassport  IDType = "PASSPORT"
)

// SupportedIDTypes lists every ID type the validator dispatches on.
func SupportedIDTypes() []IDType {
	return []IDType{IDTypeSAID, IDTypeForeignID, IDTypePassport}
}

// IsValid reports whether the ID type is one the validator supports.
func (t IDType) IsValid() bool {
	switch t {
	case IDTypeSAID, IDTypeForeignID, IDTypePassport:
		return true
	default:
		return false
	}
}

func (t IDType) String() string { return string(t) }

// ParseIDType converts caller input into an IDType. Matching is
// case-insensitive and surrounding whitespace is ignored.
func ParseIDType(s string) (IDType, error) {
	t := IDType(strings.ToUpper(strings.TrimSpace(s)))
	if !t.IsValid() {
		return "", unsupportedType(s)
	}
	return t, nil
}

// Gender is derived from the sequence group of a South African ID number.
type Gender string

const (
	GenderFemale Gender = "female"
	GenderMale   Gender = "male"
)

func (g Gender) String() string { return string(g) }

// Citizenship is derived from digit 11 of a South African ID number.
type Citizenship string

const (
	CitizenshipCitizen           Citizenship = "citizen"
	CitizenshipPermanentResident Citizenship = "permanent_resident"
	CitizenshipRefugee           Citizenship = "refugee"
	// CitizenshipUnknown covers digits 3-9. They are structurally legal and
	// accepted; only the checksum can invalidate a number.
	CitizenshipUnknown Citizenship = "unknown"
)

func citizenshipFromDigit(d int) Citizenship {
	switch d {
	case 0:
		return CitizenshipCitizen
	case 1:
		return CitizenshipPermanentResident
	case 2:
		return CitizenshipRefugee
	default:
		return CitizenshipUnknown
	}
}

func (c Citizenship) String() string { return string(c) }

// ErrorKind classifies a failed validation.
type ErrorKind string

const (
	KindFormat          ErrorKind = "format"
	KindChecksum        ErrorKind = "checksum"
	KindUnsupportedType ErrorKind = "unsupported_type"
	KindInternal        ErrorKind = "internal"
)

// Error is the internal failure type produced by the parsers. It never
// crosses the Validator boundary; it is folded into an Outcome instead.
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Is matches errors by kind so callers can use errors.Is with the sentinels below.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// Sentinels for errors.Is comparisons against parser errors.
var (
	ErrFormat          = &Error{Kind: KindFormat}
	ErrChecksum        = &Error{Kind: KindChecksum}
	ErrUnsupportedType = &Error{Kind: KindUnsupportedType}
)

// Messages surfaced to callers. They are stable and safe to show to users.
const (
	MsgEmpty        = "ID number cannot be empty"
	MsgSAIDLength   = "ID number must be 13 digits"
	MsgInvalidDate  = "invalid date of birth in ID number"
	MsgChecksum     = "ID number checksum is invalid"
	MsgInternal     = "ID number could not be validated"
	msgUnsupportedF = "Unsupported ID type: %s"
)

func formatError(msg string) *Error {
	return &Error{Kind: KindFormat, Message: msg}
}

func unsupportedType(t string) *Error {
	return &Error{Kind: KindUnsupportedType, Message: fmt.Sprintf(msgUnsupportedF, t)}
}

// Outcome is the result of every validation call.
//
// Invariants:
//   - Valid is true iff Kind and Message are empty
type Outcome struct {
	Valid   bool
	Kind    ErrorKind
	Message string
}

// Passed returns a successful outcome.
func Passed() Outcome {
	return Outcome{Valid: true}
}

// Failed returns a failed outcome of the given kind.
func Failed(kind ErrorKind, msg string) Outcome {
	if msg == "" {
		msg = MsgInternal
	}
	return Outcome{Valid: false, Kind: kind, Message: msg}
}

func outcomeFromError(err error) Outcome {
	if err == nil {
		return Passed()
	}
	if e, ok := err.(*Error); ok {
		return Failed(e.Kind, e.Message)
	}
	return Failed(KindInternal, MsgInternal)
}
