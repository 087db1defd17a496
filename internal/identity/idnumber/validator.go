package idnumber

import (
	"strings"
	"time"
)

// Validator is the single entry point used by registration workflows. It is
// immutable after construction and safe for concurrent use.
type Validator struct {
	pivot   CenturyPivot
	foreign ForeignPolicy
}

// Option configures a Validator.
type Option func(*Validator)

// WithReferenceYear derives the century pivot from the given year so that
// no birth date resolves to a later year.
func WithReferenceYear(year int) Option {
	return func(v *Validator) {
		v.pivot = PivotForYear(year)
	}
}

// WithCenturyPivot sets the pivot explicitly. Values outside 0-99 are ignored.
func WithCenturyPivot(pivot int) Option {
	return func(v *Validator) {
		if pivot >= 0 && pivot <= 99 {
			v.pivot = CenturyPivot(pivot)
		}
	}
}

// WithForeignLengthBounds overrides the foreign ID and passport length bounds.
// Invalid bounds are ignored.
func WithForeignLengthBounds(minLen, maxLen int) Option {
	return func(v *Validator) {
		if minLen >= 1 && maxLen >= minLen {
			v.foreign = ForeignPolicy{MinLength: minLen, MaxLength: maxLen}
		}
	}
}

// NewValidator creates a Validator. Without options the pivot is derived from
// the Unix epoch year, so callers should pass WithReferenceYear or
// WithCenturyPivot.
func NewValidator(opts ...Option) *Validator {
	v := &Validator{
		pivot:   PivotForYear(1970),
		foreign: DefaultForeignPolicy(),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Pivot returns the configured century pivot.
func (v *Validator) Pivot() CenturyPivot {
	return v.pivot
}

// ForeignPolicy returns the configured foreign ID policy.
func (v *Validator) ForeignPolicy() ForeignPolicy {
	return v.foreign
}

// SAIDResult is the outcome of validating a South African ID number. Details
// is populated only when the outcome is valid.
type SAIDResult struct {
	Outcome
	Details SAID
}

// Validate checks raw against the strategy selected by idType.
// Empty or whitespace-only input fails before dispatch.
func (v *Validator) Validate(idType IDType, raw string) (out Outcome) {
	defer func() {
		if r := recover(); r != nil {
			out = Failed(KindInternal, MsgInternal)
		}
	}()

	if strings.TrimSpace(raw) == "" {
		return Failed(KindFormat, MsgEmpty)
	}

	switch idType {
	case IDTypeSAID:
		return v.ValidateSAID(raw).Outcome
	case IDTypeForeignID, IDTypePassport:
		return v.ValidateForeignID(raw)
	default:
		return outcomeFromError(unsupportedType(string(idType)))
	}
}

// ValidateSAID validates raw as a South African ID number.
func (v *Validator) ValidateSAID(raw string) (res SAIDResult) {
	defer func() {
		if r := recover(); r != nil {
			res = SAIDResult{Outcome: Failed(KindInternal, MsgInternal)}
		}
	}()

	details, err := ParseSAID(raw, v.pivot)
	if err != nil {
		return SAIDResult{Outcome: outcomeFromError(err)}
	}
	return SAIDResult{Outcome: Passed(), Details: details}
}

// ValidateForeignID validates raw against the foreign ID and passport policy.
func (v *Validator) ValidateForeignID(raw string) (out Outcome) {
	defer func() {
		if r := recover(); r != nil {
			out = Failed(KindInternal, MsgInternal)
		}
	}()
	return outcomeFromError(v.foreign.Check(raw))
}

// ExtractDateOfBirth returns the birth date embedded in a valid SA ID number.
// It reports false for any other ID type or when validation fails; callers
// needing the reason must call Validate.
func (v *Validator) ExtractDateOfBirth(idType IDType, raw string) (time.Time, bool) {
	if idType != IDTypeSAID {
		return time.Time{}, false
	}
	res := v.ValidateSAID(raw)
	if !res.Valid {
		return time.Time{}, false
	}
	return res.Details.DateOfBirth, true
}

// ExtractGender returns the gender encoded in a valid SA ID number.
// It reports false for any other ID type or when validation fails.
func (v *Validator) ExtractGender(idType IDType, raw string) (Gender, bool) {
	if idType != IDTypeSAID {
		return "", false
	}
	res := v.ValidateSAID(raw)
	if !res.Valid {
		return "", false
	}
	return res.Details.Gender, true
}
