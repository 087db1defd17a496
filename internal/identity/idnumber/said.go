package idnumber

import "time"

// CenturyPivot resolves the two-digit birth year of a South African ID number.
// Years at or below the pivot belong to the 2000s, years above it to the 1900s.
// Range: 0-99.
type CenturyPivot int

// PivotForYear returns the pivot that places no birth year after refYear.
func PivotForYear(refYear int) CenturyPivot {
	return CenturyPivot(((refYear % 100) + 100) % 100)
}

// Year expands a two-digit year into a four-digit one.
func (p CenturyPivot) Year(yy int) int {
	if yy <= int(p) {
		return 2000 + yy
	}
	return 1900 + yy
}

// SAID is the decomposed form of a valid South African ID number. It is
// rebuilt from the raw string on every call and never stored.
//
// Layout (13 digits):
//   - 0-5:  birth date YYMMDD
//   - 6-9:  sequence number; digit 6 < 5 is female, otherwise male
//   - 10:   citizenship
//   - 11:   reserved, accepted without interpretation
//   - 12:   Luhn check digit over digits 0-11
type SAID struct {
	DateOfBirth      time.Time
	Gender           Gender
	Sequence         int
	CitizenshipDigit int
	Citizenship      Citizenship
}

// ParseSAID validates raw as a South African ID number and decomposes it.
// Failures are *Error values of kind KindFormat or KindChecksum.
func ParseSAID(raw string, pivot CenturyPivot) (SAID, error) {
	if !IsAllDigits(raw, SAIDLength) {
		return SAID{}, formatError(MsgSAIDLength)
	}

	dob, ok := birthDate(raw, pivot)
	if !ok {
		return SAID{}, formatError(MsgInvalidDate)
	}

	sequence := digitsAt(raw, 6, 10)
	gender := GenderMale
	if digitAt(raw, 6) < 5 {
		gender = GenderFemale
	}

	citizenshipDigit := digitAt(raw, 10)

	want, err := ComputeChecksumDigit(raw[:12])
	if err != nil {
		return SAID{}, formatError(MsgSAIDLength)
	}
	if want != digitAt(raw, 12) {
		return SAID{}, &Error{Kind: KindChecksum, Message: MsgChecksum}
	}

	return SAID{
		DateOfBirth:      dob,
		Gender:           gender,
		Sequence:         sequence,
		CitizenshipDigit: citizenshipDigit,
		Citizenship:      citizenshipFromDigit(citizenshipDigit),
	}, nil
}

// birthDate parses the YYMMDD prefix. time.Date normalises out-of-range
// values, so the result is compared back against the inputs to reject
// dates such as 31 February.
func birthDate(raw string, pivot CenturyPivot) (time.Time, bool) {
	year := pivot.Year(digitsAt(raw, 0, 2))
	month := digitsAt(raw, 2, 4)
	day := digitsAt(raw, 4, 6)
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Year() != year || int(t.Month()) != month || t.Day() != day {
		return time.Time{}, false
	}
	return t, true
}
