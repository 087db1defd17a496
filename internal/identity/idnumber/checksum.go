package idnumber

import "errors"

// SAIDLength is the fixed length of a South African ID number.
const SAIDLength = 13

var errPayloadNotDigits = errors.New("checksum payload must contain only digits")

// IsAllDigits reports whether s is exactly length ASCII digits.
func IsAllDigits(s string, length int) bool {
	if len(s) != length {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// ComputeChecksumDigit returns the Luhn check digit for payload.
//
// Walking from the rightmost payload digit, every second digit starting with
// the rightmost one is doubled and its two digits summed. The check digit is
// (10 - sum mod 10) mod 10. For a South African ID the payload is the first
// 12 digits and the result must equal digit 13.
func ComputeChecksumDigit(payload string) (int, error) {
	if payload == "" || !IsAllDigits(payload, len(payload)) {
		return 0, errPayloadNotDigits
	}
	sum := 0
	double := true
	for i := len(payload) - 1; i >= 0; i-- {
		d := int(payload[i] - '0')
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return (10 - sum%10) % 10, nil
}

// HasValidChecksum reports whether the last digit of number is the Luhn
// check digit of the digits before it.
func HasValidChecksum(number string) bool {
	if len(number) < 2 || !IsAllDigits(number, len(number)) {
		return false
	}
	want, err := ComputeChecksumDigit(number[:len(number)-1])
	if err != nil {
		return false
	}
	return want == digitAt(number, len(number)-1)
}

// digitAt returns the numeric value of the ASCII digit at position i.
// Callers must have checked the string with IsAllDigits.
func digitAt(s string, i int) int {
	return int(s[i] - '0')
}

// digitsAt returns the integer formed by s[from:to].
func digitsAt(s string, from, to int) int {
	n := 0
	for i := from; i < to; i++ {
		n = n*10 + digitAt(s, i)
	}
	return n
}
