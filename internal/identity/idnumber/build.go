package idnumber

import (
	"errors"
	"fmt"
)

// BuildSAID composes a valid South African ID number from its parts. The
// reserved digit is written as 8. Used to generate test data; the caller
// must pick a sequence whose first digit matches the intended gender.
func BuildSAID(yymmdd string, sequence, citizenshipDigit int) (string, error) {
	if !IsAllDigits(yymmdd, 6) {
		return "", errors.New("birth date must be YYMMDD")
	}
	if sequence < 0 || sequence > 9999 {
		return "", errors.New("sequence must be between 0000 and 9999")
	}
	if citizenshipDigit < 0 || citizenshipDigit > 9 {
		return "", errors.New("citizenship digit must be 0-9")
	}
	payload := fmt.Sprintf("%s%04d%d8", yymmdd, sequence, citizenshipDigit)
	check, err := ComputeChecksumDigit(payload)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%d", payload, check), nil
}
