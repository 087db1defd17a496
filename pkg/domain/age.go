package domain

import "time"

// AgeAt returns the age in whole years of someone born on birthDate at the
// reference time now. Calendar arithmetic handles birthday boundaries, and a
// 29 February birthday is reached on 1 March in non-leap years.
func AgeAt(birthDate, now time.Time) int {
	birthDate, now = birthDate.UTC(), now.UTC()
	if now.Before(birthDate) {
		return 0
	}
	age := now.Year() - birthDate.Year()
	if now.Before(birthDate.AddDate(age, 0, 0)) {
		age--
	}
	return age
}

// IsAtLeast reports whether someone born on birthDate is at least years old
// at now.
//
// Example:
//
//	birthDate := time.Date(2000, 1, 15, 0, 0, 0, 0, time.UTC)
//	now := time.Date(2018, 1, 15, 0, 0, 0, 0, time.UTC) // exactly 18th birthday
//	IsAtLeast(birthDate, now, 18) // true
func IsAtLeast(birthDate, now time.Time, years int) bool {
	return !now.UTC().Before(birthDate.UTC().AddDate(years, 0, 0))
}
