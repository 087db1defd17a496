package idnumber

import (
	"fmt"
	"strings"
)

// Default length bounds for foreign ID and passport numbers.
const (
	DefaultForeignMinLength = 4
	DefaultForeignMaxLength = 20
)

// ForeignPolicy is the format policy for documents with no verifiable
// internal structure. Passports and foreign IDs share it.
type ForeignPolicy struct {
	MinLength int
	MaxLength int
}

// DefaultForeignPolicy returns the 4-20 character policy.
func DefaultForeignPolicy() ForeignPolicy {
	return ForeignPolicy{MinLength: DefaultForeignMinLength, MaxLength: DefaultForeignMaxLength}
}

// Check applies the policy to raw. Surrounding whitespace is ignored; the
// remaining value must be letters, digits and hyphens, starting and ending
// with a letter or digit.
func (p ForeignPolicy) Check(raw string) error {
	v := strings.TrimSpace(raw)
	if v == "" {
		return formatError(MsgEmpty)
	}
	if len(v) < p.MinLength || len(v) > p.MaxLength {
		return formatError(fmt.Sprintf("ID number must be between %d and %d characters", p.MinLength, p.MaxLength))
	}
	for i := 0; i < len(v); i++ {
		c := v[i]
		if isAlnum(c) {
			continue
		}
		if c == '-' && i > 0 && i < len(v)-1 {
			continue
		}
		return formatError("ID number may only contain letters, digits and inner hyphens")
	}
	return nil
}

func isAlnum(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
