package validation

import (
	"fmt"
	"strconv"

	dErrors "testadmin/pkg/domain-errors"
)

// MaxBodySize is the maximum accepted JSON request body (64 KB).
const MaxBodySize = 64 * 1024

// Field length limits applied at the HTTP boundary.
const (
	MaxNameLength     = 100
	MaxEmailLength    = 255
	MaxIDNumberLength = 64
)

// Pagination limits for list endpoints.
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// CheckStringLength rejects values longer than max bytes.
func CheckStringLength(fieldName, value string, max int) error {
	if len(value) > max {
		return dErrors.NewField(dErrors.CodeValidation, fieldName, fmt.Sprintf("%s exceeds max length of %d", fieldName, max))
	}
	return nil
}

// ParsePage reads limit and offset query values. Empty values use defaults,
// the limit is capped at MaxPageSize, and malformed or negative values are
// rejected.
func ParsePage(limitRaw, offsetRaw string) (limit, offset int, err error) {
	limit = DefaultPageSize
	if limitRaw != "" {
		limit, err = strconv.Atoi(limitRaw)
		if err != nil || limit < 1 {
			return 0, 0, dErrors.NewField(dErrors.CodeBadRequest, "limit", "limit must be a positive integer")
		}
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	if offsetRaw != "" {
		offset, err = strconv.Atoi(offsetRaw)
		if err != nil || offset < 0 {
			return 0, 0, dErrors.NewField(dErrors.CodeBadRequest, "offset", "offset must be a non-negative integer")
		}
	}
	return limit, offset, nil
}
