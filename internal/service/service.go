package service

import (
	stderrors "errors"
	"fmt"
	"strconv"
	"strings"

	"gorm.io/gorm"

	"recipes/internal/errors"
)

// UpdateMode selects how an update payload is applied.
type UpdateMode int

const (
	// PartialUpdate changes only the fields present in the payload.
	PartialUpdate UpdateMode = iota
	// FullUpdate requires every required field and clears omitted associations.
	FullUpdate
)

// ParseIDList parses a comma separated list of ids taken from the query
// parameter param. An empty value means no filter.
func ParseIDList(param, raw string) ([]uint, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	ids := make([]uint, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		id, err := strconv.ParseUint(part, 10, 64)
		if err != nil {
			return nil, errors.NewValidationError(param, fmt.Sprintf("%q is not a valid integer id.", part))
		}
		ids = append(ids, uint(id))
	}
	return ids, nil
}

// ParseFlag parses a boolean-ish query parameter such as 0/1 or true/false.
func ParseFlag(param, raw string) (bool, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return false, nil
	}
	if b, err := strconv.ParseBool(raw); err == nil {
		return b, nil
	}
	if n, err := strconv.Atoi(raw); err == nil {
		return n != 0, nil
	}
	return false, errors.NewValidationError(param, fmt.Sprintf("%q is not a valid boolean.", raw))
}

// notFound converts a missing row into the domain error so absent and
// foreign rows look the same to callers.
func notFound(err error, format string, args ...interface{}) error {
	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		return errors.ErrNotFound
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}
