package storage

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Validation errors.
var (
	ErrNilContext    = errors.New("context cannot be nil")
	ErrEmptyString   = errors.New("string parameter cannot be empty")
	ErrInvalidColumn = errors.New("invalid column name")
)

var columnName = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateColumn ensures a column name is safe to splice into SQL.
func validateColumn(name string) error {
	if !columnName.MatchString(name) || name == shipmentIDColumn {
		return fmt.Errorf("%w: %q", ErrInvalidColumn, name)
	}
	return nil
}
