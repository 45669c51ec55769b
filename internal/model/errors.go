package model

import (
	"errors"
	"fmt"
)

// Error kinds. Every pipeline failure wraps exactly one of these so callers can
// classify it with errors.Is.
var (
	ErrNetwork    = errors.New("network error")
	ErrParse      = errors.New("parse error")
	ErrExtraction = errors.New("extraction error")
	ErrConfig     = errors.New("config error")
	ErrIO         = errors.New("io error")
	ErrQuery      = errors.New("query error")
)

// ValidationError describes a record that breaks a model invariant.
type ValidationError struct {
	Field       string
	Bank        string
	Description string
}

func (e *ValidationError) Error() string {
	if e.Bank == "" {
		return fmt.Sprintf("invalid %s: %s", e.Field, e.Description)
	}
	return fmt.Sprintf("invalid %s [%s]: %s", e.Field, e.Bank, e.Description)
}
