package services

import (
	"errors"
	"fmt"
)

// ParseError means uploaded content is not valid JSON/CSV for its declared
// type. It is surfaced to the user as a file-level error with a retry
// affordance; it never crashes a session.
type ParseError struct {
	Source string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.Source, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// AIBackendError wraps a failure of one AI backend attempt (auth, network,
// malformed response). It is recovered locally by the fallback chain and
// never propagates to the end user.
type AIBackendError struct {
	Backend string
	Err     error
}

func (e *AIBackendError) Error() string {
	return fmt.Sprintf("ai backend %s: %v", e.Backend, e.Err)
}

func (e *AIBackendError) Unwrap() error { return e.Err }

var (
	ErrSessionNotFound    = errors.New("mapping session not found")
	ErrInvalidTransition  = errors.New("invalid session status transition")
	ErrSessionNotEditable = errors.New("mappings can only be edited while the session is draft")
	ErrSchemaNotFound     = errors.New("no registered schema for entity type")
)
