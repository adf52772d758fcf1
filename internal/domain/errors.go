package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicateKey reports a unique-constraint race; callers treat it as "already exists".
	ErrDuplicateKey = errors.New("duplicate key")
	// ErrInvalidIdentifier is returned for malformed external ids.
	ErrInvalidIdentifier = errors.New("invalid identifier")
	ErrNotFound          = errors.New("not found")
	ErrEmailTaken        = errors.New("email already registered")
	// ErrInvalidCredentials hides whether the email or the password was wrong.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrCycleInProgress is returned when an ingestion cycle is requested while one is running.
	ErrCycleInProgress = errors.New("ingestion cycle already running")
)

// FeedFailure wraps transport and non-success responses from the news provider.
type FeedFailure struct {
	Page       int
	StatusCode int
	Cause      error
}

func (e *FeedFailure) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("feed page %d: status %d: %v", e.Page, e.StatusCode, e.Cause)
	}
	return fmt.Sprintf("feed page %d: %v", e.Page, e.Cause)
}

func (e *FeedFailure) Unwrap() error {
	return e.Cause
}

// EnrichmentParseError reports a model response that does not satisfy the enrichment schema.
type EnrichmentParseError struct {
	Attempt int
	Reason  string
	Raw     string
}

func (e *EnrichmentParseError) Error() string {
	if e.Attempt > 0 {
		return fmt.Sprintf("parse enrichment response (attempt %d): %s", e.Attempt, e.Reason)
	}
	return "parse enrichment response: " + e.Reason
}
