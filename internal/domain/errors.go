package domain

import (
	"errors"
	"strings"
)

var (
	// Lookup errors
	ErrAccountNotFound      = errors.New("account not found")
	ErrCounterpartyNotFound = errors.New("counterparty not found")
	ErrDraftNotFound        = errors.New("draft not found")
	ErrDocumentNotFound     = errors.New("document not found")

	// Input errors
	ErrDebitAndCredit      = errors.New("line cannot carry both a debit and a credit")
	ErrUnknownField        = errors.New("unknown line field")
	ErrInvalidDate         = errors.New("invalid date")
	ErrInvalidDocumentType = errors.New("invalid document type")
	ErrInvalidAccountType  = errors.New("invalid account type")

	// Submission errors
	ErrSubmissionInFlight = errors.New("submission already in flight")
)

// ValidationError is returned when the gate blocks a submission.
type ValidationError struct {
	Decision Decision
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Decision.Reasons))
	for _, r := range e.Decision.Reasons {
		msgs = append(msgs, r.Message)
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// PersistenceError wraps a failure of the persistence collaborator.
// Its message is the collaborator's message, unchanged.
type PersistenceError struct {
	Err error
}

func (e *PersistenceError) Error() string {
	return e.Err.Error()
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
