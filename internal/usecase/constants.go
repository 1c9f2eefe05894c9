package usecase

import "time"

const (
	// DefaultTransactionTimeout is the maximum duration for a database transaction
	DefaultTransactionTimeout = 10 * time.Second

	// IdempotencyKeyTTL is how long idempotency keys are cached
	IdempotencyKeyTTL = 24 * time.Hour

	// DefaultDraftTTL is how long an untouched draft is kept
	DefaultDraftTTL = 24 * time.Hour

	// DefaultSubmitLockTTL bounds how long a crashed submission can hold a draft
	DefaultSubmitLockTTL = 30 * time.Second
)

// Document types used in logs and metrics.
const (
	DocTransaction = "transaction"
	DocInvoice     = "invoice"
	DocBudget      = "budget"
)
