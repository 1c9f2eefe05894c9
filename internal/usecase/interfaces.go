package usecase

import (
	"context"
	"time"

	"github.com/iho/gobooks/internal/domain"
)

// AccountDirectory resolves chart-of-accounts entries.
// Lookup returns domain.ErrAccountNotFound for unknown ids.
type AccountDirectory interface {
	Lookup(ctx context.Context, id string) (*domain.Account, error)
	List(ctx context.Context, filter domain.AccountFilter) ([]*domain.Account, error)
}

// CounterpartyDirectory resolves the vendors and customers invoices name.
// LookupCounterparty returns domain.ErrCounterpartyNotFound for unknown ids.
type CounterpartyDirectory interface {
	LookupCounterparty(ctx context.Context, kind domain.CounterpartyKind, id string) (*domain.Counterparty, error)
}

// TransactionRepository persists submitted transactions and journal entries.
type TransactionRepository interface {
	Create(ctx context.Context, tx Transaction, txn *domain.Transaction) error
	GetByID(ctx context.Context, id string) (*domain.Transaction, error)
}

// InvoiceRepository persists submitted invoices.
type InvoiceRepository interface {
	Create(ctx context.Context, tx Transaction, invoice *domain.Invoice) error
	GetByID(ctx context.Context, id string) (*domain.Invoice, error)
}

// BudgetRepository persists submitted budgets.
type BudgetRepository interface {
	Create(ctx context.Context, tx Transaction, budget *domain.Budget) error
	GetByID(ctx context.Context, id string) (*domain.Budget, error)
}

// OutboxRepository defines data access for outbox events.
type OutboxRepository interface {
	Create(ctx context.Context, tx Transaction, event *domain.OutboxEvent) error
	GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkPublished(ctx context.Context, id string, publishedAt time.Time) error
	DeletePublished(ctx context.Context, before time.Time) error
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// Retrier re-runs an operation on transient storage errors.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// DraftStore keeps transaction editing sessions between requests.
type DraftStore interface {
	Get(ctx context.Context, id string) (*domain.Draft, error)
	Save(ctx context.Context, draft *domain.Draft, ttl time.Duration) error
	Delete(ctx context.Context, id string) error
	// AcquireSubmit sets the in-flight flag of a draft.
	// Returns false if a submission already holds it.
	AcquireSubmit(ctx context.Context, id string, ttl time.Duration) (bool, error)
	ReleaseSubmit(ctx context.Context, id string) error
	// SubmitInFlight reports whether a submission currently holds the flag.
	SubmitInFlight(ctx context.Context, id string) (bool, error)
}

// IdempotencyStore remembers the outcome of mutating requests by key.
type IdempotencyStore interface {
	// Claim reserves key for ttl. When the key is already held, claimed is
	// false and stored is the saved response, or nil while the request that
	// holds the key is still running.
	Claim(ctx context.Context, key string, ttl time.Duration) (claimed bool, stored []byte, err error)
	// Complete saves the response of the request that claimed key.
	Complete(ctx context.Context, key string, response []byte, ttl time.Duration) error
	// Release drops a key whose request did not succeed so it can be retried.
	Release(ctx context.Context, key string) error
}

// Recorder receives submission metrics.
type Recorder interface {
	DocumentSubmitted(docType string, elapsed time.Duration)
	SubmissionRejected(docType string, reasons []domain.Reason)
	PersistenceFailed(docType string)
}
