package usecase_test

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"go.uber.org/mock/gomock"

	"github.com/iho/gobooks/internal/domain"
	"github.com/iho/gobooks/internal/usecase"
	"github.com/iho/gobooks/internal/usecase/mocks"
)

var testAccounts = map[string]*domain.Account{
	"cash":    {ID: "cash", Code: "1000", Name: "Cash", Type: domain.AccountTypeAsset, Active: true},
	"revenue": {ID: "revenue", Code: "4000", Name: "Sales", Type: domain.AccountTypeRevenue, Active: true},
	"expense": {ID: "expense", Code: "6000", Name: "Supplies", Type: domain.AccountTypeExpense, Active: true},
}

var testCounterparties = map[string]*domain.Counterparty{
	"vendor-1":   {ID: "vendor-1", Kind: domain.CounterpartyVendor, Name: "Acme Supplies", Active: true},
	"customer-9": {ID: "customer-9", Kind: domain.CounterpartyCustomer, Name: "Globex", Active: true},
}

type fixture struct {
	ctrl      *gomock.Controller
	accounts  *mocks.MockAccountDirectory
	parties   *mocks.MockCounterpartyDirectory
	txManager *mocks.MockTransactionManager
	tx        *mocks.MockTransaction
	outbox    *mocks.MockOutboxRepository
	idGen     *mocks.MockIDGenerator
	recorder  *mocks.MockRecorder
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctrl := gomock.NewController(t)

	f := &fixture{
		ctrl:      ctrl,
		accounts:  mocks.NewMockAccountDirectory(ctrl),
		parties:   mocks.NewMockCounterpartyDirectory(ctrl),
		txManager: mocks.NewMockTransactionManager(ctrl),
		tx:        mocks.NewMockTransaction(ctrl),
		outbox:    mocks.NewMockOutboxRepository(ctrl),
		idGen:     mocks.NewMockIDGenerator(ctrl),
		recorder:  mocks.NewMockRecorder(ctrl),
	}

	var n int
	f.idGen.EXPECT().Generate().DoAndReturn(func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}).AnyTimes()

	f.accounts.EXPECT().Lookup(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, id string) (*domain.Account, error) {
			if a, ok := testAccounts[id]; ok {
				return a, nil
			}
			return nil, domain.ErrAccountNotFound
		}).AnyTimes()

	f.parties.EXPECT().LookupCounterparty(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, kind domain.CounterpartyKind, id string) (*domain.Counterparty, error) {
			if p, ok := testCounterparties[id]; ok && p.Kind == kind {
				return p, nil
			}
			return nil, domain.ErrCounterpartyNotFound
		}).AnyTimes()

	return f
}

func (f *fixture) gate() *domain.Gate {
	return domain.NewGate(f.accounts, f.parties)
}

func (f *fixture) submitter() *usecase.Submitter {
	return usecase.NewSubmitter(f.txManager, f.outbox, nil, f.recorder, zerolog.Nop())
}

// expectTx expects one database transaction that commits only when committed is true.
func (f *fixture) expectTx(committed bool) {
	f.txManager.EXPECT().Begin(gomock.Any()).Return(f.tx, nil)
	f.tx.EXPECT().Rollback(gomock.Any()).Return(nil)
	if committed {
		f.tx.EXPECT().Commit(gomock.Any()).Return(nil)
	}
}

func mustDate(s string) time.Time {
	d, err := domain.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func balancedDoc(t *testing.T, amount string) *domain.TransactionDocument {
	t.Helper()
	set, err := domain.NewEntryLineSetFrom([]domain.EntryLineInput{
		{AccountID: "cash", Debit: amount},
		{AccountID: "revenue", Credit: amount},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return &domain.TransactionDocument{
		Kind:        domain.KindTransaction,
		Date:        mustDate("2024-06-01"),
		Description: "Cash sale",
		Lines:       set,
	}
}

// memDraftStore serializes drafts like the Redis store does so callers
// never share a pointer with the stored copy.
type memDraftStore struct {
	mu     sync.Mutex
	drafts  map[string][]byte
	locks   map[string]bool
	lockErr error
}

func newMemDraftStore() *memDraftStore {
	return &memDraftStore{drafts: map[string][]byte{}, locks: map[string]bool{}}
}

func (s *memDraftStore) Get(_ context.Context, id string) (*domain.Draft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.drafts[id]
	if !ok {
		return nil, domain.ErrDraftNotFound
	}
	var d domain.Draft
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

func (s *memDraftStore) Save(_ context.Context, d *domain.Draft, _ time.Duration) error {
	data, err := json.Marshal(d)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drafts[d.ID] = data
	return nil
}

func (s *memDraftStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.drafts, id)
	return nil
}

func (s *memDraftStore) AcquireSubmit(_ context.Context, id string, _ time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.locks[id] {
		return false, nil
	}
	s.locks[id] = true
	return true, nil
}

func (s *memDraftStore) ReleaseSubmit(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.locks, id)
	return nil
}

func (s *memDraftStore) SubmitInFlight(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lockErr != nil {
		return false, s.lockErr
	}
	return s.locks[id], nil
}

func (s *memDraftStore) locked(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.locks[id]
}
