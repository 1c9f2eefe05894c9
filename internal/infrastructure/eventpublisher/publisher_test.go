package eventpublisher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/iho/gobooks/internal/domain"
	"github.com/iho/gobooks/internal/usecase"
)

func TestRelayBatch_PublishesAndMarks(t *testing.T) {
	repo := &stubOutboxRepo{
		events: []*domain.OutboxEvent{{ID: "evt-1", AggregateID: "INV-1", EventType: domain.EventTypeInvoiceCreated}},
	}
	pub := &stubPublisher{}
	ep := newTestPublisher(repo, pub)

	fetched, err := ep.relayBatch(context.Background())
	if err != nil || fetched != 1 {
		t.Fatalf("expected one fetched event, got %d err=%v", fetched, err)
	}
	if len(pub.published) != 1 {
		t.Fatalf("expected one published event, got %d", len(pub.published))
	}
	if len(repo.marked) != 1 || repo.marked[0] != "evt-1" {
		t.Fatalf("expected event to be marked published, got %#v", repo.marked)
	}
}

func TestRelayBatch_ContinuesOnPublishError(t *testing.T) {
	repo := &stubOutboxRepo{
		events: []*domain.OutboxEvent{
			{ID: "evt-1", EventType: domain.EventTypeTransactionCreated},
			{ID: "evt-2", EventType: domain.EventTypeTransactionCreated},
		},
	}
	pub := &stubPublisher{errorsByID: map[string]error{"evt-1": errors.New("sink down")}}
	rec := &stubRecorder{}
	ep := newTestPublisher(repo, pub)
	ep.cfg.Recorder = rec

	if _, err := ep.relayBatch(context.Background()); err != nil {
		t.Fatalf("relayBatch returned error: %v", err)
	}

	if len(repo.marked) != 1 || repo.marked[0] != "evt-2" {
		t.Fatalf("expected only evt-2 to be marked, got %#v", repo.marked)
	}
	if rec.ok != 1 || rec.failed != 1 {
		t.Fatalf("expected one success and one failure, got %+v", rec)
	}
}

func TestRelayBatch_PrunesAtMostHourly(t *testing.T) {
	repo := &stubOutboxRepo{}
	ep := newTestPublisher(repo, &stubPublisher{})
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	ep.now = func() time.Time { return now }
	ep.cfg.Retention = 24 * time.Hour

	for _, step := range []time.Duration{0, time.Minute, time.Hour} {
		now = now.Add(step)
		if _, err := ep.relayBatch(context.Background()); err != nil {
			t.Fatalf("relayBatch failed: %v", err)
		}
	}

	if repo.prunes != 2 {
		t.Fatalf("expected two prunes over an hour and a minute, got %d", repo.prunes)
	}
	if !repo.deletedBefore.Equal(now.Add(-24 * time.Hour)) {
		t.Fatalf("expected prune cutoff a day back, got %s", repo.deletedBefore)
	}
}

func TestStart_DrainsFullBatchesAndStops(t *testing.T) {
	var events []*domain.OutboxEvent
	for i := 0; i < 25; i++ {
		events = append(events, &domain.OutboxEvent{ID: fmt.Sprintf("evt-%02d", i), EventType: domain.EventTypeBudgetCreated})
	}
	repo := &stubOutboxRepo{events: events, consume: true}
	pub := &stubPublisher{}
	ep := newTestPublisher(repo, pub)
	ep.cfg.Interval = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- ep.Start(ctx) }()

	deadline := time.After(time.Second)
	for repo.markedCount() < 25 {
		select {
		case <-deadline:
			t.Fatalf("expected all 25 events relayed without waiting an interval, got %d", repo.markedCount())
		case <-time.After(5 * time.Millisecond):
		}
	}
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("relay did not stop after cancel")
	}
}

func TestStart_BacksOffOnReadFailure(t *testing.T) {
	repo := &stubOutboxRepo{readErr: errors.New("connection reset")}
	ep := newTestPublisher(repo, &stubPublisher{})
	ep.cfg.Interval = 20 * time.Millisecond

	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()
	_ = ep.Start(ctx)

	// Fixed polling would read about eight times; backoff grows the gaps.
	if reads := repo.readCount(); reads == 0 || reads > 6 {
		t.Fatalf("expected a handful of backed-off reads, got %d", reads)
	}
}

func TestAsynqPublisherEnqueuesTask(t *testing.T) {
	client := &stubEnqueuer{}
	pub := newAsynqPublisher(client)

	event := &domain.OutboxEvent{
		ID:            "evt-9",
		AggregateID:   "inv-1",
		AggregateType: domain.AggregateTypeInvoice,
		EventType:     domain.EventTypeInvoiceCreated,
		Payload:       map[string]any{"total_amount": "1100.00"},
	}

	if err := pub.Publish(context.Background(), event); err != nil {
		t.Fatalf("publish failed: %v", err)
	}

	if len(client.tasks) != 1 {
		t.Fatalf("expected one task, got %d", len(client.tasks))
	}
	task := client.tasks[0]
	if task.Type() != "gobooks:invoice.created" {
		t.Fatalf("unexpected task type %q", task.Type())
	}

	var body EventTask
	if err := json.Unmarshal(task.Payload(), &body); err != nil {
		t.Fatalf("task payload is not json: %v", err)
	}
	if body.EventID != "evt-9" || body.Payload["total_amount"] != "1100.00" {
		t.Fatalf("unexpected task body: %+v", body)
	}
}

func TestAsynqPublisherTreatsDuplicateAsPublished(t *testing.T) {
	client := &stubEnqueuer{err: asynq.ErrTaskIDConflict}
	pub := newAsynqPublisher(client)

	if err := pub.Publish(context.Background(), &domain.OutboxEvent{ID: "evt-1", EventType: "x"}); err != nil {
		t.Fatalf("expected duplicate enqueue to succeed, got %v", err)
	}

	client.err = errors.New("redis down")
	if err := pub.Publish(context.Background(), &domain.OutboxEvent{ID: "evt-2", EventType: "x"}); err == nil {
		t.Fatalf("expected enqueue error to surface")
	}
}

func newTestPublisher(repo *stubOutboxRepo, pub Publisher) *EventPublisher {
	return NewEventPublisher(Config{
		OutboxRepo: repo,
		Publisher:  pub,
		Logger:     zerolog.Nop(),
		BatchSize:  10,
		Interval:   5 * time.Millisecond,
	})
}

type stubOutboxRepo struct {
	mu            sync.Mutex
	events        []*domain.OutboxEvent
	consume       bool
	readErr       error
	reads         int
	marked        []string
	prunes        int
	deletedBefore time.Time
}

func (s *stubOutboxRepo) Create(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error {
	return nil
}

func (s *stubOutboxRepo) GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reads++
	if s.readErr != nil {
		return nil, s.readErr
	}
	n := min(limit, len(s.events))
	batch := append([]*domain.OutboxEvent(nil), s.events[:n]...)
	if s.consume {
		s.events = s.events[n:]
	}
	return batch, nil
}

func (s *stubOutboxRepo) MarkPublished(ctx context.Context, id string, publishedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.marked = append(s.marked, id)
	return nil
}

func (s *stubOutboxRepo) DeletePublished(ctx context.Context, before time.Time) error {
	s.prunes++
	s.deletedBefore = before
	return nil
}

func (s *stubOutboxRepo) markedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.marked)
}

func (s *stubOutboxRepo) readCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reads
}

type stubPublisher struct {
	published  []*domain.OutboxEvent
	errorsByID map[string]error
}

func (s *stubPublisher) Publish(ctx context.Context, event *domain.OutboxEvent) error {
	if err := s.errorsByID[event.ID]; err != nil {
		return err
	}
	s.published = append(s.published, event)
	return nil
}

type stubRecorder struct {
	ok, failed int
}

func (s *stubRecorder) EventPublished(ok bool) {
	if ok {
		s.ok++
	} else {
		s.failed++
	}
}

type stubEnqueuer struct {
	tasks []*asynq.Task
	err   error
}

func (s *stubEnqueuer) EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.tasks = append(s.tasks, task)
	return &asynq.TaskInfo{ID: task.Type()}, nil
}
