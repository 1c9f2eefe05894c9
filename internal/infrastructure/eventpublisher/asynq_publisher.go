package eventpublisher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"github.com/iho/gobooks/internal/domain"
)

// TaskPrefix namespaces the task types enqueued for outbox events.
const TaskPrefix = "gobooks:"

// EventTask is the payload of an enqueued outbox event.
type EventTask struct {
	EventID       string         `json:"event_id"`
	AggregateID   string         `json:"aggregate_id"`
	AggregateType string         `json:"aggregate_type"`
	EventType     string         `json:"event_type"`
	Payload       map[string]any `json:"payload"`
	CreatedAt     time.Time      `json:"created_at"`
}

type enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// AsynqPublisher enqueues each event as an asynq task for downstream workers.
type AsynqPublisher struct {
	client   enqueuer
	queue    string
	maxRetry int
}

// NewAsynqPublisher creates a publisher on top of an asynq client.
func NewAsynqPublisher(client *asynq.Client) *AsynqPublisher {
	return newAsynqPublisher(client)
}

func newAsynqPublisher(client enqueuer) *AsynqPublisher {
	return &AsynqPublisher{
		client:   client,
		queue:    "default",
		maxRetry: 3,
	}
}

// NewAsynqClient builds an asynq client from a redis:// URL.
func NewAsynqClient(redisURL string) (*asynq.Client, error) {
	opt, err := asynq.ParseRedisURI(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL for asynq: %w", err)
	}
	return asynq.NewClient(opt), nil
}

// NewEventTask builds the task for an event. The event ID is the task ID,
// so re-publishing an event already enqueued is a no-op.
func NewEventTask(event *domain.OutboxEvent) (*asynq.Task, error) {
	body, err := json.Marshal(EventTask{
		EventID:       event.ID,
		AggregateID:   event.AggregateID,
		AggregateType: event.AggregateType,
		EventType:     event.EventType,
		Payload:       event.Payload,
		CreatedAt:     event.CreatedAt,
	})
	if err != nil {
		return nil, err
	}

	return asynq.NewTask(TaskPrefix+event.EventType, body, asynq.TaskID(event.ID)), nil
}

// Publish enqueues the event.
func (p *AsynqPublisher) Publish(ctx context.Context, event *domain.OutboxEvent) error {
	task, err := NewEventTask(event)
	if err != nil {
		return err
	}

	_, err = p.client.EnqueueContext(ctx, task, asynq.Queue(p.queue), asynq.MaxRetry(p.maxRetry))
	if errors.Is(err, asynq.ErrTaskIDConflict) {
		return nil
	}

	return err
}
