package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/iho/gobooks/internal/domain"
)

// DraftStore implements usecase.DraftStore using Redis.
// Drafts are stored as JSON and expire after their TTL.
type DraftStore struct {
	client     *redis.Client
	prefix     string
	lockPrefix string
}

// NewDraftStore creates a new DraftStore.
func NewDraftStore(client *redis.Client) *DraftStore {
	return &DraftStore{
		client:     client,
		prefix:     "draft:",
		lockPrefix: "draft-lock:",
	}
}

// Get retrieves a draft by ID.
func (s *DraftStore) Get(ctx context.Context, id string) (*domain.Draft, error) {
	data, err := s.client.Get(ctx, s.prefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrDraftNotFound
		}
		return nil, err
	}

	var draft domain.Draft
	if err := json.Unmarshal(data, &draft); err != nil {
		return nil, err
	}

	return &draft, nil
}

// Save stores a draft, resetting its TTL.
func (s *DraftStore) Save(ctx context.Context, draft *domain.Draft, ttl time.Duration) error {
	data, err := json.Marshal(draft)
	if err != nil {
		return err
	}

	return s.client.Set(ctx, s.prefix+draft.ID, data, ttl).Err()
}

// Delete removes a draft.
func (s *DraftStore) Delete(ctx context.Context, id string) error {
	return s.client.Del(ctx, s.prefix+id).Err()
}

// AcquireSubmit sets the in-flight flag of a draft.
// The flag expires after ttl if the holder never releases it.
func (s *DraftStore) AcquireSubmit(ctx context.Context, id string, ttl time.Duration) (bool, error) {
	return s.client.SetNX(ctx, s.lockPrefix+id, time.Now().UTC().Format(time.RFC3339Nano), ttl).Result()
}

// ReleaseSubmit clears the in-flight flag of a draft.
func (s *DraftStore) ReleaseSubmit(ctx context.Context, id string) error {
	return s.client.Del(ctx, s.lockPrefix+id).Err()
}

// SubmitInFlight reports whether the in-flight flag of a draft is set.
func (s *DraftStore) SubmitInFlight(ctx context.Context, id string) (bool, error) {
	n, err := s.client.Exists(ctx, s.lockPrefix+id).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
