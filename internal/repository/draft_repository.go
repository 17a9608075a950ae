package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/stemsi/exstem-paper/internal/config"
	"github.com/stemsi/exstem-paper/internal/model"
	"github.com/stemsi/exstem-paper/internal/paper"
)

// ErrDraftNotFound is returned when no draft is open for a paper.
var ErrDraftNotFound = errors.New("draft not found")

// DraftRepository keeps the working tree of each open paper in Redis.
// Saves overwrite unconditionally: last write wins.
type DraftRepository struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewDraftRepository creates a new DraftRepository.
func NewDraftRepository(rdb *redis.Client, ttl time.Duration) *DraftRepository {
	return &DraftRepository{rdb: rdb, ttl: ttl}
}

// Get loads the draft of a paper.
func (r *DraftRepository) Get(ctx context.Context, paperID model.ID) (paper.State, error) {
	var state paper.State

	raw, err := r.rdb.Get(ctx, config.CacheKey.DraftKey(paperID.String())).Bytes()
	if err == redis.Nil {
		return state, ErrDraftNotFound
	}
	if err != nil {
		return state, fmt.Errorf("get draft: %w", err)
	}

	if err := json.Unmarshal(raw, &state); err != nil {
		return state, fmt.Errorf("decode draft: %w", err)
	}
	return state, nil
}

// Save stores the draft, refreshes its TTL and notifies preview subscribers.
func (r *DraftRepository) Save(ctx context.Context, paperID model.ID, state paper.State) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode draft: %w", err)
	}

	pipe := r.rdb.Pipeline()
	pipe.Set(ctx, config.CacheKey.DraftKey(paperID.String()), raw, r.ttl)
	pipe.Publish(ctx, config.CacheKey.PaperChangesChannel(paperID.String()), paperID.String())
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("save draft: %w", err)
	}
	return nil
}

// Delete discards the draft of a paper.
func (r *DraftRepository) Delete(ctx context.Context, paperID model.ID) error {
	if err := r.rdb.Del(ctx, config.CacheKey.DraftKey(paperID.String())).Err(); err != nil {
		return fmt.Errorf("delete draft: %w", err)
	}
	return nil
}

// Subscribe listens for saves of a paper's draft. The caller must Close the
// returned PubSub.
func (r *DraftRepository) Subscribe(ctx context.Context, paperID model.ID) *redis.PubSub {
	return r.rdb.Subscribe(ctx, config.CacheKey.PaperChangesChannel(paperID.String()))
}
