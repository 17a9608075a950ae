package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/stemsi/exstem-paper/internal/config"
	"github.com/stemsi/exstem-paper/internal/model"
)

// QuestionTypeRepository caches the question type catalogue fetched from the API.
type QuestionTypeRepository struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewQuestionTypeRepository creates a new QuestionTypeRepository.
func NewQuestionTypeRepository(rdb *redis.Client, ttl time.Duration) *QuestionTypeRepository {
	return &QuestionTypeRepository{rdb: rdb, ttl: ttl}
}

// Get returns the cached catalogue; ok is false on a cache miss.
func (r *QuestionTypeRepository) Get(ctx context.Context) (types []model.QuestionTypeInfo, ok bool, err error) {
	raw, err := r.rdb.Get(ctx, config.CacheKey.QuestionTypesKey()).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get question types: %w", err)
	}
	if err := json.Unmarshal(raw, &types); err != nil {
		return nil, false, fmt.Errorf("decode question types: %w", err)
	}
	return types, true, nil
}

// Set stores the catalogue.
func (r *QuestionTypeRepository) Set(ctx context.Context, types []model.QuestionTypeInfo) error {
	raw, err := json.Marshal(types)
	if err != nil {
		return fmt.Errorf("encode question types: %w", err)
	}
	if err := r.rdb.Set(ctx, config.CacheKey.QuestionTypesKey(), raw, r.ttl).Err(); err != nil {
		return fmt.Errorf("set question types: %w", err)
	}
	return nil
}
