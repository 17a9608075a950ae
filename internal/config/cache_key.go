package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// DraftKey returns the cache key holding a paper's draft tree and undo history
func (r *CacheKeyStruct) DraftKey(paperID string) string {
	return fmt.Sprintf("draft:paper:%s", paperID)
}

// QuestionTypesKey returns the cache key for the question type catalogue
func (r *CacheKeyStruct) QuestionTypesKey() string {
	return "catalog:question_types"
}

// PaperChangesChannel returns the Redis PubSub channel notified on every draft save
func (r *CacheKeyStruct) PaperChangesChannel(paperID string) string {
	return fmt.Sprintf("paper:%s:changes", paperID)
}

// RenderRateKey returns the counter key for a caller's render requests in a window
func (r *CacheKeyStruct) RenderRateKey(caller string, window int64) string {
	return fmt.Sprintf("ratelimit:render:%s:%d", caller, window)
}

var CacheKey = NewCacheKeyStruct()
