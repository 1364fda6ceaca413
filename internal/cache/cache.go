// Package cache stores raw model replies keyed by the exact question, so a
// repeated question skips the model round trip. Entries expire, they are
// never invalidated by ingestion.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"time"
)

type AnswerCache interface {
	// Get returns the cached raw reply, or ok=false on a miss.
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key string, raw string, ttl time.Duration)
}

// Key derives the cache key from the question text and the context flag.
// Context-aware and plain answers to the same question never collide.
func Key(question string, contextAware bool) string {
	sum := sha256.Sum256([]byte(question + "|" + strconv.FormatBool(contextAware)))
	return "answer:" + hex.EncodeToString(sum[:])
}
