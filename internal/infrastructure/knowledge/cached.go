package knowledge

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/doeshing/aura-go/internal/domain"
	"github.com/doeshing/aura-go/internal/ports"
)

// AnswerStore persists answers between runs.
type AnswerStore interface {
	Get(key string) (domain.CacheEntry, bool, error)
	Set(entry domain.CacheEntry) error
}

// CachedSource serves repeated topics from an AnswerStore. Only successful
// answers are stored; cache failures fall through to the source.
type CachedSource struct {
	source ports.KnowledgeSource
	store  AnswerStore
	logger ports.Logger
}

// NewCachedSource wraps source. A nil store returns source unchanged.
func NewCachedSource(source ports.KnowledgeSource, store AnswerStore, logger ports.Logger) ports.KnowledgeSource {
	if store == nil {
		return source
	}
	return &CachedSource{source: source, store: store, logger: logger}
}

// Summary implements ports.KnowledgeSource.
func (c *CachedSource) Summary(ctx context.Context, topic string) (string, error) {
	key := CacheKey(topic)
	if entry, ok, err := c.store.Get(key); err != nil {
		c.warn("knowledge cache read failed", err)
	} else if ok {
		return entry.Answer, nil
	}

	answer, err := c.source.Summary(ctx, topic)
	if err != nil {
		return "", err
	}
	if err := c.store.Set(domain.CacheEntry{Key: key, Topic: normalizeTopic(topic), Answer: answer}); err != nil {
		c.warn("knowledge cache write failed", err)
	}
	return answer, nil
}

// CacheKey derives the storage key for a topic. Case and spacing do not matter.
func CacheKey(topic string) string {
	sum := sha256.Sum256([]byte(normalizeTopic(topic)))
	return hex.EncodeToString(sum[:16])
}

func normalizeTopic(topic string) string {
	return strings.ToLower(strings.Join(strings.Fields(topic), " "))
}

func (c *CachedSource) warn(msg string, err error) {
	if c.logger != nil {
		c.logger.Warn(msg, map[string]interface{}{"error": err.Error()})
	}
}
