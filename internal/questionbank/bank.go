// Package questionbank loads and caches immutable question catalogs,
// partitioned by difficulty tier and keyed by language.
package questionbank

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"quizpin-service/internal/domain"
)

// ErrCatalogNotFound indicates no catalog exists for a language. The
// bank translates it into an empty question list; callers must check
// emptiness before building a game.
var ErrCatalogNotFound = errors.New("question catalog not found")

// Catalog is the raw on-disk/DB shape: question lists keyed by tier.
type Catalog map[domain.Difficulty][]domain.Question

// tierOrder fixes the flattening order so a catalog always yields the
// same sequence.
var tierOrder = []domain.Difficulty{
	domain.DifficultyEasy,
	domain.DifficultyMedium,
	domain.DifficultyHard,
	domain.DifficultyHeavy,
}

// Loader fetches a catalog from a backing store (JSON files, Postgres).
type Loader interface {
	LoadCatalog(ctx context.Context, language string) (Catalog, error)
}

// Bank caches flattened catalogs per language with TTL to avoid repeated
// loader hits. The catalog is treated as immutable at runtime; Invalidate
// forces a reload after an out-of-band catalog change.
type Bank struct {
	loader Loader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand

	mu    sync.RWMutex
	cache map[string]cachedCatalog
}

type cachedCatalog struct {
	questions []domain.Question
	expiresAt time.Time
}

func NewBank(loader Loader, ttl time.Duration) *Bank {
	return &Bank{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[string]cachedCatalog),
	}
}

// Load returns all questions for a language, flattened across tiers in
// ascending difficulty order. An unknown language yields an empty slice,
// not an error.
func (b *Bank) Load(ctx context.Context, language string) ([]domain.Question, error) {
	now := b.clock()

	b.mu.RLock()
	if entry, ok := b.cache[language]; ok && entry.expiresAt.After(now) {
		b.mu.RUnlock()
		return entry.questions, nil
	}
	b.mu.RUnlock()

	result, err, _ := b.sf.Do(language, func() (interface{}, error) {
		now := b.clock()
		b.mu.RLock()
		if entry, ok := b.cache[language]; ok && entry.expiresAt.After(now) {
			b.mu.RUnlock()
			return entry.questions, nil
		}
		b.mu.RUnlock()

		catalog, err := b.loader.LoadCatalog(ctx, language)
		if err != nil {
			if errors.Is(err, ErrCatalogNotFound) {
				catalog = Catalog{}
			} else {
				return nil, err
			}
		}
		questions := Flatten(catalog)

		b.mu.Lock()
		b.cache[language] = cachedCatalog{
			questions: questions,
			expiresAt: now.Add(b.ttlWithJitter()),
		}
		b.mu.Unlock()
		return questions, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Question), nil
}

// ByDifficulty filters a loaded catalog down to one tier.
func (b *Bank) ByDifficulty(ctx context.Context, language string, difficulty domain.Difficulty) ([]domain.Question, error) {
	all, err := b.Load(ctx, language)
	if err != nil {
		return nil, err
	}
	filtered := make([]domain.Question, 0, len(all))
	for _, q := range all {
		if q.Difficulty == difficulty {
			filtered = append(filtered, q)
		}
	}
	return filtered, nil
}

// Invalidate drops the cached catalog for a language so the next Load
// hits the loader again.
func (b *Bank) Invalidate(language string) {
	b.mu.Lock()
	delete(b.cache, language)
	b.mu.Unlock()
}

// Flatten turns a tiered catalog into one ordered sequence. Tiers the
// order list does not name are appended last so no question is dropped.
func Flatten(catalog Catalog) []domain.Question {
	questions := make([]domain.Question, 0)
	seen := make(map[domain.Difficulty]bool, len(tierOrder))
	for _, tier := range tierOrder {
		questions = append(questions, catalog[tier]...)
		seen[tier] = true
	}
	for tier, qs := range catalog {
		if !seen[tier] {
			questions = append(questions, qs...)
		}
	}
	return questions
}

func (b *Bank) ttlWithJitter() time.Duration {
	if b.ttl <= 0 {
		return 0
	}
	// up to 10% jitter to spread expirations
	jitterMax := int64(b.ttl) / 10
	return b.ttl + time.Duration(b.rnd.Int63n(jitterMax+1))
}
