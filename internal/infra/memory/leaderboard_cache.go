package memory

import (
	"context"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
	"mathquiz-service/internal/domain"
)

// ResultBackend is the contract the cache wraps, declared locally so the
// cache can front any result store without importing the app package.
type ResultBackend interface {
	Append(ctx context.Context, result domain.GameResult) error
	TopByScore(ctx context.Context, limit int) ([]domain.GameResult, error)
}

// LeaderboardCache caches top-N reads with TTL to avoid repeated DB hits;
// writes pass through and drop the cached boards.
type LeaderboardCache struct {
	backend ResultBackend
	ttl     time.Duration
	clock   func() time.Time
	sf      singleflight.Group
	rnd     *rand.Rand

	mu    sync.RWMutex
	cache map[int]cachedBoard
}

type cachedBoard struct {
	results   []domain.GameResult
	expiresAt time.Time
}

func NewLeaderboardCache(backend ResultBackend, ttl time.Duration) *LeaderboardCache {
	return &LeaderboardCache{
		backend: backend,
		ttl:     ttl,
		clock:   time.Now,
		rnd:     rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:   make(map[int]cachedBoard),
	}
}

func (c *LeaderboardCache) Append(ctx context.Context, result domain.GameResult) error {
	if err := c.backend.Append(ctx, result); err != nil {
		return err
	}
	c.mu.Lock()
	c.cache = make(map[int]cachedBoard)
	c.mu.Unlock()
	return nil
}

func (c *LeaderboardCache) TopByScore(ctx context.Context, limit int) ([]domain.GameResult, error) {
	now := c.clock()

	c.mu.RLock()
	if entry, ok := c.cache[limit]; ok && entry.expiresAt.After(now) {
		c.mu.RUnlock()
		return entry.results, nil
	}
	c.mu.RUnlock()

	results, err, _ := c.sf.Do(strconv.Itoa(limit), func() (interface{}, error) {
		now := c.clock()
		c.mu.RLock()
		if entry, ok := c.cache[limit]; ok && entry.expiresAt.After(now) {
			c.mu.RUnlock()
			return entry.results, nil
		}
		c.mu.RUnlock()

		top, err := c.backend.TopByScore(ctx, limit)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.cache[limit] = cachedBoard{
			results:   top,
			expiresAt: now.Add(c.ttlWithJitter()),
		}
		c.mu.Unlock()
		return top, nil
	})
	if err != nil {
		return nil, err
	}
	return results.([]domain.GameResult), nil
}

func (c *LeaderboardCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
