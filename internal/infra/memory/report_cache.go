package memory

import (
	"context"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"archetype-bot/internal/domain"
	"golang.org/x/sync/singleflight"
)

// ReportSource fetches a user's latest finalized report from a backing store.
type ReportSource interface {
	LatestReport(ctx context.Context, userID int64) (domain.Report, error)
}

// ReportCache caches latest reports with TTL to avoid repeated DB hits from
// the "my results" flow and the admin console.
type ReportCache struct {
	source ReportSource
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand

	mu    sync.RWMutex
	cache map[int64]cachedReport
}

type cachedReport struct {
	report    domain.Report
	expiresAt time.Time
}

func NewReportCache(source ReportSource, ttl time.Duration) *ReportCache {
	return &ReportCache{
		source: source,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[int64]cachedReport),
	}
}

func (c *ReportCache) LatestReport(ctx context.Context, userID int64) (domain.Report, error) {
	now := c.clock()

	c.mu.RLock()
	if entry, ok := c.cache[userID]; ok && entry.expiresAt.After(now) {
		c.mu.RUnlock()
		return entry.report, nil
	}
	c.mu.RUnlock()

	result, err, _ := c.sf.Do(strconv.FormatInt(userID, 10), func() (interface{}, error) {
		now := c.clock()
		c.mu.RLock()
		if entry, ok := c.cache[userID]; ok && entry.expiresAt.After(now) {
			c.mu.RUnlock()
			return entry.report, nil
		}
		c.mu.RUnlock()

		report, err := c.source.LatestReport(ctx, userID)
		if err != nil {
			return domain.Report{}, err
		}

		c.mu.Lock()
		c.cache[userID] = cachedReport{
			report:    report,
			expiresAt: now.Add(c.ttlWithJitter()),
		}
		c.mu.Unlock()
		return report, nil
	})
	if err != nil {
		return domain.Report{}, err
	}
	return result.(domain.Report), nil
}

// Invalidate drops the cached entry after a user finishes a new test.
func (c *ReportCache) Invalidate(userID int64) {
	c.mu.Lock()
	delete(c.cache, userID)
	c.mu.Unlock()
}

// Len reports the number of cached entries, for health reporting.
func (c *ReportCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.cache)
}

func (c *ReportCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
