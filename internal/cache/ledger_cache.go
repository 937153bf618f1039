package cache

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	dom "Tracker/internal/domain"

	"github.com/redis/go-redis/v9"
)

const (
	keyListPrefix    = "ledger:list:"
	keySummaryPrefix = "ledger:summary:"
	keySearchPrefix  = "ledger:search:"
)

// LedgerCache caches per-user transaction lists, balance summaries and
// search results in Redis. Keys are scoped by user id so one user's
// writes never evict or expose another's data.
type LedgerCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewLedgerCache returns a new LedgerCache.
func NewLedgerCache(rdb *redis.Client, ttl time.Duration) *LedgerCache {
	return &LedgerCache{rdb: rdb, ttl: ttl}
}

// GetList returns the cached list or nil on miss.
func (c *LedgerCache) GetList(ctx context.Context, userID int64) ([]dom.Transaction, error) {
	return c.getList(ctx, keyListPrefix+uid(userID))
}

// SetList stores the list for a user.
func (c *LedgerCache) SetList(ctx context.Context, userID int64, list []dom.Transaction) error {
	return c.set(ctx, keyListPrefix+uid(userID), list)
}

// GetSearch returns the cached result for query q, or nil on miss.
func (c *LedgerCache) GetSearch(ctx context.Context, userID int64, q string) ([]dom.Transaction, error) {
	return c.getList(ctx, searchKey(userID, q))
}

// SetSearch stores the search result for a user and query.
func (c *LedgerCache) SetSearch(ctx context.Context, userID int64, q string, list []dom.Transaction) error {
	return c.set(ctx, searchKey(userID, q), list)
}

// GetSummary returns the cached balance summary, or nil on miss.
func (c *LedgerCache) GetSummary(ctx context.Context, userID int64) (*dom.BalanceSummary, error) {
	b, err := c.rdb.Get(ctx, keySummaryPrefix+uid(userID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var s dom.BalanceSummary
	if err := json.Unmarshal(b, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// SetSummary stores the balance summary for a user.
func (c *LedgerCache) SetSummary(ctx context.Context, userID int64, s dom.BalanceSummary) error {
	return c.set(ctx, keySummaryPrefix+uid(userID), s)
}

// InvalidateAll removes the user's list, summary and search keys
// (cache invalidation on every write).
func (c *LedgerCache) InvalidateAll(ctx context.Context, userID int64) error {
	if err := c.rdb.Del(ctx, keyListPrefix+uid(userID), keySummaryPrefix+uid(userID)).Err(); err != nil {
		return err
	}
	iter := c.rdb.Scan(ctx, 0, keySearchPrefix+uid(userID)+":*", 100).Iterator()
	for iter.Next(ctx) {
		if err := c.rdb.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}

func (c *LedgerCache) getList(ctx context.Context, key string) ([]dom.Transaction, error) {
	b, err := c.rdb.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var list []dom.Transaction
	if err := json.Unmarshal(b, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (c *LedgerCache) set(ctx context.Context, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, key, b, c.ttl).Err()
}

func uid(userID int64) string {
	return strconv.FormatInt(userID, 10)
}

func searchKey(userID int64, q string) string {
	return keySearchPrefix + uid(userID) + ":" + strings.ToLower(strings.TrimSpace(q))
}
