package eventservices

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/jiaming2012/forward-factor/src/eventmodels"
)

const (
	EarningsCacheTTL = 12 * time.Hour

	earningsFetchTimeout = 30 * time.Second
)

// CachedEarningsDate is a resolved lookup. Found is false when the providers had
// no date, which is cached like any other answer.
type CachedEarningsDate struct {
	Date      string    `json:"date"`
	Found     bool      `json:"found"`
	FetchedAt time.Time `json:"fetched_at"`
}

type EarningsStore interface {
	Load(ctx context.Context, symbol eventmodels.StockSymbol) (*CachedEarningsDate, error)
	Save(ctx context.Context, symbol eventmodels.StockSymbol, entry CachedEarningsDate) error
}

// EarningsCache is a read-through cache over an EarningsProvider. Concurrent
// lookups of one ticker share a single provider call. Provider failures are
// returned to every waiting caller and are not cached. The shared call is
// detached from the cancellation of whichever caller started it.
type EarningsCache struct {
	provider eventmodels.EarningsProvider
	store    EarningsStore
	group    singleflight.Group
	entries  *cache.Cache
	now      func() time.Time
}

func NewEarningsCache(provider eventmodels.EarningsProvider, store EarningsStore) *EarningsCache {
	return &EarningsCache{
		provider: provider,
		store:    store,
		entries:  cache.New(EarningsCacheTTL, time.Hour),
		now:      time.Now,
	}
}

func (c *EarningsCache) cached(symbol eventmodels.StockSymbol) (CachedEarningsDate, bool) {
	v, ok := c.entries.Get(symbol.String())
	if !ok {
		return CachedEarningsDate{}, false
	}

	entry, ok := v.(CachedEarningsDate)
	return entry, ok
}

func (c *EarningsCache) remember(symbol eventmodels.StockSymbol, entry CachedEarningsDate) {
	c.entries.Set(symbol.String(), entry, cache.DefaultExpiration)
}

func (c *EarningsCache) FetchNextEarningsDate(ctx context.Context, symbol eventmodels.StockSymbol) (string, bool, error) {
	if entry, ok := c.cached(symbol); ok {
		return entry.Date, entry.Found, nil
	}

	v, err, _ := c.group.Do(symbol.String(), func() (interface{}, error) {
		if entry, ok := c.cached(symbol); ok {
			return entry, nil
		}

		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), earningsFetchTimeout)
		defer cancel()

		if c.store != nil {
			entry, err := c.store.Load(ctx, symbol)
			if err != nil {
				log.WithField("ticker", symbol).Warnf("EarningsCache: store load failed: %v", err)
			} else if entry != nil {
				c.remember(symbol, *entry)
				return *entry, nil
			}
		}

		date, found, err := c.provider.FetchNextEarningsDate(ctx, symbol)
		if err != nil {
			return nil, err
		}

		entry := CachedEarningsDate{Date: date, Found: found, FetchedAt: c.now()}
		c.remember(symbol, entry)

		if c.store != nil {
			if err := c.store.Save(ctx, symbol, entry); err != nil {
				log.WithField("ticker", symbol).Warnf("EarningsCache: store save failed: %v", err)
			}
		}

		return entry, nil
	})
	if err != nil {
		return "", false, fmt.Errorf("EarningsCache: %w", err)
	}

	entry := v.(CachedEarningsDate)
	return entry.Date, entry.Found, nil
}

// RedisEarningsStore shares resolved earnings dates between scanner runs.
type RedisEarningsStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisEarningsStore(client *redis.Client, ttl time.Duration) *RedisEarningsStore {
	return &RedisEarningsStore{
		client: client,
		ttl:    ttl,
	}
}

// NewRedisEarningsStoreFromURL parses a redis:// url such as REDIS_URL.
func NewRedisEarningsStoreFromURL(redisURL string, ttl time.Duration) (*RedisEarningsStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("NewRedisEarningsStoreFromURL: failed to parse redis url: %w", err)
	}

	return NewRedisEarningsStore(redis.NewClient(opts), ttl), nil
}

func earningsKey(symbol eventmodels.StockSymbol) string {
	return fmt.Sprintf("earnings:next:%s", symbol)
}

func (s *RedisEarningsStore) Load(ctx context.Context, symbol eventmodels.StockSymbol) (*CachedEarningsDate, error) {
	data, err := s.client.Get(ctx, earningsKey(symbol)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("RedisEarningsStore.Load: %w", err)
	}

	var entry CachedEarningsDate
	if err := json.Unmarshal([]byte(data), &entry); err != nil {
		return nil, fmt.Errorf("RedisEarningsStore.Load: unmarshaling entry: %w", err)
	}

	return &entry, nil
}

func (s *RedisEarningsStore) Save(ctx context.Context, symbol eventmodels.StockSymbol, entry CachedEarningsDate) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("RedisEarningsStore.Save: marshaling entry: %w", err)
	}

	return s.client.Set(ctx, earningsKey(symbol), data, s.ttl).Err()
}

func (s *RedisEarningsStore) Close() error {
	return s.client.Close()
}
