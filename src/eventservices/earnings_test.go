package eventservices

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/jiaming2012/forward-factor/src/eventmodels"
	"github.com/jiaming2012/forward-factor/src/utils"
)

type fakeEarningsProvider struct {
	calls int32
	date  string
	found bool
	err   error
	delay time.Duration
}

func (f *fakeEarningsProvider) FetchNextEarningsDate(ctx context.Context, symbol eventmodels.StockSymbol) (string, bool, error) {
	atomic.AddInt32(&f.calls, 1)
	if f.delay > 0 {
		time.Sleep(f.delay)
	}

	return f.date, f.found, f.err
}

// blockingEarningsProvider holds the lookup open until released and fails if its
// context is cancelled first.
type blockingEarningsProvider struct {
	calls   int32
	started chan struct{}
	release chan struct{}
	once    sync.Once
}

func (b *blockingEarningsProvider) FetchNextEarningsDate(ctx context.Context, symbol eventmodels.StockSymbol) (string, bool, error) {
	atomic.AddInt32(&b.calls, 1)
	b.once.Do(func() { close(b.started) })

	select {
	case <-b.release:
		return "2025-04-30", true, nil
	case <-ctx.Done():
		return "", false, ctx.Err()
	}
}

type memoryEarningsStore struct {
	mu      sync.Mutex
	entries map[eventmodels.StockSymbol]CachedEarningsDate
}

func (s *memoryEarningsStore) Load(ctx context.Context, symbol eventmodels.StockSymbol) (*CachedEarningsDate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[symbol]
	if !ok {
		return nil, nil
	}

	return &entry, nil
}

func (s *memoryEarningsStore) Save(ctx context.Context, symbol eventmodels.StockSymbol, entry CachedEarningsDate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[symbol] = entry
	return nil
}

func TestFinnhubEarningsProvider(t *testing.T) {
	utils.RetryInitialInterval = time.Millisecond

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/calendar/earnings", r.URL.Path)
		assert.Equal(t, "key", r.URL.Query().Get("token"))
		assert.Equal(t, "2025-03-03", r.URL.Query().Get("from"))
		assert.Equal(t, "2025-06-01", r.URL.Query().Get("to"))

		switch r.URL.Query().Get("symbol") {
		case "AAPL":
			w.Write([]byte(`{"earningsCalendar":[{"date":"2025-05-01","symbol":"AAPL","hour":"amc","quarter":2,"year":2025},{"date":"2025-04-30","symbol":"AAPL"}]}`))
		case "FAIL":
			w.WriteHeader(http.StatusForbidden)
		default:
			w.Write([]byte(`{"earningsCalendar":[]}`))
		}
	}))
	defer srv.Close()

	p := NewFinnhubEarningsProvider("key")
	p.BaseURL = srv.URL
	p.Limiter = rate.NewLimiter(rate.Inf, 1)
	p.Now = func() time.Time { return time.Date(2025, 3, 3, 18, 0, 0, 0, time.UTC) }

	date, found, err := p.FetchNextEarningsDate(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "2025-04-30", date)

	_, found, err = p.FetchNextEarningsDate(context.Background(), "SPY")
	require.NoError(t, err)
	assert.False(t, found)

	_, _, err = p.FetchNextEarningsDate(context.Background(), "FAIL")
	assert.ErrorIs(t, err, eventmodels.ErrProviderUnavailable)
}

func TestExtractYahooEarningsDate(t *testing.T) {
	cases := []struct {
		name     string
		html     string
		expected string
		found    bool
	}{
		{"raw timestamp", `..."earningsTimestamp":{"raw":1746043200,"fmt":"2025-04-30"}...`, "2025-04-30", true},
		{"bare timestamp", `{"earningsTimestamp": 1746043200}`, "2025-04-30", true},
		{"short month text", `<td>Earnings Date Apr 30, 2025</td>`, "2025-04-30", true},
		{"long month text", `Next Earnings Date: January 28, 2025</td>`, "2025-01-28", true},
		{"nothing", `<html>no data</html>`, "", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			date, found := ExtractYahooEarningsDate(tc.html)
			assert.Equal(t, tc.found, found)
			assert.Equal(t, tc.expected, date)
		})
	}
}

func TestYahooEarningsProvider(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/quote/AAPL", r.URL.Path)
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		w.Write([]byte(`"earningsTimestamp":{"raw":1746043200}`))
	}))
	defer srv.Close()

	p := NewYahooEarningsProvider()
	p.BaseURL = srv.URL
	p.Limiter = rate.NewLimiter(rate.Inf, 1)

	date, found, err := p.FetchNextEarningsDate(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "2025-04-30", date)
}

func TestChainedEarningsProvider(t *testing.T) {
	failing := &fakeEarningsProvider{err: errors.New("boom")}
	empty := &fakeEarningsProvider{}
	hit := &fakeEarningsProvider{date: "2025-04-30", found: true}

	t.Run("first found wins", func(t *testing.T) {
		date, found, err := NewChainedEarningsProvider(failing, empty, hit).FetchNextEarningsDate(context.Background(), "AAPL")
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, "2025-04-30", date)
	})

	t.Run("absent is not an error", func(t *testing.T) {
		_, found, err := NewChainedEarningsProvider(failing, empty).FetchNextEarningsDate(context.Background(), "AAPL")
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("all failing", func(t *testing.T) {
		_, _, err := NewChainedEarningsProvider(failing, failing).FetchNextEarningsDate(context.Background(), "AAPL")
		assert.Error(t, err)
	})
}

func TestEarningsCache(t *testing.T) {
	t.Run("concurrent lookups fetch once", func(t *testing.T) {
		provider := &fakeEarningsProvider{date: "2025-04-30", found: true, delay: 20 * time.Millisecond}
		cache := NewEarningsCache(provider, nil)

		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				date, found, err := cache.FetchNextEarningsDate(context.Background(), "AAPL")
				assert.NoError(t, err)
				assert.True(t, found)
				assert.Equal(t, "2025-04-30", date)
			}()
		}
		wg.Wait()

		assert.Equal(t, int32(1), atomic.LoadInt32(&provider.calls))
	})

	t.Run("absent dates are cached", func(t *testing.T) {
		provider := &fakeEarningsProvider{}
		cache := NewEarningsCache(provider, nil)

		for i := 0; i < 3; i++ {
			_, found, err := cache.FetchNextEarningsDate(context.Background(), "SPY")
			require.NoError(t, err)
			assert.False(t, found)
		}

		assert.Equal(t, int32(1), atomic.LoadInt32(&provider.calls))
	})

	t.Run("failures are not cached", func(t *testing.T) {
		provider := &fakeEarningsProvider{err: eventmodels.ErrProviderUnavailable}
		cache := NewEarningsCache(provider, nil)

		_, _, err := cache.FetchNextEarningsDate(context.Background(), "AAPL")
		assert.ErrorIs(t, err, eventmodels.ErrProviderUnavailable)

		_, _, err = cache.FetchNextEarningsDate(context.Background(), "AAPL")
		assert.Error(t, err)
		assert.Equal(t, int32(2), atomic.LoadInt32(&provider.calls))
	})

	t.Run("cancelled caller does not fail the shared lookup", func(t *testing.T) {
		provider := &blockingEarningsProvider{started: make(chan struct{}), release: make(chan struct{})}
		cache := NewEarningsCache(provider, nil)

		firstCtx, cancel := context.WithCancel(context.Background())
		firstErr := make(chan error, 1)
		go func() {
			_, _, err := cache.FetchNextEarningsDate(firstCtx, "AAPL")
			firstErr <- err
		}()

		<-provider.started

		type lookup struct {
			date string
			err  error
		}
		second := make(chan lookup, 1)
		go func() {
			date, _, err := cache.FetchNextEarningsDate(context.Background(), "AAPL")
			second <- lookup{date, err}
		}()

		time.Sleep(20 * time.Millisecond)
		cancel()
		time.Sleep(20 * time.Millisecond)
		close(provider.release)

		got := <-second
		require.NoError(t, got.err)
		assert.Equal(t, "2025-04-30", got.date)
		assert.NoError(t, <-firstErr)
		assert.Equal(t, int32(1), atomic.LoadInt32(&provider.calls))
	})

	t.Run("already cancelled context still resolves", func(t *testing.T) {
		provider := &blockingEarningsProvider{started: make(chan struct{}), release: make(chan struct{})}
		close(provider.release)
		cache := NewEarningsCache(provider, nil)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		date, found, err := cache.FetchNextEarningsDate(ctx, "MSFT")
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, "2025-04-30", date)
	})

	t.Run("store is read through and written back", func(t *testing.T) {
		store := &memoryEarningsStore{entries: map[eventmodels.StockSymbol]CachedEarningsDate{
			"MSFT": {Date: "2025-04-24", Found: true},
		}}
		provider := &fakeEarningsProvider{date: "2025-04-30", found: true}
		cache := NewEarningsCache(provider, store)

		date, _, err := cache.FetchNextEarningsDate(context.Background(), "MSFT")
		require.NoError(t, err)
		assert.Equal(t, "2025-04-24", date)
		assert.Equal(t, int32(0), atomic.LoadInt32(&provider.calls))

		_, _, err = cache.FetchNextEarningsDate(context.Background(), "AAPL")
		require.NoError(t, err)
		assert.Equal(t, "2025-04-30", store.entries["AAPL"].Date)
	})
}
