// oracle/oracle_test.go
package oracle

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gate_errors "github.com/dev-mohitbeniwal/tokengate/errors"
	"github.com/dev-mohitbeniwal/tokengate/model"
)

const (
	testWallet = "So11111111111111111111111111111111111111112"
	testMint   = "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"
)

// stubSource counts calls and returns a fixed answer.
type stubSource struct {
	name    string
	balance float64
	err     error
	calls   int
}

func (s *stubSource) Name() string { return s.name }

func (s *stubSource) Fetch(ctx context.Context, wallet, mint string) (float64, error) {
	s.calls++
	return s.balance, s.err
}

func TestGetBalanceCachesResult(t *testing.T) {
	src := &stubSource{name: "primary", balance: 75000}
	o := New([]BalanceSource{src}, NewMemoryCache(), 5*time.Minute)

	balance, err := o.GetBalance(context.Background(), testWallet, testMint)
	require.NoError(t, err)
	assert.Equal(t, 75000.0, balance)

	// Second lookup within the TTL must be served from cache.
	balance, err = o.GetBalance(context.Background(), testWallet, testMint)
	require.NoError(t, err)
	assert.Equal(t, 75000.0, balance)
	assert.Equal(t, 1, src.calls)
}

func TestGetBalanceFallsThroughFailedSource(t *testing.T) {
	primary := &stubSource{name: "primary", err: errors.New("boom")}
	secondary := &stubSource{name: "secondary", balance: 42}
	o := New([]BalanceSource{primary, secondary}, NewMemoryCache(), 5*time.Minute)

	balance, err := o.GetBalance(context.Background(), testWallet, testMint)
	require.NoError(t, err)
	assert.Equal(t, 42.0, balance)
	assert.Equal(t, 1, primary.calls)
	assert.Equal(t, 1, secondary.calls)
}

func TestGetBalanceSkipsRateLimitedSource(t *testing.T) {
	primary := &stubSource{name: "primary", err: gate_errors.ErrRateLimited}
	secondary := &stubSource{name: "secondary", balance: 51000}
	o := New([]BalanceSource{primary, secondary}, NewMemoryCache(), 5*time.Minute)

	balance, err := o.GetBalance(context.Background(), testWallet, testMint)
	require.NoError(t, err)
	assert.Equal(t, 51000.0, balance)
}

func TestGetBalanceSkipsUnlistedToken(t *testing.T) {
	primary := &stubSource{name: "primary", err: errTokenNotListed}
	secondary := &stubSource{name: "secondary", balance: 123.45}
	o := New([]BalanceSource{primary, secondary}, NewMemoryCache(), 5*time.Minute)

	balance, err := o.GetBalance(context.Background(), testWallet, testMint)
	require.NoError(t, err)
	assert.Equal(t, 123.45, balance)
}

func TestGetBalanceZeroIsDefinitive(t *testing.T) {
	primary := &stubSource{name: "primary", balance: 0}
	secondary := &stubSource{name: "secondary", balance: 99999}
	o := New([]BalanceSource{primary, secondary}, NewMemoryCache(), 5*time.Minute)

	balance, err := o.GetBalance(context.Background(), testWallet, testMint)
	require.NoError(t, err)
	assert.Equal(t, 0.0, balance)
	assert.Equal(t, 0, secondary.calls)
}

func TestGetBalanceStaleCacheFallback(t *testing.T) {
	src := &stubSource{name: "primary", balance: 60000}
	cache := NewMemoryCache()
	o := New([]BalanceSource{src}, cache, 5*time.Minute)

	now := time.Now()
	o.now = func() time.Time { return now }

	_, err := o.GetBalance(context.Background(), testWallet, testMint)
	require.NoError(t, err)

	// Push past the TTL and break the source: the stale value still answers.
	o.now = func() time.Time { return now.Add(10 * time.Minute) }
	src.err = errors.New("upstream down")

	balance, err := o.GetBalance(context.Background(), testWallet, testMint)
	require.NoError(t, err)
	assert.Equal(t, 60000.0, balance)
	assert.Equal(t, 2, src.calls)
}

func TestGetBalanceAllSourcesFailNoCache(t *testing.T) {
	primary := &stubSource{name: "primary", err: errors.New("down")}
	secondary := &stubSource{name: "secondary", err: gate_errors.ErrRateLimited}
	o := New([]BalanceSource{primary, secondary}, NewMemoryCache(), 5*time.Minute)

	_, err := o.GetBalance(context.Background(), testWallet, testMint)
	assert.ErrorIs(t, err, gate_errors.ErrBalanceUnavailable)
}

func TestMemoryCacheNeverRegresses(t *testing.T) {
	cache := NewMemoryCache()
	now := time.Now()

	newer := model.BalanceCacheEntry{Wallet: testWallet, Mint: testMint, Balance: 2, FetchedAt: now}
	older := model.BalanceCacheEntry{Wallet: testWallet, Mint: testMint, Balance: 1, FetchedAt: now.Add(-time.Minute)}

	require.NoError(t, cache.Set(context.Background(), newer))
	require.NoError(t, cache.Set(context.Background(), older))

	entry, err := cache.Get(context.Background(), testWallet, testMint)
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, 2.0, entry.Balance)
}
