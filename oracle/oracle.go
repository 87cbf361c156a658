// oracle/oracle.go
package oracle

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	gate_errors "github.com/dev-mohitbeniwal/tokengate/errors"
	logger "github.com/dev-mohitbeniwal/tokengate/logging"
	"github.com/dev-mohitbeniwal/tokengate/model"
)

// Oracle answers balance queries by consulting upstream sources in a fixed
// priority order, backed by a time-bounded cache. All failure modes funnel
// into gate_errors.ErrBalanceUnavailable or a cached value; GetBalance
// never panics.
type Oracle struct {
	sources []BalanceSource
	cache   Cache
	ttl     time.Duration

	now func() time.Time
}

func New(sources []BalanceSource, cache Cache, ttl time.Duration) *Oracle {
	return &Oracle{
		sources: sources,
		cache:   cache,
		ttl:     ttl,
		now:     time.Now,
	}
}

// GetBalance resolves the token balance for (wallet, mint).
//
// A fresh cache entry short-circuits without any network call. Otherwise
// sources are tried in order, each at most once, stopping at the first
// definitive answer; a rate-limited source is skipped in favor of the
// next. When every source fails, a stale cache entry is preferred over no
// data; with no entry at all the error is ErrBalanceUnavailable.
func (o *Oracle) GetBalance(ctx context.Context, wallet, mint string) (float64, error) {
	entry, err := o.cache.Get(ctx, wallet, mint)
	if err != nil {
		logger.Warn("Balance cache read failed", zap.Error(err), zap.String("wallet", model.ShortWallet(wallet)))
		entry = nil
	}
	if entry != nil && entry.Fresh(o.now(), o.ttl) {
		logger.Debug("Using cached balance",
			zap.String("wallet", model.ShortWallet(wallet)),
			zap.Float64("balance", entry.Balance))
		return entry.Balance, nil
	}

	for _, source := range o.sources {
		balance, err := source.Fetch(ctx, wallet, mint)
		if err != nil {
			if errors.Is(err, gate_errors.ErrRateLimited) {
				logger.Warn("Balance source rate limited, trying next",
					zap.String("source", source.Name()),
					zap.String("wallet", model.ShortWallet(wallet)))
			} else {
				logger.Warn("Balance source failed",
					zap.String("source", source.Name()),
					zap.String("wallet", model.ShortWallet(wallet)),
					zap.Error(err))
			}
			continue
		}

		logger.Info("Balance fetched",
			zap.String("source", source.Name()),
			zap.String("wallet", model.ShortWallet(wallet)),
			zap.Float64("balance", balance))
		o.store(ctx, wallet, mint, balance)
		return balance, nil
	}

	// Degraded mode: every source failed, stale data beats no data.
	if entry != nil {
		logger.Warn("All balance sources failed, returning stale cached balance",
			zap.String("wallet", model.ShortWallet(wallet)),
			zap.Float64("balance", entry.Balance),
			zap.Time("fetchedAt", entry.FetchedAt))
		return entry.Balance, nil
	}

	logger.Error("All balance sources failed and no cached value available",
		zap.String("wallet", model.ShortWallet(wallet)))
	return 0, gate_errors.ErrBalanceUnavailable
}

func (o *Oracle) store(ctx context.Context, wallet, mint string, balance float64) {
	entry := model.BalanceCacheEntry{
		Wallet:    wallet,
		Mint:      mint,
		Balance:   balance,
		FetchedAt: o.now(),
	}
	if err := o.cache.Set(ctx, entry); err != nil {
		logger.Warn("Failed to cache balance", zap.Error(err), zap.String("wallet", model.ShortWallet(wallet)))
	}
}
