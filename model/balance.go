// model/balance.go
package model

import "time"

// BalanceCacheEntry is one cached balance fetch, keyed by (wallet, mint).
// Entries are never physically evicted: a stale entry is overwritten by the
// next successful fetch and serves as the last-resort fallback value when
// every live source fails.
type BalanceCacheEntry struct {
	Wallet    string    `json:"wallet"`
	Mint      string    `json:"mint"`
	Balance   float64   `json:"balance"`
	FetchedAt time.Time `json:"fetched_at"`
}

// Fresh reports whether the entry is still within the cache TTL at the
// given instant.
func (e BalanceCacheEntry) Fresh(now time.Time, ttl time.Duration) bool {
	return now.Sub(e.FetchedAt) < ttl
}
