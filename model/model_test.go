// model/model_test.go
package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShortWallet(t *testing.T) {
	assert.Equal(t, "7Gk1v2Qw...YuXoPm9a",
		ShortWallet("7Gk1v2Qw3e4r5t6y7u8i9oPkJhGfDsAqWeRtYuXoPm9a"))
	assert.Equal(t, "short", ShortWallet("short"))
	assert.Equal(t, "", ShortWallet(""))
}

func TestAccessDecisionJSONKeepsZeroBalance(t *testing.T) {
	decision := AccessDecision{
		HasBalance: true,
		Shortfall:  50000,
		Rationale:  "balance 0.00 below minimum 50000.00, missing 50000.00",
	}

	data, err := json.Marshal(decision)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"balance":0`)
}

func TestBalanceCacheEntryFresh(t *testing.T) {
	now := time.Now()
	entry := BalanceCacheEntry{FetchedAt: now.Add(-4 * time.Minute)}

	assert.True(t, entry.Fresh(now, 5*time.Minute))
	assert.False(t, entry.Fresh(now.Add(2*time.Minute), 5*time.Minute))
}
