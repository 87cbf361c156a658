// dao/user_dao_test.go
package dao

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gate_errors "github.com/dev-mohitbeniwal/tokengate/errors"
	"github.com/dev-mohitbeniwal/tokengate/model"
)

func newTestDAO(t *testing.T) *UserDAO {
	t.Helper()
	return NewUserDAO(filepath.Join(t.TempDir(), "users.json"))
}

func TestGetUserMissingFile(t *testing.T) {
	dao := newTestDAO(t)

	_, err := dao.GetUser(context.Background(), "12345")
	assert.ErrorIs(t, err, gate_errors.ErrUserNotFound)
}

func TestSetWalletRoundTrip(t *testing.T) {
	dao := newTestDAO(t)
	ctx := context.Background()

	user := model.UserRecord{
		ID:       "12345",
		Wallet:   "7Gk1v2Qw3e4r5t6y7u8i9oPkJhGfDsAqWeRtYuXoPm9a",
		Name:     "Alice",
		Username: "alice",
	}
	require.NoError(t, dao.SetWallet(ctx, user))

	got, err := dao.GetUser(ctx, "12345")
	require.NoError(t, err)
	assert.Equal(t, &user, got)

	// A fresh DAO reading the same file sees the persisted state.
	reopened := NewUserDAO(dao.path)
	got, err = reopened.GetUser(ctx, "12345")
	require.NoError(t, err)
	assert.Equal(t, user.Wallet, got.Wallet)
}

func TestSetWalletOverwrites(t *testing.T) {
	dao := newTestDAO(t)
	ctx := context.Background()

	first := model.UserRecord{ID: "1", Wallet: "walletA"}
	second := model.UserRecord{ID: "1", Wallet: "walletB"}
	require.NoError(t, dao.SetWallet(ctx, first))
	require.NoError(t, dao.SetWallet(ctx, second))

	got, err := dao.GetUser(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "walletB", got.Wallet)

	users, err := dao.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestCorruptFileResolvesToEmptyRegistry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	dao := NewUserDAO(path)
	ctx := context.Background()

	_, err := dao.GetUser(ctx, "1")
	assert.ErrorIs(t, err, gate_errors.ErrUserNotFound)

	// Writes still work after the reset.
	require.NoError(t, dao.SetWallet(ctx, model.UserRecord{ID: "1", Wallet: "w"}))
	got, err := dao.GetUser(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "w", got.Wallet)
}

func TestListUsersSortedByID(t *testing.T) {
	dao := newTestDAO(t)
	ctx := context.Background()

	for _, id := range []string{"30", "10", "20"} {
		require.NoError(t, dao.SetWallet(ctx, model.UserRecord{ID: id, Wallet: "w" + id}))
	}

	users, err := dao.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 3)
	assert.Equal(t, "10", users[0].ID)
	assert.Equal(t, "20", users[1].ID)
	assert.Equal(t, "30", users[2].ID)
}
