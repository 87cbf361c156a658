// dao/user_dao.go
package dao

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"go.uber.org/zap"

	gate_errors "github.com/dev-mohitbeniwal/tokengate/errors"
	logger "github.com/dev-mohitbeniwal/tokengate/logging"
	"github.com/dev-mohitbeniwal/tokengate/model"
)

// userEntry is the on-disk shape of one registry record: a flat mapping of
// user_id to wallet plus optional display fields.
type userEntry struct {
	Wallet   string `json:"wallet"`
	Name     string `json:"name,omitempty"`
	Username string `json:"username,omitempty"`
}

// UserDAO is the membership registry: a durable user_id → wallet mapping
// backed by a JSON snapshot file. Writes are whole-snapshot overwrites
// (read full state, mutate one entry, write back), serialized by an
// internal mutex so a registration racing a scheduled sweep never loses
// an update.
type UserDAO struct {
	path string
	mu   sync.Mutex
}

func NewUserDAO(path string) *UserDAO {
	return &UserDAO{path: path}
}

// load reads the full snapshot. A missing or corrupted store resolves to
// an empty registry rather than failing startup.
func (dao *UserDAO) load() map[string]userEntry {
	data, err := os.ReadFile(dao.path)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warn("Failed to read users file, starting with empty registry",
				zap.String("path", dao.path), zap.Error(err))
		}
		return map[string]userEntry{}
	}

	var users map[string]userEntry
	if err := json.Unmarshal(data, &users); err != nil || users == nil {
		logger.Warn("Invalid users file format, resetting to empty registry",
			zap.String("path", dao.path), zap.Error(err))
		return map[string]userEntry{}
	}
	return users
}

// persist writes the full snapshot atomically (temp file + rename).
func (dao *UserDAO) persist(users map[string]userEntry) error {
	data, err := json.MarshalIndent(users, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal users: %w", err)
	}

	tmp := dao.path + ".tmp"
	if dir := filepath.Dir(dao.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create registry dir: %w", err)
		}
	}
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write users file: %w", err)
	}
	if err := os.Rename(tmp, dao.path); err != nil {
		return fmt.Errorf("replace users file: %w", err)
	}
	return nil
}

// GetUser returns the record for a user ID, or ErrUserNotFound.
func (dao *UserDAO) GetUser(ctx context.Context, userID string) (*model.UserRecord, error) {
	dao.mu.Lock()
	defer dao.mu.Unlock()

	entry, ok := dao.load()[userID]
	if !ok {
		return nil, gate_errors.ErrUserNotFound
	}
	return &model.UserRecord{
		ID:       userID,
		Wallet:   entry.Wallet,
		Name:     entry.Name,
		Username: entry.Username,
	}, nil
}

// SetWallet upserts a user record, overwriting any previously registered
// wallet. A user holds at most one wallet at a time.
func (dao *UserDAO) SetWallet(ctx context.Context, user model.UserRecord) error {
	dao.mu.Lock()
	defer dao.mu.Unlock()

	users := dao.load()
	users[user.ID] = userEntry{
		Wallet:   user.Wallet,
		Name:     user.Name,
		Username: user.Username,
	}
	if err := dao.persist(users); err != nil {
		logger.Error("Failed to persist registry", zap.Error(err), zap.String("userID", user.ID))
		return fmt.Errorf("%w: %v", gate_errors.ErrRegistryOperation, err)
	}

	logger.Info("Wallet registered",
		zap.String("userID", user.ID),
		zap.String("wallet", model.ShortWallet(user.Wallet)))
	return nil
}

// ListUsers returns every registered user, ordered by user ID for stable
// sweep iteration.
func (dao *UserDAO) ListUsers(ctx context.Context) ([]model.UserRecord, error) {
	dao.mu.Lock()
	defer dao.mu.Unlock()

	users := dao.load()
	ids := make([]string, 0, len(users))
	for id := range users {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	records := make([]model.UserRecord, 0, len(users))
	for _, id := range ids {
		entry := users[id]
		records = append(records, model.UserRecord{
			ID:       id,
			Wallet:   entry.Wallet,
			Name:     entry.Name,
			Username: entry.Username,
		})
	}
	return records, nil
}
