package history

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/shopmate-ai/shopmate/internal/db"
	"github.com/shopmate-ai/shopmate/internal/domain"
)

const historyKey = "shopmate:history"

// store is the consumer interface for the Redis history backend.
type store interface {
	RPush(ctx context.Context, key string, value []byte) error
	Range(ctx context.Context, key string, start, stop int64) ([][]byte, error)
}

// RedisStore keeps history in a Redis list. RPUSH is atomic per record,
// which gives the required record-granular append semantics without
// client-side locking.
type RedisStore struct {
	store  store
	key    string
	logger *zap.Logger
}

// NewRedisStore creates a Redis-backed history store.
func NewRedisStore(s db.ListStore, logger *zap.Logger) *RedisStore {
	return &RedisStore{store: s, key: historyKey, logger: logger}
}

// Append pushes one entry to the tail of the history list.
func (s *RedisStore) Append(ctx context.Context, entry domain.HistoryEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal history entry: %w", err)
	}
	if err := s.store.RPush(ctx, s.key, data); err != nil {
		return fmt.Errorf("push history entry: %w", err)
	}
	return nil
}

// List returns all entries, oldest first. Corrupt records are skipped
// with a warning.
func (s *RedisStore) List(ctx context.Context) ([]domain.HistoryEntry, error) {
	rows, err := s.store.Range(ctx, s.key, 0, -1)
	if err != nil {
		return nil, fmt.Errorf("%w: range history list: %w", domain.ErrHistoryUnavailable, err)
	}

	entries := make([]domain.HistoryEntry, 0, len(rows))
	for i, raw := range rows {
		var entry domain.HistoryEntry
		if err := json.Unmarshal(raw, &entry); err != nil {
			s.logger.Warn("Skipping corrupt history record",
				zap.Int("index", i),
				zap.Error(err),
			)
			continue
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
