// Package history persists query/result records. Two backends sit behind
// the same contract: an append-only JSONL file and a Redis list. Both
// append one record atomically and list in insertion order.
package history

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"github.com/shopmate-ai/shopmate/internal/domain"
)

// FileStore appends history entries to a JSONL file, one record per
// line. A mutex serializes writers so records never interleave.
type FileStore struct {
	path   string
	mu     sync.Mutex
	logger *zap.Logger
}

// NewFileStore creates a file-backed history store, creating the parent
// directory if needed.
func NewFileStore(path string, logger *zap.Logger) (*FileStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("create history dir: %w", err)
		}
	}
	return &FileStore{path: path, logger: logger}, nil
}

// Append writes one entry as a single JSON line.
func (s *FileStore) Append(_ context.Context, entry domain.HistoryEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal history entry: %w", err)
	}
	data = append(data, '\n')

	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o640)
	if err != nil {
		return fmt.Errorf("open history file: %w", err)
	}
	defer func() { _ = f.Close() }()

	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("append history entry: %w", err)
	}
	return nil
}

// List returns all entries, oldest first. A missing file means empty
// history; corrupt lines are skipped with a warning so one bad record
// does not hide the rest.
func (s *FileStore) List(_ context.Context) ([]domain.HistoryEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: open history file: %w", domain.ErrHistoryUnavailable, err)
	}
	defer func() { _ = f.Close() }()

	var entries []domain.HistoryEntry
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}
		var entry domain.HistoryEntry
		if err := json.Unmarshal(raw, &entry); err != nil {
			s.logger.Warn("Skipping corrupt history record",
				zap.Int("line", line),
				zap.Error(err),
			)
			continue
		}
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: read history file: %w", domain.ErrHistoryUnavailable, err)
	}
	return entries, nil
}

// Ping verifies the backing directory is reachable.
func (s *FileStore) Ping(_ context.Context) error {
	if _, err := os.Stat(filepath.Dir(s.path)); err != nil {
		return fmt.Errorf("history dir: %w", err)
	}
	return nil
}
