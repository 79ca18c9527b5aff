package history

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"
)

// RotatingStore writes records through lumberjack so the log is rotated by
// size and age.
type RotatingStore struct {
	mu     sync.Mutex
	logger *lumberjack.Logger
	path   string
}

// NewRotatingStore creates a store rotating at maxSizeMB, keeping maxBackups
// files for at most maxAgeDays.
func NewRotatingStore(path string, maxSizeMB, maxBackups, maxAgeDays int) (*RotatingStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	lj := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    maxSizeMB,
		MaxBackups: maxBackups,
		MaxAge:     maxAgeDays,
	}
	return &RotatingStore{logger: lj, path: path}, nil
}

func (s *RotatingStore) Append(ctx context.Context, rec Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err = s.logger.Write(append(data, '\n'))
	return err
}

// Query reads the rotated backups, oldest first, then the active file.
func (s *RotatingStore) Query(ctx context.Context, q Query) ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ext := filepath.Ext(s.path)
	prefix := s.path[:len(s.path)-len(ext)]
	backups, err := filepath.Glob(prefix + "-*" + ext)
	if err != nil {
		return nil, err
	}
	// lumberjack timestamps sort lexically
	sort.Strings(backups)
	var out []Record
	for _, name := range append(backups, s.path) {
		f, err := os.Open(name)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return out, err
		}
		out, err = scan(ctx, f, q, out)
		_ = f.Close()
		if err != nil {
			return out, err
		}
	}
	return out, nil
}

// Close closes the active file.
func (s *RotatingStore) Close() error {
	return s.logger.Close()
}
