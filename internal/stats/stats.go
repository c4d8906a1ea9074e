// Package stats tracks greeting-card generation attempts, keyed by
// occasion and style. Counters are durable but best-effort: a failed
// write is logged and dropped, never surfaced to the caller.
package stats

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
)

// Counts holds the outcome tallies for one occasion/style pair.
type Counts struct {
	Success int64 `json:"success"`
	Failure int64 `json:"failure"`
}

// Recorder counts generation attempts.
type Recorder interface {
	// Record counts one attempt for the occasion/style pair.
	Record(ctx context.Context, occasion, style string, success bool)

	// Snapshot returns a copy of all counters keyed by "occasion|style".
	Snapshot(ctx context.Context) (map[string]Counts, error)
}

// FileRecorder persists counters as one JSON object. Like the share
// store's file backend it rewrites the whole file per update, which is
// acceptable at generation-request volume.
type FileRecorder struct {
	path   string
	mu     sync.Mutex
	counts map[string]Counts
	logger *zap.Logger
}

// NewFileRecorder loads existing counters from path, starting empty if the
// file does not exist.
func NewFileRecorder(path string, logger *zap.Logger) (*FileRecorder, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create stats directory: %w", err)
	}

	counts := make(map[string]Counts)
	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read stats file: %w", err)
	}
	if err == nil {
		if err := json.Unmarshal(data, &counts); err != nil {
			return nil, fmt.Errorf("failed to parse stats file: %w", err)
		}
	}

	return &FileRecorder{path: path, counts: counts, logger: logger}, nil
}

func (fr *FileRecorder) Record(ctx context.Context, occasion, style string, success bool) {
	fr.mu.Lock()
	defer fr.mu.Unlock()

	key := statKey(occasion, style)
	c := fr.counts[key]
	if success {
		c.Success++
	} else {
		c.Failure++
	}
	fr.counts[key] = c

	if err := fr.save(); err != nil {
		fr.logger.Warn("failed to persist usage stats", zap.Error(err), zap.String("key", key))
	}
}

func (fr *FileRecorder) Snapshot(ctx context.Context) (map[string]Counts, error) {
	fr.mu.Lock()
	defer fr.mu.Unlock()

	snapshot := make(map[string]Counts, len(fr.counts))
	for k, v := range fr.counts {
		snapshot[k] = v
	}
	return snapshot, nil
}

// save writes the counters atomically via temp file and rename. Caller
// holds fr.mu.
func (fr *FileRecorder) save() error {
	data, err := json.Marshal(fr.counts)
	if err != nil {
		return fmt.Errorf("failed to marshal stats: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(fr.path), ".stats-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write stats: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpName, fr.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace stats file: %w", err)
	}
	return nil
}

func statKey(occasion, style string) string {
	if occasion == "" {
		occasion = "unknown"
	}
	if style == "" {
		style = "unknown"
	}
	return occasion + "|" + style
}
