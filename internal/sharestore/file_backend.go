package sharestore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"

	"greeting-cards/pkg/models"
)

// fileFormatVersion is written into every record set so the layout can
// evolve without guessing at old files.
const fileFormatVersion = 1

// storedRecord is the on-disk shape of one shared card: the opaque payload
// plus epoch-second timestamps.
type storedRecord struct {
	Data      models.CardPayload `json:"data"`
	CreatedAt int64              `json:"created_at"`
	ExpiresAt int64              `json:"expires_at"`
}

// recordSet is the whole durable file: one JSON object keyed by id.
type recordSet struct {
	Version int                     `json:"version"`
	Records map[string]storedRecord `json:"records"`
}

// FileBackend persists the record set as a single JSON file. Every mutation
// rewrites the whole file, which is fine for the low write volume of share
// links but limits this backend to a single process. The mutex serializes
// the read-modify-write cycle.
type FileBackend struct {
	path   string
	mu     sync.Mutex
	logger *zap.Logger
}

// NewFileBackend creates a file-backed store at path, creating the parent
// directory if needed.
func NewFileBackend(path string, logger *zap.Logger) (*FileBackend, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &FileBackend{path: path, logger: logger}, nil
}

func (fb *FileBackend) Write(ctx context.Context, card *models.SharedCard) error {
	fb.mu.Lock()
	defer fb.mu.Unlock()

	set, err := fb.load()
	if err != nil {
		return err
	}
	set.Records[card.ID] = storedRecord{
		Data:      card.Payload,
		CreatedAt: card.CreatedAt.Unix(),
		ExpiresAt: card.ExpiresAt.Unix(),
	}
	return fb.save(set)
}

func (fb *FileBackend) Read(ctx context.Context, id string) (*models.SharedCard, error) {
	fb.mu.Lock()
	defer fb.mu.Unlock()

	set, err := fb.load()
	if err != nil {
		return nil, err
	}
	rec, ok := set.Records[id]
	if !ok {
		return nil, ErrNotFound
	}
	return rec.toCard(id), nil
}

func (fb *FileBackend) Delete(ctx context.Context, id string) error {
	fb.mu.Lock()
	defer fb.mu.Unlock()

	set, err := fb.load()
	if err != nil {
		return err
	}
	if _, ok := set.Records[id]; !ok {
		return nil
	}
	delete(set.Records, id)
	return fb.save(set)
}

func (fb *FileBackend) All(ctx context.Context) (map[string]*models.SharedCard, error) {
	fb.mu.Lock()
	defer fb.mu.Unlock()

	set, err := fb.load()
	if err != nil {
		return nil, err
	}
	cards := make(map[string]*models.SharedCard, len(set.Records))
	for id, rec := range set.Records {
		cards[id] = rec.toCard(id)
	}
	return cards, nil
}

func (fb *FileBackend) Close() error {
	return nil
}

// load reads the record set from disk. A missing file is an empty set.
func (fb *FileBackend) load() (*recordSet, error) {
	data, err := os.ReadFile(fb.path)
	if err != nil {
		if os.IsNotExist(err) {
			return &recordSet{Version: fileFormatVersion, Records: map[string]storedRecord{}}, nil
		}
		return nil, fmt.Errorf("failed to read record file: %w", err)
	}

	var set recordSet
	if err := json.Unmarshal(data, &set); err != nil {
		return nil, fmt.Errorf("failed to parse record file: %w", err)
	}
	if set.Records == nil {
		set.Records = map[string]storedRecord{}
	}
	return &set, nil
}

// save writes the record set atomically: marshal to a temp file in the same
// directory, then rename over the target so readers never see a torn file.
func (fb *FileBackend) save(set *recordSet) error {
	set.Version = fileFormatVersion

	data, err := json.Marshal(set)
	if err != nil {
		return fmt.Errorf("failed to marshal record set: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(fb.path), ".shares-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write record set: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpName, fb.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace record file: %w", err)
	}
	return nil
}

func (sr storedRecord) toCard(id string) *models.SharedCard {
	return &models.SharedCard{
		ID:        id,
		Payload:   sr.Data,
		CreatedAt: time.Unix(sr.CreatedAt, 0).UTC(),
		ExpiresAt: time.Unix(sr.ExpiresAt, 0).UTC(),
	}
}
