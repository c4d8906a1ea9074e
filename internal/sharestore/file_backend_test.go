package sharestore

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"greeting-cards/pkg/models"
)

func setupFileBackend(t *testing.T) (*FileBackend, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "shares.json")
	backend, err := NewFileBackend(path, zaptest.NewLogger(t))
	require.NoError(t, err)
	return backend, path
}

func sampleCard(id string) *models.SharedCard {
	now := time.Unix(1700000000, 0).UTC()
	return &models.SharedCard{
		ID:        id,
		Payload:   testPayload(),
		CreatedAt: now,
		ExpiresAt: now.Add(48 * time.Hour),
	}
}

func TestFileBackend_WriteRead(t *testing.T) {
	backend, _ := setupFileBackend(t)
	ctx := context.Background()

	card := sampleCard("abc123")
	require.NoError(t, backend.Write(ctx, card))

	got, err := backend.Read(ctx, "abc123")
	require.NoError(t, err)
	assert.Equal(t, card.Payload, got.Payload)
	assert.True(t, card.CreatedAt.Equal(got.CreatedAt))
	assert.True(t, card.ExpiresAt.Equal(got.ExpiresAt))
}

func TestFileBackend_ReadAbsent(t *testing.T) {
	backend, _ := setupFileBackend(t)

	_, err := backend.Read(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFileBackend_DeleteAbsentIsNoError(t *testing.T) {
	backend, _ := setupFileBackend(t)

	assert.NoError(t, backend.Delete(context.Background(), "missing"))
}

func TestFileBackend_Delete(t *testing.T) {
	backend, _ := setupFileBackend(t)
	ctx := context.Background()

	require.NoError(t, backend.Write(ctx, sampleCard("abc123")))
	require.NoError(t, backend.Delete(ctx, "abc123"))

	_, err := backend.Read(ctx, "abc123")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFileBackend_All(t *testing.T) {
	backend, _ := setupFileBackend(t)
	ctx := context.Background()

	require.NoError(t, backend.Write(ctx, sampleCard("one")))
	require.NoError(t, backend.Write(ctx, sampleCard("two")))

	cards, err := backend.All(ctx)
	require.NoError(t, err)
	assert.Len(t, cards, 2)
	assert.Contains(t, cards, "one")
	assert.Contains(t, cards, "two")
}

func TestFileBackend_SurvivesReopen(t *testing.T) {
	backend, path := setupFileBackend(t)
	ctx := context.Background()

	require.NoError(t, backend.Write(ctx, sampleCard("persist")))

	reopened, err := NewFileBackend(path, zaptest.NewLogger(t))
	require.NoError(t, err)

	got, err := reopened.Read(ctx, "persist")
	require.NoError(t, err)
	assert.Equal(t, testPayload(), got.Payload)
}

func TestFileBackend_FileLayout(t *testing.T) {
	backend, path := setupFileBackend(t)
	ctx := context.Background()

	card := sampleCard("layout")
	require.NoError(t, backend.Write(ctx, card))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	var set struct {
		Version int `json:"version"`
		Records map[string]struct {
			Data      map[string]any `json:"data"`
			CreatedAt int64          `json:"created_at"`
			ExpiresAt int64          `json:"expires_at"`
		} `json:"records"`
	}
	require.NoError(t, json.Unmarshal(raw, &set))

	assert.Equal(t, 1, set.Version)
	rec, ok := set.Records["layout"]
	require.True(t, ok)
	assert.Equal(t, card.CreatedAt.Unix(), rec.CreatedAt)
	assert.Equal(t, card.ExpiresAt.Unix(), rec.ExpiresAt)
	assert.Equal(t, "Alex", rec.Data["recipient"])
}
