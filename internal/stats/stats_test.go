package stats

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestFileRecorder_RecordAndSnapshot(t *testing.T) {
	recorder, err := NewFileRecorder(filepath.Join(t.TempDir(), "stats.json"), zaptest.NewLogger(t))
	require.NoError(t, err)

	ctx := context.Background()
	recorder.Record(ctx, "birthday", "friendly", true)
	recorder.Record(ctx, "birthday", "friendly", true)
	recorder.Record(ctx, "birthday", "friendly", false)
	recorder.Record(ctx, "wedding", "formal", true)

	snapshot, err := recorder.Snapshot(ctx)
	require.NoError(t, err)

	assert.Equal(t, Counts{Success: 2, Failure: 1}, snapshot["birthday|friendly"])
	assert.Equal(t, Counts{Success: 1, Failure: 0}, snapshot["wedding|formal"])
}

func TestFileRecorder_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stats.json")
	logger := zaptest.NewLogger(t)
	ctx := context.Background()

	recorder, err := NewFileRecorder(path, logger)
	require.NoError(t, err)
	recorder.Record(ctx, "birthday", "funny", false)

	reopened, err := NewFileRecorder(path, logger)
	require.NoError(t, err)

	snapshot, err := reopened.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, Counts{Failure: 1}, snapshot["birthday|funny"])
}

func TestFileRecorder_EmptyKeysNormalized(t *testing.T) {
	recorder, err := NewFileRecorder(filepath.Join(t.TempDir(), "stats.json"), zaptest.NewLogger(t))
	require.NoError(t, err)

	ctx := context.Background()
	recorder.Record(ctx, "", "", true)

	snapshot, err := recorder.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, Counts{Success: 1}, snapshot["unknown|unknown"])
}
