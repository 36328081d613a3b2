package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "outputs.db"), zap.NewNop())
	require.NoError(t, err)
	return s
}

func TestSQLiteStoreSaveAndLoad(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, "Ada", "gap_analyzer", "gap content"))

	content, ok, err := s.Load(ctx, "Ada", "gap_analyzer")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "gap content", content)
}

func TestSQLiteStoreLoadMissing(t *testing.T) {
	s := openTestStore(t)

	_, ok, err := s.Load(context.Background(), "Ada", "never_saved")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSQLiteStoreSaveUpserts(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, "Ada", "opportunity_finder", "first version"))
	require.NoError(t, s.Save(ctx, "Ada", "opportunity_finder", "second version"))

	content, ok, err := s.Load(ctx, "Ada", "opportunity_finder")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "second version", content)

	var count int64
	require.NoError(t, s.db.Model(&OutputRecord{}).Count(&count).Error)
	assert.EqualValues(t, 1, count, "upsert must not create duplicate rows")
}

func TestSQLiteStoreKeysAreIndependent(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, "Ada", "gap_analyzer", "ada gap"))
	require.NoError(t, s.Save(ctx, "Grace", "gap_analyzer", "grace gap"))
	require.NoError(t, s.Save(ctx, "Ada", "promotion_package", "ada package"))

	content, ok, err := s.Load(ctx, "Grace", "gap_analyzer")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "grace gap", content)
}

func TestMemoryStoreCountsSaves(t *testing.T) {
	mem := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, mem.Save(ctx, "Ada", "gap_analyzer", "v1"))
	require.NoError(t, mem.Save(ctx, "Ada", "gap_analyzer", "v2"))
	assert.Equal(t, 2, mem.SaveCalls)

	content, ok, err := mem.Load(ctx, "Ada", "gap_analyzer")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "v2", content)
}
