package report

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRecord(id string, createdAt time.Time) *Record {
	return &Record{
		ID:               id,
		Topic:            "quantum computing",
		StrategyID:       4,
		StrategyName:     "Parallel Swarm",
		ReportText:       "## Findings\nqubits are fragile",
		QualityAggregate: 8.2,
		IterationsUsed:   1,
		AgentTeam:        []string{"researcher-1", "researcher-2", "researcher-3", "writer"},
		CreatedAt:        createdAt,
	}
}

// runStoreTests exercises the Store contract against any backend.
func runStoreTests(t *testing.T, store Store) {
	ctx := context.Background()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	t.Run("get missing", func(t *testing.T) {
		_, err := store.Get(ctx, "nope")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("save and get", func(t *testing.T) {
		rec := testRecord("r1", base)
		rec.BelowThreshold = true
		require.NoError(t, store.Save(ctx, rec))

		got, err := store.Get(ctx, "r1")
		require.NoError(t, err)
		assert.Equal(t, rec.Topic, got.Topic)
		assert.Equal(t, rec.AgentTeam, got.AgentTeam)
		assert.True(t, got.BelowThreshold)
		assert.InDelta(t, 8.2, got.QualityAggregate, 0.001)
		assert.True(t, got.CreatedAt.Equal(rec.CreatedAt))
	})

	t.Run("save overwrites", func(t *testing.T) {
		rec := testRecord("r1", base)
		rec.ReportText = "revised"
		require.NoError(t, store.Save(ctx, rec))

		got, err := store.Get(ctx, "r1")
		require.NoError(t, err)
		assert.Equal(t, "revised", got.ReportText)
	})

	t.Run("list newest first", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, testRecord("r2", base.Add(time.Hour))))
		require.NoError(t, store.Save(ctx, testRecord("r3", base.Add(2*time.Hour))))

		all, err := store.List(ctx, 0)
		require.NoError(t, err)
		require.Len(t, all, 3)
		assert.Equal(t, "r3", all[0].ID)
		assert.Equal(t, "r2", all[1].ID)
		assert.Equal(t, "r1", all[2].ID)

		capped, err := store.List(ctx, 2)
		require.NoError(t, err)
		require.Len(t, capped, 2)
		assert.Equal(t, "r3", capped[0].ID)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, store.Delete(ctx, "r2"))
		_, err := store.Get(ctx, "r2")
		assert.ErrorIs(t, err, ErrNotFound)

		// Deleting a missing record is not an error.
		assert.NoError(t, store.Delete(ctx, "r2"))

		all, err := store.List(ctx, 0)
		require.NoError(t, err)
		assert.Len(t, all, 2)
	})
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()
	runStoreTests(t, store)
}

func TestMemoryStoreClosed(t *testing.T) {
	store := NewMemoryStore()
	require.NoError(t, store.Close())

	err := store.Save(context.Background(), testRecord("r1", time.Now()))
	assert.ErrorIs(t, err, ErrStoreClosed)
}

func TestSQLiteStore(t *testing.T) {
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "history", "reports.db"))
	require.NoError(t, err)
	defer store.Close()
	runStoreTests(t, store)
}

func TestSQLiteStoreRequiresPath(t *testing.T) {
	_, err := NewSQLiteStore("")
	assert.Error(t, err)
}

func TestRedisStore(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewRedisStoreFromClient(client, "", 0)
	defer store.Close()
	runStoreTests(t, store)
}

func TestOpenSelectsBackend(t *testing.T) {
	store, err := Open(Config{Backend: "memory"})
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, store)
	store.Close()

	store, err = Open(Config{Backend: "sqlite", Path: filepath.Join(t.TempDir(), "r.db")})
	require.NoError(t, err)
	assert.IsType(t, &SQLiteStore{}, store)
	store.Close()

	_, err = Open(Config{Backend: "papyrus"})
	assert.Error(t, err)
}
