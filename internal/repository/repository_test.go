package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/fjod/yofoo_cart/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupSQLite(t *testing.T) *Repository {
	repo, err := NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, repo.RunMigrations())
	t.Cleanup(func() { repo.Close() })
	return repo
}

func setupPostgres(t *testing.T) (*Repository, func()) {
	if testing.Short() {
		t.Skip("skipping postgres container test in short mode")
	}
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)

	host, err := pgContainer.Host(ctx)
	require.NoError(t, err)

	port, err := pgContainer.MappedPort(ctx, "5432")
	require.NoError(t, err)

	repo, err := NewPostgres(&Credentials{
		Host:     host,
		Port:     port.Int(),
		User:     "testuser",
		Password: "testpass",
		DBName:   "testdb",
	})
	require.NoError(t, err)
	require.NoError(t, repo.RunMigrations())

	cleanup := func() {
		repo.Close()
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	}
	return repo, cleanup
}

func checkKV(t *testing.T, repo *Repository) {
	ctx := context.Background()

	_, err := repo.Get(ctx, storage.CartKey)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	require.NoError(t, repo.Set(ctx, storage.CartKey, []byte(`{"v":1}`)))
	require.NoError(t, repo.Set(ctx, storage.CartKey, []byte(`{"v":2}`)))

	got, err := repo.Get(ctx, storage.CartKey)
	require.NoError(t, err)
	assert.Equal(t, `{"v":2}`, string(got))

	require.NoError(t, repo.Delete(ctx, storage.CartKey))
	_, err = repo.Get(ctx, storage.CartKey)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func checkOutbox(t *testing.T, repo *Repository) {
	ctx := context.Background()

	require.NoError(t, repo.InsertEvent(ctx, "order-1", "order.orphaned", []byte(`{"order_id":"order-1"}`)))
	require.NoError(t, repo.InsertEvent(ctx, "order-2", "checkout.completed", []byte(`{"order_id":"order-2"}`)))

	events, err := repo.GetUnprocessedEvents(ctx, 10)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "order-1", events[0].AggregateID)
	assert.Equal(t, "order.orphaned", events[0].EventType)
	assert.JSONEq(t, `{"order_id":"order-1"}`, string(events[0].Payload))
	assert.False(t, events[0].CreatedAt.IsZero())

	require.NoError(t, repo.MarkEventAsProcessed(ctx, events[0].ID))

	events, err = repo.GetUnprocessedEvents(ctx, 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "order-2", events[0].AggregateID)

	limited, err := repo.GetUnprocessedEvents(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, limited)

	n, err := repo.PurgeProcessedEvents(ctx, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = repo.PurgeProcessedEvents(ctx, time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	events, err = repo.GetUnprocessedEvents(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, events, 1)
}

func TestSQLite_KV(t *testing.T) {
	checkKV(t, setupSQLite(t))
}

func TestSQLite_Outbox(t *testing.T) {
	checkOutbox(t, setupSQLite(t))
}

func TestSQLite_MigrationsAreIdempotent(t *testing.T) {
	repo := setupSQLite(t)
	require.NoError(t, repo.RunMigrations())
}

func TestPostgres_KV(t *testing.T) {
	repo, cleanup := setupPostgres(t)
	defer cleanup()
	checkKV(t, repo)
}

func TestPostgres_Outbox(t *testing.T) {
	repo, cleanup := setupPostgres(t)
	defer cleanup()
	checkOutbox(t, repo)
}
