package session

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStoredSession(t *testing.T, store *MemoryStore) *Session {
	t.Helper()
	s := &Session{
		ID:             uuid.New(),
		Patient:        Patient{Name: "Ali"},
		Symptoms:       []string{"fever"},
		Answers:        map[string][]QA{},
		Status:         StatusAwaitingAnswer,
		Pending:        &Question{Text: "How long?", Input: InputText},
		CreatedAt:      time.Now(),
		LastActivityAt: time.Now(),
	}
	require.NoError(t, store.Create(context.Background(), s))
	return s
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	store := NewMemoryStore()
	s := newStoredSession(t, store)
	assert.Equal(t, int64(1), s.Version)

	got, err := store.Get(context.Background(), s.ID)
	require.NoError(t, err)
	assert.Equal(t, s.ID, got.ID)
	assert.Equal(t, s.Symptoms, got.Symptoms)
	require.NotNil(t, got.Pending)

	// Snapshots are isolated from the store.
	got.Symptoms[0] = "mutated"
	again, err := store.Get(context.Background(), s.ID)
	require.NoError(t, err)
	assert.Equal(t, "fever", again.Symptoms[0])
}

func TestMemoryStoreOptimisticUpdate(t *testing.T) {
	store := NewMemoryStore()
	s := newStoredSession(t, store)
	ctx := context.Background()

	first, err := store.Get(ctx, s.ID)
	require.NoError(t, err)
	second, err := store.Get(ctx, s.ID)
	require.NoError(t, err)

	first.Cursor = 1
	require.NoError(t, store.Update(ctx, first))
	assert.Equal(t, int64(2), first.Version)

	// The stale snapshot loses.
	second.Cursor = 2
	err = store.Update(ctx, second)
	assert.ErrorIs(t, err, ErrConflict)

	got, err := store.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Cursor)
}

func TestMemoryStoreUpdateMissing(t *testing.T) {
	store := NewMemoryStore()
	s := &Session{ID: uuid.New(), Version: 1}
	err := store.Update(context.Background(), s)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreDeleteIdempotent(t *testing.T) {
	store := NewMemoryStore()
	s := newStoredSession(t, store)
	ctx := context.Background()

	assert.NoError(t, store.Delete(ctx, s.ID))
	assert.NoError(t, store.Delete(ctx, s.ID))
	_, err := store.Get(ctx, s.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreSweepExpired(t *testing.T) {
	store := NewMemoryStore()
	fresh := newStoredSession(t, store)
	stale := newStoredSession(t, store)
	ctx := context.Background()

	got, err := store.Get(ctx, stale.ID)
	require.NoError(t, err)
	got.LastActivityAt = time.Now().Add(-2 * time.Hour)
	require.NoError(t, store.Update(ctx, got))

	n, err := store.SweepExpired(ctx, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = store.Get(ctx, stale.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = store.Get(ctx, fresh.ID)
	assert.NoError(t, err)
}
