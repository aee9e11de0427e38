package session

import (
	"context"
	"testing"

	"github.com/hericraft/campus-api/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	_, queries, cleanup, err := storage.NewTestDB()
	require.NoError(t, err)
	t.Cleanup(cleanup)
	return NewStore(queries)
}

func TestLoad_NoSession(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Load(context.Background())

	assert.ErrorIs(t, err, ErrNoSession)
}

func TestSaveAndLoad(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, Session{Token: "tok-abc", Username: "student1", UserID: 7}))

	sess, err := store.Load(ctx)
	require.NoError(t, err)

	assert.Equal(t, "tok-abc", sess.Token)
	assert.Equal(t, "student1", sess.Username)
	assert.Equal(t, int64(7), sess.UserID)
	assert.True(t, sess.Complete())
}

func TestSave_OverwritesWholesale(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, Session{Token: "tok-1", Username: "student1", UserID: 7}))
	require.NoError(t, store.Save(ctx, Session{Token: "tok-2", Username: "student2"}))

	sess, err := store.Load(ctx)
	require.NoError(t, err)

	assert.Equal(t, "tok-2", sess.Token)
	assert.Equal(t, "student2", sess.Username)
	assert.Equal(t, int64(0), sess.UserID, "previous user id must not leak into the new session")
}

func TestTornSessionIsLoadableButIncomplete(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	// Token stored at login, id not yet resolved.
	require.NoError(t, store.Save(ctx, Session{Token: "tok-abc", Username: "student1"}))

	sess, err := store.Load(ctx)
	require.NoError(t, err)

	assert.False(t, sess.Complete())
	assert.Equal(t, "tok-abc", sess.Token)
}

func TestSetUserID_CompletesTornSession(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, Session{Token: "tok-abc", Username: "student1"}))
	require.NoError(t, store.SetUserID(ctx, 7))

	sess, err := store.Load(ctx)
	require.NoError(t, err)
	assert.True(t, sess.Complete())
	assert.Equal(t, int64(7), sess.UserID)
}

func TestClear(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, Session{Token: "tok-abc", Username: "student1", UserID: 7}))
	require.NoError(t, store.Clear(ctx))

	_, err := store.Load(ctx)
	assert.ErrorIs(t, err, ErrNoSession)
}
