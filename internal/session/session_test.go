package session

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianstephens/steady/internal/constants"
	"github.com/julianstephens/steady/internal/localstore"
	"github.com/julianstephens/steady/internal/models"
	"github.com/julianstephens/steady/internal/querycache"
	"github.com/julianstephens/steady/internal/settings"
)

type memRemote map[string]models.Settings

func (m memRemote) GetUserSettings(_ context.Context, userID string) (*models.Settings, error) {
	s, ok := m[userID]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (m memRemote) SaveUserSettings(_ context.Context, userID string, s models.Settings) error {
	m[userID] = s
	return nil
}

func newSession(local localstore.Store, remote memRemote) (*Session, *querycache.Cache) {
	cache := querycache.New()
	return New(local, settings.NewManager(local, remote, nil), cache), cache
}

func TestSignInPersistsAndMerges(t *testing.T) {
	local := localstore.NewMemory()
	remote := memRemote{}
	s, _ := newSession(local, remote)

	_, err := s.UserID()
	assert.ErrorIs(t, err, ErrNotSignedIn)

	res, err := s.SignIn(context.Background(), " u1 ")
	require.NoError(t, err)
	assert.Equal(t, settings.SyncSeeded, res)

	id, err := s.UserID()
	require.NoError(t, err)
	assert.Equal(t, "u1", id)

	restored, _ := newSession(local, remote)
	id, err = restored.UserID()
	require.NoError(t, err)
	assert.Equal(t, "u1", id)

	res, err = restored.Resume(context.Background())
	require.NoError(t, err)
	assert.Equal(t, settings.SyncSkipped, res)
}

func TestSignOutClearsEverything(t *testing.T) {
	local := localstore.NewMemory()
	s, cache := newSession(local, memRemote{})
	_, err := s.SignIn(context.Background(), "u1")
	require.NoError(t, err)
	cache.Set(querycache.NewKey(constants.KindDailyTodos, "u1", "2024-03-01"), models.TodoList{})

	require.NoError(t, s.SignOut())
	_, err = s.UserID()
	assert.ErrorIs(t, err, ErrNotSignedIn)
	assert.Empty(t, cache.Keys())

	for _, key := range []string{constants.SessionUserKey, constants.LastSyncedUserKey} {
		_, ok, err := local.Get(key)
		require.NoError(t, err)
		assert.False(t, ok, key)
	}
}

func TestSwitchingUserClearsCache(t *testing.T) {
	s, cache := newSession(localstore.NewMemory(), memRemote{})
	_, err := s.SignIn(context.Background(), "u1")
	require.NoError(t, err)
	cache.Set(querycache.NewKey(constants.KindHealthToday), 1)

	_, err = s.SignIn(context.Background(), "u2")
	require.NoError(t, err)
	assert.Empty(t, cache.Keys())
}

func TestSignInRejectsEmptyUser(t *testing.T) {
	s, _ := newSession(localstore.NewMemory(), memRemote{})
	_, err := s.SignIn(context.Background(), "  ")
	assert.Error(t, err)
}

func TestResumeWithoutSession(t *testing.T) {
	s, _ := newSession(localstore.NewMemory(), memRemote{})
	res, err := s.Resume(context.Background())
	require.NoError(t, err)
	assert.Equal(t, settings.SyncSkipped, res)
}
