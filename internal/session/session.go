// Package session tracks the signed-in user and runs the settings merge at
// each sign-in boundary.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/julianstephens/steady/internal/constants"
	"github.com/julianstephens/steady/internal/localstore"
	"github.com/julianstephens/steady/internal/logger"
	"github.com/julianstephens/steady/internal/querycache"
	"github.com/julianstephens/steady/internal/settings"
)

var ErrNotSignedIn = errors.New("not signed in; run 'steady login <user>' first")

type Session struct {
	mu       sync.Mutex
	local    localstore.Store
	settings *settings.Manager
	cache    *querycache.Cache
	userID   string
}

// New restores the signed-in user from the local store.
func New(local localstore.Store, mgr *settings.Manager, cache *querycache.Cache) *Session {
	s := &Session{local: local, settings: mgr, cache: cache}
	if id, ok, err := local.Get(constants.SessionUserKey); err != nil {
		logger.Warn("Failed to read session", "error", err)
	} else if ok {
		s.userID = id
	}
	return s
}

// UserID returns the signed-in user or ErrNotSignedIn.
func (s *Session) UserID() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.userID == "" {
		return "", ErrNotSignedIn
	}
	return s.userID, nil
}

// SignIn records userID as the signed-in user and merges settings for it.
// The user stays signed in when the merge fails.
func (s *Session) SignIn(ctx context.Context, userID string) (settings.SyncResult, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return settings.SyncFailed, errors.New("user id cannot be empty")
	}

	s.mu.Lock()
	previous := s.userID
	s.userID = userID
	s.mu.Unlock()

	if previous != "" && previous != userID {
		s.cache.Clear()
		s.settings.SignOut()
	}
	if err := s.local.Set(constants.SessionUserKey, userID); err != nil {
		return settings.SyncFailed, fmt.Errorf("failed to persist session: %w", err)
	}
	logger.Info("Signed in", "user", userID)
	return s.settings.SyncUser(ctx, userID)
}

// Resume re-runs the settings merge for a restored session. It is a no-op
// when the merge already ran for this user.
func (s *Session) Resume(ctx context.Context) (settings.SyncResult, error) {
	userID, err := s.UserID()
	if err != nil {
		return settings.SyncSkipped, nil
	}
	return s.settings.SyncUser(ctx, userID)
}

// SignOut forgets the user, the merge marker and every cached record.
func (s *Session) SignOut() error {
	s.mu.Lock()
	userID := s.userID
	s.userID = ""
	s.mu.Unlock()

	s.settings.SignOut()
	s.cache.Clear()
	if err := s.local.Remove(constants.SessionUserKey); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	if userID != "" {
		logger.Info("Signed out", "user", userID)
	}
	return nil
}
