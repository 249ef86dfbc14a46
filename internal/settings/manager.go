// Package settings reconciles the legacy scattered keys, the local settings
// snapshot and the user's remote settings record into one Settings value.
package settings

import (
	"context"
	"fmt"
	"sync"

	"github.com/julianstephens/steady/internal/constants"
	"github.com/julianstephens/steady/internal/errors"
	"github.com/julianstephens/steady/internal/events"
	"github.com/julianstephens/steady/internal/instrument"
	"github.com/julianstephens/steady/internal/localstore"
	"github.com/julianstephens/steady/internal/logger"
	"github.com/julianstephens/steady/internal/models"
)

// Remote is the authoritative per-user settings record.
type Remote interface {
	// GetUserSettings returns nil when the record has no settings payload.
	GetUserSettings(ctx context.Context, userID string) (*models.Settings, error)
	SaveUserSettings(ctx context.Context, userID string, settings models.Settings) error
}

// SyncResult describes what a per-login merge did.
type SyncResult string

const (
	SyncSkipped   SyncResult = "skipped"
	SyncSeeded    SyncResult = "seeded"
	SyncAdopted   SyncResult = "adopted"
	SyncUnchanged SyncResult = "unchanged"
	SyncFailed    SyncResult = "failed"
)

type Manager struct {
	mu         sync.Mutex
	local      localstore.Store
	remote     Remote
	events     *events.Emitter
	current    models.Settings
	loaded     bool
	userID     string
	lastSynced string
	listeners  []func(models.Settings)
	pushes     sync.WaitGroup
}

func NewManager(local localstore.Store, remote Remote, emitter *events.Emitter) *Manager {
	return &Manager{
		local:   local,
		remote:  remote,
		events:  emitter,
		current: models.DefaultSettings(),
	}
}

// Load reads the settings from the local store, migrating the legacy keys
// on first launch. It never fails: unreadable data yields the defaults.
func (m *Manager) Load() models.Settings {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loadLocked()
	return m.current
}

func (m *Manager) loadLocked() {
	m.loaded = true
	m.current = models.DefaultSettings()

	if marker, ok, err := m.local.Get(constants.LastSyncedUserKey); err == nil && ok {
		m.lastSynced = marker
		m.userID = marker
	}

	raw, ok, err := m.local.Get(constants.SettingsStorageKey)
	if err != nil {
		logger.Warn("Failed to read settings, using defaults", "key", constants.SettingsStorageKey, "error", err)
		return
	}
	if ok {
		m.current = models.NormalizeSettings([]byte(raw))
		return
	}
	m.current = m.migrateLocked()
}

// migrateLocked folds the legacy keys into the unified key and deletes them.
func (m *Manager) migrateLocked() models.Settings {
	legacy := make(map[string]string)
	for _, key := range constants.LegacySettingsKeys {
		v, ok, err := m.local.Get(key)
		if err != nil {
			logger.Warn("Failed to read legacy setting", "key", key, "error", err)
			continue
		}
		if ok {
			legacy[key] = v
		}
	}

	s := models.LegacyToSettings(legacy)
	if err := m.persistLocked(s); err != nil {
		logger.Warn("Failed to persist migrated settings", "error", err)
		return s
	}
	if err := m.local.Remove(constants.LegacySettingsKeys...); err != nil {
		logger.Warn("Failed to remove legacy settings keys", "error", err)
	}
	if len(legacy) > 0 {
		logger.Info("Migrated legacy settings", "keys", len(legacy))
	}
	return s
}

func (m *Manager) persistLocked(s models.Settings) error {
	data, err := s.Marshal()
	if err != nil {
		return err
	}
	return m.local.Set(constants.SettingsStorageKey, string(data))
}

// Current returns the in-memory settings, loading them on first use.
func (m *Manager) Current() models.Settings {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.loaded {
		m.loadLocked()
	}
	return m.current
}

// OnChange registers fn to be called after the local settings change.
func (m *Manager) OnChange(fn func(models.Settings)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = append(m.listeners, fn)
}

func (m *Manager) notify(s models.Settings) {
	m.mu.Lock()
	listeners := append([]func(models.Settings){}, m.listeners...)
	m.mu.Unlock()
	for _, fn := range listeners {
		errors.Contain("settings.onChange", func() error {
			fn(s)
			return nil
		})
	}
}

// Update merges patch into the settings and writes them locally. When a user
// is signed in the result is also pushed remotely in the background; a failed
// push is logged and does not affect the local update.
func (m *Manager) Update(ctx context.Context, patch models.SettingsPatch) (models.Settings, error) {
	m.mu.Lock()
	if !m.loaded {
		m.loadLocked()
	}
	next := m.current.Apply(patch)
	m.current = next
	err := m.persistLocked(next)
	userID := m.userID
	m.mu.Unlock()

	if err != nil {
		logger.Warn("Failed to persist settings", "error", err)
		err = fmt.Errorf("failed to persist settings: %w", err)
	}
	m.notify(next)
	m.events.Track(constants.EventSettingsChanged, events.Props{
		"top3_todos_enabled": next.Top3TodosEnabled,
		"journal_enabled":    next.JournalEnabled,
		"theme_preference":   string(next.ThemePreference),
	})

	if userID != "" && m.remote != nil {
		pushCtx := context.WithoutCancel(ctx)
		m.pushes.Add(1)
		go func() {
			defer m.pushes.Done()
			errors.Contain("settings.push", func() error {
				return m.remote.SaveUserSettings(pushCtx, userID, next)
			})
		}()
	}
	return next, err
}

// Wait blocks until every background push has finished.
func (m *Manager) Wait() {
	m.pushes.Wait()
}

// SyncUser merges local and remote settings the first time userID is seen
// since the last sign-out. A remote payload wins; an empty remote record is
// seeded from local settings.
func (m *Manager) SyncUser(ctx context.Context, userID string) (SyncResult, error) {
	if userID == "" {
		return SyncFailed, fmt.Errorf("user id is required")
	}

	m.mu.Lock()
	if !m.loaded {
		m.loadLocked()
	}
	m.userID = userID
	if m.lastSynced == userID {
		m.mu.Unlock()
		instrument.SettingsSync(string(SyncSkipped))
		return SyncSkipped, nil
	}
	m.lastSynced = userID
	local := m.current
	m.mu.Unlock()

	result, err := m.merge(ctx, userID, local)
	instrument.SettingsSync(string(result))
	if err != nil {
		m.mu.Lock()
		if m.lastSynced == userID {
			m.lastSynced = ""
		}
		m.mu.Unlock()
		logger.Warn("Settings sync failed", "user", userID, "error", err)
		return result, err
	}

	if err := m.local.Set(constants.LastSyncedUserKey, userID); err != nil {
		logger.Warn("Failed to persist synced user marker", "error", err)
	}
	logger.Debug("Settings synced", "user", userID, "result", result)
	return result, nil
}

func (m *Manager) merge(ctx context.Context, userID string, local models.Settings) (SyncResult, error) {
	if m.remote == nil {
		return SyncFailed, fmt.Errorf("no remote store configured")
	}
	remote, err := m.remote.GetUserSettings(ctx, userID)
	if err != nil {
		return SyncFailed, fmt.Errorf("failed to read remote settings: %w", err)
	}

	if remote == nil {
		if err := m.remote.SaveUserSettings(ctx, userID, local); err != nil {
			// Local stays authoritative for this session.
			logger.Warn("Failed to seed remote settings", "user", userID, "error", err)
		}
		return SyncSeeded, nil
	}

	adopted := remote.Normalize()
	if adopted.Equal(local) {
		return SyncUnchanged, nil
	}

	m.mu.Lock()
	m.current = adopted
	err = m.persistLocked(adopted)
	m.mu.Unlock()
	if err != nil {
		logger.Warn("Failed to persist adopted settings", "error", err)
	}
	m.notify(adopted)
	return SyncAdopted, nil
}

// SignOut forgets the signed-in user so the next SyncUser merges again.
func (m *Manager) SignOut() {
	m.mu.Lock()
	m.userID = ""
	m.lastSynced = ""
	m.mu.Unlock()
	if err := m.local.Remove(constants.LastSyncedUserKey); err != nil {
		logger.Warn("Failed to clear synced user marker", "error", err)
	}
}

// LastSyncedUser returns the user the settings were last merged for.
func (m *Manager) LastSyncedUser() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastSynced
}
