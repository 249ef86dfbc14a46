// Package journal manages daily reflections. Each day holds at most one
// entry and saves are upserts.
package journal

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/steady/internal/constants"
	"github.com/julianstephens/steady/internal/events"
	"github.com/julianstephens/steady/internal/models"
	"github.com/julianstephens/steady/internal/mutation"
	"github.com/julianstephens/steady/internal/querycache"
)

var ErrNoEntry = errors.New("no journal entry for that day")

type Store interface {
	GetJournalEntry(ctx context.Context, userID string, day models.Day) (*models.DailyJournalEntry, error)
	ListJournalEntries(ctx context.Context, userID string, from, to models.Day) ([]models.DailyJournalEntry, error)
	UpsertJournalEntry(ctx context.Context, entry models.DailyJournalEntry) (models.DailyJournalEntry, error)
	DeleteJournalEntry(ctx context.Context, userID string, day models.Day) error
}

type Identity interface {
	UserID() (string, error)
}

type Service struct {
	store      Store
	coord      *mutation.Coordinator
	events     *events.Emitter
	users      Identity
	now        func() time.Time
	newID      func() string
	staleAfter time.Duration
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithStaleAfter(d time.Duration) Option {
	return func(s *Service) { s.staleAfter = d }
}

func WithIDs(newID func() string) Option {
	return func(s *Service) { s.newID = newID }
}

func NewService(store Store, coord *mutation.Coordinator, emitter *events.Emitter, users Identity, opts ...Option) *Service {
	s := &Service{
		store:      store,
		coord:      coord,
		events:     emitter,
		users:      users,
		now:        time.Now,
		newID:      uuid.NewString,
		staleAfter: constants.JournalStaleAfter,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func Key(userID string, day models.Day) querycache.Key {
	return querycache.NewKey(constants.KindJournalEntry, userID, string(day))
}

func recentKey(userID string, today models.Day, days int) querycache.Key {
	return querycache.NewKey(constants.KindJournalRecent, userID, string(today), strconv.Itoa(days))
}

// Get returns the entry for day, or nil when none was written.
func (s *Service) Get(ctx context.Context, day models.Day) (*models.DailyJournalEntry, error) {
	userID, err := s.users.UserID()
	if err != nil {
		return nil, err
	}
	entry, err := querycache.Query(ctx, s.coord.Cache(), Key(userID, day), s.staleAfter,
		func(ctx context.Context) (*models.DailyJournalEntry, error) {
			return s.store.GetJournalEntry(ctx, userID, day)
		})
	if err != nil {
		return nil, fmt.Errorf("failed to load journal for %s: %w", day, err)
	}
	if entry == nil {
		return nil, nil
	}
	copied := *entry
	return &copied, nil
}

func (s *Service) current(ctx context.Context, userID string, day models.Day) (*models.DailyJournalEntry, error) {
	if e, ok := s.coord.Cache().Get(Key(userID, day)); ok {
		if entry, ok := e.Value.(*models.DailyJournalEntry); ok {
			return entry, nil
		}
	}
	return s.Get(ctx, day)
}

// Save creates or replaces the entry for day.
func (s *Service) Save(ctx context.Context, day models.Day, fields models.JournalFields) (models.DailyJournalEntry, error) {
	userID, err := s.users.UserID()
	if err != nil {
		return models.DailyJournalEntry{}, err
	}
	existing, err := s.current(ctx, userID, day)
	if err != nil {
		return models.DailyJournalEntry{}, err
	}

	now := s.now().UTC()
	var entry models.DailyJournalEntry
	if existing != nil {
		entry = *existing
	} else {
		entry = models.DailyJournalEntry{
			ID:          s.newID(),
			UserID:      userID,
			JournalDate: day,
			CreatedAt:   now,
		}
	}
	entry = entry.WithFields(fields)
	entry.UpdatedAt = now

	saved := entry
	err = mutation.Execute(ctx, s.coord, mutation.Mutation[*models.DailyJournalEntry]{
		Key: Key(userID, day),
		Apply: func(*models.DailyJournalEntry, bool) *models.DailyJournalEntry {
			speculative := entry
			return &speculative
		},
		Commit: func(ctx context.Context) error {
			result, err := s.store.UpsertJournalEntry(ctx, entry)
			if err != nil {
				return err
			}
			saved = result
			return nil
		},
		OnSuccess: func() {
			s.events.Track(constants.EventJournalSaved, events.Props{
				"date":   string(day),
				"is_new": existing == nil,
			})
		},
		Invalidates: []constants.RecordKind{constants.KindJournalRecent},
	})
	if err != nil {
		return models.DailyJournalEntry{}, err
	}
	return saved, nil
}

// Delete removes the entry for day.
func (s *Service) Delete(ctx context.Context, day models.Day) error {
	userID, err := s.users.UserID()
	if err != nil {
		return err
	}
	existing, err := s.current(ctx, userID, day)
	if err != nil {
		return err
	}
	if existing == nil {
		return fmt.Errorf("%w: %s", ErrNoEntry, day)
	}

	return mutation.Execute(ctx, s.coord, mutation.Mutation[*models.DailyJournalEntry]{
		Key: Key(userID, day),
		Apply: func(*models.DailyJournalEntry, bool) *models.DailyJournalEntry {
			return nil
		},
		Commit: func(ctx context.Context) error {
			return s.store.DeleteJournalEntry(ctx, userID, day)
		},
		OnSuccess: func() {
			s.events.Track(constants.EventJournalDeleted, events.Props{"date": string(day)})
		},
		Invalidates: []constants.RecordKind{constants.KindJournalRecent},
	})
}

// Recent returns the entries of the last days days including today, newest
// first.
func (s *Service) Recent(ctx context.Context, days int) ([]models.DailyJournalEntry, error) {
	if days < 1 || days > constants.MaxHistoryDays {
		return nil, fmt.Errorf("days must be between 1 and %d, got %d", constants.MaxHistoryDays, days)
	}
	userID, err := s.users.UserID()
	if err != nil {
		return nil, err
	}
	today := models.DayOf(s.now())
	entries, err := querycache.Query(ctx, s.coord.Cache(), recentKey(userID, today, days), s.staleAfter,
		func(ctx context.Context) ([]models.DailyJournalEntry, error) {
			return s.store.ListJournalEntries(ctx, userID, today.AddDays(-(days - 1)), today)
		})
	if err != nil {
		return nil, fmt.Errorf("failed to load recent journal entries: %w", err)
	}
	return append([]models.DailyJournalEntry(nil), entries...), nil
}
