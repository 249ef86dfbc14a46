// Package todos manages a user's daily top-3 todos with optimistic writes.
package todos

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/steady/internal/constants"
	"github.com/julianstephens/steady/internal/events"
	"github.com/julianstephens/steady/internal/models"
	"github.com/julianstephens/steady/internal/mutation"
	"github.com/julianstephens/steady/internal/querycache"
)

var (
	ErrTodoNotFound = errors.New("todo not found")
	ErrEmptyText    = errors.New("todo text must not be empty")
)

// Store is the subset of the remote record store used for todos.
type Store interface {
	ListTodos(ctx context.Context, userID string, day models.Day) (models.TodoList, error)
	SetTodoCompleted(ctx context.Context, userID, id string, completed bool, at time.Time) error
	DeleteTodo(ctx context.Context, userID, id string) error
	UpsertTodo(ctx context.Context, todo models.DailyTodo) (models.DailyTodo, error)
}

// Identity resolves the signed-in user.
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

// WithIDs overrides record id generation.
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
		staleAfter: constants.TodoStaleAfter,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Key is the cache key holding userID's todos for day.
func Key(userID string, day models.Day) querycache.Key {
	return querycache.NewKey(constants.KindDailyTodos, userID, string(day))
}

// List returns the todos for day ordered by position.
func (s *Service) List(ctx context.Context, day models.Day) (models.TodoList, error) {
	userID, err := s.users.UserID()
	if err != nil {
		return nil, err
	}
	list, err := querycache.Query(ctx, s.coord.Cache(), Key(userID, day), s.staleAfter,
		func(ctx context.Context) (models.TodoList, error) {
			return s.store.ListTodos(ctx, userID, day)
		})
	if err != nil {
		return nil, fmt.Errorf("failed to load todos for %s: %w", day, err)
	}
	return list.Clone(), nil
}

// current returns whatever is cached for day, stale or not, and only
// fetches when nothing is cached.
func (s *Service) current(ctx context.Context, userID string, day models.Day) (models.TodoList, error) {
	if e, ok := s.coord.Cache().Get(Key(userID, day)); ok {
		if list, ok := e.Value.(models.TodoList); ok {
			return list.Clone(), nil
		}
	}
	return s.List(ctx, day)
}

// Toggle flips the completion flag of the todo with id.
func (s *Service) Toggle(ctx context.Context, day models.Day, id string) (models.DailyTodo, error) {
	userID, err := s.users.UserID()
	if err != nil {
		return models.DailyTodo{}, err
	}
	list, err := s.current(ctx, userID, day)
	if err != nil {
		return models.DailyTodo{}, err
	}
	idx := list.ByID(id)
	if idx < 0 {
		return models.DailyTodo{}, fmt.Errorf("%w: %s", ErrTodoNotFound, id)
	}

	updated := list[idx]
	updated.IsCompleted = !updated.IsCompleted
	updated.UpdatedAt = s.now().UTC()

	event := constants.EventTodoUncompleted
	if updated.IsCompleted {
		event = constants.EventTodoCompleted
	}

	err = mutation.Execute(ctx, s.coord, mutation.Mutation[models.TodoList]{
		Key: Key(userID, day),
		Apply: func(prev models.TodoList, _ bool) models.TodoList {
			next := prev.Clone()
			if i := next.ByID(id); i >= 0 {
				next[i].IsCompleted = updated.IsCompleted
				next[i].UpdatedAt = updated.UpdatedAt
			}
			return next
		},
		Commit: func(ctx context.Context) error {
			return s.store.SetTodoCompleted(ctx, userID, id, updated.IsCompleted, updated.UpdatedAt)
		},
		OnSuccess: func() {
			s.events.Track(event, events.Props{
				"position": int(updated.Position),
				"date":     string(day),
			})
		},
	})
	if err != nil {
		return models.DailyTodo{}, err
	}
	return updated, nil
}

// Save writes text into the slot at position, creating the todo when the
// slot is empty and editing it otherwise.
func (s *Service) Save(ctx context.Context, day models.Day, position models.TodoPosition, text string) (models.DailyTodo, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return models.DailyTodo{}, ErrEmptyText
	}
	if _, err := models.ParsePosition(int(position)); err != nil {
		return models.DailyTodo{}, err
	}
	userID, err := s.users.UserID()
	if err != nil {
		return models.DailyTodo{}, err
	}
	list, err := s.current(ctx, userID, day)
	if err != nil {
		return models.DailyTodo{}, err
	}

	now := s.now().UTC()
	var todo models.DailyTodo
	isNew := true
	if idx := list.AtPosition(position); idx >= 0 {
		isNew = false
		todo = list[idx]
	} else {
		todo = models.DailyTodo{
			ID:        s.newID(),
			UserID:    userID,
			TodoDate:  day,
			Position:  position,
			CreatedAt: now,
		}
	}
	todo.Text = text
	todo.UpdatedAt = now

	saved := todo
	err = mutation.Execute(ctx, s.coord, mutation.Mutation[models.TodoList]{
		Key: Key(userID, day),
		Apply: func(prev models.TodoList, _ bool) models.TodoList {
			next := prev.Clone()
			if i := next.AtPosition(position); i >= 0 {
				next[i].Text = todo.Text
				next[i].UpdatedAt = todo.UpdatedAt
			} else {
				next = append(next, todo)
				sort.Slice(next, func(a, b int) bool { return next[a].Position < next[b].Position })
			}
			return next
		},
		Commit: func(ctx context.Context) error {
			result, err := s.store.UpsertTodo(ctx, todo)
			if err != nil {
				return err
			}
			saved = result
			return nil
		},
		OnSuccess: func() {
			event := constants.EventTodoEdited
			if isNew {
				event = constants.EventTodoCreated
			}
			s.events.Track(event, events.Props{
				"position": int(position),
				"date":     string(day),
				"length":   len(text),
			})
		},
	})
	if err != nil {
		return models.DailyTodo{}, err
	}
	return saved, nil
}

// Delete removes the todo with id from day.
func (s *Service) Delete(ctx context.Context, day models.Day, id string) error {
	userID, err := s.users.UserID()
	if err != nil {
		return err
	}
	list, err := s.current(ctx, userID, day)
	if err != nil {
		return err
	}
	idx := list.ByID(id)
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrTodoNotFound, id)
	}
	position := list[idx].Position

	return mutation.Execute(ctx, s.coord, mutation.Mutation[models.TodoList]{
		Key: Key(userID, day),
		Apply: func(prev models.TodoList, _ bool) models.TodoList {
			next := make(models.TodoList, 0, len(prev))
			for _, t := range prev {
				if t.ID != id {
					next = append(next, t)
				}
			}
			return next
		},
		Commit: func(ctx context.Context) error {
			return s.store.DeleteTodo(ctx, userID, id)
		},
		OnSuccess: func() {
			s.events.Track(constants.EventTodoDeleted, events.Props{
				"position": int(position),
				"date":     string(day),
			})
		},
	})
}
