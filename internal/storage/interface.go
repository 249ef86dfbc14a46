package storage

import (
	"context"
	"errors"
	"time"

	"github.com/julianstephens/steady/internal/models"
)

// ErrNotFound is returned when an update or delete by primary key matches no row.
var ErrNotFound = errors.New("record not found")

// Provider is the authoritative remote record store. Every operation is scoped
// to a single record type; no cross-type transactions are required.
type Provider interface {
	// Lifecycle
	Init(ctx context.Context) error
	Close() error

	// Settings. GetUserSettings returns nil when the user's record has no
	// settings payload yet.
	GetUserSettings(ctx context.Context, userID string) (*models.Settings, error)
	SaveUserSettings(ctx context.Context, userID string, settings models.Settings) error

	// Daily todos
	ListTodos(ctx context.Context, userID string, day models.Day) (models.TodoList, error)
	InsertTodo(ctx context.Context, todo models.DailyTodo) (models.DailyTodo, error)
	UpdateTodo(ctx context.Context, todo models.DailyTodo) error
	// SetTodoCompleted changes only the completion flag, leaving text and
	// position as the store has them.
	SetTodoCompleted(ctx context.Context, userID, id string, completed bool, at time.Time) error
	DeleteTodo(ctx context.Context, userID, id string) error
	// UpsertTodo writes by natural key (user, date, position), keeping the
	// existing row's id and completion flag when one is already present.
	UpsertTodo(ctx context.Context, todo models.DailyTodo) (models.DailyTodo, error)

	// Daily journal entries. GetJournalEntry returns nil when none exists.
	GetJournalEntry(ctx context.Context, userID string, day models.Day) (*models.DailyJournalEntry, error)
	ListJournalEntries(ctx context.Context, userID string, from, to models.Day) ([]models.DailyJournalEntry, error)
	UpsertJournalEntry(ctx context.Context, entry models.DailyJournalEntry) (models.DailyJournalEntry, error)
	DeleteJournalEntry(ctx context.Context, userID string, day models.Day) error

	// Utils
	Describe() string
}
