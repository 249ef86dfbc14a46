package models

import (
	"fmt"
	"time"

	"github.com/julianstephens/steady/internal/constants"
)

// TodoPosition is the slot (1..3) of a daily top-3 todo.
type TodoPosition int

// Valid reports whether p is within the allowed slots.
func (p TodoPosition) Valid() bool {
	return p >= constants.MinTodoPosition && p <= constants.MaxTodoPosition
}

// ParsePosition validates a raw slot number.
func ParsePosition(n int) (TodoPosition, error) {
	p := TodoPosition(n)
	if !p.Valid() {
		return 0, fmt.Errorf("todo position must be between %d and %d, got %d",
			constants.MinTodoPosition, constants.MaxTodoPosition, n)
	}
	return p, nil
}

// DailyTodo is one of a user's top-3 todos for a day. At most one todo exists
// per (UserID, TodoDate, Position).
type DailyTodo struct {
	ID          string       `json:"id"`
	UserID      string       `json:"user_id"`
	TodoDate    Day          `json:"todo_date"`
	Text        string       `json:"text"`
	IsCompleted bool         `json:"is_completed"`
	Position    TodoPosition `json:"position"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// TodoList is the ordered set of todos for one day.
type TodoList []DailyTodo

// Clone returns an independent copy of the list.
func (l TodoList) Clone() TodoList {
	if l == nil {
		return nil
	}
	out := make(TodoList, len(l))
	copy(out, l)
	return out
}

// ByID returns the index of the todo with the given id, or -1.
func (l TodoList) ByID(id string) int {
	for i, t := range l {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// AtPosition returns the index of the todo in slot p, or -1.
func (l TodoList) AtPosition(p TodoPosition) int {
	for i, t := range l {
		if t.Position == p {
			return i
		}
	}
	return -1
}
