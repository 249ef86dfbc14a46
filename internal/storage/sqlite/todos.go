package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/julianstephens/steady/internal/models"
	"github.com/julianstephens/steady/internal/storage"
)

const todoColumns = "id, user_id, todo_date, text, is_completed, position, created_at, updated_at"

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTodo(row rowScanner) (models.DailyTodo, error) {
	var t models.DailyTodo
	var day, createdAt, updatedAt string
	var position int
	if err := row.Scan(&t.ID, &t.UserID, &day, &t.Text, &t.IsCompleted, &position, &createdAt, &updatedAt); err != nil {
		return models.DailyTodo{}, err
	}
	t.TodoDate = models.Day(day)
	t.Position = models.TodoPosition(position)
	t.CreatedAt = parseTime(createdAt)
	t.UpdatedAt = parseTime(updatedAt)
	return t, nil
}

func (s *Store) ListTodos(ctx context.Context, userID string, day models.Day) (models.TodoList, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+todoColumns+`
		FROM daily_todos WHERE user_id = ? AND todo_date = ?
		ORDER BY position`, userID, string(day))
	if err != nil {
		return nil, fmt.Errorf("failed to list todos: %w", err)
	}
	defer rows.Close()

	todos := models.TodoList{}
	for rows.Next() {
		t, err := scanTodo(rows)
		if err != nil {
			return nil, err
		}
		todos = append(todos, t)
	}
	return todos, rows.Err()
}

func (s *Store) InsertTodo(ctx context.Context, todo models.DailyTodo) (models.DailyTodo, error) {
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO daily_todos (`+todoColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING `+todoColumns,
		todo.ID, todo.UserID, string(todo.TodoDate), todo.Text, todo.IsCompleted, int(todo.Position),
		formatTime(todo.CreatedAt), formatTime(todo.UpdatedAt))
	inserted, err := scanTodo(row)
	if err != nil {
		return models.DailyTodo{}, fmt.Errorf("failed to insert todo: %w", err)
	}
	return inserted, nil
}

func (s *Store) UpdateTodo(ctx context.Context, todo models.DailyTodo) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE daily_todos SET text = ?, is_completed = ?, position = ?, updated_at = ?
		WHERE id = ? AND user_id = ?`,
		todo.Text, todo.IsCompleted, int(todo.Position), formatTime(todo.UpdatedAt), todo.ID, todo.UserID)
	if err != nil {
		return fmt.Errorf("failed to update todo: %w", err)
	}
	return expectAffected(res, "todo", todo.ID)
}

func (s *Store) SetTodoCompleted(ctx context.Context, userID, id string, completed bool, at time.Time) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE daily_todos SET is_completed = ?, updated_at = ?
		WHERE id = ? AND user_id = ?`,
		completed, formatTime(at), id, userID)
	if err != nil {
		return fmt.Errorf("failed to update todo completion: %w", err)
	}
	return expectAffected(res, "todo", id)
}

func (s *Store) DeleteTodo(ctx context.Context, userID, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM daily_todos WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete todo: %w", err)
	}
	return expectAffected(res, "todo", id)
}

func (s *Store) UpsertTodo(ctx context.Context, todo models.DailyTodo) (models.DailyTodo, error) {
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO daily_todos (`+todoColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, todo_date, position) DO UPDATE SET
			text = excluded.text,
			updated_at = excluded.updated_at
		RETURNING `+todoColumns,
		todo.ID, todo.UserID, string(todo.TodoDate), todo.Text, todo.IsCompleted, int(todo.Position),
		formatTime(todo.CreatedAt), formatTime(todo.UpdatedAt))
	saved, err := scanTodo(row)
	if err != nil {
		return models.DailyTodo{}, fmt.Errorf("failed to upsert todo: %w", err)
	}
	return saved, nil
}

func expectAffected(res sql.Result, kind, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", kind, id, storage.ErrNotFound)
	}
	return nil
}
