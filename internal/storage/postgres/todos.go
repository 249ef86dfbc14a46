package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/julianstephens/steady/internal/models"
	"github.com/julianstephens/steady/internal/storage"
)

const todoSelect = "id::text, user_id, todo_date::text, text, is_completed, position, created_at, updated_at"

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTodo(row rowScanner) (models.DailyTodo, error) {
	var t models.DailyTodo
	var day string
	var position int
	if err := row.Scan(&t.ID, &t.UserID, &day, &t.Text, &t.IsCompleted, &position, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return models.DailyTodo{}, err
	}
	t.TodoDate = models.Day(day)
	t.Position = models.TodoPosition(position)
	return t, nil
}

func (s *Store) ListTodos(ctx context.Context, userID string, day models.Day) (models.TodoList, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+todoSelect+`
		FROM daily_todos WHERE user_id = $1 AND todo_date = $2::date
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
		INSERT INTO daily_todos (id, user_id, todo_date, text, is_completed, position, created_at, updated_at)
		VALUES ($1, $2, $3::date, $4, $5, $6, $7, $8)
		RETURNING `+todoSelect,
		todo.ID, todo.UserID, string(todo.TodoDate), todo.Text, todo.IsCompleted, int(todo.Position),
		todo.CreatedAt, todo.UpdatedAt)
	inserted, err := scanTodo(row)
	if err != nil {
		return models.DailyTodo{}, fmt.Errorf("failed to insert todo: %w", err)
	}
	return inserted, nil
}

func (s *Store) UpdateTodo(ctx context.Context, todo models.DailyTodo) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE daily_todos SET text = $1, is_completed = $2, position = $3, updated_at = $4
		WHERE id = $5 AND user_id = $6`,
		todo.Text, todo.IsCompleted, int(todo.Position), todo.UpdatedAt, todo.ID, todo.UserID)
	if err != nil {
		return fmt.Errorf("failed to update todo: %w", err)
	}
	return expectAffected(res, "todo", todo.ID)
}

func (s *Store) SetTodoCompleted(ctx context.Context, userID, id string, completed bool, at time.Time) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE daily_todos SET is_completed = $1, updated_at = $2
		WHERE id = $3 AND user_id = $4`,
		completed, at, id, userID)
	if err != nil {
		return fmt.Errorf("failed to update todo completion: %w", err)
	}
	return expectAffected(res, "todo", id)
}

func (s *Store) DeleteTodo(ctx context.Context, userID, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM daily_todos WHERE id = $1 AND user_id = $2", id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete todo: %w", err)
	}
	return expectAffected(res, "todo", id)
}

func (s *Store) UpsertTodo(ctx context.Context, todo models.DailyTodo) (models.DailyTodo, error) {
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO daily_todos (id, user_id, todo_date, text, is_completed, position, created_at, updated_at)
		VALUES ($1, $2, $3::date, $4, $5, $6, $7, $8)
		ON CONFLICT (user_id, todo_date, position) DO UPDATE SET
			text = EXCLUDED.text,
			updated_at = EXCLUDED.updated_at
		RETURNING `+todoSelect,
		todo.ID, todo.UserID, string(todo.TodoDate), todo.Text, todo.IsCompleted, int(todo.Position),
		todo.CreatedAt, todo.UpdatedAt)
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
