package todos

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/julianstephens/steady/internal/cli"
	"github.com/julianstephens/steady/internal/models"
)

type TodoListCmd struct {
	Day string `arg:"" optional:"" help:"Day to show (today, yesterday, -N or YYYY-MM-DD)." default:"today"`
}

func (c *TodoListCmd) Run(ctx *cli.Context) error {
	out := ctx.Writer()
	day, err := ctx.Day(c.Day)
	if err != nil {
		return err
	}
	list, err := ctx.App.Todos.List(context.Background(), day)
	if err != nil {
		return fmt.Errorf("failed to load todos: %w", err)
	}

	fmt.Fprintln(out, cli.Header("Top 3 for "+day.String()))
	if !ctx.App.Settings.Current().Top3TodosEnabled {
		fmt.Fprintln(out, cli.Warn("The top-3 card is hidden. Enable it with 'steady settings --top3'."))
	}
	if len(list) == 0 {
		fmt.Fprintln(out, cli.Muted("  No todos yet. Add one with 'steady todo set 1 \"...\"'."))
		return nil
	}
	for _, t := range list {
		fmt.Fprintln(out, cli.FormatTodo(t))
	}
	return nil
}

type TodoSetCmd struct {
	Position int    `arg:"" help:"Slot to fill (1-3)."`
	Text     string `arg:"" help:"Todo text."`
	Day      string `help:"Day to edit." default:"today"`
}

func (c *TodoSetCmd) Run(ctx *cli.Context) error {
	day, err := ctx.Day(c.Day)
	if err != nil {
		return err
	}
	pos, err := models.ParsePosition(c.Position)
	if err != nil {
		return err
	}
	todo, err := ctx.App.Todos.Save(context.Background(), day, pos, c.Text)
	if err != nil {
		return fmt.Errorf("failed to save todo: %w", err)
	}
	fmt.Fprintln(ctx.Writer(), cli.OK("Saved"))
	fmt.Fprintln(ctx.Writer(), cli.FormatTodo(todo))
	return nil
}

type TodoToggleCmd struct {
	Ref string `arg:"" help:"Slot number or todo id prefix."`
	Day string `help:"Day to edit." default:"today"`
}

func (c *TodoToggleCmd) Run(ctx *cli.Context) error {
	day, todo, err := find(ctx, c.Day, c.Ref)
	if err != nil {
		return err
	}
	updated, err := ctx.App.Todos.Toggle(context.Background(), day, todo.ID)
	if err != nil {
		return fmt.Errorf("failed to update todo: %w", err)
	}
	fmt.Fprintln(ctx.Writer(), cli.FormatTodo(updated))
	return nil
}

type TodoDeleteCmd struct {
	Ref string `arg:"" help:"Slot number or todo id prefix."`
	Day string `help:"Day to edit." default:"today"`
}

func (c *TodoDeleteCmd) Run(ctx *cli.Context) error {
	day, todo, err := find(ctx, c.Day, c.Ref)
	if err != nil {
		return err
	}
	if err := ctx.App.Todos.Delete(context.Background(), day, todo.ID); err != nil {
		return fmt.Errorf("failed to delete todo: %w", err)
	}
	fmt.Fprintln(ctx.Writer(), cli.OK(fmt.Sprintf("Deleted todo %d", todo.Position)))
	return nil
}

func find(ctx *cli.Context, dayArg, ref string) (models.Day, models.DailyTodo, error) {
	day, err := ctx.Day(dayArg)
	if err != nil {
		return "", models.DailyTodo{}, err
	}
	list, err := ctx.App.Todos.List(context.Background(), day)
	if err != nil {
		return "", models.DailyTodo{}, fmt.Errorf("failed to load todos: %w", err)
	}
	todo, err := resolve(list, ref)
	return day, todo, err
}

// resolve matches ref against a slot number first, then a unique id prefix.
func resolve(list models.TodoList, ref string) (models.DailyTodo, error) {
	ref = strings.TrimSpace(ref)
	if n, err := strconv.Atoi(ref); err == nil {
		if i := list.AtPosition(models.TodoPosition(n)); i >= 0 {
			return list[i], nil
		}
		return models.DailyTodo{}, fmt.Errorf("no todo in slot %d", n)
	}

	var match []models.DailyTodo
	for _, t := range list {
		if ref != "" && strings.HasPrefix(t.ID, ref) {
			match = append(match, t)
		}
	}
	switch len(match) {
	case 0:
		return models.DailyTodo{}, fmt.Errorf("no todo matches %q", ref)
	case 1:
		return match[0], nil
	default:
		return models.DailyTodo{}, fmt.Errorf("%q matches %d todos; use a longer id", ref, len(match))
	}
}
