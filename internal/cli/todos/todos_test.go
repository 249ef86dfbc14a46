package todos

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianstephens/steady/internal/app/apptest"
	"github.com/julianstephens/steady/internal/cli"
	"github.com/julianstephens/steady/internal/models"
)

func setup(t *testing.T) (*cli.Context, *bytes.Buffer) {
	var out bytes.Buffer
	return &cli.Context{App: apptest.SignedIn(t, "user-1"), Out: &out}, &out
}

func TestTodoCommands(t *testing.T) {
	ctx, out := setup(t)

	require.NoError(t, (&TodoSetCmd{Position: 2, Text: "call mom", Day: "today"}).Run(ctx))
	require.NoError(t, (&TodoSetCmd{Position: 1, Text: "stretch", Day: "today"}).Run(ctx))

	out.Reset()
	require.NoError(t, (&TodoListCmd{Day: "today"}).Run(ctx))
	listing := out.String()
	assert.Less(t, strings.Index(listing, "stretch"), strings.Index(listing, "call mom"))

	require.NoError(t, (&TodoToggleCmd{Ref: "1", Day: "today"}).Run(ctx))
	list, err := ctx.App.Todos.List(t.Context(), models.DayOf(apptest.Now))
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.True(t, list[0].IsCompleted)

	require.NoError(t, (&TodoDeleteCmd{Ref: list[1].ID[:8], Day: "today"}).Run(ctx))
	list, err = ctx.App.Todos.List(t.Context(), models.DayOf(apptest.Now))
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "stretch", list[0].Text)
}

func TestTodoSetValidates(t *testing.T) {
	ctx, _ := setup(t)
	assert.Error(t, (&TodoSetCmd{Position: 4, Text: "x", Day: "today"}).Run(ctx))
	assert.Error(t, (&TodoSetCmd{Position: 1, Text: "   ", Day: "today"}).Run(ctx))
	assert.Error(t, (&TodoSetCmd{Position: 1, Text: "x", Day: "not-a-day"}).Run(ctx))
}

func TestTodoListEmpty(t *testing.T) {
	ctx, out := setup(t)
	require.NoError(t, (&TodoListCmd{Day: "yesterday"}).Run(ctx))
	assert.Contains(t, out.String(), "2025-03-09")
	assert.Contains(t, out.String(), "No todos yet")
}

func TestResolve(t *testing.T) {
	list := models.TodoList{
		{ID: "abc123", Position: 1},
		{ID: "abd456", Position: 3},
	}

	got, err := resolve(list, "3")
	require.NoError(t, err)
	assert.Equal(t, "abd456", got.ID)

	got, err = resolve(list, "abc")
	require.NoError(t, err)
	assert.Equal(t, "abc123", got.ID)

	_, err = resolve(list, "ab")
	assert.ErrorContains(t, err, "matches 2 todos")

	_, err = resolve(list, "2")
	assert.ErrorContains(t, err, "slot 2")

	_, err = resolve(list, "zzz")
	assert.Error(t, err)
}
