package system

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/julianstephens/steady/internal/cli"
	"github.com/julianstephens/steady/internal/constants"
)

type DebugCmd struct {
	Paths        *DebugPathsCmd        `cmd:"" help:"Show data locations."`
	DumpSettings *DebugDumpSettingsCmd `cmd:"" help:"Dump local settings state as JSON."`
	DumpTodos    *DebugDumpTodosCmd    `cmd:"" help:"Dump a day's todos as JSON."`
	DumpJournal  *DebugDumpJournalCmd  `cmd:"" help:"Dump a day's journal entry as JSON."`
	DumpCache    *DebugDumpCacheCmd    `cmd:"" help:"Dump query cache entries as JSON."`
}

func writeJSON(w io.Writer, v any) error {
	jsonBytes, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	fmt.Fprintln(w, string(jsonBytes))
	return nil
}

type DebugPathsCmd struct{}

func (cmd *DebugPathsCmd) Run(ctx *cli.Context) error {
	cfg := ctx.App.Config
	return writeJSON(ctx.Writer(), map[string]string{
		"data_dir":      cfg.DataDir,
		"local_backend": string(cfg.LocalBackend),
		"record_store":  ctx.App.Remote.Describe(),
	})
}

type DebugDumpSettingsCmd struct{}

func (cmd *DebugDumpSettingsCmd) Run(ctx *cli.Context) error {
	raw, _, err := ctx.App.Local.Get(constants.SettingsStorageKey)
	if err != nil {
		return fmt.Errorf("failed to read settings: %w", err)
	}
	return writeJSON(ctx.Writer(), map[string]any{
		"current":          ctx.App.Settings.Current(),
		"stored":           json.RawMessage(orNull(raw)),
		"last_synced_user": ctx.App.Settings.LastSyncedUser(),
	})
}

func orNull(raw string) string {
	if raw == "" || !json.Valid([]byte(raw)) {
		return "null"
	}
	return raw
}

type DebugDumpTodosCmd struct {
	Day string `arg:"" optional:"" help:"Day to dump (YYYY-MM-DD or 'today')." default:"today"`
}

func (cmd *DebugDumpTodosCmd) Run(ctx *cli.Context) error {
	day, err := ctx.Day(cmd.Day)
	if err != nil {
		return err
	}
	list, err := ctx.App.Todos.List(context.Background(), day)
	if err != nil {
		return fmt.Errorf("failed to get todos: %w", err)
	}
	return writeJSON(ctx.Writer(), list)
}

type DebugDumpJournalCmd struct {
	Day string `arg:"" optional:"" help:"Day to dump (YYYY-MM-DD or 'today')." default:"today"`
}

func (cmd *DebugDumpJournalCmd) Run(ctx *cli.Context) error {
	day, err := ctx.Day(cmd.Day)
	if err != nil {
		return err
	}
	entry, err := ctx.App.Journal.Get(context.Background(), day)
	if err != nil {
		return fmt.Errorf("failed to get journal entry: %w", err)
	}
	if entry == nil {
		return fmt.Errorf("no journal entry found for date: %s", day)
	}
	return writeJSON(ctx.Writer(), entry)
}

type DebugDumpCacheCmd struct{}

type cacheRow struct {
	Key         string    `json:"key"`
	FetchedAt   time.Time `json:"fetched_at"`
	Invalidated bool      `json:"invalidated"`
	InFlight    bool      `json:"in_flight"`
}

func (cmd *DebugDumpCacheCmd) Run(ctx *cli.Context) error {
	cache := ctx.App.Cache
	rows := []cacheRow{}
	for _, key := range cache.Keys() {
		entry, ok := cache.Get(key)
		if !ok {
			continue
		}
		rows = append(rows, cacheRow{
			Key:         key.String(),
			FetchedAt:   entry.FetchedAt,
			Invalidated: entry.Invalidated,
			InFlight:    cache.InFlight(key),
		})
	}
	return writeJSON(ctx.Writer(), rows)
}
