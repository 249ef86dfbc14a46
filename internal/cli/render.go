package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/steady/internal/models"
)

var (
	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true)

	okStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("42"))

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Italic(true)

	dangerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	labelStyle = lipgloss.NewStyle().
			Width(22)
)

func Header(s string) string { return headerStyle.Render(s) }

func OK(s string) string { return okStyle.Render("✓ " + s) }

func Warn(s string) string { return warnStyle.Render("⚠ " + s) }

func Fail(s string) string { return dangerStyle.Render("❌ " + s) }

func Muted(s string) string { return mutedStyle.Render(s) }

// Field renders an aligned "label value" row.
func Field(label string, value any) string {
	return "  " + labelStyle.Render(label+":") + fmt.Sprint(value)
}

// FormatTodo renders one todo as a checklist line.
func FormatTodo(t models.DailyTodo) string {
	box := "[ ]"
	text := t.Text
	if t.IsCompleted {
		box = okStyle.Render("[x]")
		text = mutedStyle.Render(text)
	}
	return fmt.Sprintf("  %d. %s %s %s", t.Position, box, text, mutedStyle.Render("("+shortID(t.ID)+")"))
}

// FormatJournal renders the three prompts of an entry.
func FormatJournal(e models.DailyJournalEntry) string {
	var b strings.Builder
	b.WriteString(Header(e.JournalDate.String()) + "\n")
	b.WriteString(Field("Win", orDash(e.Win)) + "\n")
	b.WriteString(Field("Tension", orDash(e.Tension)) + "\n")
	b.WriteString(Field("Gratitude", orDash(e.Gratitude)))
	return b.String()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return Muted("-")
	}
	return s
}
