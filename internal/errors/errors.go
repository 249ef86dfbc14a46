package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/julianstephens/steady/internal/logger"
)

// ExitInterrupted is the status for a command stopped by SIGINT.
const ExitInterrupted = 130

var (
	exit             = os.Exit
	stderr io.Writer = os.Stderr
)

// Format renders err for the terminal. Joined errors are listed one per line.
func Format(err error) string {
	if err == nil {
		return ""
	}
	var joined interface{ Unwrap() []error }
	if stderrors.As(err, &joined) && len(joined.Unwrap()) > 1 {
		var b strings.Builder
		b.WriteString("Error:")
		for _, e := range joined.Unwrap() {
			if e != nil {
				fmt.Fprintf(&b, "\n  - %v", e)
			}
		}
		return b.String()
	}
	return fmt.Sprintf("Error: %v", err)
}

// ExitCode maps a command error to a process exit status.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case stderrors.Is(err, context.Canceled):
		return ExitInterrupted
	default:
		return 1
	}
}

// Fatal logs err, prints it and exits. A nil error returns normally and an
// interrupted command exits without printing.
func Fatal(err error) {
	code := ExitCode(err)
	if code == 0 {
		return
	}
	if code != ExitInterrupted {
		logger.Error("Command execution failed", "error", err)
		fmt.Fprintln(stderr, Format(err))
	}
	exit(code)
}
