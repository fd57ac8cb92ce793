package logging

import (
	"io"
	"log/slog"
	"os"
)

// Attribute keys that may carry patient answers. Their values never reach the log.
var clinicalKeys = map[string]bool{
	"answer":  true,
	"answers": true,
	"values":  true,
	"inputs":  true,
}

const masked = "[redacted]"

// New creates the application logger on Stderr, keeping Stdout free for the
// walk UI and the MCP stdio transport.
func New(level slog.Level) *slog.Logger {
	return NewTo(os.Stderr, level)
}

// NewTo creates the application logger writing to w. Errors are logged
// under "err" and clinical values are masked.
func NewTo(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: replaceAttr,
	}))
}

func replaceAttr(_ []string, a slog.Attr) slog.Attr {
	if a.Key == "error" {
		a.Key = "err"
	}
	if clinicalKeys[a.Key] {
		return slog.String(a.Key, masked)
	}
	return a
}

// NewNop returns a no-op logger.
func NewNop() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
