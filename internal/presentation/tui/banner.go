package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the consult banner to w.
func PrintBanner(w io.Writer) {
	p := termenv.ColorProfile()
	lines := []struct {
		text, color string
	}{
		{"   ___ ___  _ __  ___ _   _| | |_ ", "#5eead4"},
		{"  / __/ _ \\| '_ \\/ __| | | | | __|", "#2dd4bf"},
		{" | (_| (_) | | | \\__ \\ |_| | | |_ ", "#14b8a6"},
		{"  \\___\\___/|_| |_|___/\\__,_|_|\\__|", "#0d9488"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w)
}
