package tui

import (
	"fmt"

	"github.com/aretw0/consult/pkg/domain"
	"github.com/muesli/termenv"
)

// Palette colours option labels by urgency.
type Palette struct {
	profile termenv.Profile
}

// NewPalette detects the colour profile of the terminal.
func NewPalette() Palette {
	return Palette{profile: termenv.ColorProfile()}
}

// PlainPalette never emits escape sequences.
func PlainPalette() Palette {
	return Palette{profile: termenv.Ascii}
}

// Option formats a numbered option, coloured by its urgency.
func (p Palette) Option(n int, opt domain.Option) string {
	label := p.profile.String(opt.Label)
	switch opt.Urgency {
	case domain.UrgencyCritical:
		label = label.Foreground(p.profile.Color("#ef4444")).Bold()
	case domain.UrgencyUrgent:
		label = label.Foreground(p.profile.Color("#f59e0b"))
	case domain.UrgencyRoutine:
		label = label.Foreground(p.profile.Color("#22c55e"))
	}

	line := fmt.Sprintf("  [%d] %s", n, label)
	if opt.Description != "" {
		line += p.profile.String(" (" + opt.Description + ")").Faint().String()
	}
	return line
}

// Dim renders secondary text.
func (p Palette) Dim(s string) string {
	return p.profile.String(s).Faint().String()
}

// Error renders an error message.
func (p Palette) Error(s string) string {
	return p.profile.String(s).Foreground(p.profile.Color("#ef4444")).String()
}
