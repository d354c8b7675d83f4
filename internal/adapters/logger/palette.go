package logger

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Palette.
var (
	colorMuted = lipgloss.Color("#667085")
	colorWarn  = lipgloss.Color("#F59E0B")
	colorError = lipgloss.Color("#D93025")
)

// Icons.
const (
	iconWarn  = "!"
	iconError = "✗"
)

// ColorProfile returns Ascii when NO_COLOR is set and the detected terminal profile otherwise.
func ColorProfile() termenv.Profile {
	if os.Getenv("NO_COLOR") != "" {
		return termenv.Ascii
	}
	return termenv.EnvColorProfile()
}

// NewOutput creates a termenv.Output for w using ColorProfile.
func NewOutput(w io.Writer) *termenv.Output {
	if w == nil {
		w = os.Stderr
	}
	return termenv.NewOutput(w, termenv.WithProfile(ColorProfile()), termenv.WithTTY(true))
}

func fg(c lipgloss.Color) termenv.Color {
	return termenv.RGBColor(string(c))
}
