package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the blox banner and version to w.
func PrintBanner(w io.Writer, version string) {
	out := termenv.NewOutput(w)
	lines := []struct{ text, color string }{
		{"  _     _            ", "#818cf8"},
		{" | |__ | | _____  __ ", "#a78bfa"},
		{" | '_ \\| |/ _ \\ \\/ / ", "#c084fc"},
		{" | |_) | | (_) >  <  ", "#e879f9"},
		{" |_.__/|_|\\___/_/\\_\\ ", "#f472b6"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, out.String(l.text).Foreground(out.Color(l.color)))
	}
	fmt.Fprintln(w, out.String(" v"+version).Faint())
	fmt.Fprintln(w)
}
