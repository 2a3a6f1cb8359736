package render

import (
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"

	"github.com/khmm12/ping-sweep/internal/ports"
)

const absentName = "-"

// TextRenderer prints one aligned line per host followed by a summary.
// Colors follow color.NoColor, which is set when the writer is not a terminal.
type TextRenderer struct {
	w io.Writer

	up      *color.Color
	down    *color.Color
	unknown *color.Color
	faint   *color.Color
}

func NewTextRenderer(w io.Writer) *TextRenderer {
	return &TextRenderer{
		w:       w,
		up:      color.New(color.FgGreen),
		down:    color.New(color.FgRed),
		unknown: color.New(color.FgYellow),
		faint:   color.New(color.Faint),
	}
}

func (r *TextRenderer) Render(report *ports.SweepReport) error {
	width := len("255.255.255.255")

	if _, err := fmt.Fprintf(r.w, "%-*s  %-7s  %s\n", width, "ADDRESS", "STATE", "NAME"); err != nil {
		return err
	}

	for _, rec := range report.All() {
		name := rec.Name
		if name == "" {
			name = r.faint.Sprint(absentName)
		}

		// Pad before coloring, escape codes would break the alignment.
		state := r.state(rec.State).Sprintf("%-7s", rec.State)

		line := fmt.Sprintf("%-*s  %s  %s", width, rec.Address, state, name)
		if rec.Diagnostic != "" {
			line += " " + r.faint.Sprintf("(%s)", rec.Diagnostic)
		}

		if _, err := fmt.Fprintln(r.w, line); err != nil {
			return err
		}
	}

	s := report.Summary()

	_, err := fmt.Fprintf(r.w, "\n%d hosts: %s, %s, %d unknown, %d named in %s\n",
		s.Total,
		r.up.Sprintf("%d up", s.Up),
		r.down.Sprintf("%d down", s.Down),
		s.Unknown,
		s.Named,
		report.Duration().Round(time.Millisecond),
	)
	if err != nil {
		return err
	}

	if !report.Complete() {
		_, err = r.unknown.Fprintln(r.w, "sweep incomplete: some hosts were not probed")
	}

	return err
}

func (r *TextRenderer) state(s ports.HostState) *color.Color {
	switch s {
	case ports.HostUp:
		return r.up
	case ports.HostDown:
		return r.down
	default:
		return r.unknown
	}
}
