package render

import (
	"encoding/json"
	"io"
	"time"

	"github.com/khmm12/ping-sweep/internal/ports"
)

type jsonReport struct {
	Prefix          string      `json:"prefix,omitempty"`
	Complete        bool        `json:"complete"`
	StartedAt       time.Time   `json:"started_at"`
	DurationSeconds float64     `json:"duration_seconds"`
	Summary         jsonSummary `json:"summary"`
	Hosts           []jsonHost  `json:"hosts"`
}

type jsonSummary struct {
	Total   int `json:"total"`
	Up      int `json:"up"`
	Down    int `json:"down"`
	Unknown int `json:"unknown"`
	Named   int `json:"named"`
}

type jsonHost struct {
	Address string `json:"address"`
	State   string `json:"state"`
	// Reachable is null for hosts that were never probed.
	Reachable *bool `json:"reachable"`
	// ResolvedName is always present, null when no name was resolved.
	ResolvedName *string `json:"resolved_name"`
	ElapsedMs    int64   `json:"elapsed_ms"`
	Diagnostic   string  `json:"diagnostic,omitempty"`
}

type JSONRenderer struct {
	w io.Writer
}

func NewJSONRenderer(w io.Writer) *JSONRenderer {
	return &JSONRenderer{w: w}
}

func (r *JSONRenderer) Render(report *ports.SweepReport) error {
	s := report.Summary()

	out := jsonReport{
		Prefix:          report.Prefix(),
		Complete:        report.Complete(),
		StartedAt:       report.StartedAt().UTC(),
		DurationSeconds: report.Duration().Seconds(),
		Summary: jsonSummary{
			Total:   s.Total,
			Up:      s.Up,
			Down:    s.Down,
			Unknown: s.Unknown,
			Named:   s.Named,
		},
		Hosts: make([]jsonHost, 0, report.Len()),
	}

	for _, rec := range report.All() {
		h := jsonHost{
			Address:    rec.Address.String(),
			State:      rec.State.String(),
			ElapsedMs:  rec.Elapsed.Milliseconds(),
			Diagnostic: rec.Diagnostic,
		}

		if rec.State.Terminal() {
			reachable := rec.State == ports.HostUp
			h.Reachable = &reachable
		}

		if rec.Resolved() {
			name := rec.Name
			h.ResolvedName = &name
		}

		out.Hosts = append(out.Hosts, h)
	}

	enc := json.NewEncoder(r.w)
	enc.SetIndent("", "  ")

	return enc.Encode(out)
}
