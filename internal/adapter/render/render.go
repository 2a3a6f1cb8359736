package render

import (
	"fmt"
	"io"

	"github.com/khmm12/ping-sweep/internal/ports"
)

type Renderer interface {
	Render(report *ports.SweepReport) error
}

type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

func New(format Format, w io.Writer) (Renderer, error) {
	switch format {
	case FormatText:
		return NewTextRenderer(w), nil
	case FormatJSON:
		return NewJSONRenderer(w), nil
	default:
		return nil, fmt.Errorf("unknown output format: %q", format)
	}
}
