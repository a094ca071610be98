package renderer

import (
	"fmt"
	"io"

	"github.com/ChainSafe/go-nasm/builder"
)

// Renderer defines the interface for rendering build results in different formats.
type Renderer interface {
	// Render takes the results of a build and outputs them in the desired format to the provided writer.
	Render(results []*builder.Result, output io.Writer) error

	// Format returns the name of the output format (e.g., "json", "text").
	Format() string
}

// NewRenderer returns the renderer for format.
func NewRenderer(format string) (Renderer, error) {
	switch format {
	case "text", "":
		return NewTextRenderer(), nil
	case "json":
		return NewJSONRenderer(), nil
	default:
		return nil, fmt.Errorf("invalid format: %s", format)
	}
}
