// Package renderer provides a way to render build results in different formats.
package renderer

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/ChainSafe/go-nasm/builder"
)

// TextRenderer formats the build report in a structured text format.
type TextRenderer struct{}

// NewTextRenderer creates a new instance of TextRenderer.
func NewTextRenderer() Renderer {
	return &TextRenderer{}
}

// Render writes one line per job followed by a summary. Assembler output of
// failed jobs is indented below the job.
func (r *TextRenderer) Render(results []*builder.Result, output io.Writer) error {
	var report strings.Builder
	counts := make(map[builder.Status]int)
	var total time.Duration

	for _, res := range results {
		counts[res.Status]++
		total += res.Duration

		switch res.Status {
		case builder.StatusOK:
			report.WriteString(fmt.Sprintf("[%-7s] %s -> %s (%s, %s)\n",
				res.Status, res.File, res.Output, res.Format, res.Duration.Round(time.Millisecond)))
		case builder.StatusFailed:
			report.WriteString(fmt.Sprintf("[%-7s] %s (%s): %s\n", res.Status, res.File, res.Format, res.Error))
			for _, line := range strings.Split(strings.TrimRight(res.Log, "\n"), "\n") {
				if line != "" {
					report.WriteString("          " + line + "\n")
				}
			}
		default:
			report.WriteString(fmt.Sprintf("[%-7s] %s\n", res.Status, res.File))
		}
	}

	report.WriteString("------------------------------\n")
	report.WriteString(fmt.Sprintf("%d assembled, %d failed, %d skipped (assembler time %s)\n",
		counts[builder.StatusOK], counts[builder.StatusFailed], counts[builder.StatusSkipped],
		total.Round(time.Millisecond)))

	// Print the complete report at once
	_, err := output.Write([]byte(report.String()))
	return err
}

// Format returns the format type.
func (r *TextRenderer) Format() string {
	return "text"
}
