package renderer

import (
	"encoding/json"
	"io"

	"github.com/ChainSafe/go-nasm/builder"
)

// JSONRenderer renders results in JSON format.
type JSONRenderer struct{}

func NewJSONRenderer() Renderer {
	return &JSONRenderer{}
}

func (r *JSONRenderer) Render(results []*builder.Result, output io.Writer) error {
	if results == nil {
		results = []*builder.Result{}
	}
	return json.NewEncoder(output).Encode(results)
}

func (r *JSONRenderer) Format() string {
	return "json"
}
