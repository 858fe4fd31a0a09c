// Package export renders read-only artifacts of a completed run: a tabular
// CSV of responses and a structured JSON document. Exports are produced on
// demand and never persisted by the service.
package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"

	"llmsuite/internal/filter"
	"llmsuite/pkg/types"
)

// Options control how the snapshot is rendered.
type Options struct {
	// StripThinkBlocks applies the think-block filter to every response and
	// the evaluation verdict at export time. The snapshot is not mutated.
	StripThinkBlocks bool
}

func renderText(s string, opts Options) string {
	if opts.StripThinkBlocks {
		return filter.RemoveThinkBlocks(s)
	}
	return s
}

// CSV renders the per-model table: model, response text, response length.
func CSV(snap types.RunSnapshot, opts Options) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"Model", "Response", "Length"}); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	for _, r := range snap.Results {
		text := renderText(r.Response, opts)
		if err := w.Write([]string{r.Model, text, fmt.Sprintf("%d", len(text))}); err != nil {
			return nil, fmt.Errorf("write row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// document is the structured export shape.
type document struct {
	Prompt          string            `json:"prompt"`
	SystemPrompt    string            `json:"system_prompt"`
	Temperature     float64           `json:"temperature"`
	Results         map[string]string `json:"results"`
	ResponseLengths map[string]int    `json:"response_lengths"`
	Evaluation      *string           `json:"evaluation"`
}

// JSON renders the structured snapshot: prompt, system prompt, temperature,
// per-model responses and lengths, and the evaluation verdict when present.
func JSON(snap types.RunSnapshot, opts Options) ([]byte, error) {
	doc := document{
		Prompt:          snap.Prompt,
		SystemPrompt:    snap.SystemPrompt,
		Temperature:     snap.Temperature,
		Results:         make(map[string]string, len(snap.Results)),
		ResponseLengths: make(map[string]int, len(snap.Results)),
	}
	for _, r := range snap.Results {
		text := renderText(r.Response, opts)
		doc.Results[r.Model] = text
		doc.ResponseLengths[r.Model] = len(text)
	}
	if snap.Evaluation != nil {
		v := renderText(snap.Evaluation.Verdict, opts)
		doc.Evaluation = &v
	}
	return json.MarshalIndent(doc, "", "  ")
}
