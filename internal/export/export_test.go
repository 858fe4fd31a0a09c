package export

import (
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"

	"llmsuite/pkg/types"
)

func snapshot() types.RunSnapshot {
	return types.RunSnapshot{
		Prompt:       "compare these",
		SystemPrompt: "be brief",
		Temperature:  0.7,
		Results: []types.ModelResult{
			{Model: "alpha:latest", Response: "first answer", Length: 12},
			{Model: "beta:7b", Response: "<think>hmm</think>second", Length: 24},
		},
		Evaluation: &types.EvaluationResult{Verdict: "beta wins", JudgeModel: "judge"},
	}
}

func TestCSVRowsAndHeader(t *testing.T) {
	out, err := CSV(snapshot(), Options{})
	if err != nil {
		t.Fatalf("csv: %v", err)
	}
	rows, err := csv.NewReader(strings.NewReader(string(out))).ReadAll()
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows=%v", rows)
	}
	if rows[0][0] != "Model" || rows[0][1] != "Response" || rows[0][2] != "Length" {
		t.Fatalf("header=%v", rows[0])
	}
	if rows[1][0] != "alpha:latest" || rows[1][1] != "first answer" || rows[1][2] != "12" {
		t.Fatalf("row=%v", rows[1])
	}
}

func TestCSVStripThinkRecomputesLength(t *testing.T) {
	out, err := CSV(snapshot(), Options{StripThinkBlocks: true})
	if err != nil {
		t.Fatalf("csv: %v", err)
	}
	rows, err := csv.NewReader(strings.NewReader(string(out))).ReadAll()
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if rows[2][1] != "second" || rows[2][2] != "6" {
		t.Fatalf("row=%v", rows[2])
	}
}

func TestJSONDocumentShape(t *testing.T) {
	out, err := JSON(snapshot(), Options{})
	if err != nil {
		t.Fatalf("json: %v", err)
	}
	var doc struct {
		Prompt          string            `json:"prompt"`
		SystemPrompt    string            `json:"system_prompt"`
		Temperature     float64           `json:"temperature"`
		Results         map[string]string `json:"results"`
		ResponseLengths map[string]int    `json:"response_lengths"`
		Evaluation      *string           `json:"evaluation"`
	}
	if err := json.Unmarshal(out, &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if doc.Prompt != "compare these" || doc.SystemPrompt != "be brief" || doc.Temperature != 0.7 {
		t.Fatalf("doc=%+v", doc)
	}
	if doc.Results["alpha:latest"] != "first answer" {
		t.Fatalf("results=%v", doc.Results)
	}
	if doc.ResponseLengths["beta:7b"] != len("<think>hmm</think>second") {
		t.Fatalf("lengths=%v", doc.ResponseLengths)
	}
	if doc.Evaluation == nil || *doc.Evaluation != "beta wins" {
		t.Fatalf("evaluation=%v", doc.Evaluation)
	}
}

func TestJSONWithoutEvaluation(t *testing.T) {
	snap := snapshot()
	snap.Evaluation = nil
	out, err := JSON(snap, Options{})
	if err != nil {
		t.Fatalf("json: %v", err)
	}
	if !strings.Contains(string(out), `"evaluation": null`) {
		t.Fatalf("out=%s", out)
	}
}
