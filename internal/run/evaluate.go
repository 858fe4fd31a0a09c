package run

import (
	"context"
	"fmt"
	"strings"

	"llmsuite/pkg/types"
)

// DefaultEvaluationPrompt is the judge instruction used when a profile does
// not override it.
const DefaultEvaluationPrompt = "Several LLMs have been queried with the same prompt. " +
	"Following are their individual responses to the prompt. Please look over the responses " +
	"as a whole, and determine which response(s) are the most recurring. DO NOT evaluate the " +
	"prompt on your own, only find which the most common model response."

// compositePrompt assembles the judge's input: the original prompt followed
// by every recorded response labeled with its 1-based index and model name,
// in dispatch order.
func compositePrompt(originalPrompt string, results []types.ModelResult) string {
	var formatted strings.Builder
	for i, r := range results {
		fmt.Fprintf(&formatted, "\n\n--- MODEL %d: %s ---\n%s", i+1, r.Model, r.Response)
	}
	return fmt.Sprintf(`Original User Prompt: %s

The following are responses from different LLM models to this prompt:
%s

Based on these responses, please provide your evaluation.
`, originalPrompt, formatted.String())
}

// Evaluate sends the collected responses to the judge model and records its
// verdict. Exactly one evaluation result exists per completed run; re-running
// overwrites the previous verdict. A judge failure is recorded as a sentinel
// verdict, not returned as an error, so the panel can display it like any
// other response.
func (c *Coordinator) Evaluate(ctx context.Context, judgeModel, evaluationPrompt string, temperature float64) (types.EvaluationResult, error) {
	if strings.TrimSpace(judgeModel) == "" {
		return types.EvaluationResult{}, ErrNoJudgeModel()
	}
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return types.EvaluationResult{}, ErrRunInProgress()
	}
	if len(c.order) == 0 {
		c.mu.Unlock()
		return types.EvaluationResult{}, ErrNoResults()
	}
	prompt := c.req.Prompt
	results := make([]types.ModelResult, 0, len(c.order))
	for _, model := range c.order {
		results = append(results, types.ModelResult{Model: model, Response: c.results[model]})
	}
	c.mu.Unlock()

	if evaluationPrompt == "" {
		evaluationPrompt = DefaultEvaluationPrompt
	}

	c.appendLog("Sending evaluation request to %s...", judgeModel)
	evaluationsTotal.Inc()
	verdict, err := c.client.Query(ctx, judgeModel, compositePrompt(prompt, results), evaluationPrompt, temperature)
	if err != nil {
		c.appendLog("Evaluation exception with %s: %v", judgeModel, err)
		verdict = fmt.Sprintf("%s Unable to perform evaluation. %v", ErrorSentinel, err)
	}

	result := types.EvaluationResult{Verdict: verdict, JudgeModel: judgeModel}
	c.mu.Lock()
	c.eval = &result
	c.mu.Unlock()
	return result, nil
}
