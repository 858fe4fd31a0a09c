package types

// RunRequest describes one user-initiated comparison. It is constructed once
// per run and never mutated while the run is in flight.
type RunRequest struct {
	// Prompt sent to every selected model. May be empty; forwarded as-is.
	// example: Write a haiku about the ocean.
	Prompt string `json:"prompt" example:"Write a haiku about the ocean."`
	// Optional system prompt, attached as a separate instruction channel.
	SystemPrompt string `json:"system_prompt,omitempty"`
	// Sampling temperature in [0.0, 2.0].
	// example: 0.7
	Temperature float64 `json:"temperature" example:"0.7"`
	// Full model names in dispatch order. Must be non-empty.
	Models []string `json:"models"`
	// Stream partial output fragment by fragment.
	// example: true
	Streaming bool `json:"streaming" example:"true"`
}

// ModelResult is one model's recorded response within a run.
type ModelResult struct {
	// Full model name.
	// example: llama3:8b
	Model string `json:"model" example:"llama3:8b"`
	// Response text; failures carry the literal "Error:" prefix.
	Response string `json:"response"`
	// Length of the response in bytes.
	// example: 412
	Length int `json:"length" example:"412"`
}

// EvaluationResult is the judge model's verdict over a completed run.
type EvaluationResult struct {
	// Verdict text produced by the judge model.
	Verdict string `json:"verdict"`
	// Model that produced the verdict.
	// example: llama3:8b
	JudgeModel string `json:"judge_model" example:"llama3:8b"`
}

// RunSnapshot is a read-only projection of the current run state.
type RunSnapshot struct {
	// True while the dispatch loop is executing.
	Running bool `json:"running"`
	// True once cancellation was requested; stays true until the next run.
	CancelRequested bool `json:"cancel_requested"`
	// Prompt of the current/last run.
	Prompt string `json:"prompt"`
	// System prompt of the current/last run.
	SystemPrompt string `json:"system_prompt,omitempty"`
	// Temperature of the current/last run.
	Temperature float64 `json:"temperature"`
	// Requested models in dispatch order.
	Models []string `json:"models"`
	// Recorded responses in dispatch order; a prefix of Models when cancelled.
	Results []ModelResult `json:"results"`
	// Ordered diagnostic log of the run.
	DebugLog []string `json:"debug_log"`
	// Responses not carrying the "Error:" sentinel.
	SuccessCount int `json:"success_count"`
	// Responses carrying the "Error:" sentinel.
	ErrorCount int `json:"error_count"`
	// Completed fraction; exactly 1.0 only when every model was attempted.
	// example: 0.5
	Progress float64 `json:"progress" example:"0.5"`
	// Judge verdict, if an evaluation pass ran.
	Evaluation *EvaluationResult `json:"evaluation,omitempty"`
}

// EvaluateRequest asks the judge model for a verdict over the last run.
type EvaluateRequest struct {
	// Judge model; required.
	// example: llama3:8b
	JudgeModel string `json:"judge_model" example:"llama3:8b"`
	// Instruction passed to the judge as its system prompt.
	EvaluationPrompt string `json:"evaluation_prompt"`
	// Sampling temperature for the judge call.
	// example: 0.7
	Temperature float64 `json:"temperature" example:"0.7"`
}

// PullRequest names a model to install. Version defaults to "latest".
type PullRequest struct {
	// Base model name.
	// example: phi3
	Name string `json:"name" example:"phi3"`
	// Optional version tag.
	// example: mini
	Version string `json:"version,omitempty" example:"mini"`
}

// RemoveRequest names an installed model to delete.
type RemoveRequest struct {
	// Full model name.
	// example: phi3:mini
	Name string `json:"name" example:"phi3:mini"`
}

// OpResult reports the outcome of a model install/remove operation.
type OpResult struct {
	// True when the external tool exited cleanly.
	Success bool `json:"success"`
	// Raw textual output of the external tool.
	Output string `json:"output"`
}

// ModelsResponse wraps the registry listing returned by GET /api/models.
type ModelsResponse struct {
	// Installed models sorted by base name, then version.
	Models []ModelDescriptor `json:"models"`
	// The same models grouped by base name.
	Families []ModelFamily `json:"families"`
}

// ProfileResponse is a stored profile plus its derived install state.
type ProfileResponse struct {
	Profile
	// Selected models that are not currently installed. The caller may offer
	// to pull them before applying the profile.
	MissingModels []string `json:"missing_models,omitempty"`
}

// ProfilesResponse lists stored profile names and the default, if set.
type ProfilesResponse struct {
	Profiles []string `json:"profiles"`
	// Name of the default profile; empty when none is set.
	Default string `json:"default,omitempty"`
}

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message.
	// example: invalid JSON body
	Error string `json:"error" example:"invalid JSON body"`
	// HTTP status code.
	// example: 400
	Code int `json:"code" example:"400"`
}
