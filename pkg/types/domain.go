package types

// ModelDescriptor is an immutable snapshot of an installed model as reported
// by the inference server's registry. Name is always "base:version".
type ModelDescriptor struct {
	// Full model name including version tag.
	// example: llama3:8b
	Name string `json:"name" example:"llama3:8b"`
	// Base model name without the version tag.
	// example: llama3
	BaseName string `json:"base_name" example:"llama3"`
	// Version tag; "latest" when the registry reported none.
	// example: 8b
	Version string `json:"version" example:"8b"`
	// On-disk size in bytes.
	// example: 4661224676
	SizeBytes int64 `json:"size_bytes" example:"4661224676"`
	// Model family as reported by the registry.
	// example: llama
	Family string `json:"family,omitempty" example:"llama"`
	// Parameter count label.
	// example: 8.0B
	ParameterSize string `json:"parameter_size,omitempty" example:"8.0B"`
	// Quantization level or variant string.
	// example: Q4_K_M
	QuantizationLevel string `json:"quantization_level,omitempty" example:"Q4_K_M"`
	// Container format of the model file.
	// example: gguf
	Format string `json:"format,omitempty" example:"gguf"`
}

// ModelFamily groups installed versions of one base model for display.
type ModelFamily struct {
	// Shared base name of every member.
	// example: llama3
	BaseName string `json:"base_name" example:"llama3"`
	// Full names of the installed versions, sorted by version tag.
	Models []ModelDescriptor `json:"models"`
}

// Profile is a named, persisted bundle of run configuration.
type Profile struct {
	// Unique profile name; doubles as the section name in the profile file.
	// example: coding
	Name string `json:"name" example:"coding"`
	// Full names of the models selected for comparison.
	SelectedModels []string `json:"selected_models"`
	// Stream partial output while generating.
	// example: true
	Streaming bool `json:"enable_streaming" example:"true"`
	// Sampling temperature in [0.0, 2.0].
	// example: 0.7
	Temperature float64 `json:"temperature" example:"0.7"`
	// Optional system prompt attached to every query.
	SystemPrompt string `json:"system_prompt"`
	// Judge model used by the evaluation pass.
	// example: llama3:8b
	EvaluationModel string `json:"evaluation_model" example:"llama3:8b"`
	// Instruction given to the judge model as its system prompt.
	EvaluationPrompt string `json:"evaluation_prompt"`
	// Strip <think> blocks at display/export time.
	// example: false
	RemoveThinkBlocks bool `json:"remove_think_blocks" example:"false"`
}
