package ollama

// generateRequest is the payload for POST /api/generate.
type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	// System rides in its own field; it is never concatenated into the prompt.
	System  string           `json:"system,omitempty"`
	Stream  bool             `json:"stream"`
	Options *generateOptions `json:"options,omitempty"`
}

type generateOptions struct {
	Temperature float64 `json:"temperature"`
}

// generateResponse is one line of the /api/generate reply. In streaming mode
// every NDJSON line carries one fragment; the final line has Done set.
type generateResponse struct {
	Model    string `json:"model"`
	Response string `json:"response"`
	Done     bool   `json:"done"`
	// Error is set by some server builds instead of a non-2xx status.
	Error string `json:"error,omitempty"`
}

// TagsResponse is the reply of GET /api/tags.
type TagsResponse struct {
	Models []TagModel `json:"models"`
}

// TagModel is one installed model as listed by the registry.
type TagModel struct {
	Name       string          `json:"name"`
	ModifiedAt string          `json:"modified_at"`
	Size       int64           `json:"size"`
	Digest     string          `json:"digest"`
	Details    TagModelDetails `json:"details"`
}

// TagModelDetails carries registry metadata for a model.
type TagModelDetails struct {
	Format            string `json:"format"`
	Family            string `json:"family"`
	ParameterSize     string `json:"parameter_size"`
	QuantizationLevel string `json:"quantization_level"`
}

type versionResponse struct {
	Version string `json:"version"`
}
