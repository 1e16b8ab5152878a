package port

import "context"

// AIProvider abstracts the language-model backend used for classification
// and narrative aggregation. Implementations target Ollama or any
// chat-compatible API.
type AIProvider interface {
	// ModelName returns the identifier of the model being used.
	ModelName() string

	// Chat sends a system and user prompt and returns the raw response text.
	// When jsonMode is set, the backend is asked to constrain its output to
	// a single JSON object; callers must still treat the response as
	// untrusted free text.
	Chat(ctx context.Context, systemPrompt, userPrompt string, jsonMode bool) (string, error)

	// ListModels returns the names of the models available on the backend,
	// normalized to a flat list regardless of the wire shape.
	ListModels(ctx context.Context) ([]string, error)
}
