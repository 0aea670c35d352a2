package driven

import "context"

// LLMService is the opaque generative model behind answer production.
// Calls may fail, throttle or time out; callers treat any failure as
// "no answer produced" and fall back to a textual response.
type LLMService interface {
	// Generate produces an answer to the question given the assembled
	// context text.
	Generate(ctx context.Context, question, contextText string) (string, error)

	// Suggest produces raw text from a free-form prompt, used for
	// follow-up question generation.
	Suggest(ctx context.Context, prompt string) (string, error)

	// ModelName returns the name of the model being used.
	ModelName() string

	// Ping validates the service is reachable.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
