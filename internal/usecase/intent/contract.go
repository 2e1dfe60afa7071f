package intent

import "context"

// Completer is the language-model capability consumed by the extractor.
type Completer interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}
