package domain

import "context"

// Completer is the language-model capability used for structured-intent
// extraction. Implementations must honor ctx cancellation; the caller
// bounds the call with a timeout.
type Completer interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}
