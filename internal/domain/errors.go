package domain

import "errors"

var (
	// ErrEmptyQuery signals a query with no usable text.
	ErrEmptyQuery = errors.New("query is empty")
	// ErrCatalogInvalid signals an unusable product dataset.
	ErrCatalogInvalid = errors.New("catalog invalid")
	// ErrCompletionProviderError signals a language-model provider failure.
	ErrCompletionProviderError = errors.New("completion provider error")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrHistoryUnavailable signals that the history store cannot be read.
	ErrHistoryUnavailable = errors.New("history unavailable")
)
