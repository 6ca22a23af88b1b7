package domain

import "fmt"

// RepositoryError wraps document-store failures.
type RepositoryError struct {
	Op  string
	Err string
}

func (e *RepositoryError) Error() string {
	return fmt.Sprintf("repository error in %s: %s", e.Op, e.Err)
}

// SearchEngineError wraps lexical-index failures.
type SearchEngineError struct {
	Op  string
	Err string
}

func (e *SearchEngineError) Error() string {
	return fmt.Sprintf("search engine error in %s: %s", e.Op, e.Err)
}

// VectorIndexError wraps vector-index failures.
type VectorIndexError struct {
	Op  string
	Err string
}

func (e *VectorIndexError) Error() string {
	return fmt.Sprintf("vector index error in %s: %s", e.Op, e.Err)
}

// ProviderError wraps embedding/sentiment model provider failures.
type ProviderError struct {
	Provider string
	Err      string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s provider error: %s", e.Provider, e.Err)
}

// ErrNotFound marks record lookups that matched nothing.
type NotFoundError struct {
	Kind string
	Key  string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.Key)
}
