package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidQuery indicates a malformed search query.
	// User-correctable; returned as a structured tool error, never fatal.
	ErrInvalidQuery = errors.New("invalid query")

	// ErrEmbeddingUnavailable indicates the embedding service failed
	// after exhausting retries. The request fails but the server keeps
	// running.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrIndexUnavailable indicates the vector index failed.
	// Fatal for the request, never silently degraded to empty results.
	ErrIndexUnavailable = errors.New("vector index unavailable")

	// ErrDataMissing indicates a required persisted artifact is absent
	// at startup. Fatal; the server must not begin serving.
	ErrDataMissing = errors.New("data not found")

	// ErrTimeout indicates a single operation exceeded its bound.
	ErrTimeout = errors.New("operation timed out")
)

// ErrorKind returns the wire-level error kind for a domain error,
// matching the {error:{kind,message}} contract of the search tool.
func ErrorKind(err error) string {
	switch {
	case errors.Is(err, ErrInvalidQuery):
		return "ValidationError"
	case errors.Is(err, ErrEmbeddingUnavailable):
		return "EmbeddingUnavailable"
	case errors.Is(err, ErrIndexUnavailable):
		return "IndexUnavailable"
	case errors.Is(err, ErrDataMissing):
		return "DataMissing"
	case errors.Is(err, ErrTimeout):
		return "Timeout"
	default:
		return "InternalError"
	}
}
