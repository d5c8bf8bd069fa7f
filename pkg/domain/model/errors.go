package model

import "github.com/m-mizutani/goerr/v2"

// Sentinel errors shared by every layer. Wrap them with goerr.Wrap and
// classify with errors.Is.
var (
	// ErrValidation is returned for a missing or empty prompt and other bad client input
	ErrValidation = goerr.New("validation error")

	// ErrNotFound is returned when a stored object does not exist
	ErrNotFound = goerr.New("not found")

	// Provider adapter failures
	ErrMissingCredential = goerr.New("missing credential")
	ErrUpstream          = goerr.New("upstream service error")
	ErrMalformedResponse = goerr.New("malformed upstream response")
	ErrUnknownProvider   = goerr.New("unknown provider")

	// ErrAllProvidersExhausted is returned when every provider in the failover order failed
	ErrAllProvidersExhausted = goerr.New("all providers exhausted")

	// Retrieval failures
	ErrEmbeddingUnavailable = goerr.New("embedding service unavailable")
	ErrIndexUnavailable     = goerr.New("vector index unavailable")

	// ErrStorage is returned when the blob store fails to read or write
	ErrStorage = goerr.New("storage error")

	// ErrDuplicatePath is returned when two bundle files share a path
	ErrDuplicatePath = goerr.New("duplicate artifact path")
)

// Context keys for error values
const (
	ProviderIDKey = "provider_id"
	StatusKey     = "status"
	BodyKey       = "body"
	ObjectKeyKey  = "key"
	SlugKey       = "slug"
	PathKey       = "path"
)
