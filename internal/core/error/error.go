package errx

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/redis/go-redis/v9"
)

const (
	// SystemErrorMessage is a user-facing fallback when internal errors occur.
	SystemErrorMessage = "internal server error"
	// RedisErrorMessage describes Redis related failures.
	RedisErrorMessage = "redis operation failed"
	// RedisNotFoundMessage describes a missing Redis key.
	RedisNotFoundMessage = "redis key not found"
	// CatalogErrorMessage describes catalog store failures.
	CatalogErrorMessage = "menu catalog unavailable"
	// LLMErrorMessage describes completion service failures.
	LLMErrorMessage = "language model call failed"
	// EmbeddingErrorMessage describes embedding service failures.
	EmbeddingErrorMessage = "embedding service failed"
	// RetrievalErrorMessage describes knowledge index failures.
	RetrievalErrorMessage = "knowledge retrieval failed"
)

var (
	// ErrCatalogUnavailable is returned when no catalog snapshot can be produced.
	ErrCatalogUnavailable = errors.New("catalog unavailable")
	// ErrNoEmbedding is returned when the embedding service yields an empty vector.
	ErrNoEmbedding = errors.New("no embedding returned")
	// ErrNoOrder is returned when a turn needs an order document and none exists.
	ErrNoOrder = errors.New("no order in session")
)

// AppError wraps an underlying error with an HTTP status and safe message.
type AppError struct {
	Err     error
	Status  int
	Message string
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

// Unwrap exposes the underlying error for errors.Is / errors.As support.
func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError with the provided information.
func New(err error, status int, message string) *AppError {
	return &AppError{
		Err:     err,
		Status:  status,
		Message: message,
	}
}

// WrapRedis maps Redis errors to an AppError with an appropriate status code.
func WrapRedis(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, redis.Nil) {
		return New(err, http.StatusNotFound, RedisNotFoundMessage)
	}
	return New(err, http.StatusBadGateway, RedisErrorMessage)
}

// WrapCatalog marks a catalog store failure. The result matches ErrCatalogUnavailable.
func WrapCatalog(err error) error {
	if err == nil {
		return nil
	}
	return New(fmt.Errorf("%w: %w", ErrCatalogUnavailable, err), http.StatusServiceUnavailable, CatalogErrorMessage)
}

// WrapLLM marks a completion service failure.
func WrapLLM(err error) error {
	if err == nil {
		return nil
	}
	return New(err, http.StatusBadGateway, LLMErrorMessage)
}

// WrapEmbedding marks an embedding service failure.
func WrapEmbedding(err error) error {
	if err == nil {
		return nil
	}
	return New(err, http.StatusBadGateway, EmbeddingErrorMessage)
}

// WrapRetrieval marks a knowledge index failure.
func WrapRetrieval(err error) error {
	if err == nil {
		return nil
	}
	return New(err, http.StatusBadGateway, RetrievalErrorMessage)
}

// StatusOf returns the HTTP status carried by err, or 500 when err is not an AppError.
func StatusOf(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Status != 0 {
		return appErr.Status
	}
	return http.StatusInternalServerError
}
