package models

import (
	"errors"
	"fmt"
)

var ErrNotFound = errors.New("not found")

type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found", e.Resource)
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

func NewNotFoundError(resource string) error {
	return &NotFoundError{Resource: resource}
}

var ErrBadRequest = errors.New("bad request")

type BadRequestError struct {
	Message string
}

func (e *BadRequestError) Error() string {
	return fmt.Sprintf("bad request: %s", e.Message)
}

func (e *BadRequestError) Unwrap() error {
	return ErrBadRequest
}

func NewBadRequestError(message string) error {
	return &BadRequestError{Message: message}
}

// ErrNoEmbeddings is the one hard, user-visible analysis failure: analysis
// was requested before any embeddings exist for the content.
var ErrNoEmbeddings = errors.New("no embeddings found")

type NoEmbeddingsError struct {
	ContentID string
}

func (e *NoEmbeddingsError) Error() string {
	return fmt.Sprintf("no embeddings found for content %s", e.ContentID)
}

func (e *NoEmbeddingsError) Unwrap() error {
	return ErrNoEmbeddings
}

func NewNoEmbeddingsError(contentID string) error {
	return &NoEmbeddingsError{ContentID: contentID}
}

// ContentNotFoundError indicates the upstream metadata or parsed file is
// missing. The embedding creator soft-fails on it: absence of data, not
// error leakage.
type ContentNotFoundError struct {
	ContentID string
	Cause     error
}

func (e *ContentNotFoundError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("content %s not found: %v", e.ContentID, e.Cause)
	}
	return fmt.Sprintf("content %s not found", e.ContentID)
}

func (e *ContentNotFoundError) Unwrap() error {
	return ErrNotFound
}

func NewContentNotFoundError(contentID string, cause error) error {
	return &ContentNotFoundError{ContentID: contentID, Cause: cause}
}

// MalformedPayloadError indicates the normalizer could not interpret a
// parsed payload. Like ContentNotFoundError it never crosses the creator's
// public boundary.
type MalformedPayloadError struct {
	Message string
	Cause   error
}

func (e *MalformedPayloadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("malformed tabular payload: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("malformed tabular payload: %s", e.Message)
}

func (e *MalformedPayloadError) Unwrap() error {
	return e.Cause
}

func NewMalformedPayloadError(message string, cause error) error {
	return &MalformedPayloadError{Message: message, Cause: cause}
}
