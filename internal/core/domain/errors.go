package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrGenerationUnavailable marks a failed text-generation or
	// summarization call. Distinct from business outcomes such as empty
	// retrieval or a defaulted category.
	ErrGenerationUnavailable = errors.New("generation unavailable")
	// ErrIndexUnavailable marks a failed semantic or lexical index call.
	ErrIndexUnavailable = errors.New("index unavailable")

	ErrDocumentNotFound = errors.New("document not found")
	ErrSessionNotFound  = errors.New("session not found")
	ErrInvalidInput     = errors.New("invalid input")
	ErrTemporary        = errors.New("temporary failure")
)

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}
