package services

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	// ErrValidation marks malformed client input: bad segment timing,
	// unsupported upload types, or a document with no visible cues.
	ErrValidation = errors.New("validation error")
	// ErrProbe marks a failed source resolution probe.
	ErrProbe = errors.New("probe error")
	// ErrEncode marks a failed burn invocation or a missing output artifact.
	ErrEncode = errors.New("encode error")
	// ErrTranscription marks an unexpected transcription engine failure.
	ErrTranscription = errors.New("transcription error")
	// ErrTransient marks asset I/O failures encountered during cleanup.
	ErrTransient = errors.New("transient failure")
	ErrNotFound  = errors.New("not found")
	// ErrUnauthorized marks a missing or mismatched owner credential.
	ErrUnauthorized  = errors.New("unauthorized")
	ErrConfiguration = errors.New("configuration error")
)

// Wrap builds an error message that includes pipeline context while tagging it
// with the provided marker for later fault classification. The marker should
// be one of the exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// ClientFault reports whether the error is the caller's fault (malformed
// input) rather than an unexpected engine, tool, or storage failure.
func ClientFault(err error) bool {
	return errors.Is(err, ErrValidation) || errors.Is(err, ErrNotFound) || errors.Is(err, ErrUnauthorized)
}

// HTTPStatus maps a classified error to the response status the API layer
// should emit.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
