package ollama

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/acmecorp/docquery/internal/core/domain"
	"github.com/acmecorp/docquery/internal/infrastructure/resilience"
)

// HTTPStatusError carries a non-2xx response from the model server so the
// classifier can separate overload (retry) from bad requests (fail fast).
type HTTPStatusError struct {
	Operation  string
	StatusCode int
	Status     string
	Body       string
}

func (e *HTTPStatusError) Error() string {
	if e == nil {
		return "ollama status error"
	}
	if body := strings.TrimSpace(e.Body); body != "" {
		return fmt.Sprintf("ollama %s status: %s: %s", e.Operation, e.Status, body)
	}
	return fmt.Sprintf("ollama %s status: %s", e.Operation, e.Status)
}

var retryableStatuses = map[int]struct{}{
	http.StatusRequestTimeout:      {},
	http.StatusTooManyRequests:     {},
	http.StatusInternalServerError: {},
	http.StatusBadGateway:          {},
	http.StatusServiceUnavailable:  {},
	http.StatusGatewayTimeout:      {},
}

func classifyOllamaError(err error) resilience.ErrorClassification {
	retry := resilience.ErrorClassification{Retryable: true, RecordFailure: true}

	switch {
	case err == nil:
		return resilience.ErrorClassification{}
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		// Caller abandoned the request; do not punish the breaker for it.
		return resilience.ErrorClassification{}
	case resilience.IsCircuitOpen(err):
		return retry
	}

	var statusErr *HTTPStatusError
	if errors.As(err, &statusErr) {
		if _, ok := retryableStatuses[statusErr.StatusCode]; ok {
			return retry
		}
		// 4xx means the prompt or model name is wrong. Retrying repeats
		// the mistake, and the breaker should not trip over it either.
		return resilience.ErrorClassification{}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return retry
	}

	return resilience.ErrorClassification{RecordFailure: true}
}

// wrapTemporaryIfNeeded marks retryable model-backend failures as
// ErrTemporary so callers can distinguish "try again later" from a
// permanently broken request.
func wrapTemporaryIfNeeded(operation string, err error) error {
	if err == nil || domain.IsKind(err, domain.ErrTemporary) {
		return err
	}
	if classifyOllamaError(err).Retryable || resilience.IsCircuitOpen(err) {
		return domain.WrapError(domain.ErrTemporary, operation, err)
	}
	return err
}
