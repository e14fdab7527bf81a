package urlexpand

import (
	"context"
	"errors"
	"fmt"
	"os"
)

// Errors returned by Unshorten and Expander.Expand. Every failure is
// classified under exactly one of these sentinels (or is a transport
// error surfaced unchanged); test with errors.Is.
var (
	// ErrInvalidInput means the given URL could not be parsed even after
	// the https scheme-insertion fallback, or parsed but does not belong
	// to any known shortener service.
	ErrInvalidInput = errors.New("invalid or non-shortened URL")

	// ErrUnmappedService means a domain classified as shortened but has
	// no registered strategy. Indicates a broken service table.
	ErrUnmappedService = errors.New("no strategy registered for service")

	// ErrTimeout means resolution did not complete within the
	// caller-supplied timeout.
	ErrTimeout = errors.New("resolution timed out")

	// ErrExtraction means a page-dependent strategy could not locate the
	// destination URL in the fetched content, usually because the
	// provider changed its page markup.
	ErrExtraction = errors.New("could not extract destination URL")

	// ErrRedirectLimit means more than maxRedirects hops were required
	// to reach a terminal response.
	ErrRedirectLimit = errors.New("redirect limit exceeded")
)

// classifyErr folds transport-level errors into the error taxonomy.
// Errors already carrying a sentinel pass through; timeouts of any
// flavor are tagged ErrTimeout; everything else is a network failure
// and is surfaced unchanged.
func classifyErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrRedirectLimit) || errors.Is(err, ErrExtraction) {
		return err
	}
	if isTimeoutError(err) {
		return fmt.Errorf("%w: %s", ErrTimeout, err)
	}
	return err
}

func isTimeoutError(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, context.DeadlineExceeded) || os.IsTimeout(err) || isTimeoutError(errors.Unwrap(err))
}
