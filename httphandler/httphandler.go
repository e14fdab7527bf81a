/*
Package httphandler provides a basic net/http http.Handler
implementation that expands shortened URLs.

The handler expects a ?url=URL_TO_EXPAND query parameter, and responds
with a JSON object containing the resolved URL and the shortener
service it matched:

    $ curl -s localhost:8080/expand?url=https://bit.ly/3alqLKi | jq .
    {
        "given_url": "https://bit.ly/3alqLKi",
        "resolved_url": "https://www.rust-lang.org/",
        "service": "bit.ly"
    }

Failures are classified: unparsable or non-shortener input is a 400, a
resolution timeout is a 504, and any other resolution failure is a 502
with an error field describing the failure class:

    $ curl -s localhost:8080/expand?url=https://cutt.us/gone | jq .
    {
        "given_url": "https://cutt.us/gone",
        "service": "cutt.us",
        "error": "extraction error"
    }
*/
package httphandler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog/hlog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/urlexpand/urlexpand"
	"github.com/urlexpand/urlexpand/metrics"
	"github.com/urlexpand/urlexpand/safedialer"
)

// Errors that might be returned by the HTTP handler. These hide the
// underlying error details from clients; the real errors are logged.
var (
	ErrExpandError    = errors.New("expand error")
	ErrExtraction     = errors.New("extraction error")
	ErrInvalidURL     = errors.New("invalid or non-shortened url")
	ErrRedirectLimit  = errors.New("redirect limit exceeded")
	ErrRequestTimeout = errors.New("request timeout")
	ErrUnsafeURL      = errors.New("unsafe url")
)

// ExpandResponse defines the HTTP handler's response structure.
type ExpandResponse struct {
	GivenURL    string `json:"given_url"`
	ResolvedURL string `json:"resolved_url,omitempty"`
	Service     string `json:"service,omitempty"`
	Error       string `json:"error,omitempty"`
}

// New creates a new Handler.
func New(expander urlexpand.Interface) *Handler {
	return &Handler{
		expander: expander,
	}
}

// Handler is an HTTP request handler that expands shortened URLs.
type Handler struct {
	expander urlexpand.Interface
}

var _ http.Handler = &Handler{} // Handler implements http.Handler

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	span := trace.SpanFromContext(ctx)

	givenURL := r.URL.Query().Get("url")
	if givenURL == "" {
		span.SetAttributes(attribute.String("error", "missing_arg_url"))
		sendError(w, "Missing arg url", http.StatusBadRequest)
		return
	}

	start := time.Now()
	result, err := h.expander.Expand(ctx, givenURL)
	metrics.ExpansionDuration.WithLabelValues(serviceLabel(result)).Observe(time.Since(start).Seconds())

	resp := ExpandResponse{
		GivenURL:    givenURL,
		ResolvedURL: result.ResolvedURL,
		Service:     result.Service,
	}

	if err != nil {
		// Special case when the client closed the connection: nobody is
		// listening for a response.
		if errors.Is(err, context.Canceled) {
			hlog.FromRequest(r).Error().Err(err).Str("url", givenURL).Msg("client closed connection")
			metrics.ExpansionsTotal.WithLabelValues(serviceLabel(result), "canceled").Inc()
			// Non-standard 499 Client Closed Request, for our own
			// instrumentation purposes (https://httpstatuses.com/499)
			w.WriteHeader(499)
			return
		}

		span.SetAttributes(attribute.String("error", err.Error()))
		hlog.FromRequest(r).Error().Err(err).Str("url", givenURL).Msg("error expanding url")

		mapped, code := mapError(err)
		resp.Error = mapped.Error()
		metrics.ExpansionsTotal.WithLabelValues(serviceLabel(result), outcomeLabel(err)).Inc()
		sendJSON(w, code, resp)
		return
	}

	metrics.ExpansionsTotal.WithLabelValues(result.Service, "ok").Inc()
	sendJSON(w, http.StatusOK, resp)
}

func sendJSON(w http.ResponseWriter, code int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(data)
}

func sendError(w http.ResponseWriter, msg string, code int) {
	sendJSON(w, code, map[string]string{
		"error": msg,
	})
}

// mapError rewrites resolution errors to hide implementation details
// and picks the response status for each failure class.
func mapError(err error) (error, int) {
	switch {
	case errors.Is(err, urlexpand.ErrInvalidInput):
		return ErrInvalidURL, http.StatusBadRequest
	case errors.Is(err, urlexpand.ErrTimeout):
		return ErrRequestTimeout, http.StatusGatewayTimeout
	case errors.Is(err, urlexpand.ErrExtraction):
		return ErrExtraction, http.StatusBadGateway
	case errors.Is(err, urlexpand.ErrRedirectLimit):
		return ErrRedirectLimit, http.StatusBadGateway
	case isUnsafeError(err):
		return ErrUnsafeURL, http.StatusBadRequest
	default:
		return ErrExpandError, http.StatusBadGateway
	}
}

func outcomeLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, urlexpand.ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, urlexpand.ErrUnmappedService):
		return "unmapped_service"
	case errors.Is(err, urlexpand.ErrTimeout):
		return "timeout"
	case errors.Is(err, urlexpand.ErrExtraction):
		return "extraction"
	case errors.Is(err, urlexpand.ErrRedirectLimit):
		return "redirect_limit"
	case isUnsafeError(err):
		return "unsafe_url"
	default:
		return "network"
	}
}

func serviceLabel(result urlexpand.Result) string {
	if result.Service == "" {
		return "unknown"
	}
	return result.Service
}

func isUnsafeError(err error) bool {
	return errors.Is(err, safedialer.ErrUnsafeIP) ||
		errors.Is(err, safedialer.ErrUnsafePort) ||
		errors.Is(err, safedialer.ErrUnsafeNetwork)
}
