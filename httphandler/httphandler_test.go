package httphandler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/urlexpand/urlexpand"
	"github.com/urlexpand/urlexpand/safedialer"
)

// stubExpander returns a canned result, avoiding any real resolution.
type stubExpander struct {
	result urlexpand.Result
	err    error
}

func (s stubExpander) Expand(ctx context.Context, url string) (urlexpand.Result, error) {
	return s.result, s.err
}

func doRequest(t *testing.T, expander urlexpand.Interface, target string) (*httptest.ResponseRecorder, ExpandResponse) {
	t.Helper()

	w := httptest.NewRecorder()
	r := httptest.NewRequest("GET", target, nil)
	New(expander).ServeHTTP(w, r)

	var body ExpandResponse
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	}
	return w, body
}

func TestMissingURLParam(t *testing.T) {
	t.Parallel()

	w, body := doRequest(t, stubExpander{}, "/expand")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Missing arg url", body.Error)
}

func TestSuccessfulExpansion(t *testing.T) {
	t.Parallel()

	expander := stubExpander{
		result: urlexpand.Result{
			ResolvedURL: "https://www.rust-lang.org/",
			Service:     "bit.ly",
		},
	}
	w, body := doRequest(t, expander, "/expand?url=https://bit.ly/3alqLKi")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.Equal(t, ExpandResponse{
		GivenURL:    "https://bit.ly/3alqLKi",
		ResolvedURL: "https://www.rust-lang.org/",
		Service:     "bit.ly",
	}, body)
}

func TestErrorMapping(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name      string
		err       error
		wantCode  int
		wantError string
	}{
		{
			name:      "invalid input",
			err:       fmt.Errorf("%w: \"https://example.com\"", urlexpand.ErrInvalidInput),
			wantCode:  http.StatusBadRequest,
			wantError: ErrInvalidURL.Error(),
		},
		{
			name:      "timeout",
			err:       fmt.Errorf("%w: deadline exceeded", urlexpand.ErrTimeout),
			wantCode:  http.StatusGatewayTimeout,
			wantError: ErrRequestTimeout.Error(),
		},
		{
			name:      "extraction failure",
			err:       fmt.Errorf("%w: no meta refresh target", urlexpand.ErrExtraction),
			wantCode:  http.StatusBadGateway,
			wantError: ErrExtraction.Error(),
		},
		{
			name:      "redirect limit",
			err:       fmt.Errorf("get: %w", urlexpand.ErrRedirectLimit),
			wantCode:  http.StatusBadGateway,
			wantError: ErrRedirectLimit.Error(),
		},
		{
			name:      "unsafe dial",
			err:       fmt.Errorf("dial: %w", safedialer.ErrUnsafeIP),
			wantCode:  http.StatusBadRequest,
			wantError: ErrUnsafeURL.Error(),
		},
		{
			name:      "anything else",
			err:       fmt.Errorf("connection refused"),
			wantCode:  http.StatusBadGateway,
			wantError: ErrExpandError.Error(),
		},
	}
	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			expander := stubExpander{
				result: urlexpand.Result{Service: "cutt.us"},
				err:    tc.err,
			}
			w, body := doRequest(t, expander, "/expand?url=https://cutt.us/gone")

			assert.Equal(t, tc.wantCode, w.Code)
			assert.Equal(t, tc.wantError, body.Error)
			assert.Equal(t, "https://cutt.us/gone", body.GivenURL)
			assert.Empty(t, body.ResolvedURL, "upstream error details must not leak")
		})
	}
}

func TestClientClosedConnection(t *testing.T) {
	t.Parallel()

	expander := stubExpander{err: fmt.Errorf("expand: %w", context.Canceled)}
	w, _ := doRequest(t, expander, "/expand?url=https://bit.ly/x")

	assert.Equal(t, 499, w.Code)
	assert.Zero(t, w.Body.Len(), "nobody is listening for a body")
}
