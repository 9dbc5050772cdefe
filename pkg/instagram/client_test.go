package instagram

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"igmirror/pkg/errors"
	"igmirror/pkg/retry"
)

func newTestClient(attempts int) *Client {
	cfg := &retry.Config{
		MaxAttempts: attempts,
		Backoff:     &retry.ConstantBackoff{Delay: 0},
		RetryIf:     retry.DefaultRetryIf,
		Context:     context.Background(),
	}
	return NewClient(5*time.Second, cfg, nil)
}

func TestGetBodySendsConfiguredHeaders(t *testing.T) {
	var gotAppID, gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAppID = r.Header.Get("X-IG-App-ID")
		gotUA = r.Header.Get("User-Agent")
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	client := newTestClient(1)
	body, err := client.GetBody(context.Background(), server.URL)

	require.NoError(t, err)
	assert.Equal(t, "ok", string(body))
	assert.Equal(t, WebAppID, gotAppID)
	assert.Contains(t, gotUA, "Mozilla/5.0")
}

func TestGetBodyStatusMapping(t *testing.T) {
	cases := []struct {
		status   int
		wantType errors.ErrorType
	}{
		{http.StatusUnauthorized, errors.ErrorTypeAuth},
		{http.StatusForbidden, errors.ErrorTypeAuth},
		{http.StatusNotFound, errors.ErrorTypeNotFound},
		{http.StatusTooManyRequests, errors.ErrorTypeRateLimit},
		{http.StatusInternalServerError, errors.ErrorTypeTransport},
		{http.StatusTeapot, errors.ErrorTypeUnknown},
	}

	for _, tc := range cases {
		t.Run(http.StatusText(tc.status), func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
			}))
			defer server.Close()

			_, err := newTestClient(1).GetBody(context.Background(), server.URL)

			require.Error(t, err)
			assert.Equal(t, tc.wantType, errors.TypeOf(err))
		})
	}
}

func TestGetBodyRetriesTransientFailures(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("recovered"))
	}))
	defer server.Close()

	body, err := newTestClient(3).GetBody(context.Background(), server.URL)

	require.NoError(t, err)
	assert.Equal(t, "recovered", string(body))
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestGetBodyDoesNotRetryTerminalFailures(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	_, err := newTestClient(3).GetBody(context.Background(), server.URL)

	require.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "a 404 will not change on retry")
}

func TestGetJSONDecodesPayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data": {"user": {"id": "42"}}}`))
	}))
	defer server.Close()

	var env envelope
	err := newTestClient(1).GetJSON(context.Background(), server.URL, &env)

	require.NoError(t, err)
	assert.Equal(t, "42", env.userID())
}

func TestGetJSONMalformedBodyIsSchemaMismatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>not json</html>"))
	}))
	defer server.Close()

	var env envelope
	err := newTestClient(1).GetJSON(context.Background(), server.URL, &env)

	require.Error(t, err)
	assert.Equal(t, errors.ErrorTypeSchemaMismatch, errors.TypeOf(err))
}

func TestSetHeaderOverridesDefault(t *testing.T) {
	var gotCookie string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotCookie = r.Header.Get("Cookie")
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	client := newTestClient(1)
	client.SetHeader("Cookie", "sessionid=abc123")
	_, err := client.GetBody(context.Background(), server.URL)

	require.NoError(t, err)
	assert.Equal(t, "sessionid=abc123", gotCookie)
}
