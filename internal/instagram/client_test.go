package instagram

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client := NewClient(Config{
		AppID:     "app-id",
		AppSecret: "app-secret",
		BaseURL:   srv.URL,
	})
	t.Cleanup(client.Close)
	return client
}

func writeJSON(t *testing.T, w http.ResponseWriter, status int, body string) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err := w.Write([]byte(body))
	require.NoError(t, err)
}

func TestClientDecodesErrorEnvelope(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusBadRequest, `{"error":{
			"message": "Invalid OAuth access token.",
			"type": "OAuthException",
			"code": 190,
			"error_subcode": 460,
			"is_transient": false,
			"fbtrace_id": "AbCdEf"
		}}`)
	}))

	_, err := client.GetAccountInfo(context.Background(), "acct_1", "bad-token")
	require.Error(t, err)

	var ierr *Error
	require.ErrorAs(t, err, &ierr)
	assert.Equal(t, KindOAuth, ierr.Kind)
	assert.Equal(t, 190, ierr.Code)
	assert.Equal(t, 460, ierr.Subcode)
	assert.Equal(t, "AbCdEf", ierr.Trace)
	assert.Contains(t, ierr.Error(), "Invalid OAuth access token.")
}

func TestClientTransientFlagOverridesKind(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusInternalServerError, `{"error":{
			"message": "An unknown error occurred",
			"type": "OAuthException",
			"code": 2,
			"is_transient": true
		}}`)
	}))

	_, err := client.GetAccountInfo(context.Background(), "acct_1", "token")
	require.Error(t, err)

	kind, ok := KindOf(err)
	require.True(t, ok)
	assert.Equal(t, KindTransient, kind)
}

func TestClientNetworkErrorIsTransient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	client := NewClient(Config{AppID: "app-id", AppSecret: "app-secret", BaseURL: srv.URL})
	defer client.Close()

	_, err := client.GetAccountInfo(context.Background(), "acct_1", "token")
	require.Error(t, err)
	assert.True(t, IsKind(err, KindTransient))

	var ierr *Error
	require.ErrorAs(t, err, &ierr)
	assert.True(t, ierr.Transient)
}

func TestClientNonOKWithoutEnvelope(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("bad gateway"))
	}))

	_, err := client.GetAccountInfo(context.Background(), "acct_1", "token")
	require.Error(t, err)

	var ierr *Error
	require.ErrorAs(t, err, &ierr)
	assert.Equal(t, http.StatusBadGateway, ierr.Code)
	assert.Equal(t, "bad gateway", ierr.Message)
}
