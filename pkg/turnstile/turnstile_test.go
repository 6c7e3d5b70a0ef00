package turnstile

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	appconfig "github.com/ZinoM21/any-cv-api/config"
	"github.com/ZinoM21/any-cv-api/pkg/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestVerifier(url, secret string) *Verifier {
	return NewVerifier(&appconfig.Config{
		TurnstileURL:    url,
		TurnstileSecret: secret,
	})
}

func TestVerify_DisabledWithoutSecret(t *testing.T) {
	v := newTestVerifier("http://unused", "")
	assert.NoError(t, v.Verify(context.Background(), "", "1.2.3.4"))
}

func TestVerify_EmptyToken(t *testing.T) {
	v := newTestVerifier("http://unused", "secret")

	err := v.Verify(context.Background(), "", "1.2.3.4")
	assert.Equal(t, http.StatusBadRequest, apperror.CodeOf(err))
}

func TestVerify_Success(t *testing.T) {
	var gotSecret, gotResponse, gotRemoteIP string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotSecret = r.Form.Get("secret")
		gotResponse = r.Form.Get("response")
		gotRemoteIP = r.Form.Get("remoteip")
		_, _ = w.Write([]byte(`{"success": true}`))
	}))
	defer server.Close()

	v := newTestVerifier(server.URL, "secret")

	err := v.Verify(context.Background(), "token-123", "1.2.3.4")

	assert.NoError(t, err)
	assert.Equal(t, "secret", gotSecret)
	assert.Equal(t, "token-123", gotResponse)
	assert.Equal(t, "1.2.3.4", gotRemoteIP)
}

func TestVerify_Rejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success": false, "error-codes": ["invalid-input-response"]}`))
	}))
	defer server.Close()

	v := newTestVerifier(server.URL, "secret")

	err := v.Verify(context.Background(), "bad-token", "1.2.3.4")
	assert.Equal(t, http.StatusForbidden, apperror.CodeOf(err))
}

func TestVerify_ServiceDownFailsClosed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	v := newTestVerifier(server.URL, "secret")

	err := v.Verify(context.Background(), "token", "1.2.3.4")
	assert.Equal(t, http.StatusServiceUnavailable, apperror.CodeOf(err))
}
