package captcha

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestVerifier(t *testing.T, body string) *Verifier {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "s3cret", r.PostForm.Get("secret"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	v := NewVerifier("s3cret", 0.5, zerolog.Nop())
	v.verifyURL = srv.URL
	return v
}

func TestVerify(t *testing.T) {
	tests := []struct {
		name string
		body string
		want bool
	}{
		{"v3 con score suficiente", `{"success":true,"score":0.9}`, true},
		{"v3 con score bajo", `{"success":true,"score":0.1}`, false},
		{"v2 sin score", `{"success":true}`, true},
		{"rechazado", `{"success":false,"error-codes":["invalid-input-response"]}`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, err := newTestVerifier(t, tt.body).Verify(context.Background(), "tok", "10.0.0.1")
			require.NoError(t, err)
			assert.Equal(t, tt.want, ok)
		})
	}
}

func TestVerify_TokenVacio(t *testing.T) {
	ok, err := NewVerifier("s3cret", 0.5, zerolog.Nop()).Verify(context.Background(), "  ", "")
	require.NoError(t, err)
	assert.False(t, ok)
}
