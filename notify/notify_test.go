package notify

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWebhookPostsContent(t *testing.T) {
	t.Parallel()

	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &got))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	w := NewWebhook(srv.URL)
	require.NoError(t, w.Send("closed Buy 100 DOGEUSDT"))
	assert.Equal(t, "closed Buy 100 DOGEUSDT", got["content"])
}

func TestWebhookReportsHTTPFailure(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	w := NewWebhook(srv.URL)
	assert.Error(t, w.Send("msg"))
}

func TestNopAndLog(t *testing.T) {
	t.Parallel()

	assert.NoError(t, Nop{}.Send("ignored"))
	assert.NoError(t, Log{}.Send("logged"))
}
