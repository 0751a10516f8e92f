package suggest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSuggester(t *testing.T, handler http.HandlerFunc) *Suggester {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	s := New("test-key", "test-model", 256)
	s.apiURL = srv.URL
	return s
}

func messagesResponse(text string) []byte {
	resp := map[string]any{
		"content": []map[string]any{
			{"type": "text", "text": text},
		},
	}
	b, _ := json.Marshal(resp)
	return b
}

func TestSuggestParsesItems(t *testing.T) {
	var gotReq apiRequest
	s := newTestSuggester(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		assert.Equal(t, apiVersion, r.Header.Get("anthropic-version"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

		_, _ = w.Write(messagesResponse(`{"items":["Wipe counters","Restock napkins"]}`))
	})

	items := s.Suggest(context.Background(), "Front Counter")

	assert.Equal(t, []string{"Wipe counters", "Restock napkins"}, items)
	assert.Equal(t, "test-model", gotReq.Model)
	assert.Equal(t, 256, gotReq.MaxTokens)
	require.Len(t, gotReq.Messages, 1)
	assert.Contains(t, gotReq.Messages[0].Content, "Front Counter")
}

func TestSuggestWithoutKeyReturnsPlaceholder(t *testing.T) {
	s := New("", "", 0)

	items := s.Suggest(context.Background(), "Lobby")
	assert.Equal(t, placeholder, items)
}

func TestSuggestFallsBackOnFailure(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			"api error status",
			func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusTooManyRequests)
				_, _ = w.Write([]byte(`{"error":{"message":"rate limited"}}`))
			},
		},
		{
			"non-json response text",
			func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write(messagesResponse("Sure! Here are some ideas:"))
			},
		},
		{
			"empty item list",
			func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write(messagesResponse(`{"items":[]}`))
			},
		},
		{
			"no text block",
			func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(`{"content":[]}`))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestSuggester(t, tt.handler)
			assert.Equal(t, placeholder, s.Suggest(context.Background(), "Lobby"))
		})
	}
}

func TestSuggestFallsBackOnNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	s := New("test-key", "", 0)
	s.apiURL = srv.URL

	assert.Equal(t, placeholder, s.Suggest(context.Background(), "Lobby"))
}
