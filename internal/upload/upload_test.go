package upload

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUploadSendsMultipartForm(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "data:image/jpeg;base64,AAAA", r.FormValue("file"))
		assert.Equal(t, "crew_preset", r.FormValue("upload_preset"))

		fmt.Fprint(w, `{"secure_url":"https://img.example/u/1.jpg"}`)
	}))
	defer srv.Close()

	u := New(srv.URL, "crew_preset")
	url, err := u.Upload(context.Background(), "data:image/jpeg;base64,AAAA")
	require.NoError(t, err)
	assert.Equal(t, "https://img.example/u/1.jpg", url)
}

func TestUploadErrors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			"server error",
			func(w http.ResponseWriter, _ *http.Request) {
				http.Error(w, "invalid preset", http.StatusBadRequest)
			},
		},
		{
			"malformed body",
			func(w http.ResponseWriter, _ *http.Request) {
				fmt.Fprint(w, "not json")
			},
		},
		{
			"missing url",
			func(w http.ResponseWriter, _ *http.Request) {
				fmt.Fprint(w, `{"public_id":"abc"}`)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			u := New(srv.URL, "crew_preset")
			_, err := u.Upload(context.Background(), "payload")
			require.Error(t, err)
		})
	}
}

func TestUploadAllContinuesPastFailures(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		require.NoError(t, r.ParseMultipartForm(1<<20))
		if r.FormValue("file") == "bad" {
			http.Error(w, "rejected", http.StatusUnprocessableEntity)
			return
		}
		fmt.Fprintf(w, `{"secure_url":"https://img.example/u/%d.jpg"}`, calls)
	}))
	defer srv.Close()

	u := New(srv.URL, "crew_preset")
	urls, failed := u.UploadAll(context.Background(), []string{"ok1", "bad", "ok2"})

	assert.Equal(t, 1, failed)
	assert.Equal(t, []string{
		"https://img.example/u/1.jpg",
		"https://img.example/u/3.jpg",
	}, urls)
	assert.Equal(t, 3, calls)
}
