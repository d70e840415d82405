package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/plantuml/svg/SyfFKj2rKt3CoKnELR1Io4ZDoSa70000", r.URL.Path)
		w.Header().Set("Content-Type", "image/svg+xml")
		_, _ = w.Write([]byte("<svg/>"))
	}))
	defer srv.Close()

	img, err := NewClient(0).Fetch(context.Background(), srv.URL+"/plantuml/svg/SyfFKj2rKt3CoKnELR1Io4ZDoSa70000")
	require.NoError(t, err)
	assert.Equal(t, "image/svg+xml", img.ContentType)
	assert.Equal(t, "<svg/>", string(img.Data))
}

func TestFetchRetries(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte("png"))
	}))
	defer srv.Close()

	img, err := NewClient(2).Fetch(context.Background(), srv.URL+"/png/x")
	require.NoError(t, err)
	assert.Equal(t, "png", string(img.Data))
	assert.EqualValues(t, 2, atomic.LoadInt32(&calls))
}

func TestFetchStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	_, err := NewClient(3).Fetch(context.Background(), srv.URL+"/svg/x")
	assert.EqualError(t, err, "plantuml server returned an error: 400 Bad Request")
}

func TestFetchCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewClient(0).Fetch(ctx, "http://127.0.0.1:1/svg/x")
	assert.ErrorIs(t, err, context.Canceled)
}
