package translate

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLibreTranslate(t *testing.T) {
	var calls atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		require.Equal(t, "/translate", r.URL.Path)

		var request libreRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&request))
		assert.Equal(t, "HELLO", request.Q)
		assert.Equal(t, "auto", request.Source)
		assert.Equal(t, "km", request.Target)
		assert.Equal(t, "text", request.Format)

		json.NewEncoder(w).Encode(libreResponse{TranslatedText: "សួស្តី"})
	}))
	defer server.Close()

	client := NewLibreClient(server.URL, "", "km", 5*time.Second)
	translated, err := client.Translate(context.Background(), "HELLO")
	require.NoError(t, err)
	assert.Equal(t, "សួស្តី", translated)
	assert.Equal(t, int64(1), calls.Load())
}

func TestLibreEmptyInputSkipsNetwork(t *testing.T) {
	var calls atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer server.Close()

	client := NewLibreClient(server.URL, "", "km", 5*time.Second)
	for _, input := range []string{"", "   ", "\n\t "} {
		translated, err := client.Translate(context.Background(), input)
		require.NoError(t, err)
		assert.Equal(t, "", translated)
	}
	assert.Equal(t, int64(0), calls.Load(), "whitespace-only input must not reach the service")
}

func TestLibreRetriesTransientFailure(t *testing.T) {
	var calls atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			http.Error(w, "temporarily unavailable", http.StatusServiceUnavailable)
			return
		}
		json.NewEncoder(w).Encode(libreResponse{TranslatedText: "ok"})
	}))
	defer server.Close()

	client := NewLibreClient(server.URL, "", "km", 5*time.Second)
	client.backoffDuration = time.Millisecond

	translated, err := client.Translate(context.Background(), "HELLO")
	require.NoError(t, err)
	assert.Equal(t, "ok", translated)
	assert.Equal(t, int64(2), calls.Load())
}

func TestLibreNon2xxIsTranslationError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewLibreClient(server.URL, "", "km", 5*time.Second)
	client.backoffDuration = time.Millisecond

	_, err := client.Translate(context.Background(), "HELLO")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTranslation))
}

func TestLibreTrimsTrailingSlash(t *testing.T) {
	client := NewLibreClient("https://libretranslate.com/", "", "km", time.Second)
	assert.Equal(t, "https://libretranslate.com", client.url)
}
