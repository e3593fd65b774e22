package detect

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPDetectorReducesPolygons(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]ocrEntry{
			{
				Polygon:    []Point{{X: 10, Y: 12}, {X: 100, Y: 10}, {X: 98, Y: 40}, {X: 12, Y: 42}},
				Text:       "HELLO",
				Confidence: 0.9,
			},
			{
				Polygon:    []Point{{X: 5, Y: 60}, {X: 50, Y: 60}, {X: 50, Y: 80}, {X: 5, Y: 80}},
				Text:       "WORLD",
				Confidence: 0.7,
			},
		})
	}))
	defer server.Close()

	detector := NewHTTPDetector(server.URL, 5*time.Second)
	fragments, err := detector.Detect(context.Background(), []byte("img"))
	require.NoError(t, err)
	require.Len(t, fragments, 2)

	// Detector-reported order is preserved; polygons collapse to AABBs.
	assert.Equal(t, "HELLO", fragments[0].Text)
	assert.Equal(t, Box{XMin: 10, YMin: 10, XMax: 100, YMax: 42}, fragments[0].Box)
	assert.InDelta(t, 0.9, fragments[0].Confidence, 1e-9)
	assert.Equal(t, "WORLD", fragments[1].Text)
	assert.Equal(t, Box{XMin: 5, YMin: 60, XMax: 50, YMax: 80}, fragments[1].Box)
}

func TestHTTPDetectorEmptyResult(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("[]"))
	}))
	defer server.Close()

	detector := NewHTTPDetector(server.URL, 5*time.Second)
	fragments, err := detector.Detect(context.Background(), []byte("img"))
	require.NoError(t, err)
	assert.Empty(t, fragments)
}

func TestHTTPDetectorFaultIsDetectionError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "engine down", http.StatusInternalServerError)
	}))
	defer server.Close()

	detector := NewHTTPDetector(server.URL, 5*time.Second)
	_, err := detector.Detect(context.Background(), []byte("img"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDetection))
}

func TestHTTPDetectorMalformedResponseIsDetectionError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer server.Close()

	detector := NewHTTPDetector(server.URL, 5*time.Second)
	_, err := detector.Detect(context.Background(), []byte("img"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDetection))
}
