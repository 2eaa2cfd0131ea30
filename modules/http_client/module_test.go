package http_client

import (
	"context"
	"image/color"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/mediagrid/internal/artifact"
)

func pngBytes(t *testing.T) []byte {
	t.Helper()
	a, err := artifact.Encode(imaging.New(3, 2, color.White), "png", 0)
	require.NoError(t, err)
	return a.Data
}

func TestGenerate_Downloads(t *testing.T) {
	// --- Arrange ---
	body := pngBytes(t)
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(body)
	}))
	defer srv.Close()
	m := &Module{}
	defer m.Close()

	// --- Act ---
	a, err := m.Generate(context.Background(), map[string]any{
		"url":     srv.URL + "/logo.png",
		"headers": map[string]any{"Authorization": "Bearer t"},
	})

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, "png", a.Format)
	assert.Equal(t, 3, a.Width)
	assert.Equal(t, 2, a.Height)
	assert.Equal(t, body, a.Data)
	assert.Equal(t, "Bearer t", gotAuth)
}

func TestGenerate_Errors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/missing":
			http.NotFound(w, r)
		case "/text":
			_, _ = w.Write([]byte("not an image"))
		default:
			_, _ = w.Write(make([]byte, 64))
		}
	}))
	defer srv.Close()

	testCases := []struct {
		name    string
		m       *Module
		params  map[string]any
		wantErr string
	}{
		{name: "missing url", m: &Module{}, params: nil, wantErr: `missing required param "url"`},
		{name: "bad scheme", m: &Module{}, params: map[string]any{"url": "ftp://x/y.png"}, wantErr: "must use http or https"},
		{name: "not found", m: &Module{}, params: map[string]any{"url": srv.URL + "/missing"}, wantErr: "unexpected status 404"},
		{name: "not an image", m: &Module{}, params: map[string]any{"url": srv.URL + "/text"}, wantErr: "read image header"},
		{name: "too large", m: &Module{MaxBytes: 16}, params: map[string]any{"url": srv.URL + "/big"}, wantErr: "exceeds 16 bytes"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := tc.m.Generate(context.Background(), tc.params)
			assert.ErrorContains(t, err, tc.wantErr)
		})
	}
}
