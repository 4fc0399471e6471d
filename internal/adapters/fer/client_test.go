package fer

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"

	"github.com/goccy/go-json"

	"github.com/ewilliams-labs/moodlens/internal/core/domain"
	"github.com/ewilliams-labs/moodlens/internal/core/ports"
)

// pngBytes renders a solid image of the given size.
func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: 180, B: 120, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func modelServer(t *testing.T, calls *int32, resp detectResponse, status int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(calls, 1)
		if r.URL.Path != "/detect" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var req detectRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("bad request body: %v", err)
		}
		if _, err := base64.StdEncoding.DecodeString(req.Image); err != nil {
			t.Errorf("image field is not base64: %v", err)
		}
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(resp)
	}))
}

func TestDetectHappyPath(t *testing.T) {
	var calls int32
	srv := modelServer(t, &calls, detectResponse{Label: "happy", Score: 0.87}, http.StatusOK)
	defer srv.Close()

	c := NewClient(Options{BaseURL: srv.URL, SpoolDir: t.TempDir()})
	got, err := c.Detect(context.Background(), pngBytes(t, 64, 64))
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if got.Label != domain.EmotionHappy || got.Confidence != 0.87 {
		t.Fatalf("Detect = %+v, want happy/0.87", got)
	}
	if calls != 1 {
		t.Fatalf("model invoked %d times, want 1", calls)
	}
}

func TestDetectNoFaceYieldsNeutral(t *testing.T) {
	var calls int32
	srv := modelServer(t, &calls, detectResponse{Label: "", Score: 0}, http.StatusOK)
	defer srv.Close()

	c := NewClient(Options{BaseURL: srv.URL, SpoolDir: t.TempDir()})
	got, err := c.Detect(context.Background(), pngBytes(t, 32, 32))
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if got.Label != domain.EmotionNeutral || got.Confidence != 0.0 {
		t.Fatalf("Detect = %+v, want neutral/0.0", got)
	}
}

func TestDetectUndecodableImage(t *testing.T) {
	var calls int32
	srv := modelServer(t, &calls, detectResponse{}, http.StatusOK)
	defer srv.Close()

	c := NewClient(Options{BaseURL: srv.URL, SpoolDir: t.TempDir()})
	_, err := c.Detect(context.Background(), []byte("definitely not an image"))
	if !errors.Is(err, ports.ErrImageDecode) {
		t.Fatalf("err = %v, want ErrImageDecode", err)
	}
	if calls != 0 {
		t.Fatalf("model invoked %d times on undecodable input, want 0", calls)
	}
}

func TestDetectModelFailure(t *testing.T) {
	var calls int32
	srv := modelServer(t, &calls, detectResponse{}, http.StatusInternalServerError)
	defer srv.Close()

	c := NewClient(Options{BaseURL: srv.URL, SpoolDir: t.TempDir()})
	_, err := c.Detect(context.Background(), pngBytes(t, 32, 32))

	var modelErr *ports.ModelError
	if !errors.As(err, &modelErr) {
		t.Fatalf("err = %v, want *ports.ModelError", err)
	}
	if errors.Is(err, ports.ErrImageDecode) {
		t.Fatal("model failure must not look like a decode failure")
	}
}

func TestDetectModelErrorField(t *testing.T) {
	var calls int32
	srv := modelServer(t, &calls, detectResponse{Error: "weights not loaded"}, http.StatusOK)
	defer srv.Close()

	c := NewClient(Options{BaseURL: srv.URL, SpoolDir: t.TempDir()})
	_, err := c.Detect(context.Background(), pngBytes(t, 32, 32))

	var modelErr *ports.ModelError
	if !errors.As(err, &modelErr) {
		t.Fatalf("err = %v, want *ports.ModelError", err)
	}
}

func TestDetectClampsConfidence(t *testing.T) {
	tests := []struct {
		name  string
		score float64
		want  float64
	}{
		{"above one", 1.7, 1.0},
		{"negative", -0.3, 0.0},
		{"in range", 0.5, 0.5},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var calls int32
			srv := modelServer(t, &calls, detectResponse{Label: "sad", Score: tc.score}, http.StatusOK)
			defer srv.Close()

			c := NewClient(Options{BaseURL: srv.URL, SpoolDir: t.TempDir()})
			got, err := c.Detect(context.Background(), pngBytes(t, 16, 16))
			if err != nil {
				t.Fatalf("Detect failed: %v", err)
			}
			if got.Confidence != tc.want {
				t.Fatalf("Confidence = %v, want %v", got.Confidence, tc.want)
			}
		})
	}
}

func TestDetectUnknownLabelNormalized(t *testing.T) {
	var calls int32
	srv := modelServer(t, &calls, detectResponse{Label: "grimace", Score: 0.9}, http.StatusOK)
	defer srv.Close()

	c := NewClient(Options{BaseURL: srv.URL, SpoolDir: t.TempDir()})
	got, err := c.Detect(context.Background(), pngBytes(t, 16, 16))
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if got.Label != domain.EmotionNeutral {
		t.Fatalf("Label = %q, want neutral", got.Label)
	}
}

func TestSpoolFileRemoved(t *testing.T) {
	spool := t.TempDir()

	var calls int32
	srv := modelServer(t, &calls, detectResponse{Label: "happy", Score: 0.5}, http.StatusOK)
	defer srv.Close()

	c := NewClient(Options{BaseURL: srv.URL, SpoolDir: spool})

	if _, err := c.Detect(context.Background(), pngBytes(t, 16, 16)); err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	// Failure path must clean up too.
	c.Detect(context.Background(), []byte("garbage"))

	entries, err := os.ReadDir(spool)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Fatalf("spool dir not empty after requests: %d entries", len(entries))
	}
}

func TestDownscale(t *testing.T) {
	tests := []struct {
		name         string
		w, h         int
		maxEdge      int
		wantW, wantH int
	}{
		{"wide image shrinks", 1000, 500, 480, 480, 240},
		{"tall image shrinks", 300, 600, 480, 240, 480},
		{"within bounds unchanged", 320, 240, 480, 320, 240},
		{"exact edge unchanged", 480, 480, 480, 480, 480},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			src := image.NewRGBA(image.Rect(0, 0, tc.w, tc.h))
			got := downscale(src, tc.maxEdge)
			b := got.Bounds()
			if b.Dx() != tc.wantW || b.Dy() != tc.wantH {
				t.Fatalf("downscale = %dx%d, want %dx%d", b.Dx(), b.Dy(), tc.wantW, tc.wantH)
			}
		})
	}
}
