// Package fer adapts a facial-expression-recognition model served over HTTP.
// The model is a black box: it receives one JPEG frame and answers with a
// label and a score. The spooling, decoding, downscaling and output
// normalization around that call all live here.
package fer

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/goccy/go-json"

	"github.com/ewilliams-labs/moodlens/internal/core/domain"
	"github.com/ewilliams-labs/moodlens/internal/core/ports"
)

const defaultBaseURL = "http://localhost:8501"

// Client calls a local inference server for emotion classification.
// Construct once at startup and share across requests; it holds no
// per-request state.
type Client struct {
	baseURL    string
	httpClient *http.Client
	maxEdge    int
	spoolDir   string
	logger     *log.Logger
}

var _ ports.EmotionDetector = (*Client)(nil)

// Options tunes the adapter. Zero values get usable defaults.
type Options struct {
	BaseURL  string
	Timeout  time.Duration
	MaxEdge  int
	SpoolDir string
	Logger   *log.Logger
}

// NewClient constructs the adapter.
func NewClient(opts Options) *Client {
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	maxEdge := opts.MaxEdge
	if maxEdge <= 0 {
		maxEdge = 480
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		maxEdge:    maxEdge,
		spoolDir:   opts.SpoolDir,
		logger:     logger.With("component", "fer"),
	}
}

type detectRequest struct {
	Image string `json:"image"`
}

type detectResponse struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
	Error string  `json:"error,omitempty"`
}

// Detect classifies one snapshot. The raw bytes are spooled to a
// request-unique temp file for decoding and removed before returning on every
// path. An unreadable image yields ports.ErrImageDecode; a model failure
// yields *ports.ModelError; no detectable face yields {neutral, 0.0}.
func (c *Client) Detect(ctx context.Context, imageBytes []byte) (domain.Detection, error) {
	frame, err := prepareFrame(imageBytes, c.maxEdge, c.spoolDir)
	if err != nil {
		return domain.Detection{}, err
	}

	payload := detectRequest{Image: base64.StdEncoding.EncodeToString(frame)}
	body, err := json.Marshal(payload)
	if err != nil {
		return domain.Detection{}, &ports.ModelError{Err: fmt.Errorf("fer: marshal request: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/detect", bytes.NewReader(body))
	if err != nil {
		return domain.Detection{}, &ports.ModelError{Err: fmt.Errorf("fer: build request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.Detection{}, &ports.ModelError{Err: fmt.Errorf("fer: request failed: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return domain.Detection{}, &ports.ModelError{Err: fmt.Errorf("fer: unexpected status %d", resp.StatusCode)}
	}

	var parsed detectResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return domain.Detection{}, &ports.ModelError{Err: fmt.Errorf("fer: decode response: %w", err)}
	}
	if parsed.Error != "" {
		return domain.Detection{}, &ports.ModelError{Err: fmt.Errorf("fer: %s", parsed.Error)}
	}

	// Empty label means the model saw no face or rejected its own guess.
	if strings.TrimSpace(parsed.Label) == "" {
		return domain.Detection{Label: domain.EmotionNeutral, Confidence: 0.0}, nil
	}

	label := domain.Normalize(domain.EmotionLabel(strings.ToLower(parsed.Label)))
	return domain.Detection{
		Label:      label,
		Confidence: domain.ClampConfidence(parsed.Score),
	}, nil
}
