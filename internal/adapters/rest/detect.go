package rest

import (
	"encoding/base64"
	"errors"
	"net/http"
	"strings"

	"github.com/goccy/go-json"

	"github.com/ewilliams-labs/moodlens/internal/core/ports"
)

const fallbackNotice = "could not load dynamic playlist, using fallback"

type detectRequest struct {
	Image string `json:"image"`
}

type detectResponse struct {
	Emotion      string  `json:"emotion"`
	Confidence   float64 `json:"confidence"`
	Playlist     string  `json:"playlist"`
	PlaylistType string  `json:"playlist_type"`
	Error        string  `json:"error,omitempty"`
}

// DetectEmotion handles POST /detect_emotion. The body carries one webcam
// snapshot as a data URL or bare base64 string. Bad input maps to 400,
// a model failure to 500; the recommendation step cannot fail.
func (h *Handler) DetectEmotion(w http.ResponseWriter, r *http.Request) {
	if !isJSONContentType(r) {
		writeError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
		return
	}

	var req detectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Image) == "" {
		writeError(w, http.StatusBadRequest, "image is required")
		return
	}

	raw, err := decodeSnapshotPayload(req.Image)
	if err != nil {
		writeError(w, http.StatusBadRequest, "unreadable image payload")
		return
	}

	result, err := h.svc.ClassifySnapshot(r.Context(), raw)
	if err != nil {
		if errors.Is(err, ports.ErrImageDecode) {
			writeError(w, http.StatusBadRequest, "failed to load image")
			return
		}
		h.logger.Error("snapshot classification failed", "err", err)
		writeError(w, http.StatusInternalServerError, "emotion detection failed")
		return
	}

	resp := detectResponse{
		Emotion:      string(result.Detection.Label),
		Confidence:   result.Detection.Confidence,
		Playlist:     result.Recommendation.URL,
		PlaylistType: "direct_link",
	}
	if result.Recommendation.Fallback {
		resp.Error = fallbackNotice
	}
	writeJSON(w, http.StatusOK, resp)
}

// decodeSnapshotPayload strips an optional data-URL prefix
// ("data:image/jpeg;base64,...") and decodes the base64 remainder.
func decodeSnapshotPayload(payload string) ([]byte, error) {
	if idx := strings.IndexByte(payload, ','); idx >= 0 {
		payload = payload[idx+1:]
	}
	return base64.StdEncoding.DecodeString(payload)
}
