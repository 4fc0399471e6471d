package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/ewilliams-labs/moodlens/internal/core/domain"
	"github.com/ewilliams-labs/moodlens/internal/core/ports"
	"github.com/ewilliams-labs/moodlens/internal/metrics"
)

// Orchestrator coordinates the detect → recommend flow for one snapshot.
type Orchestrator struct {
	detector  ports.EmotionDetector
	playlists ports.PlaylistSource
	logger    *log.Logger
}

// NewOrchestrator constructs an Orchestrator.
func NewOrchestrator(detector ports.EmotionDetector, playlists ports.PlaylistSource, logger *log.Logger) *Orchestrator {
	if logger == nil {
		logger = log.Default()
	}
	return &Orchestrator{
		detector:  detector,
		playlists: playlists,
		logger:    logger.With("component", "orchestrator"),
	}
}

// Classification is the full outcome for one snapshot.
type Classification struct {
	Detection      domain.Detection
	Recommendation domain.Recommendation
}

// ClassifySnapshot runs detection on the decoded snapshot bytes and resolves
// a playlist for the detected emotion.
//
// Decode failures (ports.ErrImageDecode) and model failures
// (*ports.ModelError) propagate so the transport layer can map them to
// distinct outcomes. The recommendation step never fails; a fallback is
// reported inside the Recommendation.
func (o *Orchestrator) ClassifySnapshot(ctx context.Context, imageBytes []byte) (Classification, error) {
	detection, err := o.detector.Detect(ctx, imageBytes)
	if err != nil {
		var modelErr *ports.ModelError
		if errors.As(err, &modelErr) {
			metrics.ModelErrorsTotal.Inc()
			o.logger.Error("emotion model invocation failed", "err", modelErr.Err)
		}
		return Classification{}, fmt.Errorf("service: detect: %w", err)
	}

	metrics.DetectionsTotal.WithLabelValues(string(detection.Label)).Inc()

	rec := o.playlists.PlaylistForEmotion(ctx, detection.Label)
	return Classification{Detection: detection, Recommendation: rec}, nil
}
