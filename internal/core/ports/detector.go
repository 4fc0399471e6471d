package ports

import (
	"context"
	"errors"
	"fmt"

	"github.com/ewilliams-labs/moodlens/internal/core/domain"
)

// ErrImageDecode indicates the snapshot bytes could not be decoded as an image.
// Distinct from "no face found", which is not an error at all.
var ErrImageDecode = errors.New("image decode failed")

// ModelError wraps an unexpected failure from the detection model itself,
// after the image decoded successfully.
type ModelError struct {
	Err error
}

func (e *ModelError) Error() string {
	if e.Err == nil {
		return "emotion model invocation failed"
	}
	return fmt.Sprintf("emotion model invocation failed: %v", e.Err)
}

func (e *ModelError) Unwrap() error { return e.Err }

// EmotionDetector classifies a single decoded snapshot.
//
// Implementations return ErrImageDecode for unreadable input, a *ModelError
// for model failures, and {neutral, 0.0} when no face or emotion is found.
type EmotionDetector interface {
	Detect(ctx context.Context, imageBytes []byte) (domain.Detection, error)
}
