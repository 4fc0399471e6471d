package ports

import (
	"context"

	"github.com/ewilliams-labs/moodlens/internal/core/domain"
)

// PlaylistSource resolves an emotion label to a playlist recommendation.
//
// PlaylistForEmotion never fails from the caller's point of view: auth
// failures, network errors, malformed responses and empty result sets all
// resolve to a curated URL with Fallback set and Reason carrying the cause.
type PlaylistSource interface {
	PlaylistForEmotion(ctx context.Context, label domain.EmotionLabel) domain.Recommendation
}
