package worker

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/ewilliams-labs/moodlens/internal/core/domain"
)

type countingSource struct {
	mu     sync.Mutex
	labels []domain.EmotionLabel
}

func (s *countingSource) PlaylistForEmotion(ctx context.Context, label domain.EmotionLabel) domain.Recommendation {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.labels = append(s.labels, label)
	return domain.Recommendation{Emotion: label, URL: "https://open.spotify.com/playlist/warm"}
}

func (s *countingSource) seen() map[domain.EmotionLabel]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[domain.EmotionLabel]int)
	for _, l := range s.labels {
		out[l]++
	}
	return out
}

func TestWarmAllResolvesEveryEmotion(t *testing.T) {
	src := &countingSource{}
	pool := NewPool(src, len(domain.Labels), nil)
	pool.Start(2)

	pool.WarmAll()
	pool.Stop()

	seen := src.seen()
	for _, label := range domain.Labels {
		if seen[label] != 1 {
			t.Errorf("emotion %s warmed %d times, want 1", label, seen[label])
		}
	}
}

func TestSubmitDropsWhenQueueFull(t *testing.T) {
	src := &countingSource{}
	pool := NewPool(src, 1, nil)
	// No workers started, so the queue never drains.

	pool.Submit(Job{Label: domain.EmotionHappy})
	done := make(chan struct{})
	go func() {
		pool.Submit(Job{Label: domain.EmotionSad})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Submit blocked on a full queue")
	}
}
