// Package domain holds the core types of the emotion classification flow.
package domain

// EmotionLabel is one of the fixed categorical facial-expression classes.
type EmotionLabel string

const (
	EmotionHappy    EmotionLabel = "happy"
	EmotionSad      EmotionLabel = "sad"
	EmotionAngry    EmotionLabel = "angry"
	EmotionNeutral  EmotionLabel = "neutral"
	EmotionSurprise EmotionLabel = "surprise"
	EmotionFear     EmotionLabel = "fear"
	EmotionDisgust  EmotionLabel = "disgust"
)

// Labels lists every recognized emotion label.
var Labels = []EmotionLabel{
	EmotionHappy,
	EmotionSad,
	EmotionAngry,
	EmotionNeutral,
	EmotionSurprise,
	EmotionFear,
	EmotionDisgust,
}

// Known reports whether l is a member of the recognized enumeration.
func (l EmotionLabel) Known() bool {
	switch l {
	case EmotionHappy, EmotionSad, EmotionAngry, EmotionNeutral,
		EmotionSurprise, EmotionFear, EmotionDisgust:
		return true
	}
	return false
}

// Normalize substitutes neutral for any label outside the enumeration.
func Normalize(l EmotionLabel) EmotionLabel {
	if l.Known() {
		return l
	}
	return EmotionNeutral
}

// Detection is the normalized output of one model invocation.
type Detection struct {
	Label      EmotionLabel
	Confidence float64
}

// ClampConfidence coerces an arbitrary score into [0,1].
// NaN and negative values become 0, values above 1 become 1.
func ClampConfidence(score float64) float64 {
	if score != score || score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}
