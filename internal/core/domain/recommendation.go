package domain

// Recommendation is a resolved playlist for an emotion. Fallback indicates the
// URL came from the curated table rather than a live lookup, and Reason carries
// the failure that forced the fallback.
type Recommendation struct {
	Emotion  EmotionLabel
	URL      string
	Fallback bool
	Reason   error
}

// GenreKeywords maps each emotion to search keywords, most specific first.
// The first keyword joins the emotion in the live search query.
var GenreKeywords = map[EmotionLabel][]string{
	EmotionHappy:    {"happy", "pop", "dance", "party"},
	EmotionSad:      {"sad", "chill", "acoustic", "melancholy"},
	EmotionAngry:    {"rock", "metal", "intense", "aggressive"},
	EmotionNeutral:  {"indie", "alternative", "ambient", "focus"},
	EmotionSurprise: {"electronic", "experimental", "upbeat", "energetic"},
	EmotionFear:     {"ambient", "soundtrack", "instrumental", "cinematic"},
	EmotionDisgust:  {"punk", "grunge", "heavy", "dark"},
}

// CuratedPlaylists is the always-available fallback table. It must hold an
// entry for every label in Labels; neutral doubles as the universal default.
var CuratedPlaylists = map[EmotionLabel]string{
	EmotionHappy:    "https://open.spotify.com/playlist/37i9dQZF1DXdPec7aLTmlC", // Happy Hits
	EmotionSad:      "https://open.spotify.com/playlist/37i9dQZF1DX7qK8ma5wgG1", // Sad Songs
	EmotionAngry:    "https://open.spotify.com/playlist/37i9dQZF1DX4eRPd9frC1m", // Rage Beats
	EmotionNeutral:  "https://open.spotify.com/playlist/37i9dQZF1DX4sWSpwq3LiO", // Peaceful Piano
	EmotionSurprise: "https://open.spotify.com/playlist/37i9dQZF1DX6GwdWRQMQpq", // Discover Weekly
	EmotionFear:     "https://open.spotify.com/playlist/37i9dQZF1DX6msyQisGtxK", // Cinematic Chillout
	EmotionDisgust:  "https://open.spotify.com/playlist/37i9dQZF1DX9wa6XirBPv8", // Dark & Stormy
}

// CuratedPlaylist returns the curated URL for label, falling back to the
// neutral entry for anything outside the enumeration.
func CuratedPlaylist(label EmotionLabel) string {
	if url, ok := CuratedPlaylists[label]; ok {
		return url
	}
	return CuratedPlaylists[EmotionNeutral]
}
