package spotify

// Wire types for the subset of the search response this client reads.
// https://developer.spotify.com/documentation/web-api/reference/search

type externalURLs struct {
	Spotify string `json:"spotify"`
}

type playlistItem struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	ExternalURLs externalURLs `json:"external_urls"`
}

type playlistPage struct {
	Items []playlistItem `json:"items"`
	Total int            `json:"total"`
}

type searchResponse struct {
	Playlists playlistPage `json:"playlists"`
}
