package ports

// Credentials is a music-service client id/secret pair.
type Credentials struct {
	ClientID     string
	ClientSecret string
}

// Present reports whether both fields are set.
func (c Credentials) Present() bool {
	return c.ClientID != "" && c.ClientSecret != ""
}

// CredentialStore persists Credentials across process restarts.
//
// Load treats a missing file or missing keys as absent credentials, never as
// an error. Save merges into the existing file, preserving unrelated keys, and
// its error is surfaced to the caller.
type CredentialStore interface {
	Load() (Credentials, error)
	Save(Credentials) error
}
