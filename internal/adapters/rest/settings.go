package rest

import (
	"net/http"

	"github.com/ewilliams-labs/moodlens/internal/core/ports"
)

type settingsResponse struct {
	ClientIDSet     bool   `json:"client_id_set"`
	ClientSecretSet bool   `json:"client_secret_set"`
	ClientID        string `json:"client_id,omitempty"`
}

// GetSettings handles GET /settings: credential presence, id masked.
func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	creds, err := h.store.Load()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load settings")
		return
	}
	writeJSON(w, http.StatusOK, settingsResponse{
		ClientIDSet:     creds.ClientID != "",
		ClientSecretSet: creds.ClientSecret != "",
		ClientID:        maskID(creds.ClientID),
	})
}

// UpdateSettings handles POST /settings. It persists the credential pair,
// hands it to the recommendation client and re-authenticates. A persistence
// failure is a failure of the whole operation; an authentication failure is
// not, since the client degrades to curated playlists on its own.
func (h *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid form body")
		return
	}

	creds := ports.Credentials{
		ClientID:     r.PostFormValue("client_id"),
		ClientSecret: r.PostFormValue("client_secret"),
	}
	if !creds.Present() {
		writeError(w, http.StatusBadRequest, "client_id and client_secret are required")
		return
	}

	if err := h.store.Save(creds); err != nil {
		h.logger.Error("failed to persist credentials", "err", err)
		writeError(w, http.StatusInternalServerError, "failed to persist credentials")
		return
	}

	h.sink.SetCredentials(creds)
	if err := h.sink.Authenticate(r.Context()); err != nil {
		h.logger.Warn("authentication with new credentials failed", "err", err)
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "credentials updated"})
}

// maskID keeps the first four characters of an identifier for display.
func maskID(id string) string {
	if id == "" {
		return ""
	}
	if len(id) <= 4 {
		return "****"
	}
	return id[:4] + "****"
}
