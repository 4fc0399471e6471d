package rest

import "net/http"

// ToggleProfiling handles POST /profiling with form field action=start|stop.
func (h *Handler) ToggleProfiling(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid form body")
		return
	}

	switch r.PostFormValue("action") {
	case "start":
		h.profiler.Start()
		writeJSON(w, http.StatusOK, map[string]string{"status": "profiling started"})
	case "stop":
		h.profiler.Stop()
		writeJSON(w, http.StatusOK, map[string]string{"status": "profiling stopped"})
	default:
		writeError(w, http.StatusBadRequest, "action must be start or stop")
	}
}

// GetProfiling handles GET /profiling: enabled state plus the latest stats.
func (h *Handler) GetProfiling(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.profiler.Snapshot())
}
