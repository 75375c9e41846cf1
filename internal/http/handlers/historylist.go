package handlers

import (
	"net/http"
	"strconv"

	"github.com/pualine/Ellah-art-studio/internal/history"
)

// HistoryList returns recent generation attempts. Responds 404 when no
// database is configured so the page can hide the panel.
func (a *App) HistoryList(w http.ResponseWriter, r *http.Request) {
	if !a.History.Enabled() {
		a.error(w, http.StatusNotFound, "not_found", "history is not enabled")
		return
	}
	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			limit = v
		}
	}
	entries, err := a.History.Recent(r.Context(), limit)
	if err != nil {
		a.Logger.Error().Err(err).Msg("handlers: history query failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to load history")
		return
	}
	if entries == nil {
		entries = []history.Entry{}
	}
	a.json(w, http.StatusOK, map[string]any{"items": entries})
}
