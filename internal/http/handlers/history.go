package handlers

import (
	"fmt"
	"net/http"
	"time"

	"imgprompt/internal/domain"
	"imgprompt/internal/history"
	"imgprompt/internal/middleware"
)

type historyResponse struct {
	Items []domain.HistoryEntry `json:"items"`
}

func (a *App) HistoryList(w http.ResponseWriter, r *http.Request) {
	items, err := a.History.List(r.Context(), middleware.ClientIDFromContext(r.Context()))
	if err != nil {
		a.log(r).Error().Err(err).Msg("history list failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to load history")
		return
	}
	if items == nil {
		items = []domain.HistoryEntry{}
	}
	a.json(w, http.StatusOK, historyResponse{Items: items})
}

func (a *App) HistoryClear(w http.ResponseWriter, r *http.Request) {
	if err := a.History.Clear(r.Context(), middleware.ClientIDFromContext(r.Context())); err != nil {
		a.log(r).Error().Err(err).Msg("history clear failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to clear history")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HistoryExport downloads the caller's history as a zip of text files.
func (a *App) HistoryExport(w http.ResponseWriter, r *http.Request) {
	items, err := a.History.List(r.Context(), middleware.ClientIDFromContext(r.Context()))
	if err != nil {
		a.log(r).Error().Err(err).Msg("history list failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to load history")
		return
	}
	if len(items) == 0 {
		a.error(w, http.StatusNotFound, "not_found", "history is empty")
		return
	}
	data, err := history.Export(items)
	if err != nil {
		a.log(r).Error().Err(err).Msg("history export failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to build archive")
		return
	}
	name := fmt.Sprintf("prompts-%s.zip", time.Now().UTC().Format("20060102-150405"))
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, name))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
