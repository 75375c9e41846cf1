package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/pualine/Ellah-art-studio/internal/history"
	"github.com/pualine/Ellah-art-studio/internal/infra"
	"github.com/pualine/Ellah-art-studio/internal/storage"
	"github.com/pualine/Ellah-art-studio/internal/studio"
)

// App is the handler container. All collaborators are injected; handlers
// hold no package-level state.
type App struct {
	Config   *infra.Config
	Logger   infra.Logger
	Manager  *studio.Manager
	Sessions *studio.Store
	History  *history.Recorder
	Files    *storage.FileStore
}

func NewApp(cfg *infra.Config, logger infra.Logger, manager *studio.Manager, sessions *studio.Store, recorder *history.Recorder, files *storage.FileStore) *App {
	return &App{
		Config:   cfg,
		Logger:   logger,
		Manager:  manager,
		Sessions: sessions,
		History:  recorder,
		Files:    files,
	}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (a *App) error(w http.ResponseWriter, status int, code, message string) {
	a.json(w, status, map[string]errorBody{"error": {Code: code, Message: message}})
}
