package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/pualine/Ellah-art-studio/internal/history"
	"github.com/pualine/Ellah-art-studio/internal/middleware"
	"github.com/pualine/Ellah-art-studio/internal/studio"
	"github.com/pualine/Ellah-art-studio/pkg/zip"
)

// resultFilename is the fixed suggested name for downloaded results.
const resultFilename = "ellah-art-studio-result.png"

type generateRequest struct {
	// pointer so an absent field keeps the session prompt while an
	// explicitly empty one blanks it
	Prompt *string `json:"prompt"`
}

// Generate runs one generation attempt and returns the settled session
// snapshot. The attempt is recorded in the history log and, when retention
// is configured, the generated bytes are kept on disk.
func (a *App) Generate(w http.ResponseWriter, r *http.Request) {
	sess, ok := a.session(w, r)
	if !ok {
		return
	}

	var req generateRequest
	if r.Body != nil {
		// an empty body keeps the session's current prompt
		_ = json.NewDecoder(r.Body).Decode(&req)
	}
	if req.Prompt != nil {
		a.Manager.SetPrompt(sess, *req.Prompt)
	}

	locale := middleware.LocaleFromContext(r.Context())
	requestID := middleware.RequestIDFromContext(r.Context())
	snap := a.Manager.Generate(r.Context(), sess, locale, requestID)

	a.recordAttempt(r, sess, requestID, snap)

	a.json(w, http.StatusOK, snap)
}

func (a *App) recordAttempt(r *http.Request, sess *studio.Session, requestID string, snap studio.Snapshot) {
	entry := history.Entry{
		SessionID: sess.ID(),
		RequestID: requestID,
		Prompt:    snap.Prompt,
	}
	switch {
	case snap.Stage == "complete":
		entry.Status = history.StatusSucceeded
	case snap.Error != "":
		entry.Status = history.StatusFailed
		entry.Error = snap.Error
	default:
		// superseded mid-flight; nothing settled to record
		return
	}
	if entry.Status == history.StatusSucceeded {
		if result := sess.Result(); result != nil {
			entry.MIME = result.MIME
			entry.Bytes = int64(len(result.Data))
			if a.Files.Enabled() {
				key, err := a.Files.SaveResult(r.Context(), sess.ID(), requestID, result.Data, result.MIME)
				if err != nil {
					a.Logger.Warn().Err(err).Str("session_id", sess.ID()).Msg("handlers: result retention failed")
				} else {
					entry.StorageKey = key
				}
			}
		}
	}
	a.History.Record(r.Context(), entry)
}

// DownloadResult serves the generated image with the fixed suggested name.
func (a *App) DownloadResult(w http.ResponseWriter, r *http.Request) {
	sess, ok := a.session(w, r)
	if !ok {
		return
	}
	result := sess.Result()
	if result == nil {
		a.error(w, http.StatusNotFound, "not_found", "no generated image")
		return
	}
	w.Header().Set("Content-Type", result.MIME)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", resultFilename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(result.Data)
}

// ExportSession bundles the source image, the result and the prompt into one
// downloadable archive.
func (a *App) ExportSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := a.session(w, r)
	if !ok {
		return
	}

	var assets []zip.Asset
	if src := sess.Source(); src != nil {
		name := src.Filename
		if name == "" {
			name = "source"
		}
		assets = append(assets, zip.Asset{Filename: "source-" + name, MIME: src.MIME, Data: src.Data})
	}
	if result := sess.Result(); result != nil {
		assets = append(assets, zip.Asset{Filename: resultFilename, MIME: result.MIME, Data: result.Data})
	}
	if len(assets) == 0 {
		a.error(w, http.StatusNotFound, "not_found", "nothing to export")
		return
	}

	archive, err := zip.ArchiveSession(sess.Prompt(), assets)
	if err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "failed to build archive")
		return
	}
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=session-%s.zip", sess.ID()))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(archive)
}
