package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/pualine/Ellah-art-studio/internal/middleware"
	"github.com/pualine/Ellah-art-studio/internal/providers/image"
	"github.com/pualine/Ellah-art-studio/internal/studio"
)

func (a *App) CreateSession(w http.ResponseWriter, r *http.Request) {
	sess := a.Manager.NewSession()
	a.Sessions.Put(sess)
	a.json(w, http.StatusCreated, sess.Snapshot())
}

func (a *App) GetSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := a.session(w, r)
	if !ok {
		return
	}
	a.json(w, http.StatusOK, sess.Snapshot())
}

type uploadRequest struct {
	DataURI  string `json:"data_uri"`
	Data     string `json:"data"`
	MIME     string `json:"mime"`
	Filename string `json:"filename"`
}

// UploadImage installs a new source image from either a multipart form or a
// JSON body carrying a data URI. A new selection always clears the prior
// result and error.
func (a *App) UploadImage(w http.ResponseWriter, r *http.Request) {
	sess, ok := a.session(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, a.Config.MaxUploadBytes+1024)

	src, err := a.readSourceImage(r)
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	a.json(w, http.StatusOK, a.Manager.SelectImage(sess, src))
}

func (a *App) readSourceImage(r *http.Request) (image.SourceImage, error) {
	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "multipart/form-data") {
		file, header, err := r.FormFile("file")
		if err != nil {
			return image.SourceImage{}, fmt.Errorf("missing file field")
		}
		defer file.Close()
		data, err := io.ReadAll(file)
		if err != nil {
			return image.SourceImage{}, fmt.Errorf("read upload: %w", err)
		}
		mime := header.Header.Get("Content-Type")
		if !strings.HasPrefix(mime, "image/") {
			mime = http.DetectContentType(data)
		}
		if !strings.HasPrefix(mime, "image/") {
			return image.SourceImage{}, fmt.Errorf("unsupported file type")
		}
		return image.SourceImage{Data: data, MIME: mime, Filename: header.Filename}, nil
	}

	var req uploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return image.SourceImage{}, fmt.Errorf("invalid payload")
	}
	encoded := req.DataURI
	if encoded == "" {
		encoded = req.Data
	}
	if strings.TrimSpace(encoded) == "" {
		return image.SourceImage{}, fmt.Errorf("image data is required")
	}
	data, mime, err := image.DecodeDataURI(encoded)
	if err != nil {
		return image.SourceImage{}, err
	}
	if req.MIME != "" {
		mime = req.MIME
	}
	if !strings.HasPrefix(mime, "image/") {
		return image.SourceImage{}, fmt.Errorf("unsupported file type")
	}
	if int64(len(data)) > a.Config.MaxUploadBytes {
		return image.SourceImage{}, fmt.Errorf("image exceeds upload limit")
	}
	filename := req.Filename
	if filename == "" {
		filename = "upload"
	}
	return image.SourceImage{Data: data, MIME: mime, Filename: filename}, nil
}

func (a *App) LoadExample(w http.ResponseWriter, r *http.Request) {
	sess, ok := a.session(w, r)
	if !ok {
		return
	}
	locale := middleware.LocaleFromContext(r.Context())
	a.json(w, http.StatusOK, a.Manager.LoadExample(r.Context(), sess, locale))
}

func (a *App) ClearSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := a.session(w, r)
	if !ok {
		return
	}
	a.json(w, http.StatusOK, a.Manager.Clear(sess))
}

func (a *App) session(w http.ResponseWriter, r *http.Request) (*studio.Session, bool) {
	id := chi.URLParam(r, "session_id")
	if id == "" {
		id = r.Header.Get("X-Session-ID")
	}
	if id == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "session_id required")
		return nil, false
	}
	sess, err := a.Sessions.Get(id)
	if err != nil {
		a.error(w, http.StatusNotFound, "not_found", "session not found")
		return nil, false
	}
	return sess, true
}
