package http

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/mind-engage/mcq-docgen/internal/archive"
	"github.com/mind-engage/mcq-docgen/internal/render"
	"github.com/mind-engage/mcq-docgen/internal/storage"
)

// GET /conversions?format=&limit=&offset=
func ListConversionsHandler(store archive.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		limit, _ := strconv.Atoi(q.Get("limit"))
		offset, _ := strconv.Atoi(q.Get("offset"))
		items, err := store.List(r.Context(), archive.ListOpts{
			Format: q.Get("format"),
			Limit:  limit,
			Offset: offset,
		})
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if items == nil {
			items = []archive.Conversion{}
		}
		writeJSON(w, http.StatusOK, map[string]any{"items": items})
	}
}

// GET /conversions/{id}
func GetConversionHandler(store archive.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := store.Get(r.Context(), chi.URLParam(r, "id"))
		if errors.Is(err, archive.ErrNotFound) {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, c)
	}
}

// GET /conversions/{id}/download
func DownloadConversionHandler(store archive.Store, bs storage.BlobStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := store.Get(r.Context(), chi.URLParam(r, "id"))
		if errors.Is(err, archive.ErrNotFound) {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		rc, err := bs.Get(c.BlobKey)
		if err != nil {
			http.Error(w, "not found: "+err.Error(), http.StatusNotFound)
			return
		}
		defer rc.Close()
		ct := "application/octet-stream"
		if rr, ok := render.Lookup(c.Format); ok {
			ct = rr.ContentType()
		}
		w.Header().Set("Content-Type", ct)
		w.Header().Set("Content-Disposition", "attachment; filename="+c.Filename)
		_, _ = io.Copy(w, rc)
	}
}
