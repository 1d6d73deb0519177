package http

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"

	auth "github.com/mind-engage/mcq-docgen/internal/auth/middleware"
	"github.com/mind-engage/mcq-docgen/internal/convert"
	"github.com/mind-engage/mcq-docgen/internal/render"
)

type generateRequest struct {
	Text string `json:"text"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// decodeText reads {"text": "..."} bounded by maxBody. It writes the error
// response itself and reports whether the caller should continue.
func decodeText(w http.ResponseWriter, r *http.Request, maxBody int64) (string, bool) {
	if maxBody > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, maxBody)
	}
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			jsonError(w, http.StatusRequestEntityTooLarge, "Payload Too Large")
			return "", false
		}
		if !errors.Is(err, io.EOF) {
			log.Printf("generate-doc: bad json: %v", err)
		}
		jsonError(w, http.StatusBadRequest, "No text provided")
		return "", false
	}
	return req.Text, true
}

// POST /generate-doc[?format=docx|qti|json]  { "text": "..." }
// An authenticated caller (see auth.OptionalJWT) is recorded as the creator.
func GenerateDocHandler(svc *convert.Service, maxBody int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		text, ok := decodeText(w, r, maxBody)
		if !ok {
			return
		}
		res, err := svc.Convert(r.Context(), convert.Request{
			Text:      text,
			Format:    r.URL.Query().Get("format"),
			CreatedBy: auth.SubjectFromContext(r.Context()),
		})
		switch {
		case errors.Is(err, convert.ErrEmptyInput):
			jsonError(w, http.StatusBadRequest, "No text provided")
			return
		case errors.Is(err, convert.ErrUnknownFormat):
			jsonError(w, http.StatusBadRequest, err.Error())
			return
		case err != nil:
			log.Printf("generate-doc: %v", err)
			jsonError(w, http.StatusInternalServerError, "Internal Server Error")
			return
		}

		w.Header().Set("Content-Type", res.ContentType)
		w.Header().Set("Content-Disposition", "attachment; filename="+res.Filename)
		w.Header().Set("Content-Length", strconv.Itoa(len(res.Body)))
		if res.ID != "" {
			w.Header().Set("X-Conversion-ID", res.ID)
		}
		_, _ = w.Write(res.Body)
	}
}

// POST /parse  { "text": "..." } -> records only, no document
func ParseHandler(svc *convert.Service, maxBody int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		text, ok := decodeText(w, r, maxBody)
		if !ok {
			return
		}
		recs, err := svc.Parse(text)
		if errors.Is(err, convert.ErrEmptyInput) {
			jsonError(w, http.StatusBadRequest, "No text provided")
			return
		}
		if err != nil {
			log.Printf("parse: %v", err)
			jsonError(w, http.StatusInternalServerError, "Internal Server Error")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"count": len(recs), "records": recs})
	}
}

// GET /formats
func FormatsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"formats": render.Formats()})
	}
}
