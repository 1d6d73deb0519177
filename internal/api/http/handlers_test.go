package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	api "github.com/mind-engage/mcq-docgen/internal/api/http"
	"github.com/mind-engage/mcq-docgen/internal/archive"
	auth "github.com/mind-engage/mcq-docgen/internal/auth/middleware"
	"github.com/mind-engage/mcq-docgen/internal/convert"
	"github.com/mind-engage/mcq-docgen/internal/render/docx"
	"github.com/mind-engage/mcq-docgen/internal/storage"
	syncx "github.com/mind-engage/mcq-docgen/internal/sync"
)

const sample = "1. What is 2+2?\nA. 3\nB. 4\nAnswer: B\n"

func post(t *testing.T, h http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func textBody(t *testing.T, text string) string {
	t.Helper()
	b, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		t.Fatal(err)
	}
	return string(b)
}

func errorOf(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("error body is not json: %q", rec.Body.String())
	}
	return body.Error
}

func TestGenerateDoc(t *testing.T) {
	h := api.GenerateDocHandler(convert.NewService(nil), 1<<20)
	rec := post(t, h, "/generate-doc", textBody(t, sample))
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != docx.ContentType {
		t.Fatalf("content type %q", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); cd != "attachment; filename=MCQ_Output.docx" {
		t.Fatalf("content disposition %q", cd)
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("PK")) {
		t.Fatal("body is not a zip container")
	}
	if rec.Header().Get("X-Conversion-ID") != "" {
		t.Fatal("unexpected conversion id without archive")
	}
}

func TestGenerateDocErrors(t *testing.T) {
	h := api.GenerateDocHandler(convert.NewService(nil), 64)
	cases := []struct {
		name, path, body string
		status           int
		msg              string
	}{
		{"missing text", "/generate-doc", `{}`, http.StatusBadRequest, "No text provided"},
		{"blank text", "/generate-doc", `{"text":"  \n "}`, http.StatusBadRequest, "No text provided"},
		{"bad json", "/generate-doc", `{"text":`, http.StatusBadRequest, "No text provided"},
		{"too large", "/generate-doc", textBody(t, strings.Repeat("x", 200)), http.StatusRequestEntityTooLarge, "Payload Too Large"},
		{"unknown format", "/generate-doc?format=pdf", `{"text":"1. Q"}`, http.StatusBadRequest, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := post(t, h, tc.path, tc.body)
			if rec.Code != tc.status {
				t.Fatalf("status %d, want %d", rec.Code, tc.status)
			}
			if msg := errorOf(t, rec); tc.msg != "" && msg != tc.msg {
				t.Fatalf("error %q, want %q", msg, tc.msg)
			}
		})
	}
}

func TestGenerateDocJSONFormat(t *testing.T) {
	h := api.GenerateDocHandler(convert.NewService(nil), 0)
	rec := post(t, h, "/generate-doc?format=json", textBody(t, sample))
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	if cd := rec.Header().Get("Content-Disposition"); cd != "attachment; filename=MCQ_Output.json" {
		t.Fatalf("content disposition %q", cd)
	}
}

func TestParse(t *testing.T) {
	h := api.ParseHandler(convert.NewService(nil), 1<<20)
	rec := post(t, h, "/parse", textBody(t, sample+"2. Second?\nA. x\n"))
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	var out struct {
		Count   int `json:"count"`
		Records []struct {
			Stem    string   `json:"stem"`
			Options []string `json:"options"`
			Answer  string   `json:"answer"`
		} `json:"records"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatal(err)
	}
	if out.Count != 2 || out.Records[0].Answer != "2" || len(out.Records[1].Options) != 5 {
		t.Fatalf("unexpected parse output: %+v", out)
	}

	rec = post(t, h, "/parse", `{"text":""}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("blank: status %d", rec.Code)
	}
}

func TestFormats(t *testing.T) {
	rec := httptest.NewRecorder()
	api.FormatsHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/formats", nil))
	var out struct {
		Formats []string `json:"formats"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatal(err)
	}
	if strings.Join(out.Formats, ",") != "docx,json,qti" {
		t.Fatalf("formats %v", out.Formats)
	}
}

type memEvents struct{ evs []syncx.Event }

func (m *memEvents) AppendJSON(_ context.Context, typ, key string, _ any) error {
	m.evs = append(m.evs, syncx.Event{Seq: int64(len(m.evs) + 1), Type: typ, Key: key, DataJSON: "{}"})
	return nil
}

func (m *memEvents) Since(_ context.Context, after int64, _ int) ([]syncx.Event, error) {
	var out []syncx.Event
	for _, e := range m.evs {
		if e.Seq > after {
			out = append(out, e)
		}
	}
	return out, nil
}

func TestConversionArchiveRoutes(t *testing.T) {
	blobs, err := storage.NewFSStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	store := archive.NewInMemoryStore()
	events := &memEvents{}
	svc := convert.NewService(nil, convert.WithArchive(store, blobs), convert.WithEvents(events))

	r := chi.NewRouter()
	r.Post("/generate-doc", api.GenerateDocHandler(svc, 1<<20))
	r.Get("/conversions", api.ListConversionsHandler(store))
	r.Get("/conversions/{id}", api.GetConversionHandler(store))
	r.Get("/conversions/{id}/download", api.DownloadConversionHandler(store, blobs))
	r.Get("/events", api.ListEventsHandler(events))

	gen := post(t, r, "/generate-doc", textBody(t, sample))
	id := gen.Header().Get("X-Conversion-ID")
	if gen.Code != http.StatusOK || id == "" {
		t.Fatalf("generate: status %d id %q", gen.Code, id)
	}

	get := func(path string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		return rec
	}

	var list struct {
		Items []archive.Conversion `json:"items"`
	}
	if err := json.Unmarshal(get("/conversions").Body.Bytes(), &list); err != nil {
		t.Fatal(err)
	}
	if len(list.Items) != 1 || list.Items[0].ID != id || list.Items[0].Questions != 1 {
		t.Fatalf("list: %+v", list.Items)
	}

	if rec := get("/conversions/" + id); rec.Code != http.StatusOK {
		t.Fatalf("get: status %d", rec.Code)
	}
	if rec := get("/conversions/missing"); rec.Code != http.StatusNotFound {
		t.Fatalf("get missing: status %d", rec.Code)
	}

	dl := get("/conversions/" + id + "/download")
	if dl.Code != http.StatusOK || !bytes.Equal(dl.Body.Bytes(), gen.Body.Bytes()) {
		t.Fatalf("download: status %d, %d bytes", dl.Code, dl.Body.Len())
	}
	if dl.Header().Get("Content-Type") != docx.ContentType {
		t.Fatalf("download content type %q", dl.Header().Get("Content-Type"))
	}

	var evs struct {
		Events []syncx.Event `json:"events"`
		Next   int64         `json:"next"`
	}
	if err := json.Unmarshal(get("/events").Body.Bytes(), &evs); err != nil {
		t.Fatal(err)
	}
	if len(evs.Events) != 1 || evs.Events[0].Key != id || evs.Next != 1 {
		t.Fatalf("events: %+v", evs)
	}
}

func TestGenerateDocRecordsCaller(t *testing.T) {
	blobs, err := storage.NewFSStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	store := archive.NewInMemoryStore()
	svc := convert.NewService(nil, convert.WithArchive(store, blobs))
	authSvc := auth.NewAuthService("secret")
	h := auth.OptionalJWT(authSvc)(api.GenerateDocHandler(svc, 1<<20))

	creator := func(req *http.Request) string {
		t.Helper()
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		id := rec.Header().Get("X-Conversion-ID")
		if rec.Code != http.StatusOK || id == "" {
			t.Fatalf("generate: status %d id %q", rec.Code, id)
		}
		c, err := store.Get(context.Background(), id)
		if err != nil {
			t.Fatal(err)
		}
		return c.CreatedBy
	}

	tok, _ := authSvc.IssueJWT("teacher1", "teacher")
	req := httptest.NewRequest(http.MethodPost, "/generate-doc", strings.NewReader(textBody(t, sample)))
	req.Header.Set("Authorization", "Bearer "+tok)
	if got := creator(req); got != "teacher1" {
		t.Fatalf("created_by %q, want teacher1", got)
	}

	req = httptest.NewRequest(http.MethodPost, "/generate-doc", strings.NewReader(textBody(t, sample)))
	if got := creator(req); got != "" {
		t.Fatalf("anonymous created_by %q", got)
	}
}

func TestMountStatic(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "index.html"), []byte("<h1>upload</h1>"), 0o644); err != nil {
		t.Fatal(err)
	}
	r := chi.NewRouter()
	if !api.MountStatic(r, dir) {
		t.Fatal("expected static dir to mount")
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "upload") {
		t.Fatalf("index: %d %q", rec.Code, rec.Body.String())
	}
	if api.MountStatic(chi.NewRouter(), filepath.Join(dir, "nope")) {
		t.Fatal("missing dir must not mount")
	}
}
