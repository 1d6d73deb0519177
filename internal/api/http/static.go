package http

import (
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
)

// MountStatic serves the upload page and its assets from dir. Missing dir is not fatal.
func MountStatic(r chi.Router, dir string) bool {
	if fi, err := os.Stat(dir); err != nil || !fi.IsDir() {
		return false
	}
	fs := http.FileServer(http.Dir(dir))
	r.Get("/*", func(w http.ResponseWriter, req *http.Request) {
		fs.ServeHTTP(w, req)
	})
	return true
}
