package render

import (
	"context"
	"encoding/json"
	"sort"
	"sync"

	"github.com/mind-engage/mcq-docgen/internal/mcq"
)

// Renderer turns parsed records into a downloadable document.
type Renderer interface {
	Render(ctx context.Context, records []mcq.Record) ([]byte, error)
	ContentType() string
	Extension() string // including the leading dot
}

// Registry of renderers by format key (e.g., "docx", "qti", "json")
var (
	mu       sync.RWMutex
	registry = map[string]Renderer{}
)

// Register a renderer. Call from init() in subpackages.
func Register(format string, r Renderer) {
	if format == "" || r == nil {
		return
	}
	mu.Lock()
	defer mu.Unlock()
	registry[format] = r
}

// Lookup returns a registered renderer for a format.
func Lookup(format string) (Renderer, bool) {
	mu.RLock()
	defer mu.RUnlock()
	r, ok := registry[format]
	return r, ok
}

// Formats lists registered format keys, sorted.
func Formats() []string {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]string, 0, len(registry))
	for k := range registry {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// ---- json ----

type jsonRenderer struct{}

func (jsonRenderer) Render(_ context.Context, records []mcq.Record) ([]byte, error) {
	if records == nil {
		records = []mcq.Record{}
	}
	return json.MarshalIndent(records, "", "  ")
}
func (jsonRenderer) ContentType() string { return "application/json" }
func (jsonRenderer) Extension() string   { return ".json" }

func init() { Register("json", jsonRenderer{}) }
