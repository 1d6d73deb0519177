package rbac

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCheckerDefaultPolicy(t *testing.T) {
	c := NewChecker(nil)
	cases := []struct {
		role, perm string
		want       bool
	}{
		{"admin", PermConversionDownload, true},
		{"admin", "anything:else", true},
		{"teacher", PermConversionList, true},
		{"teacher", PermEventsRead, false},
		{"auditor", PermEventsRead, true},
		{"auditor", PermConversionDownload, false},
		{"student", PermConversionList, false},
		{"", PermConversionList, false},
	}
	for _, tc := range cases {
		if got := c.Has(tc.role, tc.perm); got != tc.want {
			t.Fatalf("%s/%s: want %v, got %v", tc.role, tc.perm, tc.want, got)
		}
	}
	if !c.Any("auditor", PermConversionDownload, PermConversionView) {
		t.Fatal("Any should pass when one permission matches")
	}
	if c.Any("teacher", PermEventsRead) {
		t.Fatal("Any should fail when no permission matches")
	}
	if !KnownRole("auditor") || KnownRole("student") {
		t.Fatal("KnownRole should follow the default policy")
	}
}

func TestRequireMiddleware(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })
	h := Require(PermConversionDownload)(ok)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("no role: %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(WithRole(context.Background(), "teacher"))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("teacher: %d", rec.Code)
	}

	req = req.WithContext(WithRole(context.Background(), "auditor"))
	rec = httptest.NewRecorder()
	RequireAny(PermEventsRead, PermConversionDownload)(ok).ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("auditor any: %d", rec.Code)
	}
}

func TestMetadataViewAcceptsDownloaders(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })
	policy := NewChecker(map[string][]string{"fetcher": {PermConversionDownload}})
	prev := defaultChecker
	defaultChecker = policy
	t.Cleanup(func() { defaultChecker = prev })

	h := RequireAny(PermConversionView, PermConversionDownload)(ok)
	req := httptest.NewRequest(http.MethodGet, "/", nil).WithContext(WithRole(context.Background(), "fetcher"))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("download-only role viewing metadata: %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	Require(PermConversionView)(ok).ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("download-only role on view-only route: %d", rec.Code)
	}
}
