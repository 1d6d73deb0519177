package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/crypto/bcrypt"

	api "github.com/mind-engage/mcq-docgen/internal/api/http"
	"github.com/mind-engage/mcq-docgen/internal/archive"
	auth "github.com/mind-engage/mcq-docgen/internal/auth/middleware"
	"github.com/mind-engage/mcq-docgen/internal/config"
	"github.com/mind-engage/mcq-docgen/internal/convert"
	"github.com/mind-engage/mcq-docgen/internal/db"
	"github.com/mind-engage/mcq-docgen/internal/mcq"
	rbac "github.com/mind-engage/mcq-docgen/internal/rbac"
	"github.com/mind-engage/mcq-docgen/internal/storage"
	syncx "github.com/mind-engage/mcq-docgen/internal/sync"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	opts := []convert.Option{
		convert.WithBasename(cfg.OutputBasename),
		convert.WithDefaultFormat(cfg.DefaultFormat),
	}

	// --- Archive (optional): DB metadata + blob store + event log ---
	var (
		store  archive.Store
		blobs  storage.BlobStore
		events *syncx.EventRepo
	)
	if cfg.EnableArchive {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
		if err != nil {
			log.Fatalf("db open failed: %v", err)
		}
		fs, err := storage.NewFSStore(cfg.BlobBasePath)
		if err != nil {
			log.Fatalf("blob store: %v", err)
		}
		store, blobs = archive.NewSQLStore(dbh), fs
		events = syncx.NewEventRepo(dbh, cfg.SiteID)
		opts = append(opts, convert.WithArchive(store, blobs), convert.WithEvents(events))
	}

	svc := convert.NewService(mcq.NewParser(mcq.ParseJoinMode(cfg.StemJoin)), opts...)

	// --- Router ---
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	if cfg.Mode == config.ModeOnline {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   cfg.CORSOrigins,
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"Authorization", "Content-Type"},
			ExposedHeaders:   []string{"Content-Length", "Content-Disposition", "X-Conversion-ID"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	} else {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Authorization", "Content-Type"},
			ExposedHeaders: []string{"Content-Length", "Content-Disposition", "X-Conversion-ID"},
			MaxAge:         300,
		}))
	}

	// Public document generation
	generate := api.GenerateDocHandler(svc, cfg.MaxBodyBytes)
	r.Post("/parse", api.ParseHandler(svc, cfg.MaxBodyBytes))
	r.Get("/formats", api.FormatsHandler())

	if !svc.Archived() {
		r.Post("/generate-doc", generate)
	} else {
		authSvc := auth.NewAuthService(cfg.AuthHMACSecret)
		r.Post("/auth/login", auth.LoginHandler(authSvc, accounts(cfg)...))
		// anonymous callers still convert; a valid token is recorded as creator
		r.With(auth.OptionalJWT(authSvc)).Post("/generate-doc", generate)

		// Protected archive (JWT → role in context → RBAC)
		r.Group(func(pr chi.Router) {
			pr.Use(auth.JWTMiddleware(authSvc))

			pr.With(rbac.Require(rbac.PermConversionList)).
				Get("/conversions", api.ListConversionsHandler(store))
			pr.With(rbac.RequireAny(rbac.PermConversionView, rbac.PermConversionDownload)).
				Get("/conversions/{id}", api.GetConversionHandler(store))
			pr.With(rbac.Require(rbac.PermConversionDownload)).
				Get("/conversions/{id}/download", api.DownloadConversionHandler(store, blobs))
			pr.With(rbac.Require(rbac.PermEventsRead)).
				Get("/events", api.ListEventsHandler(events))
		})
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })

	if !api.MountStatic(r, cfg.StaticDir) {
		log.Printf("static dir %q not found; upload page disabled", cfg.StaticDir)
	}

	s := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	log.Printf("listening on %s (mode=%s, archive=%t, db=%s)", cfg.HTTPAddr, cfg.Mode, svc.Archived(), cfg.DBDriver)
	log.Fatal(s.ListenAndServe())
}

// accounts resolves the local logins: the env admin (a plaintext
// ADMIN_PASSWORD is hashed once at startup) plus users from the config file.
func accounts(cfg config.Config) []auth.Account {
	var out []auth.Account
	admin := auth.Account{Username: cfg.AdminUser, Role: "admin"}
	switch {
	case cfg.AdminPassHash != "":
		admin.PassHash = []byte(cfg.AdminPassHash)
	case cfg.AdminPassword != "":
		h, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), bcrypt.DefaultCost)
		if err != nil {
			log.Fatalf("hash admin password: %v", err)
		}
		admin.PassHash = h
	}
	if len(admin.PassHash) > 0 {
		out = append(out, admin)
	}
	for _, u := range cfg.Users {
		if !rbac.KnownRole(u.Role) {
			log.Fatalf("user %q: unknown role %q", u.Username, u.Role)
		}
		out = append(out, auth.Account{Username: u.Username, PassHash: []byte(u.PassHash), Role: u.Role})
	}
	if len(out) == 0 {
		log.Printf("no ADMIN_PASS_HASH, ADMIN_PASSWORD or config users; /auth/login disabled")
	}
	return out
}
