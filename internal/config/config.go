package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

type Config struct {
	Mode     Mode
	HTTPAddr string

	StaticDir    string
	MaxBodyBytes int64

	// Parser / output
	StemJoin       string // lines|space
	OutputBasename string // download name without extension
	DefaultFormat  string // docx|qti|json

	CORSOrigins []string // online mode only; offline allows any origin

	EnableArchive bool
	DBDriver      string
	DBDSN         string
	BlobBasePath  string
	SiteID        string

	AuthHMACSecret string
	AdminUser      string
	AdminPassHash  string // bcrypt
	AdminPassword  string // plaintext, hashed at startup when no hash is configured

	// Extra archive accounts (YAML only), e.g. an auditor for the event feed.
	Users []User
}

// User is a local archive account with an rbac role.
type User struct {
	Username string `yaml:"username"`
	PassHash string `yaml:"pass_hash"` // bcrypt
	Role     string `yaml:"role"`      // teacher|auditor|admin
}

// fileConfig mirrors Config for the optional YAML file named by CONFIG_FILE.
// Environment variables always win over file values.
type fileConfig struct {
	Mode           string   `yaml:"mode"`
	HTTPAddr       string   `yaml:"http_addr"`
	StaticDir      string   `yaml:"static_dir"`
	MaxBodyBytes   int64    `yaml:"max_body_bytes"`
	StemJoin       string   `yaml:"stem_join"`
	OutputBasename string   `yaml:"output_basename"`
	DefaultFormat  string   `yaml:"default_format"`
	CORSOrigins    []string `yaml:"cors_origins"`
	EnableArchive  *bool    `yaml:"enable_archive"`
	DBDriver       string   `yaml:"db_driver"`
	DBDSN          string   `yaml:"db_dsn"`
	BlobBasePath   string   `yaml:"blob_base_path"`
	SiteID         string   `yaml:"site_id"`
	AuthHMACSecret string   `yaml:"auth_hmac_secret"`
	AdminUser      string   `yaml:"admin_user"`
	AdminPassHash  string   `yaml:"admin_pass_hash"`
	Users          []User   `yaml:"users"`
}

const defaultMaxBody = 10 << 20 // 10 MiB

// Load reads CONFIG_FILE (if set) and then applies the environment on top.
func Load() (Config, error) {
	var fc fileConfig
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(b, &fc); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	return build(fc)
}

func build(fc fileConfig) (Config, error) {
	mode := Mode(envOr("MODE", or(fc.Mode, string(ModeOffline))))
	if mode != ModeOffline && mode != ModeOnline {
		return Config{}, fmt.Errorf("invalid MODE %q", mode)
	}

	addr := envOr("HTTP_ADDR", fc.HTTPAddr)
	if addr == "" {
		addr = ":" + envOr("PORT", "5000")
	}

	maxBody := fc.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = defaultMaxBody
	}
	if v := os.Getenv("MAX_BODY_BYTES"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n <= 0 {
			return Config{}, fmt.Errorf("invalid MAX_BODY_BYTES %q", v)
		}
		maxBody = n
	}

	archiveDef := false
	if fc.EnableArchive != nil {
		archiveDef = *fc.EnableArchive
	}

	origins := fc.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:5000"}
	}

	cfg := Config{
		Mode:           mode,
		HTTPAddr:       addr,
		StaticDir:      envOr("STATIC_DIR", or(fc.StaticDir, "./public")),
		MaxBodyBytes:   maxBody,
		StemJoin:       envOr("STEM_JOIN", or(fc.StemJoin, "lines")),
		OutputBasename: envOr("OUTPUT_BASENAME", or(fc.OutputBasename, "MCQ_Output")),
		DefaultFormat:  envOr("DEFAULT_FORMAT", or(fc.DefaultFormat, "docx")),
		CORSOrigins:    csvOr("CORS_ORIGINS", strings.Join(origins, ",")),
		EnableArchive:  envBool("ENABLE_ARCHIVE", archiveDef),
		DBDriver:       envOr("DB_DRIVER", or(fc.DBDriver, "sqlite")),
		DBDSN:          envOr("DB_DSN", fc.DBDSN),
		BlobBasePath:   envOr("BLOB_BASE_PATH", or(fc.BlobBasePath, "./data")),
		SiteID:         envOr("SITE_ID", or(fc.SiteID, "local")),
		AuthHMACSecret: envOr("AUTH_HMAC_SECRET", fc.AuthHMACSecret),
		AdminUser:      envOr("ADMIN_USER", or(fc.AdminUser, "admin")),
		AdminPassHash:  envOr("ADMIN_PASS_HASH", fc.AdminPassHash),
		AdminPassword:  os.Getenv("ADMIN_PASSWORD"),
		Users:          fc.Users,
	}
	if cfg.EnableArchive && cfg.AuthHMACSecret == "" {
		return Config{}, fmt.Errorf("AUTH_HMAC_SECRET is required when the archive is enabled")
	}
	for _, u := range cfg.Users {
		if u.Username == "" || u.PassHash == "" || u.Role == "" {
			return Config{}, fmt.Errorf("user entry %q needs username, pass_hash and role", u.Username)
		}
	}
	return cfg, nil
}

func or(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}
func envBool(k string, def bool) bool {
	switch os.Getenv(k) {
	case "1", "true", "TRUE", "yes", "YES":
		return true
	case "0", "false", "FALSE", "no", "NO":
		return false
	default:
		return def
	}
}
func csvOr(k, def string) []string {
	v := envOr(k, def)
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
