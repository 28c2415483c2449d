package config

import (
	"testing"
	"time"
)

// setRequired sets the env vars without which Load refuses to start.
func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-secret")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Port != "8080" {
		t.Errorf("Port = %q", cfg.Port)
	}
	if cfg.Env != "development" {
		t.Errorf("Env = %q", cfg.Env)
	}
	if cfg.Session.TTL != 7*24*time.Hour {
		t.Errorf("Session.TTL = %v; want 168h", cfg.Session.TTL)
	}
	if cfg.Session.CookieName != "token" {
		t.Errorf("CookieName = %q", cfg.Session.CookieName)
	}
	if cfg.Session.CookieSecure {
		t.Errorf("CookieSecure must be false outside production")
	}
	if cfg.GeminiModel != "gemini-2.5-flash" {
		t.Errorf("GeminiModel = %q", cfg.GeminiModel)
	}
	if cfg.Mongo.Database != "maple" {
		t.Errorf("Mongo.Database = %q", cfg.Mongo.Database)
	}
	if cfg.APIBasePath != "/" {
		t.Errorf("APIBasePath = %q", cfg.APIBasePath)
	}
	if cfg.UpstreamTimeout != 30*time.Second {
		t.Errorf("UpstreamTimeout = %v", cfg.UpstreamTimeout)
	}
}

func TestLoad_ProductionSecuresCookie(t *testing.T) {
	setRequired(t)
	t.Setenv("APP_ENV", "production")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if !cfg.Session.CookieSecure {
		t.Fatalf("CookieSecure must be true in production")
	}
}

func TestLoad_MissingSecretFails(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	if _, err := Load(); err == nil {
		t.Fatalf("Load must fail without JWT_SECRET")
	}
}

func TestLoad_CORSFallsBackToFrontendURL(t *testing.T) {
	setRequired(t)
	t.Setenv("FRONTEND_URL", "https://app.example.com")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if len(cfg.CORS.AllowedOrigins) != 1 || cfg.CORS.AllowedOrigins[0] != "https://app.example.com" {
		t.Fatalf("AllowedOrigins = %v", cfg.CORS.AllowedOrigins)
	}
}

func TestLoad_CORSListWins(t *testing.T) {
	setRequired(t)
	t.Setenv("FRONTEND_URL", "https://app.example.com")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if len(cfg.CORS.AllowedOrigins) != 2 {
		t.Fatalf("AllowedOrigins = %v", cfg.CORS.AllowedOrigins)
	}
}

func TestLoad_BadSampleRatio(t *testing.T) {
	setRequired(t)
	t.Setenv("OTEL_TRACES_SAMPLER_ARG", "1.5")

	if _, err := Load(); err == nil {
		t.Fatalf("Load must reject sample ratio > 1")
	}
}

func TestLoad_NormalizesGinModeAndLogLevel(t *testing.T) {
	setRequired(t)
	t.Setenv("GIN_MODE", "bogus")
	t.Setenv("LOG_LEVEL", "WARNING")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.GinMode != "release" {
		t.Errorf("GinMode = %q; want release", cfg.GinMode)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("LogLevel = %q; want warn", cfg.LogLevel)
	}
}

func TestNormalizeBasePath(t *testing.T) {
	cases := map[string]string{
		"":        "/",
		"/":       "/",
		"api":     "/api",
		"/api/":   "/api",
		"/api/v1": "/api/v1",
	}
	for in, want := range cases {
		if got := normalizeBasePath(in); got != want {
			t.Errorf("normalizeBasePath(%q) = %q; want %q", in, got, want)
		}
	}
}

func TestSplitCSV(t *testing.T) {
	got := splitCSV(" a.example , ,b.example,")
	if len(got) != 2 || got[0] != "a.example" || got[1] != "b.example" {
		t.Fatalf("splitCSV = %v", got)
	}
	if splitCSV("") != nil {
		t.Fatalf("splitCSV(\"\") must be nil")
	}
}
