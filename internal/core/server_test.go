package core

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"weatherdash/internal/config"
)

// testConfig returns a minimal configuration suitable for chassis tests.
func testConfig() *config.Config {
	return &config.Config{
		Environment: "local",
		Service:     "weatherdash-api",
		LogLevel:    "info",
		Security: config.SecurityConfig{
			CorsAllowedOrigins: []string{"*"},
		},
	}
}

// testLogger returns a logger that discards output.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewServer_Success(t *testing.T) {
	srv, err := NewServer(testConfig(), testLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if srv.Router() == nil {
		t.Error("expected router to be initialized")
	}
	if srv.Validator == nil {
		t.Error("expected validator to be initialized")
	}
	if srv.Handler() == nil {
		t.Error("expected Handler to return the router")
	}
}

func TestNewServer_NilConfig(t *testing.T) {
	if _, err := NewServer(nil, testLogger()); err == nil {
		t.Fatal("expected error for nil config")
	}
}

func TestNewServer_NilLogger(t *testing.T) {
	if _, err := NewServer(testConfig(), nil); err == nil {
		t.Fatal("expected error for nil logger")
	}
}

func TestServer_Shutdown(t *testing.T) {
	srv, err := NewServer(testConfig(), testLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := srv.Shutdown(context.Background()); err != nil {
		t.Errorf("unexpected shutdown error: %v", err)
	}
}
