package config

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	graw "github.com/jamesprial/go-reddit-session"
	pkgerrs "github.com/jamesprial/go-reddit-session/pkg/errors"
)

// isolate points HOME and the working directory at empty temp dirs so no
// real config.yaml is picked up.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Chdir(t.TempDir())
	return home
}

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.BaseURL != graw.DefaultBaseURL {
		t.Errorf("BaseURL = %q", cfg.BaseURL)
	}
	if cfg.Timeout != graw.DefaultTimeout || cfg.Burst != 10 || cfg.RequestsPerMinute != 60 {
		t.Errorf("unexpected defaults %+v", cfg)
	}
	if cfg.LogLevel != "warn" || cfg.LiveBrowserFallback {
		t.Errorf("unexpected defaults %+v", cfg)
	}
}

func TestLoad_FileAndEnv(t *testing.T) {
	home := isolate(t)

	dir := filepath.Join(home, ".config", "reddit-mcp")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		t.Fatal(err)
	}
	writeConfig(t, dir, strings.Join([]string{
		"session_dir: /tmp/sessions",
		"log_level: debug",
		"timeout: 5s",
		"burst: 2",
		"live_browser_fallback: true",
	}, "\n"))
	t.Setenv("REDDIT_BURST", "7")
	t.Setenv("REDDIT_USER_AGENT", "test-agent/1.0")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.SessionDir != "/tmp/sessions" || cfg.LogLevel != "debug" || !cfg.LiveBrowserFallback {
		t.Errorf("file values not applied: %+v", cfg)
	}
	if cfg.Timeout != 5*time.Second {
		t.Errorf("Timeout = %v, want 5s", cfg.Timeout)
	}
	if cfg.Burst != 7 {
		t.Errorf("environment should win over the file, Burst = %d", cfg.Burst)
	}
	if cfg.UserAgent != "test-agent/1.0" {
		t.Errorf("UserAgent = %q", cfg.UserAgent)
	}
}

func TestLoad_EnvOnly(t *testing.T) {
	isolate(t)
	t.Setenv("REDDIT_SESSION_DIR", "/var/lib/reddit")
	t.Setenv("REDDIT_LIVE_BROWSER_FALLBACK", "true")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.SessionDir != "/var/lib/reddit" {
		t.Errorf("SessionDir = %q", cfg.SessionDir)
	}
	if !cfg.LiveBrowserFallback {
		t.Error("LiveBrowserFallback should come from the environment")
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "unknown log level", body: "log_level: chatty"},
		{name: "zero timeout", body: "timeout: 0s"},
		{name: "malformed yaml", body: "burst: [1, 2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			path := writeConfig(t, t.TempDir(), tt.body)

			_, err := Load(path)
			var configErr *pkgerrs.ConfigError
			if !errors.As(err, &configErr) {
				t.Fatalf("expected ConfigError, got %v", err)
			}
		})
	}

	t.Run("missing explicit file", func(t *testing.T) {
		isolate(t)
		if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
			t.Fatal("expected error for a missing explicit file")
		}
	})
}

func TestConfig_LoggerAndClientConfig(t *testing.T) {
	t.Parallel()

	cfg := &Config{
		SessionDir:        t.TempDir(),
		BaseURL:           "https://old.reddit.com/",
		LogLevel:          "info",
		RequestsPerMinute: 30,
		Burst:             3,
		Timeout:           time.Second,
	}

	var buf bytes.Buffer
	logger := cfg.Logger(&buf)
	logger.Debug("hidden")
	logger.Info("shown", "k", "v")
	if strings.Contains(buf.String(), "hidden") || !strings.Contains(buf.String(), "msg=shown k=v") {
		t.Errorf("unexpected log output %q", buf.String())
	}

	cc := cfg.ClientConfig(logger)
	if cc.HTTPClient.Timeout != time.Second || cc.Burst != 3 || cc.SessionDir != cfg.SessionDir {
		t.Errorf("unexpected client config %+v", cc)
	}

	client, err := graw.NewClient(cc)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	if client.IsAuthenticated() {
		t.Error("fresh client should not be authenticated")
	}
}
