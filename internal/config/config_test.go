package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func TestLoadMissingFileFallsBackToDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	cfg, err := Load(path)
	if err == nil {
		t.Fatal("expected the original read error for a missing file")
	}
	if !os.IsNotExist(err) {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg == nil {
		t.Fatal("a usable config must be returned even when loading fails")
	}
	if got, want := cfg.Server.Port, "8080"; got != want {
		t.Fatalf("port: got %q want %q", got, want)
	}
	if got, want := cfg.Checker.AttemptTimeout, 8*time.Second; got != want {
		t.Fatalf("attempt timeout: got %s want %s", got, want)
	}
	if got, want := cfg.Checker.MaxURLsPerRequest, 5000; got != want {
		t.Fatalf("max URLs: got %d want %d", got, want)
	}
	if got, want := cfg.GetLoadedFromPath(), path; got != want {
		t.Fatalf("loaded path: got %q want %q", got, want)
	}

	// The defaults are saved back so the operator has a file to edit.
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("default config file was not written: %v", err)
	}
	reloaded, err := Load(path)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if reloaded.Server.Port != cfg.Server.Port {
		t.Fatalf("reload mismatch: got %q want %q", reloaded.Server.Port, cfg.Server.Port)
	}
}

func TestLoadMergesFileOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	content := `{"server": {"port": "9090", "apiKey": "secret"}, "checker": {"attemptTimeoutSeconds": 3}}`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Server.Port != "9090" || cfg.Server.APIKey != "secret" {
		t.Fatalf("unexpected server config: %+v", cfg.Server)
	}
	if got, want := cfg.Checker.AttemptTimeout, 3*time.Second; got != want {
		t.Fatalf("attempt timeout: got %s want %s", got, want)
	}
	if got, want := cfg.Checker.MaxRedirects, DefaultMaxRedirects; got != want {
		t.Fatalf("absent fields keep their defaults: got %d want %d", got, want)
	}
}

func TestLoadMalformedFileReportsError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err == nil {
		t.Fatal("expected an unmarshal error")
	}
	if cfg == nil || cfg.Server.Port != "8080" {
		t.Fatalf("defaults must survive a parse failure, got %+v", cfg)
	}
}

func TestCheckerConfigRoundTrip(t *testing.T) {
	t.Parallel()

	in := CheckerConfigJSON{
		UserAgents:            []string{"UA/1.0"},
		DefaultHeaders:        map[string]string{"Accept-Language": "de-DE"},
		AttemptTimeoutSeconds: 3,
		MaxRedirects:          5,
		MaxURLsPerRequest:     100,
		AllowInsecureTLS:      true,
		RateLimitRPS:          2.5,
		RateLimitBurst:        4,
	}
	out := ConvertCheckerConfigToJSON(ConvertJSONToCheckerConfig(in))
	if !reflect.DeepEqual(in, out) {
		t.Fatalf("round trip mismatch:\n in: %+v\nout: %+v", in, out)
	}
}

func TestCheckerConfigDefaults(t *testing.T) {
	t.Parallel()

	cfg := ConvertJSONToCheckerConfig(CheckerConfigJSON{})
	if got, want := cfg.AttemptTimeout, 8*time.Second; got != want {
		t.Fatalf("attempt timeout: got %s want %s", got, want)
	}
	if cfg.MaxRedirects != DefaultMaxRedirects {
		t.Fatalf("max redirects: got %d want %d", cfg.MaxRedirects, DefaultMaxRedirects)
	}
	if cfg.MaxURLsPerRequest != DefaultMaxURLsPerRequest {
		t.Fatalf("max URLs: got %d want %d", cfg.MaxURLsPerRequest, DefaultMaxURLsPerRequest)
	}
	if cfg.RateLimitRPS != 0 || cfg.RateLimitBurst != 0 {
		t.Fatalf("rate limiting must stay off by default: %+v", cfg)
	}

	cfg = ConvertJSONToCheckerConfig(CheckerConfigJSON{RateLimitRPS: -1})
	if cfg.RateLimitRPS != 0 {
		t.Fatalf("negative RPS must be clamped, got %v", cfg.RateLimitRPS)
	}

	cfg = ConvertJSONToCheckerConfig(CheckerConfigJSON{RateLimitRPS: 2})
	if cfg.RateLimitBurst != DefaultRateLimitBurst {
		t.Fatalf("burst must default when RPS is set: got %d want %d", cfg.RateLimitBurst, DefaultRateLimitBurst)
	}
}

func TestDNSConfigDefaults(t *testing.T) {
	t.Parallel()

	cfg := ConvertJSONToDNSConfig(DNSCheckerConfigJSON{})
	if got, want := cfg.QueryTimeout, 5*time.Second; got != want {
		t.Fatalf("query timeout: got %s want %s", got, want)
	}
	if len(cfg.Resolvers) != 2 || cfg.Resolvers[0] != "1.1.1.1:53" {
		t.Fatalf("unexpected default resolvers: %v", cfg.Resolvers)
	}
	if cfg.Enabled {
		t.Fatal("enabled must not default to true at this layer")
	}
}

func TestSaveRejectsEmptyPath(t *testing.T) {
	t.Parallel()

	if err := Save(DefaultConfig(), ""); err == nil {
		t.Fatal("expected an error for an empty path")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	cfg := DefaultConfig()
	cfg.Server.Port = "9999"

	if err := Save(cfg, path); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	reloaded, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if got, want := reloaded.Server.Port, "9999"; got != want {
		t.Fatalf("port: got %q want %q", got, want)
	}
}
