package botocfg

import (
	"os"
	"path/filepath"
	"testing"
)

func TestOverrideSetsAndRestoresEnv(t *testing.T) {
	t.Setenv(EnvVar, "")
	os.Unsetenv(EnvVar)

	restore, err := Override(Setting{"GSUtil", "resumable_threshold", "4"})
	if err != nil {
		t.Fatalf("Override() error = %v", err)
	}

	path := os.Getenv(EnvVar)
	if path == "" {
		t.Fatal("BOTO_CONFIG not set during override")
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load(override file) error = %v", err)
	}
	if v, _ := cfg.Get("GSUtil", "resumable_threshold"); v != "4" {
		t.Errorf("override value = %q, want %q", v, "4")
	}

	restore()
	if _, ok := os.LookupEnv(EnvVar); ok {
		t.Error("BOTO_CONFIG still set after restore")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("override file not removed: %v", err)
	}
}

func TestOverrideLayersOnExistingConfig(t *testing.T) {
	base := filepath.Join(t.TempDir(), "boto.cfg")
	if err := os.WriteFile(base, []byte("[Boto]\nproxy = proxy.example.com\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv(EnvVar, base)

	restore, err := Override(Setting{"Boto", "proxy_pass", "secret"})
	if err != nil {
		t.Fatalf("Override() error = %v", err)
	}
	defer restore()

	cfg, err := Load(os.Getenv(EnvVar))
	if err != nil {
		t.Fatal(err)
	}
	// Prior settings survive, the override is layered on top.
	if v, _ := cfg.Get("Boto", "proxy"); v != "proxy.example.com" {
		t.Errorf("proxy = %q, base config lost", v)
	}
	if v, _ := cfg.Get("Boto", "proxy_pass"); v != "secret" {
		t.Errorf("proxy_pass = %q, override not applied", v)
	}

	restore()
	if got := os.Getenv(EnvVar); got != base {
		t.Errorf("BOTO_CONFIG = %q after restore, want %q", got, base)
	}
}

func TestOverrideRestoreIdempotent(t *testing.T) {
	t.Setenv(EnvVar, "")
	os.Unsetenv(EnvVar)

	restore, err := Override(Setting{"GSUtil", "check_hashes", "always"})
	if err != nil {
		t.Fatal(err)
	}
	restore()
	restore() // second call must be a no-op, not a deadlock or double-release
}
