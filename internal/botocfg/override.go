package botocfg

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/walkerjoe/gsprobe/internal/filelock"
)

// Setting is one section/key/value override applied for the scope of an
// Override call.
type Setting struct {
	Section string
	Key     string
	Value   string
}

// overrideMu serializes BOTO_CONFIG swaps within this process. The env var
// is process-global, so concurrent overrides would clobber each other.
var overrideMu sync.Mutex

// Override applies the settings on top of the current BOTO_CONFIG (if any),
// writes the result to a temp file, and points BOTO_CONFIG at it. The
// returned restore func puts the previous value back and removes the temp
// file; call it in a defer so the override is released even on failure.
//
// Cross-process coordination uses a flock in the system temp dir, so two
// gsprobe processes sharing a boto config do not interleave overrides.
func Override(settings ...Setting) (restore func(), err error) {
	overrideMu.Lock()

	lockPath := filepath.Join(os.TempDir(), "gsprobe-botocfg")
	lock := filelock.New(lockPath + ".lock")
	if err := lock.Lock(); err != nil {
		overrideMu.Unlock()
		return nil, err
	}

	release := func() {
		lock.Unlock()
		overrideMu.Unlock()
	}

	prev, hadPrev := os.LookupEnv(EnvVar)

	base := New()
	if hadPrev && prev != "" {
		base, err = Load(prev)
		if err != nil {
			release()
			return nil, fmt.Errorf("failed to load current boto config: %w", err)
		}
	}

	for _, s := range settings {
		base.Set(s.Section, s.Key, s.Value)
	}

	dir, err := os.MkdirTemp("", "gsprobe-boto-*")
	if err != nil {
		release()
		return nil, fmt.Errorf("failed to create override dir: %w", err)
	}

	path := filepath.Join(dir, "boto.cfg")
	var buf bytes.Buffer
	if err := base.WriteTo(&buf); err != nil {
		os.RemoveAll(dir)
		release()
		return nil, err
	}
	if err := filelock.AtomicWrite(path, buf.Bytes()); err != nil {
		os.RemoveAll(dir)
		release()
		return nil, err
	}

	if err := os.Setenv(EnvVar, path); err != nil {
		os.RemoveAll(dir)
		release()
		return nil, fmt.Errorf("failed to set %s: %w", EnvVar, err)
	}

	var once sync.Once
	restore = func() {
		once.Do(func() {
			if hadPrev {
				os.Setenv(EnvVar, prev)
			} else {
				os.Unsetenv(EnvVar)
			}
			os.RemoveAll(dir)
			release()
		})
	}
	return restore, nil
}
