// Package kopiconfig loads Kopi's on-disk configuration file. It is the
// one ambient concern the teacher repository itself has no analog for —
// openshift-library-go is a library with no user-facing config format of
// its own — so its TOML parser is adopted from the rest of the retrieval
// pack instead (BurntSushi/toml appears in both joeycumines-go-utilpkg's
// and Cloudzero-cloudzero-agent's dependency graphs).
package kopiconfig

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
)

// Locks holds the per-scope configured timeout overrides consumed by
// kopilock.Resolver's "config" precedence layer (spec.md §4.1). Each
// field is a string so it can carry either an integer-seconds literal or
// the literal "infinite", exactly like the CLI flag and environment
// variable grammars — an empty string means "not set at this layer."
type Locks struct {
	DefaultTimeout   string `toml:"default_timeout"`
	InstallTimeout   string `toml:"install_timeout"`
	UninstallTimeout string `toml:"uninstall_timeout"`
	CacheTimeout     string `toml:"cache_timeout"`
}

// Config is the root of config.toml.
type Config struct {
	Locks Locks `toml:"locks"`
}

// DefaultPath returns $KOPI_HOME/config.toml.
func DefaultPath(home string) string {
	return filepath.Join(home, "config.toml")
}

// Load reads and parses path. A missing file is not an error: it returns
// a zero-value Config, so every resolver layer simply falls through to
// the next precedence source.
func Load(path string) (Config, error) {
	var cfg Config
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, errors.Wrapf(err, "read config %q", path)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrapf(err, "parse config %q", path)
	}
	return cfg, nil
}

// TimeoutFor returns the configured timeout string for scopeLabel, or "" if
// unset. The install/uninstall/cache fields take priority for their own
// scope; any scope whose own field is empty, and any other label, falls
// back to DefaultTimeout.
func (c Config) TimeoutFor(scopeLabel string) string {
	switch scopeLabel {
	case "install":
		if c.Locks.InstallTimeout != "" {
			return c.Locks.InstallTimeout
		}
	case "uninstall":
		if c.Locks.UninstallTimeout != "" {
			return c.Locks.UninstallTimeout
		}
	case "cache":
		if c.Locks.CacheTimeout != "" {
			return c.Locks.CacheTimeout
		}
	}
	return c.Locks.DefaultTimeout
}
