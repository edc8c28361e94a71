// Package kopilock implements the process-coordination core shared by
// install, uninstall and cache-refresh: per-scope exclusive locks, the
// timeout/backoff/cancellation machinery that drives them, and the
// scoped guard that release callers hold while they touch the
// filesystem under $KOPI_HOME.
package kopilock

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Kind discriminates the variants of LockScope.
type Kind int

const (
	// KindInstall is held for the duration of installing a JDK coordinate.
	KindInstall Kind = iota
	// KindUninstall is held for the duration of uninstalling a JDK coordinate.
	// It is deliberately indistinguishable, at the filesystem level, from
	// KindInstall for the same coordinate: both resolve to the same lock path.
	KindUninstall
	// KindCacheWriter guards the single cache-file write path.
	KindCacheWriter
)

func (k Kind) String() string {
	switch k {
	case KindInstall:
		return "install"
	case KindUninstall:
		return "uninstall"
	case KindCacheWriter:
		return "cache"
	default:
		return "unknown"
	}
}

// Scope is a tagged union identifying what a lock guards. Two operations
// with an equal Scope (by Path) serialize against each other.
//
// InstallCoordinate and UninstallCoordinate share their lock path by
// construction: both are built from the same Distribution+Slug pair and
// Path() derives the path the same way regardless of Kind.
type Scope struct {
	Kind         Kind
	Distribution string
	Slug         string
	VariantTags  []string
}

// InstallScope builds the scope an install of this coordinate acquires.
func InstallScope(distribution, slug string, variantTags ...string) Scope {
	return Scope{Kind: KindInstall, Distribution: distribution, Slug: slug, VariantTags: variantTags}
}

// UninstallScope builds the scope an uninstall of this coordinate acquires.
// It is guaranteed to produce the same lock Path as InstallScope given the
// same distribution and slug, so install and uninstall of the same JDK
// always serialize against each other.
func UninstallScope(distribution, slug string, variantTags ...string) Scope {
	return Scope{Kind: KindUninstall, Distribution: distribution, Slug: slug, VariantTags: variantTags}
}

// CacheWriterScope builds the single, fixed scope guarding cache writes.
func CacheWriterScope() Scope {
	return Scope{Kind: KindCacheWriter}
}

// Validate rejects scope components that could escape their intended
// directory when joined into a path (defense in depth: callers are
// expected to pass already-sanitised slugs, but the lock path computation
// must not trust that blindly).
func (s Scope) Validate() error {
	check := func(field, value string) error {
		if value == "" {
			return nil
		}
		if strings.ContainsAny(value, "/\\") || value == "." || value == ".." {
			return &ValidationError{Field: field, Reason: fmt.Sprintf("invalid path component %q", value)}
		}
		return nil
	}
	switch s.Kind {
	case KindInstall, KindUninstall:
		if s.Slug == "" {
			return &ValidationError{Field: "slug", Reason: "must not be empty"}
		}
		if err := check("distribution", s.Distribution); err != nil {
			return err
		}
		if err := check("slug", s.Slug); err != nil {
			return err
		}
		for _, t := range s.VariantTags {
			if err := check("variant_tag", t); err != nil {
				return err
			}
		}
	case KindCacheWriter:
		// no components to validate
	default:
		return &ValidationError{Field: "kind", Reason: "unknown scope kind"}
	}
	return nil
}

// Label returns a short, human-readable identifier for logs and observer
// messages, e.g. "install temurin@21" or "cache".
func (s Scope) Label() string {
	switch s.Kind {
	case KindInstall, KindUninstall:
		if s.Distribution != "" && !strings.HasPrefix(s.Slug, s.Distribution+"@") {
			return fmt.Sprintf("%s %s@%s", s.Kind, s.Distribution, s.Slug)
		}
		return fmt.Sprintf("%s %s", s.Kind, s.Slug)
	default:
		return s.Kind.String()
	}
}

// Path computes the lock-file path for this scope under home. Install and
// Uninstall scopes for the same distribution+slug always compute the same
// path; this is the mechanism by which the two operations share a lock.
func (s Scope) Path(home string) (string, error) {
	if err := s.Validate(); err != nil {
		return "", err
	}
	switch s.Kind {
	case KindInstall, KindUninstall:
		dist := s.Distribution
		if dist == "" {
			dist = "_"
		}
		return filepath.Join(home, "locks", "install", dist, s.Slug+".lock"), nil
	case KindCacheWriter:
		return filepath.Join(home, "locks", "cache.lock"), nil
	default:
		return "", &ValidationError{Field: "kind", Reason: "unknown scope kind"}
	}
}

// Slugify produces the filesystem-safe identifier shared by install and
// uninstall for a given distribution+version+variant-tag coordinate. It
// lower-cases, replaces path-unsafe runes with '-', and joins components
// with '@' and '-' the way Kopi's CLI surface names JDKs to users
// (e.g. "temurin@21", "temurin@21-musl").
func Slugify(distribution, version string, tags ...string) string {
	parts := make([]string, 0, 1+len(tags))
	parts = append(parts, sanitizeComponent(version))
	for _, t := range tags {
		parts = append(parts, sanitizeComponent(t))
	}
	return sanitizeComponent(distribution) + "@" + strings.Join(parts, "-")
}

func sanitizeComponent(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '.', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('-')
		}
	}
	return b.String()
}
