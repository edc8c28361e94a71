package kopijdk

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"k8s.io/klog/v2"

	"github.com/kopi-vm/kopi/pkg/kopilock"
)

// Resolver derives the LockScope an install of an already-installed JDK
// used, from the installation directory alone, per spec.md §4.10.
type Resolver struct {
	// JdksDir is the <jdks> root (e.g. $KOPI_HOME/jdks).
	JdksDir string
}

// Resolve returns the UninstallScope matching the InstallScope used when
// slug was installed. Primary source: strict-parse
// <jdks>/<slug>/.meta.json. Fallback source, used when metadata is
// missing or corrupt: derive distribution from the slug's own structure
// (Slugify's "<distribution>@<version>..." layout), never repairing the
// metadata file itself. Platform fields (os/arch/libc) are not consulted
// on either path; the scope carries only distribution and slug.
func (r Resolver) Resolve(slug string) (kopilock.Scope, error) {
	if slug == "" {
		return kopilock.Scope{}, &kopilock.ScopeUnavailableError{Hint: "(empty slug)"}
	}

	metaPath := filepath.Join(r.JdksDir, slug, ".meta.json")
	meta, err := ReadMetadata(metaPath)
	switch {
	case err == nil:
		return kopilock.UninstallScope(meta.Distribution, slug), nil
	case os.IsNotExist(err):
		klog.V(2).Infof("kopijdk: no metadata for %q, deriving scope from slug", slug)
	default:
		klog.Warningf("kopijdk: metadata for %q is corrupt, deriving scope from slug: %v", slug, err)
	}

	dist, ok := distributionFromSlug(slug)
	if !ok {
		return kopilock.Scope{}, &kopilock.ScopeUnavailableError{Hint: slug}
	}
	return kopilock.UninstallScope(dist, slug), nil
}

// distributionFromSlug recovers the distribution component from a slug
// produced by kopilock.Slugify ("<distribution>@<version>[-<tag>...]").
// A slug with no "@" has no recoverable distribution; ok is false.
func distributionFromSlug(slug string) (string, bool) {
	idx := strings.IndexByte(slug, '@')
	if idx <= 0 {
		return "", false
	}
	return slug[:idx], true
}

// PlatformHint returns the best-effort os/arch fields available when
// metadata is absent — used only for display/diagnostics, never fed back
// into the lock scope (which depends solely on distribution+slug).
func PlatformHint() (os, arch string) {
	return runtime.GOOS, runtime.GOARCH
}
