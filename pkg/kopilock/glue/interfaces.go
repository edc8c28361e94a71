// Package glue wires kopilock's coordination primitives and kopicache's
// durable writer into the three operations spec.md §4.11 names: install,
// uninstall, and cache refresh. It leans on the teacher's preference for
// small, single-method collaborator interfaces at I/O boundaries (e.g.
// startupmonitor's ReadinessChecker, WantsRestConfig) so the pipelines
// here are unit-testable against fakes without touching a real
// filesystem or network.
package glue

import (
	"context"

	"github.com/kopi-vm/kopi/pkg/kopilock"
)

// Installer performs the parts of an install that actually touch the
// filesystem, once the install lock for coord is held. Stage places the
// JDK's files at dest (a temporary staging directory the pipeline
// controls). The pipeline itself then renames the staging directory to
// its permanent location and calls Finalize with that published path,
// still under the lock.
type Installer interface {
	Stage(ctx context.Context, coord kopilock.Scope, dest string) error
	Finalize(ctx context.Context, dest string) error
}

// UninstallSafety answers the two questions an uninstall must check
// before removing a JDK, per spec.md §4.11's "uninstall refuses to
// proceed against the active default or a JDK currently in use" rule.
type UninstallSafety interface {
	// IsActiveDefault reports whether slug is the current default JDK.
	IsActiveDefault(slug string) (bool, error)
	// InUse reports whether the installation at path appears to be in
	// use by a running process (e.g. KOPI_JAVA_VERSION in a live shell,
	// per the Open Question resolved in DESIGN.md: such use counts).
	InUse(path string) (bool, error)
}

// MetadataFetcher retrieves the upstream release index a cache refresh
// persists. Fetch is expected to honour ctx's deadline; the glue pipeline
// layers kopilock's own lock-wait budget on top, not this one.
type MetadataFetcher interface {
	Fetch(ctx context.Context) ([]byte, error)
}
