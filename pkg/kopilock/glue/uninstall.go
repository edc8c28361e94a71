package glue

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"github.com/kopi-vm/kopi/pkg/kopilock"
)

// UninstallOptions parameterizes Uninstall.
type UninstallOptions struct {
	Home      string
	Sources   kopilock.Sources
	Resolver  kopilock.Resolver
	Observer  kopilock.WaitObserver
	Token     *kopilock.Token
	Inspector kopilock.Inspector

	JdksDir string
	// Force skips the active-default and in-use safety checks, per
	// spec.md §4.11's "--force bypasses safety checks, never the lock
	// itself" rule: Force never skips lock acquisition.
	Force bool
}

// ErrRefusedActiveDefault is wrapped into the error Uninstall returns when
// it refuses to remove the current default JDK without --force.
var ErrRefusedActiveDefault = errors.New("refusing to uninstall the active default JDK without --force")

// ErrRefusedInUse is wrapped into the error Uninstall returns when it
// refuses to remove a JDK that appears to be in use without --force.
var ErrRefusedInUse = errors.New("refusing to uninstall a JDK that appears to be in use without --force")

// Uninstall acquires the same lock coordinate an install of slug would
// have used (via kopijdk.Resolver, run by the caller to produce coord),
// then — with the lock held — runs the safety checks unless Force is set,
// stages the destructive delete by renaming the installation directory to
// jdks/.<slug>.removing, and removes it. The safety checks examine
// filesystem state (the active-default symlink, in-use markers) that is
// only meaningful while the lock excludes concurrent installs/uninstalls
// of the same slug, so they run inside the guard, never before it.
func Uninstall(coord kopilock.Scope, safety UninstallSafety, opts UninstallOptions) error {
	guard, err := kopilock.Acquire(coord, kopilock.AcquireOptions{
		Home:      opts.Home,
		Resolver:  opts.Resolver,
		Sources:   opts.Sources,
		Observer:  opts.Observer,
		Token:     opts.Token,
		Inspector: opts.Inspector,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := guard.Release(); err != nil {
			klog.Warningf("glue: releasing uninstall lock for %s: %v", coord.Label(), err)
		}
	}()

	dest := filepath.Join(opts.JdksDir, coord.Slug)

	if !opts.Force {
		active, err := safety.IsActiveDefault(coord.Slug)
		if err != nil {
			return errors.Wrapf(err, "check active-default status of %s", coord.Label())
		}
		if active {
			return fmt.Errorf("%s: %w", coord.Label(), ErrRefusedActiveDefault)
		}
		inUse, err := safety.InUse(dest)
		if err != nil {
			return errors.Wrapf(err, "check in-use status of %q", dest)
		}
		if inUse {
			return fmt.Errorf("%s: %w", coord.Label(), ErrRefusedInUse)
		}
	}

	removing := filepath.Join(opts.JdksDir, "."+coord.Slug+".removing")
	if err := os.RemoveAll(removing); err != nil {
		return errors.Wrapf(err, "clear stale staging directory %q", removing)
	}
	if err := os.Rename(dest, removing); err != nil {
		return errors.Wrapf(err, "stage %q for removal", dest)
	}
	if err := os.RemoveAll(removing); err != nil {
		if rbErr := os.Rename(removing, dest); rbErr != nil {
			klog.Warningf("glue: rollback rename %q -> %q failed after delete error: %v", removing, dest, rbErr)
		}
		return errors.Wrapf(err, "remove staged directory %q", removing)
	}
	klog.V(1).Infof("glue: uninstalled %s from %q", coord.Label(), dest)
	return nil
}

// UninstallTarget pairs a display slug with the lock scope its uninstall
// must acquire (resolved by the caller, typically via kopijdk.Resolver).
type UninstallTarget struct {
	Slug  string
	Scope kopilock.Scope
}

// UninstallResult is one target's outcome from UninstallMany.
type UninstallResult struct {
	Slug string
	Err  error
}

// UninstallMany removes each target in turn: acquire → safety checks →
// stage → delete → release, exactly as Uninstall does for one target. A
// contention, timeout, or safety refusal on one target is recorded as that
// target's error and does not abort the remaining targets — each target
// gets its own lock acquisition and its own fate.
func UninstallMany(targets []UninstallTarget, safety UninstallSafety, opts UninstallOptions) []UninstallResult {
	results := make([]UninstallResult, 0, len(targets))
	for _, target := range targets {
		err := Uninstall(target.Scope, safety, opts)
		if err != nil {
			klog.Warningf("glue: uninstall of %s failed, continuing with remaining targets: %v", target.Slug, err)
		}
		results = append(results, UninstallResult{Slug: target.Slug, Err: err})
	}
	return results
}
