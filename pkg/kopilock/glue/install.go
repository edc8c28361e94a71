package glue

import (
	"context"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"github.com/kopi-vm/kopi/pkg/kopilock"
)

// InstallOptions parameterizes Install.
type InstallOptions struct {
	Home      string
	Sources   kopilock.Sources
	Resolver  kopilock.Resolver
	Observer  kopilock.WaitObserver
	Token     *kopilock.Token
	Inspector kopilock.Inspector

	// JdksDir is <KOPI_HOME>/jdks, the permanent home Install publishes
	// the staged directory into before calling Finalize.
	JdksDir string
}

// Install acquires the install lock for coord, stages installer's files
// into a scratch directory, and finalizes them into place, all while the
// lock is held. It returns the same error types kopilock.Acquire returns
// on lock-acquisition failure, and whatever installer.Stage/Finalize
// return (possibly wrapped) on a staging failure.
func Install(ctx context.Context, coord kopilock.Scope, installer Installer, opts InstallOptions) error {
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
			klog.Warningf("glue: releasing install lock for %s: %v", coord.Label(), err)
		}
	}()

	dest := filepath.Join(opts.JdksDir, coord.Slug)
	staging := dest + ".staging"
	if err := os.RemoveAll(staging); err != nil {
		return errors.Wrapf(err, "clear stale staging directory %q", staging)
	}
	if err := os.MkdirAll(staging, 0o755); err != nil {
		return errors.Wrapf(err, "create staging directory %q", staging)
	}

	if err := installer.Stage(ctx, coord, staging); err != nil {
		_ = os.RemoveAll(staging)
		return errors.Wrapf(err, "stage %s", coord.Label())
	}

	if err := os.RemoveAll(dest); err != nil {
		_ = os.RemoveAll(staging)
		return errors.Wrapf(err, "clear previous install at %q", dest)
	}
	if err := os.Rename(staging, dest); err != nil {
		return errors.Wrapf(err, "publish %s to %q", coord.Label(), dest)
	}

	if err := installer.Finalize(ctx, dest); err != nil {
		return errors.Wrapf(err, "finalize %s", coord.Label())
	}
	klog.V(1).Infof("glue: installed %s at %q", coord.Label(), dest)
	return nil
}
