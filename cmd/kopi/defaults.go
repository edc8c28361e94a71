package main

import (
	"context"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/kopi-vm/kopi/pkg/kopilock"
)

// copyInstaller is the default glue.Installer: it copies a pre-staged
// source tree (e.g. an already-extracted JDK archive) into the
// destination the glue install pipeline controls. Actual archive
// download/extraction is outside this module's scope (spec.md's
// Non-goals exclude process supervision of JDK programs, and the
// surrounding distribution/download mechanics are assumed to already
// exist elsewhere in Kopi); this implementation only has to satisfy the
// glue.Installer contract so the locking pipeline is exercised end to
// end.
type copyInstaller struct {
	SourceDir string
}

func (c copyInstaller) Stage(ctx context.Context, _ kopilock.Scope, dest string) error {
	return copyTree(c.SourceDir, dest)
}

func (c copyInstaller) Finalize(ctx context.Context, dest string) error {
	return nil
}

func copyTree(src, dest string) error {
	return filepath.Walk(src, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dest, rel)
		if info.IsDir() {
			return os.MkdirAll(target, info.Mode())
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return errors.Wrapf(err, "read %q", path)
		}
		return os.WriteFile(target, data, info.Mode())
	})
}

// fileSafety is the default glue.UninstallSafety: the active default is
// recorded as a symlink name, and "in use" is approximated by checking
// whether the live process environment's KOPI_JAVA_VERSION names this
// installation — the Open Question spec.md left unresolved, decided in
// DESIGN.md to count as active use.
type fileSafety struct {
	DefaultLinkPath string
}

func (f fileSafety) IsActiveDefault(slug string) (bool, error) {
	target, err := os.Readlink(f.DefaultLinkPath)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, errors.Wrapf(err, "read default link %q", f.DefaultLinkPath)
	}
	return filepath.Base(target) == slug, nil
}

func (f fileSafety) InUse(path string) (bool, error) {
	v, ok := os.LookupEnv("KOPI_JAVA_VERSION")
	if !ok {
		return false, nil
	}
	return filepath.Base(path) == v, nil
}
