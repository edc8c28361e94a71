package glue

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kopi-vm/kopi/pkg/kopilock"
)

type fakeSafety struct {
	activeDefault bool
	inUse         bool
}

func (f fakeSafety) IsActiveDefault(slug string) (bool, error) { return f.activeDefault, nil }
func (f fakeSafety) InUse(path string) (bool, error)           { return f.inUse, nil }

func TestUninstall_RemovesInstallation(t *testing.T) {
	home := t.TempDir()
	jdksDir := filepath.Join(home, "jdks")
	dest := filepath.Join(jdksDir, "temurin@21")
	require.NoError(t, os.MkdirAll(dest, 0o755))

	coord := kopilock.UninstallScope("temurin", "temurin@21")
	err := Uninstall(coord, fakeSafety{}, UninstallOptions{
		Home:      home,
		Resolver:  kopilock.Resolver{},
		Sources:   kopilock.Sources{CLI: "1"},
		Inspector: fakeInspector{},
		JdksDir:   jdksDir,
	})
	require.NoError(t, err)
	_, statErr := os.Stat(dest)
	assert.True(t, os.IsNotExist(statErr))
	_, statErr = os.Stat(filepath.Join(jdksDir, ".temurin@21.removing"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestUninstall_ClearsStaleStagingDirectoryBeforeRenaming(t *testing.T) {
	home := t.TempDir()
	jdksDir := filepath.Join(home, "jdks")
	dest := filepath.Join(jdksDir, "temurin@21")
	stale := filepath.Join(jdksDir, ".temurin@21.removing")
	require.NoError(t, os.MkdirAll(dest, 0o755))
	require.NoError(t, os.MkdirAll(stale, 0o755))

	coord := kopilock.UninstallScope("temurin", "temurin@21")
	err := Uninstall(coord, fakeSafety{}, UninstallOptions{
		Home:      home,
		Resolver:  kopilock.Resolver{},
		Sources:   kopilock.Sources{CLI: "1"},
		Inspector: fakeInspector{},
		JdksDir:   jdksDir,
	})
	require.NoError(t, err)
	_, statErr := os.Stat(dest)
	assert.True(t, os.IsNotExist(statErr))
	_, statErr = os.Stat(stale)
	assert.True(t, os.IsNotExist(statErr))
}

func TestUninstall_RefusesActiveDefaultWithoutForce(t *testing.T) {
	home := t.TempDir()
	jdksDir := filepath.Join(home, "jdks")
	coord := kopilock.UninstallScope("temurin", "temurin@21")

	err := Uninstall(coord, fakeSafety{activeDefault: true}, UninstallOptions{
		Home:      home,
		Resolver:  kopilock.Resolver{},
		Inspector: fakeInspector{},
		JdksDir:   jdksDir,
	})
	assert.True(t, errors.Is(err, ErrRefusedActiveDefault))
}

func TestUninstall_RefusesInUseWithoutForce(t *testing.T) {
	home := t.TempDir()
	jdksDir := filepath.Join(home, "jdks")
	coord := kopilock.UninstallScope("temurin", "temurin@21")

	err := Uninstall(coord, fakeSafety{inUse: true}, UninstallOptions{
		Home:      home,
		Resolver:  kopilock.Resolver{},
		Inspector: fakeInspector{},
		JdksDir:   jdksDir,
	})
	assert.True(t, errors.Is(err, ErrRefusedInUse))
}

func TestUninstall_ForceBypassesSafetyButNotTheLock(t *testing.T) {
	home := t.TempDir()
	jdksDir := filepath.Join(home, "jdks")
	dest := filepath.Join(jdksDir, "temurin@21")
	require.NoError(t, os.MkdirAll(dest, 0o755))

	coord := kopilock.UninstallScope("temurin", "temurin@21")
	err := Uninstall(coord, fakeSafety{activeDefault: true, inUse: true}, UninstallOptions{
		Home:      home,
		Resolver:  kopilock.Resolver{},
		Sources:   kopilock.Sources{CLI: "1"},
		Inspector: fakeInspector{},
		JdksDir:   jdksDir,
		Force:     true,
	})
	require.NoError(t, err)
	_, statErr := os.Stat(dest)
	assert.True(t, os.IsNotExist(statErr))
}

func TestUninstallMany_ContinuesPastPerTargetFailure(t *testing.T) {
	home := t.TempDir()
	jdksDir := filepath.Join(home, "jdks")
	destOK := filepath.Join(jdksDir, "temurin@21")
	destRefused := filepath.Join(jdksDir, "temurin@17")
	require.NoError(t, os.MkdirAll(destOK, 0o755))
	require.NoError(t, os.MkdirAll(destRefused, 0o755))

	targets := []UninstallTarget{
		{Slug: "temurin@17", Scope: kopilock.UninstallScope("temurin", "temurin@17")},
		{Slug: "temurin@21", Scope: kopilock.UninstallScope("temurin", "temurin@21")},
	}

	results := UninstallMany(targets, activeDefaultExcept("temurin@21"), UninstallOptions{
		Home:      home,
		Resolver:  kopilock.Resolver{},
		Sources:   kopilock.Sources{CLI: "1"},
		Inspector: fakeInspector{},
		JdksDir:   jdksDir,
	})

	require.Len(t, results, 2)
	assert.Equal(t, "temurin@17", results[0].Slug)
	assert.True(t, errors.Is(results[0].Err, ErrRefusedActiveDefault))
	assert.Equal(t, "temurin@21", results[1].Slug)
	assert.NoError(t, results[1].Err)

	_, statErr := os.Stat(destRefused)
	assert.NoError(t, statErr, "refused target must remain in place")
	_, statErr = os.Stat(destOK)
	assert.True(t, os.IsNotExist(statErr), "non-refused target must be removed")
}

// activeDefaultExcept reports every slug other than keep as the active
// default, so a batch test can force exactly one per-target refusal.
type activeDefaultExcept string

func (keep activeDefaultExcept) IsActiveDefault(slug string) (bool, error) {
	return slug != string(keep), nil
}
func (activeDefaultExcept) InUse(path string) (bool, error) { return false, nil }
