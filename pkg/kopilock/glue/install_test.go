package glue

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kopi-vm/kopi/pkg/kopilock"
)

type fakeInstaller struct {
	stagedAt   string
	finalized  string
	stageErr   error
	finalizeErr error
}

func (f *fakeInstaller) Stage(ctx context.Context, coord kopilock.Scope, dest string) error {
	f.stagedAt = dest
	if f.stageErr != nil {
		return f.stageErr
	}
	return os.WriteFile(filepath.Join(dest, "marker"), []byte("ok"), 0o644)
}

func (f *fakeInstaller) Finalize(ctx context.Context, dest string) error {
	f.finalized = dest
	return f.finalizeErr
}

func TestInstall_StagesAndFinalizes(t *testing.T) {
	home := t.TempDir()
	jdksDir := filepath.Join(home, "jdks")
	coord := kopilock.InstallScope("temurin", "temurin@21")
	installer := &fakeInstaller{}

	err := Install(context.Background(), coord, installer, InstallOptions{
		Home:      home,
		Resolver:  kopilock.Resolver{},
		Sources:   kopilock.Sources{CLI: "1"},
		Inspector: fakeInspector{},
		JdksDir:   jdksDir,
	})
	require.NoError(t, err)

	dest := filepath.Join(jdksDir, "temurin@21")
	assert.Equal(t, dest, installer.finalized)
	data, err := os.ReadFile(filepath.Join(dest, "marker"))
	require.NoError(t, err)
	assert.Equal(t, "ok", string(data))
}

func TestInstall_StageFailureLeavesNoDestination(t *testing.T) {
	home := t.TempDir()
	jdksDir := filepath.Join(home, "jdks")
	coord := kopilock.InstallScope("temurin", "temurin@21")
	installer := &fakeInstaller{stageErr: assertAnError}

	err := Install(context.Background(), coord, installer, InstallOptions{
		Home:      home,
		Resolver:  kopilock.Resolver{},
		Sources:   kopilock.Sources{CLI: "1"},
		Inspector: fakeInspector{},
		JdksDir:   jdksDir,
	})
	assert.Error(t, err)
	_, statErr := os.Stat(filepath.Join(jdksDir, "temurin@21"))
	assert.True(t, os.IsNotExist(statErr))
}

type fakeInspector struct{}

func (fakeInspector) Classify(dir string) (kopilock.VolumeClass, error) {
	return kopilock.RequiresFallback, nil
}

var assertAnError = os.ErrInvalid
