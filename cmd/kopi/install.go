package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kopi-vm/kopi/pkg/kopilock"
	"github.com/kopi-vm/kopi/pkg/kopilock/glue"
)

type installOptions struct {
	global    *GlobalOptions
	SourceDir string
}

func newInstallCommand(global *GlobalOptions) *cobra.Command {
	o := &installOptions{global: global}

	cmd := &cobra.Command{
		Use:   "install <distribution>@<version>",
		Short: "Install a JDK, serialized against any concurrent install or uninstall of the same coordinate.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.run(args[0])
		},
	}
	cmd.Flags().StringVar(&o.SourceDir, "source-dir", "", "pre-staged JDK directory to install from (required)")
	return cmd
}

func (o *installOptions) run(coordinate string) error {
	if o.SourceDir == "" {
		return fmt.Errorf("install: --source-dir is required")
	}
	distribution, version, found := strings.Cut(coordinate, "@")
	if !found {
		return fmt.Errorf("install: coordinate must be <distribution>@<version>, got %q", coordinate)
	}
	slug := kopilock.Slugify(distribution, version)
	scope := kopilock.InstallScope(distribution, slug)

	return glue.Install(context.Background(), scope, copyInstaller{SourceDir: o.SourceDir}, glue.InstallOptions{
		Home:      o.global.Home,
		Sources:   o.global.sourcesFor(scope.Kind.String()),
		Resolver:  o.global.resolver(),
		Observer:  o.global.observer(),
		Inspector: kopilock.DefaultInspector,
		JdksDir:   jdksDir(o.global.Home),
	})
}
