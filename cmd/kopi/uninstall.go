package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kopi-vm/kopi/pkg/kopijdk"
	"github.com/kopi-vm/kopi/pkg/kopilock"
	"github.com/kopi-vm/kopi/pkg/kopilock/glue"
)

type uninstallOptions struct {
	global *GlobalOptions
}

func newUninstallCommand(global *GlobalOptions) *cobra.Command {
	o := &uninstallOptions{global: global}

	return &cobra.Command{
		Use:   "uninstall <slug> [slug...]",
		Short: "Uninstall one or more installed JDKs, each serialized against any concurrent install or uninstall of the same coordinate.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.run(args)
		},
	}
}

// run resolves each requested slug to its lock scope and removes the
// targets one at a time, per target acquiring its own lock, running
// safety checks, and releasing, so a contention/timeout/refusal on one
// slug does not prevent the remaining slugs from being processed.
func (o *uninstallOptions) run(slugs []string) error {
	resolver := kopijdk.Resolver{JdksDir: jdksDir(o.global.Home)}

	targets := make([]glue.UninstallTarget, 0, len(slugs))
	var resolveFailures int
	for _, slug := range slugs {
		scope, err := resolver.Resolve(slug)
		if err != nil {
			resolveFailures++
			fmt.Fprintf(os.Stderr, "kopi: uninstall %s: %v\n", slug, err)
			continue
		}
		targets = append(targets, glue.UninstallTarget{Slug: slug, Scope: scope})
	}

	results := glue.UninstallMany(targets, fileSafety{DefaultLinkPath: defaultLinkPath(o.global.Home)}, glue.UninstallOptions{
		Home:      o.global.Home,
		Sources:   o.global.sourcesFor(kopilock.KindUninstall.String()),
		Resolver:  o.global.resolver(),
		Observer:  o.global.observer(),
		Inspector: kopilock.DefaultInspector,
		JdksDir:   jdksDir(o.global.Home),
		Force:     o.global.Force,
	})

	failures := resolveFailures
	for _, result := range results {
		if result.Err != nil {
			failures++
			fmt.Fprintf(os.Stderr, "kopi: uninstall %s: %v\n", result.Slug, result.Err)
		}
	}
	if failures > 0 {
		return fmt.Errorf("uninstall: %d of %d target(s) failed", failures, len(slugs))
	}
	return nil
}
