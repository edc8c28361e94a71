package main

import (
	"os"
	"path/filepath"

	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/cobra"
	"k8s.io/klog/v2"

	"github.com/kopi-vm/kopi/internal/kopiconfig"
	"github.com/kopi-vm/kopi/pkg/kopilock"
	"github.com/kopi-vm/kopi/pkg/kopilock/feedback"
)

// GlobalOptions holds the persistent flags every subcommand shares, in
// the teacher's Options-struct-plus-AddFlags idiom (pkg/controller/controllercmd).
type GlobalOptions struct {
	Home           string
	LockTimeout    string
	Force          bool
	Quiet          bool
	NonInteractive bool
}

func (o *GlobalOptions) AddFlags(cmd *cobra.Command) {
	home, _ := os.UserHomeDir()
	defaultHome := filepath.Join(home, ".kopi")
	if env := os.Getenv("KOPI_HOME"); env != "" {
		defaultHome = env
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&o.Home, "home", defaultHome, "Kopi home directory (KOPI_HOME)")
	flags.StringVar(&o.LockTimeout, "lock-timeout", "", "lock wait timeout in seconds, or \"infinite\" (overrides config and KOPI_LOCK_TIMEOUT)")
	flags.BoolVar(&o.Force, "force", false, "bypass safety checks (never bypasses lock acquisition)")
	flags.BoolVar(&o.Quiet, "quiet", false, "suppress lock-wait progress feedback")
	flags.BoolVar(&o.NonInteractive, "non-interactive", false, "never use interactive (carriage-return) progress rendering")
}

// sourcesFor builds a kopilock.Sources for scopeLabel, merging the
// --lock-timeout flag, KOPI_LOCK_TIMEOUT environment variable, and the
// on-disk config file, in that precedence order.
func (o *GlobalOptions) sourcesFor(scopeLabel string) kopilock.Sources {
	cfg, err := kopiconfig.Load(kopiconfig.DefaultPath(o.Home))
	if err != nil {
		klog.Warningf("kopi: ignoring unreadable config file: %v", err)
	}
	return kopilock.Sources{
		CLI:    o.LockTimeout,
		Env:    os.Getenv("KOPI_LOCK_TIMEOUT"),
		Config: cfg.TimeoutFor(scopeLabel),
	}
}

func (o *GlobalOptions) observer() kopilock.WaitObserver {
	if o.Quiet {
		return feedback.NewDefaultBridge(true)
	}
	if o.NonInteractive {
		return feedback.NewBridge(feedback.NewLineBased(os.Stdout, 0))
	}
	return feedback.NewDefaultBridge(false)
}

func (o *GlobalOptions) resolver() kopilock.Resolver {
	return kopilock.Resolver{}
}

// NewRootCommand builds the kopi root command and its install/uninstall/
// cache-refresh subcommands.
func NewRootCommand() *cobra.Command {
	o := &GlobalOptions{}

	cmd := &cobra.Command{
		Use:           "kopi",
		Short:         "A JDK version manager.",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			klog.V(1).Info(spew.Sdump(o))
		},
	}
	o.AddFlags(cmd)

	cmd.AddCommand(newInstallCommand(o))
	cmd.AddCommand(newUninstallCommand(o))
	cmd.AddCommand(newCacheRefreshCommand(o))
	return cmd
}
