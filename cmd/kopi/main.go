// Command kopi is the JDK manager CLI this module's locking core backs:
// install, uninstall, and cache-refresh each acquire the scoped lock
// appropriate to the operation before touching $KOPI_HOME.
package main

import (
	"os"

	"k8s.io/klog/v2"

	"github.com/kopi-vm/kopi/internal/exitcode"
)

func main() {
	defer klog.Flush()
	if err := NewRootCommand().Execute(); err != nil {
		os.Exit(exitcode.For(err))
	}
}
