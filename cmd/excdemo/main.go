// Command excdemo runs the exception-handling demonstration cases: catch and
// finally, a caught exception that does not leak, propagation to an enclosing
// region, an unhandled exception, the short circuit of an unhandled exception,
// and a double exception. The last three run under a recovery boundary.
package main

import (
	"os"
)

func main() {
	cmd := newRootCmd(os.Stdout, os.Stderr)
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
