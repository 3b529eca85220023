// Command terminus is a terminal assistant that edits files, runs commands and
// works with git on request, asking before it does anything risky.
package main

import (
	"os"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
