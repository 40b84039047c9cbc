// wpc - terminal client for a Watch Party server.
//
// Run with no arguments to open the interactive UI, or use the
// subcommands (login, rooms, post, ...) for scripting. The session is
// stored on disk and survives restarts; see `wpc --help`.
package main

import (
	"fmt"
	"os"

	"github.com/watchparty/wpc/internal/commands"
)

// Version information (set by goreleaser)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.SetVersionInfo(version, commit, date)

	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
