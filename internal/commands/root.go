// Package commands implements the wpc CLI commands.
package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/watchparty/wpc/internal/api"
	"github.com/watchparty/wpc/internal/config"
	"github.com/watchparty/wpc/internal/session"
)

var versionInfo struct {
	version string
	commit  string
	date    string
}

// SetVersionInfo sets version information from main (populated by goreleaser).
func SetVersionInfo(version, commit, date string) {
	versionInfo.version = version
	versionInfo.commit = commit
	versionInfo.date = date
}

var rootCmd = &cobra.Command{
	Use:   "wpc",
	Short: "Watch Party chat client",
	Long: `wpc is a terminal client for a Watch Party server.

Running wpc with no arguments opens the interactive chat UI. The
subcommands cover the same operations for scripting.

Commands:
  wpc                   - Open the interactive UI
  wpc chat <room-id>    - Open the interactive UI directly in a room
  wpc login <username>  - Log in (prompts for password)
  wpc signup            - Create a fresh account and log in
  wpc logout            - Log out and forget the stored session
  wpc whoami            - Show the logged-in user
  wpc rooms             - List rooms
  wpc rooms create      - Create a room
  wpc rooms rename      - Rename a room
  wpc post              - Post a message to a room
  wpc profile           - Update display name or password

Environment variables:
  WATCHPARTY_URL           - API base URL (default: http://localhost:5000/api)
  WATCHPARTY_SESSION_FILE  - Session file (default: ~/.watchparty/session.yaml)
  WATCHPARTY_LOG_LEVEL     - Log level; unset disables logging`,
	// Errors are printed by main; don't duplicate them with usage spam.
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runChat(cmd, nil)
	},
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(signupCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(roomsCmd)
	rootCmd.AddCommand(postCmd)
	rootCmd.AddCommand(profileCmd)
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("wpc %s (commit %s, built %s)\n", versionInfo.version, versionInfo.commit, versionInfo.date)
	},
}

// app bundles the pieces every command needs.
type app struct {
	cfg   *config.Config
	store *session.Store
}

// newApp loads configuration, builds the session store, and restores
// any persisted session.
func newApp() (*app, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	store := session.NewStore(cfg.SessionPath, cfg.Logger(os.Stderr))
	store.Restore()
	return &app{cfg: cfg, store: store}, nil
}

// authedClient returns a client carrying the stored credential, or an
// error if no session is active.
func (a *app) authedClient() (*api.Client, error) {
	s := a.store.Current()
	if !s.Valid() {
		return nil, fmt.Errorf("not logged in (run `wpc login <username>` or `wpc signup`)")
	}
	return api.NewWithAPIKey(a.cfg.ServerURL, s.APIKey), nil
}

// checkAPIError clears the stored session when the server rejected the
// credential, and rewraps the error with the server's own message.
func (a *app) checkAPIError(err error) error {
	if err == nil {
		return nil
	}
	if api.IsAuthorizationRejected(err) {
		a.store.Logout()
		return fmt.Errorf("session expired, please log in again")
	}
	return fmt.Errorf("%s", api.ServerMessage(err))
}
