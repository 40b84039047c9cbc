package commands

import (
	"fmt"
	"os"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var loginCmd = &cobra.Command{
	Use:   "login <username>",
	Short: "Log in and store the session",
	Long: `Log in to the Watch Party server.

Prompts for the password without echoing it. On success the API key,
user id, and display name are stored as a unit in the session file and
reused by every other command until logout.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}

		password, err := promptPassword("Password: ")
		if err != nil {
			return err
		}

		client := unauthenticatedClient(a)
		resp, err := client.Login(cmd.Context(), args[0], password)
		if err != nil {
			return loginError(err)
		}

		a.store.Login(resp.APIKey, resp.UserID, resp.UserName)
		fmt.Printf("Logged in as %s (user %d)\n", resp.UserName, resp.UserID)
		return nil
	},
}

var signupCmd = &cobra.Command{
	Use:   "signup",
	Short: "Create a fresh account and log in",
	Long: `Create a new account.

The server mints a randomly named user; use "wpc profile name" to pick
a display name afterwards. The new session is stored immediately.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}

		client := unauthenticatedClient(a)
		resp, err := client.Signup(cmd.Context())
		if err != nil {
			return loginError(err)
		}

		a.store.Login(resp.APIKey, resp.UserID, resp.UserName)
		fmt.Printf("Signed up as %s (user %d)\n", resp.UserName, resp.UserID)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Log out and forget the stored session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		if !a.store.IsAuthenticated() {
			fmt.Println("Already logged out.")
			return nil
		}
		a.store.Logout()
		fmt.Println("Logged out.")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the logged-in user",
	Long: `Show the logged-in user.

Verifies the stored credential against the server, so an expired key is
detected (and cleared) here rather than on the next chat.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		client, err := a.authedClient()
		if err != nil {
			return err
		}

		profile, err := client.Profile(cmd.Context())
		if err != nil {
			return a.checkAPIError(err)
		}
		fmt.Printf("%s (user %d) @ %s\n", profile.UserName, profile.UserID, a.cfg.ServerURL)
		return nil
	},
}

func promptPassword(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	pw, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("reading password: %w", err)
	}
	return string(pw), nil
}
