package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Update display name or password",
}

var profileNameCmd = &cobra.Command{
	Use:   "name <new-name>",
	Short: "Change your display name",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		client, err := a.authedClient()
		if err != nil {
			return err
		}

		newName := strings.TrimSpace(args[0])
		if newName == "" {
			return fmt.Errorf("display name cannot be empty")
		}
		if newName == a.store.Current().DisplayName {
			fmt.Println("That is already your display name.")
			return nil
		}

		if err := client.UpdateUserName(cmd.Context(), newName); err != nil {
			return a.checkAPIError(err)
		}
		a.store.UpdateDisplayName(newName)
		fmt.Printf("Display name updated to %s.\n", newName)
		return nil
	},
}

var profilePasswordCmd = &cobra.Command{
	Use:   "password",
	Short: "Change your password",
	Long: `Change your password.

Prompts twice; both entries must match and be non-empty before any
request is sent.`,
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

		newPassword, err := promptPassword("New password: ")
		if err != nil {
			return err
		}
		confirm, err := promptPassword("Repeat password: ")
		if err != nil {
			return err
		}
		if err := ValidateNewPassword(newPassword, confirm); err != nil {
			return err
		}

		if err := client.UpdatePassword(cmd.Context(), newPassword, confirm); err != nil {
			return a.checkAPIError(err)
		}
		fmt.Println("Password updated.")
		return nil
	},
}

// ValidateNewPassword checks a password change before it reaches the
// network.
func ValidateNewPassword(newPassword, confirm string) error {
	if newPassword == "" || confirm == "" {
		return fmt.Errorf("password cannot be empty")
	}
	if newPassword != confirm {
		return fmt.Errorf("passwords do not match")
	}
	return nil
}

func init() {
	profileCmd.AddCommand(profileNameCmd)
	profileCmd.AddCommand(profilePasswordCmd)
}
