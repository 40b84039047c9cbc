package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/watchparty/wpc/internal/guard"
	"github.com/watchparty/wpc/internal/tui"
)

var chatCmd = &cobra.Command{
	Use:   "chat [room-id]",
	Short: "Open the interactive UI",
	Long: `Open the interactive UI.

With a room id, heads straight for that room. If you are not logged in
you land on the login view first and are dropped into the room once
login succeeds.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runChat,
}

func runChat(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	initialPath := guard.DefaultLandingPath
	if len(args) == 1 {
		roomID, err := parseRoomID(args[0])
		if err != nil {
			return err
		}
		initialPath = fmt.Sprintf("/room/%d", roomID)
	}

	return tui.Run(tui.Options{
		ServerURL:   a.cfg.ServerURL,
		Store:       a.store,
		Logger:      a.cfg.Logger(os.Stderr),
		InitialPath: initialPath,
	})
}
