package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

var roomsCmd = &cobra.Command{
	Use:   "rooms",
	Short: "List rooms",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		client, err := a.authedClient()
		if err != nil {
			return err
		}

		rooms, err := client.Rooms(cmd.Context())
		if err != nil {
			return a.checkAPIError(err)
		}
		if len(rooms) == 0 {
			fmt.Println("No rooms yet. Create one with `wpc rooms create`.")
			return nil
		}
		for _, room := range rooms {
			fmt.Printf("%4d  %s\n", room.ID, room.Name)
		}
		return nil
	},
}

var roomsCreateCmd = &cobra.Command{
	Use:   "create [name]",
	Short: "Create a room",
	Long: `Create a room.

Without a name the server picks one.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		client, err := a.authedClient()
		if err != nil {
			return err
		}

		name := ""
		if len(args) == 1 {
			name = strings.TrimSpace(args[0])
		}
		room, err := client.CreateRoom(cmd.Context(), name)
		if err != nil {
			return a.checkAPIError(err)
		}
		fmt.Printf("Created room %d (%s). Join it with `wpc chat %d`.\n", room.ID, room.Name, room.ID)
		return nil
	},
}

var roomsRenameCmd = &cobra.Command{
	Use:   "rename <room-id> <new-name>",
	Short: "Rename a room",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		client, err := a.authedClient()
		if err != nil {
			return err
		}

		roomID, err := parseRoomID(args[0])
		if err != nil {
			return err
		}
		newName := strings.TrimSpace(args[1])
		if newName == "" {
			return fmt.Errorf("room name cannot be empty")
		}

		if err := client.RenameRoom(cmd.Context(), roomID, newName); err != nil {
			return a.checkAPIError(err)
		}
		fmt.Printf("Room %d renamed to %s.\n", roomID, newName)
		return nil
	},
}

var postCmd = &cobra.Command{
	Use:   "post <room-id> <message>",
	Short: "Post a message to a room",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		client, err := a.authedClient()
		if err != nil {
			return err
		}

		roomID, err := parseRoomID(args[0])
		if err != nil {
			return err
		}
		body := strings.TrimSpace(args[1])
		if body == "" {
			return fmt.Errorf("message body cannot be empty")
		}

		msg, err := client.PostMessage(cmd.Context(), roomID, body)
		if err != nil {
			return a.checkAPIError(err)
		}
		fmt.Printf("Posted message %d to room %d.\n", msg.ID, msg.RoomID)
		return nil
	},
}

func parseRoomID(arg string) (int, error) {
	roomID, err := strconv.Atoi(arg)
	if err != nil || roomID <= 0 {
		return 0, fmt.Errorf("invalid room id %q", arg)
	}
	return roomID, nil
}

func init() {
	roomsCmd.AddCommand(roomsCreateCmd)
	roomsCmd.AddCommand(roomsRenameCmd)
}
