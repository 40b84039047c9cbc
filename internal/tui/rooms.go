package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/watchparty/wpc/internal/api"
	"github.com/watchparty/wpc/internal/session"
)

type roomsLoadedMsg struct {
	rooms []api.Room
	err   error
}

type roomCreatedMsg struct {
	room *api.Room
	err  error
}

type roomsModel struct {
	rooms    []api.Room
	cursor   int
	loading  bool
	loadErr  string
	creating bool
	input    textinput.Model
	status   string
}

func newRoomsModel() roomsModel {
	input := textinput.New()
	input.Placeholder = "room name (empty for a random one)"
	input.CharLimit = 64
	input.Width = 40
	input.Prompt = "> "
	return roomsModel{input: input}
}

func (r roomsModel) startLoading() roomsModel {
	r.loading = true
	r.loadErr = ""
	r.status = ""
	r.creating = false
	return r
}

func (r roomsModel) setLoaded(msg roomsLoadedMsg) roomsModel {
	r.loading = false
	if msg.err != nil {
		r.loadErr = api.ServerMessage(msg.err)
		return r
	}
	r.rooms = msg.rooms
	if r.cursor >= len(r.rooms) {
		r.cursor = 0
	}
	return r
}

func (r roomsModel) setStatus(status string) roomsModel {
	r.status = status
	r.creating = false
	return r
}

func loadRoomsCmd(client *api.Client) tea.Cmd {
	return func() tea.Msg {
		rooms, err := client.Rooms(context.Background())
		return roomsLoadedMsg{rooms: rooms, err: err}
	}
}

func createRoomCmd(client *api.Client, name string) tea.Cmd {
	return func() tea.Msg {
		room, err := client.CreateRoom(context.Background(), name)
		return roomCreatedMsg{room: room, err: err}
	}
}

func (m appModel) updateRooms(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	if m.rooms.creating {
		switch keyMsg.Type {
		case tea.KeyEsc:
			m.rooms.creating = false
			m.rooms.input.Reset()
			return m, nil
		case tea.KeyEnter:
			name := strings.TrimSpace(m.rooms.input.Value())
			m.rooms.input.Reset()
			m.rooms.status = "Creating room..."
			return m, createRoomCmd(m.authedClient(), name)
		}
		var cmd tea.Cmd
		m.rooms.input, cmd = m.rooms.input.Update(msg)
		return m, cmd
	}

	switch keyMsg.String() {
	case "up", "k":
		if m.rooms.cursor > 0 {
			m.rooms.cursor--
		}
	case "down", "j":
		if m.rooms.cursor < len(m.rooms.rooms)-1 {
			m.rooms.cursor++
		}
	case "enter":
		if m.rooms.cursor < len(m.rooms.rooms) {
			room := m.rooms.rooms[m.rooms.cursor]
			return m.navigate(fmt.Sprintf("/room/%d", room.ID))
		}
	case "n":
		m.rooms.creating = true
		m.rooms.status = ""
		return m, m.rooms.input.Focus()
	case "r":
		m.rooms = m.rooms.startLoading()
		return m, loadRoomsCmd(m.authedClient())
	case "l":
		m.opts.Store.Logout()
		return m, nil
	case "q":
		return m, tea.Quit
	}
	return m, nil
}

func (r roomsModel) view(current session.Session, width int) string {
	title := titleStyle.Render("Watch Party")
	who := mutedStyle.Render(fmt.Sprintf("logged in as %s", current.DisplayName))

	var body string
	switch {
	case r.loading:
		body = mutedStyle.Render("Loading rooms...")
	case r.loadErr != "":
		body = errorStyle.Render(r.loadErr)
	case len(r.rooms) == 0:
		body = "No rooms yet! You get to be first."
	default:
		var b strings.Builder
		for i, room := range r.rooms {
			line := fmt.Sprintf("%4d  %s", room.ID, room.Name)
			if i == r.cursor {
				line = selectedStyle.Render("» " + line)
			} else {
				line = "  " + line
			}
			b.WriteString(line)
			b.WriteString("\n")
		}
		body = strings.TrimRight(b.String(), "\n")
	}

	sections := []string{title, who, "", body}
	if r.creating {
		sections = append(sections, "", "New room:", r.input.View())
	}
	if r.status != "" {
		sections = append(sections, "", statusStyle.Render(r.status))
	}
	help := "enter: join · n: new room · r: reload · l: log out · q: quit"
	sections = append(sections, "", mutedStyle.Render(help))

	return boxStyle.Width(max(width-4, 44)).Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
}
