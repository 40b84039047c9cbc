package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/watchparty/wpc/internal/api"
	"github.com/watchparty/wpc/internal/feed"
	"github.com/watchparty/wpc/internal/guard"
	"github.com/watchparty/wpc/internal/session"
)

type postResultMsg struct{ err error }

type renameResultMsg struct {
	changed bool
	err     error
}

// roomModel is the chat view for one room. It holds the engine whose
// lifetime matches the view's; leaving the room closes the engine.
type roomModel struct {
	roomID      int
	engine      *feed.Engine
	unsubscribe func()

	snapshot feed.Snapshot
	viewport viewport.Model
	composer textinput.Model
	renaming bool
	rename   textinput.Model
	status   string

	width  int
	height int
}

func newRoomModel(roomID int, engine *feed.Engine, unsubscribe func()) roomModel {
	composer := textinput.New()
	composer.Placeholder = "What do you have to say?"
	composer.CharLimit = 1024
	composer.Width = 60
	composer.Prompt = "> "

	rename := textinput.New()
	rename.Placeholder = "new room name"
	rename.CharLimit = 64
	rename.Width = 40
	rename.Prompt = "> "

	return roomModel{
		roomID:      roomID,
		engine:      engine,
		unsubscribe: unsubscribe,
		snapshot:    engine.Snapshot(),
		viewport:    viewport.New(80, 20),
		composer:    composer,
		rename:      rename,
	}
}

func (r *roomModel) focusCmd() tea.Cmd {
	return r.composer.Focus()
}

func (r *roomModel) close() {
	if r.unsubscribe != nil {
		r.unsubscribe()
	}
	r.engine.Close()
}

func (r *roomModel) resize(width, height int) {
	r.width = width
	r.height = height
	vpWidth := max(width-6, 40)
	vpHeight := max(height-10, 5)
	r.viewport.Width = vpWidth
	r.viewport.Height = vpHeight
	r.composer.Width = max(vpWidth-4, 20)
	r.renderMessages()
}

// refresh pulls the latest engine snapshot into the view.
func (r *roomModel) refresh() {
	r.snapshot = r.engine.Snapshot()
	r.renderMessages()
}

func (r *roomModel) renderMessages() {
	var b strings.Builder
	for _, msg := range r.snapshot.Messages {
		b.WriteString(authorStyle.Render(msg.DisplayAuthor() + ":"))
		b.WriteString(" ")
		b.WriteString(msg.Body)
		b.WriteString("\n")
	}
	r.viewport.SetContent(b.String())
	r.viewport.GotoBottom()
}

func (m appModel) updateRoom(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.room == nil {
		return m, nil
	}

	switch msg := msg.(type) {
	case postResultMsg:
		if msg.err != nil {
			m.room.status = postFailureText(msg.err)
		}
		return m, nil

	case renameResultMsg:
		switch {
		case msg.err != nil:
			m.room.status = api.ServerMessage(msg.err)
		case !msg.changed:
			m.room.status = "room name unchanged"
		default:
			m.room.status = ""
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleRoomKey(msg)
	}

	var cmd tea.Cmd
	m.room.viewport, cmd = m.room.viewport.Update(msg)
	return m, cmd
}

func (m appModel) handleRoomKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.room.renaming {
		switch msg.Type {
		case tea.KeyEsc:
			m.room.renaming = false
			m.room.rename.Reset()
			return m, m.room.composer.Focus()
		case tea.KeyEnter:
			newName := m.room.rename.Value()
			m.room.renaming = false
			m.room.rename.Reset()
			return m, tea.Batch(m.room.composer.Focus(), renameCmd(m.room.engine, newName))
		}
		var cmd tea.Cmd
		m.room.rename, cmd = m.room.rename.Update(msg)
		return m, cmd
	}

	switch msg.Type {
	case tea.KeyEsc:
		return m.navigate(guard.DefaultLandingPath)
	case tea.KeyCtrlR:
		m.room.renaming = true
		m.room.status = ""
		if room := m.room.snapshot.Room; room != nil {
			m.room.rename.SetValue(room.Name)
		}
		m.room.composer.Blur()
		return m, m.room.rename.Focus()
	case tea.KeyEnter:
		body := m.room.composer.Value()
		if strings.TrimSpace(body) == "" {
			m.room.status = "message body cannot be empty"
			return m, nil
		}
		m.room.composer.Reset()
		m.room.status = ""
		return m, postCmd(m.room.engine, body)
	}

	var cmd tea.Cmd
	m.room.composer, cmd = m.room.composer.Update(msg)
	return m, cmd
}

func postCmd(engine *feed.Engine, body string) tea.Cmd {
	return func() tea.Msg {
		return postResultMsg{err: engine.PostMessage(context.Background(), body)}
	}
}

func renameCmd(engine *feed.Engine, newName string) tea.Cmd {
	return func() tea.Msg {
		changed, err := engine.RenameRoom(context.Background(), newName)
		return renameResultMsg{changed: changed, err: err}
	}
}

func postFailureText(err error) string {
	if errors.Is(err, feed.ErrEmptyMessage) {
		return "message body cannot be empty"
	}
	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		return api.ServerMessage(err)
	}
	return "could not reach the server"
}

func (r *roomModel) view(current session.Session) string {
	snap := r.snapshot

	switch snap.Lifecycle {
	case feed.Idle, feed.Loading:
		return boxStyle.Render(mutedStyle.Render("Loading room..."))
	case feed.Failed:
		body := lipgloss.JoinVertical(lipgloss.Left,
			titleStyle.Render("Oops, something went wrong!"),
			"",
			errorStyle.Render(snap.LastError),
			"",
			mutedStyle.Render("esc: back to rooms · ctrl+c: quit"),
		)
		return boxStyle.Render(body)
	}

	roomName := fmt.Sprintf("Room %d", r.roomID)
	if snap.Room != nil {
		roomName = snap.Room.Name
	}
	header := titleStyle.Render("Chatting in "+roomName) + "  " +
		mutedStyle.Render(fmt.Sprintf("as %s", current.DisplayName))

	var feedView string
	if len(snap.Messages) == 0 {
		feedView = mutedStyle.Render("No messages yet! Be the first to say something.")
	} else {
		feedView = r.viewport.View()
	}

	input := r.composer.View()
	if r.renaming {
		input = "Rename room: " + r.rename.View()
	}

	sections := []string{header, "", feedView, "", input}
	if r.status != "" {
		sections = append(sections, statusStyle.Render(r.status))
	}
	sections = append(sections, mutedStyle.Render("enter: post · ctrl+r: rename room · esc: rooms · ctrl+c: quit"))

	return boxStyle.Width(max(r.width-4, 44)).Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
}
