// Package tui is the interactive terminal UI: a login view, a room
// list, and a room chat view. It is a caller of the core packages; all
// session, routing, and sync decisions live in session, guard, and feed.
package tui

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/watchparty/wpc/internal/api"
	"github.com/watchparty/wpc/internal/feed"
	"github.com/watchparty/wpc/internal/guard"
	"github.com/watchparty/wpc/internal/session"
)

// Options configures the UI.
type Options struct {
	ServerURL   string
	Store       *session.Store
	Logger      zerolog.Logger
	InitialPath string
}

// Run opens the UI and blocks until the user quits.
func Run(opts Options) error {
	g := guard.New(opts.Store)
	g.Init(opts.Store.Current())
	defer g.Close()

	events := make(chan tea.Msg, 16)
	unsubscribe := opts.Store.Subscribe(func(s session.Session) {
		select {
		case events <- sessionChangedMsg{session: s}:
		default:
		}
	})
	defer unsubscribe()

	m := newAppModel(opts, g, events)
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// Messages delivered from outside bubbletea's own event loop.
type (
	sessionChangedMsg struct{ session session.Session }
	feedChangedMsg    struct{}
)

type appModel struct {
	opts   Options
	guard  *guard.Guard
	events chan tea.Msg

	route  string
	width  int
	height int

	login loginModel
	rooms roomsModel
	room  *roomModel

	initCmd tea.Cmd
}

func newAppModel(opts Options, g *guard.Guard, events chan tea.Msg) appModel {
	m := appModel{
		opts:   opts,
		guard:  g,
		events: events,
		login:  newLoginModel(),
		rooms:  newRoomsModel(),
	}
	m, cmd := m.navigate(opts.InitialPath)
	m.initCmd = cmd
	return m
}

// listenEvents forwards session and feed notifications into the UI
// loop. Re-armed after every delivery.
func listenEvents(events chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		return <-events
	}
}

func (m appModel) Init() tea.Cmd {
	return tea.Batch(listenEvents(m.events), m.initCmd)
}

// navigate asks the guard whether path may be entered and transitions
// the view accordingly. A denial lands on the login view with the
// target remembered by the guard.
func (m appModel) navigate(path string) (appModel, tea.Cmd) {
	// The login view is reachable without authorization; asking the
	// guard about it would overwrite the pending navigation it just
	// captured.
	if path == guard.LoginPath {
		m = m.closeRoom()
		m.route = guard.LoginPath
		m.login = newLoginModel()
		return m, m.login.focusCmd()
	}

	decision, err := m.guard.Authorize(path)
	if err != nil || decision == guard.Deny {
		m = m.closeRoom()
		m.route = guard.LoginPath
		m.login = newLoginModel()
		return m, m.login.focusCmd()
	}

	if roomID, ok := parseRoomPath(path); ok {
		return m.openRoom(roomID)
	}

	m = m.closeRoom()
	m.route = guard.DefaultLandingPath
	m.rooms = m.rooms.startLoading()
	return m, loadRoomsCmd(m.authedClient())
}

// openRoom tears down any previous engine and scopes a fresh one to the
// requested room and the current credential.
func (m appModel) openRoom(roomID int) (appModel, tea.Cmd) {
	m = m.closeRoom()

	engine := feed.New(roomID, m.authedClient(), m.opts.Store, m.opts.Logger)
	events := m.events
	unsubscribe := engine.Subscribe(func() {
		select {
		case events <- feedChangedMsg{}:
		default:
			// A notification is already queued; the handler reads the
			// latest snapshot anyway.
		}
	})
	engine.Start()

	room := newRoomModel(roomID, engine, unsubscribe)
	room.resize(m.width, m.height)
	m.room = &room
	m.route = fmt.Sprintf("/room/%d", roomID)
	return m, m.room.focusCmd()
}

func (m appModel) closeRoom() appModel {
	if m.room != nil {
		m.room.close()
		m.room = nil
	}
	return m
}

func (m appModel) authedClient() *api.Client {
	return api.NewWithAPIKey(m.opts.ServerURL, m.opts.Store.Current().APIKey)
}

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.room != nil {
			m.room.resize(msg.Width, msg.Height)
		}
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m = m.closeRoom()
			return m, tea.Quit
		}

	case sessionChangedMsg:
		if !msg.session.Valid() {
			// Logout or mid-session expiry: the guard has already
			// captured the current path for after re-login.
			next, cmd := m.navigate(guard.LoginPath)
			return next, tea.Batch(listenEvents(m.events), cmd)
		}
		return m, listenEvents(m.events)

	case feedChangedMsg:
		if m.room != nil {
			m.room.refresh()
		}
		return m, listenEvents(m.events)

	case loginResultMsg:
		next, cmd := m.handleLoginResult(msg)
		return next, cmd

	case roomsLoadedMsg:
		if api.IsAuthorizationRejected(msg.err) {
			m.opts.Store.Logout()
			return m, nil
		}
		m.rooms = m.rooms.setLoaded(msg)
		return m, nil

	case roomCreatedMsg:
		if msg.err != nil {
			if api.IsAuthorizationRejected(msg.err) {
				m.opts.Store.Logout()
				return m, nil
			}
			m.rooms = m.rooms.setStatus(api.ServerMessage(msg.err))
			return m, nil
		}
		// Head straight into the freshly created room.
		return m.navigate(fmt.Sprintf("/room/%d", msg.room.ID))
	}

	switch m.route {
	case guard.LoginPath:
		return m.updateLogin(msg)
	case guard.DefaultLandingPath:
		return m.updateRooms(msg)
	default:
		return m.updateRoom(msg)
	}
}

func (m appModel) handleLoginResult(msg loginResultMsg) (appModel, tea.Cmd) {
	m.login = m.login.finishSubmit()
	if msg.err != nil {
		m.login = m.login.setError(loginFailureText(msg.err))
		return m, nil
	}

	m.opts.Store.Login(msg.resp.APIKey, msg.resp.UserID, msg.resp.UserName)
	target := m.guard.ResolveLoginTarget()
	return m.navigate(target)
}

func (m appModel) View() string {
	switch m.route {
	case guard.LoginPath:
		return m.login.view(m.width)
	case guard.DefaultLandingPath:
		return m.rooms.view(m.opts.Store.Current(), m.width)
	default:
		if m.room != nil {
			return m.room.view(m.opts.Store.Current())
		}
		return ""
	}
}

func parseRoomPath(path string) (int, bool) {
	rest, ok := strings.CutPrefix(path, "/room/")
	if !ok {
		return 0, false
	}
	roomID, err := strconv.Atoi(rest)
	if err != nil || roomID <= 0 {
		return 0, false
	}
	return roomID, true
}
