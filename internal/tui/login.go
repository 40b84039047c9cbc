package tui

import (
	"context"
	"errors"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/watchparty/wpc/internal/api"
)

// loginResultMsg carries the outcome of a login or signup attempt.
type loginResultMsg struct {
	resp *api.AuthResponse
	err  error
}

type loginModel struct {
	username   textinput.Model
	password   textinput.Model
	focusIndex int
	submitting bool
	errMsg     string
}

func newLoginModel() loginModel {
	username := textinput.New()
	username.Placeholder = "username"
	username.CharLimit = 64
	username.Width = 32
	username.Prompt = "> "

	password := textinput.New()
	password.Placeholder = "password"
	password.CharLimit = 128
	password.Width = 32
	password.Prompt = "> "
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '*'

	return loginModel{username: username, password: password}
}

func (l loginModel) focusCmd() tea.Cmd {
	return l.username.Focus()
}

func (l loginModel) finishSubmit() loginModel {
	l.submitting = false
	return l
}

func (l loginModel) setError(msg string) loginModel {
	l.errMsg = msg
	return l
}

func (m appModel) updateLogin(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	if m.login.submitting {
		return m, nil
	}

	switch keyMsg.Type {
	case tea.KeyTab, tea.KeyShiftTab, tea.KeyDown, tea.KeyUp:
		m.login.focusIndex = (m.login.focusIndex + 1) % 2
		if m.login.focusIndex == 0 {
			m.login.password.Blur()
			return m, m.login.username.Focus()
		}
		m.login.username.Blur()
		return m, m.login.password.Focus()

	case tea.KeyEnter:
		username := m.login.username.Value()
		password := m.login.password.Value()
		if username == "" || password == "" {
			m.login.errMsg = "username and password are required"
			return m, nil
		}
		m.login.submitting = true
		m.login.errMsg = ""
		return m, loginCmd(m.opts.ServerURL, username, password)

	case tea.KeyCtrlS:
		m.login.submitting = true
		m.login.errMsg = ""
		return m, signupCmd(m.opts.ServerURL)
	}

	var cmd tea.Cmd
	if m.login.focusIndex == 0 {
		m.login.username, cmd = m.login.username.Update(msg)
	} else {
		m.login.password, cmd = m.login.password.Update(msg)
	}
	return m, cmd
}

func loginCmd(serverURL, username, password string) tea.Cmd {
	return func() tea.Msg {
		resp, err := api.New(serverURL).Login(context.Background(), username, password)
		return loginResultMsg{resp: resp, err: err}
	}
}

func signupCmd(serverURL string) tea.Cmd {
	return func() tea.Msg {
		resp, err := api.New(serverURL).Signup(context.Background())
		return loginResultMsg{resp: resp, err: err}
	}
}

// loginFailureText distinguishes a rejected credential from the server
// being unreachable.
func loginFailureText(err error) string {
	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		return api.ServerMessage(err)
	}
	return "could not reach the server"
}

func (l loginModel) view(width int) string {
	title := titleStyle.Render("Watch Party")
	form := lipgloss.JoinVertical(lipgloss.Left,
		"Log in",
		"",
		l.username.View(),
		l.password.View(),
	)

	status := ""
	switch {
	case l.submitting:
		status = mutedStyle.Render("Signing in...")
	case l.errMsg != "":
		status = errorStyle.Render(l.errMsg)
	}

	help := mutedStyle.Render("enter: log in · ctrl+s: sign up · ctrl+c: quit")
	body := lipgloss.JoinVertical(lipgloss.Left, title, "", form, "", status, "", help)
	return boxStyle.Width(max(width-4, 44)).Render(body)
}
