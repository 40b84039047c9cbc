package tui

import (
	"errors"
	"testing"

	"github.com/watchparty/wpc/internal/api"
	"github.com/watchparty/wpc/internal/feed"
)

func TestParseRoomPath(t *testing.T) {
	tests := []struct {
		path   string
		wantID int
		wantOK bool
	}{
		{"/room/7", 7, true},
		{"/room/123", 123, true},
		{"/room/0", 0, false},
		{"/room/-1", 0, false},
		{"/room/abc", 0, false},
		{"/room/", 0, false},
		{"/rooms/7", 0, false},
		{"/", 0, false},
		{"/login", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			id, ok := parseRoomPath(tt.path)
			if id != tt.wantID || ok != tt.wantOK {
				t.Errorf("parseRoomPath(%q) = (%d, %v), want (%d, %v)", tt.path, id, ok, tt.wantID, tt.wantOK)
			}
		})
	}
}

func TestLoginFailureText(t *testing.T) {
	serverErr := &api.Error{StatusCode: 401, Message: "Invalid credentials."}
	if got := loginFailureText(serverErr); got != "Invalid credentials." {
		t.Errorf("loginFailureText(server error) = %q", got)
	}
	if got := loginFailureText(errors.New("dial tcp: refused")); got != "could not reach the server" {
		t.Errorf("loginFailureText(transport error) = %q", got)
	}
}

func TestPostFailureText(t *testing.T) {
	if got := postFailureText(feed.ErrEmptyMessage); got != "message body cannot be empty" {
		t.Errorf("postFailureText(empty) = %q", got)
	}
	serverErr := &api.Error{StatusCode: 400, Message: "Room does not exist."}
	if got := postFailureText(serverErr); got != "Room does not exist." {
		t.Errorf("postFailureText(server error) = %q", got)
	}
	if got := postFailureText(errors.New("dial tcp: refused")); got != "could not reach the server" {
		t.Errorf("postFailureText(transport error) = %q", got)
	}
}
