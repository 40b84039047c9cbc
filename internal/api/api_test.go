package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestLogin_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("Expected POST, got %s", r.Method)
		}
		if r.URL.Path != "/login" {
			t.Errorf("Expected /login, got %s", r.URL.Path)
		}
		// Login must not carry a credential
		if got := r.Header.Get("Api-Key"); got != "" {
			t.Errorf("Expected no Api-Key header, got %q", got)
		}

		var req struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("Failed to decode request: %v", err)
		}
		if req.Username != "ana" {
			t.Errorf("Expected username ana, got %s", req.Username)
		}

		json.NewEncoder(w).Encode(AuthResponse{
			Success:  true,
			APIKey:   "t1",
			UserName: "ana",
			UserID:   7,
		})
	}))
	defer server.Close()

	c := New(server.URL)
	resp, err := c.Login(context.Background(), "ana", "hunter2")
	if err != nil {
		t.Fatalf("Login() error: %v", err)
	}
	if resp.APIKey != "t1" || resp.UserID != 7 || resp.UserName != "ana" {
		t.Errorf("Unexpected response: %+v", resp)
	}
}

func TestLogin_InvalidCredentials(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"success": false, "message": "Invalid username or password."}`))
	}))
	defer server.Close()

	c := New(server.URL)
	_, err := c.Login(context.Background(), "ana", "wrong")
	if err == nil {
		t.Fatal("Expected error for 401 response")
	}

	var apiErr *Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("Expected *Error, got %T", err)
	}
	if apiErr.StatusCode != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", apiErr.StatusCode)
	}
	if apiErr.Message != "Invalid username or password." {
		t.Errorf("Expected server message, got %q", apiErr.Message)
	}
}

func TestRooms_SendsAPIKey(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Api-Key"); got != "t1" {
			t.Errorf("Expected Api-Key t1, got %q", got)
		}
		json.NewEncoder(w).Encode([]Room{{ID: 1, Name: "general"}, {ID: 2, Name: "movies"}})
	}))
	defer server.Close()

	c := NewWithAPIKey(server.URL, "t1")
	rooms, err := c.Rooms(context.Background())
	if err != nil {
		t.Fatalf("Rooms() error: %v", err)
	}
	if len(rooms) != 2 {
		t.Fatalf("Expected 2 rooms, got %d", len(rooms))
	}
	if rooms[1].Name != "movies" {
		t.Errorf("Expected movies, got %s", rooms[1].Name)
	}
}

func TestMessages(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/rooms/5/messages" {
			t.Errorf("Expected /rooms/5/messages, got %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode([]Message{
			{ID: 1, UserID: 7, RoomID: 5, Body: "hi", Author: "ana"},
			{ID: 2, UserID: 9, RoomID: 5, Body: "hello", Author: ""},
		})
	}))
	defer server.Close()

	c := NewWithAPIKey(server.URL, "t1")
	msgs, err := c.Messages(context.Background(), 5)
	if err != nil {
		t.Fatalf("Messages() error: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("Expected 2 messages, got %d", len(msgs))
	}
	if msgs[0].DisplayAuthor() != "ana" {
		t.Errorf("Expected ana, got %s", msgs[0].DisplayAuthor())
	}
	if msgs[1].DisplayAuthor() != "User 9" {
		t.Errorf("Expected fallback author, got %s", msgs[1].DisplayAuthor())
	}
}

func TestPostMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/rooms/5/messages" {
			t.Errorf("Unexpected request: %s %s", r.Method, r.URL.Path)
		}
		var req struct {
			Body string `json:"body"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("Failed to decode request: %v", err)
		}
		if req.Body != "hi there" {
			t.Errorf("Expected body 'hi there', got %q", req.Body)
		}
		w.Write([]byte(`{"success": true, "postedMessage": {"id": 3, "user_id": 7, "room_id": 5, "body": "hi there", "author": "ana"}}`))
	}))
	defer server.Close()

	c := NewWithAPIKey(server.URL, "t1")
	msg, err := c.PostMessage(context.Background(), 5, "hi there")
	if err != nil {
		t.Fatalf("PostMessage() error: %v", err)
	}
	if msg.ID != 3 || msg.Body != "hi there" {
		t.Errorf("Unexpected message: %+v", msg)
	}
}

func TestPostMessage_MissingConfirmation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success": true}`))
	}))
	defer server.Close()

	c := NewWithAPIKey(server.URL, "t1")
	_, err := c.PostMessage(context.Background(), 5, "hi")
	if err == nil {
		t.Error("Expected error when postedMessage is missing")
	}
}

func TestCreateRoom(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"success": true, "room": {"id": 9, "name": "movie night"}}`))
	}))
	defer server.Close()

	c := NewWithAPIKey(server.URL, "t1")
	room, err := c.CreateRoom(context.Background(), "movie night")
	if err != nil {
		t.Fatalf("CreateRoom() error: %v", err)
	}
	if room.ID != 9 || room.Name != "movie night" {
		t.Errorf("Unexpected room: %+v", room)
	}
}

func TestIsAuthorizationRejected(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"401", &Error{StatusCode: http.StatusUnauthorized}, true},
		{"403", &Error{StatusCode: http.StatusForbidden}, true},
		{"404", &Error{StatusCode: http.StatusNotFound}, false},
		{"500", &Error{StatusCode: http.StatusInternalServerError}, false},
		{"transport", errors.New("connection refused"), false},
		{"nil", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsAuthorizationRejected(tt.err); got != tt.want {
				t.Errorf("IsAuthorizationRejected(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestServerMessage(t *testing.T) {
	withMsg := &Error{StatusCode: 409, Message: "Room name might already exist."}
	if got := ServerMessage(withMsg); got != "Room name might already exist." {
		t.Errorf("Expected server message, got %q", got)
	}

	plain := errors.New("connection refused")
	if got := ServerMessage(plain); got != "connection refused" {
		t.Errorf("Expected error text, got %q", got)
	}
}

func TestUnreachableServer(t *testing.T) {
	c := New("http://127.0.0.1:1")
	_, err := c.Rooms(context.Background())
	if err == nil {
		t.Fatal("Expected error for unreachable server")
	}
	var apiErr *Error
	if errors.As(err, &apiErr) {
		t.Error("Transport failure must not be an *Error")
	}
}
