// Package api implements the Watch Party HTTP client.
//
// The client handles all communication with the Watch Party server:
// - POST /login, /signup - Credential exchange (no auth header)
// - POST /user/name, /user/password - Profile updates
// - GET/POST /rooms - Room listing and creation
// - POST /rooms/{id}/name - Room rename
// - GET/POST /rooms/{id}/messages - Message feed and posting
//
// All authenticated calls carry the opaque token in the Api-Key header.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"
)

// DefaultTimeout is the default HTTP request timeout.
const DefaultTimeout = 10 * time.Second

// maxResponseSize limits response body reads to prevent memory exhaustion.
const maxResponseSize = 10 * 1024 * 1024 // 10MB

// Client is the Watch Party HTTP client.
type Client struct {
	baseURL    string
	httpClient *http.Client
	apiKey     string // opaque token for the Api-Key header
}

// New creates a new unauthenticated client (login/signup only).
func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
	}
}

// NewWithAPIKey creates a new client that sends the Api-Key header on
// every request.
func NewWithAPIKey(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		apiKey: apiKey,
	}
}

// BaseURL returns the server base URL the client was built with.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Room is a chat room as returned by the server.
type Room struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Message is a single feed entry. Messages are immutable once created;
// IDs increase monotonically within a room.
type Message struct {
	ID     int    `json:"id"`
	UserID int    `json:"user_id"`
	RoomID int    `json:"room_id"`
	Body   string `json:"body"`
	Author string `json:"author"`
}

// DisplayAuthor returns the author name, falling back to the numeric
// user id when the server had no name for the sender.
func (m Message) DisplayAuthor() string {
	if m.Author != "" {
		return m.Author
	}
	return "User " + strconv.Itoa(m.UserID)
}

// AuthResponse is the response from POST /login and POST /signup.
type AuthResponse struct {
	Success  bool   `json:"success"`
	APIKey   string `json:"api_key"`
	UserName string `json:"user_name"`
	UserID   int    `json:"user_id"`
	Message  string `json:"message,omitempty"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login exchanges a username and password for an API key.
func (c *Client) Login(ctx context.Context, username, password string) (*AuthResponse, error) {
	var resp AuthResponse
	if err := c.post(ctx, "/login", &loginRequest{Username: username, Password: password}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Signup creates a fresh randomly named user and returns its credentials.
func (c *Client) Signup(ctx context.Context) (*AuthResponse, error) {
	var resp AuthResponse
	if err := c.post(ctx, "/signup", struct{}{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ProfileResponse is the response from GET /user/profile.
type ProfileResponse struct {
	Success  bool   `json:"success"`
	UserID   int    `json:"user_id"`
	UserName string `json:"user_name"`
}

// Profile fetches the authenticated user's identity from the server.
func (c *Client) Profile(ctx context.Context) (*ProfileResponse, error) {
	var resp ProfileResponse
	if err := c.get(ctx, "/user/profile", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

type updateNameRequest struct {
	NewName string `json:"new_name"`
}

type statusResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// UpdateUserName changes the authenticated user's display name.
func (c *Client) UpdateUserName(ctx context.Context, newName string) error {
	var resp statusResponse
	return c.post(ctx, "/user/name", &updateNameRequest{NewName: newName}, &resp)
}

type updatePasswordRequest struct {
	NewPassword     string `json:"new_password"`
	ConfirmPassword string `json:"confirm_password"`
}

// UpdatePassword changes the authenticated user's password. The server
// re-checks that both values match; callers should validate first.
func (c *Client) UpdatePassword(ctx context.Context, newPassword, confirmPassword string) error {
	var resp statusResponse
	return c.post(ctx, "/user/password", &updatePasswordRequest{
		NewPassword:     newPassword,
		ConfirmPassword: confirmPassword,
	}, &resp)
}

// Rooms lists all rooms visible to the authenticated user.
func (c *Client) Rooms(ctx context.Context) ([]Room, error) {
	var rooms []Room
	if err := c.get(ctx, "/rooms", &rooms); err != nil {
		return nil, err
	}
	return rooms, nil
}

type createRoomRequest struct {
	RoomName string `json:"room_name,omitempty"`
}

type createRoomResponse struct {
	Success bool   `json:"success"`
	Room    *Room  `json:"room"`
	Message string `json:"message,omitempty"`
}

// CreateRoom creates a room. An empty name lets the server pick one.
func (c *Client) CreateRoom(ctx context.Context, name string) (*Room, error) {
	var resp createRoomResponse
	if err := c.post(ctx, "/rooms", &createRoomRequest{RoomName: name}, &resp); err != nil {
		return nil, err
	}
	if resp.Room == nil {
		return nil, fmt.Errorf("server confirmed room creation without room details")
	}
	return resp.Room, nil
}

// RenameRoom changes a room's name.
func (c *Client) RenameRoom(ctx context.Context, roomID int, newName string) error {
	var resp statusResponse
	path := fmt.Sprintf("/rooms/%d/name", roomID)
	return c.post(ctx, path, &updateNameRequest{NewName: newName}, &resp)
}

// Messages fetches the full message feed for a room, in creation order.
func (c *Client) Messages(ctx context.Context, roomID int) ([]Message, error) {
	var msgs []Message
	path := fmt.Sprintf("/rooms/%d/messages", roomID)
	if err := c.get(ctx, path, &msgs); err != nil {
		return nil, err
	}
	return msgs, nil
}

type postMessageRequest struct {
	Body string `json:"body"`
}

type postMessageResponse struct {
	Success       bool     `json:"success"`
	PostedMessage *Message `json:"postedMessage"`
	Message       string   `json:"message,omitempty"`
}

// PostMessage posts a message to a room and returns the server-confirmed
// message, including the id the next feed fetch will carry.
func (c *Client) PostMessage(ctx context.Context, roomID int, body string) (*Message, error) {
	var resp postMessageResponse
	path := fmt.Sprintf("/rooms/%d/messages", roomID)
	if err := c.post(ctx, path, &postMessageRequest{Body: body}, &resp); err != nil {
		return nil, err
	}
	if resp.PostedMessage == nil {
		return nil, fmt.Errorf("server confirmed post without message details")
	}
	return resp.PostedMessage, nil
}

// Error represents an error response from the Watch Party server.
type Error struct {
	StatusCode int
	Message    string // server-provided message, if the body carried one
	Body       string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("watchparty error (status %d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("watchparty error (status %d): %s", e.StatusCode, e.Body)
}

// IsAuthorizationRejected reports whether err is a server response that
// declares the credential invalid. Callers must not retry these; the
// session is cleared instead.
func IsAuthorizationRejected(err error) bool {
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusForbidden
}

// ServerMessage extracts the server-provided message from err, or returns
// err's own text for transport-level failures.
func ServerMessage(err error) string {
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return err.Error()
}

// newError builds an *Error from a non-2xx response body, pulling out the
// server's message field when the body is the usual JSON envelope.
func newError(statusCode int, body []byte) *Error {
	e := &Error{StatusCode: statusCode, Body: string(body)}
	var envelope struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil {
		e.Message = envelope.Message
	}
	return e
}

// post sends a POST request and decodes the JSON response.
func (c *Client) post(ctx context.Context, path string, reqBody, respBody any) error {
	body, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Api-Key", c.apiKey)
	}

	return c.do(req, respBody)
}

// get sends a GET request and decodes the JSON response.
func (c *Client) get(ctx context.Context, path string, respBody any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Api-Key", c.apiKey)
	}

	return c.do(req, respBody)
}

func (c *Client) do(req *http.Request, respBody any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sending request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	// Read maxResponseSize+1 to detect oversized responses while still
	// accepting responses exactly at the limit.
	respBodyBytes, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize+1))
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}
	if int64(len(respBodyBytes)) > maxResponseSize {
		return fmt.Errorf("response exceeds maximum size of %d bytes", maxResponseSize)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return newError(resp.StatusCode, respBodyBytes)
	}

	if err := json.Unmarshal(respBodyBytes, respBody); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}

	return nil
}
