// Package session owns credential state for the Watch Party client.
//
// A Session is the (api key, user id, display name) triple issued at
// login or signup. The three fields are jointly present or jointly
// absent; there is no partial session. The Store keeps the in-memory
// session authoritative for the process lifetime and mirrors it to a
// YAML file on disk so it survives restarts.
package session

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// FileName is the default session file name under the state directory.
const FileName = "session.yaml"

// Session is the persisted credential triple.
type Session struct {
	APIKey      string `yaml:"api_key"`
	UserID      int    `yaml:"user_id"`
	DisplayName string `yaml:"display_name"`
}

// Valid reports whether all three session fields are present.
func (s Session) Valid() bool {
	return s.APIKey != "" && s.UserID > 0 && s.DisplayName != ""
}

// DefaultPath returns the default session file path under the user's
// home directory (~/.watchparty/session.yaml).
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".watchparty", FileName)
	}
	return filepath.Join(home, ".watchparty", FileName)
}

// Store owns the session and its durable persistence. All mutations go
// through Login, Logout and UpdateDisplayName; dependents observe
// changes via Subscribe rather than polling the store.
type Store struct {
	mu      sync.Mutex
	path    string
	current Session
	subs    map[int]func(Session)
	nextSub int
	log     zerolog.Logger
}

// NewStore creates a store persisting to path. The store starts empty;
// call Restore to load any previously saved session.
func NewStore(path string, log zerolog.Logger) *Store {
	return &Store{
		path: path,
		subs: make(map[int]func(Session)),
		log:  log.With().Str("component", "session").Logger(),
	}
}

// Restore attempts to reconstruct a session from the session file.
// A missing, malformed, or partially populated file degrades to
// "logged out" and never fails: restoration happens before any UI
// exists to report an error to.
func (st *Store) Restore() Session {
	st.mu.Lock()
	defer st.mu.Unlock()

	data, err := os.ReadFile(st.path)
	if err != nil {
		if !os.IsNotExist(err) {
			st.log.Warn().Err(err).Str("path", st.path).Msg("session file unreadable, starting logged out")
		}
		st.current = Session{}
		return st.current
	}

	var s Session
	if err := yaml.Unmarshal(data, &s); err != nil {
		st.log.Warn().Err(err).Str("path", st.path).Msg("session file corrupt, starting logged out")
		st.current = Session{}
		return st.current
	}

	// No partial sessions: any missing field means the whole triple is
	// discarded.
	if !s.Valid() {
		st.current = Session{}
		return st.current
	}

	st.current = s
	return st.current
}

// Login atomically installs a new session, overwriting any prior one,
// and commits it to the session file.
func (st *Store) Login(apiKey string, userID int, displayName string) {
	st.mu.Lock()
	st.current = Session{APIKey: apiKey, UserID: userID, DisplayName: displayName}
	st.persistLocked()
	snapshot := st.current
	subs := st.subscribersLocked()
	st.mu.Unlock()

	for _, fn := range subs {
		fn(snapshot)
	}
}

// Logout atomically clears the session and erases the session file.
// Calling it while already logged out is a no-op.
func (st *Store) Logout() {
	st.mu.Lock()
	if !st.current.Valid() {
		st.mu.Unlock()
		return
	}
	st.current = Session{}
	if err := os.Remove(st.path); err != nil && !os.IsNotExist(err) {
		st.log.Warn().Err(err).Str("path", st.path).Msg("could not erase session file")
	}
	snapshot := st.current
	subs := st.subscribersLocked()
	st.mu.Unlock()

	for _, fn := range subs {
		fn(snapshot)
	}
}

// UpdateDisplayName mutates only the display name of an active session.
// With no active session it is a silent no-op; that is a caller bug,
// not a runtime condition worth surfacing.
func (st *Store) UpdateDisplayName(newName string) {
	newName = strings.TrimSpace(newName)
	st.mu.Lock()
	if !st.current.Valid() || newName == "" {
		st.mu.Unlock()
		return
	}
	st.current.DisplayName = newName
	st.persistLocked()
	snapshot := st.current
	subs := st.subscribersLocked()
	st.mu.Unlock()

	for _, fn := range subs {
		fn(snapshot)
	}
}

// IsAuthenticated reports whether a complete session is present.
func (st *Store) IsAuthenticated() bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.current.Valid()
}

// Current returns a copy of the in-memory session.
func (st *Store) Current() Session {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.current
}

// Subscribe registers fn to be called after every login, logout, or
// display-name change. The returned function removes the subscription.
func (st *Store) Subscribe(fn func(Session)) (unsubscribe func()) {
	st.mu.Lock()
	id := st.nextSub
	st.nextSub++
	st.subs[id] = fn
	st.mu.Unlock()

	return func() {
		st.mu.Lock()
		delete(st.subs, id)
		st.mu.Unlock()
	}
}

// subscribersLocked snapshots the subscriber list so callbacks run
// outside the lock and may safely call back into the store.
func (st *Store) subscribersLocked() []func(Session) {
	subs := make([]func(Session), 0, len(st.subs))
	for _, fn := range st.subs {
		subs = append(subs, fn)
	}
	return subs
}

// persistLocked writes the current session to disk. Persistence is
// best-effort: a storage failure is logged but does not roll back the
// in-memory session.
func (st *Store) persistLocked() {
	if err := writeFile(st.path, st.current); err != nil {
		st.log.Warn().Err(err).Str("path", st.path).Msg("could not persist session")
	}
}

// writeFile saves the session atomically using the write-rename pattern
// to prevent a crash leaving a half-written file.
func writeFile(path string, s Session) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}

	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshaling session: %w", err)
	}

	header := "# Generated by: wpc login\n# Contains your API key - do not share\n\n"
	content := header + string(data)

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, []byte(content), 0600); err != nil {
		return err
	}
	return os.Rename(tmpPath, path)
}
