// Package feed keeps a room's message feed synchronized by polling.
//
// An Engine is scoped to exactly one (room, credential) pair. Changing
// either tears the engine down and builds a fresh one; a torn-down
// engine never mutates shared state again, even if a fetch was in
// flight when it was stopped. Polling is the only sync mechanism: a
// fixed-cadence refetch whose result replaces the held sequence only
// when it actually differs, so optimistic local appends are not
// clobbered by a stale-but-identical response.
package feed

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/watchparty/wpc/internal/api"
	"github.com/watchparty/wpc/internal/session"
)

// PollInterval is the fixed feed refresh cadence.
const PollInterval = 500 * time.Millisecond

// Lifecycle is the engine's visible loading state. Background refreshes
// while Ready do not transition back to Loading; there is no flicker on
// a poll tick.
type Lifecycle int

const (
	Idle Lifecycle = iota
	Loading
	Ready
	Failed
)

func (l Lifecycle) String() string {
	switch l {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case Failed:
		return "failed"
	default:
		return "invalid"
	}
}

// ErrorKind classifies a failure surfaced in the feed state.
type ErrorKind int

const (
	ErrorNone ErrorKind = iota
	ErrorNetwork
	ErrorAuthorizationRejected
	ErrorValidation
	ErrorNotFound
	ErrorServer
)

// ErrEmptyMessage is returned by PostMessage for a body that is empty
// after trimming. It never reaches the network.
var ErrEmptyMessage = errors.New("message body cannot be empty")

// Snapshot is a point-in-time copy of the feed state.
type Snapshot struct {
	Room      *api.Room
	Messages  []api.Message
	Lifecycle Lifecycle
	ErrorKind ErrorKind
	LastError string
}

// Engine fetches and periodically refreshes one room's message feed,
// merging optimistic local writes with polled snapshots.
type Engine struct {
	roomID   int
	client   *api.Client
	store    *session.Store
	interval time.Duration
	log      zerolog.Logger

	mu        sync.Mutex
	room      *api.Room
	messages  []api.Message
	lifecycle Lifecycle
	errKind   ErrorKind
	errMsg    string
	closed    bool
	subs      map[int]func()
	nextSub   int

	ctx        context.Context
	cancel     context.CancelFunc
	done       chan struct{}
	unsubStore func()
}

// Option configures an Engine.
type Option func(*Engine)

// WithPollInterval overrides the poll cadence. Test hook.
func WithPollInterval(d time.Duration) Option {
	return func(e *Engine) { e.interval = d }
}

// New builds an engine for one room using the given authenticated
// client. The engine is Idle until Start is called.
func New(roomID int, client *api.Client, store *session.Store, log zerolog.Logger, opts ...Option) *Engine {
	ctx, cancel := context.WithCancel(context.Background())
	e := &Engine{
		roomID:    roomID,
		client:    client,
		store:     store,
		interval:  PollInterval,
		log:       log.With().Str("component", "feed").Int("room_id", roomID).Logger(),
		lifecycle: Idle,
		subs:      make(map[int]func()),
		ctx:       ctx,
		cancel:    cancel,
		done:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(e)
	}
	// Logout elsewhere in the process tears this engine down too.
	e.unsubStore = store.Subscribe(func(s session.Session) {
		if !s.Valid() {
			e.Close()
		}
	})
	return e
}

// Start resolves room metadata, loads the initial feed, and begins
// polling. It returns immediately; observe progress via Subscribe and
// Snapshot.
func (e *Engine) Start() {
	go e.run()
}

// Subscribe registers fn to run after every visible feed change. The
// returned function removes the subscription.
func (e *Engine) Subscribe(fn func()) (unsubscribe func()) {
	e.mu.Lock()
	id := e.nextSub
	e.nextSub++
	e.subs[id] = fn
	e.mu.Unlock()

	return func() {
		e.mu.Lock()
		delete(e.subs, id)
		e.mu.Unlock()
	}
}

// Snapshot returns a copy of the current feed state.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	snap := Snapshot{
		Lifecycle: e.lifecycle,
		ErrorKind: e.errKind,
		LastError: e.errMsg,
	}
	if e.room != nil {
		room := *e.room
		snap.Room = &room
	}
	snap.Messages = make([]api.Message, len(e.messages))
	copy(snap.Messages, e.messages)
	return snap
}

// Close tears the engine down: the poll timer is cancelled and any
// in-flight fetch completion is discarded instead of applied. Safe to
// call more than once.
func (e *Engine) Close() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.closed = true
	e.mu.Unlock()

	e.cancel()
	if e.unsubStore != nil {
		e.unsubStore()
	}
}

// Done is closed once the polling goroutine has fully exited.
func (e *Engine) Done() <-chan struct{} {
	return e.done
}

// PostMessage trims and posts body, then appends the server-confirmed
// message to the held sequence so the author sees it without waiting
// for the next poll tick. The append deduplicates by id in case a poll
// that was in flight during the post delivers the message first.
func (e *Engine) PostMessage(ctx context.Context, body string) error {
	body = strings.TrimSpace(body)
	if body == "" {
		return ErrEmptyMessage
	}

	msg, err := e.client.PostMessage(ctx, e.roomID, body)
	if err != nil {
		if api.IsAuthorizationRejected(err) {
			e.forceLogout()
		}
		return err
	}

	e.mu.Lock()
	if e.closed {
		// Scope changed while the post was in flight; the next engine's
		// poll will deliver the message.
		e.mu.Unlock()
		return nil
	}
	if !e.containsLocked(msg.ID) {
		e.messages = append(e.messages, *msg)
	}
	subs := e.subscribersLocked()
	e.mu.Unlock()

	notify(subs)
	return nil
}

// RenameRoom renames the room. An empty or unchanged (after trimming)
// name is an informational no-op, reported via changed=false with a nil
// error, and issues no network call. On success only the cached room
// name is mutated; messages are untouched.
func (e *Engine) RenameRoom(ctx context.Context, newName string) (changed bool, err error) {
	newName = strings.TrimSpace(newName)

	e.mu.Lock()
	current := ""
	if e.room != nil {
		current = e.room.Name
	}
	e.mu.Unlock()

	if newName == "" || newName == current {
		return false, nil
	}

	if err := e.client.RenameRoom(ctx, e.roomID, newName); err != nil {
		if api.IsAuthorizationRejected(err) {
			e.forceLogout()
		}
		return false, err
	}

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return true, nil
	}
	if e.room != nil {
		e.room.Name = newName
	}
	subs := e.subscribersLocked()
	e.mu.Unlock()

	notify(subs)
	return true, nil
}

func (e *Engine) run() {
	defer close(e.done)

	e.setLifecycle(Loading)

	rooms, err := e.client.Rooms(e.ctx)
	if err != nil {
		e.failInitial(err)
		return
	}

	var room *api.Room
	for i := range rooms {
		if rooms[i].ID == e.roomID {
			room = &rooms[i]
			break
		}
	}
	if room == nil {
		e.fail(ErrorNotFound, "room not found")
		return
	}
	e.setRoom(*room)

	msgs, err := e.client.Messages(e.ctx, e.roomID)
	if err != nil {
		e.failInitial(err)
		return
	}
	e.applyFeed(msgs, true)

	// Poll loop. The timer is armed only after the previous fetch has
	// completed, so slow responses cannot pile up requests.
	for {
		timer := time.NewTimer(e.interval)
		select {
		case <-e.ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}

		msgs, err := e.client.Messages(e.ctx, e.roomID)
		if err != nil {
			if e.ctx.Err() != nil {
				return
			}
			if api.IsAuthorizationRejected(err) {
				e.forceLogout()
				return
			}
			// Transport and malformed-response failures during polling
			// are self-healing: log and retry on the next tick.
			e.log.Debug().Err(err).Msg("poll failed, retrying next tick")
			continue
		}
		e.applyFeed(msgs, false)
	}
}

// applyFeed installs a fetched message sequence. The replacement is
// skipped when the fetched sequence equals the held one, so an in-flight
// optimistic append is not discarded by a stale-but-identical response.
func (e *Engine) applyFeed(msgs []api.Message, initial bool) {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}

	changed := initial || !sameFeed(e.messages, msgs)
	if changed {
		e.messages = msgs
	}
	if initial {
		e.lifecycle = Ready
		e.errKind = ErrorNone
		e.errMsg = ""
	}
	var subs []func()
	if changed {
		subs = e.subscribersLocked()
	}
	e.mu.Unlock()

	notify(subs)
}

// sameFeed reports whether two message sequences are identical, by
// order and content. Comparing (id, body) pairs, not just the trailing
// id, catches same-length replacements.
func sameFeed(a, b []api.Message) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].ID != b[i].ID || a[i].Body != b[i].Body {
			return false
		}
	}
	return true
}

// failInitial classifies an initial-load error: auth rejection forces
// logout, everything else surfaces as a Failed state.
func (e *Engine) failInitial(err error) {
	if e.ctx.Err() != nil {
		return
	}
	if api.IsAuthorizationRejected(err) {
		e.fail(ErrorAuthorizationRejected, "your session has expired")
		e.forceLogout()
		return
	}
	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		e.fail(ErrorServer, api.ServerMessage(err))
		return
	}
	e.fail(ErrorNetwork, "could not reach the server")
}

func (e *Engine) fail(kind ErrorKind, msg string) {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.lifecycle = Failed
	e.errKind = kind
	e.errMsg = msg
	subs := e.subscribersLocked()
	e.mu.Unlock()

	e.log.Info().Str("reason", msg).Msg("feed failed")
	notify(subs)
}

func (e *Engine) setLifecycle(l Lifecycle) {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.lifecycle = l
	subs := e.subscribersLocked()
	e.mu.Unlock()

	notify(subs)
}

func (e *Engine) setRoom(room api.Room) {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.room = &room
	subs := e.subscribersLocked()
	e.mu.Unlock()

	notify(subs)
}

// forceLogout stops polling permanently and signals the session store
// to clear the session. Authorization rejections are never retried; the
// engine does not attempt to resume on its own.
func (e *Engine) forceLogout() {
	e.log.Info().Msg("credential rejected, logging out")
	e.Close()
	e.store.Logout()
}

func (e *Engine) containsLocked(id int) bool {
	for i := range e.messages {
		if e.messages[i].ID == id {
			return true
		}
	}
	return false
}

func (e *Engine) subscribersLocked() []func() {
	subs := make([]func(), 0, len(e.subs))
	for _, fn := range e.subs {
		subs = append(subs, fn)
	}
	return subs
}

func notify(subs []func()) {
	for _, fn := range subs {
		fn()
	}
}
