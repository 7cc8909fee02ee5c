package server

import (
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/google/uuid"
	"github.com/ironsheep/note-extract/internal/batch"
)

const (
	sessionCookie = "note_extract_session"

	// sessionTTL is how long an idle session keeps its results.
	sessionTTL = 24 * time.Hour
)

type session struct {
	state   batch.State
	touched time.Time
}

// SessionStore keeps one batch.State per browser session.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]*session
	now      func() time.Time
}

// NewSessionStore creates an empty store.
func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*session),
		now:      time.Now,
	}
}

// Get returns the state of a session, or the zero State if it is unknown.
func (s *SessionStore) Get(id string) batch.State {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return batch.State{}
	}
	sess.touched = s.now()
	return sess.state
}

// Update applies fn to the session's state and stores the result.
func (s *SessionStore) Update(id string, fn func(batch.State) batch.State) batch.State {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pruneLocked()

	sess, ok := s.sessions[id]
	if !ok {
		sess = &session{}
		s.sessions[id] = sess
	}
	sess.state = fn(sess.state)
	sess.touched = s.now()
	return sess.state
}

// Len returns the number of live sessions.
func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// pruneLocked drops idle sessions. Sessions with a run in progress are kept.
func (s *SessionStore) pruneLocked() {
	cutoff := s.now().Add(-sessionTTL)
	for id, sess := range s.sessions {
		if !sess.state.Running && sess.touched.Before(cutoff) {
			delete(s.sessions, id)
		}
	}
}

// sessionID returns the caller's session id, issuing a new cookie when the
// request has none or an invalid one.
//
// Cookie values point into the pooled request buffer, so the id is copied
// before it outlives the request as a map key or in a stream callback.
func sessionID(c *fiber.Ctx) string {
	if id := utils.CopyString(c.Cookies(sessionCookie)); id != "" {
		if _, err := uuid.Parse(id); err == nil {
			return id
		}
	}

	id := uuid.NewString()
	c.Cookie(&fiber.Cookie{
		Name:     sessionCookie,
		Value:    id,
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return id
}

// sessionReporter mirrors batch events into a session's state.
type sessionReporter struct {
	store *SessionStore
	id    string
}

func (r *sessionReporter) Extracted(res batch.Result) {
	r.store.Update(r.id, func(s batch.State) batch.State { return s.Record(res) })
}

func (r *sessionReporter) Failed(f batch.Failure) {
	r.store.Update(r.id, func(s batch.State) batch.State { return s.Fail(f) })
}

func (r *sessionReporter) Progress(p batch.Progress) {
	r.store.Update(r.id, func(s batch.State) batch.State { return s.Advance(p) })
}

func (r *sessionReporter) Done(batch.Outcome) {
	r.store.Update(r.id, func(s batch.State) batch.State { return s.Finish() })
}
