package checkout

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"storefront/internal/apperr"
)

// Session is one customer's checkout. It is created once by Store.Create and
// is discarded on exit, expiry or submission.
type Session struct {
	ID        string
	CreatedAt time.Time

	wizard      *Wizard
	expiresAt   time.Time
	stepChanged bool
	exited      bool
	submitting  bool
}

func (s *Session) Wizard() *Wizard { return s.wizard }

// SessionView is what the HTTP layer returns after every operation.
type SessionView struct {
	ID          string `json:"sessionId"`
	State       View   `json:"state"`
	ResetScroll bool   `json:"resetScroll"`
	Exited      bool   `json:"exited,omitempty"`
}

// Store holds checkout sessions in memory.
type Store struct {
	mu        sync.Mutex
	sessions  map[string]*Session
	ttl       time.Duration
	now       func() time.Time
	onDiscard func(*Session)
}

// NewStore creates a store whose sessions expire after ttl of inactivity.
// onDiscard, when set, runs outside the lock for every session that is
// dropped by exit or expiry.
func NewStore(ttl time.Duration, onDiscard func(*Session)) *Store {
	return &Store{
		sessions:  make(map[string]*Session),
		ttl:       ttl,
		now:       time.Now,
		onDiscard: onDiscard,
	}
}

func (s *Store) Create(cfg Config) SessionView {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	sess := &Session{
		ID:        uuid.NewString(),
		CreatedAt: now,
		expiresAt: now.Add(s.ttl),
	}
	sess.wizard = NewWizard(cfg,
		WithStepObserver(func(Step) { sess.stepChanged = true }),
		WithNavigator(NavigatorFunc(func() { sess.exited = true })),
	)
	s.sessions[sess.ID] = sess

	return SessionView{ID: sess.ID, State: ViewOf(sess.wizard.State()), ResetScroll: true}
}

func sessionNotFound() error {
	return apperr.NotFound("checkout session not found or expired")
}

// Do runs fn with exclusive access to the session and returns its view
// afterwards. A session whose navigator fired during fn is discarded.
func (s *Store) Do(id string, fn func(*Session) error) (SessionView, error) {
	sess, view, err := s.do(id, fn)
	if sess != nil && sess.exited {
		s.discard(sess)
	}
	if err != nil {
		return SessionView{}, err
	}
	return view, nil
}

// do holds s.mu for the whole of fn, so a panicking fn still unlocks.
func (s *Store) do(id string, fn func(*Session) error) (*Session, SessionView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.live(id)
	if !ok {
		return nil, SessionView{}, sessionNotFound()
	}
	if sess.submitting {
		return nil, SessionView{}, apperr.Conflict("checkout is already being submitted")
	}

	sess.stepChanged = false
	err := fn(sess)
	view := SessionView{
		ID:          sess.ID,
		State:       ViewOf(sess.wizard.State()),
		ResetScroll: sess.stepChanged,
		Exited:      sess.exited,
	}
	if sess.exited {
		delete(s.sessions, sess.ID)
	} else {
		sess.expiresAt = s.now().Add(s.ttl)
	}
	return sess, view, err
}

// live returns the session when it exists and has not expired. Callers hold s.mu.
func (s *Store) live(id string) (*Session, bool) {
	sess, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	if !s.now().Before(sess.expiresAt) {
		return nil, false
	}
	return sess, true
}

// BeginSubmit reserves the session for submission and returns its completed
// state. Only one submission can be in flight per session.
func (s *Store) BeginSubmit(id string) (ReviewState, error) {
	var review ReviewState
	_, err := s.Do(id, func(sess *Session) error {
		r, err := sess.wizard.Review()
		if err != nil {
			return err
		}
		sess.submitting = true
		review = r
		return nil
	})
	return review, err
}

// AbortSubmit releases a reservation taken by BeginSubmit after a failed
// submission, so the customer can retry.
func (s *Store) AbortSubmit(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[id]; ok {
		sess.submitting = false
	}
}

// Remove ends a session without running the discard hook; its uploads now
// belong to a submitted application.
func (s *Store) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}

// Len reports the number of stored sessions, expired ones included until swept.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Sweep discards expired sessions and returns how many were removed.
func (s *Store) Sweep() int {
	s.mu.Lock()
	now := s.now()
	var expired []*Session
	for id, sess := range s.sessions {
		if !now.Before(sess.expiresAt) && !sess.submitting {
			expired = append(expired, sess)
			delete(s.sessions, id)
		}
	}
	s.mu.Unlock()

	for _, sess := range expired {
		s.discard(sess)
	}
	return len(expired)
}

// Run sweeps expired sessions every interval until ctx is done.
func (s *Store) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s.Sweep()
		}
	}
}

func (s *Store) discard(sess *Session) {
	if s.onDiscard != nil {
		s.onDiscard(sess)
	}
}
