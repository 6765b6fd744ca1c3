package session

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"pagechat/internal/domain"
	"pagechat/internal/index"
)

// Session binds a session id to one VectorIndex and one conversation log.
// The embedded mutex serializes chat turns: callers hold it for the whole
// rewrite-retrieve-generate cycle so concurrent chats on the same session
// cannot interleave their history reads and appends.
type Session struct {
	sync.Mutex

	ID    string
	Index *index.VectorIndex

	history  []domain.Turn
	lastUsed time.Time
}

// History returns a copy of the conversation log in insertion order.
// Callers must hold the session lock.
func (s *Session) History() []domain.Turn {
	out := make([]domain.Turn, len(s.history))
	copy(out, s.history)
	return out
}

// Append adds turns to the conversation log. Callers must hold the session
// lock and append a completed human/ai pair together so a failed turn never
// leaves half an exchange behind.
func (s *Session) Append(turns ...domain.Turn) {
	s.history = append(s.history, turns...)
}

// Store is the process-wide map from session id to session state.
type Store struct {
	mu          sync.Mutex
	sessions    map[string]*Session
	maxSessions int

	now func() time.Time // test hook
}

// NewStore creates a session store holding at most maxSessions entries.
// When the cap is reached the least recently used session is evicted to
// bound memory, since each session carries a full vector index.
func NewStore(maxSessions int) *Store {
	return &Store{
		sessions:    make(map[string]*Session),
		maxSessions: maxSessions,
		now:         time.Now,
	}
}

// Create registers a new session around ix, seeds its conversation log with
// the greeting turn, and returns it. The id is a random UUID, so collisions
// are practically impossible.
func (st *Store) Create(ix *index.VectorIndex) *Session {
	sess := &Session{
		ID:       uuid.New().String(),
		Index:    ix,
		history:  []domain.Turn{{Role: domain.RoleAI, Content: domain.Greeting}},
		lastUsed: st.now(),
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	if st.maxSessions > 0 && len(st.sessions) >= st.maxSessions {
		st.evictOldest()
	}
	st.sessions[sess.ID] = sess
	return sess
}

// Get returns the session for id, refreshing its recency, or
// domain.ErrSessionNotFound. A miss never creates a session.
func (st *Store) Get(id string) (*Session, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	sess, ok := st.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	sess.lastUsed = st.now()
	return sess, nil
}

// Len returns the number of live sessions.
func (st *Store) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}

// evictOldest removes the least recently used session. Callers hold st.mu.
func (st *Store) evictOldest() {
	var oldestID string
	var oldest time.Time
	for id, sess := range st.sessions {
		if oldestID == "" || sess.lastUsed.Before(oldest) {
			oldestID = id
			oldest = sess.lastUsed
		}
	}
	if oldestID != "" {
		delete(st.sessions, oldestID)
	}
}
