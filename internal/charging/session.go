package charging

import (
	"sync"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/free5gc/ocs/internal/reservation"
)

var ErrStaleCallback = errors.New("stale reservation callback")

type SessionState int

const (
	StateNew SessionState = iota
	StateAwaitingReservation
	StateAnswered
	StateRejected
	StateAbandoned
)

func (s SessionState) String() string {
	switch s {
	case StateNew:
		return "NEW"
	case StateAwaitingReservation:
		return "AWAITING_RESERVATION"
	case StateAnswered:
		return "ANSWERED"
	case StateRejected:
		return "REJECTED"
	case StateAbandoned:
		return "ABANDONED"
	default:
		return "UNKNOWN"
	}
}

// ChargingSession is the pending state of one request/response exchange.
// outcomes[i] belongs to request.LineItems[i].
type ChargingSession struct {
	mu sync.Mutex

	sessionID string
	endUserID string
	request   *Request
	exchange  Exchange

	state     SessionState
	outcomes  []*reservation.Outcome
	collected int
	createdAt time.Time
	deadline  time.Time
}

func newChargingSession(req *Request, endUserID string, ex Exchange, timeout time.Duration) *ChargingSession {
	now := time.Now()
	return &ChargingSession{
		sessionID: req.SessionID,
		endUserID: endUserID,
		request:   req,
		exchange:  ex,
		state:     StateNew,
		outcomes:  make([]*reservation.Outcome, len(req.LineItems)),
		createdAt: now,
		deadline:  now.Add(timeout),
	}
}

func (s *ChargingSession) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *ChargingSession) await() {
	s.mu.Lock()
	s.state = StateAwaitingReservation
	s.mu.Unlock()
}

// collect stores o at its line-item index. It reports true exactly once, for
// the outcome that completes the session, and moves the session to Answered.
func (s *ChargingSession) collect(o reservation.Outcome) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateAwaitingReservation {
		return false, errors.Wrapf(ErrStaleCallback, "session %s is %s", s.sessionID, s.state)
	}
	if o.Ref.RequestNumber != s.request.RequestNumber {
		return false, errors.Wrapf(ErrStaleCallback, "session %s awaits request #%d, got #%d",
			s.sessionID, s.request.RequestNumber, o.Ref.RequestNumber)
	}
	if o.Ref.Index < 0 || o.Ref.Index >= len(s.outcomes) {
		return false, errors.Wrapf(ErrStaleCallback, "session %s has %d line items, got index %d",
			s.sessionID, len(s.outcomes), o.Ref.Index)
	}
	if s.outcomes[o.Ref.Index] != nil {
		return false, errors.Wrapf(ErrStaleCallback, "session %s line item %d already resolved",
			s.sessionID, o.Ref.Index)
	}

	outcome := o
	s.outcomes[o.Ref.Index] = &outcome
	s.collected++
	if s.collected < len(s.outcomes) {
		return false, nil
	}
	s.state = StateAnswered
	return true, nil
}

// reject moves a session that never reached the ledger to Rejected.
func (s *ChargingSession) reject() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateNew {
		return false
	}
	s.state = StateRejected
	return true
}

// abandon reports whether the session was still pending and is now abandoned.
func (s *ChargingSession) abandon() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateAwaitingReservation {
		return false
	}
	s.state = StateAbandoned
	return true
}

type SessionInfo struct {
	SessionID     string    `json:"sessionId"`
	EndUserID     string    `json:"endUserId"`
	RequestKind   string    `json:"requestKind"`
	RequestNumber uint32    `json:"requestNumber"`
	State         string    `json:"state"`
	Pending       int       `json:"pending"`
	Collected     int       `json:"collected"`
	CreatedAt     time.Time `json:"createdAt"`
	Deadline      time.Time `json:"deadline"`
}

func (s *ChargingSession) info() SessionInfo {
	s.mu.Lock()
	defer s.mu.Unlock()

	return SessionInfo{
		SessionID:     s.sessionID,
		EndUserID:     s.endUserID,
		RequestKind:   s.request.Kind.String(),
		RequestNumber: s.request.RequestNumber,
		State:         s.state.String(),
		Pending:       len(s.outcomes),
		Collected:     s.collected,
		CreatedAt:     s.createdAt,
		Deadline:      s.deadline,
	}
}

// SessionStore maps session id to the session awaiting reservation outcomes.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*ChargingSession
}

func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string]*ChargingSession)}
}

// Add fails when another exchange of the same session is still pending.
func (st *SessionStore) Add(s *ChargingSession) bool {
	st.mu.Lock()
	defer st.mu.Unlock()

	if _, exists := st.sessions[s.sessionID]; exists {
		return false
	}
	st.sessions[s.sessionID] = s
	return true
}

func (st *SessionStore) Get(sessionID string) (*ChargingSession, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()

	s, ok := st.sessions[sessionID]
	return s, ok
}

// Remove deletes s only if it is still the stored entry for its id.
func (st *SessionStore) Remove(s *ChargingSession) bool {
	st.mu.Lock()
	defer st.mu.Unlock()

	if cur, ok := st.sessions[s.sessionID]; ok && cur == s {
		delete(st.sessions, s.sessionID)
		return true
	}
	return false
}

func (st *SessionStore) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

func (st *SessionStore) Snapshot() []SessionInfo {
	st.mu.RLock()
	ids := maps.Keys(st.sessions)
	sessions := make([]*ChargingSession, 0, len(ids))
	slices.Sort(ids)
	for _, id := range ids {
		sessions = append(sessions, st.sessions[id])
	}
	st.mu.RUnlock()

	infos := make([]SessionInfo, 0, len(sessions))
	for _, s := range sessions {
		infos = append(infos, s.info())
	}
	return infos
}
