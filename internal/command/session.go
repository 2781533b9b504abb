package command

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/ridgecast/forecast-sms/internal/domain"
)

// Session holds the state between an ambiguous command and its follow-up,
// keyed by sender phone number. A sender issues one message at a time, so
// last-write-wins replacement is enough.
type Session struct {
	Kind       Kind
	Prefix     string
	Candidates []Candidate
	CreatedAt  time.Time
}

// SessionStore is a bounded, expiring map of disambiguation sessions. The
// store is injected into the parser rather than living as a package global,
// so tests and multi-tenant deployments control its lifetime.
type SessionStore struct {
	lru *expirable.LRU[string, Session]
}

// NewSessionStore creates a store that holds at most size sessions, each
// expiring ttl after creation. Expired or evicted sessions simply vanish;
// the sender resends the original command.
func NewSessionStore(size int, ttl time.Duration) *SessionStore {
	return &SessionStore{lru: expirable.NewLRU[string, Session](size, nil, ttl)}
}

// Begin records a new session for the sender, replacing any existing one.
func (s *SessionStore) Begin(phone string, kind Kind, prefix string, cands []Candidate) Session {
	sess := Session{
		Kind:       kind,
		Prefix:     prefix,
		Candidates: cands,
		CreatedAt:  domain.Now(),
	}
	s.lru.Add(phone, sess)
	return sess
}

// Get returns the sender's live session, if any.
func (s *SessionStore) Get(phone string) (Session, bool) {
	return s.lru.Get(phone)
}

// End discards the sender's session.
func (s *SessionStore) End(phone string) {
	s.lru.Remove(phone)
}

// Len reports the number of live sessions, for metrics.
func (s *SessionStore) Len() int {
	return s.lru.Len()
}
