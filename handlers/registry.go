package handlers

import (
	"sort"
	"sync"

	"constructboq/services"
)

// SessionRegistry holds the in-memory working sessions by takeoff ID.
type SessionRegistry struct {
	mu       sync.RWMutex
	sessions map[string]*sessionEntry
}

type sessionEntry struct {
	mu sync.Mutex
	s  *services.Session
}

// Do runs fn with exclusive access to the session.
func (en *sessionEntry) Do(fn func(s *services.Session) error) error {
	en.mu.Lock()
	defer en.mu.Unlock()
	return fn(en.s)
}

func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{sessions: make(map[string]*sessionEntry)}
}

// Add registers a session under its takeoff ID, replacing any previous one.
func (r *SessionRegistry) Add(s *services.Session) *sessionEntry {
	en := &sessionEntry{s: s}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.Takeoff.ID] = en
	return en
}

func (r *SessionRegistry) Get(id string) (*sessionEntry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	en, ok := r.sessions[id]
	return en, ok
}

func (r *SessionRegistry) Delete(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[id]; !ok {
		return false
	}
	delete(r.sessions, id)
	return true
}

// SessionSummary is one entry of the session list.
type SessionSummary struct {
	ID          string        `json:"id"`
	ProjectName string        `json:"projectName"`
	Mode        services.Mode `json:"mode"`
	Date        string        `json:"date"`
	Items       int           `json:"items"`
	IsPaid      bool          `json:"isPaid"`
}

// List returns a summary of every session, newest first.
func (r *SessionRegistry) List() []SessionSummary {
	r.mu.RLock()
	entries := make([]*sessionEntry, 0, len(r.sessions))
	for _, en := range r.sessions {
		entries = append(entries, en)
	}
	r.mu.RUnlock()

	out := make([]SessionSummary, 0, len(entries))
	for _, en := range entries {
		en.Do(func(s *services.Session) error {
			out = append(out, SessionSummary{
				ID:          s.Takeoff.ID,
				ProjectName: s.Takeoff.ProjectName,
				Mode:        s.Mode,
				Date:        s.Takeoff.Date,
				Items:       len(s.Takeoff.Items),
				IsPaid:      s.Takeoff.IsPaid,
			})
			return nil
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date > out[j].Date
		}
		return out[i].ID < out[j].ID
	})
	return out
}
