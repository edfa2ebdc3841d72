// Package session tracks in-flight contract processing sessions. A session
// is created when a contract upload starts, accumulates the staged workbook
// paths and extracted payload as the pipeline steps run, and expires after a
// TTL so abandoned uploads do not pin disk and memory forever.
//
// Two stores exist: a process-local in-memory store for single-instance
// deployments and development, and a Redis-backed store for horizontally
// scaled deployments where any instance may serve the next step.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"
)

// ErrNotFound is returned when a session id is unknown or has expired.
var ErrNotFound = errors.New("session not found")

// Session is the state carried between pipeline steps for one contract
// upload.
type Session struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`

	// Dir is the staging directory holding this session's workbooks.
	Dir string `json:"dir"`
	// HotelName is the extracted hotel name, used to label downloads.
	HotelName string `json:"hotel_name"`
	// Files maps destination table name to staged workbook path.
	Files map[string]string `json:"files"`
	// Contract is the normalized extraction payload, kept verbatim so later
	// steps can re-derive tables without re-running extraction.
	Contract json.RawMessage `json:"contract,omitempty"`
	// Step is the highest pipeline step completed so far.
	Step int `json:"step"`
}

// Store persists sessions for the configured TTL.
//
// Implementations must treat an expired session exactly like a missing one.
type Store interface {
	Put(ctx context.Context, s *Session) error
	Get(ctx context.Context, id string) (*Session, error)
	Delete(ctx context.Context, id string) error
}

// entry wraps a stored session with its expiry deadline.
type entry struct {
	session   *Session
	expiresAt time.Time
}

// MemoryStore is a process-local Store. Expired entries are dropped on
// access, with an opportunistic sweep of the whole map every sweepEvery
// operations to bound memory under churn.
//
// MemoryStore is safe for concurrent use.
type MemoryStore struct {
	ttl time.Duration
	now func() time.Time

	mu       sync.Mutex
	sessions map[string]entry
	ops      uint64
}

const sweepEvery = 128

// NewMemoryStore constructs a MemoryStore with the given TTL. A TTL <= 0
// defaults to one hour.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &MemoryStore{
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[string]entry),
	}
}

// Put stores s and restarts its TTL.
func (m *MemoryStore) Put(_ context.Context, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.maybeSweep()
	m.sessions[s.ID] = entry{session: s, expiresAt: m.now().Add(m.ttl)}
	return nil
}

// Get returns the session for id, or ErrNotFound when it is unknown or
// expired.
func (m *MemoryStore) Get(_ context.Context, id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.maybeSweep()
	e, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	if m.now().After(e.expiresAt) {
		delete(m.sessions, id)
		return nil, ErrNotFound
	}
	return e.session, nil
}

// Delete removes the session for id. Deleting an unknown id is not an error.
func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

// maybeSweep drops every expired entry once per sweepEvery operations.
// Callers must hold mu.
func (m *MemoryStore) maybeSweep() {
	m.ops++
	if m.ops%sweepEvery != 0 {
		return
	}
	now := m.now()
	for id, e := range m.sessions {
		if now.After(e.expiresAt) {
			delete(m.sessions, id)
		}
	}
}
