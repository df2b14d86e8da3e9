// Package session tracks per-conversation exchange history in memory.
package session

import (
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

type exchange struct {
	Question string
	Answer   string
}

// Manager keeps a bounded append-log of exchanges per session ID.
type Manager struct {
	maxHistory int

	mu       sync.RWMutex
	sessions map[string][]exchange
	entropy  *ulid.MonotonicEntropy
}

func NewManager(maxHistory int) *Manager {
	if maxHistory <= 0 {
		maxHistory = 2
	}
	return &Manager{
		maxHistory: maxHistory,
		sessions:   make(map[string][]exchange),
		entropy:    ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0),
	}
}

// Create registers a new empty session and returns its ID.
func (m *Manager) Create() string {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := "session_" + ulid.MustNew(ulid.Timestamp(time.Now()), m.entropy).String()
	m.sessions[id] = nil
	return id
}

// AddExchange records one question/answer pair for a session, creating the
// session if it does not exist yet.
func (m *Manager) AddExchange(sessionID, question, answer string) {
	if sessionID == "" {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	log := append(m.sessions[sessionID], exchange{Question: question, Answer: answer})
	if len(log) > m.maxHistory {
		log = log[len(log)-m.maxHistory:]
	}
	m.sessions[sessionID] = log
}

// History renders the retained exchanges as alternating "User:"/"Assistant:"
// lines, oldest first. Empty result means no usable history.
func (m *Manager) History(sessionID string) string {
	if sessionID == "" {
		return ""
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	log := m.sessions[sessionID]
	if len(log) == 0 {
		return ""
	}

	lines := make([]string, 0, len(log))
	for _, ex := range log {
		lines = append(lines, fmt.Sprintf("User: %s\nAssistant: %s", ex.Question, ex.Answer))
	}
	return strings.Join(lines, "\n")
}

// Clear drops all history for a session but keeps the ID valid.
func (m *Manager) Clear(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[sessionID]; ok {
		m.sessions[sessionID] = nil
	}
}
