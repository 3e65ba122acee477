package api

import (
	"sync"

	"github.com/google/uuid"

	"github.com/mendellabsco/mendel/pkg/llm"
)

// DefaultMaxHistoryTurns bounds session history so long conversations do
// not grow prompts without limit.
const DefaultMaxHistoryTurns = 20

// sessionStore keeps per-session conversation history in memory.
type sessionStore struct {
	mu       sync.Mutex
	maxTurns int
	sessions map[string][]llm.Turn
}

func newSessionStore(maxTurns int) *sessionStore {
	return &sessionStore{
		maxTurns: maxTurns,
		sessions: make(map[string][]llm.Turn),
	}
}

// resolve returns the history for id, creating a new session when id is
// empty or unknown. The returned id identifies the session from then on.
func (st *sessionStore) resolve(id string) (string, []llm.Turn) {
	st.mu.Lock()
	defer st.mu.Unlock()

	if id == "" {
		id = uuid.NewString()
	}

	history, ok := st.sessions[id]
	if !ok {
		st.sessions[id] = nil
	}

	// Copy so callers never see later appends.
	out := make([]llm.Turn, len(history))
	copy(out, history)
	return id, out
}

// append records a completed exchange, trimming the oldest turns beyond the
// bound.
func (st *sessionStore) append(id, question, answer string) {
	st.mu.Lock()
	defer st.mu.Unlock()

	history := append(st.sessions[id],
		llm.Turn{Role: llm.RoleUser, Content: question},
		llm.Turn{Role: llm.RoleAssistant, Content: answer},
	)
	if len(history) > st.maxTurns {
		history = history[len(history)-st.maxTurns:]
	}
	st.sessions[id] = history
}
