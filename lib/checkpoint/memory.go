package checkpoint

import "sync"

// MemoryStore is an in-process Store, used for ephemeral runs that opt out of persistence.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]Session
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]Session)}
}

// Save stores a copy of sess.
func (m *MemoryStore) Save(sess *Session) error {
	if err := sess.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[sess.Target] = *sess.Clone()

	return nil
}

// Load returns a copy of the stored session for target.
func (m *MemoryStore) Load(target string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, ok := m.sessions[target]
	if !ok {
		return nil, ErrNotFound
	}

	return &sess, nil
}

// Delete forgets the session for target.
func (m *MemoryStore) Delete(target string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, target)

	return nil
}

// List returns copies of all stored sessions.
func (m *MemoryStore) List() ([]*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sessions := make([]*Session, 0, len(m.sessions))
	for _, sess := range m.sessions {
		sessions = append(sessions, &sess)
	}

	return sessions, nil
}
