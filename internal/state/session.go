// internal/state/session.go
package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/user/termtrace/internal/types"
)

// SessionStore tracks session metadata for one workspace in a
// sessions.json index next to the session logs.
type SessionStore struct {
	dir string
	mu  sync.RWMutex
}

// NewSessionStore creates a store rooted at the given workspace directory.
func NewSessionStore(dir string) *SessionStore {
	return &SessionStore{dir: dir}
}

func (s *SessionStore) indexPath() string {
	return filepath.Join(s.dir, "sessions.json")
}

// LogPath returns the log file path for a session in this workspace.
func (s *SessionStore) LogPath(id types.SessionID) string {
	return filepath.Join(s.dir, fmt.Sprintf("session_%s.jsonl", id))
}

func (s *SessionStore) loadIndex() ([]*types.SessionIndex, error) {
	data, err := os.ReadFile(s.indexPath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read session index: %w", err)
	}
	var sessions []*types.SessionIndex
	if err := json.Unmarshal(data, &sessions); err != nil {
		return nil, fmt.Errorf("unmarshal session index: %w", err)
	}
	return sessions, nil
}

// saveIndex marshals with indentation and writes atomically via a temp
// file rename.
func (s *SessionStore) saveIndex(sessions []*types.SessionIndex) error {
	data, err := json.MarshalIndent(sessions, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal session index: %w", err)
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create workspace dir: %w", err)
	}
	tmp := s.indexPath() + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write temp index: %w", err)
	}
	if err := os.Rename(tmp, s.indexPath()); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename temp index: %w", err)
	}
	return nil
}

// Create registers a new active session and returns its metadata.
func (s *SessionStore) Create(workspace types.WorkspaceName, name string) (*types.SessionIndex, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sessions, err := s.loadIndex()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	id := types.NewSessionID(now)
	if name == "" {
		name = "session_" + string(id)
	}
	session := &types.SessionIndex{
		SessionID: id,
		Workspace: workspace,
		Name:      name,
		LogPath:   s.LogPath(id),
		Status:    types.StatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}

	sessions = append(sessions, session)
	if err := s.saveIndex(sessions); err != nil {
		return nil, err
	}
	return session, nil
}

// Get returns the session with the given ID.
func (s *SessionStore) Get(id types.SessionID) (*types.SessionIndex, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions, err := s.loadIndex()
	if err != nil {
		return nil, err
	}
	for _, sess := range sessions {
		if sess.SessionID == id {
			return sess, nil
		}
	}
	return nil, fmt.Errorf("session not found: %s", id)
}

// List returns all sessions, newest first.
func (s *SessionStore) List() ([]*types.SessionIndex, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions, err := s.loadIndex()
	if err != nil {
		return nil, err
	}
	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].CreatedAt.After(sessions[j].CreatedAt)
	})
	return sessions, nil
}

// Latest returns the most recently created session, or an error when the
// workspace has none.
func (s *SessionStore) Latest() (*types.SessionIndex, error) {
	sessions, err := s.List()
	if err != nil {
		return nil, err
	}
	if len(sessions) == 0 {
		return nil, fmt.Errorf("no sessions in workspace")
	}
	return sessions[0], nil
}

// Update persists changes to the given session, setting UpdatedAt to now.
func (s *SessionStore) Update(session *types.SessionIndex) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sessions, err := s.loadIndex()
	if err != nil {
		return err
	}
	for i, sess := range sessions {
		if sess.SessionID == session.SessionID {
			session.UpdatedAt = time.Now()
			sessions[i] = session
			return s.saveIndex(sessions)
		}
	}
	return fmt.Errorf("session not found: %s", session.SessionID)
}

// Remove deletes a session's index entry and its log file, including the
// archive and checksum sidecar when the session was archived.
func (s *SessionStore) Remove(id types.SessionID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sessions, err := s.loadIndex()
	if err != nil {
		return err
	}
	kept := sessions[:0]
	found := false
	for _, sess := range sessions {
		if sess.SessionID == id {
			found = true
			continue
		}
		kept = append(kept, sess)
	}
	if !found {
		return fmt.Errorf("session not found: %s", id)
	}
	if err := s.saveIndex(kept); err != nil {
		return err
	}
	logPath := s.LogPath(id)
	for _, path := range []string{logPath, logPath + ".zst", logPath + ".zst.b2sum"} {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove session file: %w", err)
		}
	}
	return nil
}
