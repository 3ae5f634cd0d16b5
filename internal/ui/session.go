package ui

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Session is the reading position restored on the next start.
type Session struct {
	Translation string `json:"translation,omitempty"`
	Book        string `json:"book"`
	Chapter     int    `json:"chapter"`
	Page        int    `json:"page"`
}

func defaultSession() Session {
	return Session{
		Book:    "",
		Chapter: 1,
		Page:    0,
	}
}

// SessionStore keeps a Session in a JSON file.
type SessionStore struct {
	path string
}

func NewSessionStore(path string) *SessionStore {
	return &SessionStore{path: path}
}

// Load returns the saved session. A missing file yields the default session
// and no error; an unreadable one yields the default session and the error.
func (s *SessionStore) Load() (Session, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return defaultSession(), nil
	}
	if err != nil {
		return defaultSession(), err
	}

	session := defaultSession()
	if err := json.Unmarshal(data, &session); err != nil {
		return defaultSession(), fmt.Errorf("decode session: %w", err)
	}
	if session.Chapter < 1 {
		session.Chapter = 1
	}
	if session.Page < 0 {
		session.Page = 0
	}
	return session, nil
}

func (s *SessionStore) Save(session Session) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}

	jsonData, err := json.MarshalIndent(session, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(s.path, jsonData, 0o644)
}
