package client

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"feedbackapp/internal/models"
	contextutils "feedbackapp/internal/utils"
)

const (
	sessionDirName  = ".feedbackctl"
	sessionFileName = "session.json"
)

// Session is the signed-in state of the command line client. It is loaded from and
// saved to a single file and passed explicitly to the Client.
type Session struct {
	BaseURL string             `json:"baseUrl,omitempty"`
	Token   string             `json:"token,omitempty"`
	User    models.UserSummary `json:"user"`

	path string
}

// DefaultSessionPath returns ~/.feedbackctl/session.json.
func DefaultSessionPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", contextutils.WrapError(err, "failed to resolve home directory")
	}
	return filepath.Join(home, sessionDirName, sessionFileName), nil
}

// LoadSession reads the session file at path. A missing file yields an empty session
// bound to the same path.
func LoadSession(path string) (*Session, error) {
	s := &Session{path: path}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, contextutils.WrapErrorf(err, "failed to read session file %s", path)
	}
	if err := json.Unmarshal(data, s); err != nil {
		return nil, contextutils.NewAppErrorWithCause(
			contextutils.ErrorCodeInvalidFormat,
			contextutils.SeverityWarn,
			"Corrupt session file",
			path,
			err,
		)
	}
	return s, nil
}

// Path returns the file the session is persisted to.
func (s *Session) Path() string {
	return s.path
}

// Authenticated reports whether a token is held.
func (s *Session) Authenticated() bool {
	return s != nil && s.Token != ""
}

// Save writes the session to its file, creating the directory with owner-only permissions.
func (s *Session) Save() error {
	if s.path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return contextutils.WrapErrorf(err, "failed to create session directory")
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return contextutils.WrapError(err, "failed to encode session")
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return contextutils.WrapErrorf(err, "failed to write session file %s", s.path)
	}
	return nil
}

// Clear forgets the token and user and removes the session file.
func (s *Session) Clear() error {
	s.Token = ""
	s.User = models.UserSummary{}
	if s.path == "" {
		return nil
	}
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return contextutils.WrapErrorf(err, "failed to remove session file %s", s.path)
	}
	return nil
}
