// Package session persists the browser-derived Reddit session between runs.
//
// A session is a small JSON document:
//
//	{"cookies": {"reddit_session": "..."}, "username": "...", "saved_at": 1700000000.5, "browser": "firefox"}
//
// The browser tag is optional; when present the client may re-import cookies
// from that browser once the saved ones expire.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// FileName is the name of the session file inside the session directory.
const FileName = "session.json"

// DirEnv overrides the session directory.
const DirEnv = "REDDIT_SESSION_DIR"

const (
	dirPerm  = 0o700
	filePerm = 0o600
)

// Session is the persisted authentication state.
type Session struct {
	Cookies  map[string]string `json:"cookies"`
	Username string            `json:"username"`
	SavedAt  float64           `json:"saved_at"`
	Browser  string            `json:"browser,omitempty"`
}

// Valid reports whether s carries both a username and at least one cookie.
func (s *Session) Valid() bool {
	return s != nil && s.Username != "" && len(s.Cookies) > 0
}

// DefaultDir returns $REDDIT_SESSION_DIR, or ~/.config/reddit-mcp.
func DefaultDir() string {
	if dir := os.Getenv(DirEnv); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".config", "reddit-mcp")
	}
	return filepath.Join(home, ".config", "reddit-mcp")
}

// Store reads and writes the session file in one directory. The directory is
// fixed for the lifetime of the Store.
type Store struct {
	dir string
}

// NewStore returns a Store rooted at dir, or at DefaultDir when dir is empty.
func NewStore(dir string) *Store {
	if dir == "" {
		dir = DefaultDir()
	}
	return &Store{dir: dir}
}

// Path returns the location of the session file.
func (s *Store) Path() string {
	return filepath.Join(s.dir, FileName)
}

// Load returns the saved session. A missing file, a file that is not JSON,
// and a record without cookies or username all yield (nil, nil). Only I/O
// failures other than a missing file are returned as errors.
func (s *Store) Load() (*Session, error) {
	data, err := os.ReadFile(s.Path())
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read session file: %w", err)
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, nil
	}
	if !sess.Valid() {
		return nil, nil
	}
	return &sess, nil
}

// Save writes a new session record, creating the directory if needed. The
// file is replaced atomically and is readable by the owner only.
func (s *Store) Save(cookies map[string]string, username, browser string) (*Session, error) {
	sess := &Session{
		Cookies:  cookies,
		Username: username,
		SavedAt:  float64(time.Now().UnixNano()) / float64(time.Second),
		Browser:  browser,
	}
	if !sess.Valid() {
		return nil, errors.New("session needs a username and at least one cookie")
	}

	data, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode session: %w", err)
	}

	if err := os.MkdirAll(s.dir, dirPerm); err != nil {
		return nil, fmt.Errorf("create session directory: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, ".session-*.json")
	if err != nil {
		return nil, fmt.Errorf("create session file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := tmp.Chmod(filePerm); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("chmod session file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write session file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("close session file: %w", err)
	}
	if err := os.Rename(tmpName, s.Path()); err != nil {
		return nil, fmt.Errorf("replace session file: %w", err)
	}

	return sess, nil
}

// Remove deletes the session file. Removing a missing file is not an error.
func (s *Store) Remove() error {
	err := os.Remove(s.Path())
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove session file: %w", err)
	}
	return nil
}
