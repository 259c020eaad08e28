package auth

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"
)

// TokenProvider supplies an access token for API authentication.
type TokenProvider interface {
	AccessToken() (string, error)
}

// FileTokenProvider reads a bearer token from a file on disk. The token is
// cached until the file's modification time changes, so a re-login in
// another process is picked up on the next request.
type FileTokenProvider struct {
	path string

	mu      sync.Mutex
	token   string
	modTime time.Time
}

// NewFileTokenProvider creates a TokenProvider that reads from the given file path.
func NewFileTokenProvider(path string) *FileTokenProvider {
	return &FileTokenProvider{path: path}
}

// Path is the token file location.
func (f *FileTokenProvider) Path() string { return f.path }

// AccessToken returns the token, trimming whitespace.
func (f *FileTokenProvider) AccessToken() (string, error) {
	info, err := os.Stat(f.path)
	if err != nil {
		return "", fmt.Errorf("reading token from %s: %w", f.path, err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.token != "" && info.ModTime().Equal(f.modTime) {
		return f.token, nil
	}

	data, err := os.ReadFile(f.path)
	if err != nil {
		return "", fmt.Errorf("reading token from %s: %w", f.path, err)
	}
	token := strings.TrimSpace(string(data))
	if token == "" {
		return "", fmt.Errorf("token file %s is empty", f.path)
	}
	f.token, f.modTime = token, info.ModTime()
	return token, nil
}
