// Package auth verifies administrator credentials. The engine itself
// never authenticates; the CLI gates admin operations through a
// Verifier injected at startup.
package auth

import (
	"bufio"
	"crypto/subtle"
	"fmt"
	"os"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// Verifier checks an administrator username/password pair.
type Verifier interface {
	Verify(username, password string) bool
}

// StaticVerifier holds a single credential pair from configuration.
// The stored password may be a bcrypt hash (recognized by its "$2"
// prefix) or, for local development, a plain value compared in
// constant time.
type StaticVerifier struct {
	username string
	password string
}

// NewStaticVerifier creates a verifier for one configured admin.
func NewStaticVerifier(username, password string) *StaticVerifier {
	return &StaticVerifier{username: username, password: password}
}

func (v *StaticVerifier) Verify(username, password string) bool {
	// An unset password means admin access is disabled, not open.
	if v.password == "" {
		return false
	}
	if subtle.ConstantTimeCompare([]byte(username), []byte(v.username)) != 1 {
		return false
	}
	return matchPassword(v.password, password)
}

// FileVerifier loads "username,password" lines from a credentials file.
type FileVerifier struct {
	credentials map[string]string
}

// NewFileVerifier reads the credentials file. Blank lines are skipped;
// a line without a comma is malformed.
func NewFileVerifier(path string) (*FileVerifier, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open credentials file: %w", err)
	}
	defer f.Close()

	credentials := make(map[string]string)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		username, password, ok := strings.Cut(line, ",")
		if !ok {
			return nil, fmt.Errorf("malformed credentials line %q", line)
		}
		credentials[username] = password
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read credentials file: %w", err)
	}
	return &FileVerifier{credentials: credentials}, nil
}

func (v *FileVerifier) Verify(username, password string) bool {
	stored, ok := v.credentials[username]
	if !ok {
		return false
	}
	return matchPassword(stored, password)
}

func matchPassword(stored, given string) bool {
	if strings.HasPrefix(stored, "$2") {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(given)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(given)) == 1
}
