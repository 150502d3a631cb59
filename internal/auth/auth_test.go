package auth

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"golang.org/x/crypto/bcrypt"
)

func TestStaticVerifierPlainPassword(t *testing.T) {
	v := NewStaticVerifier("admin", "s3cret")

	assert.True(t, v.Verify("admin", "s3cret"))
	assert.False(t, v.Verify("admin", "wrong"))
	assert.False(t, v.Verify("root", "s3cret"))
}

func TestStaticVerifierBcryptPassword(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)

	v := NewStaticVerifier("admin", string(hash))

	assert.True(t, v.Verify("admin", "s3cret"))
	assert.False(t, v.Verify("admin", "wrong"))
}

func TestStaticVerifierEmptyPasswordDisablesAdmin(t *testing.T) {
	v := NewStaticVerifier("admin", "")
	assert.False(t, v.Verify("admin", ""))
}

func TestFileVerifier(t *testing.T) {
	path := filepath.Join(t.TempDir(), "admins.txt")
	require.NoError(t, os.WriteFile(path, []byte("admin,s3cret\nmanager,hunter2\n\n"), 0o600))

	v, err := NewFileVerifier(path)
	require.NoError(t, err)

	assert.True(t, v.Verify("admin", "s3cret"))
	assert.True(t, v.Verify("manager", "hunter2"))
	assert.False(t, v.Verify("admin", "hunter2"))
	assert.False(t, v.Verify("nobody", "s3cret"))
}

func TestFileVerifierMalformedLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "admins.txt")
	require.NoError(t, os.WriteFile(path, []byte("admin-no-comma\n"), 0o600))

	_, err := NewFileVerifier(path)
	assert.Error(t, err)
}

func TestFileVerifierMissingFile(t *testing.T) {
	_, err := NewFileVerifier(filepath.Join(t.TempDir(), "absent.txt"))
	assert.Error(t, err)
}
