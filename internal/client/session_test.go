package client

import (
	"os"
	"path/filepath"
	"testing"

	"feedbackapp/internal/models"
	contextutils "feedbackapp/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSession_MissingFileIsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.json")

	s, err := LoadSession(path)
	require.NoError(t, err)
	assert.False(t, s.Authenticated())
	assert.Equal(t, path, s.Path())
}

func TestSession_SaveCreatesPrivateFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.json")
	s, err := LoadSession(path)
	require.NoError(t, err)

	s.Token = "tok"
	s.User = models.UserSummary{Name: "Morgan", Email: "morgan@example.com", Role: models.RoleManager}
	require.NoError(t, s.Save())

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	loaded, err := LoadSession(path)
	require.NoError(t, err)
	assert.Equal(t, "tok", loaded.Token)
	assert.Equal(t, models.RoleManager, loaded.User.Role)
}

func TestSession_ClearIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	s, err := LoadSession(path)
	require.NoError(t, err)

	s.Token = "tok"
	require.NoError(t, s.Save())
	require.NoError(t, s.Clear())
	require.NoError(t, s.Clear())
	assert.NoFileExists(t, path)
	assert.Empty(t, s.User.Email)
}

func TestLoadSession_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := LoadSession(path)
	assert.True(t, contextutils.IsError(err, contextutils.ErrInvalidFormat))
}
