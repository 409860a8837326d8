package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Khateeb-Urrahman/ListTube/internal/identity"
)

const testSecret = "cli-test-secret"

var createdID = regexp.MustCompile(`\(([0-9a-f-]{36})\)`)

func setupCLIConfig(t *testing.T) string {
	t.Helper()
	base := t.TempDir()
	t.Setenv("HOME", filepath.Join(base, "home"))

	path := filepath.Join(base, "listtube.yaml")
	content := fmt.Sprintf(
		"store:\n  driver: bolt\n  bolt_path: %q\nauth:\n  jwt_secret: %q\nlogging:\n  file: %q\n",
		filepath.Join(base, "data", "listtube.db"),
		testSecret,
		filepath.Join(base, "logs", "listtube.log"),
	)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func runCLI(t *testing.T, configPath string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--config", configPath}, args...))
	err := cmd.Execute()
	return stdout.String(), err
}

func issueTokens(t *testing.T, uid string) identity.Tokens {
	t.Helper()
	issuer := identity.NewIssuer([]byte(testSecret), time.Hour, 24*time.Hour)
	tokens, err := issuer.Issue(identity.Identity{UID: uid, Email: uid + "@example.com"})
	require.NoError(t, err)
	return tokens
}

func TestCLISignedOut(t *testing.T) {
	cfg := setupCLIConfig(t)

	out, err := runCLI(t, cfg, "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "Not signed in")

	_, err = runCLI(t, cfg, "playlists", "list")
	assert.ErrorIs(t, err, errNotLoggedIn)

	_, err = runCLI(t, cfg, "playlists", "create", "Road", "Trip")
	require.Error(t, err)
	assert.Equal(t, "Please log in to create playlists", err.Error())

	_, err = runCLI(t, cfg, "playlists", "delete", "some-id")
	require.Error(t, err)
	assert.Equal(t, "Please log in to delete playlists", err.Error())

	out, err = runCLI(t, cfg, "search", "typescript")
	require.NoError(t, err)
	assert.Contains(t, out, "TypeScript Advanced Patterns")
}

func TestCLIPlaylistLifecycle(t *testing.T) {
	cfg := setupCLIConfig(t)
	tokens := issueTokens(t, "alice")

	out, err := runCLI(t, cfg, "login", "--token", tokens.AccessToken)
	require.NoError(t, err)
	assert.Contains(t, out, "Signed in as alice@example.com")

	out, err = runCLI(t, cfg, "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "alice@example.com (alice)")

	out, err = runCLI(t, cfg, "playlists", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No playlists yet")

	out, err = runCLI(t, cfg, "playlists", "create", "Road", "Trip")
	require.NoError(t, err)
	m := createdID.FindStringSubmatch(out)
	require.Len(t, m, 2, out)
	id := m[1]

	out, err = runCLI(t, cfg, "playlists", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Road Trip")
	assert.Contains(t, out, id)

	out, err = runCLI(t, cfg, "playlists", "add", id, "typescript")
	require.NoError(t, err)
	assert.Contains(t, out, `Added "TypeScript Advanced Patterns"`)

	out, err = runCLI(t, cfg, "playlists", "add", id, "typescript")
	require.NoError(t, err)
	assert.Contains(t, out, "Nothing changed: duplicate")

	out, err = runCLI(t, cfg, "playlists", "show", id)
	require.NoError(t, err)
	assert.Contains(t, out, "Road Trip (1 items)")
	assert.Contains(t, out, "TypeScript Advanced Patterns")

	out, err = runCLI(t, cfg, "playlists", "remove", id, "3")
	require.NoError(t, err)
	assert.Contains(t, out, "Removed 3")

	out, err = runCLI(t, cfg, "playlists", "delete", id)
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted playlist "+id)

	_, err = runCLI(t, cfg, "playlists", "show", id)
	assert.Error(t, err)

	out, err = runCLI(t, cfg, "logout")
	require.NoError(t, err)
	assert.Contains(t, out, "Signed out")

	out, err = runCLI(t, cfg, "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "Not signed in")
}

func TestCLIOwnership(t *testing.T) {
	cfg := setupCLIConfig(t)

	_, err := runCLI(t, cfg, "login", "--token", issueTokens(t, "alice").AccessToken)
	require.NoError(t, err)
	out, err := runCLI(t, cfg, "playlists", "create", "Mine")
	require.NoError(t, err)
	id := createdID.FindStringSubmatch(out)[1]

	_, err = runCLI(t, cfg, "login", "--token", issueTokens(t, "bob").RefreshToken)
	require.NoError(t, err)

	out, err = runCLI(t, cfg, "playlists", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No playlists yet")

	out, err = runCLI(t, cfg, "playlists", "delete", id)
	require.NoError(t, err)
	assert.Contains(t, out, "Nothing changed: not owned")
}

func TestCLILoginRejectsBadToken(t *testing.T) {
	cfg := setupCLIConfig(t)

	_, err := runCLI(t, cfg, "login", "--token", "not.a.token")
	require.Error(t, err)
	assert.ErrorIs(t, err, identity.ErrInvalidToken)

	out, err := runCLI(t, cfg, "whoami")
	require.NoError(t, err)
	assert.True(t, strings.Contains(out, "Not signed in"))
}

func TestCLISearchYouTubeLink(t *testing.T) {
	cfg := setupCLIConfig(t)

	out, err := runCLI(t, cfg, "search", "https://www.youtube.com/watch?v=dQw4w9WgXcQ")
	require.NoError(t, err)
	assert.Contains(t, out, "youtube_dQw4w9WgXcQ")
	assert.Contains(t, out, "Preview: https://www.youtube.com/embed/dQw4w9WgXcQ")
}
