package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fieldworks/fieldsync/internal/client/client"
	"github.com/fieldworks/fieldsync/internal/client/repositories/metadata"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMeta struct {
	store   map[string][]byte
	cleared bool
}

func newFakeMeta() *fakeMeta { return &fakeMeta{store: map[string][]byte{}} }

func (f *fakeMeta) Get(_ context.Context, key string) ([]byte, error) { return f.store[key], nil }
func (f *fakeMeta) Set(_ context.Context, key string, value []byte) error {
	f.store[key] = value
	return nil
}
func (f *fakeMeta) Delete(_ context.Context, key string) error { delete(f.store, key); return nil }
func (f *fakeMeta) List(_ context.Context) (map[string][]byte, error) {
	return f.store, nil
}
func (f *fakeMeta) Clear(_ context.Context) error {
	f.store = map[string][]byte{}
	f.cleared = true
	return nil
}

func signedToken(t *testing.T, sub string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": sub})
	s, err := token.SignedString([]byte("test-key"))
	require.NoError(t, err)
	return s
}

func stubCredentials(t *testing.T, username, password string) {
	t.Helper()
	oldText, oldPass := getSimpleText, getPassword
	getSimpleText = func(*bufio.Reader, string, io.Writer) (string, error) {
		return username, nil
	}
	getPassword = func(io.Writer) ([]byte, error) {
		return []byte(password), nil
	}
	t.Cleanup(func() {
		getSimpleText = oldText
		getPassword = oldPass
	})
}

func newAuthApp(baseURL string, meta *fakeMeta) *App {
	rest := client.NewRESTClient(baseURL)
	return &App{
		rest:   rest,
		gw:     rest,
		repos:  &client.Repositories{Metadata: meta},
		reader: bufio.NewReader(strings.NewReader("")),
	}
}

func TestLogin_OnlineCachesIdentity(t *testing.T) {
	access := signedToken(t, "tech-1")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/auth/login", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"access_token":  access,
			"refresh_token": "refresh-1",
		})
	}))
	defer srv.Close()

	stubCredentials(t, "alice", "p@ss")
	meta := newFakeMeta()
	app := newAuthApp(srv.URL, meta)

	require.NoError(t, app.Login(context.Background()))

	assert.Equal(t, "tech-1", app.actorID)
	assert.Equal(t, ModeOnline, app.Mode)
	assert.True(t, app.isLoggedIn())
	assert.Equal(t, []byte("tech-1"), meta.store[metadata.KeyActorID])
	assert.Equal(t, []byte(access), meta.store[metadata.KeyAccessToken])
}

func TestLogin_OfflineFallbackRestoresCachedIdentity(t *testing.T) {
	stubCredentials(t, "alice", "p@ss")
	meta := newFakeMeta()
	meta.store[metadata.KeyActorID] = []byte("tech-1")
	meta.store[metadata.KeyAccessToken] = []byte(signedToken(t, "tech-1"))
	meta.store[metadata.KeyRefreshToken] = []byte("refresh-1")

	// Nothing listens here: the login attempt fails as unreachable.
	app := newAuthApp("http://127.0.0.1:1", meta)

	require.NoError(t, app.Login(context.Background()))

	assert.Equal(t, "tech-1", app.actorID)
	assert.Equal(t, ModeOffline, app.Mode)
}

func TestLogin_OfflineWithoutCacheDisables(t *testing.T) {
	stubCredentials(t, "alice", "p@ss")
	app := newAuthApp("http://127.0.0.1:1", newFakeMeta())

	require.NoError(t, app.Login(context.Background()))

	assert.Empty(t, app.actorID)
	assert.Equal(t, ModeDisabled, app.Mode)
	assert.False(t, app.isLoggedIn())
}

func TestLogout_ClearsIdentityKeepsNothingOpen(t *testing.T) {
	meta := newFakeMeta()
	meta.store[metadata.KeyActorID] = []byte("tech-1")

	app := newAuthApp("http://127.0.0.1:1", meta)
	app.actorID = "tech-1"

	require.NoError(t, app.Logout(context.Background()))
	assert.True(t, meta.cleared)
	assert.False(t, app.isLoggedIn())
	assert.Nil(t, app.session)
}
