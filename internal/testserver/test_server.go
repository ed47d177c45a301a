package testserver

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rpggio/postflow/internal/app"
	"github.com/rpggio/postflow/internal/config"
	"github.com/rpggio/postflow/internal/planner"
	"github.com/rpggio/postflow/internal/sqlite"
	"github.com/stretchr/testify/require"
)

// TestServer runs the full HTTP stack on a per-test in-memory database with
// authentication enabled.
type TestServer struct {
	Server *httptest.Server
	App    *app.App
	Token  string
}

// New starts a server that accepts token. model may be nil.
func New(t *testing.T, token string, model planner.Model) *TestServer {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := sqlite.New(dsn)
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations())

	cfg := config.Default()
	cfg.Auth.Enabled = true

	a, err := app.New(context.Background(), cfg, db, nil, app.Options{Model: model})
	require.NoError(t, err)

	server := httptest.NewServer(a.Router)
	ts := &TestServer{Server: server, App: a, Token: token}
	require.NoError(t, ts.AddAPIKey(token))

	t.Cleanup(func() {
		server.Close()
		_ = db.Close()
	})

	return ts
}

// AddAPIKey registers another accepted token.
func (ts *TestServer) AddAPIKey(token string) error {
	return ts.App.Keys.Add(context.Background(), token, "test")
}

// Client returns an HTTP client that sends the server's bearer token.
func (ts *TestServer) Client() *http.Client {
	return &http.Client{Transport: &bearerTransport{token: ts.Token, base: http.DefaultTransport}}
}

type bearerTransport struct {
	token string
	base  http.RoundTripper
}

func (b *bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("Authorization", "Bearer "+b.token)
	return b.base.RoundTrip(req)
}
