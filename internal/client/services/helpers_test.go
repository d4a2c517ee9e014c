package services

import (
	"context"
	"fmt"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/dmitrijs2005/useradmin/internal/client/client"
	"github.com/dmitrijs2005/useradmin/internal/client/models"
	"github.com/dmitrijs2005/useradmin/internal/fakeapi"
	"github.com/stretchr/testify/require"
)

type staticToken string

func (s staticToken) Token() string { return string(s) }

// newBackend starts a fake API with the seed admin plus extra users and
// returns a client already logged in as the admin.
func newBackend(t *testing.T, extra int) (*fakeapi.Server, *client.RESTClient) {
	t.Helper()
	api := fakeapi.New()
	for i := 1; i <= extra; i++ {
		_, err := api.AddUser(fmt.Sprintf("User %02d", i), fmt.Sprintf("user%02d@example.com", i), "password1", models.RoleUser, models.StatusActive)
		require.NoError(t, err)
	}
	srv := httptest.NewServer(api.Handler())
	t.Cleanup(srv.Close)

	c, err := client.NewRESTClient(srv.URL + "/api")
	require.NoError(t, err)
	res, err := c.Login(context.Background(), fakeapi.SeedAdminEmail, []byte(fakeapi.SeedAdminPassword))
	require.NoError(t, err)
	c.SetTokenSource(staticToken(res.Token))
	return api, c
}

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

func writeTemp(t *testing.T, name string, data []byte) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, data, 0o600))
	return p
}

func networkErr() error {
	return &client.Error{Kind: client.ErrNetwork, Message: "server unavailable: connection refused"}
}
