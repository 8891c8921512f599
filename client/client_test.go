package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"erp-access/auth"
	"erp-access/config"
	"erp-access/controllers"
	"erp-access/database"
	"erp-access/permissions"
	"erp-access/repositories"
	"erp-access/roleeditor"
	"erp-access/routes"
	"erp-access/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	db, err := database.Open(config.DatabaseConfig{Driver: "sqlite", DSN: ":memory:", LogLevel: "silent"})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	reg := permissions.Default()
	require.NoError(t, database.SeedInitialData(db, reg, "adminpassword", zap.NewNop()))

	roleRepo := repositories.NewRoleRepository(db)
	cache := services.NewMemoryCache(time.Minute)
	table, err := routes.Default(reg)
	require.NoError(t, err)

	srv := httptest.NewServer(controllers.NewContainer(controllers.Deps{
		Users:    services.NewUserService(repositories.NewUserRepository(db), roleRepo, reg, cache, nil, nil),
		Roles:    services.NewRoleService(roleRepo, reg, services.RoleServiceOptions{Strict: true, Cache: cache}),
		Registry: reg,
		Guard:    routes.NewGuard(table, nil),
		Tokens:   auth.NewTokenManager("test-secret", time.Hour),
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestLoginAndCurrentUser(t *testing.T) {
	srv := newTestServer(t)
	ctx := context.Background()
	c := New(srv.URL, "")

	_, err := c.Login(ctx, "admin", "nope")
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, "Invalid credentials", apiErr.Message)

	token, err := c.Login(ctx, "admin", "adminpassword")
	require.NoError(t, err)
	assert.Equal(t, token, c.Token())

	cur, err := c.CurrentUser(ctx)
	require.NoError(t, err)
	assert.Equal(t, "admin", cur.User.Username)
	assert.True(t, cur.Set().Has("SA_SECROLES"))
}

func TestEditorOverHTTP(t *testing.T) {
	srv := newTestServer(t)
	ctx := context.Background()
	c := New(srv.URL, "")
	_, err := c.Login(ctx, "admin", "adminpassword")
	require.NoError(t, err)

	ed := roleeditor.New(c, permissions.Default(), nil)
	require.NoError(t, ed.Refresh(ctx))
	assert.Len(t, ed.Roles(), 2)

	ed.SetName("Buyer")
	require.NoError(t, ed.Check("Purchase Transactions"))
	require.NoError(t, ed.Check("Purchase order entry"))
	out, err := ed.Submit(ctx)
	require.NoError(t, err)
	assert.True(t, out.Created)
	assert.Equal(t, "5632", *out.Role.Sections)
	assert.Equal(t, "5635", *out.Role.Areas)
	assert.Len(t, ed.Roles(), 3)

	require.NoError(t, ed.Select(ctx, out.Role.ID))
	assert.Equal(t, []string{"Purchase Transactions", "Purchase order entry"}, ed.Checked())

	// Duplicate name surfaces the server message and keeps the form.
	ed.Reset()
	ed.SetName("Buyer")
	_, err = ed.Submit(ctx)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusConflict, apiErr.StatusCode)
	assert.Equal(t, "role name already exists", apiErr.Message)
	assert.Equal(t, "Buyer", ed.Name())

	require.NoError(t, ed.Select(ctx, out.Role.ID))
	require.NoError(t, ed.Delete(ctx))
	assert.Len(t, ed.Roles(), 2)

	_, err = c.GetRole(ctx, out.Role.ID)
	assert.Equal(t, http.StatusNotFound, StatusCode(err))
}

func TestNavigationOverHTTP(t *testing.T) {
	srv := newTestServer(t)
	ctx := context.Background()
	c := New(srv.URL, "")
	_, err := c.Login(ctx, "admin", "adminpassword")
	require.NoError(t, err)

	d, err := c.ResolveRoute(ctx, "/setup/security-roles")
	require.NoError(t, err)
	assert.Equal(t, "page", d.View)
	assert.Equal(t, "SA_SECROLES", d.Route.Permission)

	items, err := c.Navigation(ctx)
	require.NoError(t, err)
	for _, item := range items {
		assert.True(t, item.Allowed, item.Path)
	}

	perms, err := c.ListPermissions(ctx)
	require.NoError(t, err)
	assert.Len(t, perms, permissions.Default().Len())

	tree, err := c.PermissionTree(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, tree)
}

func TestUnauthenticated(t *testing.T) {
	srv := newTestServer(t)
	_, err := New(srv.URL, "").ListRoles(context.Background())
	assert.Equal(t, http.StatusUnauthorized, StatusCode(err))
}

func TestAPIErrorFallbackMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream exploded", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := New(srv.URL, "t").ListRoles(context.Background())
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "request failed with status 502", apiErr.Message)
	assert.Contains(t, apiErr.Body, "upstream exploded")
}
