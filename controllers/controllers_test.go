package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"erp-access/auth"
	"erp-access/config"
	"erp-access/database"
	"erp-access/metrics"
	"erp-access/permissions"
	"erp-access/repositories"
	"erp-access/routes"
	"erp-access/services"

	restful "github.com/emicklei/go-restful/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type testAPI struct {
	container *restful.Container
	tokens    *auth.TokenManager
	users     services.UserService
	roles     services.RoleService
	admin     string
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	db, err := database.Open(config.DatabaseConfig{Driver: "sqlite", DSN: ":memory:", LogLevel: "silent"})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	reg := permissions.Default()
	require.NoError(t, database.SeedInitialData(db, reg, "adminpassword", zap.NewNop()))

	m := metrics.New()
	cache := services.NewMemoryCache(time.Minute)
	roleRepo := repositories.NewRoleRepository(db)
	users := services.NewUserService(repositories.NewUserRepository(db), roleRepo, reg, cache, m, zap.NewNop())
	roles := services.NewRoleService(roleRepo, reg, services.RoleServiceOptions{Strict: true, Cache: cache, Metrics: m})
	table, err := routes.Default(reg)
	require.NoError(t, err)
	tokens := auth.NewTokenManager("test-secret", time.Hour)

	api := &testAPI{
		container: NewContainer(Deps{
			Users:    users,
			Roles:    roles,
			Registry: reg,
			Guard:    routes.NewGuard(table, m),
			Tokens:   tokens,
			Metrics:  m,
			Logger:   zap.NewNop(),
			Ping:     func(ctx context.Context) error { return nil },
		}),
		tokens: tokens,
		users:  users,
		roles:  roles,
	}
	api.admin = api.login(t, "admin", "adminpassword")
	return api
}

func (a *testAPI) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.container.ServeHTTP(w, req)
	return w
}

func (a *testAPI) login(t *testing.T, username, password string) string {
	t.Helper()
	w := a.do(t, http.MethodPost, "/api/v1/auth/login", "", LoginCredentials{Username: username, Password: password})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Token
}

// clerk creates a user holding only the given permission names.
func (a *testAPI) clerk(t *testing.T, perms ...string) string {
	t.Helper()
	w := a.do(t, http.MethodPost, "/api/v1/roles", a.admin, services.RoleInput{Role: "Clerk", Permissions: perms})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var role RoleResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &role))

	w = a.do(t, http.MethodPost, "/api/v1/users", a.admin, services.CreateUserInput{Username: "clerk", Password: "secret123", RoleID: &role.ID})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return a.login(t, "clerk", "secret123")
}

func decodeMessage(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var m MessageResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &m))
	return m.Message
}

func TestLogin(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(t, http.MethodPost, "/api/v1/auth/login", "", LoginCredentials{Username: "admin", Password: "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid credentials", decodeMessage(t, w))

	w = api.do(t, http.MethodPost, "/api/v1/auth/login", "", LoginCredentials{Username: "admin"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	claims, err := api.tokens.ParseAndValidateToken(api.admin)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Username)
}

func TestCurrentUser(t *testing.T) {
	api := newTestAPI(t)
	token := api.clerk(t, "Sales Transactions", "Sales orders edition")

	w := api.do(t, http.MethodGet, "/api/v1/users/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var cur CurrentUserResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &cur))
	assert.Equal(t, "clerk", cur.User.Username)
	assert.Equal(t, "Clerk", cur.User.RoleName)
	assert.Equal(t, []string{"SA_SALESORDER", "SS_SALES"}, cur.Permissions)

	w = api.do(t, http.MethodGet, "/api/v1/users/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRoleEndpointsRequireSecRoles(t *testing.T) {
	api := newTestAPI(t)
	token := api.clerk(t, "Sales Transactions")

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/api/v1/roles"},
		{http.MethodPost, "/api/v1/roles"},
		{http.MethodGet, "/api/v1/roles/1"},
		{http.MethodPut, "/api/v1/roles/1"},
		{http.MethodDelete, "/api/v1/roles/1"},
	} {
		w := api.do(t, tc.method, tc.path, token, services.RoleInput{Role: "x"})
		assert.Equal(t, http.StatusForbidden, w.Code, tc.method+" "+tc.path)
		assert.Equal(t, "permission denied", decodeMessage(t, w))
	}
}

func TestRoleLifecycle(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(t, http.MethodPost, "/api/v1/roles", api.admin, map[string]interface{}{
		"role": "", "description": "", "sections": nil, "areas": nil, "inactive": false,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Role Name is required", decodeMessage(t, w))

	w = api.do(t, http.MethodPost, "/api/v1/roles", api.admin, map[string]interface{}{
		"role": "Sales Clerk", "description": "desk", "sections": "3072", "areas": "3082;3075", "inactive": false,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var role RoleResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &role))
	assert.Equal(t, "3075;3082", *role.Areas)

	w = api.do(t, http.MethodPost, "/api/v1/roles", api.admin, services.RoleInput{Role: "Sales Clerk"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = api.do(t, http.MethodPost, "/api/v1/roles", api.admin, services.RoleInput{Role: "Typo", Permissions: []string{"Sales ordes edition"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decodeMessage(t, w), "Sales ordes edition")

	path := "/api/v1/roles/" + jsonNumber(role.ID)
	w = api.do(t, http.MethodGet, path+"/permissions", api.admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var names []string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &names))
	assert.Equal(t, []string{"Sales Transactions", "Sales orders edition", "Sales quotations"}, names)

	w = api.do(t, http.MethodPut, path, api.admin, services.RoleInput{Role: "Sales Clerk", Inactive: true})
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &role))
	assert.True(t, role.Inactive)
	assert.Nil(t, role.Sections)

	w = api.do(t, http.MethodGet, "/api/v1/roles", api.admin, nil)
	var list []RoleResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Len(t, list, 2, "inactive roles are hidden by default")

	w = api.do(t, http.MethodGet, "/api/v1/roles?inactive=true", api.admin, nil)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Len(t, list, 3)

	w = api.do(t, http.MethodDelete, path, api.admin, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = api.do(t, http.MethodGet, path, api.admin, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = api.do(t, http.MethodGet, "/api/v1/roles/abc", api.admin, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeleteRoleInUse(t *testing.T) {
	api := newTestAPI(t)
	api.clerk(t)

	w := api.do(t, http.MethodGet, "/api/v1/roles", api.admin, nil)
	var list []RoleResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	var clerkID uint
	for _, r := range list {
		if r.Role == "Clerk" {
			clerkID = r.ID
		}
	}
	require.NotZero(t, clerkID)

	w = api.do(t, http.MethodDelete, "/api/v1/roles/"+jsonNumber(clerkID), api.admin, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestRoleChangeTakesEffectImmediately(t *testing.T) {
	api := newTestAPI(t)
	token := api.clerk(t, "Sales Transactions", "Sales orders edition")

	w := api.do(t, http.MethodGet, "/api/v1/navigation/resolve?path=/sales/orders", token, nil)
	var d routes.Decision
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &d))
	assert.Equal(t, routes.ViewPage, d.View)

	roles, err := api.roles.ListRoles(context.Background(), true)
	require.NoError(t, err)
	for _, r := range roles {
		if r.Name == "Clerk" {
			_, err = api.roles.UpdateRole(context.Background(), r.ID, &services.RoleInput{Role: "Clerk", Permissions: []string{"Sales Transactions"}})
			require.NoError(t, err)
		}
	}

	w = api.do(t, http.MethodGet, "/api/v1/navigation/resolve?path=/sales/orders", token, nil)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &d))
	assert.Equal(t, routes.ViewDenied, d.View)
}

func TestNavigation(t *testing.T) {
	api := newTestAPI(t)
	token := api.clerk(t, "Sales Transactions", "Sales quotations")

	w := api.do(t, http.MethodGet, "/api/v1/navigation/resolve?path="+"/sales/orders/7", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var d routes.Decision
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &d))
	assert.Equal(t, routes.ViewDenied, d.View)
	assert.Equal(t, "sales-order", d.Route.Page)

	w = api.do(t, http.MethodGet, "/api/v1/navigation/resolve?path=/sales/quotations", token, nil)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &d))
	assert.Equal(t, routes.ViewPage, d.View)

	w = api.do(t, http.MethodGet, "/api/v1/navigation/resolve?path=/missing", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = api.do(t, http.MethodGet, "/api/v1/navigation/resolve", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = api.do(t, http.MethodGet, "/api/v1/navigation", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var menu []routes.MenuItem
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &menu))
	allowed := map[string]bool{}
	for _, item := range menu {
		allowed[item.Path] = item.Allowed
	}
	assert.True(t, allowed["/sales/quotations"])
	assert.False(t, allowed["/setup/security-roles"])
}

func TestNavigationFailsClosedForDeletedUser(t *testing.T) {
	api := newTestAPI(t)
	token := api.clerk(t, "Sales Transactions", "Sales quotations")

	claims, err := api.tokens.ParseAndValidateToken(token)
	require.NoError(t, err)
	adminClaims, err := api.tokens.ParseAndValidateToken(api.admin)
	require.NoError(t, err)
	require.NoError(t, api.users.DeleteUser(context.Background(), claims.UserID, adminClaims.UserID))

	w := api.do(t, http.MethodGet, "/api/v1/navigation/resolve?path=/sales/quotations", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var d routes.Decision
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &d))
	assert.Equal(t, routes.ViewDenied, d.View)
}

func TestUserEndpoints(t *testing.T) {
	api := newTestAPI(t)
	token := api.clerk(t)

	w := api.do(t, http.MethodGet, "/api/v1/users", token, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = api.do(t, http.MethodGet, "/api/v1/users?page=1&page_size=1", api.admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var page PaginatedUsersResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.EqualValues(t, 2, page.Total)
	assert.Len(t, page.Users, 1)

	w = api.do(t, http.MethodPost, "/api/v1/users", api.admin, services.CreateUserInput{Username: "clerk", Password: "secret123"})
	assert.Equal(t, http.StatusConflict, w.Code)

	var clerkID uint
	w = api.do(t, http.MethodGet, "/api/v1/users/me", token, nil)
	var cur CurrentUserResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &cur))
	clerkID = cur.User.ID

	w = api.do(t, http.MethodPut, "/api/v1/users/"+jsonNumber(clerkID)+"/role", api.admin, AssignRoleRequest{})
	require.Equal(t, http.StatusOK, w.Code)
	var u UserResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &u))
	assert.Nil(t, u.RoleID)

	w = api.do(t, http.MethodDelete, "/api/v1/users/"+jsonNumber(clerkID), api.admin, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestPermissionsEndpoints(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(t, http.MethodGet, "/api/v1/permissions", api.admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var perms []permissions.Permission
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &perms))
	assert.Len(t, perms, permissions.Default().Len())
	assert.Equal(t, permissions.KindSection, perms[0].Kind)

	w = api.do(t, http.MethodGet, "/api/v1/permissions/tree", api.admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var tree []permissions.Node
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tree))
	assert.Len(t, tree, len(permissions.Default().Sections()))
}

func TestHealthMetricsAndDocs(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	api.do(t, http.MethodGet, "/api/v1/roles", api.admin, nil)
	w = api.do(t, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), `erp_access_guard_decisions_total{outcome="allowed",permission="SA_SECROLES"}`))

	w = api.do(t, http.MethodGet, "/apidocs.json", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "/api/v1/roles/{role-id}")
}

func TestHealthUnavailable(t *testing.T) {
	c := NewContainer(Deps{
		Registry: permissions.Default(),
		Guard:    routes.NewGuard(routes.MustTable(permissions.Default()), nil),
		Tokens:   auth.NewTokenManager("x", time.Hour),
		Ping:     func(context.Context) error { return errors.New("db down") },
	})
	w := httptest.NewRecorder()
	c.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func jsonNumber(id uint) string {
	b, _ := json.Marshal(id)
	return string(b)
}
