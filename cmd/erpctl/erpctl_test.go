package main

import (
	"bytes"
	"net"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"erp-access/auth"
	"erp-access/config"
	"erp-access/controllers"
	"erp-access/database"
	grpcserver "erp-access/grpc_server"
	"erp-access/permissions"
	"erp-access/repositories"
	"erp-access/routes"
	"erp-access/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type testEnv struct {
	httpURL  string
	grpcAddr string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := database.Open(config.DatabaseConfig{Driver: "sqlite", DSN: ":memory:", LogLevel: "silent"})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	reg := permissions.Default()
	require.NoError(t, database.SeedInitialData(db, reg, "adminpassword", zap.NewNop()))

	roleRepo := repositories.NewRoleRepository(db)
	cache := services.NewMemoryCache(time.Minute)
	users := services.NewUserService(repositories.NewUserRepository(db), roleRepo, reg, cache, nil, nil)
	table, err := routes.Default(reg)
	require.NoError(t, err)
	guard := routes.NewGuard(table, nil)
	tokens := auth.NewTokenManager("test-secret", time.Hour)

	srv := httptest.NewServer(controllers.NewContainer(controllers.Deps{
		Users:    users,
		Roles:    services.NewRoleService(roleRepo, reg, services.RoleServiceOptions{Strict: true, Cache: cache}),
		Registry: reg,
		Guard:    guard,
		Tokens:   tokens,
	}))
	t.Cleanup(srv.Close)

	gs, _ := grpcserver.NewServer(grpcserver.NewAccessServiceServer(users, tokens, guard, nil, nil), tokens, zap.NewNop())
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() { _ = gs.Serve(lis) }()
	t.Cleanup(gs.Stop)

	return &testEnv{httpURL: srv.URL, grpcAddr: lis.Addr().String()}
}

// run executes erpctl with args and returns stdout.
func (e *testEnv) run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--server", e.httpURL}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func (e *testEnv) login(t *testing.T) string {
	t.Helper()
	out, err := e.run(t, "adminpassword\n", "login", "admin", "--token", "")
	require.NoError(t, err)
	token := strings.TrimSpace(out)
	require.NotEmpty(t, token)
	return token
}

func TestLoginReadsPasswordFromStdin(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t)

	out, err := env.run(t, "", "--token", token, "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "User: admin")
	assert.Contains(t, out, "Role: System Administrator")
	assert.Contains(t, out, "SA_SECROLES")

	_, err = env.run(t, "", "login", "admin", "--password", "wrong")
	assert.ErrorContains(t, err, "Invalid credentials")
}

func TestRoleLifecycle(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t)

	// Area listed before its section still works.
	out, err := env.run(t, "", "--token", token, "roles", "create",
		"--name", "Buyer", "--description", "Purchasing clerk",
		"-p", "Purchase order entry", "-p", "Purchase Transactions")
	require.NoError(t, err)
	assert.Contains(t, out, `Created role "Buyer"`)

	out, err = env.run(t, "", "--token", token, "roles", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Buyer")
	assert.Contains(t, out, "Purchasing clerk")

	// Seed creates roles 1 and 2.
	out, err = env.run(t, "", "--token", token, "roles", "show", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "Role: Buyer")
	assert.Contains(t, out, "[x] Purchase Transactions")
	assert.Contains(t, out, "    [x] Purchase order entry")

	out, err = env.run(t, "", "--token", token, "roles", "update", "3",
		"--grant", "Supplier invoices", "--revoke", "Purchase order entry", "--inactive")
	require.NoError(t, err)
	assert.Contains(t, out, `Updated role "Buyer"`)

	out, err = env.run(t, "", "--token", token, "roles", "show", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "Status: inactive")
	assert.Contains(t, out, "[x] Supplier invoices")
	assert.Contains(t, out, "[ ] Purchase order entry")

	out, err = env.run(t, "", "--token", token, "roles", "delete", "3")
	require.NoError(t, err)
	assert.Contains(t, out, `Deleted role "Buyer"`)
}

func TestRoleCreateErrors(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t)

	_, err := env.run(t, "", "--token", token, "roles", "create", "-p", "Purchase Transactions")
	assert.ErrorContains(t, err, "Role Name is required")

	_, err = env.run(t, "", "--token", token, "roles", "create", "--name", "X", "-p", "Purchase order entry")
	assert.ErrorContains(t, err, "hidden until section")

	_, err = env.run(t, "", "--token", token, "roles", "create", "--name", "X", "-p", "Teleportation")
	assert.Error(t, err)

	_, err = env.run(t, "", "--token", token, "roles", "show", "abc")
	assert.ErrorContains(t, err, "invalid role id")

	_, err = env.run(t, "", "--token", "", "roles", "list")
	assert.ErrorContains(t, err, "not logged in")
}

func TestAccessCommands(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t)

	out, err := env.run(t, "", "--token", token, "access", "resolve", "/setup/security-roles")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "page\t"), out)
	assert.Contains(t, out, "SA_SECROLES")

	out, err = env.run(t, "", "--token", token, "access", "check", "SA_SECROLES", "--grpc", env.grpcAddr)
	require.NoError(t, err)
	assert.Equal(t, "SA_SECROLES: granted\n", out)

	out, err = env.run(t, "", "--token", token, "access", "menu")
	require.NoError(t, err)
	assert.Contains(t, out, "/sales/orders")

	out, err = env.run(t, "", "--token", token, "permissions", "--tree")
	require.NoError(t, err)
	assert.Contains(t, out, "Sales Transactions (SS_SALES, 3072)")
	assert.Contains(t, out, "    Sales orders edition (SA_SALESORDER, 3075)")

	_, err = env.run(t, "", "--token", token, "access", "check", "SA_SECROLES")
	assert.ErrorContains(t, err, "no gRPC address")
}
