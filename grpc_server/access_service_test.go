package grpcserver

import (
	"context"
	"net"
	"testing"
	"time"

	"erp-access/auth"
	"erp-access/config"
	"erp-access/database"
	"erp-access/permissions"
	"erp-access/repositories"
	"erp-access/routes"
	"erp-access/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

func startServer(t *testing.T) *grpc.ClientConn {
	t.Helper()
	db, err := database.Open(config.DatabaseConfig{Driver: "sqlite", DSN: ":memory:", LogLevel: "silent"})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	reg := permissions.Default()
	require.NoError(t, database.SeedInitialData(db, reg, "adminpassword", zap.NewNop()))

	roleRepo := repositories.NewRoleRepository(db)
	users := services.NewUserService(repositories.NewUserRepository(db), roleRepo, reg, nil, nil, nil)
	table, err := routes.Default(reg)
	require.NoError(t, err)
	tokens := auth.NewTokenManager("test-secret", time.Hour)

	// A clerk that may only quote.
	roles := services.NewRoleService(roleRepo, reg, services.RoleServiceOptions{Strict: true})
	role, err := roles.CreateRole(context.Background(), &services.RoleInput{Role: "Quoter", Permissions: []string{"Sales Transactions", "Sales quotations"}})
	require.NoError(t, err)
	admin, err := repositories.NewUserRepository(db).FindByUsername(context.Background(), "admin")
	require.NoError(t, err)
	_, err = users.CreateUser(context.Background(), &services.CreateUserInput{Username: "quoter", Password: "secret123", RoleID: &role.ID}, admin.ID)
	require.NoError(t, err)

	srv, _ := NewServer(NewAccessServiceServer(users, tokens, routes.NewGuard(table, nil), nil, nil), tokens, zap.NewNop())
	lis := bufconn.Listen(1 << 20)
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestAccessService(t *testing.T) {
	conn := startServer(t)
	c := NewAccessClient(conn)
	ctx := context.Background()

	token, msg, err := c.Login(ctx, "quoter", "wrong")
	require.NoError(t, err)
	assert.Empty(t, token)
	assert.Equal(t, "Invalid credentials", msg)

	token, _, err = c.Login(ctx, "quoter", "secret123")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	authed := WithToken(ctx, token)

	granted, err := c.CheckPermission(authed, "SA_SALESQUOTE")
	require.NoError(t, err)
	assert.True(t, granted)

	granted, err = c.CheckPermission(authed, "SA_SALESORDER")
	require.NoError(t, err)
	assert.False(t, granted)

	view, page, err := c.ResolveRoute(authed, "/sales/orders/3")
	require.NoError(t, err)
	assert.Equal(t, "denied", view)
	assert.Equal(t, "sales-order", page)

	view, _, err = c.ResolveRoute(authed, "/sales/quotations")
	require.NoError(t, err)
	assert.Equal(t, "page", view)

	_, _, err = c.ResolveRoute(authed, "/nowhere")
	assert.Equal(t, codes.NotFound, status.Code(err))

	codesList, err := c.Permissions(authed)
	require.NoError(t, err)
	assert.Equal(t, []string{"SA_SALESQUOTE", "SS_SALES"}, codesList)
}

func TestValidateToken(t *testing.T) {
	conn := startServer(t)
	c := NewAccessClient(conn)
	ctx := context.Background()

	token, _, err := c.Login(ctx, "admin", "adminpassword")
	require.NoError(t, err)

	valid, username, err := c.ValidateToken(ctx, token)
	require.NoError(t, err)
	assert.True(t, valid)
	assert.Equal(t, "admin", username)

	valid, _, err = c.ValidateToken(ctx, "garbage")
	require.NoError(t, err)
	assert.False(t, valid)
}

func TestAccessServiceRequiresToken(t *testing.T) {
	conn := startServer(t)
	c := NewAccessClient(conn)

	_, err := c.CheckPermission(context.Background(), "SA_SALESQUOTE")
	assert.Equal(t, codes.Unauthenticated, status.Code(err))

	_, err = c.CheckPermission(WithToken(context.Background(), "garbage"), "SA_SALESQUOTE")
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
}

func TestHealthIsPublic(t *testing.T) {
	conn := startServer(t)

	resp, err := healthpb.NewHealthClient(conn).Check(context.Background(), &healthpb.HealthCheckRequest{Service: ServiceName})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.GetStatus())
}
