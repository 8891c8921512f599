package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"erp-access/auth"
	"erp-access/config"
	"erp-access/controllers"
	"erp-access/database"
	grpcserver "erp-access/grpc_server"
	"erp-access/metrics"
	"erp-access/permissions"
	"erp-access/registry"
	"erp-access/repositories"
	"erp-access/routes"
	"erp-access/services"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger, _ := zap.NewProduction()
	if cfg.LogLevel == "debug" {
		logger, _ = zap.NewDevelopment()
	}
	defer logger.Sync() // Make sure the buffer is flushed before the program exits

	if err := run(cfg, logger); err != nil {
		logger.Fatal("Server exited with error", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	if cfg.InsecureSecret() {
		logger.Warn("Using the default JWT secret; set ERPACCESS_JWT_SECRET in production")
	}

	db, err := database.Open(cfg.Database)
	if err != nil {
		return err
	}
	if err := database.Migrate(db); err != nil {
		return err
	}
	reg := permissions.Default()
	if err := database.SeedInitialData(db, reg, cfg.Seed.AdminPassword, logger); err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("database handle: %w", err)
	}
	defer sqlDB.Close()

	m := metrics.New()
	cache, closeCache := newCache(cfg, logger)
	defer closeCache()

	roleRepo := repositories.NewRoleRepository(db)
	users := services.NewUserService(repositories.NewUserRepository(db), roleRepo, reg, cache, m, logger)
	roles := services.NewRoleService(roleRepo, reg, services.RoleServiceOptions{
		Strict:  cfg.Permissions.Strict,
		Cache:   cache,
		Metrics: m,
		Logger:  logger,
	})
	table, err := routes.Default(reg)
	if err != nil {
		return err
	}
	guard := routes.NewGuard(table, m)
	tokens := auth.NewTokenManager(cfg.JwtSecret, cfg.TokenTTL)

	httpServer := &http.Server{
		Addr: ":" + strconv.Itoa(cfg.HTTPPort),
		Handler: controllers.NewContainer(controllers.Deps{
			Users:    users,
			Roles:    roles,
			Registry: reg,
			Guard:    guard,
			Tokens:   tokens,
			Metrics:  m,
			Logger:   logger,
			Ping:     sqlDB.PingContext,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	grpcServer, healthServer := grpcserver.NewServer(
		grpcserver.NewAccessServiceServer(users, tokens, guard, m, logger.Named("access")),
		tokens, logger)
	lis, err := net.Listen("tcp", ":"+strconv.Itoa(cfg.GRPCPort))
	if err != nil {
		return fmt.Errorf("grpc listen: %w", err)
	}

	errCh := make(chan error, 2)
	go func() {
		logger.Info("HTTP server listening", zap.Int("port", cfg.HTTPPort))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()
	go func() {
		logger.Info("gRPC server listening", zap.Int("port", cfg.GRPCPort))
		if err := grpcServer.Serve(lis); err != nil {
			errCh <- fmt.Errorf("grpc server: %w", err)
		}
	}()

	deregister := registerWithConsul(cfg, logger)
	defer deregister()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("Shutting down")
	case runErr = <-errCh:
	}

	healthServer.Shutdown()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP shutdown failed", zap.Error(err))
	}
	grpcServer.GracefulStop()
	return runErr
}

func newCache(cfg *config.Config, logger *zap.Logger) (services.PermissionCache, func()) {
	if cfg.Cache.Type != "redis" {
		return services.NewMemoryCache(cfg.Cache.TTL), func() {}
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		// Reads and writes still fall through to the database.
		logger.Warn("Redis not reachable, permission cache will miss", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
	}
	return services.NewRedisCache(rdb, cfg.Cache.TTL), func() { _ = rdb.Close() }
}

// registerWithConsul announces both listeners and returns the matching
// deregistration. It is a no-op unless consul.enabled is set.
func registerWithConsul(cfg *config.Config, logger *zap.Logger) func() {
	if !cfg.Consul.Enabled {
		return func() {}
	}
	sugar := logger.Sugar()
	reg, err := registry.NewConsulRegistry(cfg.Consul, sugar)
	if err != nil {
		sugar.Warnw("Service registration skipped", "error", err)
		return func() {}
	}

	host := cfg.Consul.ServiceHost
	httpID := registry.NewInstanceID(cfg.ServiceName, registry.TagHTTP)
	grpcID := registry.NewInstanceID(cfg.ServiceName, registry.TagGRPC)
	var ids []string
	if err := reg.Register(httpID, cfg.ServiceName, host, cfg.HTTPPort, []string{registry.TagHTTP},
		registry.CreateHTTPCheck(httpID, host, cfg.HTTPPort, "/health", "10s", "1s")); err == nil {
		ids = append(ids, httpID)
	}
	grpcTarget := net.JoinHostPort(host, strconv.Itoa(cfg.GRPCPort))
	if err := reg.Register(grpcID, cfg.ServiceName, host, cfg.GRPCPort, []string{registry.TagGRPC},
		registry.CreateGRPCCheck(grpcID, grpcTarget, "10s", "1s", false)); err == nil {
		ids = append(ids, grpcID)
	}

	return func() {
		for _, id := range ids {
			_ = reg.Deregister(id)
		}
	}
}
