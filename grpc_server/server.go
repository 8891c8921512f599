package grpcserver

import (
	"erp-access/auth"
	"erp-access/interceptors"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// PublicMethods skip token authentication.
var PublicMethods = []string{
	MethodLogin,
	MethodValidateToken,
	healthpb.Health_Check_FullMethodName,
	healthpb.Health_Watch_FullMethodName,
}

// NewServer builds a gRPC server carrying the access service and the
// standard health service. Calls are authenticated, then logged.
func NewServer(access AccessServer, tokens *auth.TokenManager, logger *zap.Logger) (*grpc.Server, *health.Server) {
	srv := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			interceptors.AuthInterceptor(tokens, PublicMethods...),
			interceptors.ZapLoggingInterceptor(logger.Named("grpc")),
		),
	)
	srv.RegisterService(&AccessServiceDesc, access)

	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(srv, healthServer)
	healthServer.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	return srv, healthServer
}
