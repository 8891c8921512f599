package grpcserver

import (
	"context"
	"errors"

	"erp-access/auth"
	"erp-access/interceptors"
	"erp-access/metrics"
	"erp-access/routes"
	"erp-access/services"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "access.AccessService"

// Full method names, as seen by interceptors.
const (
	MethodLogin           = "/" + ServiceName + "/Login"
	MethodValidateToken   = "/" + ServiceName + "/ValidateToken"
	MethodCheckPermission = "/" + ServiceName + "/CheckPermission"
	MethodResolveRoute    = "/" + ServiceName + "/ResolveRoute"
	MethodPermissions     = "/" + ServiceName + "/Permissions"
)

// AccessServer is the access service. Messages are google.protobuf.Struct
// values so the default proto codec carries them as is.
//
//	Login            {username, password}  -> {success, token, message}
//	ValidateToken    {token}               -> {valid, user_id, username, error}
//	CheckPermission  {permission}          -> {granted, error}
//	ResolveRoute     {path}                -> {view, page, title, permission}
//	Permissions      {}                    -> {codes}
//
// All but Login and ValidateToken act for the user of the bearer token in
// the call metadata.
type AccessServer interface {
	Login(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	ValidateToken(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	CheckPermission(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	ResolveRoute(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	Permissions(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

type accessServiceServer struct {
	users   services.UserService
	tokens  *auth.TokenManager
	guard   *routes.Guard
	metrics *metrics.Metrics
	logger  *zap.Logger
}

func NewAccessServiceServer(users services.UserService, tokens *auth.TokenManager, guard *routes.Guard, m *metrics.Metrics, logger *zap.Logger) AccessServer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &accessServiceServer{users: users, tokens: tokens, guard: guard, metrics: m, logger: logger}
}

func (s *accessServiceServer) Login(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	username, password := stringField(req, "username"), stringField(req, "password")
	if username == "" || password == "" {
		return nil, status.Error(codes.InvalidArgument, "username and password are required")
	}

	user, err := s.users.Authenticate(ctx, username, password)
	if errors.Is(err, services.ErrInvalidLogin) {
		return reply(map[string]interface{}{"success": false, "message": "Invalid credentials"})
	} else if err != nil {
		s.logger.Error("Login failed", zap.Error(err))
		return nil, status.Error(codes.Internal, "login failed")
	}

	token, err := s.tokens.GenerateToken(user)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "Could not generate token: %v", err)
	}
	return reply(map[string]interface{}{"success": true, "token": token})
}

func (s *accessServiceServer) ValidateToken(_ context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	claims, err := s.tokens.ParseAndValidateToken(stringField(req, "token"))
	if err != nil {
		return reply(map[string]interface{}{"valid": false, "error": err.Error()})
	}
	return reply(map[string]interface{}{
		"valid":    true,
		"user_id":  float64(claims.UserID),
		"username": claims.Username,
	})
}

func (s *accessServiceServer) CheckPermission(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	code := stringField(req, "permission")
	if code == "" {
		return nil, status.Error(codes.InvalidArgument, "permission is required")
	}
	userID, err := caller(ctx)
	if err != nil {
		return nil, err
	}

	perms, err := s.users.Permissions(ctx, userID)
	if err != nil {
		s.logger.Warn("Permission lookup failed", zap.Uint("user_id", userID), zap.Error(err))
		s.metrics.GuardDecision(code, false)
		return reply(map[string]interface{}{"granted": false, "error": "Error checking permissions"})
	}
	granted := perms.Has(code)
	s.metrics.GuardDecision(code, granted)
	if !granted {
		return reply(map[string]interface{}{"granted": false, "error": "Permission denied"})
	}
	return reply(map[string]interface{}{"granted": true})
}

func (s *accessServiceServer) ResolveRoute(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	path := stringField(req, "path")
	if path == "" {
		return nil, status.Error(codes.InvalidArgument, "path is required")
	}
	userID, err := caller(ctx)
	if err != nil {
		return nil, err
	}

	perms, err := s.users.Permissions(ctx, userID)
	if err != nil {
		s.logger.Warn("Permission lookup failed, denying gated routes", zap.Uint("user_id", userID), zap.Error(err))
		perms = nil
	}
	d, err := s.guard.Resolve(path, perms)
	if errors.Is(err, routes.ErrNoRoute) {
		return nil, status.Error(codes.NotFound, err.Error())
	} else if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return reply(map[string]interface{}{
		"view":       string(d.View),
		"page":       d.Route.Page,
		"title":      d.Route.Title,
		"permission": d.Route.Permission,
	})
}

func (s *accessServiceServer) Permissions(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	userID, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	perms, err := s.users.Permissions(ctx, userID)
	if errors.Is(err, services.ErrUserNotFound) {
		return nil, status.Error(codes.NotFound, err.Error())
	} else if err != nil {
		return nil, status.Error(codes.Internal, "could not load permissions")
	}
	list := make([]interface{}, 0, len(perms))
	for _, c := range perms.Codes() {
		list = append(list, c)
	}
	return reply(map[string]interface{}{"codes": list})
}

func caller(ctx context.Context) (uint, error) {
	userID, ok := interceptors.GetUserIDFromContext(ctx)
	if !ok {
		return 0, status.Error(codes.Unauthenticated, "no authenticated user")
	}
	return userID, nil
}

func stringField(req *structpb.Struct, key string) string {
	if req == nil {
		return ""
	}
	return req.GetFields()[key].GetStringValue()
}

func reply(fields map[string]interface{}) (*structpb.Struct, error) {
	out, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encoding reply: %v", err)
	}
	return out, nil
}

// unary adapts one AccessServer method to a grpc method handler.
func unary(fullMethod string, call func(AccessServer, context.Context, *structpb.Struct) (*structpb.Struct, error)) func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	return func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(AccessServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req interface{}) (interface{}, error) {
			return call(srv.(AccessServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// AccessServiceDesc describes AccessServer for grpc.Server.RegisterService.
var AccessServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*AccessServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Login", Handler: unary(MethodLogin, AccessServer.Login)},
		{MethodName: "ValidateToken", Handler: unary(MethodValidateToken, AccessServer.ValidateToken)},
		{MethodName: "CheckPermission", Handler: unary(MethodCheckPermission, AccessServer.CheckPermission)},
		{MethodName: "ResolveRoute", Handler: unary(MethodResolveRoute, AccessServer.ResolveRoute)},
		{MethodName: "Permissions", Handler: unary(MethodPermissions, AccessServer.Permissions)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "access.proto",
}
