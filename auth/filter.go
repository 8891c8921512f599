package auth

import (
	"context"
	"net/http"
	"strings"

	"erp-access/metrics"
	"erp-access/permissions"

	restful "github.com/emicklei/go-restful/v3"
	"go.uber.org/zap"
)

// Request attribute names set by AuthFilter.
const (
	AttrUserID   = "user_id"
	AttrUsername = "username"
)

// PermissionSource resolves the permission object of a user.
type PermissionSource interface {
	Permissions(ctx context.Context, userID uint) (permissions.Set, error)
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" value.
func BearerToken(header string) (string, bool) {
	parts := strings.Split(header, " ")
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// AuthFilter creates a go-restful FilterFunction for JWT authentication.
func AuthFilter(tm *TokenManager) restful.FilterFunction {
	return func(req *restful.Request, resp *restful.Response, chain *restful.FilterChain) {
		authHeader := req.HeaderParameter("Authorization")
		if authHeader == "" {
			_ = resp.WriteHeaderAndJson(http.StatusUnauthorized, map[string]string{"message": "Authorization header required"}, restful.MIME_JSON)
			return
		}

		tokenString, ok := BearerToken(authHeader)
		if !ok {
			_ = resp.WriteHeaderAndJson(http.StatusUnauthorized, map[string]string{"message": "Invalid authorization header format"}, restful.MIME_JSON)
			return
		}

		claims, err := tm.ParseAndValidateToken(tokenString)
		if err != nil {
			_ = resp.WriteHeaderAndJson(http.StatusUnauthorized, map[string]string{"message": err.Error()}, restful.MIME_JSON)
			return
		}

		req.SetAttribute(AttrUserID, claims.UserID)
		req.SetAttribute(AttrUsername, claims.Username)
		chain.ProcessFilter(req, resp)
	}
}

// UserID returns the authenticated user of the request.
func UserID(req *restful.Request) (uint, bool) {
	id, ok := req.Attribute(AttrUserID).(uint)
	return id, ok
}

// RequirePermission lets the request through only when the authenticated
// user's permission object holds code. It must run after AuthFilter. Any
// failure to resolve permissions denies the request.
func RequirePermission(src PermissionSource, code string, m *metrics.Metrics, logger *zap.Logger) restful.FilterFunction {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(req *restful.Request, resp *restful.Response, chain *restful.FilterChain) {
		userID, ok := UserID(req)
		if !ok {
			_ = resp.WriteHeaderAndJson(http.StatusUnauthorized, map[string]string{"message": "Authentication required"}, restful.MIME_JSON)
			return
		}

		perms, err := src.Permissions(req.Request.Context(), userID)
		if err != nil {
			logger.Warn("Permission lookup failed", zap.Uint("user_id", userID), zap.String("permission", code), zap.Error(err))
			perms = nil
		}

		allowed := perms.Has(code)
		m.GuardDecision(code, allowed)
		if !allowed {
			_ = resp.WriteHeaderAndJson(http.StatusForbidden, map[string]string{"message": "permission denied"}, restful.MIME_JSON)
			return
		}
		chain.ProcessFilter(req, resp)
	}
}
