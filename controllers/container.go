package controllers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"erp-access/auth"
	"erp-access/metrics"
	"erp-access/permissions"
	"erp-access/routes"
	"erp-access/services"

	restfulspec "github.com/emicklei/go-restful-openapi/v2"
	restful "github.com/emicklei/go-restful/v3"
	"github.com/go-openapi/spec"
	"go.uber.org/zap"
)

// Deps are the collaborators of the HTTP API.
type Deps struct {
	Users    services.UserService
	Roles    services.RoleService
	Registry *permissions.Registry
	Guard    *routes.Guard
	Tokens   *auth.TokenManager
	Metrics  *metrics.Metrics
	Logger   *zap.Logger
	// Ping reports backend health for /health. Optional.
	Ping func(ctx context.Context) error
}

// NewContainer wires every controller under /api/v1 plus /health,
// /metrics and the OpenAPI document at /apidocs.json.
func NewContainer(d Deps) *restful.Container {
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	container := restful.NewContainer()
	container.DoNotRecover(false)
	container.RecoverHandler(func(panicReason interface{}, w http.ResponseWriter) {
		d.Logger.Error("Recovered from panic", zap.Any("reason", panicReason))
		w.Header().Set("Content-Type", restful.MIME_JSON)
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"message":"Internal Server Error"}`))
	})
	container.Filter(RequestLogger(d.Logger))

	ws := new(restful.WebService)
	ws.Path("/api/v1").Consumes(restful.MIME_JSON).Produces(restful.MIME_JSON)

	NewAuthController(d.Users, d.Tokens, d.Logger).RegisterRoutes(ws)
	NewUserController(d.Users, d.Tokens, d.Logger).RegisterRoutes(ws)
	NewRoleController(d.Roles, d.Users, d.Tokens, d.Metrics, d.Logger).RegisterRoutes(ws)
	NewPermissionController(d.Registry, d.Tokens).RegisterRoutes(ws)
	NewNavigationController(d.Guard, d.Users, d.Tokens, d.Logger).RegisterRoutes(ws)
	container.Add(ws)

	health := new(restful.WebService)
	health.Path("/health").Produces(restful.MIME_JSON)
	health.Route(health.GET("").To(healthHandler(d.Ping)).
		Doc("Liveness and database check").
		Metadata(restfulspec.KeyOpenAPITags, []string{"health"}))
	container.Add(health)

	if d.Metrics != nil {
		container.Handle("/metrics", d.Metrics.Handler())
	}

	container.Add(restfulspec.NewOpenAPIService(restfulspec.Config{
		WebServices:                   container.RegisteredWebServices(),
		APIPath:                       "/apidocs.json",
		PostBuildSwaggerObjectHandler: enrichSwaggerObject,
	}))
	return container
}

func enrichSwaggerObject(swo *spec.Swagger) {
	swo.Info = &spec.Info{
		InfoProps: spec.InfoProps{
			Title:       "ERP access service",
			Description: "Security roles, permission objects and route guard",
			Version:     "1.0.0",
		},
	}
}

func healthHandler(ping func(ctx context.Context) error) restful.RouteFunction {
	return func(request *restful.Request, response *restful.Response) {
		if ping != nil {
			ctx, cancel := context.WithTimeout(request.Request.Context(), 2*time.Second)
			defer cancel()
			if err := ping(ctx); err != nil {
				_ = response.WriteHeaderAndJson(http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "error": err.Error()}, restful.MIME_JSON)
				return
			}
		}
		_ = response.WriteHeaderAndJson(http.StatusOK, map[string]string{"status": "ok"}, restful.MIME_JSON)
	}
}

// RequestLogger logs each request after it has been handled.
func RequestLogger(logger *zap.Logger) restful.FilterFunction {
	return func(req *restful.Request, resp *restful.Response, chain *restful.FilterChain) {
		startTime := time.Now()

		chain.ProcessFilter(req, resp)

		logger.Info("Request",
			zap.String("client_ip", clientIP(req.Request)),
			zap.String("method", req.Request.Method),
			zap.Int("status_code", resp.StatusCode()),
			zap.Duration("latency", time.Since(startTime)),
			zap.String("user_agent", req.Request.UserAgent()),
			zap.String("path", req.Request.URL.Path),
		)
	}
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return strings.TrimSpace(strings.Split(fwd, ",")[0])
	}
	host := r.RemoteAddr
	if i := strings.LastIndex(host, ":"); i > 0 {
		host = host[:i]
	}
	return host
}
