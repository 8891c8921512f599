package controllers

import (
	"errors"
	"net/http"

	"erp-access/auth"
	"erp-access/permissions"
	"erp-access/routes"

	restfulspec "github.com/emicklei/go-restful-openapi/v2"
	restful "github.com/emicklei/go-restful/v3"
	"go.uber.org/zap"
)

// NavigationController exposes the route guard to the front end.
type NavigationController struct {
	guard  *routes.Guard
	perms  auth.PermissionSource
	tokens *auth.TokenManager
	logger *zap.Logger
}

func NewNavigationController(guard *routes.Guard, perms auth.PermissionSource, tokens *auth.TokenManager, logger *zap.Logger) *NavigationController {
	return &NavigationController{guard: guard, perms: perms, tokens: tokens, logger: logger}
}

func (ctl *NavigationController) RegisterRoutes(ws *restful.WebService) {
	tags := []string{"navigation"}
	authn := auth.AuthFilter(ctl.tokens)

	ws.Route(ws.GET("/navigation").Filter(authn).To(ctl.menuHandler).
		Doc("List screens with whether the session may open them").
		Metadata(restfulspec.KeyOpenAPITags, tags).
		Writes([]routes.MenuItem{}).
		Returns(http.StatusOK, "OK", []routes.MenuItem{}))

	ws.Route(ws.GET("/navigation/resolve").Filter(authn).To(ctl.resolveHandler).
		Doc("Decide whether a path renders its page or the denial view").
		Param(ws.QueryParameter("path", "Front-end path").DataType("string").Required(true)).
		Metadata(restfulspec.KeyOpenAPITags, tags).
		Writes(routes.Decision{}).
		Returns(http.StatusOK, "OK", routes.Decision{}).
		Returns(http.StatusNotFound, "No route matches path", MessageResponse{}))
}

// sessionPermissions loads the caller's permission object. Failures yield
// nil, which denies every gated route.
func (ctl *NavigationController) sessionPermissions(request *restful.Request) permissions.Set {
	userID, ok := auth.UserID(request)
	if !ok {
		return nil
	}
	perms, err := ctl.perms.Permissions(request.Request.Context(), userID)
	if err != nil {
		ctl.logger.Warn("Permission lookup failed, denying gated routes", zap.Uint("user_id", userID), zap.Error(err))
		return nil
	}
	return perms
}

func (ctl *NavigationController) menuHandler(request *restful.Request, response *restful.Response) {
	_ = response.WriteHeaderAndJson(http.StatusOK, ctl.guard.Menu(ctl.sessionPermissions(request)), restful.MIME_JSON)
}

func (ctl *NavigationController) resolveHandler(request *restful.Request, response *restful.Response) {
	path := request.QueryParameter("path")
	if path == "" {
		writeMessage(response, http.StatusBadRequest, "path is required")
		return
	}
	decision, err := ctl.guard.Resolve(path, ctl.sessionPermissions(request))
	if errors.Is(err, routes.ErrNoRoute) {
		writeMessage(response, http.StatusNotFound, err.Error())
		return
	} else if err != nil {
		handleServiceError(response, err, ctl.logger)
		return
	}
	_ = response.WriteHeaderAndJson(http.StatusOK, decision, restful.MIME_JSON)
}
