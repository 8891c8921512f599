package controllers

import (
	"net/http"

	"erp-access/auth"
	"erp-access/permissions"

	restfulspec "github.com/emicklei/go-restful-openapi/v2"
	restful "github.com/emicklei/go-restful/v3"
)

// PermissionController serves the read-only permission registry.
type PermissionController struct {
	registry *permissions.Registry
	tokens   *auth.TokenManager
}

func NewPermissionController(registry *permissions.Registry, tokens *auth.TokenManager) *PermissionController {
	return &PermissionController{registry: registry, tokens: tokens}
}

func (ctl *PermissionController) RegisterRoutes(ws *restful.WebService) {
	tags := []string{"permissions"}
	authn := auth.AuthFilter(ctl.tokens)

	ws.Route(ws.GET("/permissions").Filter(authn).To(ctl.listHandler).
		Doc("List every permission in ID order").
		Metadata(restfulspec.KeyOpenAPITags, tags).
		Writes([]permissions.Permission{}).
		Returns(http.StatusOK, "OK", []permissions.Permission{}))

	ws.Route(ws.GET("/permissions/tree").Filter(authn).To(ctl.treeHandler).
		Doc("List every section with its areas").
		Metadata(restfulspec.KeyOpenAPITags, tags).
		Writes([]permissions.Node{}).
		Returns(http.StatusOK, "OK", []permissions.Node{}))
}

func (ctl *PermissionController) listHandler(_ *restful.Request, response *restful.Response) {
	_ = response.WriteHeaderAndJson(http.StatusOK, ctl.registry.All(), restful.MIME_JSON)
}

func (ctl *PermissionController) treeHandler(_ *restful.Request, response *restful.Response) {
	_ = response.WriteHeaderAndJson(http.StatusOK, ctl.registry.FullTree(), restful.MIME_JSON)
}
