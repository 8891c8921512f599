package controllers

import (
	"net/http"
	"strconv"

	"erp-access/auth"
	"erp-access/metrics"
	"erp-access/models"
	"erp-access/services"

	restfulspec "github.com/emicklei/go-restful-openapi/v2"
	restful "github.com/emicklei/go-restful/v3"
	"go.uber.org/zap"
)

// ManageRoles gates every role endpoint.
const ManageRoles = "SA_SECROLES"

type RoleController struct {
	roles   services.RoleService
	perms   auth.PermissionSource
	tokens  *auth.TokenManager
	metrics *metrics.Metrics
	logger  *zap.Logger
}

func NewRoleController(roles services.RoleService, perms auth.PermissionSource, tokens *auth.TokenManager, m *metrics.Metrics, logger *zap.Logger) *RoleController {
	return &RoleController{roles: roles, perms: perms, tokens: tokens, metrics: m, logger: logger}
}

// RoleResponse mirrors the role payload plus its ID.
type RoleResponse struct {
	ID          uint    `json:"id"`
	Role        string  `json:"role"`
	Description string  `json:"description"`
	Sections    *string `json:"sections"`
	Areas       *string `json:"areas"`
	Inactive    bool    `json:"inactive"`
}

func mapModelToRoleResponse(role *models.Role) RoleResponse {
	return RoleResponse{
		ID:          role.ID,
		Role:        role.Name,
		Description: role.Description,
		Sections:    role.Sections,
		Areas:       role.Areas,
		Inactive:    role.Inactive,
	}
}

func (ctl *RoleController) RegisterRoutes(ws *restful.WebService) {
	tags := []string{"roles"}
	authn := auth.AuthFilter(ctl.tokens)
	guard := auth.RequirePermission(ctl.perms, ManageRoles, ctl.metrics, ctl.logger)

	ws.Route(ws.GET("/roles").Filter(authn).Filter(guard).To(ctl.listRolesHandler).
		Doc("List security roles").
		Param(ws.QueryParameter("inactive", "Include inactive roles").DataType("boolean").DefaultValue("false")).
		Metadata(restfulspec.KeyOpenAPITags, tags).
		Writes([]RoleResponse{}).
		Returns(http.StatusOK, "OK", []RoleResponse{}).
		Returns(http.StatusForbidden, "Permission denied", MessageResponse{}))

	ws.Route(ws.POST("/roles").Filter(authn).Filter(guard).To(ctl.createRoleHandler).
		Doc("Create a security role").
		Metadata(restfulspec.KeyOpenAPITags, tags).
		Reads(services.RoleInput{}).
		Returns(http.StatusCreated, "Role created", RoleResponse{}).
		Returns(http.StatusBadRequest, "Validation failed", MessageResponse{}).
		Returns(http.StatusConflict, "Role name already exists", MessageResponse{}))

	ws.Route(ws.GET("/roles/{role-id}").Filter(authn).Filter(guard).To(ctl.getRoleHandler).
		Doc("Get a security role").
		Param(ws.PathParameter("role-id", "Identifier of the role").DataType("integer")).
		Metadata(restfulspec.KeyOpenAPITags, tags).
		Writes(RoleResponse{}).
		Returns(http.StatusOK, "OK", RoleResponse{}).
		Returns(http.StatusNotFound, "Role not found", MessageResponse{}))

	ws.Route(ws.GET("/roles/{role-id}/permissions").Filter(authn).Filter(guard).To(ctl.rolePermissionsHandler).
		Doc("List the permission names checked in a role").
		Param(ws.PathParameter("role-id", "Identifier of the role").DataType("integer")).
		Metadata(restfulspec.KeyOpenAPITags, tags).
		Writes([]string{}).
		Returns(http.StatusOK, "OK", []string{}).
		Returns(http.StatusNotFound, "Role not found", MessageResponse{}))

	ws.Route(ws.PUT("/roles/{role-id}").Filter(authn).Filter(guard).To(ctl.updateRoleHandler).
		Doc("Update a security role").
		Param(ws.PathParameter("role-id", "Identifier of the role").DataType("integer")).
		Metadata(restfulspec.KeyOpenAPITags, tags).
		Reads(services.RoleInput{}).
		Returns(http.StatusOK, "Role updated", RoleResponse{}).
		Returns(http.StatusBadRequest, "Validation failed", MessageResponse{}).
		Returns(http.StatusNotFound, "Role not found", MessageResponse{}).
		Returns(http.StatusConflict, "Role name already exists", MessageResponse{}))

	ws.Route(ws.DELETE("/roles/{role-id}").Filter(authn).Filter(guard).To(ctl.deleteRoleHandler).
		Doc("Delete a security role").
		Param(ws.PathParameter("role-id", "Identifier of the role").DataType("integer")).
		Metadata(restfulspec.KeyOpenAPITags, tags).
		Returns(http.StatusNoContent, "Role deleted", nil).
		Returns(http.StatusNotFound, "Role not found", MessageResponse{}).
		Returns(http.StatusConflict, "Role is still assigned to users", MessageResponse{}))
}

func (ctl *RoleController) listRolesHandler(request *restful.Request, response *restful.Response) {
	includeInactive, _ := strconv.ParseBool(request.QueryParameter("inactive"))
	roles, err := ctl.roles.ListRoles(request.Request.Context(), includeInactive)
	if err != nil {
		handleServiceError(response, err, ctl.logger)
		return
	}
	out := make([]RoleResponse, len(roles))
	for i := range roles {
		out[i] = mapModelToRoleResponse(&roles[i])
	}
	_ = response.WriteHeaderAndJson(http.StatusOK, out, restful.MIME_JSON)
}

func (ctl *RoleController) createRoleHandler(request *restful.Request, response *restful.Response) {
	input := new(services.RoleInput)
	if err := request.ReadEntity(input); err != nil {
		writeMessage(response, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	role, err := ctl.roles.CreateRole(request.Request.Context(), input)
	if err != nil {
		handleServiceError(response, err, ctl.logger)
		return
	}
	_ = response.WriteHeaderAndJson(http.StatusCreated, mapModelToRoleResponse(role), restful.MIME_JSON)
}

func (ctl *RoleController) getRoleHandler(request *restful.Request, response *restful.Response) {
	id, ok := pathID(request, response, "role-id")
	if !ok {
		return
	}
	role, err := ctl.roles.GetRole(request.Request.Context(), id)
	if err != nil {
		handleServiceError(response, err, ctl.logger)
		return
	}
	_ = response.WriteHeaderAndJson(http.StatusOK, mapModelToRoleResponse(role), restful.MIME_JSON)
}

func (ctl *RoleController) rolePermissionsHandler(request *restful.Request, response *restful.Response) {
	id, ok := pathID(request, response, "role-id")
	if !ok {
		return
	}
	names, err := ctl.roles.RolePermissions(request.Request.Context(), id)
	if err != nil {
		handleServiceError(response, err, ctl.logger)
		return
	}
	if names == nil {
		names = []string{}
	}
	_ = response.WriteHeaderAndJson(http.StatusOK, names, restful.MIME_JSON)
}

func (ctl *RoleController) updateRoleHandler(request *restful.Request, response *restful.Response) {
	id, ok := pathID(request, response, "role-id")
	if !ok {
		return
	}
	input := new(services.RoleInput)
	if err := request.ReadEntity(input); err != nil {
		writeMessage(response, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	role, err := ctl.roles.UpdateRole(request.Request.Context(), id, input)
	if err != nil {
		handleServiceError(response, err, ctl.logger)
		return
	}
	_ = response.WriteHeaderAndJson(http.StatusOK, mapModelToRoleResponse(role), restful.MIME_JSON)
}

func (ctl *RoleController) deleteRoleHandler(request *restful.Request, response *restful.Response) {
	id, ok := pathID(request, response, "role-id")
	if !ok {
		return
	}
	if err := ctl.roles.DeleteRole(request.Request.Context(), id); err != nil {
		handleServiceError(response, err, ctl.logger)
		return
	}
	response.WriteHeader(http.StatusNoContent)
}
