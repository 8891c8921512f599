package controllers

import (
	"net/http"
	"strconv"
	"time"

	"erp-access/auth"
	"erp-access/models"
	"erp-access/services"

	restfulspec "github.com/emicklei/go-restful-openapi/v2"
	restful "github.com/emicklei/go-restful/v3"
	"go.uber.org/zap"
)

type UserController struct {
	userService services.UserService
	tokens      *auth.TokenManager
	logger      *zap.Logger
}

func NewUserController(userService services.UserService, tokens *auth.TokenManager, logger *zap.Logger) *UserController {
	return &UserController{userService: userService, tokens: tokens, logger: logger}
}

// UserResponse is the public view of an account.
type UserResponse struct {
	ID        uint      `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	RealName  string    `json:"real_name"`
	RoleID    *uint     `json:"role_id"`
	RoleName  string    `json:"role_name,omitempty"`
	Inactive  bool      `json:"inactive"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type PaginatedUsersResponse struct {
	Users    []UserResponse `json:"users"`
	Total    int64          `json:"total"`
	Page     int            `json:"page"`
	PageSize int            `json:"page_size"`
}

// CurrentUserResponse is the session user and its permission codes.
type CurrentUserResponse struct {
	User        UserResponse `json:"user"`
	Permissions []string     `json:"permissions"`
}

// AssignRoleRequest sets or clears (null) a user's role.
type AssignRoleRequest struct {
	RoleID *uint `json:"role_id"`
}

func mapModelToUserResponse(user *models.User) UserResponse {
	if user == nil {
		return UserResponse{}
	}
	resp := UserResponse{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		RealName:  user.RealName,
		RoleID:    user.RoleID,
		Inactive:  user.Inactive,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
	if user.Role != nil {
		resp.RoleName = user.Role.Name
	}
	return resp
}

// RegisterRoutes sets up the user routes on ws. Every route needs a token;
// the service checks SA_USERS where it applies.
func (ctl *UserController) RegisterRoutes(ws *restful.WebService) {
	tags := []string{"users"}
	authn := auth.AuthFilter(ctl.tokens)

	ws.Route(ws.POST("/users").Filter(authn).To(ctl.createUserHandler).
		Doc("Create a user account").
		Metadata(restfulspec.KeyOpenAPITags, tags).
		Reads(services.CreateUserInput{}).
		Returns(http.StatusCreated, "User created successfully", UserResponse{}).
		Returns(http.StatusBadRequest, "Invalid request body", MessageResponse{}).
		Returns(http.StatusForbidden, "Forbidden", MessageResponse{}).
		Returns(http.StatusConflict, "Username or Email already exists", MessageResponse{}))

	ws.Route(ws.GET("/users/me").Filter(authn).To(ctl.currentUserHandler).
		Doc("Get the logged-in user and its permission object").
		Metadata(restfulspec.KeyOpenAPITags, tags).
		Writes(CurrentUserResponse{}).
		Returns(http.StatusOK, "OK", CurrentUserResponse{}).
		Returns(http.StatusUnauthorized, "Unauthorized", MessageResponse{}))

	ws.Route(ws.GET("/users/{user-id}").Filter(authn).To(ctl.getUserByIDHandler).
		Doc("Get user by ID").
		Param(ws.PathParameter("user-id", "Identifier of the user").DataType("integer")).
		Metadata(restfulspec.KeyOpenAPITags, tags).
		Writes(UserResponse{}).
		Returns(http.StatusOK, "User found", UserResponse{}).
		Returns(http.StatusForbidden, "Forbidden", MessageResponse{}).
		Returns(http.StatusNotFound, "User not found", MessageResponse{}))

	ws.Route(ws.PUT("/users/{user-id}").Filter(authn).To(ctl.updateUserHandler).
		Doc("Update user by ID").
		Param(ws.PathParameter("user-id", "Identifier of the user to update").DataType("integer")).
		Metadata(restfulspec.KeyOpenAPITags, tags).
		Reads(services.UpdateUserInput{}).
		Writes(UserResponse{}).
		Returns(http.StatusOK, "User updated successfully", UserResponse{}).
		Returns(http.StatusBadRequest, "Invalid request body or user ID", MessageResponse{}).
		Returns(http.StatusForbidden, "Forbidden", MessageResponse{}).
		Returns(http.StatusNotFound, "User not found", MessageResponse{}).
		Returns(http.StatusConflict, "Email conflict", MessageResponse{}))

	ws.Route(ws.PUT("/users/{user-id}/role").Filter(authn).To(ctl.assignRoleHandler).
		Doc("Assign or clear the security role of a user").
		Param(ws.PathParameter("user-id", "Identifier of the user").DataType("integer")).
		Metadata(restfulspec.KeyOpenAPITags, tags).
		Reads(AssignRoleRequest{}).
		Returns(http.StatusOK, "Role assigned", UserResponse{}).
		Returns(http.StatusForbidden, "Forbidden", MessageResponse{}).
		Returns(http.StatusNotFound, "User or role not found", MessageResponse{}))

	ws.Route(ws.GET("/users").Filter(authn).To(ctl.listUsersHandler).
		Doc("List users with pagination").
		Param(ws.QueryParameter("page", "Page number (default 1)").DataType("integer").DefaultValue("1")).
		Param(ws.QueryParameter("page_size", "Users per page (default 10)").DataType("integer").DefaultValue("10")).
		Metadata(restfulspec.KeyOpenAPITags, tags).
		Writes(PaginatedUsersResponse{}).
		Returns(http.StatusOK, "Users listed successfully", PaginatedUsersResponse{}).
		Returns(http.StatusForbidden, "Forbidden", MessageResponse{}))

	ws.Route(ws.DELETE("/users/{user-id}").Filter(authn).To(ctl.deleteUserHandler).
		Doc("Delete user by ID").
		Param(ws.PathParameter("user-id", "Identifier of the user to delete").DataType("integer")).
		Metadata(restfulspec.KeyOpenAPITags, tags).
		Returns(http.StatusNoContent, "User deleted successfully", nil).
		Returns(http.StatusForbidden, "Forbidden", MessageResponse{}).
		Returns(http.StatusNotFound, "User not found", MessageResponse{}))
}

func (ctl *UserController) createUserHandler(request *restful.Request, response *restful.Response) {
	requestingUserID, ok := getRequestingUserID(request, response)
	if !ok {
		return
	}
	input := new(services.CreateUserInput)
	if err := request.ReadEntity(input); err != nil {
		writeMessage(response, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	user, err := ctl.userService.CreateUser(request.Request.Context(), input, requestingUserID)
	if err != nil {
		handleServiceError(response, err, ctl.logger)
		return
	}
	_ = response.WriteHeaderAndJson(http.StatusCreated, mapModelToUserResponse(user), restful.MIME_JSON)
}

func (ctl *UserController) currentUserHandler(request *restful.Request, response *restful.Response) {
	userID, ok := getRequestingUserID(request, response)
	if !ok {
		return
	}
	cur, err := ctl.userService.CurrentUser(request.Request.Context(), userID)
	if err != nil {
		handleServiceError(response, err, ctl.logger)
		return
	}
	_ = response.WriteHeaderAndJson(http.StatusOK, CurrentUserResponse{
		User:        mapModelToUserResponse(cur.User),
		Permissions: cur.Permissions.Codes(),
	}, restful.MIME_JSON)
}

func (ctl *UserController) getUserByIDHandler(request *restful.Request, response *restful.Response) {
	targetUserID, ok := pathID(request, response, "user-id")
	if !ok {
		return
	}
	requestingUserID, ok := getRequestingUserID(request, response)
	if !ok {
		return
	}

	user, err := ctl.userService.GetUserByID(request.Request.Context(), targetUserID, requestingUserID)
	if err != nil {
		handleServiceError(response, err, ctl.logger)
		return
	}
	_ = response.WriteHeaderAndJson(http.StatusOK, mapModelToUserResponse(user), restful.MIME_JSON)
}

func (ctl *UserController) updateUserHandler(request *restful.Request, response *restful.Response) {
	targetUserID, ok := pathID(request, response, "user-id")
	if !ok {
		return
	}
	requestingUserID, ok := getRequestingUserID(request, response)
	if !ok {
		return
	}

	input := new(services.UpdateUserInput)
	if err := request.ReadEntity(input); err != nil {
		writeMessage(response, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	updatedUser, err := ctl.userService.UpdateUser(request.Request.Context(), targetUserID, requestingUserID, input)
	if err != nil {
		handleServiceError(response, err, ctl.logger)
		return
	}
	_ = response.WriteHeaderAndJson(http.StatusOK, mapModelToUserResponse(updatedUser), restful.MIME_JSON)
}

func (ctl *UserController) assignRoleHandler(request *restful.Request, response *restful.Response) {
	targetUserID, ok := pathID(request, response, "user-id")
	if !ok {
		return
	}
	requestingUserID, ok := getRequestingUserID(request, response)
	if !ok {
		return
	}

	input := new(AssignRoleRequest)
	if err := request.ReadEntity(input); err != nil {
		writeMessage(response, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	user, err := ctl.userService.AssignRole(request.Request.Context(), targetUserID, input.RoleID, requestingUserID)
	if err != nil {
		handleServiceError(response, err, ctl.logger)
		return
	}
	_ = response.WriteHeaderAndJson(http.StatusOK, mapModelToUserResponse(user), restful.MIME_JSON)
}

func (ctl *UserController) listUsersHandler(request *restful.Request, response *restful.Response) {
	requestingUserID, ok := getRequestingUserID(request, response)
	if !ok {
		return
	}

	page, err := strconv.Atoi(request.QueryParameter("page"))
	if err != nil || page < 1 {
		page = 1
	}
	pageSize, err := strconv.Atoi(request.QueryParameter("page_size"))
	if err != nil || pageSize < 1 {
		pageSize = 10
	}

	users, total, err := ctl.userService.ListUsers(request.Request.Context(), page, pageSize, requestingUserID)
	if err != nil {
		handleServiceError(response, err, ctl.logger)
		return
	}

	userResponses := make([]UserResponse, len(users))
	for i := range users {
		userResponses[i] = mapModelToUserResponse(&users[i])
	}

	_ = response.WriteHeaderAndJson(http.StatusOK, PaginatedUsersResponse{
		Users:    userResponses,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}, restful.MIME_JSON)
}

func (ctl *UserController) deleteUserHandler(request *restful.Request, response *restful.Response) {
	targetUserID, ok := pathID(request, response, "user-id")
	if !ok {
		return
	}
	requestingUserID, ok := getRequestingUserID(request, response)
	if !ok {
		return
	}

	if err := ctl.userService.DeleteUser(request.Request.Context(), targetUserID, requestingUserID); err != nil {
		handleServiceError(response, err, ctl.logger)
		return
	}
	response.WriteHeader(http.StatusNoContent)
}
