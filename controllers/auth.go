package controllers

import (
	"net/http"

	"erp-access/auth"
	"erp-access/services"

	restfulspec "github.com/emicklei/go-restful-openapi/v2"
	restful "github.com/emicklei/go-restful/v3"
	"go.uber.org/zap"
)

// LoginCredentials defines the structure of the login request
type LoginCredentials struct {
	Username string `json:"username" description:"Username for login"`
	Password string `json:"password" description:"Password for login"`
}

// LoginResponse defines the structure of the login response
type LoginResponse struct {
	Token   string `json:"token,omitempty"`
	Message string `json:"message,omitempty"`
}

type AuthController struct {
	users  services.UserService
	tokens *auth.TokenManager
	logger *zap.Logger
}

func NewAuthController(users services.UserService, tokens *auth.TokenManager, logger *zap.Logger) *AuthController {
	return &AuthController{users: users, tokens: tokens, logger: logger}
}

func (ctl *AuthController) RegisterRoutes(ws *restful.WebService) {
	ws.Route(ws.POST("/auth/login").To(ctl.loginHandler).
		Doc("Exchange credentials for an access token").
		Metadata(restfulspec.KeyOpenAPITags, []string{"auth"}).
		Reads(LoginCredentials{}).
		Returns(http.StatusOK, "Logged in", LoginResponse{}).
		Returns(http.StatusBadRequest, "Missing credentials", LoginResponse{}).
		Returns(http.StatusUnauthorized, "Invalid credentials", LoginResponse{}))
}

func (ctl *AuthController) loginHandler(request *restful.Request, response *restful.Response) {
	creds := new(LoginCredentials)
	if err := request.ReadEntity(creds); err != nil {
		_ = response.WriteHeaderAndJson(http.StatusBadRequest, LoginResponse{Message: "Invalid request body: " + err.Error()}, restful.MIME_JSON)
		return
	}
	if creds.Username == "" || creds.Password == "" {
		_ = response.WriteHeaderAndJson(http.StatusBadRequest, LoginResponse{Message: "Username and password are required"}, restful.MIME_JSON)
		return
	}

	user, err := ctl.users.Authenticate(request.Request.Context(), creds.Username, creds.Password)
	if err != nil {
		handleServiceError(response, err, ctl.logger)
		return
	}

	token, err := ctl.tokens.GenerateToken(user)
	if err != nil {
		ctl.logger.Error("Token signing failed", zap.Error(err))
		_ = response.WriteHeaderAndJson(http.StatusInternalServerError, LoginResponse{Message: "Could not generate token"}, restful.MIME_JSON)
		return
	}
	_ = response.WriteHeaderAndJson(http.StatusOK, LoginResponse{Token: token}, restful.MIME_JSON)
}
