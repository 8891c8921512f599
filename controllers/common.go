package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"erp-access/auth"
	"erp-access/services"

	restful "github.com/emicklei/go-restful/v3"
	"go.uber.org/zap"
)

// MessageResponse is the error envelope of every failed call.
type MessageResponse struct {
	Message string `json:"message"`
}

func writeMessage(response *restful.Response, status int, message string) {
	_ = response.WriteHeaderAndJson(status, MessageResponse{Message: message}, restful.MIME_JSON)
}

// getRequestingUserID extracts the user ID set by the AuthFilter.
func getRequestingUserID(request *restful.Request, response *restful.Response) (uint, bool) {
	userID, ok := auth.UserID(request)
	if !ok {
		writeMessage(response, http.StatusUnauthorized, "Unauthorized: Cannot identify requesting user")
	}
	return userID, ok
}

func pathID(request *restful.Request, response *restful.Response, name string) (uint, bool) {
	id, err := strconv.ParseUint(request.PathParameter(name), 10, 32)
	if err != nil || id == 0 {
		writeMessage(response, http.StatusBadRequest, "Invalid "+name+" format")
		return 0, false
	}
	return uint(id), true
}

// handleServiceError translates service errors to HTTP responses.
func handleServiceError(response *restful.Response, err error, logger *zap.Logger) {
	var ve *services.ValidationError
	switch {
	case errors.As(err, &ve):
		writeMessage(response, http.StatusBadRequest, ve.Error())
	case errors.Is(err, services.ErrRoleNotFound), errors.Is(err, services.ErrUserNotFound):
		writeMessage(response, http.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrForbidden):
		writeMessage(response, http.StatusForbidden, err.Error())
	case errors.Is(err, services.ErrRoleExists), errors.Is(err, services.ErrUserExists),
		errors.Is(err, services.ErrEmailInUse), errors.Is(err, services.ErrRoleInUse):
		writeMessage(response, http.StatusConflict, err.Error())
	case errors.Is(err, services.ErrInvalidLogin):
		writeMessage(response, http.StatusUnauthorized, "Invalid credentials")
	default:
		logger.Error("Unhandled service error", zap.Error(err))
		writeMessage(response, http.StatusInternalServerError, "An internal error occurred")
	}
}
