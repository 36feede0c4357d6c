package controllers

import (
	"net/http"

	"github.com/bazarromero/catalog/app/requests"
	"github.com/bazarromero/catalog/app/services"
	"github.com/bazarromero/catalog/pkg/auth"
	"github.com/bazarromero/catalog/pkg/bind"
	"github.com/bazarromero/catalog/pkg/middleware"
	"github.com/bazarromero/catalog/pkg/response"
)

type AuthController struct {
	service *services.AuthService
}

func NewAuthController(service *services.AuthService) *AuthController {
	return &AuthController{service: service}
}

func (c *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	var body requests.LoginRequest
	if err := bind.JSON(w, r, &body); err != nil {
		response.FromError(w, r, err)
		return
	}

	token, err := c.service.Login(r.Context(), body, middleware.ClientKey(r))
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.Success(w, map[string]string{"token": token})
}

func (c *AuthController) ChangePassword(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.FromContext(r.Context())
	if !ok {
		response.Unauthorized(w)
		return
	}

	var body requests.ChangePasswordRequest
	if err := bind.JSON(w, r, &body); err != nil {
		response.FromError(w, r, err)
		return
	}

	if err := c.service.ChangePassword(r.Context(), id.ID, body); err != nil {
		response.FromError(w, r, err)
		return
	}
	response.SuccessMessage(w, "Password updated", nil)
}
