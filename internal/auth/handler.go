package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mserebryaakov/delivery-panel/pkg/apperror"
	"github.com/sirupsen/logrus"
)

type authHandler struct {
	log         *logrus.Entry
	authService AuthService
}

func NewHandler(authService AuthService, log *logrus.Entry) *authHandler {
	return &authHandler{
		log:         log,
		authService: authService,
	}
}

func (h *authHandler) Register(public, admin gin.IRouter) {
	public.POST("/auth/login", h.login)

	admin.GET("/auth/me", h.me)
	admin.PUT("/auth/credentials", h.updateCredentials)
}

func (h *authHandler) login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperror.Respond(c, h.log, apperror.BindError(err))
		return
	}

	token, err := h.authService.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		apperror.Respond(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, token)
}

func (h *authHandler) me(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"username": Username(c)})
}

func (h *authHandler) updateCredentials(c *gin.Context) {
	var input CredentialsInput
	if err := c.ShouldBindJSON(&input); err != nil {
		apperror.Respond(c, h.log, apperror.BindError(err))
		return
	}

	if err := h.authService.UpdateCredentials(c.Request.Context(), input); err != nil {
		apperror.Respond(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "credenciais atualizadas"})
}
