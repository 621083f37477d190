package settings

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mserebryaakov/delivery-panel/pkg/apperror"
	"github.com/sirupsen/logrus"
)

type settingsHandler struct {
	log             *logrus.Entry
	settingsService SettingsService
}

func NewHandler(settingsService SettingsService, log *logrus.Entry) *settingsHandler {
	return &settingsHandler{
		log:             log,
		settingsService: settingsService,
	}
}

func (h *settingsHandler) Register(admin gin.IRouter) {
	group := admin.Group("/settings")
	group.GET("/company", h.getCompany)
	group.PUT("/company", h.updateCompany)
	group.GET("/preferences", h.getPreferences)
	group.PUT("/preferences", h.updatePreferences)
}

func (h *settingsHandler) getCompany(c *gin.Context) {
	settings, err := h.settingsService.Company(c.Request.Context())
	if err != nil {
		apperror.Respond(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, settings)
}

func (h *settingsHandler) updateCompany(c *gin.Context) {
	var input CompanyInput
	if err := c.ShouldBindJSON(&input); err != nil {
		apperror.Respond(c, h.log, apperror.BindError(err))
		return
	}

	settings, err := h.settingsService.UpdateCompany(c.Request.Context(), input)
	if err != nil {
		apperror.Respond(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, settings)
}

func (h *settingsHandler) getPreferences(c *gin.Context) {
	prefs, err := h.settingsService.Preferences(c.Request.Context())
	if err != nil {
		apperror.Respond(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, prefs)
}

func (h *settingsHandler) updatePreferences(c *gin.Context) {
	var update PreferencesUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		apperror.Respond(c, h.log, apperror.BindError(err))
		return
	}

	prefs, err := h.settingsService.UpdatePreferences(c.Request.Context(), update)
	if err != nil {
		apperror.Respond(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, prefs)
}
