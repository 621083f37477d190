package delivery

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/mserebryaakov/delivery-panel/pkg/apperror"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type deliveryHandler struct {
	log             *logrus.Entry
	deliveryService DeliveryService
}

func NewHandler(deliveryService DeliveryService, log *logrus.Entry) *deliveryHandler {
	return &deliveryHandler{
		log:             log,
		deliveryService: deliveryService,
	}
}

func (h *deliveryHandler) Register(public, admin gin.IRouter) {
	public.GET("/delivery/estimate", h.estimate)
	public.GET("/delivery/zones", h.activeZones)

	group := admin.Group("/delivery")
	group.GET("/zones", h.listZones)
	group.POST("/zones", h.createZone)
	group.GET("/zones/:id", h.getZone)
	group.PUT("/zones/:id", h.updateZone)
	group.DELETE("/zones/:id", h.deleteZone)
	group.GET("/address", h.getAddress)
	group.PUT("/address", h.setAddress)
}

func (h *deliveryHandler) estimate(c *gin.Context) {
	radius, err := decimal.NewFromString(c.Query("radius"))
	if err != nil {
		apperror.Respond(c, h.log, apperror.NewError(apperror.ValidationAppError, "raio inválido", http.StatusBadRequest, err))
		return
	}

	estimate, err := h.deliveryService.Estimate(radius)
	if err != nil {
		apperror.Respond(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, estimate)
}

func (h *deliveryHandler) activeZones(c *gin.Context) {
	zones, err := h.deliveryService.ListZones(c.Request.Context(), true)
	if err != nil {
		apperror.Respond(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, zones)
}

func (h *deliveryHandler) listZones(c *gin.Context) {
	zones, err := h.deliveryService.ListZones(c.Request.Context(), c.Query("active") == "true")
	if err != nil {
		apperror.Respond(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, zones)
}

func (h *deliveryHandler) getZone(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		apperror.Respond(c, h.log, apperror.InvalidID(err))
		return
	}

	zone, err := h.deliveryService.GetZone(c.Request.Context(), id)
	if err != nil {
		apperror.Respond(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, zone)
}

func (h *deliveryHandler) createZone(c *gin.Context) {
	var input ZoneInput
	if err := c.ShouldBindJSON(&input); err != nil {
		apperror.Respond(c, h.log, apperror.BindError(err))
		return
	}

	zone, err := h.deliveryService.CreateZone(c.Request.Context(), input)
	if err != nil {
		apperror.Respond(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, zone)
}

func (h *deliveryHandler) updateZone(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		apperror.Respond(c, h.log, apperror.InvalidID(err))
		return
	}

	var input ZoneInput
	if err := c.ShouldBindJSON(&input); err != nil {
		apperror.Respond(c, h.log, apperror.BindError(err))
		return
	}

	zone, err := h.deliveryService.UpdateZone(c.Request.Context(), id, input)
	if err != nil {
		apperror.Respond(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, zone)
}

func (h *deliveryHandler) deleteZone(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		apperror.Respond(c, h.log, apperror.InvalidID(err))
		return
	}

	if err := h.deliveryService.DeleteZone(c.Request.Context(), id); err != nil {
		apperror.Respond(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *deliveryHandler) getAddress(c *gin.Context) {
	address, err := h.deliveryService.BusinessAddress(c.Request.Context())
	if err != nil {
		apperror.Respond(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, address)
}

func (h *deliveryHandler) setAddress(c *gin.Context) {
	var address Address
	if err := c.ShouldBindJSON(&address); err != nil {
		apperror.Respond(c, h.log, apperror.BindError(err))
		return
	}

	saved, err := h.deliveryService.SetBusinessAddress(c.Request.Context(), address)
	if err != nil {
		apperror.Respond(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, saved)
}
