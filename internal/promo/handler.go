package promo

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/mserebryaakov/delivery-panel/pkg/apperror"
	"github.com/sirupsen/logrus"
)

type promoHandler struct {
	log          *logrus.Entry
	promoService PromoService
}

func NewHandler(promoService PromoService, log *logrus.Entry) *promoHandler {
	return &promoHandler{
		log:          log,
		promoService: promoService,
	}
}

func (h *promoHandler) Register(public, admin gin.IRouter) {
	public.POST("/promo-codes/validate", h.validate)

	group := admin.Group("/promo-codes")
	group.GET("", h.list)
	group.POST("", h.create)
	group.GET("/:id", h.get)
	group.PUT("/:id", h.update)
	group.DELETE("/:id", h.delete)
}

func (h *promoHandler) validate(c *gin.Context) {
	var req ValidateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperror.Respond(c, h.log, apperror.BindError(err))
		return
	}

	p, err := h.promoService.Validate(c.Request.Context(), req.Code, req.Subtotal)
	if err != nil {
		apperror.Respond(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, ValidateResponse{
		Code:          p.Code,
		DiscountType:  p.DiscountType,
		DiscountValue: p.DiscountValue,
		Discount:      p.Discount().Amount(req.Subtotal),
	})
}

func (h *promoHandler) list(c *gin.Context) {
	promos, err := h.promoService.GetPromos(c.Request.Context())
	if err != nil {
		apperror.Respond(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, promos)
}

func (h *promoHandler) get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		apperror.Respond(c, h.log, apperror.InvalidID(err))
		return
	}

	p, err := h.promoService.GetPromo(c.Request.Context(), id)
	if err != nil {
		apperror.Respond(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *promoHandler) create(c *gin.Context) {
	var input PromoInput
	if err := c.ShouldBindJSON(&input); err != nil {
		apperror.Respond(c, h.log, apperror.BindError(err))
		return
	}

	p, err := h.promoService.CreatePromo(c.Request.Context(), input)
	if err != nil {
		apperror.Respond(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h *promoHandler) update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		apperror.Respond(c, h.log, apperror.InvalidID(err))
		return
	}

	var input PromoInput
	if err := c.ShouldBindJSON(&input); err != nil {
		apperror.Respond(c, h.log, apperror.BindError(err))
		return
	}

	p, err := h.promoService.UpdatePromo(c.Request.Context(), id, input)
	if err != nil {
		apperror.Respond(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *promoHandler) delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		apperror.Respond(c, h.log, apperror.InvalidID(err))
		return
	}

	if err := h.promoService.DeletePromo(c.Request.Context(), id); err != nil {
		apperror.Respond(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}
