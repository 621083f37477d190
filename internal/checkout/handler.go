package checkout

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mserebryaakov/delivery-panel/pkg/apperror"
	"github.com/sirupsen/logrus"
)

type checkoutHandler struct {
	log             *logrus.Entry
	checkoutService CheckoutService
}

func NewHandler(checkoutService CheckoutService, log *logrus.Entry) *checkoutHandler {
	return &checkoutHandler{
		log:             log,
		checkoutService: checkoutService,
	}
}

func (h *checkoutHandler) Register(public gin.IRouter) {
	public.GET("/menu", h.menu)
	public.POST("/menu/whatsapp", h.whatsapp)
	public.GET("/payment-methods", h.paymentMethods)
	public.POST("/checkout/quote", h.quote)
	public.POST("/checkout", h.checkout)
}

func (h *checkoutHandler) menu(c *gin.Context) {
	menu, err := h.checkoutService.Menu(c.Request.Context())
	if err != nil {
		apperror.Respond(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, menu)
}

func (h *checkoutHandler) paymentMethods(c *gin.Context) {
	c.JSON(http.StatusOK, PaymentOptions())
}

func (h *checkoutHandler) whatsapp(c *gin.Context) {
	var req WhatsAppRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperror.Respond(c, h.log, apperror.BindError(err))
		return
	}

	res, err := h.checkoutService.WhatsAppOrder(c.Request.Context(), req.Items)
	if err != nil {
		apperror.Respond(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *checkoutHandler) quote(c *gin.Context) {
	var req QuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperror.Respond(c, h.log, apperror.BindError(err))
		return
	}

	q, err := h.checkoutService.Quote(c.Request.Context(), req)
	if err != nil {
		apperror.Respond(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, q)
}

func (h *checkoutHandler) checkout(c *gin.Context) {
	var req Request
	if err := c.ShouldBindJSON(&req); err != nil {
		apperror.Respond(c, h.log, apperror.BindError(err))
		return
	}

	res, err := h.checkoutService.Checkout(c.Request.Context(), req)
	if err != nil {
		apperror.Respond(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}
