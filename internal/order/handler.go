package order

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/mserebryaakov/delivery-panel/pkg/apperror"
	"github.com/sirupsen/logrus"
)

// AlertSource hands out new-order alerts collected by the watcher.
type AlertSource interface {
	Drain() []Alert
}

type orderHandler struct {
	log          *logrus.Entry
	orderService OrderService
	alerts       AlertSource
}

func NewHandler(orderService OrderService, alerts AlertSource, log *logrus.Entry) *orderHandler {
	return &orderHandler{
		log:          log,
		orderService: orderService,
		alerts:       alerts,
	}
}

func (h *orderHandler) Register(admin gin.IRouter) {
	group := admin.Group("/orders")
	group.GET("", h.list)
	group.GET("/history", h.history)
	group.GET("/alerts", h.drainAlerts)
	group.GET("/:id", h.get)
	group.PUT("/:id/status", h.updateStatus)
	group.GET("/:id/receipt", h.receipt)

	admin.GET("/dashboard", h.dashboard)
}

func (h *orderHandler) list(c *gin.Context) {
	filter := Filter{Limit: queryInt(c, "limit", 0)}
	if raw := c.Query("status"); raw != "" {
		for _, st := range strings.Split(raw, ",") {
			filter.Statuses = append(filter.Statuses, Status(strings.TrimSpace(st)))
		}
	}

	orders, err := h.orderService.GetOrders(c.Request.Context(), filter)
	if err != nil {
		apperror.Respond(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

func (h *orderHandler) history(c *gin.Context) {
	orders, err := h.orderService.History(c.Request.Context(), c.DefaultQuery("tab", TabReceived), queryInt(c, "limit", 0))
	if err != nil {
		apperror.Respond(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

func (h *orderHandler) drainAlerts(c *gin.Context) {
	c.JSON(http.StatusOK, h.alerts.Drain())
}

func (h *orderHandler) get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		apperror.Respond(c, h.log, apperror.InvalidID(err))
		return
	}

	order, err := h.orderService.GetOrder(c.Request.Context(), id)
	if err != nil {
		apperror.Respond(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *orderHandler) updateStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		apperror.Respond(c, h.log, apperror.InvalidID(err))
		return
	}

	var req StatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperror.Respond(c, h.log, apperror.BindError(err))
		return
	}

	change, err := h.orderService.UpdateStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		apperror.Respond(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, change)
}

func (h *orderHandler) receipt(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		apperror.Respond(c, h.log, apperror.InvalidID(err))
		return
	}

	html, err := h.orderService.Receipt(c.Request.Context(), id, queryInt(c, "copies", 1), queryInt(c, "width", 0))
	if err != nil {
		apperror.Respond(c, h.log, err)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(html))
}

func (h *orderHandler) dashboard(c *gin.Context) {
	stats, err := h.orderService.Stats(c.Request.Context())
	if err != nil {
		apperror.Respond(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func queryInt(c *gin.Context, key string, def int) int {
	v, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return def
	}
	return v
}
