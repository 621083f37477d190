package product

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/mserebryaakov/delivery-panel/pkg/apperror"
	"github.com/sirupsen/logrus"
)

type productHandler struct {
	log            *logrus.Entry
	productService ProductService
}

func NewHandler(productService ProductService, log *logrus.Entry) *productHandler {
	return &productHandler{
		log:            log,
		productService: productService,
	}
}

func (h *productHandler) Register(admin gin.IRouter) {
	group := admin.Group("/products")
	group.GET("", h.list)
	group.POST("", h.create)
	group.GET("/:id", h.get)
	group.PUT("/:id", h.update)
	group.DELETE("/:id", h.delete)
}

func (h *productHandler) list(c *gin.Context) {
	products, err := h.productService.GetProducts(c.Request.Context(), Filter{
		Category:      c.Query("category"),
		AvailableOnly: c.Query("available") == "true",
	})
	if err != nil {
		apperror.Respond(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, products)
}

func (h *productHandler) get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		apperror.Respond(c, h.log, apperror.InvalidID(err))
		return
	}

	p, err := h.productService.GetProductByID(c.Request.Context(), id)
	if err != nil {
		apperror.Respond(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *productHandler) create(c *gin.Context) {
	var input ProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		apperror.Respond(c, h.log, apperror.BindError(err))
		return
	}

	p, err := h.productService.CreateProduct(c.Request.Context(), input)
	if err != nil {
		apperror.Respond(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h *productHandler) update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		apperror.Respond(c, h.log, apperror.InvalidID(err))
		return
	}

	var input ProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		apperror.Respond(c, h.log, apperror.BindError(err))
		return
	}

	p, err := h.productService.UpdateProduct(c.Request.Context(), id, input)
	if err != nil {
		apperror.Respond(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *productHandler) delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		apperror.Respond(c, h.log, apperror.InvalidID(err))
		return
	}

	if err := h.productService.DeleteProduct(c.Request.Context(), id); err != nil {
		apperror.Respond(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}
