package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"bookstore-service/internal/dashboard"
	"bookstore-service/internal/models"
	"bookstore-service/internal/service"
	"bookstore-service/internal/session"
	"bookstore-service/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Pinger reports whether a dependency is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler contains HTTP handlers
type Handler struct {
	shop      *service.ShopService
	dashboard *service.DashboardService
	customers *service.CustomerService
	checks    map[string]Pinger
}

// NewHandler creates a new HTTP handler. checks are consulted by /ready.
func NewHandler(
	shop *service.ShopService,
	dashboardService *service.DashboardService,
	customers *service.CustomerService,
	checks map[string]Pinger,
) *Handler {
	return &Handler{
		shop:      shop,
		dashboard: dashboardService,
		customers: customers,
		checks:    checks,
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())
	router.Use(requestLogger())

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		v1.POST("/sessions", h.createSession)

		s := v1.Group("/sessions/:sid")
		{
			s.GET("/cart", h.getCart)
			s.POST("/cart/items", h.addCartItem)
			s.PATCH("/cart/items/:id", h.updateCartItem)
			s.DELETE("/cart/items/:id", h.removeCartItem)
			s.DELETE("/cart", h.clearCart)
			s.PUT("/cart/open", h.setCartOpen)

			s.GET("/wishlist", h.getWishlist)
			s.POST("/wishlist/items", h.addWishlistItem)
			s.GET("/wishlist/items/:id", h.wishlistContains)
			s.DELETE("/wishlist/items/:id", h.removeWishlistItem)
			s.DELETE("/wishlist", h.clearWishlist)

			s.POST("/checkout", h.checkout)
		}

		v1.GET("/dashboard", h.getDashboard)
		v1.GET("/customers", h.listCustomers)
		v1.GET("/stock-status", h.stockStatus)
	}
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// readinessCheck reports not ready while any dependency is unreachable
func (h *Handler) readinessCheck(c *gin.Context) {
	failed := gin.H{}
	for name, p := range h.checks {
		if err := p.Ping(c.Request.Context()); err != nil {
			failed[name] = err.Error()
		}
	}

	if len(failed) > 0 {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "not ready",
			"details": failed,
			"time":    time.Now().Unix(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Unix(),
	})
}

func (h *Handler) createSession(c *gin.Context) {
	id := h.shop.NewSession(c.Request.Context())
	c.JSON(http.StatusCreated, gin.H{"session_id": id})
}

type addItemRequest struct {
	Product  models.Book `json:"product"`
	Quantity *int        `json:"quantity"`
}

type updateQuantityRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

type setOpenRequest struct {
	Open *bool `json:"open" binding:"required"`
}

type wishlistItemRequest struct {
	Product models.Book `json:"product"`
}

func (h *Handler) getCart(c *gin.Context) {
	view, err := h.shop.GetCart(c.Request.Context(), c.Param("sid"))
	respond(c, http.StatusOK, view, err)
}

// addCartItem handles adding a product to the cart; quantity defaults to 1
func (h *Handler) addCartItem(c *gin.Context) {
	var req addItemRequest
	if !bindJSON(c, &req) {
		return
	}

	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}

	view, err := h.shop.AddToCart(c.Request.Context(), c.Param("sid"), req.Product, quantity)
	respond(c, http.StatusOK, view, err)
}

func (h *Handler) updateCartItem(c *gin.Context) {
	bookID, ok := bookIDParam(c)
	if !ok {
		return
	}

	var req updateQuantityRequest
	if !bindJSON(c, &req) {
		return
	}

	view, err := h.shop.UpdateCartQuantity(c.Request.Context(), c.Param("sid"), bookID, *req.Quantity)
	respond(c, http.StatusOK, view, err)
}

func (h *Handler) removeCartItem(c *gin.Context) {
	bookID, ok := bookIDParam(c)
	if !ok {
		return
	}

	view, err := h.shop.RemoveFromCart(c.Request.Context(), c.Param("sid"), bookID)
	respond(c, http.StatusOK, view, err)
}

func (h *Handler) clearCart(c *gin.Context) {
	view, err := h.shop.ClearCart(c.Request.Context(), c.Param("sid"))
	respond(c, http.StatusOK, view, err)
}

func (h *Handler) setCartOpen(c *gin.Context) {
	var req setOpenRequest
	if !bindJSON(c, &req) {
		return
	}

	view, err := h.shop.SetCartOpen(c.Request.Context(), c.Param("sid"), *req.Open)
	respond(c, http.StatusOK, view, err)
}

func (h *Handler) getWishlist(c *gin.Context) {
	view, err := h.shop.GetWishlist(c.Request.Context(), c.Param("sid"))
	respond(c, http.StatusOK, view, err)
}

func (h *Handler) addWishlistItem(c *gin.Context) {
	var req wishlistItemRequest
	if !bindJSON(c, &req) {
		return
	}

	view, err := h.shop.AddToWishlist(c.Request.Context(), c.Param("sid"), req.Product)
	respond(c, http.StatusOK, view, err)
}

func (h *Handler) wishlistContains(c *gin.Context) {
	bookID, ok := bookIDParam(c)
	if !ok {
		return
	}

	in, err := h.shop.InWishlist(c.Request.Context(), c.Param("sid"), bookID)
	respond(c, http.StatusOK, gin.H{"book_id": bookID, "in_wishlist": in}, err)
}

func (h *Handler) removeWishlistItem(c *gin.Context) {
	bookID, ok := bookIDParam(c)
	if !ok {
		return
	}

	view, err := h.shop.RemoveFromWishlist(c.Request.Context(), c.Param("sid"), bookID)
	respond(c, http.StatusOK, view, err)
}

func (h *Handler) clearWishlist(c *gin.Context) {
	view, err := h.shop.ClearWishlist(c.Request.Context(), c.Param("sid"))
	respond(c, http.StatusOK, view, err)
}

// checkout handles submitting the cart with shipping details
func (h *Handler) checkout(c *gin.Context) {
	var req service.CheckoutRequest
	if !bindJSON(c, &req) {
		return
	}

	resp, err := h.shop.Checkout(c.Request.Context(), c.Param("sid"), &req)
	respond(c, http.StatusCreated, resp, err)
}

// getDashboard handles the admin dashboard; unknown ranges fall back to today
func (h *Handler) getDashboard(c *gin.Context) {
	r := dashboard.ParseTimeRange(c.Query("range"))
	c.JSON(http.StatusOK, h.dashboard.Load(c.Request.Context(), r))
}

func (h *Handler) listCustomers(c *gin.Context) {
	list, err := h.customers.List(c.Request.Context())
	respond(c, http.StatusOK, list, err)
}

func (h *Handler) stockStatus(c *gin.Context) {
	stock, err := strconv.Atoi(c.Query("stock"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid stock",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"stock":  stock,
		"status": dashboard.StockStatus(stock),
	})
}

func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return false
	}
	return true
}

func bookIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid book ID",
		})
		return 0, false
	}
	return id, true
}

func respond(c *gin.Context, status int, body interface{}, err error) {
	if err != nil {
		c.JSON(errorStatus(err), gin.H{
			"error":   http.StatusText(errorStatus(err)),
			"details": err.Error(),
		})
		return
	}
	c.JSON(status, body)
}

func errorStatus(err error) int {
	switch {
	case errors.Is(err, session.ErrInvalidID),
		errors.Is(err, service.ErrInvalidProduct),
		errors.Is(err, service.ErrInvalidCheckout):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrEmptyCart):
		return http.StatusUnprocessableEntity
	case errors.Is(err, service.ErrCheckoutUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// prometheusMiddleware collects HTTP metrics
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		util.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Observe(duration)

		util.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Inc()
	}
}

// requestLogger logs one line per request through the service logger
func requestLogger() gin.HandlerFunc {
	logger := util.ComponentLogger("http")
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		logger.Info("Request handled",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}
