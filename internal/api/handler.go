package api

import (
	"net/http"
	"strconv"
	"time"

	"dealership-service/internal/apperr"
	"dealership-service/internal/catalog"
	"dealership-service/internal/service"
	"dealership-service/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler contains HTTP handlers
type Handler struct {
	catalog  *catalog.Catalog
	carts    *service.CartService
	bookings *service.BookingService
	payments *service.PaymentService
	tracking *service.TrackingService
}

// NewHandler creates a new HTTP handler
func NewHandler(
	cat *catalog.Catalog,
	carts *service.CartService,
	bookings *service.BookingService,
	payments *service.PaymentService,
	tracking *service.TrackingService,
) *Handler {
	return &Handler{
		catalog:  cat,
		carts:    carts,
		bookings: bookings,
		payments: payments,
		tracking: tracking,
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())
	router.Use(gin.Logger())

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		v1.GET("/cars", h.listCars)
		v1.GET("/cars/:id", h.getCar)
		v1.GET("/parts", h.listParts)
		v1.GET("/parts/:id", h.getPart)
		v1.GET("/services/types", h.listServiceTypes)
		v1.GET("/services/centers", h.listServiceCenters)
		v1.GET("/vin/:vin", h.resolveVIN)

		v1.POST("/pricing/car", h.carPrice)
		v1.POST("/pricing/emi", h.emi)

		v1.GET("/cart", h.getCart)
		v1.POST("/cart/items", h.addCartItem)
		v1.PATCH("/cart/items/:id", h.updateCartItem)
		v1.DELETE("/cart/items/:id", h.removeCartItem)
		v1.DELETE("/cart", h.clearCart)
		v1.POST("/cart/coupon", h.applyCoupon)
		v1.DELETE("/cart/coupon", h.removeCoupon)

		v1.POST("/orders", h.checkout)
		v1.GET("/orders/:id", h.getOrder)
		v1.POST("/test-drives", h.createTestDrive)
		v1.GET("/test-drives/:id", h.getTestDrive)
		v1.POST("/service-bookings", h.createServiceBooking)
		v1.GET("/service-bookings/:id", h.getServiceBooking)
		v1.POST("/reservations", h.createReservation)
		v1.GET("/reservations/:id", h.getReservation)

		v1.PATCH("/admin/bookings/:type/:id/status", h.transitionStatus)

		v1.POST("/payments/intent", h.createPaymentIntent)
		v1.POST("/payments/confirm", h.confirmPayment)

		v1.GET("/track", h.track)
	}
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// readinessCheck handles readiness check requests
func (h *Handler) readinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Unix(),
	})
}

func (h *Handler) listCars(c *gin.Context) {
	maxPrice, _ := strconv.ParseInt(c.Query("max_price"), 10, 64)
	cars := h.catalog.Cars(catalog.CarFilter{
		Brand:    c.Query("brand"),
		Category: c.Query("category"),
		MaxPrice: maxPrice,
	})
	c.JSON(http.StatusOK, gin.H{"cars": cars})
}

func (h *Handler) getCar(c *gin.Context) {
	car, err := h.catalog.Car(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, car)
}

func (h *Handler) listParts(c *gin.Context) {
	parts := h.catalog.Parts(catalog.PartFilter{
		Category: c.Query("category"),
		CarID:    c.Query("car_id"),
	})
	c.JSON(http.StatusOK, gin.H{"parts": parts})
}

func (h *Handler) getPart(c *gin.Context) {
	part, err := h.catalog.Part(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, part)
}

func (h *Handler) listServiceTypes(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"service_types": h.catalog.ServiceTypes()})
}

func (h *Handler) listServiceCenters(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"service_centers": h.catalog.ServiceCenters()})
}

func (h *Handler) resolveVIN(c *gin.Context) {
	rec, err := h.catalog.ResolveVIN(c.Param("vin"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

type carPriceRequest struct {
	CarID     string `json:"car_id" binding:"required"`
	VariantID string `json:"variant_id" binding:"required"`
	ColorID   string `json:"color_id" binding:"required"`
}

func (h *Handler) carPrice(c *gin.Context) {
	var req carPriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	car, err := h.catalog.Car(req.CarID)
	if err != nil {
		respondError(c, err)
		return
	}

	breakdown, err := service.CalculateCarPrice(car, req.VariantID, req.ColorID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, breakdown)
}

type emiRequest struct {
	Principal         int64   `json:"principal" binding:"required"`
	TenureMonths      int     `json:"tenure_months" binding:"required"`
	AnnualRatePercent float64 `json:"annual_rate_percent"`
	DownPayment       int64   `json:"down_payment"`
}

func (h *Handler) emi(c *gin.Context) {
	var req emiRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	breakdown, err := service.CalculateEMI(req.Principal, req.TenureMonths, req.AnnualRatePercent, req.DownPayment)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, breakdown)
}

func (h *Handler) getCart(c *gin.Context) {
	view, err := h.carts.Get(c.Request.Context(), sessionID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *Handler) addCartItem(c *gin.Context) {
	var req service.AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	view, err := h.carts.AddItem(c.Request.Context(), sessionID(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

type updateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

func (h *Handler) updateCartItem(c *gin.Context) {
	var req updateQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	view, err := h.carts.UpdateQuantity(c.Request.Context(), sessionID(c), c.Param("id"), req.Quantity)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *Handler) removeCartItem(c *gin.Context) {
	view, err := h.carts.RemoveItem(c.Request.Context(), sessionID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *Handler) clearCart(c *gin.Context) {
	view, err := h.carts.Clear(c.Request.Context(), sessionID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

type applyCouponRequest struct {
	Code string `json:"code" binding:"required"`
}

func (h *Handler) applyCoupon(c *gin.Context) {
	var req applyCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	view, err := h.carts.ApplyCoupon(c.Request.Context(), sessionID(c), req.Code)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *Handler) removeCoupon(c *gin.Context) {
	view, err := h.carts.RemoveCoupon(c.Request.Context(), sessionID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *Handler) checkout(c *gin.Context) {
	var req service.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if req.SessionID == "" {
		req.SessionID = sessionID(c)
	}

	order, err := h.bookings.PlaceOrder(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, order)
}

func (h *Handler) getOrder(c *gin.Context) {
	order, err := h.bookings.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *Handler) createTestDrive(c *gin.Context) {
	var req service.TestDriveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	td, err := h.bookings.CreateTestDrive(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, td)
}

func (h *Handler) getTestDrive(c *gin.Context) {
	td, err := h.bookings.GetTestDrive(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, td)
}

func (h *Handler) createServiceBooking(c *gin.Context) {
	var req service.ServiceBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	sb, err := h.bookings.CreateServiceBooking(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, sb)
}

func (h *Handler) getServiceBooking(c *gin.Context) {
	sb, err := h.bookings.GetServiceBooking(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sb)
}

func (h *Handler) createReservation(c *gin.Context) {
	var req service.ReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	res, err := h.bookings.CreateReservation(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

func (h *Handler) getReservation(c *gin.Context) {
	res, err := h.bookings.GetReservation(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

type transitionRequest struct {
	Status string `json:"status" binding:"required"`
	Note   string `json:"note"`
}

func (h *Handler) transitionStatus(c *gin.Context) {
	var req transitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	booking, err := h.bookings.TransitionStatus(
		c.Request.Context(), c.Param("type"), c.Param("id"), req.Status, req.Note)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, booking)
}

type paymentIntentRequest struct {
	ReservationID string `json:"reservation_id" binding:"required"`
}

func (h *Handler) createPaymentIntent(c *gin.Context) {
	var req paymentIntentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	intent, err := h.payments.CreateReservationIntent(c.Request.Context(), req.ReservationID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, intent)
}

type confirmPaymentRequest struct {
	ReservationID string `json:"reservation_id" binding:"required"`
	IntentID      string `json:"intent_id" binding:"required"`
}

func (h *Handler) confirmPayment(c *gin.Context) {
	var req confirmPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	res, err := h.payments.ConfirmReservationPayment(c.Request.Context(), req.ReservationID, req.IntentID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) track(c *gin.Context) {
	var (
		records []service.ActivityRecord
		err     error
	)

	switch {
	case c.Query("phone") != "":
		records, err = h.tracking.FindByPhone(c.Request.Context(), c.Query("phone"))
	case c.Query("email") != "":
		records, err = h.tracking.FindByEmail(c.Request.Context(), c.Query("email"))
	default:
		badRequestMsg(c, "phone or email query parameter is required")
		return
	}

	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"activity": records, "count": len(records)})
}

func sessionID(c *gin.Context) string {
	if sid := c.GetHeader("X-Session-ID"); sid != "" {
		return sid
	}
	return "anonymous"
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error":   "Invalid request body",
		"details": err.Error(),
	})
}

func badRequestMsg(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}

// respondError maps the application error taxonomy onto HTTP statuses.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch apperr.CodeOf(err) {
	case apperr.CodeNotFound:
		status = http.StatusNotFound
	case apperr.CodeValidation, apperr.CodeMinimumNotMet, apperr.CodeExpired, apperr.CodeInvalidInput:
		status = http.StatusBadRequest
	case apperr.CodeStorageUnavailable, apperr.CodePersistenceConflict:
		status = http.StatusInternalServerError
	}
	c.JSON(status, gin.H{"error": err.Error()})
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
