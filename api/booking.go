package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/tulshipandey/parkride-backend/booking"
	"github.com/tulshipandey/parkride-backend/catalog"
	"github.com/tulshipandey/parkride-backend/internal/middleware"
	"github.com/tulshipandey/parkride-backend/pricing"
)

// shuttleRideDuration is the estimated journey time used as the end of
// a shuttle reservation's window.
const shuttleRideDuration = time.Hour

type bookingResponse struct {
	ID              uuid.UUID      `json:"id"`
	Reference       string         `json:"reference"`
	UserID          string         `json:"userId"`
	LocationID      string         `json:"locationId,omitempty"`
	Location        string         `json:"location"`
	Slot            string         `json:"slot,omitempty"`
	Date            string         `json:"date"`
	StartTime       time.Time      `json:"startTime"`
	EndTime         time.Time      `json:"endTime"`
	Status          booking.Status `json:"status"`
	Price           float64        `json:"price"`
	VehicleType     string         `json:"vehicleType,omitempty"`
	CreatedAt       time.Time      `json:"createdAt"`
	ShuttleID       int            `json:"shuttleId,omitempty"`
	ShuttleName     string         `json:"shuttleName,omitempty"`
	SpecialRequests string         `json:"specialRequests,omitempty"`
}

func toBookingResponse(b booking.Booking) bookingResponse {
	resp := bookingResponse{
		ID:          b.ID,
		Reference:   b.Reference,
		UserID:      b.UserID,
		LocationID:  b.LocationID,
		Location:    b.Location,
		Slot:        b.Slot,
		Date:        b.StartTime.Format("January 2, 2006"),
		StartTime:   b.StartTime,
		EndTime:     b.EndTime,
		Status:      b.Status,
		Price:       b.Price,
		VehicleType: b.VehicleType,
		CreatedAt:   b.CreatedAt,
	}
	if b.Shuttle != nil {
		resp.ShuttleID = b.Shuttle.ShuttleID
		resp.ShuttleName = b.Shuttle.ShuttleName
		resp.SpecialRequests = b.Shuttle.SpecialRequests
	}
	return resp
}

type createBookingRequest struct {
	LocationID    string   `json:"locationId" binding:"required"`
	VehicleTypeID string   `json:"vehicleTypeId" binding:"required"`
	StartTime     string   `json:"startTime" binding:"required"`
	EndTime       string   `json:"endTime" binding:"required"`
	ServiceIDs    []string `json:"serviceIds"`
	DiscountCode  string   `json:"discountCode"`
	// Status may be "pending" when confirmation is deferred; empty
	// means confirmed.
	Status string `json:"status"`
}

func (a *API) getBookingsHandler(c *gin.Context) {
	logger := middleware.GetLogger(c)

	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"code": "UNAUTHORIZED", "message": "Authentication required"})
		return
	}

	bookings, err := a.bkr.GetByUser(c, userID)
	if err != nil {
		if errors.Is(err, booking.ErrUnavailable) {
			// Degrade to an empty collection rather than failing the read.
			logger.WarnContext(c, "booking store unavailable, returning empty list")
			bookings = nil
		} else {
			logger.ErrorContext(c, "failed to get user bookings", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}
	}

	statusFilter := booking.Status(c.Query("status"))

	responses := make([]bookingResponse, 0, len(bookings))
	for _, b := range bookings {
		if statusFilter != "" && b.Status != statusFilter {
			continue
		}
		responses = append(responses, toBookingResponse(b))
	}

	c.JSON(http.StatusOK, responses)
}

func (a *API) createBookingHandler(c *gin.Context) {
	logger := middleware.GetLogger(c)

	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"code": "UNAUTHORIZED", "message": "Authentication required"})
		return
	}

	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "INVALID_REQUEST", "message": err.Error()})
		return
	}

	startTime, err := time.Parse(time.RFC3339, req.StartTime)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "INVALID_REQUEST", "message": "Invalid startTime format"})
		return
	}
	endTime, err := time.Parse(time.RFC3339, req.EndTime)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "INVALID_REQUEST", "message": "Invalid endTime format"})
		return
	}

	// The price is frozen from a server-side quote, never taken from
	// the client.
	breakdown, err := a.pe.Quote(pricing.Request{
		LocationID:    req.LocationID,
		VehicleTypeID: req.VehicleTypeID,
		StartTime:     startTime,
		EndTime:       endTime,
		ServiceIDs:    req.ServiceIDs,
		DiscountCode:  req.DiscountCode,
		Peak:          pricing.InPeakWindow(a.now()),
	})
	var warning string
	if err != nil {
		if !errors.Is(err, pricing.ErrUnknownDiscount) {
			a.respondQuoteError(c, logger, err)
			return
		}
		warning = "Invalid discount code"
	}

	vt, err := a.cat.VehicleTypeByID(req.VehicleTypeID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"code": "VEHICLE_TYPE_NOT_FOUND", "message": "Vehicle type not found"})
		return
	}

	b, err := a.svc.Create(c, booking.Draft{
		UserID:      userID,
		LocationID:  req.LocationID,
		StartTime:   startTime,
		EndTime:     endTime,
		Price:       breakdown.Total,
		VehicleType: vt.Name,
		Status:      booking.Status(req.Status),
	})
	if err != nil {
		a.respondBookingError(c, logger, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"booking": toBookingResponse(b), "warning": warning})
}

type createShuttleBookingRequest struct {
	ShuttleID       int    `json:"shuttleId" binding:"required"`
	StartTime       string `json:"startTime" binding:"required"`
	Passengers      int    `json:"passengers"`
	SpecialRequests string `json:"specialRequests"`
}

func (a *API) createShuttleBookingHandler(c *gin.Context) {
	logger := middleware.GetLogger(c)

	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"code": "UNAUTHORIZED", "message": "Authentication required"})
		return
	}

	var req createShuttleBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "INVALID_REQUEST", "message": err.Error()})
		return
	}

	startTime, err := time.Parse(time.RFC3339, req.StartTime)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "INVALID_REQUEST", "message": "Invalid startTime format"})
		return
	}
	passengers := req.Passengers
	if passengers < 1 {
		passengers = 1
	}

	shuttle, err := a.cat.ShuttleByID(req.ShuttleID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"code": "SHUTTLE_NOT_FOUND", "message": "Shuttle not found"})
		return
	}

	// Shuttle seats are priced off the express-shuttle service fee.
	fare, err := a.cat.ServiceByID("express")
	if err != nil {
		logger.ErrorContext(c, "express shuttle fee missing from catalog", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	b, err := a.svc.Create(c, booking.Draft{
		UserID:    userID,
		Slot:      fmt.Sprintf("Passengers: %d", passengers),
		StartTime: startTime,
		EndTime:   startTime.Add(shuttleRideDuration),
		Price:     fare.Fee * float64(passengers),
		Route:     shuttle.Location + " to " + shuttle.Heading,
		Shuttle: &booking.ShuttleDetails{
			ShuttleID:       shuttle.ID,
			ShuttleName:     shuttle.Name,
			SpecialRequests: req.SpecialRequests,
		},
	})
	if err != nil {
		a.respondBookingError(c, logger, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"booking": toBookingResponse(b)})
}

func (a *API) getCurrentBookingHandler(c *gin.Context) {
	logger := middleware.GetLogger(c)

	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"code": "UNAUTHORIZED", "message": "Authentication required"})
		return
	}

	bookings, err := a.bkr.GetByUser(c, userID)
	if err != nil && !errors.Is(err, booking.ErrUnavailable) {
		logger.ErrorContext(c, "failed to get current booking", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	for _, b := range bookings {
		if b.Status == booking.StatusActive {
			c.JSON(http.StatusOK, toBookingResponse(b))
			return
		}
	}
	c.JSON(http.StatusOK, nil)
}

func (a *API) getBookingHandler(c *gin.Context) {
	logger := middleware.GetLogger(c)

	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"code": "UNAUTHORIZED", "message": "Authentication required"})
		return
	}

	id, err := uuid.Parse(c.Param("bookingId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "INVALID_REQUEST", "message": "Invalid bookingId"})
		return
	}

	b, err := a.bkr.GetByID(c, id)
	if err != nil {
		a.respondBookingError(c, logger, err)
		return
	}
	if b.UserID != userID {
		// Hide other users' bookings rather than acknowledging them.
		c.JSON(http.StatusNotFound, gin.H{"code": "BOOKING_NOT_FOUND", "message": "Booking not found"})
		return
	}

	c.JSON(http.StatusOK, toBookingResponse(b))
}

func (a *API) checkInHandler(c *gin.Context) {
	a.transitionHandler(c, func(ctx *gin.Context, id uuid.UUID, userID string) (booking.Booking, error) {
		b, err := a.svc.CheckIn(ctx, id, userID)
		if err != nil {
			return b, err
		}
		a.adjustOccupancy(ctx, b, -1)
		return b, nil
	})
}

func (a *API) checkOutHandler(c *gin.Context) {
	a.transitionHandler(c, func(ctx *gin.Context, id uuid.UUID, userID string) (booking.Booking, error) {
		b, err := a.svc.CheckOut(ctx, id, userID)
		if err != nil {
			return b, err
		}
		// Completed bookings earn one loyalty point per currency unit.
		// The customer record may not exist yet for a user who has
		// never opened their profile.
		if _, perr := a.getOrCreateCustomer(ctx, userID); perr != nil {
			middleware.GetLogger(ctx).WarnContext(ctx, "failed to resolve customer for loyalty points", "error", perr)
		} else if perr := a.cr.AddPoints(ctx, userID, int(b.Price)); perr != nil {
			middleware.GetLogger(ctx).WarnContext(ctx, "failed to credit loyalty points", "error", perr)
		}
		a.adjustOccupancy(ctx, b, 1)
		return b, nil
	})
}

// adjustOccupancy updates the location's live space counter. Failures
// only warn: occupancy is advisory, the booking transition has already
// committed.
func (a *API) adjustOccupancy(c *gin.Context, b booking.Booking, delta int) {
	if a.catStore == nil || b.LocationID == "" {
		return
	}
	if err := a.catStore.UpdateAvailableSpaces(c, b.LocationID, delta); err != nil {
		middleware.GetLogger(c).WarnContext(c, "failed to update available spaces",
			"location_id", b.LocationID, "error", err)
	}
}

func (a *API) transitionHandler(c *gin.Context, fn func(*gin.Context, uuid.UUID, string) (booking.Booking, error)) {
	logger := middleware.GetLogger(c)

	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"code": "UNAUTHORIZED", "message": "Authentication required"})
		return
	}

	id, err := uuid.Parse(c.Param("bookingId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "INVALID_REQUEST", "message": "Invalid bookingId"})
		return
	}

	b, err := fn(c, id, userID)
	if err != nil {
		a.respondBookingError(c, logger, err)
		return
	}

	c.JSON(http.StatusOK, toBookingResponse(b))
}

func (a *API) cancelBookingHandler(c *gin.Context) {
	logger := middleware.GetLogger(c)

	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"code": "UNAUTHORIZED", "message": "Authentication required"})
		return
	}

	id, err := uuid.Parse(c.Param("bookingId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "INVALID_REQUEST", "message": "Invalid bookingId"})
		return
	}

	b, committed, err := a.svc.Cancel(c, id, userID)
	if err != nil {
		a.respondBookingError(c, logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"booking":             toBookingResponse(b),
		"pendingConfirmation": !committed,
	})
}

func (a *API) deleteBookingHandler(c *gin.Context) {
	logger := middleware.GetLogger(c)

	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"code": "UNAUTHORIZED", "message": "Authentication required"})
		return
	}

	id, err := uuid.Parse(c.Param("bookingId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "INVALID_REQUEST", "message": "Invalid bookingId"})
		return
	}

	if err := a.svc.Delete(c, id, userID); err != nil {
		a.respondBookingError(c, logger, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// respondQuoteError maps pricing/catalog failures during booking
// creation; the non-fatal discount case is handled by the caller.
func (a *API) respondQuoteError(c *gin.Context, logger *slog.Logger, err error) {
	switch {
	case errors.Is(err, pricing.ErrInvalidWindow):
		c.JSON(http.StatusBadRequest, gin.H{"code": "INVALID_TIME_WINDOW", "message": "End time must be after start time"})
	case errors.Is(err, catalog.ErrLocationNotFound):
		c.JSON(http.StatusNotFound, gin.H{"code": "LOCATION_NOT_FOUND", "message": "Location not found"})
	case errors.Is(err, catalog.ErrVehicleTypeNotFound):
		c.JSON(http.StatusNotFound, gin.H{"code": "VEHICLE_TYPE_NOT_FOUND", "message": "Vehicle type not found"})
	case errors.Is(err, catalog.ErrServiceNotFound):
		c.JSON(http.StatusNotFound, gin.H{"code": "SERVICE_NOT_FOUND", "message": "Service not found"})
	default:
		logger.ErrorContext(c, "failed to compute quote", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func (a *API) respondBookingError(c *gin.Context, logger *slog.Logger, err error) {
	switch {
	case errors.Is(err, booking.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"code": "BOOKING_NOT_FOUND", "message": "Booking not found"})
	case errors.Is(err, booking.ErrNotAuthorized):
		c.JSON(http.StatusForbidden, gin.H{"code": "NOT_AUTHORIZED", "message": "Not authorized to modify this booking"})
	case errors.Is(err, booking.ErrIllegalTransition):
		c.JSON(http.StatusConflict, gin.H{"code": "ILLEGAL_TRANSITION", "message": err.Error()})
	case errors.Is(err, booking.ErrPriceRequired):
		c.JSON(http.StatusBadRequest, gin.H{"code": "PRICE_REQUIRED", "message": "A computed price is required before booking"})
	case errors.Is(err, booking.ErrInvalidWindow):
		c.JSON(http.StatusBadRequest, gin.H{"code": "INVALID_TIME_WINDOW", "message": "End time must be after start time"})
	case errors.Is(err, booking.ErrUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"code": "STORE_UNAVAILABLE", "message": "Booking store unavailable"})
	case errors.Is(err, catalog.ErrLocationNotFound):
		c.JSON(http.StatusNotFound, gin.H{"code": "LOCATION_NOT_FOUND", "message": "Location not found"})
	default:
		logger.ErrorContext(c, "booking operation failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
