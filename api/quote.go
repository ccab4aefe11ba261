package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tulshipandey/parkride-backend/catalog"
	"github.com/tulshipandey/parkride-backend/internal/middleware"
	"github.com/tulshipandey/parkride-backend/pricing"
)

type quoteRequest struct {
	LocationID    string   `json:"locationId" binding:"required"`
	VehicleTypeID string   `json:"vehicleTypeId" binding:"required"`
	StartTime     string   `json:"startTime" binding:"required"`
	EndTime       string   `json:"endTime" binding:"required"`
	ServiceIDs    []string `json:"serviceIds"`
	DiscountCode  string   `json:"discountCode"`
}

type quoteResponse struct {
	Lines       []pricing.Line `json:"lines"`
	Total       float64        `json:"total"`
	PeakApplied bool           `json:"peakApplied"`
	// Warning is set when the discount code was unknown; the quote is
	// still priced, with zero discount.
	Warning string `json:"warning,omitempty"`
}

func (a *API) quoteHandler(c *gin.Context) {
	logger := middleware.GetLogger(c)

	var req quoteRequest
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

	peak := pricing.InPeakWindow(a.now())
	breakdown, err := a.pe.Quote(pricing.Request{
		LocationID:    req.LocationID,
		VehicleTypeID: req.VehicleTypeID,
		StartTime:     startTime,
		EndTime:       endTime,
		ServiceIDs:    req.ServiceIDs,
		DiscountCode:  req.DiscountCode,
		Peak:          peak,
	})

	resp := quoteResponse{Lines: breakdown.Lines, Total: breakdown.Total, PeakApplied: peak}
	switch {
	case err == nil:
	case errors.Is(err, pricing.ErrUnknownDiscount):
		// Warn, don't block: the quote is still usable.
		resp.Warning = "Invalid discount code"
	case errors.Is(err, pricing.ErrInvalidWindow):
		c.JSON(http.StatusBadRequest, gin.H{"code": "INVALID_TIME_WINDOW", "message": "End time must be after start time"})
		return
	case errors.Is(err, catalog.ErrLocationNotFound):
		c.JSON(http.StatusNotFound, gin.H{"code": "LOCATION_NOT_FOUND", "message": "Location not found"})
		return
	case errors.Is(err, catalog.ErrVehicleTypeNotFound):
		c.JSON(http.StatusNotFound, gin.H{"code": "VEHICLE_TYPE_NOT_FOUND", "message": "Vehicle type not found"})
		return
	case errors.Is(err, catalog.ErrServiceNotFound):
		c.JSON(http.StatusNotFound, gin.H{"code": "SERVICE_NOT_FOUND", "message": "Service not found"})
		return
	default:
		logger.ErrorContext(c, "failed to compute quote", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusOK, resp)
}
