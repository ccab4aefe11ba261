package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tulshipandey/parkride-backend/customer"
	"github.com/tulshipandey/parkride-backend/internal/middleware"
)

type profileResponse struct {
	Email         string `json:"email"`
	Name          string `json:"name"`
	VehiclePlate  string `json:"vehiclePlate"`
	LoyaltyPoints int    `json:"loyaltyPoints"`
}

type updateProfileRequest struct {
	Email        string `json:"email"`
	Name         string `json:"name"`
	VehiclePlate string `json:"vehiclePlate"`
}

func toProfileResponse(cust *customer.Customer) profileResponse {
	return profileResponse{
		Email:         cust.Email.String,
		Name:          cust.Name.String,
		VehiclePlate:  cust.VehiclePlate.String,
		LoyaltyPoints: cust.LoyaltyPoints,
	}
}

// getOrCreateCustomer resolves the caller's record, creating it on
// first access.
func (a *API) getOrCreateCustomer(c *gin.Context, subject string) (*customer.Customer, error) {
	cust, err := a.cr.GetBySubject(c, subject)
	if errors.Is(err, customer.ErrNotFound) {
		return a.cr.Create(c, subject)
	}
	return cust, err
}

func (a *API) getProfileHandler(c *gin.Context) {
	logger := middleware.GetLogger(c)

	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"code": "UNAUTHORIZED", "message": "Authentication required"})
		return
	}

	cust, err := a.getOrCreateCustomer(c, userID)
	if err != nil {
		logger.ErrorContext(c, "failed to load customer", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusOK, toProfileResponse(cust))
}

func (a *API) updateProfileHandler(c *gin.Context) {
	logger := middleware.GetLogger(c)

	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"code": "UNAUTHORIZED", "message": "Authentication required"})
		return
	}

	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "INVALID_REQUEST", "message": err.Error()})
		return
	}

	if _, err := a.getOrCreateCustomer(c, userID); err != nil {
		logger.ErrorContext(c, "failed to load customer", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	err := a.cr.UpdateProfile(c, userID, customer.Profile{
		Email:        req.Email,
		Name:         req.Name,
		VehiclePlate: req.VehiclePlate,
	})
	if err != nil {
		logger.ErrorContext(c, "failed to update profile", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	cust, err := a.cr.GetBySubject(c, userID)
	if err != nil {
		logger.ErrorContext(c, "failed to reload customer", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusOK, toProfileResponse(cust))
}
