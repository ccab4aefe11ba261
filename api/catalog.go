package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (a *API) locationsHandler(c *gin.Context) {
	c.JSON(http.StatusOK, a.cat.Locations())
}

func (a *API) vehicleTypesHandler(c *gin.Context) {
	c.JSON(http.StatusOK, a.cat.VehicleTypes())
}

func (a *API) servicesHandler(c *gin.Context) {
	c.JSON(http.StatusOK, a.cat.Services())
}

func (a *API) shuttlesHandler(c *gin.Context) {
	c.JSON(http.StatusOK, a.cat.Shuttles())
}
