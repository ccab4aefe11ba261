// Package api exposes the booking, pricing and catalog operations over
// HTTP.
package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"github.com/tulshipandey/parkride-backend/booking"
	"github.com/tulshipandey/parkride-backend/catalog"
	"github.com/tulshipandey/parkride-backend/customer"
	"github.com/tulshipandey/parkride-backend/internal/middleware"
	"github.com/tulshipandey/parkride-backend/internal/o11y"
	"github.com/tulshipandey/parkride-backend/pricing"
)

type API struct {
	r        *gin.Engine
	cat      *catalog.Catalog
	catStore *catalog.Repository
	pe       *pricing.Engine
	svc      *booking.Service
	bkr      booking.Repository
	cr       customer.Repository

	now func() time.Time
}

// Config wires the API's collaborators. Auth may be overridden (tests
// inject a fake); when nil it is built from AuthDomain/Audience.
type Config struct {
	Catalog *catalog.Catalog
	// CatalogStore, when set, receives live occupancy adjustments on
	// check-in and check-out.
	CatalogStore *catalog.Repository
	Pricing      *pricing.Engine
	Lifecycle    *booking.Service
	Bookings     booking.Repository
	Customers    customer.Repository
	Obs          *o11y.Observability

	AuthDomain string
	Audience   string
	Auth       gin.HandlerFunc

	MetricsUsername string
	MetricsPassword string

	RateLimitPerSec float64

	// Now is the clock used to resolve the peak flag; defaults to
	// time.Now.
	Now func() time.Time
}

func New(cfg Config) (*API, error) {
	a := &API{
		r:        gin.New(),
		cat:      cfg.Catalog,
		catStore: cfg.CatalogStore,
		pe:       cfg.Pricing,
		svc:      cfg.Lifecycle,
		bkr:      cfg.Bookings,
		cr:       cfg.Customers,
		now:      cfg.Now,
	}
	if a.now == nil {
		a.now = time.Now
	}

	authn := cfg.Auth
	if authn == nil {
		var err error
		authn, err = middleware.Auth(cfg.AuthDomain, cfg.Audience)
		if err != nil {
			return nil, err
		}
	}

	a.r.Use(gin.Recovery())
	a.r.Use(middleware.Tracing())
	a.r.Use(middleware.Logging(cfg.Obs.Logger))
	a.r.Use(middleware.Metrics(cfg.Obs.Registry))
	if cfg.RateLimitPerSec > 0 {
		a.r.Use(middleware.RateLimit(rate.Limit(cfg.RateLimitPerSec), int(cfg.RateLimitPerSec)*2))
	}

	registerLifecycleMetrics(cfg.Obs.Registry, cfg.Lifecycle)

	a.r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	metrics := a.r.Group("/metrics")
	if cfg.MetricsUsername != "" {
		metrics.Use(gin.BasicAuth(gin.Accounts{cfg.MetricsUsername: cfg.MetricsPassword}))
	}
	metrics.GET("", gin.WrapH(promhttp.HandlerFor(cfg.Obs.Registry, promhttp.HandlerOpts{})))

	a.r.GET("/catalog/locations", a.locationsHandler)
	a.r.GET("/catalog/vehicle-types", a.vehicleTypesHandler)
	a.r.GET("/catalog/services", a.servicesHandler)
	a.r.GET("/catalog/shuttles", a.shuttlesHandler)
	a.r.POST("/quotes", a.quoteHandler)

	protected := a.r.Group("/")
	protected.Use(authn)
	{
		protected.GET("/bookings", a.getBookingsHandler)
		protected.POST("/bookings", a.createBookingHandler)
		protected.POST("/bookings/shuttle", a.createShuttleBookingHandler)
		protected.GET("/bookings/current", a.getCurrentBookingHandler)
		protected.GET("/bookings/:bookingId", a.getBookingHandler)
		protected.POST("/bookings/:bookingId/checkin", a.checkInHandler)
		protected.POST("/bookings/:bookingId/checkout", a.checkOutHandler)
		protected.POST("/bookings/:bookingId/cancel", a.cancelBookingHandler)
		protected.DELETE("/bookings/:bookingId", a.deleteBookingHandler)

		protected.GET("/me", a.getProfileHandler)
		protected.PUT("/me", a.updateProfileHandler)
	}

	return a, nil
}

func (a *API) Router() *gin.Engine {
	return a.r
}

// registerLifecycleMetrics counts lifecycle mutations by resulting
// status, fed by the service's change notifications.
func registerLifecycleMetrics(reg *prometheus.Registry, svc *booking.Service) {
	transitions := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "booking_lifecycle_total",
			Help: "Booking lifecycle mutations by resulting status",
		},
		[]string{"status"},
	)
	reg.MustRegister(transitions)
	svc.Subscribe(func(b booking.Booking) {
		transitions.WithLabelValues(string(b.Status)).Inc()
	})
}
