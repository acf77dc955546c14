package api

import (
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"pilot-logbook-backend/internal/metrics"
	"pilot-logbook-backend/internal/model"
	"pilot-logbook-backend/internal/mw"
	"pilot-logbook-backend/internal/store"
)

// Options configures NewRouter. Zero values fall back to sensible defaults.
type Options struct {
	Webpush      *webpush.Options
	Location     *time.Location
	RateLimit    rate.Limit
	RateBurst    int
	CacheTTL     time.Duration
	EnforceRoles bool
	Hub          *Hub
	Metrics      *metrics.Metrics
	Clock        func() time.Time
}

// NewRouter creates and configures a new Gin router.
func NewRouter(s store.Store, opts Options) *gin.Engine {
	r := gin.Default()

	handler := NewHandler(s, opts.Webpush, opts.Location)
	if opts.Clock != nil {
		handler.now = opts.Clock
	}

	if opts.RateLimit <= 0 {
		opts.RateLimit = rate.Limit(10)
	}
	if opts.RateBurst <= 0 {
		opts.RateBurst = 5
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = time.Minute
	}

	if opts.Metrics != nil {
		r.Use(opts.Metrics.Middleware())
		r.GET("/metrics", gin.WrapH(opts.Metrics.Handler()))
	}
	r.GET("/healthz", handler.Healthz)
	if opts.Hub != nil {
		r.GET("/ws/alerts", opts.Hub.HandleWebSocket)
	}

	rateLimiter := mw.RateLimiter(opts.RateLimit, opts.RateBurst)
	caching := mw.Cache(cache.New(opts.CacheTTL, 2*opts.CacheTTL), opts.CacheTTL)

	requireRole := func(roles ...model.UserRole) gin.HandlerFunc {
		if !opts.EnforceRoles {
			return func(c *gin.Context) { c.Next() }
		}
		return mw.RequireRole(s, roles...)
	}
	fleetWrite := requireRole(model.RoleFleetManager, model.RoleAdmin)
	logbookWrite := requireRole(model.RolePilot, model.RoleAdmin)

	api := r.Group("/api", rateLimiter)

	// Alerts and stats depend on today's date and are never cached.
	api.GET("/aircraft/fleet-stats", handler.GetFleetStats)
	api.GET("/aircraft/alerts", handler.GetAircraftAlerts)
	api.GET("/maintenance/alerts", handler.GetMaintenanceAlerts)
	api.GET("/flights/stats", handler.GetFlightStats)

	cached := api.Group("", caching)
	{
		cached.GET("/aircraft", handler.ListAircraft)
		cached.GET("/aircraft/:id", handler.GetAircraft)
		cached.POST("/aircraft", fleetWrite, handler.CreateAircraft)
		cached.PUT("/aircraft/:id", fleetWrite, handler.UpdateAircraft)
		cached.DELETE("/aircraft/:id", fleetWrite, handler.DeleteAircraft)

		cached.GET("/maintenance", handler.ListMaintenance)
		cached.GET("/maintenance/:id", handler.GetMaintenance)
		cached.POST("/maintenance", fleetWrite, handler.CreateMaintenance)
		cached.PUT("/maintenance/:id", fleetWrite, handler.UpdateMaintenance)
		cached.DELETE("/maintenance/:id", fleetWrite, handler.DeleteMaintenance)

		cached.GET("/flights", handler.ListFlights)
		cached.GET("/flights/:id", handler.GetFlight)
		cached.POST("/flights", logbookWrite, handler.CreateFlight)
		cached.PUT("/flights/:id", logbookWrite, handler.UpdateFlight)
		cached.DELETE("/flights/:id", logbookWrite, handler.DeleteFlight)

		cached.POST("/users", handler.CreateUser)
		cached.GET("/users/:id", handler.GetUser)

		cached.GET("/subscriptions", handler.GetSubscription)
		cached.PUT("/subscriptions", handler.PutSubscription)
		cached.DELETE("/subscriptions", handler.DeleteSubscription)
		cached.GET("/vapid_public_key", handler.GetVAPIDPublicKey)
	}

	return r
}
