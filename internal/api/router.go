package api

import (
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"hostel-allocation-backend/internal/alloc"
	"hostel-allocation-backend/internal/mw"
	"hostel-allocation-backend/internal/store"
)

// RouterOptions tunes the middleware; zero values get sensible defaults.
type RouterOptions struct {
	RateLimitPerSec float64
	RateLimitBurst  int
	CacheTTL        time.Duration
	Limits          InventoryLimits
}

// NewRouter creates and configures a new Gin router.
func NewRouter(s store.Store, allocator *alloc.Allocator, webpushOptions *webpush.Options, opts RouterOptions) *gin.Engine {
	if opts.RateLimitPerSec <= 0 {
		opts.RateLimitPerSec = 10
	}
	if opts.RateLimitBurst <= 0 {
		opts.RateLimitBurst = 5
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = time.Minute
	}

	r := gin.Default()

	handler := NewHandler(s, allocator, webpushOptions, opts.Limits)

	rateLimiter := mw.RateLimiter(rate.Limit(opts.RateLimitPerSec), opts.RateLimitBurst)

	cacheStore := cache.New(opts.CacheTTL, 2*opts.CacheTTL)
	caching := mw.Cache(cacheStore, opts.CacheTTL)
	busting := mw.Bust(cacheStore)

	api := r.Group("/api")
	api.Use(mw.RequestID(), rateLimiter)
	{
		// Inventory reads
		api.GET("/hostels", caching, handler.GetHostels)
		api.GET("/hostels/:hostel_id/rooms", caching, handler.GetRooms)

		// Structural mutations
		api.POST("/hostels", busting, handler.CreateHostel)
		api.PATCH("/hostels/:hostel_id", busting, handler.RenameHostel)
		api.DELETE("/hostels/:hostel_id", busting, handler.DeleteHostel)
		api.POST("/hostels/:hostel_id/rooms", busting, handler.AddRooms)
		api.DELETE("/hostels/:hostel_id/rooms", busting, handler.RemoveRooms)
		api.POST("/rooms/:room_id/beds", busting, handler.AddBeds)
		api.DELETE("/rooms/:room_id/beds", busting, handler.RemoveBeds)

		// Grouped applicant picker and allocation
		api.GET("/groups", handler.GetGroups)
		api.POST("/allocations", busting, handler.Allocate)
		api.POST("/unassignments", busting, handler.Unassign)

		// Admin push subscriptions
		api.GET("/subscriptions", handler.GetSubscription)
		api.PUT("/subscriptions", handler.PutSubscription)
		api.DELETE("/subscriptions", handler.DeleteSubscription)
		api.GET("/vapid_public_key", handler.GetVAPIDPublicKey)
	}

	return r
}
