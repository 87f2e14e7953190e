package handler

import (
	"github.com/gin-gonic/gin"
)

// Handlers groups everything the router mounts.
type Handlers struct {
	Slots    *SlotHandler
	Bookings *BookingHandler
	Metrics  *MetricsHandler
}

// RouteOptions carries route-scoped middleware.
type RouteOptions struct {
	APIPrefix string
	// Identity attaches caller claims to API requests.
	Identity gin.HandlerFunc
	// BookingLimit throttles POST /book-slot.
	BookingLimit gin.HandlerFunc
}

// RegisterRoutes mounts the operational probes at the root and the booking API
// under opts.APIPrefix.
func RegisterRoutes(r gin.IRouter, h Handlers, opts RouteOptions) {
	if h.Metrics != nil {
		r.GET("/health", h.Metrics.Health)
		r.GET("/ready", h.Metrics.Ready)
		r.GET("/metrics", h.Metrics.Prometheus)
	}

	prefix := opts.APIPrefix
	if prefix == "" {
		prefix = "/v1"
	}
	api := r.Group(prefix)
	if opts.Identity != nil {
		api.Use(opts.Identity)
	}

	book := []gin.HandlerFunc{h.Bookings.Book}
	if opts.BookingLimit != nil {
		book = append([]gin.HandlerFunc{opts.BookingLimit}, book...)
	}

	api.GET("/available-slots", h.Slots.AvailableSlots)
	api.POST("/book-slot", book...)
	api.POST("/create-slots", h.Slots.CreateSlots)
	api.GET("/bookings", h.Bookings.List)
	api.GET("/bookings/export", h.Bookings.Export)
	api.DELETE("/bookings/:id", h.Bookings.Cancel)
	api.POST("/bookings/:id/reminders", h.Bookings.RequestReminder)
}
