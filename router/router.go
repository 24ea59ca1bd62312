package router

import (
	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/wedding-seating/controllers"
	"github.com/yeremiapane/wedding-seating/hub"
	"github.com/yeremiapane/wedding-seating/middlewares"
	"github.com/yeremiapane/wedding-seating/services"
)

type Options struct {
	Sessions    *services.SessionManager
	Events      services.EventDirectory
	Hub         *hub.Hub
	RateLimiter *middlewares.RateLimiter
	CORSOrigin  string
}

func SetupRouter(opts Options) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddlewares(opts.CORSOrigin))
	r.Use(middlewares.LoggerMiddleware())

	seatingCtrl := controllers.NewSeatingController(opts.Sessions, opts.Events)
	hubCtrl := controllers.NewHubController(opts.Hub, opts.Sessions)

	// ----------------------------------------------------------------
	//                      PUBLIC ROUTES
	// ----------------------------------------------------------------
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	// live arrangement changes
	r.GET("/ws/events/:event_id", middlewares.WebSocketAuthMiddleware(), hubCtrl.Watch)

	// ----------------------------------------------------------------
	//                      AUTHENTICATED ROUTES
	// ----------------------------------------------------------------
	api := r.Group("/api")
	api.Use(middlewares.AuthMiddleware())
	if opts.RateLimiter != nil {
		api.Use(opts.RateLimiter.RateLimit())
	}

	// EVENTS
	api.GET("/events", seatingCtrl.ListEvents)
	api.POST("/events/:event_id/open", seatingCtrl.OpenEvent)
	api.GET("/events/:event_id/arrangement", seatingCtrl.GetArrangement)
	api.GET("/events/:event_id/summary", seatingCtrl.GetSummary)

	// TABLES
	api.POST("/events/:event_id/tables", seatingCtrl.CreateTable)
	api.PATCH("/events/:event_id/tables/:table_id", seatingCtrl.UpdateTable)
	api.DELETE("/events/:event_id/tables/:table_id", seatingCtrl.DeleteTable)
	api.POST("/events/:event_id/tables/:table_id/rotate", seatingCtrl.RotateTable)

	// GUESTS
	api.GET("/events/:event_id/candidates", seatingCtrl.GetCandidates)
	api.POST("/events/:event_id/tables/:table_id/guests", seatingCtrl.AssignGuest)
	api.DELETE("/events/:event_id/tables/:table_id/guests/:guest_id", seatingCtrl.UnassignGuest)

	// DRAG AND DROP
	api.POST("/events/:event_id/drag/start", seatingCtrl.StartDrag)
	api.POST("/events/:event_id/drag/end", seatingCtrl.EndDrag)
	api.POST("/events/:event_id/drag/drop", seatingCtrl.Drop)

	// SAVING
	api.POST("/events/:event_id/flush", seatingCtrl.Flush)
	api.GET("/events/:event_id/save-status", seatingCtrl.GetSaveStatus)

	return r
}
