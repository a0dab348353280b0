// Package server wires the HTTP surface: routing, middleware, handlers and
// the websocket room watch.
package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/junwei-lu/scoreroom/internal/auth"
	"github.com/junwei-lu/scoreroom/internal/service"
	"github.com/junwei-lu/scoreroom/internal/watch"
)

// Deps bundles everything the router needs.
type Deps struct {
	Users      *service.UserService
	Rooms      *service.RoomService
	Records    *service.RecordService
	Stats      *service.StatsService
	Friends    *service.FriendService
	Hub        *watch.Hub
	JWTManager *auth.JWTManager
	SettleKey  string
}

// NewRouter builds the gin engine with all routes attached.
func NewRouter(deps Deps) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), ObserveMiddleware())

	userHandler := NewUserHandler(deps.Users, deps.JWTManager)
	roomHandler := NewRoomHandler(deps.Rooms, deps.Users)
	recordHandler := NewRecordHandler(deps.Records)
	statsHandler := NewStatsHandler(deps.Stats)
	friendHandler := NewFriendHandler(deps.Friends)
	watchHandler := NewWatchHandler(deps.Rooms, deps.Hub, deps.JWTManager)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")
	{
		api.POST("/auth/login", userHandler.Login)

		protected := api.Group("/")
		protected.Use(AuthMiddleware(deps.JWTManager))
		{
			protected.GET("/auth/profile", userHandler.GetProfile)
			protected.PUT("/auth/profile", userHandler.UpdateProfile)

			rooms := protected.Group("/rooms")
			{
				rooms.POST("", roomHandler.CreateRoom)
				rooms.GET("", roomHandler.ListRooms)
				rooms.POST("/join", roomHandler.JoinRoom)
				rooms.GET("/:id", roomHandler.GetRoom)
				rooms.POST("/:id/leave", roomHandler.LeaveRoom)
				rooms.POST("/:id/transfers", roomHandler.Transfer)
				rooms.POST("/:id/records", recordHandler.AddRecord)
				rooms.GET("/:id/records", recordHandler.ListRecords)
				rooms.DELETE("/:id/records/:recordId", recordHandler.DeleteRecord)
			}

			protected.POST("/personal-records", recordHandler.AddPersonalRecord)
			protected.GET("/personal-records", recordHandler.ListPersonalRecords)

			protected.GET("/stats/overall", statsHandler.Overall)
			protected.GET("/stats/trend", statsHandler.Trend)

			protected.GET("/friends", friendHandler.ListFriends)
			protected.GET("/friends/:openid", friendHandler.GetFriend)
		}

		// Privileged settlement, guarded by the shared key rather than a
		// user session.
		internal := api.Group("/internal")
		internal.Use(SettleKeyMiddleware(deps.SettleKey))
		{
			internal.POST("/rooms/:id/settle", roomHandler.Settle)
		}
	}

	router.GET("/ws/rooms/:id", watchHandler.Watch)

	return router
}
