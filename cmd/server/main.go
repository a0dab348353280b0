package main

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/junwei-lu/scoreroom/internal/auth"
	"github.com/junwei-lu/scoreroom/internal/config"
	"github.com/junwei-lu/scoreroom/internal/server"
	"github.com/junwei-lu/scoreroom/internal/service"
	"github.com/junwei-lu/scoreroom/internal/storage/sqlite"
	"github.com/junwei-lu/scoreroom/internal/watch"
	"github.com/junwei-lu/scoreroom/pkg/logging"
)

func main() {
	cfg := config.Load()
	logging.Setup(!cfg.IsDevelopment())

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("Storage initialized", "database", cfg.DBPath)

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.TokenDuration)
	hub := watch.NewHub()

	users := service.NewUserService(store)
	settler := service.NewSettleService(store)
	rooms := service.NewRoomService(store, settler, hub, cfg.IdleTimeout)
	records := service.NewRecordService(store)
	stats := service.NewStatsService(store)
	friends := service.NewFriendService(store)

	router := server.NewRouter(server.Deps{
		Users:      users,
		Rooms:      rooms,
		Records:    records,
		Stats:      stats,
		Friends:    friends,
		Hub:        hub,
		JWTManager: jwtManager,
		SettleKey:  cfg.SettleKey,
	})

	// h2c lets gRPC-style HTTP/2 clients talk to us without TLS; plain
	// HTTP/1.1 clients are unaffected.
	handler := h2c.NewHandler(router, &http2.Server{})

	addr := ":" + cfg.Port
	slog.Info("Server starting", "address", addr, "env", cfg.Env)
	if err := http.ListenAndServe(addr, handler); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}
