package main

import (
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/gin-gonic/gin"

	"github.com/vibeweb/sockethub/api/handlers"
	"github.com/vibeweb/sockethub/internal/config"
	"github.com/vibeweb/sockethub/internal/dispatch"
	"github.com/vibeweb/sockethub/internal/registry"
	"github.com/vibeweb/sockethub/internal/store"
	"github.com/vibeweb/sockethub/internal/trafficlog"
	"github.com/vibeweb/sockethub/internal/ws"
)

func main() {
	cfg := config.Load()

	// Ensure the data directory exists
	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0755); err != nil {
		log.Fatalf("Failed to create database directory: %v", err)
	}

	// Initialize session store
	database, err := store.Open(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer database.Close()
	sessions := store.NewSessionStore(database)

	// Core state: connection registry and traffic log
	reg := registry.New()
	traffic := trafficlog.New(cfg.LogCapacity)

	// Transport and protocol dispatcher
	hub := ws.NewHub()
	defer hub.Close()
	dispatcher := dispatch.New(reg, traffic, hub, sessions)
	wsHandler := ws.NewHandler(hub, dispatcher, ws.Config{
		PongWait:       cfg.PongWait,
		PingInterval:   cfg.PingInterval,
		MaxMessageSize: cfg.MaxMessageSize,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || cfg.OriginAllowed(origin)
		},
	})

	// Initialize handlers
	dashboardHandler := handlers.NewDashboardHandler()
	controlHandler := handlers.NewControlHandler(reg, traffic, hub)
	webSocketHandler := handlers.NewWebSocketHandler(wsHandler)

	// Initialize Gin router
	r := gin.Default()
	r.Use(corsMiddleware(cfg))

	dashboardHandler.RegisterRoutes(r)
	webSocketHandler.RegisterRoutes(r)

	api := r.Group("/api")
	{
		controlHandler.RegisterRoutes(api)
	}

	r.NoRoute(func(c *gin.Context) {
		c.String(http.StatusNotFound, "Not Found")
	})

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Println("Shutting down server...")
		hub.Close()
		database.Close()
		os.Exit(0)
	}()

	// Start server
	log.Printf("Server running at http://%s", cfg.Addr())
	if err := r.Run(cfg.Addr()); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// corsMiddleware returns a CORS middleware honoring the configured
// allow-list.
func corsMiddleware(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin != "" && cfg.OriginAllowed(origin) {
			if cfg.AllowAllOrigins() {
				c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
			} else {
				c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			}
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
			c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
