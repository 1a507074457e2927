package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"factory_crm_backend/internal/cache"
	"factory_crm_backend/internal/config"
	"factory_crm_backend/internal/database"
	"factory_crm_backend/internal/repositories"
	"factory_crm_backend/internal/router"
	"factory_crm_backend/internal/services"
	"factory_crm_backend/pkg/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg := config.Load()

	// Initialize Logger
	utils.InitLogger(cfg.LogLevel, cfg.LogFormat)

	if err := utils.ConfigureJWT(cfg.JWTSecret, cfg.JWTTTL); err != nil {
		utils.LogError(err, "Invalid JWT configuration")
		os.Exit(1)
	}

	db, err := database.InitDB(cfg)
	if err != nil {
		utils.LogError(err, "Failed to initialize database")
		os.Exit(1)
	}
	defer db.Close()
	utils.LogInfo("Database initialized", map[string]interface{}{"host": cfg.DBHost, "name": cfg.DBName})

	userRepo := repositories.NewUserRepository(db)
	authService := services.NewAuthService(userRepo, repositories.NewTxRunner(db))
	created, err := authService.EnsureAdmin(cfg.AdminUsername, cfg.AdminPassword)
	if err != nil {
		utils.LogError(err, "Failed to seed admin user")
		os.Exit(1)
	}
	if created {
		utils.LogInfo("Admin user created", map[string]interface{}{"username": cfg.AdminUsername})
	}

	hub := services.NewRealtimeHub(32)
	dispatcher := services.NewNotificationDispatcher(
		userRepo,
		repositories.NewNotificationRepository(db),
		hub, cfg.EventQueueSize, cfg.EventWorkers,
	)
	dispatcher.Start()

	gin.SetMode(cfg.GinMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(utils.GinLogger())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.CORSAllowedOrigins
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	corsConfig.AllowCredentials = true
	engine.Use(cors.New(corsConfig))

	engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	router.Setup(engine, router.Deps{
		DB:         db,
		Events:     dispatcher,
		Hub:        hub,
		StatsCache: cache.NewTTLCache(cfg.StatsCacheTTL),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	// Shutdown does not interrupt active connections; closing the hub ends open event streams.
	srv.RegisterOnShutdown(hub.Close)

	go func() {
		utils.LogInfo("Server starting", map[string]interface{}{"port": cfg.Port})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			utils.LogError(err, "Failed to start server")
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	utils.LogInfo("Shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		utils.LogError(err, "Server forced to shutdown")
	}
	// Drain pending notifications after HTTP writers are gone.
	dispatcher.Stop()
	utils.LogInfo("Server exited")
}
