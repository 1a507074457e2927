package router

import (
	"database/sql"
	"time"

	"factory_crm_backend/internal/cache"
	"factory_crm_backend/internal/handlers"
	"factory_crm_backend/internal/middleware"
	"factory_crm_backend/internal/repositories"
	"factory_crm_backend/internal/services"

	"github.com/gin-gonic/gin"
)

// Deps carries the process-wide collaborators built in main.
type Deps struct {
	DB         *sql.DB
	Events     services.EventPublisher
	Hub        *services.RealtimeHub
	StatsCache *cache.TTLCache
	KeepAlive  time.Duration
}

// Setup initializes the routing for the application.
func Setup(engine *gin.Engine, deps Deps) {
	db := deps.DB

	// Repositories
	userRepo := repositories.NewUserRepository(db)
	clientRepo := repositories.NewClientRepository(db)
	materialRepo := repositories.NewMaterialRepository(db)
	productRepo := repositories.NewProductRepository(db)
	orderRepo := repositories.NewOrderRepository(db)
	invoiceRepo := repositories.NewInvoiceRepository(db)
	inventoryRepo := repositories.NewInventoryRecordRepository(db)
	notificationRepo := repositories.NewNotificationRepository(db)
	statsRepo := repositories.NewStatsRepository(db)
	tx := repositories.NewTxRunner(db)

	// Services
	statsService := services.NewStatsService(statsRepo, deps.StatsCache)
	authService := services.NewAuthService(userRepo, tx)
	clientService := services.NewClientService(clientRepo, tx)
	materialService := services.NewMaterialService(materialRepo, inventoryRepo, tx, deps.Events)
	productService := services.NewProductService(productRepo, materialRepo, tx)
	invoiceService := services.NewInvoiceService(invoiceRepo, orderRepo, clientRepo, tx, deps.Events, statsService)
	orderService := services.NewOrderService(services.OrderServiceDeps{
		Orders:    orderRepo,
		Materials: materialRepo,
		Products:  productRepo,
		Clients:   clientRepo,
		Invoices:  invoiceRepo,
		Stock:     materialService,
		Totals:    invoiceService,
		Tx:        tx,
		Events:    deps.Events,
		Stats:     statsService,
	})
	notificationService := services.NewNotificationService(notificationRepo)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService)
	clientHandler := handlers.NewClientHandler(clientService)
	materialHandler := handlers.NewMaterialHandler(materialService)
	productHandler := handlers.NewProductHandler(productService)
	orderHandler := handlers.NewOrderHandler(orderService, statsService)
	invoiceHandler := handlers.NewInvoiceHandler(invoiceService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)
	eventsHandler := handlers.NewEventsHandler(deps.Hub, deps.KeepAlive)

	apiV1 := engine.Group("/api/v1")

	SetupPublicAuthRoutes(apiV1.Group("/auth"), authHandler)

	authenticated := apiV1.Group("")
	authenticated.Use(middleware.AuthMiddleware())
	{
		SetupAuthenticatedAuthRoutes(authenticated.Group("/auth"), authHandler)
		SetupOrderRoutes(authenticated, orderHandler)
		SetupInvoiceRoutes(authenticated, invoiceHandler)
		SetupMaterialRoutes(authenticated, materialHandler)
		SetupInventoryRecordRoutes(authenticated, materialHandler)
		SetupProductRoutes(authenticated, productHandler)
		SetupClientRoutes(authenticated, clientHandler)
		SetupNotificationRoutes(authenticated, notificationHandler)
		SetupEventRoutes(authenticated, eventsHandler)
	}
}
