package router

import (
	"factory_crm_backend/internal/handlers"
	"factory_crm_backend/internal/middleware"
	"factory_crm_backend/internal/models"

	"github.com/gin-gonic/gin"
)

const (
	admin        = models.RoleAdmin
	receptionist = models.RoleReceptionist
	designer     = models.RoleDesigner
	worker       = models.RoleWorker
	financial    = models.RoleFinancial
)

func SetupPublicAuthRoutes(group *gin.RouterGroup, authHandler *handlers.AuthHandler) {
	group.POST("/login", authHandler.Login)
}

func SetupAuthenticatedAuthRoutes(group *gin.RouterGroup, authHandler *handlers.AuthHandler) {
	group.GET("/me", authHandler.GetCurrentUser)
	group.POST("/users", middleware.RoleAuthMiddleware(admin), authHandler.CreateUser)
}

// SetupOrderRoutes sets up the order routes. Stats routes are registered
// before /:id so the static segments win.
func SetupOrderRoutes(authenticatedGroup *gin.RouterGroup, orderHandler *handlers.OrderHandler) {
	orderRoutes := authenticatedGroup.Group("/orders")
	{
		orderRoutes.GET("/stats/financial", middleware.RoleAuthMiddleware(admin, financial), orderHandler.GetFinancialStats)
		orderRoutes.GET("/stats/timeseries", middleware.RoleAuthMiddleware(admin, financial), orderHandler.GetTimeseriesStats)

		orderRoutes.POST("", middleware.RoleAuthMiddleware(admin, receptionist, designer), orderHandler.CreateOrder)
		orderRoutes.GET("", orderHandler.GetOrders)
		orderRoutes.GET("/:id", orderHandler.GetOrderByID)
		orderRoutes.PUT("/:id", middleware.RoleAuthMiddleware(admin, designer, worker, financial), orderHandler.UpdateOrder)
		orderRoutes.DELETE("/:id", middleware.RoleAuthMiddleware(admin, receptionist, designer), orderHandler.DeleteOrder)
	}
}

// SetupInvoiceRoutes sets up the invoice routes.
func SetupInvoiceRoutes(authenticatedGroup *gin.RouterGroup, invoiceHandler *handlers.InvoiceHandler) {
	invoiceRoutes := authenticatedGroup.Group("/invoices")
	{
		invoiceRoutes.POST("", middleware.RoleAuthMiddleware(admin, designer, worker), invoiceHandler.CreateInvoice)
		invoiceRoutes.GET("", invoiceHandler.GetInvoices)
		invoiceRoutes.GET("/:id", invoiceHandler.GetInvoiceByID)
		invoiceRoutes.PUT("/:id", middleware.RoleAuthMiddleware(admin, designer, worker), invoiceHandler.UpdateInvoice)
		invoiceRoutes.DELETE("/:id", middleware.RoleAuthMiddleware(admin), invoiceHandler.DeleteInvoice)
	}
}

// SetupMaterialRoutes sets up the material registry and stock operation routes.
func SetupMaterialRoutes(authenticatedGroup *gin.RouterGroup, materialHandler *handlers.MaterialHandler) {
	materialRoutes := authenticatedGroup.Group("/materials")
	{
		materialRoutes.GET("", materialHandler.GetMaterials)
		materialRoutes.GET("/low-stock", materialHandler.GetLowStock)
		materialRoutes.GET("/:id", materialHandler.GetMaterialByID)

		materialRoutes.POST("", middleware.RoleAuthMiddleware(admin), materialHandler.CreateMaterial)
		materialRoutes.PUT("/:id", middleware.RoleAuthMiddleware(admin), materialHandler.UpdateMaterial)
		materialRoutes.DELETE("/:id", middleware.RoleAuthMiddleware(admin), materialHandler.DeleteMaterial)

		materialRoutes.POST("/:id/adjust", middleware.RoleAuthMiddleware(admin), materialHandler.AdjustStock)
		materialRoutes.POST("/:id/stock-count", middleware.RoleAuthMiddleware(admin, worker), materialHandler.RecordStockCount)
		materialRoutes.POST("/:id/wastage", middleware.RoleAuthMiddleware(admin, worker), materialHandler.RecordWastage)
		materialRoutes.POST("/:id/withdraw", middleware.RoleAuthMiddleware(admin, worker), materialHandler.Withdraw)
		materialRoutes.POST("/:id/purchase-receipt", middleware.RoleAuthMiddleware(admin, financial), materialHandler.ReceivePurchase)
	}
}

func SetupInventoryRecordRoutes(authenticatedGroup *gin.RouterGroup, materialHandler *handlers.MaterialHandler) {
	authenticatedGroup.GET("/inventory-records", middleware.RoleAuthMiddleware(admin, financial), materialHandler.GetInventoryRecords)
}

// SetupProductRoutes sets up the product routes.
func SetupProductRoutes(authenticatedGroup *gin.RouterGroup, productHandler *handlers.ProductHandler) {
	productRoutes := authenticatedGroup.Group("/products")
	{
		productRoutes.GET("", productHandler.GetProducts)
		productRoutes.GET("/:id", productHandler.GetProductByID)
		productRoutes.POST("", middleware.RoleAuthMiddleware(admin), productHandler.CreateProduct)
		productRoutes.PUT("/:id", middleware.RoleAuthMiddleware(admin), productHandler.UpdateProduct)
		productRoutes.DELETE("/:id", middleware.RoleAuthMiddleware(admin), productHandler.DeleteProduct)
	}
}

// SetupClientRoutes sets up the client routes.
func SetupClientRoutes(authenticatedGroup *gin.RouterGroup, clientHandler *handlers.ClientHandler) {
	clientRoutes := authenticatedGroup.Group("/clients")
	{
		clientRoutes.GET("", clientHandler.GetClients)
		clientRoutes.GET("/:id", clientHandler.GetClientByID)
		clientRoutes.POST("", middleware.RoleAuthMiddleware(admin, receptionist, designer), clientHandler.CreateClient)
		clientRoutes.PUT("/:id", middleware.RoleAuthMiddleware(admin, receptionist, designer), clientHandler.UpdateClient)
	}
}

func SetupNotificationRoutes(authenticatedGroup *gin.RouterGroup, notificationHandler *handlers.NotificationHandler) {
	notificationRoutes := authenticatedGroup.Group("/notifications")
	{
		notificationRoutes.GET("", notificationHandler.GetNotifications)
		notificationRoutes.GET("/unread-count", notificationHandler.GetUnreadCount)
		notificationRoutes.PATCH("/read-all", notificationHandler.MarkAllRead)
		notificationRoutes.PATCH("/:id/read", notificationHandler.MarkRead)
	}
}

func SetupEventRoutes(authenticatedGroup *gin.RouterGroup, eventsHandler *handlers.EventsHandler) {
	authenticatedGroup.GET("/events/stream", eventsHandler.Stream)
}
