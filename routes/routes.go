package routes

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"tailorbook/config"
	"tailorbook/controllers"
	"tailorbook/services"
	"tailorbook/utils"
)

// SetupRouter wires the controllers over the store and facade handles.
func SetupRouter(db *gorm.DB, store *services.Store, app *services.Facade, log zerolog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "http://127.0.0.1:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type", "X-Confirm-Clear"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
	}))

	r.Use(config.PerformanceLogger(log))

	authController := &controllers.AuthController{DB: db}
	customerController := &controllers.CustomerController{App: app, Store: store}
	settingsController := &controllers.SettingsController{Store: store}
	backupController := &controllers.BackupController{Store: store, App: app}
	dashboardController := &controllers.DashboardController{Store: store}
	printController := &controllers.PrintController{Store: store}

	auth := r.Group("/auth")
	{
		auth.POST("/register", authController.Register)
		auth.POST("/login", authController.Login)

		auth.Use(utils.AuthMiddleware())
		auth.GET("/me", authController.Me)
	}

	api := r.Group("/api")
	api.Use(utils.AuthMiddleware())
	{
		// Customer routes
		customers := api.Group("/customers")
		{
			customers.GET("", customerController.List)
			customers.POST("", customerController.Create)
			customers.DELETE("", backupController.ClearAll)
			customers.GET("/:id", customerController.Get)
			customers.PUT("/:id", customerController.Update)
			customers.DELETE("/:id", customerController.Delete)
			customers.POST("/:id/payment", customerController.TogglePayment)
			customers.POST("/:id/orders", customerController.AddOrder)
			customers.GET("/:id/print", printController.Print)
		}

		// Settings routes
		settings := api.Group("/settings")
		{
			settings.GET("", settingsController.List)
			settings.GET("/:key", settingsController.Get)
			settings.PUT("/:key", settingsController.Update)
		}

		// Backup and interchange routes
		backups := api.Group("/backups")
		{
			backups.POST("", backupController.Create)
			backups.GET("", backupController.List)
		}
		api.GET("/export", backupController.Export)
		api.POST("/import", backupController.Import)

		// Dashboard routes
		api.GET("/dashboard", dashboardController.GetDashboardOverview)
	}

	return r
}
