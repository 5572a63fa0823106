// internal/router/router.go
package router

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/footycollect/footycollect-api/internal/config"
	"github.com/footycollect/footycollect-api/internal/handlers"
	"github.com/footycollect/footycollect-api/internal/middleware"
	"github.com/footycollect/footycollect-api/internal/services"
	"github.com/footycollect/footycollect-api/internal/utils"
)

const version = "1.0.0"

// Initialize builds the engine, resolving every service through registry so
// that substitutes registered there are served.
func Initialize(cfg *config.Config, registry *services.Registry, db *gorm.DB) (*gin.Engine, error) {
	itemService, err := registry.ItemService()
	if err != nil {
		return nil, err
	}
	photoService, err := registry.PhotoService()
	if err != nil {
		return nil, err
	}
	colorService, err := registry.ColorService()
	if err != nil {
		return nil, err
	}
	sizeService, err := registry.SizeService()
	if err != nil {
		return nil, err
	}
	collectionService, err := registry.CollectionService()
	if err != nil {
		return nil, err
	}
	kitService, err := registry.ItemFKAPIService()
	if err != nil {
		return nil, err
	}
	userService, err := registry.UserService()
	if err != nil {
		return nil, err
	}

	// Initialize handlers
	itemHandler := handlers.NewItemHandler(itemService, collectionService)
	photoHandler := handlers.NewPhotoHandler(photoService)
	colorHandler := handlers.NewColorHandler(colorService)
	sizeHandler := handlers.NewSizeHandler(sizeService)
	collectionHandler := handlers.NewCollectionHandler(collectionService)
	kitHandler := handlers.NewKitHandler(kitService)
	userHandler := handlers.NewUserHandler(userService, itemService)

	// Set JWT secret
	utils.SetJWTSecret(cfg.JWT.SecretKey)

	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.Metrics())
	r.Use(middleware.CORS(cfg.CORS))
	r.Use(middleware.I18nMiddleware())

	r.GET("/health", healthCheck(db))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if cfg.Storage.Backend == "local" && strings.HasPrefix(cfg.Storage.LocalBaseURL, "/") {
		r.Static(cfg.Storage.LocalBaseURL, cfg.Storage.LocalDir)
	}

	// API v1 routes
	v1 := r.Group("/v1")
	v1.Use(middleware.GeneralRateLimit())
	{
		items := v1.Group("/items")
		{
			items.GET("", middleware.OptionalAuth(), itemHandler.GetItems)
			items.GET("/public", itemHandler.GetPublicItems)
			items.GET("/:id", middleware.OptionalAuth(), itemHandler.GetItem)
			items.GET("/:id/photos", middleware.OptionalAuth(), photoHandler.GetItemPhotos)
			items.GET("/:id/photos/main", middleware.OptionalAuth(), photoHandler.GetMainPhoto)

			protected := items.Group("")
			protected.Use(middleware.AuthRequired())
			{
				protected.POST("", itemHandler.CreateItem)
				protected.POST("/with-photos", middleware.UploadRateLimit(), itemHandler.CreateItemWithPhotos)
				protected.PUT("/:id", itemHandler.UpdateItem)
				protected.PUT("/:id/with-photos", middleware.UploadRateLimit(), itemHandler.UpdateItemWithPhotos)
				protected.POST("/:id/publish", itemHandler.PublishItem)
				protected.DELETE("/:id", itemHandler.DeleteItem)

				protected.POST("/:id/photos", middleware.UploadRateLimit(), photoHandler.UploadItemPhoto)
				protected.POST("/:id/photos/attach", photoHandler.AttachPhotos)
				protected.PUT("/:id/photos/order", photoHandler.ReorderPhotos)
				protected.PUT("/:id/photos/:photoId/main", photoHandler.SetMainPhoto)
			}
		}

		photos := v1.Group("/photos")
		photos.Use(middleware.AuthRequired())
		{
			photos.POST("", middleware.UploadRateLimit(), photoHandler.UploadPhoto)
			photos.PUT("/:id", photoHandler.UpdatePhoto)
			photos.DELETE("/:id", photoHandler.DeletePhoto)
		}

		colors := v1.Group("/colors")
		{
			colors.GET("", colorHandler.GetColors)
			colors.GET("/popular", colorHandler.GetPopularColors)
			colors.GET("/statistics", colorHandler.GetColorStatistics)
			colors.GET("/:id", colorHandler.GetColor)

			protected := colors.Group("")
			protected.Use(middleware.AuthRequired())
			{
				protected.POST("", colorHandler.CreateColor)
				protected.PUT("/:id", colorHandler.UpdateColor)
				protected.DELETE("/:id", colorHandler.DeleteColor)
			}
		}

		sizes := v1.Group("/sizes")
		{
			sizes.GET("", sizeHandler.GetSizes)
			sizes.GET("/popular", sizeHandler.GetPopularSizes)
			sizes.GET("/statistics", sizeHandler.GetSizeStatistics)
			sizes.GET("/:id", sizeHandler.GetSize)

			protected := sizes.Group("")
			protected.Use(middleware.AuthRequired())
			{
				protected.POST("", sizeHandler.CreateSize)
				protected.PUT("/:id", sizeHandler.UpdateSize)
				protected.DELETE("/:id", sizeHandler.DeleteSize)
			}
		}

		collection := v1.Group("/collection")
		{
			collection.GET("/search", middleware.OptionalAuth(), collectionHandler.Search)
			collection.GET("/statistics", collectionHandler.GetStatistics)
			collection.GET("/form-data", collectionHandler.GetFormData)
			collection.POST("/initialize", middleware.AuthRequired(), collectionHandler.Initialize)
		}

		kits := v1.Group("/kits")
		{
			kits.GET("/search", kitHandler.SearchKits)
			kits.GET("/clubs", kitHandler.SearchClubs)
			kits.GET("/:kitId", kitHandler.GetKit)
			kits.POST("/items", middleware.AuthRequired(), kitHandler.CreateItemFromKit)
		}

		me := v1.Group("/me")
		me.Use(middleware.AuthRequired())
		{
			me.GET("", userHandler.GetProfile)
			me.GET("/items", itemHandler.GetMyItems)
			me.GET("/items/recent", itemHandler.GetRecentItems)
			me.GET("/items/count", itemHandler.GetMyItemCounts)
			me.GET("/dashboard", collectionHandler.GetDashboard)
			me.GET("/summary", collectionHandler.GetSummary)
			me.GET("/analytics/items", itemHandler.GetItemAnalytics)
			me.GET("/analytics/photos", photoHandler.GetPhotoAnalytics)
			me.GET("/analytics/collection", collectionHandler.GetAnalytics)
		}
	}

	return r, nil
}

// healthCheck reports unhealthy when the database cannot be reached.
func healthCheck(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := gin.H{"status": "healthy", "version": version}
		if db != nil {
			sqlDB, err := db.DB()
			if err == nil {
				err = sqlDB.PingContext(c.Request.Context())
			}
			if err != nil {
				status["status"] = "unhealthy"
				status["database"] = err.Error()
				c.JSON(http.StatusServiceUnavailable, status)
				return
			}
			status["database"] = "ok"
		}
		c.JSON(http.StatusOK, status)
	}
}
