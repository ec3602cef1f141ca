// internal/api/routes/routes.go
package routes

import (
	"net/http"
	"time"

	"go-quickstart/config"
	"go-quickstart/internal/api/handlers"
	"go-quickstart/internal/api/middleware"
	"go-quickstart/internal/auth"
	"go-quickstart/internal/models"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Deps carries everything the router wires into handlers.
type Deps struct {
	Server  config.ServerConfig
	Log     *zap.Logger
	Tokens  *auth.TokenManager
	Revoked middleware.RevocationChecker

	Users     *handlers.UserHandler
	OAuth     *handlers.OAuthHandler
	Samples   *handlers.SampleHandler
	Maps      *handlers.MapsHandler
	Files     *handlers.FileHandler
	WebSocket *handlers.WebSocketHandler
	Docs      *handlers.DocsHandler
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders: []string{"Content-Disposition", "Content-Length", middleware.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	for _, o := range origins {
		if o == "*" {
			cfg.AllowAllOrigins = true
			return cfg
		}
	}
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}

// SetupRouter builds the gin engine with every route group.
func SetupRouter(d Deps) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	if d.Log != nil {
		router.Use(middleware.Logger(d.Log))
	}
	if len(d.Server.AllowedOrigins) > 0 {
		router.Use(cors.New(corsConfig(d.Server.AllowedOrigins)))
	}
	if d.Server.UploadLimitMB > 0 {
		router.MaxMultipartMemory = d.Server.UploadLimitMB << 20
	}

	authenticate := middleware.Authenticate(d.Tokens, d.Revoked)
	adminOnly := middleware.Authorize(models.RoleAdmin)

	if d.Docs != nil {
		router.GET("/api-docs", d.Docs.JSON)
		router.GET("/api-docs/openapi.yaml", d.Docs.YAML)
	}

	api := router.Group("/api")
	{
		if d.Samples != nil {
			api.GET("/", d.Samples.Main)
			api.GET("/test", d.Samples.Test)
			api.GET("/captcha", d.Samples.GetCaptcha)
			api.POST("/verify-captcha", d.Samples.VerifyCaptcha)
			api.POST("/generatePdf", d.Samples.GeneratePDF)
		}

		if d.Users != nil {
			user := api.Group("/user")
			{
				user.POST("/register", d.Users.Register)
				user.POST("/login", d.Users.Login)
				user.POST("/forgot-password", d.Users.ForgotPassword)
				user.POST("/verify-otp", d.Users.VerifyOTP)
				user.POST("/reset-password", d.Users.ResetPassword)
				user.GET("/export/excel", d.Users.ExportExcel)
				user.POST("/import/excel", d.Users.ImportExcel)

				user.POST("/logout", authenticate, d.Users.Logout)
				user.GET("/", authenticate, adminOnly, d.Users.GetAllUsers)
				user.POST("/export/excel/email", authenticate, adminOnly, d.Users.EmailExport)
				user.GET("/:id", authenticate, d.Users.GetUser)
				user.PUT("/:id", authenticate, d.Users.UpdateUser)
				user.POST("/update/:id", authenticate, d.Users.UpdateUser)
				user.DELETE("/:id", authenticate, adminOnly, d.Users.DeleteUser)
			}
		}

		if d.Files != nil {
			files := api.Group("/files", authenticate)
			{
				files.POST("", d.Files.Upload)
				files.GET("/url", d.Files.URL)
				files.GET("", adminOnly, d.Files.List)
				files.DELETE("", adminOnly, d.Files.Delete)
			}
		}

		if d.OAuth != nil {
			oauth := api.Group("/auth")
			{
				oauth.GET("/:provider", d.OAuth.Begin)
				oauth.GET("/:provider/callback", d.OAuth.Callback)
			}
		}

		if d.Maps != nil {
			m := api.Group("/maps")
			{
				m.POST("/stores", d.Maps.AddStore)
				m.GET("/stores/nearby", d.Maps.NearbyStores)

				m.POST("/routes/optimize", d.Maps.OptimizeRoute)
				m.GET("/routes", d.Maps.ListRoutes)

				m.POST("/addresses/validate", d.Maps.ValidateAddress)
				m.GET("/places/nearby", d.Maps.NearbyPlaces)

				m.POST("/deliveries", d.Maps.CreateDelivery)
				m.PUT("/deliveries/:orderId", d.Maps.UpdateDelivery)
				m.GET("/deliveries/:orderId/track", d.Maps.TrackDelivery)
				if d.WebSocket != nil {
					m.GET("/deliveries/:orderId/ws", d.WebSocket.TrackDelivery)
				}

				m.POST("/properties", d.Maps.AddProperty)
				m.GET("/properties/search", d.Maps.SearchProperties)
				m.GET("/properties/:id/commute", d.Maps.Commute)
			}
		}
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Route not found"})
	})
	return router
}
