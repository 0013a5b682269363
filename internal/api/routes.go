package api

import (
	"publazer/internal/middleware"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(router *gin.Engine, server *Server) error {
	if err := RegisterValidators(); err != nil {
		return err
	}

	if max := server.config.Upload.MaxBytes; max > 0 {
		router.MaxMultipartMemory = max
	}

	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(server.logger))
	router.Use(middleware.CORSSpecific(server.config.GetCORSOrigins()))
	router.Use(middleware.Security())

	router.GET("/health", server.Health)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", server.Health)
		v1.POST("/register", server.Register)
		v1.POST("/login", server.Login)

		protected := v1.Group("/")
		protected.Use(middleware.AuthMiddleware(server.jwtManager, server.revoker))
		{
			protected.POST("/logout", server.Logout)
			protected.GET("/profile", server.GetProfile)

			papers := protected.Group("/papers")
			{
				papers.GET("", server.GetPapers)
				papers.POST("/upload", server.UploadPaper)
				papers.GET("/export", middleware.FacultyOrAdmin(), server.ExportPapers)
				papers.GET("/:id", server.GetPaper)
				papers.PUT("/:id", server.UpdatePaper)
				papers.DELETE("/:id", server.DeletePaper)
				papers.POST("/:id/scan", middleware.FacultyOrAdmin(), server.ScanPaper)
			}

			protected.POST("/plagiarism/check", server.CheckPlagiarism)

			notifications := protected.Group("/notifications")
			{
				notifications.GET("", server.GetNotifications)
				notifications.PUT("/:id/read", server.MarkNotificationRead)
			}

			// Self-service profile edits go through PUT /users/:id as well.
			protected.PUT("/users/:id", server.UpdateUser)

			admin := protected.Group("/users")
			admin.Use(middleware.AdminOnly())
			{
				admin.GET("", server.GetUsers)
				admin.POST("", server.CreateUser)
				admin.DELETE("/:id", server.DeleteUser)
			}
		}
	}
	return nil
}
