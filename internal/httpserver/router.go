package httpserver

import (
	"context"
	"time"

	"centrale/internal/handler"
	"centrale/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Router struct {
	Engine *gin.Engine
}

func NewRouter(
	authHandler *handler.AuthHandler,
	boardHandler *handler.BoardHandler,
	pageHandler *handler.PageHandler,
	jwtSecret string,
	uploadsRoot string,
	db *pgxpool.Pool,
) *Router {
	r := gin.Default()
	r.Use(MetricsMiddleware())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.HEAD("/healthz", func(c *gin.Context) {
		c.Status(200)
	})
	r.GET("/readyz", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c, 1*time.Second)
		defer cancel()

		if err := db.Ping(ctx); err != nil {
			c.JSON(500, gin.H{"status": "db_not_ready", "error": err.Error()})
			return
		}

		c.JSON(200, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Public
	r.POST("/login", authHandler.Login)
	r.Static("/uploads", uploadsRoot)

	// Protected
	api := r.Group("/api")
	api.Use(AuthMiddleware(jwtSecret))
	{
		api.GET("/me/:username", authHandler.Me)
		api.GET("/users/entrepreneurs", authHandler.Entrepreneurs)
		api.GET("/users/coaches", authHandler.Coaches)

		api.GET("/centrale/catalog", boardHandler.Catalog)
		api.GET("/centrale/boards", boardHandler.ListBoards)
		api.GET("/centrale/boards/:id", boardHandler.GetBoard)

		// Writes are coach and admin territory.
		edit := api.Group("/centrale")
		edit.Use(RequireRole(model.RoleAdmin, model.RoleCoach))
		{
			edit.POST("/boards", boardHandler.CreateBoard)
			edit.PUT("/boards/:id", boardHandler.UpdateBoard)
			edit.DELETE("/boards/:id", boardHandler.DeleteBoard)
			edit.PUT("/sections/:sectionID/rows/:rowID", boardHandler.UpdateRow)
			edit.POST("/sections/save-all", boardHandler.SaveAll)
			edit.POST("/boards/upload-file", boardHandler.UploadFile)
			edit.POST("/boards/attach-link", boardHandler.AttachLink)
			edit.POST("/boards/delete-file", boardHandler.DeleteFile)
		}
	}

	pages := r.Group("/")
	pages.Use(AuthMiddleware(jwtSecret))
	{
		pages.GET("/admin/centrale",
			RequireRole(model.RoleAdmin, model.RoleCoach),
			pageHandler.Admin,
		)
		pages.GET("/view/centrale", pageHandler.View)
	}

	return &Router{Engine: r}
}

func (r *Router) Run(port string) error {
	return r.Engine.Run(port)
}
