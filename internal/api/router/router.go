package router

import (
	"net/http"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/d60-Lab/blog-feed/config"
	_ "github.com/d60-Lab/blog-feed/docs"
	"github.com/d60-Lab/blog-feed/internal/api/handler"
	"github.com/d60-Lab/blog-feed/internal/api/middleware"
)

// Setup 注册全部路由
func Setup(cfg *config.Config, h *handler.Handler) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Recovery(), middleware.Logger())
	if cfg.Tracing.Enabled {
		r.Use(otelgin.Middleware(cfg.Tracing.ServiceName))
	}
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	optional := middleware.Auth(cfg.JWT.Secret, false)
	required := middleware.Auth(cfg.JWT.Secret, true)

	v1 := r.Group("/api/v1")
	{
		v1.GET("/posts", h.GlobalTimeline)
		v1.GET("/posts/:id", h.PostDetail)
		v1.GET("/groups/:slug/posts", h.GroupTimeline)
		v1.GET("/users/:username/posts", optional, h.ProfileTimeline)
	}

	authed := v1.Group("", required)
	{
		authed.GET("/feed/following", h.FollowingTimeline)
		authed.GET("/me/following", h.ListFollowing)

		authed.POST("/posts", h.CreatePost)
		authed.PATCH("/posts/:id", h.EditPost)
		authed.DELETE("/posts/:id", h.DeletePost)
		authed.POST("/posts/:id/comments", h.AddComment)

		authed.POST("/users/:username/follow", h.Follow)
		authed.DELETE("/users/:username/follow", h.Unfollow)

		authed.POST("/groups", h.CreateGroup)
		authed.DELETE("/groups/:slug", h.DeleteGroup)
	}

	return r
}
