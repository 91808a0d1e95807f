package api

import (
	"github.com/gin-gonic/gin"
)

// Config holds application configuration
type Config struct {
	Port        string
	MaxFileSize int64
	TempDir     string
}

func SetupRoutes(r *gin.Engine, config *Config) {
	apiGroup := r.Group("/api/pdf")
	{
		apiGroup.POST("/bookmarks/list", func(c *gin.Context) { HandleListBookmarks(c, config) })
		apiGroup.POST("/bookmarks/add", func(c *gin.Context) { HandleAddBookmarks(c, config) })
		apiGroup.POST("/bookmarks/remove", func(c *gin.Context) { HandleRemoveBookmarks(c, config) })
		apiGroup.POST("/resave", func(c *gin.Context) { HandleResave(c, config) })
		apiGroup.POST("/remove-pages", func(c *gin.Context) { HandleRemovePages(c, config) })
	}
}
