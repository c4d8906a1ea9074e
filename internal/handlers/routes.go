package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes attaches all card routes to the router.
func RegisterRoutes(router *gin.Engine, h *CardHandler) {
	router.GET("/health", h.Health)
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	// Share links live at the root so the URL stays short.
	router.POST("/share", h.CreateShare)
	router.GET("/share/:id", h.GetShare)

	api := router.Group("/api/v1")
	{
		cards := api.Group("/cards")
		{
			cards.POST("/generate", h.GenerateCard)
			cards.POST("/generate-text", h.GenerateText)
		}
		api.GET("/styles", h.GetStyles)
		api.GET("/stats", h.GetStats)
	}
}
