package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/wuwenbin0122/goal-planner/web"
)

// NewRouter builds the gin engine with templates, middleware and all routes.
func NewRouter(handler *Handler, logger *zap.SugaredLogger) (*gin.Engine, error) {
	templates, err := web.Templates()
	if err != nil {
		return nil, fmt.Errorf("api: parse templates: %w", err)
	}

	router := gin.New()
	router.Use(requestID(), accessLog(logger), gin.Recovery())
	router.SetHTMLTemplate(templates)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	})

	handler.RegisterRoutes(router)

	return router, nil
}
