package middleware

import (
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/yizeng/gab/gin/graphql/eventhub/internal/config"
)

// ConfigCORS reads the allowed origins on every request so a config reload
// takes effect without a restart. Development allows any origin.
func ConfigCORS(conf *config.APIConfig) gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowOriginFunc: func(origin string) bool {
			if conf.IsDevelopment() {
				return true
			}

			domains := conf.CORSDomains()
			return slices.Contains(domains, "*") || slices.Contains(domains, origin)
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	})
}
