package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/yizeng/gab/gin/graphql/eventhub/internal/config"
)

func TestConfigCORS(t *testing.T) {
	tests := []struct {
		name        string
		environment string
		domains     []string
		origin      string
		wantAllowed bool
	}{
		{"listed origin", config.EnvProduction, []string{"https://app.example.com"}, "https://app.example.com", true},
		{"unlisted origin", config.EnvProduction, []string{"https://app.example.com"}, "https://evil.example.com", false},
		{"wildcard", config.EnvProduction, []string{"*"}, "https://any.example.com", true},
		{"development allows all", config.EnvDevelopment, nil, "http://localhost:3000", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gin.SetMode(gin.TestMode)
			router := gin.New()
			router.Use(ConfigCORS(&config.APIConfig{Environment: tt.environment, AllowedCORSDomains: tt.domains}))
			router.GET("/", func(ctx *gin.Context) { ctx.Status(http.StatusOK) })

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set("Origin", tt.origin)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if tt.wantAllowed {
				assert.Equal(t, tt.origin, rec.Header().Get("Access-Control-Allow-Origin"))
			} else {
				assert.Equal(t, http.StatusForbidden, rec.Code)
			}
		})
	}
}
