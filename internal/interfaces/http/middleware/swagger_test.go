package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestSwaggerProtection(t *testing.T) {
	newRouter := func(cfg SwaggerConfig) *gin.Engine {
		router := gin.New()
		router.GET("/swagger/*any", SwaggerProtection(cfg), func(c *gin.Context) {
			c.Status(http.StatusOK)
		})
		return router
	}

	tests := []struct {
		name       string
		cfg        SwaggerConfig
		remoteAddr string
		want       int
	}{
		{"disabled", SwaggerConfig{Enabled: false}, "10.0.0.5:1234", http.StatusNotFound},
		{"open", SwaggerConfig{Enabled: true}, "10.0.0.5:1234", http.StatusOK},
		{"exact ip allowed", SwaggerConfig{Enabled: true, AllowedIPs: []string{"10.0.0.5"}}, "10.0.0.5:1234", http.StatusOK},
		{"cidr allowed", SwaggerConfig{Enabled: true, AllowedIPs: []string{"10.0.0.0/24"}}, "10.0.0.77:1234", http.StatusOK},
		{"outside allowlist", SwaggerConfig{Enabled: true, AllowedIPs: []string{"10.0.0.0/24", "bogus"}}, "192.168.1.1:1234", http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/swagger/index.html", nil)
			req.RemoteAddr = tt.remoteAddr
			w := httptest.NewRecorder()
			newRouter(tt.cfg).ServeHTTP(w, req)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}
