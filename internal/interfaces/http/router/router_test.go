package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestNewRouter(t *testing.T) {
	r := NewRouter(gin.New())

	assert.Equal(t, "v1", r.apiVersion)
	assert.Empty(t, r.registrars)

	r = NewRouter(gin.New(), WithAPIVersion("v2"))
	assert.Equal(t, "v2", r.apiVersion)
}

func TestDomainGroup_Routes(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine)

	g := NewDomainGroup("reports", "/reports")
	g.GET("/top-sellers", func(c *gin.Context) { c.String(http.StatusOK, "get") })
	g.POST("/archive", func(c *gin.Context) { c.String(http.StatusCreated, "post") })
	r.Register(g).Setup()

	assert.Equal(t, "reports", g.Name())
	assert.Equal(t, "/reports", g.Prefix())

	tests := []struct {
		method string
		path   string
		want   int
	}{
		{http.MethodGet, "/api/v1/reports/top-sellers", http.StatusOK},
		{http.MethodPost, "/api/v1/reports/archive", http.StatusCreated},
		{http.MethodGet, "/reports/top-sellers", http.StatusNotFound},
	}
	for _, tt := range tests {
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, nil))
		assert.Equal(t, tt.want, w.Code, tt.path)
	}
}

func TestDomainGroup_MiddlewareAndSubgroups(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine)

	var order []string
	g := NewDomainGroup("reports", "/reports").Use(func(c *gin.Context) {
		order = append(order, "group")
		c.Next()
	})
	sub := g.Group("ledger-export", "/ledger-export")
	sub.GET("", func(c *gin.Context) {
		order = append(order, "handler")
		c.Status(http.StatusOK)
	})
	r.Register(g).Setup()

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/reports/ledger-export", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"group", "handler"}, order)
}
