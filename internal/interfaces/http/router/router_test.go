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

type pingRegistrar struct {
	path string
}

func (p *pingRegistrar) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET(p.path, func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})
}

func get(engine *gin.Engine, path string) int {
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w.Code
}

func TestRouterSetup(t *testing.T) {
	t.Run("api registrars mount under the api prefix", func(t *testing.T) {
		engine := gin.New()
		NewRouter(engine).Register(&pingRegistrar{path: "/products"}).Setup()

		assert.Equal(t, http.StatusOK, get(engine, "/api/products"))
		assert.Equal(t, http.StatusNotFound, get(engine, "/products"))
	})

	t.Run("root registrars mount at the server root", func(t *testing.T) {
		engine := gin.New()
		NewRouter(engine).RegisterRoot(&pingRegistrar{path: "/health"}).Setup()

		assert.Equal(t, http.StatusOK, get(engine, "/health"))
	})

	t.Run("the api prefix is configurable", func(t *testing.T) {
		engine := gin.New()
		NewRouter(engine, WithAPIPrefix("/api/v2")).Register(&pingRegistrar{path: "/products"}).Setup()

		assert.Equal(t, http.StatusOK, get(engine, "/api/v2/products"))
		assert.Equal(t, http.StatusNotFound, get(engine, "/api/products"))
	})
}
