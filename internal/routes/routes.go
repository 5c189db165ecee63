package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/VicenteFuentes2404/huerto-hogar/internal/cache"
	"github.com/VicenteFuentes2404/huerto-hogar/internal/handlers"
	"github.com/VicenteFuentes2404/huerto-hogar/internal/store"
)

// RequestID asigna un identificador a cada petición para correlacionar logs.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Header("X-Request-ID", id)
		c.Set("request_id", id)
		c.Next()
	}
}

func RegisterRoutes(router *gin.Engine, s store.Store, c *cache.Cache) {
	router.Use(RequestID())

	h := handlers.NewProductHandler(s, c)

	api := router.Group("/api")
	{
		api.GET("/productos", h.ListarProductos)
		api.POST("/productos", h.CrearProducto)
		api.GET("/productos/:id", h.ObtenerProducto)
		api.PUT("/productos/:id", h.ActualizarProducto)
		api.DELETE("/productos/:id", h.EliminarProducto)
	}
}
