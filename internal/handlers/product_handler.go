package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/VicenteFuentes2404/huerto-hogar/internal/cache"
	"github.com/VicenteFuentes2404/huerto-hogar/internal/imaging"
	"github.com/VicenteFuentes2404/huerto-hogar/internal/models"
	"github.com/VicenteFuentes2404/huerto-hogar/internal/store"
)

const (
	claveListado  = "productos:lista"
	claveProducto = "producto:"
)

type ProductHandler struct {
	store store.Store
	cache *cache.Cache
}

func NewProductHandler(s store.Store, c *cache.Cache) *ProductHandler {
	return &ProductHandler{store: s, cache: c}
}

// productoEntrada es el cuerpo que acepta POST/PUT. El precio llega como
// número (entero o con decimales, se redondea) y las imágenes como base64
// sin prefijo.
type productoEntrada struct {
	ID          string   `json:"id"`
	Nombre      string   `json:"nombre" binding:"required"`
	Precio      *float64 `json:"precio" binding:"required"`
	Descripcion string   `json:"descripcion"`
	Categoria   string   `json:"categoria" binding:"required"`
	Disponible  *bool    `json:"disponible"`
	Imagen      string   `json:"imagen"`
	Imagenes    []string `json:"imagenes"`
}

func (e productoEntrada) aBorrador(esEdicion bool) models.Borrador {
	b := models.NewBorrador()
	b.Slug = e.ID
	if b.Slug == "" {
		b.Slug = e.Nombre
	}
	b.Nombre = e.Nombre
	if e.Precio != nil {
		b.Precio = strconv.FormatFloat(*e.Precio, 'f', -1, 64)
	}
	b.Descripcion = e.Descripcion
	b.Categoria = e.Categoria
	if e.Disponible != nil {
		b.Disponible = *e.Disponible
	}
	b.Imagen = e.Imagen
	b.Imagenes = e.Imagenes
	b.EsEdicion = esEdicion
	return b
}

// aWire deja el producto en su forma de cable: imágenes sin prefijo data URL.
func aWire(p models.Producto) models.Producto {
	p.Imagen = imaging.StripPrefix(p.Imagen)
	p.Imagenes = imaging.StripAll(p.Imagenes)
	return p
}

func responderFalla(c *gin.Context, err error, accion string) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "producto no encontrado"})
	case errors.Is(err, store.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "ya existe un producto con ese identificador"})
	case errors.Is(err, store.ErrCapacity):
		c.JSON(http.StatusInsufficientStorage, gin.H{"error": "almacenamiento del catálogo lleno"})
	default:
		zap.S().Errorw("falla del catálogo", "accion", accion, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "fallo al " + accion})
	}
}

// GET /api/productos
func (h *ProductHandler) ListarProductos(c *gin.Context) {
	if cacheado, ok := h.cache.Get(claveListado); ok {
		c.JSON(http.StatusOK, cacheado)
		return
	}

	productos, err := h.store.List(c.Request.Context())
	if err != nil {
		responderFalla(c, err, "listar productos")
		return
	}

	wire := make([]models.Producto, len(productos))
	for i, p := range productos {
		wire[i] = aWire(p)
	}

	h.cache.Set(claveListado, wire)
	c.JSON(http.StatusOK, wire)
}

// GET /api/productos/:id
func (h *ProductHandler) ObtenerProducto(c *gin.Context) {
	id := c.Param("id")
	if cacheado, ok := h.cache.Get(claveProducto + id); ok {
		c.JSON(http.StatusOK, cacheado)
		return
	}

	producto, err := h.store.Get(c.Request.Context(), id)
	if err != nil {
		responderFalla(c, err, "obtener el producto")
		return
	}

	wire := aWire(producto)
	h.cache.Set(claveProducto+id, wire)
	c.JSON(http.StatusOK, wire)
}

// POST /api/productos
func (h *ProductHandler) CrearProducto(c *gin.Context) {
	var entrada productoEntrada
	if err := c.ShouldBindJSON(&entrada); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Re-validación de campos del lado del servidor. La unicidad del slug la
	// resuelve el almacén contra su propio estado autoritativo.
	borrador := entrada.aBorrador(false)
	if errores := models.Validar(borrador, nil); len(errores) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "producto inválido", "errores": errores})
		return
	}

	creado, err := h.store.Create(c.Request.Context(), borrador.AProducto())
	if err != nil {
		responderFalla(c, err, "crear el producto")
		return
	}

	h.cache.DeletePrefix(claveListado)
	c.JSON(http.StatusCreated, aWire(creado))
}

// PUT /api/productos/:id
func (h *ProductHandler) ActualizarProducto(c *gin.Context) {
	id := c.Param("id")

	var entrada productoEntrada
	if err := c.ShouldBindJSON(&entrada); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	borrador := entrada.aBorrador(true)
	borrador.Slug = id
	if errores := models.Validar(borrador, nil); len(errores) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "producto inválido", "errores": errores})
		return
	}

	actualizado, err := h.store.Update(c.Request.Context(), id, borrador.AProducto())
	if err != nil {
		responderFalla(c, err, "actualizar el producto")
		return
	}

	h.cache.Delete(claveProducto + id)
	h.cache.DeletePrefix(claveListado)
	c.JSON(http.StatusOK, aWire(actualizado))
}

// DELETE /api/productos/:id
func (h *ProductHandler) EliminarProducto(c *gin.Context) {
	id := c.Param("id")

	if err := h.store.Delete(c.Request.Context(), id); err != nil {
		responderFalla(c, err, "eliminar el producto")
		return
	}

	h.cache.Delete(claveProducto + id)
	h.cache.DeletePrefix(claveListado)
	c.Status(http.StatusNoContent)
}
