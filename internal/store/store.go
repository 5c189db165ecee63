// Package store abstrae la persistencia del catálogo detrás de un único
// contrato con tres variantes intercambiables: un almacén local durable
// (bbolt), el servicio HTTP remoto de catálogo y una colección de MongoDB.
// El orquestador de administración no distingue entre ellas.
package store

import (
	"context"
	"errors"

	"github.com/VicenteFuentes2404/huerto-hogar/internal/models"
)

// Taxonomía de fallas del catálogo. Todo lo demás que devuelva un adaptador
// es una falla de transporte envuelta con contexto.
var (
	// ErrNotFound indica que el slug pedido no existe en el backend.
	ErrNotFound = errors.New("producto no encontrado")
	// ErrConflict indica colisión de slug detectada por el backend.
	ErrConflict = errors.New("ya existe un producto con ese slug")
	// ErrCapacity indica que el almacén local agotó su capacidad. El valor
	// previamente guardado queda intacto.
	ErrCapacity = errors.New("almacenamiento local lleno")
	// ErrRejected indica que el backend re-validó el producto y lo rechazó.
	ErrRejected = errors.New("producto rechazado por el backend")
)

// Store es el contrato de persistencia del catálogo. Las imágenes entran y
// salen en forma de data URL; cada implementación persiste el base64 crudo
// y repone el prefijo al leer, de modo que la entidad no sabe de backends.
type Store interface {
	List(ctx context.Context) ([]models.Producto, error)
	Get(ctx context.Context, slug string) (models.Producto, error)
	Create(ctx context.Context, p models.Producto) (models.Producto, error)
	Update(ctx context.Context, slug string, p models.Producto) (models.Producto, error)
	Delete(ctx context.Context, slug string) error
}
