package admin

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/VicenteFuentes2404/huerto-hogar/internal/models"
	"github.com/VicenteFuentes2404/huerto-hogar/internal/store"
)

// ListController maneja el listado de administración: carga completa al
// montar, eliminación con confirmación explícita y recarga desde el backend
// autoritativo después de cada mutación (nunca parcha la copia local).
type ListController struct {
	mu    sync.Mutex
	store store.Store
	conf  Confirmador
	log   *zap.SugaredLogger

	productos []models.Producto
	mensaje   string
	cerrado   bool
}

func NuevoListado(s store.Store, conf Confirmador) *ListController {
	return &ListController{store: s, conf: conf, log: zap.S()}
}

// Cargar recarga el listado completo. Los resultados de una carga emitida
// antes de Cerrar se descartan.
func (l *ListController) Cargar(ctx context.Context) error {
	lista, err := l.store.List(ctx)

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.cerrado {
		return nil
	}
	if err != nil {
		l.mensaje = "Error cargando productos."
		l.log.Errorw("no se pudo cargar el listado", "error", err)
		return err
	}
	l.productos = lista
	l.mensaje = ""
	return nil
}

// Eliminar pide confirmación, borra y recarga. El backend confirma la
// eliminación antes de que el listado la refleje; si el producto no existía
// la recarga muestra el catálogo sin cambios y el error se propaga.
func (l *ListController) Eliminar(ctx context.Context, slugProducto, nombre string) error {
	if !l.conf.Confirmar(fmt.Sprintf("¿Eliminar el producto %q?", nombre)) {
		return nil
	}

	errBorrado := l.store.Delete(ctx, slugProducto)
	if err := l.Cargar(ctx); err != nil {
		return err
	}
	if errBorrado != nil {
		l.mu.Lock()
		l.mensaje = "Error al eliminar el producto."
		l.mu.Unlock()
		l.log.Warnw("no se pudo eliminar el producto", "slug", slugProducto, "error", errBorrado)
		return errBorrado
	}
	return nil
}

// Productos devuelve una copia del listado cargado.
func (l *ListController) Productos() []models.Producto {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]models.Producto(nil), l.productos...)
}

func (l *ListController) Mensaje() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.mensaje
}

// Cerrar desmonta la pantalla; cargas en vuelo descartan su resultado.
func (l *ListController) Cerrar() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cerrado = true
}
