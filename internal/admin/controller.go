// Package admin orquesta las pantallas de administración del catálogo:
// formularios de crear/editar y el listado con eliminación confirmada.
// No conoce la interfaz concreta; navega y confirma a través de puertos
// inyectados, lo que lo deja testeable sin navegador.
package admin

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/VicenteFuentes2404/huerto-hogar/internal/models"
	"github.com/VicenteFuentes2404/huerto-hogar/internal/slug"
	"github.com/VicenteFuentes2404/huerto-hogar/internal/store"
)

// RutaListado es la pantalla a la que se vuelve después de guardar.
const RutaListado = "/admin/productos"

// Navegador lo implementa la capa de interfaz para cambiar de pantalla.
type Navegador interface {
	Navegar(ruta string)
}

// Confirmador pide al usuario una confirmación sí/no antes de una acción
// destructiva. Reemplaza a los diálogos ambientales del navegador.
type Confirmador interface {
	Confirmar(mensaje string) bool
}

// Estado de un formulario de administración.
type Estado int

const (
	// EstadoCargando: edición recién montada, esperando el producto.
	EstadoCargando Estado = iota
	// EstadoEditando: borrador mutable.
	EstadoEditando
	// EstadoGuardando: validación superada, persistencia en vuelo.
	EstadoGuardando
	// EstadoGuardado: éxito confirmado; navegación al listado pendiente.
	EstadoGuardado
	// EstadoErrorCarga: no se pudo cargar el producto. Terminal.
	EstadoErrorCarga
)

// FormController maneja el ciclo de vida de un formulario de producto:
// carga, cambios de campo, validación, guardado y navegación posterior.
type FormController struct {
	mu      sync.Mutex
	store   store.Store
	nav     Navegador
	retardo time.Duration
	log     *zap.SugaredLogger

	estado       Estado
	borrador     models.Borrador
	slugOriginal string
	slugManual   bool
	sucio        bool
	errores      map[string]string
	mensaje      string
	conocidos    []string
	temporizador *time.Timer
	cerrado      bool
	alMontar     func()
}

// NuevoFormularioCrear arma el formulario de alta con un borrador vacío.
func NuevoFormularioCrear(s store.Store, nav Navegador, retardo time.Duration) *FormController {
	return &FormController{
		store:    s,
		nav:      nav,
		retardo:  retardo,
		log:      zap.S(),
		estado:   EstadoEditando,
		borrador: models.NewBorrador(),
		errores:  map[string]string{},
	}
}

// NuevoFormularioEditar arma el formulario de edición; queda en
// EstadoCargando hasta que Cargar traiga el producto.
func NuevoFormularioEditar(s store.Store, nav Navegador, retardo time.Duration, slugProducto string) *FormController {
	f := NuevoFormularioCrear(s, nav, retardo)
	f.estado = EstadoCargando
	f.slugOriginal = slugProducto
	return f
}

// ConAlMontar registra un hook que corre cuando el formulario queda listo
// para editar (la interfaz lo usa para enfocar el campo nombre).
func (f *FormController) ConAlMontar(fn func()) *FormController {
	f.alMontar = fn
	return f
}

// Cargar trae la instantánea del catálogo (pre-verificación de slugs) y, en
// edición, el producto a editar. Si la pantalla ya fue cerrada el resultado
// se descarta en vez de aplicarse sobre estado viejo.
func (f *FormController) Cargar(ctx context.Context) error {
	lista, errLista := f.store.List(ctx)

	esEdicion := f.slugOriginal != ""
	var producto models.Producto
	var errGet error
	if esEdicion {
		producto, errGet = f.store.Get(ctx, f.slugOriginal)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.cerrado {
		return nil
	}

	if errLista == nil {
		f.conocidos = slugsDe(lista)
	} else {
		// La instantánea es solo una pre-verificación rápida; sin ella el
		// conflicto igual lo detecta el backend al guardar.
		f.log.Warnw("no se pudo cargar la instantánea del catálogo", "error", errLista)
	}

	if esEdicion {
		if errGet != nil {
			f.estado = EstadoErrorCarga
			f.log.Errorw("no se pudo cargar el producto", "slug", f.slugOriginal, "error", errGet)
			return errGet
		}
		f.borrador = models.BorradorDe(producto)
		f.estado = EstadoEditando
	}

	if f.alMontar != nil {
		f.alMontar()
	}
	return nil
}

// CargarDesde cubre el caso degenerado en que el llamador ya trae el
// producto (p.ej. pasado por estado de navegación): la carga queda
// pre-satisfecha sin ir al backend.
func (f *FormController) CargarDesde(p models.Producto) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.cerrado {
		return
	}
	f.slugOriginal = p.Slug
	f.borrador = models.BorradorDe(p)
	f.estado = EstadoEditando
	if f.alMontar != nil {
		f.alMontar()
	}
}

func slugsDe(productos []models.Producto) []string {
	slugs := make([]string, len(productos))
	for i, p := range productos {
		slugs[i] = p.Slug
	}
	return slugs
}

// FijarNombre cambia el nombre y, mientras el usuario no haya tocado el
// campo slug, re-deriva el identificador.
func (f *FormController) FijarNombre(v string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.borrador.Nombre = v
	if !f.slugManual && !f.borrador.EsEdicion {
		f.borrador.Slug = slug.Slugify(v)
	}
	f.sucio = true
}

// FijarSlug es la edición manual del identificador. Tocarlo una vez corta la
// derivación automática por el resto de la sesión. En edición el slug es
// inmutable y la llamada se ignora.
func (f *FormController) FijarSlug(v string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.borrador.EsEdicion {
		return
	}
	f.slugManual = true
	f.borrador.Slug = v
	f.sucio = true
}

func (f *FormController) FijarPrecio(v string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.borrador.Precio = v
	f.sucio = true
}

func (f *FormController) FijarDescripcion(v string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.borrador.Descripcion = v
	f.sucio = true
}

func (f *FormController) FijarCategoria(v string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.borrador.Categoria = v
	f.sucio = true
}

func (f *FormController) FijarDisponible(v bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.borrador.Disponible = v
	f.sucio = true
}

// FijarImagenPrincipal reemplaza la imagen principal por una data URL recién
// ingerida.
func (f *FormController) FijarImagenPrincipal(dataURL string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.borrador.Imagen = dataURL
	f.sucio = true
}

// AgregarImagenes suma imágenes al final de la galería conservando el orden
// de selección. Se permiten duplicados.
func (f *FormController) AgregarImagenes(dataURLs []string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.borrador.Imagenes = append(f.borrador.Imagenes, dataURLs...)
	f.sucio = true
}

// Guardar valida el borrador y, si pasa, lo persiste. Ante errores de campo
// no se llama al backend. Ninguna falla descarta el borrador: el único
// camino que lo da por terminado es el éxito.
func (f *FormController) Guardar(ctx context.Context) error {
	f.mu.Lock()
	if f.cerrado || f.estado == EstadoCargando || f.estado == EstadoErrorCarga || f.estado == EstadoGuardando {
		f.mu.Unlock()
		return nil
	}
	borrador := f.borrador
	f.errores = models.Validar(borrador, f.conocidos)
	if len(f.errores) > 0 {
		f.estado = EstadoEditando
		f.mu.Unlock()
		return nil
	}
	f.estado = EstadoGuardando
	slugOriginal := f.slugOriginal
	f.mu.Unlock()

	producto := borrador.AProducto()
	var err error
	if borrador.EsEdicion {
		_, err = f.store.Update(ctx, slugOriginal, producto)
	} else {
		_, err = f.store.Create(ctx, producto)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.cerrado {
		return nil
	}

	if err != nil {
		// El borrador queda intacto para reintentar sin reescribir nada.
		f.estado = EstadoEditando
		switch {
		case errors.Is(err, store.ErrConflict):
			f.errores[models.CampoSlug] = "Ya existe un producto con ese identificador."
		case errors.Is(err, store.ErrCapacity):
			f.mensaje = "El almacenamiento local está lleno. Libera espacio e intenta de nuevo."
		case errors.Is(err, store.ErrRejected):
			f.mensaje = "El servidor rechazó el producto."
		default:
			f.mensaje = "Error al guardar el producto."
		}
		f.log.Warnw("no se pudo guardar el producto", "slug", producto.Slug, "error", err)
		return err
	}

	f.estado = EstadoGuardado
	f.sucio = false
	f.mensaje = "Producto guardado correctamente."
	f.temporizador = time.AfterFunc(f.retardo, f.irAlListado)
	return nil
}

func (f *FormController) irAlListado() {
	f.mu.Lock()
	if f.cerrado {
		f.mu.Unlock()
		return
	}
	nav := f.nav
	f.mu.Unlock()
	nav.Navegar(RutaListado)
}

// Cerrar desmonta el formulario: cancela la navegación pendiente y hace que
// cualquier carga o guardado en vuelo descarte su resultado.
func (f *FormController) Cerrar() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cerrado = true
	if f.temporizador != nil {
		f.temporizador.Stop()
	}
}

// DebeAdvertirSalida indica si hay cambios sin guardar que ameritan
// interceptar la salida de la pantalla. Se desarma al llegar a Guardado.
func (f *FormController) DebeAdvertirSalida() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sucio && f.estado != EstadoGuardado
}

// DescartarMensaje limpia el aviso transitorio.
func (f *FormController) DescartarMensaje() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.mensaje = ""
}

func (f *FormController) Estado() Estado {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.estado
}

func (f *FormController) Sucio() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sucio
}

func (f *FormController) Mensaje() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.mensaje
}

// Errores devuelve una copia de los errores de campo de la última validación.
func (f *FormController) Errores() map[string]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	copia := make(map[string]string, len(f.errores))
	for k, v := range f.errores {
		copia[k] = v
	}
	return copia
}

// Borrador devuelve la copia de trabajo actual.
func (f *FormController) Borrador() models.Borrador {
	f.mu.Lock()
	defer f.mu.Unlock()
	b := f.borrador
	b.Imagenes = append([]string(nil), f.borrador.Imagenes...)
	return b
}
