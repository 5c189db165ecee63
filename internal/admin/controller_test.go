package admin_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/VicenteFuentes2404/huerto-hogar/internal/admin"
	"github.com/VicenteFuentes2404/huerto-hogar/internal/models"
	"github.com/VicenteFuentes2404/huerto-hogar/internal/store"
)

// memStore es un backend en memoria que cumple el contrato de store.Store,
// con fallas inyectables para ejercitar los caminos de error.
type memStore struct {
	mu        sync.Mutex
	productos []models.Producto

	errCrear      error
	errActualizar error
}

func (m *memStore) List(ctx context.Context) ([]models.Producto, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.Producto(nil), m.productos...), nil
}

func (m *memStore) Get(ctx context.Context, slug string) (models.Producto, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.productos {
		if p.Slug == slug {
			return p, nil
		}
	}
	return models.Producto{}, store.ErrNotFound
}

func (m *memStore) Create(ctx context.Context, p models.Producto) (models.Producto, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.errCrear != nil {
		return models.Producto{}, m.errCrear
	}
	for _, existente := range m.productos {
		if existente.Slug == p.Slug {
			return models.Producto{}, store.ErrConflict
		}
	}
	m.productos = append(m.productos, p)
	return p, nil
}

func (m *memStore) Update(ctx context.Context, slug string, p models.Producto) (models.Producto, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.errActualizar != nil {
		return models.Producto{}, m.errActualizar
	}
	for i, existente := range m.productos {
		if existente.Slug == slug {
			p.Slug = slug
			m.productos[i] = p
			return p, nil
		}
	}
	return models.Producto{}, store.ErrNotFound
}

func (m *memStore) Delete(ctx context.Context, slug string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, existente := range m.productos {
		if existente.Slug == slug {
			m.productos = append(m.productos[:i], m.productos[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}

type navEspia struct {
	mu    sync.Mutex
	rutas []string
}

func (n *navEspia) Navegar(ruta string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.rutas = append(n.rutas, ruta)
}

func (n *navEspia) visitadas() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.rutas...)
}

type confirmaFijo bool

func (c confirmaFijo) Confirmar(string) bool { return bool(c) }

func llenarFormulario(f *admin.FormController) {
	f.FijarNombre("Pimientos Tricolores")
	f.FijarPrecio("1500")
	f.FijarCategoria(models.CategoriaVerdura)
	f.FijarImagenPrincipal("data:image/png;base64,cGl4ZWxlcw==")
}

func TestCrearProductoCompleto(t *testing.T) {
	st := &memStore{}
	nav := &navEspia{}
	f := admin.NuevoFormularioCrear(st, nav, 10*time.Millisecond)
	if err := f.Cargar(context.Background()); err != nil {
		t.Fatalf("cargar: %v", err)
	}

	llenarFormulario(f)
	if f.Borrador().Slug != "pimientos-tricolores" {
		t.Fatalf("el slug debe derivarse del nombre: %q", f.Borrador().Slug)
	}
	if !f.Sucio() {
		t.Fatalf("los cambios deben marcar el borrador sucio")
	}

	if err := f.Guardar(context.Background()); err != nil {
		t.Fatalf("guardar: %v", err)
	}
	if f.Estado() != admin.EstadoGuardado {
		t.Fatalf("estado %v, esperaba Guardado", f.Estado())
	}
	if f.Sucio() || f.DebeAdvertirSalida() {
		t.Fatalf("el éxito limpia el sucio y desarma la guardia de salida")
	}

	guardado, err := st.Get(context.Background(), "pimientos-tricolores")
	if err != nil {
		t.Fatalf("el producto debía persistirse: %v", err)
	}
	if guardado.Precio != 1500 || !guardado.Disponible {
		t.Fatalf("coerción/default incorrecto: %+v", guardado)
	}

	// La navegación al listado llega después del retardo.
	time.Sleep(50 * time.Millisecond)
	if rutas := nav.visitadas(); len(rutas) != 1 || rutas[0] != admin.RutaListado {
		t.Fatalf("esperaba navegación al listado, obtuve %v", rutas)
	}
}

func TestLatchDeSlugManual(t *testing.T) {
	f := admin.NuevoFormularioCrear(&memStore{}, &navEspia{}, time.Millisecond)

	f.FijarNombre("Pimientos")
	f.FijarSlug("mi-slug-propio")
	// Una vez tocado el slug, el nombre deja de re-derivarlo por el resto
	// de la sesión.
	f.FijarNombre("Otro Nombre Totalmente Distinto")
	if got := f.Borrador().Slug; got != "mi-slug-propio" {
		t.Fatalf("el latch manual no se respetó: %q", got)
	}
}

func TestValidacionNoLlamaAlBackend(t *testing.T) {
	st := &memStore{}
	f := admin.NuevoFormularioCrear(st, &navEspia{}, time.Millisecond)

	f.FijarNombre("   ")
	f.FijarPrecio("-5")
	if err := f.Guardar(context.Background()); err != nil {
		t.Fatalf("la falla de validación no es un error operacional: %v", err)
	}
	if f.Estado() != admin.EstadoEditando {
		t.Fatalf("debe volver a Editando con los errores adjuntos")
	}
	errores := f.Errores()
	for _, campo := range []string{models.CampoNombre, models.CampoPrecio, models.CampoCategoria, models.CampoImagen} {
		if errores[campo] == "" {
			t.Fatalf("falta el error de %q: %v", campo, errores)
		}
	}
	if lista, _ := st.List(context.Background()); len(lista) != 0 {
		t.Fatalf("con errores de campo no se persiste nada")
	}
}

func TestConflictoPreVerificadoContraInstantanea(t *testing.T) {
	st := &memStore{}
	existente := models.NewProducto()
	existente.Slug = "pimientos-tricolores"
	existente.Nombre = "Pimientos Tricolores"
	existente.Categoria = models.CategoriaVerdura
	existente.Imagen = "eA=="
	st.productos = append(st.productos, existente)

	f := admin.NuevoFormularioCrear(st, &navEspia{}, time.Millisecond)
	if err := f.Cargar(context.Background()); err != nil {
		t.Fatalf("cargar: %v", err)
	}

	llenarFormulario(f)
	if err := f.Guardar(context.Background()); err != nil {
		t.Fatalf("la pre-verificación no es error operacional: %v", err)
	}
	if f.Errores()[models.CampoSlug] == "" {
		t.Fatalf("esperaba el conflicto de slug como error de campo")
	}
}

func TestErrorDeGuardadoPreservaElBorrador(t *testing.T) {
	st := &memStore{errCrear: errors.New("red caída")}
	f := admin.NuevoFormularioCrear(st, &navEspia{}, time.Millisecond)

	llenarFormulario(f)
	if err := f.Guardar(context.Background()); err == nil {
		t.Fatalf("esperaba la falla de transporte")
	}
	if f.Estado() != admin.EstadoEditando {
		t.Fatalf("tras fallar debe quedar en Editando para reintentar")
	}
	if f.Mensaje() == "" {
		t.Fatalf("la falla se muestra como aviso descartable")
	}
	if b := f.Borrador(); b.Nombre != "Pimientos Tricolores" || b.Precio != "1500" {
		t.Fatalf("ninguna falla puede destruir el borrador: %+v", b)
	}

	// Reintento del usuario sin reescribir nada.
	st.mu.Lock()
	st.errCrear = nil
	st.mu.Unlock()
	if err := f.Guardar(context.Background()); err != nil {
		t.Fatalf("reintento: %v", err)
	}
	if f.Estado() != admin.EstadoGuardado {
		t.Fatalf("el reintento debía triunfar")
	}
}

func TestCapacidadConMensajePropio(t *testing.T) {
	st := &memStore{errCrear: store.ErrCapacity}
	f := admin.NuevoFormularioCrear(st, &navEspia{}, time.Millisecond)

	llenarFormulario(f)
	if err := f.Guardar(context.Background()); !errors.Is(err, store.ErrCapacity) {
		t.Fatalf("esperaba ErrCapacity, obtuve %v", err)
	}
	if f.Mensaje() == "Error al guardar el producto." || f.Mensaje() == "" {
		t.Fatalf("la capacidad agotada lleva mensaje propio, obtuve %q", f.Mensaje())
	}
}

func TestCerrarCancelaLaNavegacion(t *testing.T) {
	nav := &navEspia{}
	f := admin.NuevoFormularioCrear(&memStore{}, nav, 30*time.Millisecond)

	llenarFormulario(f)
	if err := f.Guardar(context.Background()); err != nil {
		t.Fatalf("guardar: %v", err)
	}
	// La pantalla se desmonta antes de que venza el retardo.
	f.Cerrar()

	time.Sleep(80 * time.Millisecond)
	if rutas := nav.visitadas(); len(rutas) != 0 {
		t.Fatalf("la navegación debía cancelarse: %v", rutas)
	}
}

func TestCargarEdicion(t *testing.T) {
	st := &memStore{}
	existente := models.NewProducto()
	existente.Slug = "manzana-fuji"
	existente.Nombre = "Manzana Fuji"
	existente.Precio = 990
	existente.Categoria = models.CategoriaFruta
	existente.Imagen = "data:image/jpeg;base64,eA=="
	st.productos = append(st.productos, existente)

	f := admin.NuevoFormularioEditar(st, &navEspia{}, time.Millisecond, "manzana-fuji")
	if f.Estado() != admin.EstadoCargando {
		t.Fatalf("la edición arranca cargando")
	}
	if err := f.Cargar(context.Background()); err != nil {
		t.Fatalf("cargar: %v", err)
	}
	if f.Estado() != admin.EstadoEditando {
		t.Fatalf("estado %v tras la carga", f.Estado())
	}
	b := f.Borrador()
	if b.Nombre != "Manzana Fuji" || b.Precio != "990" || !b.EsEdicion {
		t.Fatalf("borrador de edición incompleto: %+v", b)
	}

	// El slug es inmutable en edición.
	f.FijarSlug("otro")
	if f.Borrador().Slug != "manzana-fuji" {
		t.Fatalf("el slug de un producto existente no se toca")
	}
}

func TestCargarEdicionInexistente(t *testing.T) {
	f := admin.NuevoFormularioEditar(&memStore{}, &navEspia{}, time.Millisecond, "fantasma")
	if err := f.Cargar(context.Background()); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("esperaba ErrNotFound, obtuve %v", err)
	}
	if f.Estado() != admin.EstadoErrorCarga {
		t.Fatalf("la carga fallida es terminal: %v", f.Estado())
	}
}

func TestCargaTardiaSeDescarta(t *testing.T) {
	st := &memStore{}
	existente := models.NewProducto()
	existente.Slug = "manzana-fuji"
	existente.Nombre = "Manzana Fuji"
	st.productos = append(st.productos, existente)

	f := admin.NuevoFormularioEditar(st, &navEspia{}, time.Millisecond, "manzana-fuji")
	f.Cerrar()
	if err := f.Cargar(context.Background()); err != nil {
		t.Fatalf("cargar tras cerrar: %v", err)
	}
	// El resultado de la carga no se aplica sobre una pantalla desmontada.
	if f.Estado() != admin.EstadoCargando {
		t.Fatalf("el resultado debía descartarse: %v", f.Estado())
	}
}

func TestCargarDesdeNavegacion(t *testing.T) {
	p := models.NewProducto()
	p.Slug = "manzana-fuji"
	p.Nombre = "Manzana Fuji"
	p.Precio = 990

	f := admin.NuevoFormularioEditar(&memStore{}, &navEspia{}, time.Millisecond, "manzana-fuji")
	f.CargarDesde(p)
	if f.Estado() != admin.EstadoEditando {
		t.Fatalf("la carga pre-satisfecha deja el formulario editable")
	}
	if f.Borrador().Precio != "990" {
		t.Fatalf("borrador incompleto: %+v", f.Borrador())
	}
}

func TestListadoEliminaConConfirmacion(t *testing.T) {
	st := &memStore{}
	for _, slug := range []string{"uno", "dos"} {
		p := models.NewProducto()
		p.Slug = slug
		p.Nombre = slug
		st.productos = append(st.productos, p)
	}

	l := admin.NuevoListado(st, confirmaFijo(true))
	if err := l.Cargar(context.Background()); err != nil {
		t.Fatalf("cargar: %v", err)
	}
	if len(l.Productos()) != 2 {
		t.Fatalf("listado inicial: %v", l.Productos())
	}

	if err := l.Eliminar(context.Background(), "uno", "uno"); err != nil {
		t.Fatalf("eliminar: %v", err)
	}
	// Tras la mutación el listado se recarga del backend, no se parcha.
	if productos := l.Productos(); len(productos) != 1 || productos[0].Slug != "dos" {
		t.Fatalf("listado tras eliminar: %v", productos)
	}
}

func TestListadoRespetaElRechazo(t *testing.T) {
	st := &memStore{}
	p := models.NewProducto()
	p.Slug = "uno"
	st.productos = append(st.productos, p)

	l := admin.NuevoListado(st, confirmaFijo(false))
	if err := l.Cargar(context.Background()); err != nil {
		t.Fatalf("cargar: %v", err)
	}
	if err := l.Eliminar(context.Background(), "uno", "uno"); err != nil {
		t.Fatalf("eliminar rechazado: %v", err)
	}
	if len(l.Productos()) != 1 {
		t.Fatalf("sin confirmación no se borra nada")
	}
}

func TestListadoEliminarInexistente(t *testing.T) {
	st := &memStore{}
	p := models.NewProducto()
	p.Slug = "uno"
	st.productos = append(st.productos, p)

	l := admin.NuevoListado(st, confirmaFijo(true))
	if err := l.Cargar(context.Background()); err != nil {
		t.Fatalf("cargar: %v", err)
	}

	err := l.Eliminar(context.Background(), "fantasma", "Fantasma")
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("esperaba ErrNotFound, obtuve %v", err)
	}
	// La recarga posterior muestra el catálogo sin cambios.
	if productos := l.Productos(); len(productos) != 1 || productos[0].Slug != "uno" {
		t.Fatalf("el catálogo debía quedar igual: %v", productos)
	}
}
