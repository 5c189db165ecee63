package store_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/VicenteFuentes2404/huerto-hogar/internal/cache"
	"github.com/VicenteFuentes2404/huerto-hogar/internal/imaging"
	"github.com/VicenteFuentes2404/huerto-hogar/internal/models"
	"github.com/VicenteFuentes2404/huerto-hogar/internal/routes"
	"github.com/VicenteFuentes2404/huerto-hogar/internal/store"
)

// servidorCatalogo levanta el servicio real sobre un almacén bolt temporal,
// de modo que el adaptador HTTP se pruebe contra el mismo contrato que
// cumplen los demás backends.
func servidorCatalogo(t *testing.T) (*store.APIStore, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	bs, err := store.NewBoltStore(filepath.Join(t.TempDir(), "catalogo.db"), 0)
	if err != nil {
		t.Fatalf("abriendo bolt: %v", err)
	}
	t.Cleanup(func() { _ = bs.Close() })

	c := cache.New(time.Minute)
	t.Cleanup(c.Close)

	router := gin.New()
	routes.RegisterRoutes(router, bs, c)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return store.NewAPIStore(srv.URL), srv.URL
}

func productoRemoto(slug string) models.Producto {
	p := models.NewProducto()
	p.Slug = slug
	p.Nombre = "Palta Hass"
	p.Precio = 4990
	p.Categoria = models.CategoriaFruta
	p.Imagen = "data:image/jpeg;base64,cGFsdGE="
	p.Imagenes = []string{"data:image/jpeg;base64,dW5v"}
	return p
}

func TestAPIStoreRoundTrip(t *testing.T) {
	s, _ := servidorCatalogo(t)
	ctx := context.Background()

	creado, err := s.Create(ctx, productoRemoto("palta-hass"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if creado.Slug != "palta-hass" || creado.Precio != 4990 {
		t.Fatalf("creado inesperado: %+v", creado)
	}

	leido, err := s.Get(ctx, "palta-hass")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if leido.Nombre != "Palta Hass" || !leido.Disponible {
		t.Fatalf("round trip alteró campos: %+v", leido)
	}
	if !imaging.HasPrefix(leido.Imagen) || imaging.StripPrefix(leido.Imagen) != "cGFsdGE=" {
		t.Fatalf("el adaptador debe reponer el prefijo: %q", leido.Imagen)
	}

	lista, err := s.List(ctx)
	if err != nil || len(lista) != 1 {
		t.Fatalf("list: %v %v", err, lista)
	}
}

func TestAPIStoreImagenesSinPrefijoEnElCable(t *testing.T) {
	s, base := servidorCatalogo(t)
	ctx := context.Background()

	if _, err := s.Create(ctx, productoRemoto("palta-hass")); err != nil {
		t.Fatalf("create: %v", err)
	}

	// Mirar el cable directo: el JSON del servicio lleva base64 crudo.
	resp, err := http.Get(base + "/api/productos")
	if err != nil {
		t.Fatalf("get directo: %v", err)
	}
	defer resp.Body.Close()
	cuerpo, _ := io.ReadAll(resp.Body)
	if strings.Contains(string(cuerpo), "data:image") {
		t.Fatalf("el cable no debe llevar prefijos data URL: %s", cuerpo)
	}
	if !strings.Contains(string(cuerpo), "cGFsdGE=") {
		t.Fatalf("falta el payload crudo en el cable: %s", cuerpo)
	}
}

func TestAPIStoreTaxonomia(t *testing.T) {
	s, _ := servidorCatalogo(t)
	ctx := context.Background()

	if _, err := s.Get(ctx, "fantasma"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("get: esperaba ErrNotFound, obtuve %v", err)
	}
	if err := s.Delete(ctx, "fantasma"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("delete: esperaba ErrNotFound, obtuve %v", err)
	}

	if _, err := s.Create(ctx, productoRemoto("palta-hass")); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := s.Create(ctx, productoRemoto("palta-hass")); !errors.Is(err, store.ErrConflict) {
		t.Fatalf("esperaba ErrConflict, obtuve %v", err)
	}

	invalido := productoRemoto("sin-nombre")
	invalido.Nombre = ""
	if _, err := s.Create(ctx, invalido); !errors.Is(err, store.ErrRejected) {
		t.Fatalf("esperaba ErrRejected del backend, obtuve %v", err)
	}
}

func TestAPIStoreActualizarYEliminar(t *testing.T) {
	s, _ := servidorCatalogo(t)
	ctx := context.Background()

	if _, err := s.Create(ctx, productoRemoto("palta-hass")); err != nil {
		t.Fatalf("create: %v", err)
	}

	cambio := productoRemoto("palta-hass")
	cambio.Precio = 5490
	actualizado, err := s.Update(ctx, "palta-hass", cambio)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if actualizado.Precio != 5490 {
		t.Fatalf("precio sin actualizar: %+v", actualizado)
	}

	if _, err := s.Update(ctx, "fantasma", productoRemoto("fantasma")); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("update fantasma: esperaba ErrNotFound, obtuve %v", err)
	}

	if err := s.Delete(ctx, "palta-hass"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	lista, err := s.List(ctx)
	if err != nil || len(lista) != 0 {
		t.Fatalf("el catálogo debía quedar vacío: %v %v", err, lista)
	}
}
