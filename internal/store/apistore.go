package store

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/VicenteFuentes2404/huerto-hogar/internal/models"
)

const rutaProductos = "/api/productos"

// APIStore habla con el servicio remoto de catálogo: una vuelta de red por
// operación. En el cable las imágenes viajan como base64 sin prefijo; este
// adaptador quita y repone el prefijo data URL en la frontera.
type APIStore struct {
	base    string
	cliente *http.Client
}

// NewAPIStore crea el adaptador apuntando a la base del servicio,
// p.ej. http://localhost:8090.
func NewAPIStore(base string) *APIStore {
	return &APIStore{
		base:    strings.TrimRight(base, "/"),
		cliente: &http.Client{Timeout: 10 * time.Second},
	}
}

func (s *APIStore) hacer(ctx context.Context, metodo, ruta string, cuerpo any) (*http.Response, error) {
	var lector io.Reader
	if cuerpo != nil {
		raw, err := json.Marshal(cuerpo)
		if err != nil {
			return nil, errors.Wrap(err, "serializando producto")
		}
		lector = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, metodo, s.base+ruta, lector)
	if err != nil {
		return nil, errors.Wrap(err, "armando petición al catálogo")
	}
	if cuerpo != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := s.cliente.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "catálogo remoto inalcanzable")
	}
	return resp, nil
}

// mapear traduce un estado no-2xx a la taxonomía del paquete.
func mapear(resp *http.Response) error {
	switch resp.StatusCode {
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusConflict:
		return ErrConflict
	case http.StatusBadRequest:
		return ErrRejected
	case http.StatusInsufficientStorage:
		return ErrCapacity
	default:
		return errors.Errorf("respuesta inesperada del catálogo: %s", resp.Status)
	}
}

func decodificarProducto(resp *http.Response) (models.Producto, error) {
	var p models.Producto
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return models.Producto{}, errors.Wrap(err, "respuesta del catálogo malformada")
	}
	conPrefijos(&p)
	return p, nil
}

func (s *APIStore) List(ctx context.Context) ([]models.Producto, error) {
	resp, err := s.hacer(ctx, http.MethodGet, rutaProductos, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, mapear(resp)
	}
	var productos []models.Producto
	if err := json.NewDecoder(resp.Body).Decode(&productos); err != nil {
		return nil, errors.Wrap(err, "respuesta del catálogo malformada")
	}
	for i := range productos {
		conPrefijos(&productos[i])
	}
	return productos, nil
}

func (s *APIStore) Get(ctx context.Context, slug string) (models.Producto, error) {
	resp, err := s.hacer(ctx, http.MethodGet, rutaProductos+"/"+slug, nil)
	if err != nil {
		return models.Producto{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return models.Producto{}, mapear(resp)
	}
	return decodificarProducto(resp)
}

func (s *APIStore) Create(ctx context.Context, p models.Producto) (models.Producto, error) {
	sinPrefijos(&p)
	resp, err := s.hacer(ctx, http.MethodPost, rutaProductos, p)
	if err != nil {
		return models.Producto{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		return models.Producto{}, mapear(resp)
	}
	return decodificarProducto(resp)
}

func (s *APIStore) Update(ctx context.Context, slug string, p models.Producto) (models.Producto, error) {
	sinPrefijos(&p)
	resp, err := s.hacer(ctx, http.MethodPut, rutaProductos+"/"+slug, p)
	if err != nil {
		return models.Producto{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return models.Producto{}, mapear(resp)
	}
	return decodificarProducto(resp)
}

func (s *APIStore) Delete(ctx context.Context, slug string) error {
	resp, err := s.hacer(ctx, http.MethodDelete, rutaProductos+"/"+slug, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		return mapear(resp)
	}
	return nil
}
