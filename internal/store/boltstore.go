package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	bolt "go.etcd.io/bbolt"
	"go.uber.org/zap"

	"github.com/VicenteFuentes2404/huerto-hogar/internal/imaging"
	"github.com/VicenteFuentes2404/huerto-hogar/internal/models"
)

var (
	bucketCatalogo = []byte("catalogo")
	claveProductos = []byte("productos")
)

// BoltStore guarda el catálogo completo serializado bajo una única clave.
// Cada operación lee el agregado entero, lo muta en memoria y lo reescribe
// completo dentro de una misma transacción, así el ciclo
// leer-modificar-escribir no es interrumpible por otras operaciones.
type BoltStore struct {
	db *bolt.DB
	// maxBytes limita el tamaño del agregado serializado; 0 desactiva el
	// límite. Al excederlo la escritura falla con ErrCapacity sin tocar el
	// valor previo.
	maxBytes int
}

// NewBoltStore abre (o crea) el archivo del catálogo local.
func NewBoltStore(ruta string, maxBytes int) (*BoltStore, error) {
	db, err := bolt.Open(ruta, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, errors.Wrap(err, "abriendo catálogo local")
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketCatalogo)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "preparando catálogo local")
	}
	return &BoltStore{db: db, maxBytes: maxBytes}, nil
}

// Close cierra el archivo subyacente.
func (s *BoltStore) Close() error { return s.db.Close() }

// leer decodifica el agregado. Contenido ilegible degrada a catálogo vacío
// en vez de tumbar la aplicación.
func leer(tx *bolt.Tx) []models.Producto {
	raw := tx.Bucket(bucketCatalogo).Get(claveProductos)
	if len(raw) == 0 {
		return []models.Producto{}
	}
	var productos []models.Producto
	if err := json.Unmarshal(raw, &productos); err != nil {
		zap.S().Warnw("catálogo local ilegible, se parte de cero", "error", err)
		return []models.Producto{}
	}
	return productos
}

func (s *BoltStore) escribir(tx *bolt.Tx, productos []models.Producto) error {
	raw, err := json.Marshal(productos)
	if err != nil {
		return errors.Wrap(err, "serializando catálogo")
	}
	if s.maxBytes > 0 && len(raw) > s.maxBytes {
		return ErrCapacity
	}
	return tx.Bucket(bucketCatalogo).Put(claveProductos, raw)
}

func (s *BoltStore) List(ctx context.Context) ([]models.Producto, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var productos []models.Producto
	err := s.db.View(func(tx *bolt.Tx) error {
		productos = leer(tx)
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "leyendo catálogo local")
	}
	for i := range productos {
		conPrefijos(&productos[i])
	}
	return productos, nil
}

func (s *BoltStore) Get(ctx context.Context, slug string) (models.Producto, error) {
	if err := ctx.Err(); err != nil {
		return models.Producto{}, err
	}
	var encontrado *models.Producto
	err := s.db.View(func(tx *bolt.Tx) error {
		for _, p := range leer(tx) {
			if p.Slug == slug {
				copia := p
				encontrado = &copia
				return nil
			}
		}
		return nil
	})
	if err != nil {
		return models.Producto{}, errors.Wrap(err, "leyendo catálogo local")
	}
	if encontrado == nil {
		return models.Producto{}, ErrNotFound
	}
	conPrefijos(encontrado)
	return *encontrado, nil
}

func (s *BoltStore) Create(ctx context.Context, p models.Producto) (models.Producto, error) {
	if err := ctx.Err(); err != nil {
		return models.Producto{}, err
	}
	sinPrefijos(&p)
	ahora := time.Now()
	p.CreadoEn = ahora
	p.ActualizadoEn = ahora
	err := s.db.Update(func(tx *bolt.Tx) error {
		productos := leer(tx)
		for _, existente := range productos {
			if existente.Slug == p.Slug {
				return ErrConflict
			}
		}
		return s.escribir(tx, append(productos, p))
	})
	if err != nil {
		return models.Producto{}, err
	}
	conPrefijos(&p)
	return p, nil
}

func (s *BoltStore) Update(ctx context.Context, slug string, p models.Producto) (models.Producto, error) {
	if err := ctx.Err(); err != nil {
		return models.Producto{}, err
	}
	if p.Slug != "" && p.Slug != slug {
		// El slug es inmutable después de la creación.
		return models.Producto{}, ErrConflict
	}
	sinPrefijos(&p)
	p.Slug = slug
	err := s.db.Update(func(tx *bolt.Tx) error {
		productos := leer(tx)
		for i, existente := range productos {
			if existente.Slug == slug {
				p.CreadoEn = existente.CreadoEn
				p.ActualizadoEn = time.Now()
				productos[i] = p
				return s.escribir(tx, productos)
			}
		}
		return ErrNotFound
	})
	if err != nil {
		return models.Producto{}, err
	}
	conPrefijos(&p)
	return p, nil
}

func (s *BoltStore) Delete(ctx context.Context, slug string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		productos := leer(tx)
		for i, existente := range productos {
			if existente.Slug == slug {
				return s.escribir(tx, append(productos[:i], productos[i+1:]...))
			}
		}
		return ErrNotFound
	})
}

// sinPrefijos deja las imágenes en el base64 crudo que se persiste.
func sinPrefijos(p *models.Producto) {
	p.Imagen = imaging.StripPrefix(p.Imagen)
	p.Imagenes = imaging.StripAll(p.Imagenes)
}

// conPrefijos repone el prefijo data URL para la capa de entidad.
func conPrefijos(p *models.Producto) {
	p.Imagen = imaging.AddPrefix(p.Imagen, "")
	p.Imagenes = imaging.AddAll(p.Imagenes, "")
}
