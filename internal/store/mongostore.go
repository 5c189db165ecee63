package store

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/VicenteFuentes2404/huerto-hogar/internal/models"
)

const (
	tiempoEscritura = 5 * time.Second
	tiempoLectura   = 3 * time.Second
	tiempoListado   = 10 * time.Second
)

// MongoStore persiste el catálogo en una colección de MongoDB usando el slug
// como _id, de modo que el índice primario hace cumplir la unicidad.
type MongoStore struct {
	collection *mongo.Collection
}

func NewMongoStore(collection *mongo.Collection) *MongoStore {
	return &MongoStore{collection: collection}
}

func (s *MongoStore) List(ctx context.Context) ([]models.Producto, error) {
	ctx, cancel := context.WithTimeout(ctx, tiempoListado)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "creado_en", Value: 1}})
	cursor, err := s.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, errors.Wrap(err, "listando productos")
	}
	defer cursor.Close(ctx)

	productos := make([]models.Producto, 0)
	if err = cursor.All(ctx, &productos); err != nil {
		return nil, errors.Wrap(err, "decodificando productos")
	}
	for i := range productos {
		conPrefijos(&productos[i])
	}
	return productos, nil
}

func (s *MongoStore) Get(ctx context.Context, slug string) (models.Producto, error) {
	ctx, cancel := context.WithTimeout(ctx, tiempoLectura)
	defer cancel()

	var p models.Producto
	err := s.collection.FindOne(ctx, bson.M{"_id": slug}).Decode(&p)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return models.Producto{}, ErrNotFound
		}
		return models.Producto{}, errors.Wrap(err, "buscando producto")
	}
	conPrefijos(&p)
	return p, nil
}

func (s *MongoStore) Create(ctx context.Context, p models.Producto) (models.Producto, error) {
	ctx, cancel := context.WithTimeout(ctx, tiempoEscritura)
	defer cancel()

	sinPrefijos(&p)
	ahora := time.Now()
	p.CreadoEn = ahora
	p.ActualizadoEn = ahora

	if _, err := s.collection.InsertOne(ctx, p); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return models.Producto{}, ErrConflict
		}
		return models.Producto{}, errors.Wrap(err, "insertando producto")
	}
	conPrefijos(&p)
	return p, nil
}

func (s *MongoStore) Update(ctx context.Context, slug string, p models.Producto) (models.Producto, error) {
	ctx, cancel := context.WithTimeout(ctx, tiempoEscritura)
	defer cancel()

	if p.Slug != "" && p.Slug != slug {
		// El slug es inmutable después de la creación.
		return models.Producto{}, ErrConflict
	}
	// Sobrescritura del registro completo, nunca parche parcial.
	var previo models.Producto
	if err := s.collection.FindOne(ctx, bson.M{"_id": slug}).Decode(&previo); err != nil {
		if err == mongo.ErrNoDocuments {
			return models.Producto{}, ErrNotFound
		}
		return models.Producto{}, errors.Wrap(err, "buscando producto")
	}

	sinPrefijos(&p)
	p.Slug = slug
	p.CreadoEn = previo.CreadoEn
	p.ActualizadoEn = time.Now()

	result, err := s.collection.ReplaceOne(ctx, bson.M{"_id": slug}, p)
	if err != nil {
		return models.Producto{}, errors.Wrap(err, "actualizando producto")
	}
	if result.MatchedCount == 0 {
		return models.Producto{}, ErrNotFound
	}
	conPrefijos(&p)
	return p, nil
}

func (s *MongoStore) Delete(ctx context.Context, slug string) error {
	ctx, cancel := context.WithTimeout(ctx, tiempoEscritura)
	defer cancel()

	result, err := s.collection.DeleteOne(ctx, bson.M{"_id": slug})
	if err != nil {
		return errors.Wrap(err, "eliminando producto")
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
