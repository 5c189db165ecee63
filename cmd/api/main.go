package main

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/VicenteFuentes2404/huerto-hogar/internal/cache"
	"github.com/VicenteFuentes2404/huerto-hogar/internal/config"
	"github.com/VicenteFuentes2404/huerto-hogar/internal/database"
	"github.com/VicenteFuentes2404/huerto-hogar/internal/routes"
	"github.com/VicenteFuentes2404/huerto-hogar/internal/store"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	zap.ReplaceGlobals(logger)
	defer func() { _ = logger.Sync() }()

	cfg := config.LoadConfig()

	var st store.Store
	switch cfg.StorageDriver {
	case "mongo":
		client, err := database.Connect(cfg.MongoURI)
		if err != nil {
			zap.S().Fatalw("no se pudo conectar a MongoDB", "error", err)
		}
		st = store.NewMongoStore(client.Database(cfg.MongoDB).Collection("productos"))
	default:
		bs, err := store.NewBoltStore(cfg.BoltPath, cfg.BoltMaxBytes)
		if err != nil {
			zap.S().Fatalw("no se pudo abrir el catálogo local", "error", err)
		}
		defer bs.Close()
		st = bs
	}

	c := cache.New(5 * time.Minute)
	defer c.Close()

	router := gin.Default()
	routes.RegisterRoutes(router, st, c)

	zap.S().Infof("🚀 Catálogo escuchando en el puerto %s", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		zap.S().Fatalw("servidor caído", "error", err)
	}
}
