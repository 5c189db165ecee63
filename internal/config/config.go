package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

type Config struct {
	Port string

	// StorageDriver elige la persistencia del servicio: "bolt" (archivo
	// local) o "mongo". La estrategia se fija al desplegar, nunca se
	// mezclan en caliente.
	StorageDriver string
	BoltPath      string
	BoltMaxBytes  int
	MongoURI      string
	MongoDB       string

	// APIBase es la base del catálogo remoto para las composiciones que
	// usan el adaptador HTTP en vez de un almacén propio.
	APIBase string

	// SaveRedirect es la pausa entre guardar con éxito y volver al listado.
	SaveRedirect time.Duration
}

func LoadConfig() *Config {
	// Cargar .env solo en desarrollo local; en producción se ignora.
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			zap.S().Warnw("no se pudo cargar .env", "error", err)
		}
	}

	return &Config{
		Port:          getEnv("PORT", "8090"),
		StorageDriver: getEnv("STORAGE_DRIVER", "bolt"),
		BoltPath:      getEnv("BOLT_PATH", "catalogo.db"),
		BoltMaxBytes:  getEnvInt("BOLT_MAX_BYTES", 0),
		MongoURI:      getEnv("MONGO_URI", ""),
		MongoDB:       getEnv("MONGO_DB", "huertoHogar"),
		APIBase:       getEnv("API_BASE", "http://localhost:8090"),
		SaveRedirect:  time.Duration(getEnvInt("SAVE_REDIRECT_MS", 1200)) * time.Millisecond,
	}
}

func getEnv(clave, fallback string) string {
	if valor, ok := os.LookupEnv(clave); ok {
		return valor
	}
	return fallback
}

func getEnvInt(clave string, fallback int) int {
	valor, ok := os.LookupEnv(clave)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(valor)
	if err != nil {
		zap.S().Warnw("variable de entorno no numérica", "clave", clave, "valor", valor)
		return fallback
	}
	return n
}
