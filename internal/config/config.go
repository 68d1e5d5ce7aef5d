package config

import (
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/sirupsen/logrus"
)

// Config holds all runtime settings, populated from the environment.
type Config struct {
	Port          string        `envconfig:"PORT" default:"8080"`
	MongoURI      string        `envconfig:"MONGO_URI" default:"mongodb://localhost:27017"`
	MongoDB       string        `envconfig:"MONGO_DB" default:"chatconnect"`
	JWTSecret     string        `envconfig:"JWT_SECRET" required:"true"`
	TokenExpiry   time.Duration `envconfig:"TOKEN_EXPIRY" default:"24h"`
	AllowedOrigin string        `envconfig:"ALLOWED_ORIGIN" default:"http://localhost:3000"`
}

// LoadConfig reads .env (if present) and binds the environment into a Config.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logrus.Info("No .env file found, using environment variables")
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
