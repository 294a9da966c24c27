package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

const (
	sslModeDisable = "disable"
	sslModeRequire = "require"

	DBDriverPostgres = "postgres"
	DBDriverSQLite   = "sqlite"

	StorageLocal = "local"
	StorageS3    = "s3"
)

type (
	Config struct {
		Host     string `mapstructure:"HOST"`
		Port     string `mapstructure:"PORT"`
		GRPCPort string `mapstructure:"GRPC_PORT"`
		Debug    bool   `mapstructure:"DEBUG"`

		DBDriver   string `mapstructure:"DB_DRIVER"`
		DBHost     string `mapstructure:"DB_HOST"`
		DBPort     string `mapstructure:"DB_PORT"`
		DBUser     string `mapstructure:"DB_USER"`
		DBPassword string `mapstructure:"DB_PASSWORD"`
		DBName     string `mapstructure:"DB_NAME"`
		DBSSLMode  string `mapstructure:"DB_SSL_MODE"`
		DBPath     string `mapstructure:"DB_PATH"`

		BcryptCost int `mapstructure:"BCRYPT_COST"`
		RateLimit  int `mapstructure:"RATE_LIMIT"`

		StorageBackend string `mapstructure:"STORAGE_BACKEND"`
		MediaRoot      string `mapstructure:"MEDIA_ROOT"`
		MediaURL       string `mapstructure:"MEDIA_URL"`
		S3Bucket       string `mapstructure:"S3_BUCKET"`
		S3Region       string `mapstructure:"S3_REGION"`
		S3Endpoint     string `mapstructure:"S3_ENDPOINT"`
		S3AccessKey    string `mapstructure:"S3_ACCESS_KEY"`
		S3SecretKey    string `mapstructure:"S3_SECRET_KEY"`
	}
)

var defaults = map[string]interface{}{
	"HOST":            "0.0.0.0",
	"PORT":            "1323",
	"GRPC_PORT":       "9000",
	"DEBUG":           false,
	"DB_DRIVER":       DBDriverPostgres,
	"DB_HOST":         "0.0.0.0",
	"DB_PORT":         "5432",
	"DB_USER":         "user",
	"DB_PASSWORD":     "password",
	"DB_NAME":         "db",
	"DB_SSL_MODE":     sslModeDisable,
	"DB_PATH":         "recipe.db",
	"BCRYPT_COST":     10,
	"RATE_LIMIT":      0,
	"STORAGE_BACKEND": StorageLocal,
	"MEDIA_ROOT":      "media",
	"MEDIA_URL":       "/media/",
	"S3_BUCKET":       "",
	"S3_REGION":       "auto",
	"S3_ENDPOINT":     "",
	"S3_ACCESS_KEY":   "",
	"S3_SECRET_KEY":   "",
}

// NewConfig reads RECIPE_* environment variables, optionally seeded from a
// .env file in the working directory.
func NewConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, errors.Wrap(err, "load .env")
	}

	v := viper.New()
	v.SetEnvPrefix("RECIPE")

	for key, value := range defaults {
		v.SetDefault(key, value)
		if err := v.BindEnv(key); err != nil {
			return nil, err
		}
	}

	cfg := Config{}
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if err := validate(&cfg); err != nil {
		return nil, errors.Wrap(err, "config validation failed")
	}

	return &cfg, nil
}

func (c *Config) HTTPListen() string {
	return c.Host + ":" + c.Port
}

func (c *Config) GRPCListen() string {
	return c.Host + ":" + c.GRPCPort
}

func validate(cfg *Config) error {
	if !oneOf(cfg.DBSSLMode, sslModeDisable, sslModeRequire) {
		return errors.New(fmt.Sprintf("DB SSL mode is invalid: %s", cfg.DBSSLMode))
	}
	if !oneOf(cfg.DBDriver, DBDriverPostgres, DBDriverSQLite) {
		return errors.New(fmt.Sprintf("DB driver is invalid: %s", cfg.DBDriver))
	}
	if !oneOf(cfg.StorageBackend, StorageLocal, StorageS3) {
		return errors.New(fmt.Sprintf("storage backend is invalid: %s", cfg.StorageBackend))
	}
	if cfg.StorageBackend == StorageS3 && cfg.S3Bucket == "" {
		return errors.New("S3 bucket is required for the s3 storage backend")
	}
	if cfg.RateLimit < 0 {
		return errors.New(fmt.Sprintf("rate limit is invalid: %d", cfg.RateLimit))
	}
	return nil
}

func oneOf(value string, valid ...string) bool {
	for _, v := range valid {
		if value == v {
			return true
		}
	}
	return false
}
