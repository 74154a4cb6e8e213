package config

import (
	"slices"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog"
)

type config struct {
	Port int    `envconfig:"PORT" default:"8080"`
	Env  string `envconfig:"APP_ENV" default:"local"`
	Log  struct {
		Level    string `envconfig:"LOG_LEVEL" default:"debug"`
		Format   string `envconfig:"LOG_FORMAT" default:"text"`
		Requests bool   `envconfig:"LOG_REQUESTS" default:"false"`
	}
	Assets struct {
		Root   string `envconfig:"ASSET_ROOT" default:"public"`
		Prefix string `envconfig:"ASSET_PREFIX" default:"/"`
		Pins   string `envconfig:"ASSET_PINS" default:"pins.json"`
	}
	Cache struct {
		StoragePath string `envconfig:"CACHE_STORAGE_PATH" default:"."`
	}
	Bucket BucketConfig
}

// BucketConfig holds the S3-compatible target for `assetmap publish`.
// Endpoint empty means publishing is unconfigured.
type BucketConfig struct {
	Endpoint  string `envconfig:"ASSET_BUCKET_ENDPOINT"`
	Region    string `envconfig:"ASSET_BUCKET_REGION" default:"us-east-1"`
	AccessKey string `envconfig:"ASSET_BUCKET_ACCESS_KEY"`
	SecretKey string `envconfig:"ASSET_BUCKET_SECRET_KEY"`
	Name      string `envconfig:"ASSET_BUCKET_NAME"`
	UseSSL    bool   `envconfig:"ASSET_BUCKET_SSL" default:"true"`
}

var cfg config

func LoadConfig() error {
	err := envconfig.Process("", &cfg)
	if err != nil {
		return err
	}
	return nil
}

func Port() int {
	return cfg.Port
}

// IsLocal reports whether the process runs in development mode: passthrough
// assets, live reload, console logging.
func IsLocal() bool {
	return strings.EqualFold(cfg.Env, "local")
}

func LogLevel() zerolog.Level {
	switch strings.ToLower(cfg.Log.Level) {
	case "trace":
		return zerolog.TraceLevel
	case "info":
		return zerolog.InfoLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "fatal":
		return zerolog.FatalLevel
	case "panic":
		return zerolog.PanicLevel
	default:
		return zerolog.DebugLevel
	}
}

func LogFormat() string {
	allowed := []string{"text", "json"}
	format := strings.ToLower(cfg.Log.Format)
	if slices.Contains(allowed, format) {
		return format
	}
	return "json"
}

func LogRequests() bool {
	return cfg.Log.Requests
}

func AssetRoot() string {
	return cfg.Assets.Root
}

func AssetPrefix() string {
	return cfg.Assets.Prefix
}

func PinsPath() string {
	return cfg.Assets.Pins
}

func CacheStorage() string {
	return cfg.Cache.StoragePath
}

func Bucket() BucketConfig {
	return cfg.Bucket
}
