package configs

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverMongo    = "mongo"
)

type StoreConfig struct {
	Driver        string
	PostgresURL   string
	MongoURI      string
	MongoDatabase string
}

type RedisConfig struct {
	Addr          string
	Password      string
	DB            int
	FacetCacheTTL time.Duration
	GeocodeTTL    time.Duration
}

type RabbitMQConfig struct {
	URL string
}

type RESTconfig struct {
	PORT           string
	AllowedOrigins []string
	RateLimit      int
}

type AuthConfig struct {
	JWTSigningKey string
}

type AssetsConfig struct {
	Dir     string
	BaseURL string
	MaxEdge int
}

type GeocoderConfig struct {
	URL       string
	RPS       float64
	UserAgent string
}

type StdoutLogConfig struct {
	Level string
}

type FluentBitConfig struct {
	Host    string
	Port    int
	Enabled bool
	Level   string
}

// AppConfig is the whole listing-service configuration.
type AppConfig struct {
	AppName      string
	Store        StoreConfig
	Redis        RedisConfig
	RabbitMQ     RabbitMQConfig
	Rest         RESTconfig
	Auth         AuthConfig
	Assets       AssetsConfig
	Geocoder     GeocoderConfig
	FluentBit    FluentBitConfig
	StdoutLogger StdoutLogConfig
}

// LoadConfig reads the environment. A .env file is applied first when present.
func LoadConfig(envPath ...string) (*AppConfig, error) {
	var err error
	if len(envPath) > 0 {
		err = godotenv.Load(envPath[0])
	} else {
		err = godotenv.Load()
	}
	if err != nil {
		log.Printf("Info: Could not load .env file (path: %v): %v. Using process environment.\n", envPath, err)
	}

	cfg := &AppConfig{}
	cfg.AppName = GetEnvAsString("APP_NAME", "listing-service")

	cfg.Store.Driver = strings.ToLower(GetEnvAsString("STORE_DRIVER", StoreDriverPostgres))
	switch cfg.Store.Driver {
	case StoreDriverPostgres:
		cfg.Store.PostgresURL = os.Getenv("DATABASE_URL")
		if cfg.Store.PostgresURL == "" {
			return nil, fmt.Errorf("DATABASE_URL environment variable is required for STORE_DRIVER=postgres")
		}
	case StoreDriverMongo:
		cfg.Store.MongoURI = os.Getenv("MONGO_URI")
		if cfg.Store.MongoURI == "" {
			return nil, fmt.Errorf("MONGO_URI environment variable is required for STORE_DRIVER=mongo")
		}
		cfg.Store.MongoDatabase = GetEnvAsString("MONGO_DATABASE", "listings")
	default:
		return nil, fmt.Errorf("STORE_DRIVER must be %q or %q, got %q", StoreDriverPostgres, StoreDriverMongo, cfg.Store.Driver)
	}

	cfg.Redis.Addr = os.Getenv("REDIS_ADDR")
	cfg.Redis.Password = os.Getenv("REDIS_PASSWORD")
	cfg.Redis.DB = GetEnvAsInt("REDIS_DB", 0)
	cfg.Redis.FacetCacheTTL = GetEnvAsDuration("FACET_CACHE_TTL", 5*time.Minute)
	cfg.Redis.GeocodeTTL = GetEnvAsDuration("GEOCODE_CACHE_TTL", 24*time.Hour)

	cfg.RabbitMQ.URL = os.Getenv("RABBITMQ_URL")
	if cfg.RabbitMQ.URL == "" {
		return nil, fmt.Errorf("RABBITMQ_URL environment variable is required")
	}

	cfg.Rest.PORT = GetEnvAsString("PORT", "8080")
	cfg.Rest.AllowedOrigins = GetEnvAsList("CORS_ORIGINS", []string{"http://localhost:5173"})
	cfg.Rest.RateLimit = GetEnvAsInt("COLLABORATOR_RATE_LIMIT", 60)

	cfg.Auth.JWTSigningKey = os.Getenv("JWT_SIGNING_KEY")
	if cfg.Auth.JWTSigningKey == "" {
		return nil, fmt.Errorf("JWT_SIGNING_KEY environment variable is required")
	}

	cfg.Assets.Dir = GetEnvAsString("ASSET_DIR", "./data/assets")
	cfg.Assets.BaseURL = GetEnvAsString("ASSET_BASE_URL", "http://localhost:"+cfg.Rest.PORT+"/assets")
	cfg.Assets.MaxEdge = GetEnvAsInt("ASSET_MAX_EDGE", 2048)

	cfg.Geocoder.URL = GetEnvAsString("GEOCODER_URL", "https://nominatim.openstreetmap.org")
	cfg.Geocoder.RPS = GetEnvAsFloat("GEOCODER_RPS", 1)
	cfg.Geocoder.UserAgent = GetEnvAsString("GEOCODER_USER_AGENT", cfg.AppName)

	cfg.FluentBit.Enabled = GetEnvAsBool("FLUENTBIT_ENABLED", false)
	if cfg.FluentBit.Enabled {
		cfg.FluentBit.Host = os.Getenv("FLUENTBIT_HOST")
		if cfg.FluentBit.Host == "" {
			log.Println("WARNING: FLUENTBIT_ENABLED is true, but FLUENTBIT_HOST is not set. Disabling Fluent Bit.")
			cfg.FluentBit.Enabled = false
		}
		cfg.FluentBit.Port = GetEnvAsInt("FLUENTBIT_PORT", 24224)
		cfg.FluentBit.Level = GetEnvAsString("FLUENTBIT_LOG_LEVEL", "info")
	}

	cfg.StdoutLogger.Level = GetEnvAsString("STDOUT_LOG_LEVEL", "debug")

	return cfg, nil
}

func GetEnvAsString(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}

// GetEnvAsInt logs and falls back to the default when the value does not parse.
func GetEnvAsInt(key string, defaultValue int) int {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	valueInt, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Environment variable %s (value: %s) could not be parsed as int: %v. Using default value: %d\n", key, valueStr, err, defaultValue)
		return defaultValue
	}
	return valueInt
}

func GetEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		log.Printf("Warning: Environment variable %s (value: %s) could not be parsed as float: %v. Using default value: %v\n", key, valueStr, err, defaultValue)
		return defaultValue
	}
	return value
}

func GetEnvAsBool(key string, defaultValue bool) bool {
	valStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	valBool, err := strconv.ParseBool(valStr)
	if err != nil {
		log.Printf("Warning: Environment variable %s (value: %s) could not be parsed as bool: %v. Using default value: %t\n", key, valStr, err, defaultValue)
		return defaultValue
	}
	return valBool
}

func GetEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	d, err := time.ParseDuration(valStr)
	if err != nil {
		log.Printf("Warning: Environment variable %s (value: %s) could not be parsed as duration: %v. Using default value: %s\n", key, valStr, err, defaultValue)
		return defaultValue
	}
	return d
}

// GetEnvAsList splits a comma separated value and drops empty entries.
func GetEnvAsList(key string, defaultValue []string) []string {
	valStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	var out []string
	for _, item := range strings.Split(valStr, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
