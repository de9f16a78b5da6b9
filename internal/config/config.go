package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Sink names accepted in SINKS.
const (
	SinkFile     = "file"
	SinkDuckDB   = "duckdb"
	SinkPostgres = "postgres"
	SinkKafka    = "kafka"
	SinkS3       = "s3"
	SinkDynamoDB = "dynamodb"
	SinkMemory   = "memory"
)

var validate = validator.New()

type AppConfig struct {
	// Position source. An empty URL selects the provider's own endpoint.
	PositionURL      string `validate:"omitempty,url"`
	PositionProvider string `validate:"oneof=open-notify wheretheiss"`

	// Reverse geocoding. An empty key disables address lookup.
	GeocoderURL      string `validate:"required,url"`
	GeocoderKey      string
	GeocoderProvider string `validate:"oneof=geoapify google"`

	LogFile       string
	LocationsFile string `validate:"required"`
	SourceTag     string `validate:"required"`

	HTTPTimeout        time.Duration `validate:"gt=0"`
	BreakerMaxFailures int           `validate:"gte=0"`

	// Sinks lists the enabled sinks in write order.
	Sinks []string `validate:"min=1,dive,oneof=file duckdb postgres kafka s3 dynamodb memory"`

	DuckDBPath    string
	PostgresDSN   string
	KafkaBroker   string
	KafkaTopic    string
	KafkaEncoding string `validate:"oneof=json msgpack"`

	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioUseSSL    bool
	MinioBucket    string

	DynamoDBTable string
	AWSRegion     string

	// Watch mode.
	WatchInterval   time.Duration `validate:"gt=0"`
	StoreMaxHistory int           // max number of records kept in memory (0 = unlimited)
	StoreMaxAge     time.Duration // max age of records kept in memory (0 = unlimited)
	Port            string        `validate:"required,numeric"`
}

// fileConfig mirrors the sections of the YAML config file.
type fileConfig struct {
	OpenNotify struct {
		URL      string `yaml:"url"`
		Provider string `yaml:"provider"`
	} `yaml:"Open-Notify"`
	Geoapify struct {
		URL      string `yaml:"url"`
		Key      string `yaml:"key"`
		Provider string `yaml:"provider"`
	} `yaml:"Geoapify"`
	Paths struct {
		Log       string `yaml:"log"`
		Locations string `yaml:"locations"`
		DuckDB    string `yaml:"duckdb"`
	} `yaml:"Paths"`
	Sinks []string `yaml:"sinks"`
	Watch struct {
		Interval string `yaml:"interval"`
		Port     string `yaml:"port"`
	} `yaml:"watch"`
}

// Default returns the configuration used when nothing overrides it.
func Default() *AppConfig {
	return &AppConfig{
		PositionProvider:   "open-notify",
		GeocoderURL:        "https://api.geoapify.com/v1/geocode/reverse",
		GeocoderProvider:   "geoapify",
		LogFile:            "./logs/execution.log",
		LocationsFile:      "./data/locations.txt",
		SourceTag:          "ISS",
		HTTPTimeout:        10 * time.Second,
		BreakerMaxFailures: 5,
		Sinks:              []string{SinkFile},
		DuckDBPath:         "./data/iss.duckdb",
		KafkaTopic:         "iss-positions",
		KafkaEncoding:      "json",
		MinioBucket:        "iss-positions",
		DynamoDBTable:      "iss_tracker",
		AWSRegion:          "us-east-1",
		WatchInterval:      time.Minute,
		StoreMaxHistory:    1440, // a day at one-minute intervals
		StoreMaxAge:        24 * time.Hour,
		Port:               "8080",
	}
}

// Load builds the configuration from defaults, the optional YAML file at
// path, then the environment (after loading .env if present).
func Load(path string) (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}

	cfg := Default()
	if path != "" {
		if err := cfg.applyFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field constraints and the settings each enabled sink needs.
func (c *AppConfig) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	var errs []error
	for _, name := range c.Sinks {
		switch name {
		case SinkDuckDB:
			if c.DuckDBPath == "" {
				errs = append(errs, errors.New("DUCKDB_PATH is required for the duckdb sink"))
			}
		case SinkPostgres:
			if c.PostgresDSN == "" {
				errs = append(errs, errors.New("POSTGRES_DSN is required for the postgres sink"))
			}
		case SinkKafka:
			if c.KafkaBroker == "" || c.KafkaTopic == "" {
				errs = append(errs, errors.New("KAFKA_BROKER and KAFKA_TOPIC are required for the kafka sink"))
			}
		case SinkS3:
			if c.MinioEndpoint == "" || c.MinioBucket == "" {
				errs = append(errs, errors.New("MINIO_ENDPOINT and MINIO_BUCKET are required for the s3 sink"))
			}
		case SinkDynamoDB:
			if c.DynamoDBTable == "" || c.AWSRegion == "" {
				errs = append(errs, errors.New("DYNAMODB_TABLE and AWS_REGION are required for the dynamodb sink"))
			}
		}
	}
	return errors.Join(errs...)
}

// HasSink reports whether name is among the enabled sinks.
func (c *AppConfig) HasSink(name string) bool {
	for _, s := range c.Sinks {
		if s == name {
			return true
		}
	}
	return false
}

func (c *AppConfig) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	setIf(&c.PositionURL, fc.OpenNotify.URL)
	setIf(&c.PositionProvider, fc.OpenNotify.Provider)
	setIf(&c.GeocoderURL, fc.Geoapify.URL)
	setIf(&c.GeocoderKey, fc.Geoapify.Key)
	setIf(&c.GeocoderProvider, fc.Geoapify.Provider)
	setIf(&c.LogFile, fc.Paths.Log)
	setIf(&c.LocationsFile, fc.Paths.Locations)
	setIf(&c.DuckDBPath, fc.Paths.DuckDB)
	setIf(&c.Port, fc.Watch.Port)
	if len(fc.Sinks) > 0 {
		c.Sinks = fc.Sinks
	}
	if fc.Watch.Interval != "" {
		d, err := time.ParseDuration(fc.Watch.Interval)
		if err != nil {
			return fmt.Errorf("invalid watch.interval: %w", err)
		}
		c.WatchInterval = d
	}
	return nil
}

func (c *AppConfig) applyEnv() error {
	c.PositionURL = getenvDefault("ISS_NOW_URL", c.PositionURL)
	c.PositionProvider = getenvDefault("POSITION_PROVIDER", c.PositionProvider)
	c.GeocoderURL = getenvDefault("REV_GEO_URL", c.GeocoderURL)
	c.GeocoderKey = getenvDefault("REV_GEO_KEY", c.GeocoderKey)
	c.GeocoderProvider = getenvDefault("GEOCODER_PROVIDER", c.GeocoderProvider)
	c.LogFile = getenvDefault("LOG_FILE", c.LogFile)
	c.LocationsFile = getenvDefault("LOCATIONS_FILE", c.LocationsFile)
	c.SourceTag = getenvDefault("SOURCE_TAG", c.SourceTag)
	c.BreakerMaxFailures = getenvInt("BREAKER_MAX_FAILURES", c.BreakerMaxFailures)

	if v := os.Getenv("SINKS"); v != "" {
		c.Sinks = splitList(v)
	}
	c.DuckDBPath = getenvDefault("DUCKDB_PATH", c.DuckDBPath)
	c.PostgresDSN = getenvDefault("POSTGRES_DSN", c.PostgresDSN)
	c.KafkaBroker = getenvDefault("KAFKA_BROKER", c.KafkaBroker)
	c.KafkaTopic = getenvDefault("KAFKA_TOPIC", c.KafkaTopic)
	c.KafkaEncoding = getenvDefault("KAFKA_ENCODING", c.KafkaEncoding)
	c.MinioEndpoint = getenvDefault("MINIO_ENDPOINT", c.MinioEndpoint)
	c.MinioAccessKey = getenvDefault("MINIO_ACCESS_KEY", c.MinioAccessKey)
	c.MinioSecretKey = getenvDefault("MINIO_SECRET_KEY", c.MinioSecretKey)
	c.MinioBucket = getenvDefault("MINIO_BUCKET", c.MinioBucket)
	c.MinioUseSSL = getenvBool("MINIO_USE_SSL", c.MinioUseSSL)
	c.DynamoDBTable = getenvDefault("DYNAMODB_TABLE", c.DynamoDBTable)
	c.AWSRegion = getenvDefault("AWS_REGION", c.AWSRegion)

	c.StoreMaxHistory = getenvInt("STORE_MAX_HISTORY", c.StoreMaxHistory)
	c.Port = getenvDefault("PORT", c.Port)

	var err error
	if c.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", c.HTTPTimeout); err != nil {
		return err
	}
	if c.WatchInterval, err = getenvDuration("WATCH_INTERVAL", c.WatchInterval); err != nil {
		return err
	}
	if c.StoreMaxAge, err = getenvDuration("STORE_MAX_AGE", c.StoreMaxAge); err != nil {
		return err
	}
	return nil
}

func setIf(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(strings.ToLower(part)); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func getenvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getenvDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
