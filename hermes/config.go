package hermes

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/lunagic/hermes/hermesservices/cache"
	"github.com/lunagic/hermes/hermesservices/completion"
	"github.com/lunagic/hermes/hermesservices/database"
	"github.com/lunagic/hermes/hermesservices/queue"
	"github.com/lunagic/hermes/hermesservices/storage"
	"github.com/lunagic/hermes/hermesservices/vault"
)

type AppConfig struct {
	// App
	AppHTTPHost           string        `env:"APP_HTTP_HOST"`
	AppHTTPPort           int           `env:"APP_HTTP_PORT"`
	AppKey                string        `env:"APP_KEY"`
	AppLogLevel           string        `env:"APP_LOG_LEVEL"`
	AppAutoMigrate        bool          `env:"APP_AUTO_MIGRATE"`
	AppSchemaCacheTTL     time.Duration `env:"APP_SCHEMA_CACHE_TTL"`
	AppSchemaWarmInterval time.Duration `env:"APP_SCHEMA_WARM_INTERVAL"`
	AppCompletionCacheTTL time.Duration `env:"APP_COMPLETION_CACHE_TTL"`
	AppShutdownTimeout    time.Duration `env:"APP_SHUTDOWN_TIMEOUT"`
	AppTypeScriptPath     string        `env:"APP_TYPESCRIPT_PATH"`
	// App Drivers
	AppDriverCache      string `env:"APP_DRIVER_CACHE"`
	AppDriverCompletion string `env:"APP_DRIVER_COMPLETION"`
	AppDriverDatabase   string `env:"APP_DRIVER_DATABASE"`
	AppDriverQueue      string `env:"APP_DRIVER_QUEUE"`
	AppDriverStorage    string `env:"APP_DRIVER_STORAGE"`
	// Services
	AmazonS3AccessKeyID     string `env:"AMAZON_S3_ACCESS_KEY_ID"`
	AmazonS3AccessKeySecret string `env:"AMAZON_S3_ACCESS_KEY_SECRET"`
	AmazonS3Bucket          string `env:"AMAZON_S3_BUCKET"`
	AmazonS3Endpoint        string `env:"AMAZON_S3_ENDPOINT"`
	AmazonS3Region          string `env:"AMAZON_S3_REGION"`
	LocalStoragePath        string `env:"LOCAL_STORAGE_PATH"`
	MySQLCAPath             string `env:"MYSQL_CA_PATH"`
	MySQLHost               string `env:"MYSQL_HOST"`
	MySQLName               string `env:"MYSQL_NAME"`
	MySQLPass               string `env:"MYSQL_PASS"`
	MySQLPort               int    `env:"MYSQL_PORT"`
	MySQLUser               string `env:"MYSQL_USER"`
	OpenAIAPIKey            string `env:"OPENAI_API_KEY"`
	OpenAIBaseURL           string `env:"OPENAI_BASE_URL"`
	OpenAIModel             string `env:"OPENAI_MODEL"`
	PostgresHost            string `env:"POSTGRES_HOST"`
	PostgresName            string `env:"POSTGRES_NAME"`
	PostgresPass            string `env:"POSTGRES_PASS"`
	PostgresPort            int    `env:"POSTGRES_PORT"`
	PostgresSSLMode         string `env:"POSTGRES_SSL_MODE"`
	PostgresUser            string `env:"POSTGRES_USER"`
	RabbitMQHost            string `env:"RABBITMQ_HOST"`
	RabbitMQPass            string `env:"RABBITMQ_PASS"`
	RabbitMQPort            int    `env:"RABBITMQ_PORT"`
	RabbitMQUser            string `env:"RABBITMQ_USER"`
	RabbitMQVHost           string `env:"RABBITMQ_VHOST"`
	RedisHost               string `env:"REDIS_HOST"`
	RedisNumber             int    `env:"REDIS_NUMBER"`
	RedisPass               string `env:"REDIS_PASS"`
	RedisPort               int    `env:"REDIS_PORT"`
	RedisPrefix             string `env:"REDIS_PREFIX"`
	RedisUser               string `env:"REDIS_USER"`
	SQLitePath              string `env:"SQLITE_PATH"`
}

func NewConfig() AppConfig {
	return AppConfig{
		AppAutoMigrate:        true,
		AppCompletionCacheTTL: time.Hour,
		AppDriverCache:        "memory",
		AppDriverCompletion:   "openai",
		AppDriverDatabase:     "sqlite",
		AppDriverQueue:        "memory",
		AppDriverStorage:      "local",
		AppHTTPHost:           "0.0.0.0",
		AppHTTPPort:           3000,
		AppLogLevel:           "info",
		AppSchemaCacheTTL:     5 * time.Minute,
		AppSchemaWarmInterval: time.Minute,
		AppShutdownTimeout:    10 * time.Second,
		LocalStoragePath:      "storage",
		MySQLHost:             "127.0.0.1",
		MySQLPort:             3306,
		OpenAIModel:           "gpt-4o",
		PostgresHost:          "127.0.0.1",
		PostgresPort:          5432,
		RabbitMQHost:          "127.0.0.1",
		RabbitMQPort:          5672,
		RedisHost:             "127.0.0.1",
		RedisPort:             6379,
		RedisPrefix:           "hermes:",
		SQLitePath:            "database.sqlite",
	}
}

// LoadConfig reads an optional .env file and then the process environment
// over the defaults.
func LoadConfig(envFiles ...string) (AppConfig, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return AppConfig{}, err
	}

	config := NewConfig()
	if err := env.Parse(&config); err != nil {
		return AppConfig{}, err
	}

	return config, nil
}

func (config AppConfig) ListenAddr() string {
	return fmt.Sprintf("%s:%d", config.AppHTTPHost, config.AppHTTPPort)
}

func (config AppConfig) Logger() *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(config.AppLogLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// Vault returns nil when no APP_KEY is configured.
func (config AppConfig) Vault() (*vault.Vault, error) {
	if config.AppKey == "" {
		return nil, nil
	}

	v, err := vault.NewFromPassphrase(config.AppKey)
	if err != nil {
		return nil, err
	}

	return &v, nil
}

func (config AppConfig) Storage() (storage.Driver, error) {
	switch config.AppDriverStorage {
	case "local":
		return storage.NewDriverLocal(config.LocalStoragePath)
	case "s3":
		return storage.NewDriverS3(storage.S3Config{
			Endpoint:        config.AmazonS3Endpoint,
			Region:          config.AmazonS3Region,
			Bucket:          config.AmazonS3Bucket,
			AccessKeyID:     config.AmazonS3AccessKeyID,
			AccessKeySecret: config.AmazonS3AccessKeySecret,
		})
	}

	return nil, fmt.Errorf("invalid storage driver: %s", config.AppDriverStorage)
}

func (config AppConfig) Database(configFuncs ...database.ServiceConfigFunc) (*database.Service, error) {
	switch config.AppDriverDatabase {
	case "sqlite":
		return database.New(
			database.NewDriverSQLite(config.SQLitePath),
			configFuncs...,
		)
	case "postgres":
		return database.New(
			database.NewDriverPostgres(database.DriverPostgresConfig{
				Host:    config.PostgresHost,
				Port:    config.PostgresPort,
				User:    config.PostgresUser,
				Pass:    config.PostgresPass,
				Name:    config.PostgresName,
				SSLMode: config.PostgresSSLMode,
			}),
			configFuncs...,
		)
	case "mysql", "singlestore":
		return database.New(
			database.NewDriverMySQL(database.DriverMySQLConfig{
				Host:   config.MySQLHost,
				Port:   config.MySQLPort,
				User:   config.MySQLUser,
				Pass:   config.MySQLPass,
				Name:   config.MySQLName,
				CAPath: config.MySQLCAPath,
			}),
			configFuncs...,
		)
	}

	return nil, fmt.Errorf("invalid database driver: %s", config.AppDriverDatabase)
}

// Cache stops its background work when ctx is cancelled.
func (config AppConfig) Cache(ctx context.Context) (cache.Driver, error) {
	switch config.AppDriverCache {
	case "memory":
		return cache.NewDriverMemory(ctx, time.Minute)
	case "redis":
		return cache.NewDriverRedis(cache.DriverRedisConfig{
			Host:   config.RedisHost,
			Number: config.RedisNumber,
			Pass:   config.RedisPass,
			Port:   config.RedisPort,
			User:   config.RedisUser,
			Prefix: config.RedisPrefix,
		})
	}

	return nil, fmt.Errorf("invalid cache driver: %s", config.AppDriverCache)
}

func (config AppConfig) Queue() (queue.Driver, error) {
	switch config.AppDriverQueue {
	case "memory":
		return queue.NewDriverMemory(256)
	case "rabbitmq":
		return queue.NewDriverRabbitMQ(queue.DriverRabbitMQConfig{
			Host:  config.RabbitMQHost,
			Pass:  config.RabbitMQPass,
			Port:  config.RabbitMQPort,
			User:  config.RabbitMQUser,
			VHost: config.RabbitMQVHost,
		})
	}

	return nil, fmt.Errorf("invalid queue driver: %s", config.AppDriverQueue)
}

// Completion wraps the driver in a cache when AppCompletionCacheTTL is set
// and cacheDriver is not nil.
func (config AppConfig) Completion(cacheDriver cache.Driver) (completion.Driver, error) {
	var driver completion.Driver
	switch config.AppDriverCompletion {
	case "openai":
		if config.OpenAIAPIKey == "" {
			return nil, errors.New("OPENAI_API_KEY is required for the openai completion driver")
		}

		driver = completion.NewDriverOpenAI(completion.DriverOpenAIConfig{
			APIKey:  config.OpenAIAPIKey,
			BaseURL: config.OpenAIBaseURL,
		})
	case "memory":
		driver = completion.NewDriverMemory(completion.Reply("{}"))
	default:
		return nil, fmt.Errorf("invalid completion driver: %s", config.AppDriverCompletion)
	}

	if cacheDriver != nil && config.AppCompletionCacheTTL > 0 {
		driver = completion.NewCachedDriver(driver, cacheDriver, config.AppCompletionCacheTTL)
	}

	return driver, nil
}
