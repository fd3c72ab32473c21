package config

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"cleanroom/pkg/client"
	"cleanroom/pkg/logger"

	"github.com/joho/godotenv"
)

type Config struct {
	StoreBackend string

	MongoURI          string
	MongoDatabaseName string
	MongoConnTimeout  time.Duration

	FirebaseProjectID       string
	FirebaseCredentialsFile string
	FirestoreCollection     string

	Port     string
	TimeZone string
	Location *time.Location

	AllowedEmailDomain string
	AdminEmail         string
	AdminPasswordHash  string
	AdminJWTSecret     string
	AdminSessionTTL    time.Duration

	RequestTimeout time.Duration
	IdempotencyTTL time.Duration
	MaxRequestSize int

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	Log    *logger.Logger
	Client *client.Client
}

// Load reads configuration from the environment, after merging a .env file
// from the working directory when one exists. Invalid configuration is fatal.
func Load(serviceName string) *Config {
	_ = godotenv.Load()

	cfg := &Config{
		StoreBackend: strings.ToLower(getEnvStr(EnvStoreBackend, DefaultStoreBackend)),

		MongoURI:          getEnvStr(EnvMongoURI, DefaultMongoURI),
		MongoDatabaseName: getEnvStr(EnvMongoDatabaseName, DefaultMongoDatabaseName),
		MongoConnTimeout:  getEnvDuration(EnvMongoConnTimeout, DefaultMongoConnTimeout),

		FirebaseProjectID:       getEnvStr(EnvFirebaseProjectID, ""),
		FirebaseCredentialsFile: getEnvStr(EnvFirebaseCredentialsFile, ""),
		FirestoreCollection:     getEnvStr(EnvFirestoreCollection, DefaultFirestoreCollection),

		Port:     getEnvStr(EnvPort, DefaultPort),
		TimeZone: getEnvStr(EnvTimeZone, DefaultTimeZone),

		AllowedEmailDomain: strings.ToLower(getEnvStr(EnvAllowedEmailDomain, DefaultAllowedEmailDomain)),
		AdminEmail:         strings.ToLower(getEnvStr(EnvAdminEmail, "")),
		AdminPasswordHash:  getEnvStr(EnvAdminPasswordHash, ""),
		AdminJWTSecret:     getEnvStr(EnvAdminJWTSecret, ""),
		AdminSessionTTL:    getEnvDuration(EnvAdminSessionTTL, DefaultAdminSessionTTL),

		RequestTimeout: getEnvDuration(EnvRequestTimeout, DefaultRequestTimeout),
		IdempotencyTTL: getEnvDuration(EnvIdempotencyTTL, DefaultIdempotencyTTL),
		MaxRequestSize: getEnvNum(EnvMaxRequestSize, DefaultMaxRequestSize),

		ReadTimeout:     getEnvDuration(EnvReadTimeout, DefaultReadTimeout),
		WriteTimeout:    getEnvDuration(EnvWriteTimeout, DefaultWriteTimeout),
		IdleTimeout:     getEnvDuration(EnvIdleTimeout, DefaultIdleTimeout),
		ShutdownTimeout: getEnvDuration(EnvShutdownTimeout, DefaultShutdownTimeout),

		Log: logger.New(logger.Config{
			Level:     getEnvStr(EnvLogLevel, DefaultLogLevel),
			Format:    logger.JSON,
			AddSource: true,
			Service:   serviceName,
		}),
		Client: client.NewClient(),
	}

	err := cfg.Validate()
	if err != nil {
		cfg.Log.Fatal(err.Error())
	}
	cfg.LogConfiguration()
	return cfg
}

func (cfg *Config) SetMongo() {
	cfg.Client.SetMongo(cfg.Log, cfg.MongoURI, cfg.MongoConnTimeout)
}

func (cfg *Config) SetFirebase() {
	cfg.Client.SetFirebase(cfg.Log, cfg.FirebaseProjectID, cfg.FirebaseCredentialsFile)
}

// SetStore connects the configured booking store backend.
func (cfg *Config) SetStore() {
	switch cfg.StoreBackend {
	case StoreMongo:
		cfg.SetMongo()
	case StoreFirestore:
		cfg.Client.SetFirestore(cfg.Log)
	}
}

// AdminLoginEnabled reports whether admin credentials are configured.
func (cfg *Config) AdminLoginEnabled() bool {
	return cfg.AdminEmail != "" && cfg.AdminPasswordHash != ""
}

func (cfg *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(cfg.Port); err != nil || port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("Port must be between 1 and 65535, got: %s", cfg.Port))
	}

	switch cfg.StoreBackend {
	case StoreMongo:
		if cfg.MongoURI == "" {
			errors = append(errors, "MongoURI cannot be empty")
		} else if len(cfg.MongoURI) < 10 || !regexp.MustCompile(`^mongodb(\+srv)?://`).MatchString(cfg.MongoURI) {
			errors = append(errors, fmt.Sprintf("MongoURI must start with 'mongodb://' or 'mongodb+srv://', got: %s", redactMongoURI(cfg.MongoURI)))
		}
		if cfg.MongoDatabaseName == "" {
			errors = append(errors, "MongoDatabaseName cannot be empty")
		}
		if cfg.MongoConnTimeout <= 0 {
			errors = append(errors, fmt.Sprintf("MongoConnTimeout must be positive, got: %s", cfg.MongoConnTimeout))
		}
	case StoreFirestore:
		if cfg.FirestoreCollection == "" {
			errors = append(errors, "FirestoreCollection cannot be empty")
		}
	default:
		errors = append(errors, fmt.Sprintf("StoreBackend must be %q or %q, got: %q", StoreMongo, StoreFirestore, cfg.StoreBackend))
	}

	loc, err := time.LoadLocation(cfg.TimeZone)
	if err != nil {
		errors = append(errors, fmt.Sprintf("TimeZone must be an IANA zone name, got: %s", cfg.TimeZone))
	} else {
		cfg.Location = loc
	}

	if cfg.AllowedEmailDomain == "" {
		errors = append(errors, "AllowedEmailDomain cannot be empty")
	}
	if (cfg.AdminEmail == "") != (cfg.AdminPasswordHash == "") {
		errors = append(errors, "AdminEmail and AdminPasswordHash must be set together")
	}
	if cfg.AdminLoginEnabled() && len(cfg.AdminJWTSecret) < MinAdminJWTSecretLength {
		errors = append(errors, fmt.Sprintf("AdminJWTSecret must be at least %d characters when admin login is enabled", MinAdminJWTSecretLength))
	}
	if cfg.AdminSessionTTL <= 0 {
		errors = append(errors, fmt.Sprintf("AdminSessionTTL must be positive, got: %s", cfg.AdminSessionTTL))
	}

	if cfg.RequestTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("RequestTimeout must be positive, got: %s", cfg.RequestTimeout))
	}
	if cfg.IdempotencyTTL <= 0 {
		errors = append(errors, fmt.Sprintf("IdempotencyTTL must be positive, got: %s", cfg.IdempotencyTTL))
	}
	if cfg.ReadTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("ReadTimeout must be positive, got: %s", cfg.ReadTimeout))
	}
	if cfg.WriteTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("WriteTimeout must be positive, got: %s", cfg.WriteTimeout))
	}
	if cfg.IdleTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("IdleTimeout must be positive, got: %s", cfg.IdleTimeout))
	}
	if cfg.ShutdownTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("ShutdownTimeout must be positive, got: %s", cfg.ShutdownTimeout))
	}
	if cfg.MaxRequestSize <= 0 {
		errors = append(errors, fmt.Sprintf("MaxRequestSize must be positive, got: %d", cfg.MaxRequestSize))
	}

	if len(errors) > 0 {
		errMsg := "Configuration validation failed:\n"
		for i, err := range errors {
			errMsg += fmt.Sprintf("  %d. %s\n", i+1, err)
		}
		return fmt.Errorf("%s", errMsg)
	}

	return nil
}

func (cfg *Config) LogConfiguration() {
	cfg.Log.Info("Configuration loaded successfully",
		"store_backend", cfg.StoreBackend,
		"mongo_uri", redactMongoURI(cfg.MongoURI),
		"mongo_database", cfg.MongoDatabaseName,
		"mongo_conn_timeout", cfg.MongoConnTimeout,
		"firebase_project_id", cfg.FirebaseProjectID,
		"firebase_credentials_set", cfg.FirebaseCredentialsFile != "",
		"firestore_collection", cfg.FirestoreCollection,
		"port", cfg.Port,
		"time_zone", cfg.TimeZone,
		"allowed_email_domain", cfg.AllowedEmailDomain,
		"admin_login_enabled", cfg.AdminLoginEnabled(),
		"admin_session_ttl", cfg.AdminSessionTTL,
		"request_timeout", cfg.RequestTimeout,
		"idempotency_ttl", cfg.IdempotencyTTL,
		"max_request_size", cfg.MaxRequestSize,
		"read_timeout", cfg.ReadTimeout,
		"write_timeout", cfg.WriteTimeout,
		"idle_timeout", cfg.IdleTimeout,
		"shutdown_timeout", cfg.ShutdownTimeout,
	)
}

func redactMongoURI(uri string) string {
	credentialRegex := regexp.MustCompile(`(mongodb(\+srv)?://)[^:]+:[^@]+@`)
	return credentialRegex.ReplaceAllString(uri, "${1}***:***@")
}

func getEnvStr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvNum(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

func (cfg *Config) GracefulShutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	cfg.Client.GracefulShutdown(ctx, cfg.Log)
}
