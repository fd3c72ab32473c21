package config

const (
	EnvStoreBackend = "STORE_BACKEND"

	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"

	EnvFirebaseProjectID       = "FIREBASE_PROJECT_ID"
	EnvFirebaseCredentialsFile = "FIREBASE_CREDENTIALS_FILE"
	EnvFirestoreCollection     = "FIRESTORE_COLLECTION"

	EnvPort     = "PORT"
	EnvLogLevel = "LOG_LEVEL"
	EnvTimeZone = "TIME_ZONE"

	EnvAllowedEmailDomain = "ALLOWED_EMAIL_DOMAIN"
	EnvAdminEmail         = "ADMIN_EMAIL"
	EnvAdminPasswordHash  = "ADMIN_PASSWORD_HASH"
	EnvAdminJWTSecret     = "ADMIN_JWT_SECRET"
	EnvAdminSessionTTL    = "ADMIN_SESSION_TTL"

	EnvRequestTimeout = "REQUEST_TIMEOUT"
	EnvIdempotencyTTL = "IDEMPOTENCY_TTL"
	EnvMaxRequestSize = "MAX_REQUEST_SIZE"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"
)
