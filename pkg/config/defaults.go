package config

import "time"

const (
	StoreMongo     = "mongo"
	StoreFirestore = "firestore"

	DefaultStoreBackend = StoreFirestore

	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "cleanroom"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultFirestoreCollection = "bookings"

	DefaultPort     = "8080"
	DefaultLogLevel = "info"
	DefaultTimeZone = "Asia/Kolkata"

	DefaultAllowedEmailDomain = "hyderabad.bits-pilani.ac.in"
	DefaultAdminSessionTTL    = 8 * time.Hour
	MinAdminJWTSecretLength   = 32

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second
)
