package main

import (
	"io"

	"cleanroom/internal/auth"
	"cleanroom/internal/bookings/handler"
	"cleanroom/internal/bookings/repository"
	"cleanroom/internal/bookings/service"
	"cleanroom/internal/bookings/validator"
	"cleanroom/internal/events"
	"cleanroom/pkg/app"
	"cleanroom/pkg/config"
	"cleanroom/pkg/kafka"
	kafkaconfig "cleanroom/pkg/kafka/config"
	kafkamiddleware "cleanroom/pkg/kafka/middleware"
)

const ServiceName = "bookings"

func main() {
	cfg := config.Load(ServiceName)

	cfg.Log.Info("Starting Bookings service", "store", cfg.StoreBackend)
	cfg.SetFirebase()
	cfg.SetStore()

	store := initStore(cfg)
	publisher, closer := initPublisher(cfg)
	bookingService := service.NewBookingService(
		store,
		validator.NewBookingValidator(cfg.Log),
		publisher,
		cfg,
	)

	adminAuth := auth.NewAdminAuthenticator(cfg.AdminEmail, cfg.AdminPasswordHash, cfg.AdminJWTSecret, cfg.AdminSessionTTL)
	if !adminAuth.Enabled() {
		cfg.Log.Warn("Admin login disabled: ADMIN_EMAIL and ADMIN_PASSWORD_HASH are not set")
	}
	authenticator := auth.NewAuthenticator(
		adminAuth,
		auth.NewFirebaseVerifier(cfg.Client.Auth),
		auth.NewRoleResolver(cfg.AllowedEmailDomain),
		cfg.Log.Component("auth"),
	)

	serverApp := app.NewApplication(cfg)
	if closer != nil {
		serverApp.OnShutdown(closer)
	}
	serverApp.SetApp(
		handler.NewHealthHandler(store, cfg.Log),
		handler.NewBookingHandler(bookingService, authenticator, cfg.Log),
		handler.NewSessionHandler(adminAuth, cfg.Log),
	)
	serverApp.Run()
}

func initStore(cfg *config.Config) repository.Store {
	switch cfg.StoreBackend {
	case config.StoreMongo:
		cfg.Log.Info("Booking store initialized", "backend", cfg.StoreBackend, "database", cfg.MongoDatabaseName)
		return repository.NewMongoStore(cfg)
	default:
		cfg.Log.Info("Booking store initialized", "backend", cfg.StoreBackend, "collection", cfg.FirestoreCollection)
		return repository.NewFirestoreStore(cfg)
	}
}

// initPublisher returns the Kafka-backed publisher when Kafka is enabled and
// a no-op publisher otherwise. The closer, if any, must run on shutdown.
func initPublisher(cfg *config.Config) (events.Publisher, io.Closer) {
	kafkaCfg, err := kafkaconfig.Load()
	if err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}
	kafkaCfg.LogConfiguration(cfg.Log.Info)
	if !kafkaCfg.Enabled {
		return events.NopPublisher{}, nil
	}

	producer, err := kafka.NewProducer(kafkaCfg, cfg.Log.Component("kafka"))
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka producer", "error", err)
	}
	producer.Use(kafkamiddleware.LoggingProducerMiddleware(cfg.Log.Component("kafka")))
	cfg.Log.Info("Booking events enabled", "topic", producer.Topic())
	return events.NewKafkaPublisher(producer, kafkaCfg.PublishTimeout), producer
}
