package main

import (
	"hostly/internal/reservations/handler"
	"hostly/internal/reservations/repository"
	"hostly/internal/reservations/service"
	"hostly/internal/reservations/validator"
	"hostly/pkg/app"
	"hostly/pkg/config"
	"hostly/pkg/kafka"
	kafka_config "hostly/pkg/kafka/config"
	kafka_middleware "hostly/pkg/kafka/middleware"
)

const (
	ServiceName    = "reservations"
	EventsTopic    = "reservation-events"
	EventsDLQTopic = "reservation-events-dlq"
)

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	cfg.Log.Info("Starting Reservations service")

	producer := initProducer(cfg)
	if producer != nil {
		defer func() {
			if err := producer.Close(); err != nil {
				cfg.Log.Error("Failed to close Kafka producer", "error", err)
			}
		}()
	}

	reservationService := initServices(cfg, producer)
	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(handler.NewReservationHandler(reservationService, cfg.Log))
	serverApp.Run()
}

// initProducer builds the lifecycle-event producer. Event delivery is
// best-effort, so a producer that cannot be built downgrades the service to
// running without events instead of failing startup.
func initProducer(cfg *config.Config) *kafka.Producer {
	kafkaCfg := kafka_config.Load()
	kafkaCfg.LogConfiguration(cfg.Log.Info)

	producer, err := kafka.NewProducer(kafkaCfg, EventsTopic, EventsDLQTopic)
	if err != nil {
		cfg.Log.Warn("Kafka producer unavailable, reservation events disabled", "error", err)
		return nil
	}

	if kafkaCfg.EnableMiddleware {
		producer.Use(kafka_middleware.LoggingProducerMiddleware(cfg.Log))
		producer.Use(kafka_middleware.MetricsProducerMiddleware())
	}

	return producer
}

func initServices(cfg *config.Config, producer *kafka.Producer) service.ReservationService {
	reservationValidator := validator.NewReservationValidator(cfg)
	reservationRepo := repository.NewMongoReservationRepository(cfg)
	unitRepo := repository.NewMongoRoomUnitRepository(cfg)
	lockRepo := repository.NewRoomLockRepository(cfg)

	var events service.EventPublisher
	if producer != nil {
		events = producer
	}

	reservationService := service.NewReservationService(
		reservationRepo,
		unitRepo,
		lockRepo,
		reservationValidator,
		events,
		cfg,
	)

	cfg.Log.Info("Reservation service initialized", "database", cfg.MongoDatabaseName)
	return reservationService
}
