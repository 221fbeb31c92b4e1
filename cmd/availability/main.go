package main

import (
	"hostly/internal/availability/handler"
	"hostly/internal/availability/service"
	catalogrepo "hostly/internal/catalog/repository"
	reservationsrepo "hostly/internal/reservations/repository"
	"hostly/pkg/app"
	"hostly/pkg/config"
)

const ServiceName = "availability"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	cfg.Log.Info("Starting Availability service")
	availabilityService := initServices(cfg)
	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(handler.NewAvailabilityHandler(availabilityService, cfg.Log))
	serverApp.Run()
}

func initServices(cfg *config.Config) service.AvailabilityService {
	roomTypeRepo := catalogrepo.NewMongoRoomTypeRepository(cfg)
	unitRepo := reservationsrepo.NewMongoRoomUnitRepository(cfg)

	availabilityService := service.NewAvailabilityService(roomTypeRepo, unitRepo, cfg)

	cfg.Log.Info("Availability service initialized", "database", cfg.MongoDatabaseName)
	return availabilityService
}
