package main

import (
	"hostly/internal/catalog/handler"
	"hostly/internal/catalog/repository"
	"hostly/internal/catalog/service"
	"hostly/internal/catalog/validator"
	"hostly/pkg/app"
	"hostly/pkg/config"
)

const ServiceName = "catalog"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	cfg.Log.Info("Starting Catalog service")
	roomTypeService := initServices(cfg)
	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(handler.NewRoomTypeHandler(roomTypeService, cfg.Log))
	serverApp.Run()
}

func initServices(cfg *config.Config) service.RoomTypeService {
	roomTypeValidator := validator.NewRoomTypeValidator(cfg.Log)
	roomTypeRepo := repository.NewMongoRoomTypeRepository(cfg)
	unitRepo := repository.NewMongoRoomUnitRepository(cfg)

	roomTypeService := service.NewRoomTypeService(
		roomTypeRepo,
		unitRepo,
		roomTypeValidator,
		cfg,
	)

	cfg.Log.Info("Room type service initialized", "database", cfg.MongoDatabaseName)
	return roomTypeService
}
