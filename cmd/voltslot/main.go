package main

import (
	bookinghandler "voltslot/internal/bookings/handler"
	bookingrepo "voltslot/internal/bookings/repository"
	bookingservice "voltslot/internal/bookings/service"
	slothandler "voltslot/internal/slots/handler"
	slotrepo "voltslot/internal/slots/repository"
	slotservice "voltslot/internal/slots/service"
	stationhandler "voltslot/internal/stations/handler"
	stationrepo "voltslot/internal/stations/repository"
	stationservice "voltslot/internal/stations/service"
	"voltslot/internal/stations/validator"
	"voltslot/pkg/app"
	"voltslot/pkg/config"
	"voltslot/pkg/kafka"
	kafkaconfig "voltslot/pkg/kafka/config"
)

const ServiceName = "voltslot"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()

	cfg.Log.Info("Starting reservation engine")

	stations, slots, bookings, sweeper := initServices(cfg)

	serverApp := app.NewApplication()
	serverApp.SetApp(cfg,
		stationhandler.NewStationHandler(stations, cfg.Log),
		slothandler.NewTimeSlotHandler(slots, cfg.Log),
		bookinghandler.NewBookingHandler(bookings, cfg.Log),
	)
	serverApp.AddWorker(sweeper)
	serverApp.Run()
}

func initServices(cfg *config.Config) (
	stationservice.StationService,
	slotservice.SlotService,
	bookingservice.BookingService,
	*bookingservice.NoShowSweeper,
) {
	stationRepo := stationrepo.NewMongoStationRepository(cfg)
	slotRepo := slotrepo.NewMongoTimeSlotRepository(cfg)
	bookingRepo := bookingrepo.NewMongoBookingRepository(cfg)
	lockRepo := bookingrepo.NewBookingLockRepository(cfg)

	slotService := slotservice.NewSlotService(slotRepo, stationRepo, cfg)
	stationService := stationservice.NewStationService(
		stationRepo,
		validator.NewStationValidator(cfg.Log),
		slotService,
		bookingRepo,
		cfg,
	)
	bookingService := bookingservice.NewBookingService(
		bookingRepo,
		lockRepo,
		slotRepo,
		stationRepo,
		initPublisher(cfg),
		cfg,
	)
	sweeper := bookingservice.NewNoShowSweeper(
		bookingService,
		cfg.NoShowSweepInterval,
		cfg.RequestTimeout,
		cfg.Log,
	)

	cfg.Log.Info("Reservation services initialized", "database", cfg.MongoDatabaseName)
	return stationService, slotService, bookingService, sweeper
}

func initPublisher(cfg *config.Config) bookingservice.EventPublisher {
	if !cfg.KafkaEnabled {
		cfg.Log.Info("Kafka publishing disabled")
		return nil
	}

	producer, err := kafka.NewProducer(kafkaconfig.Load(), cfg.KafkaBookingTopic)
	if err != nil {
		cfg.Log.Fatal("Failed to initialize Kafka producer", "error", err)
	}
	cfg.Log.Info("Kafka producer initialized", "topic", cfg.KafkaBookingTopic)
	return producer
}
