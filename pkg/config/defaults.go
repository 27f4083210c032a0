package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "voltslot"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultPort     = "8080"
	DefaultLogLevel = "info"

	DefaultRateLimitRequests = 30
	DefaultRateLimitWindow   = 1 * time.Minute

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	// Rolling window of pre-generated time slots per station.
	DefaultSlotHorizonDays = 30
	MaxSlotHorizonDays     = 90

	DefaultBookingLockTTL      = 10 * time.Second
	DefaultNoShowSweepInterval = 5 * time.Minute

	DefaultKafkaEnabled      = false
	DefaultKafkaBookingTopic = "voltslot.bookings"

	DefaultPaginationLimit = 20
	MaxPaginationLimit     = 100
)
