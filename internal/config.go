package internal

import "time"

// Config is the process configuration, loaded from the environment.
type Config struct {
	Host string `env:"HOST,default=localhost"`
	Port int    `env:"PORT,default=8000"`

	BadgerFilepath string `env:"BADGER_FILEPATH,required=true"`
	LogLevel       string `env:"LOG_LEVEL,default=info"`

	Secret            string        `env:"SECRET,required=true"`
	AuthTokenDuration time.Duration `env:"AUTH_TOKEN_DURATION,default=30m"`

	// Per-subscriber delivery queue size for the event bus.
	ConnectionBufferSize int `env:"CONNECTION_BUFFER_SIZE,default=16"`

	// Batch window of the per-request user loader.
	LoaderWait time.Duration `env:"LOADER_WAIT,default=2ms"`

	HealthInterval time.Duration `env:"HEALTH_INTERVAL,default=10s"`
}
