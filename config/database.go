package config

import "time"

type DatabaseConfig struct {
	URI             string        `env:"URI" env-default:"mongodb://localhost:27017"`
	MaxPoolSize     uint64        `env:"MAX_POOL_SIZE" env-default:"100"`
	MinPoolSize     uint64        `env:"MIN_POOL_SIZE" env-default:"10"`
	MaxConnIdleTime time.Duration `env:"MAX_CONN_IDLE_TIME" env-default:"60s"`
	DatabaseName    string        `env:"DB" env-default:"quicknotes"`
	RetryWrites     bool          `env:"RETRY_WRITES" env-default:"true"`
	ConnectRetries  uint          `env:"CONNECT_RETRIES" env-default:"5"`
	ConnectTimeout  time.Duration `env:"CONNECT_TIMEOUT" env-default:"10s"`
}

type RedisConfig struct {
	Enabled bool   `env:"ENABLED" env-default:"false"`
	URL     string `env:"URL" env-default:"redis://localhost:6379/0"`
}
