package config

import "time"

const (
	StoreMemory = "memory"
	StoreMongo  = "mongo"
)

type Config struct {
	App   AppConfig      `env-prefix:"APP_"`
	HTTP  HTTPConfig     `env-prefix:"HTTP_"`
	Store StoreConfig    `env-prefix:"STORE_"`
	Mongo DatabaseConfig `env-prefix:"MONGO_"`
	Redis RedisConfig    `env-prefix:"REDIS_"`
	Auth  AuthConfig     `env-prefix:"AUTH_"`
}

type AppConfig struct {
	Env      string `env:"ENV" env-default:"development"`
	LogLevel string `env:"LOG_LEVEL" env-default:"info"`
	LogJSON  bool   `env:"LOG_JSON" env-default:"false"`
	LogFile  string `env:"LOG_FILE"`
	// DevUser, when set, signs every request in as this user. Development only.
	DevUser string `env:"DEV_USER"`
}

type HTTPConfig struct {
	Addr          string        `env:"ADDR" env-default:":8080"`
	ReadTimeout   time.Duration `env:"READ_TIMEOUT" env-default:"10s"`
	WriteTimeout  time.Duration `env:"WRITE_TIMEOUT" env-default:"10s"`
	AllowedOrigin string        `env:"ALLOWED_ORIGIN" env-default:"http://localhost:3000"`
	MaxBodyBytes  int64         `env:"MAX_BODY_BYTES" env-default:"1048576"`
}

type StoreConfig struct {
	Backend string `env:"BACKEND" env-default:"memory"`
}

type AuthConfig struct {
	JWTSecret  string        `env:"JWT_SECRET"`
	Issuer     string        `env:"ISSUER"`
	Leeway     time.Duration `env:"LEEWAY" env-default:"30s"`
	CookieName string        `env:"COOKIE_NAME" env-default:"sb-access-token"`
}

func (c Config) IsProduction() bool {
	return c.App.Env == "production"
}
