package config

import "time"

type Config struct {
	Environment Environment
	Log         Log
	HTTP        HTTPServer
	BaseURL     string `env:"BASE_URL" envDefault:"http://localhost:8080"`

	DB       Database `envPrefix:"DB_"`
	JWT      JWT      `envPrefix:"JWT_"`
	Midtrans Midtrans `envPrefix:"MIDTRANS_"`
	Region   Region   `envPrefix:"REGION_"`
	Redis    Redis    `envPrefix:"REDIS_"`
	Kafka    Kafka    `envPrefix:"KAFKA_"`
	Expiry   Expiry   `envPrefix:"EXPIRY_"`
	OTP      OTP      `envPrefix:"OTP_"`
}

type Environment struct {
	Name string `env:"ENVIRONMENT" envDefault:"development"`
}

func (e Environment) IsProduction() bool {
	return e.Name == "production"
}

type Log struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}

type HTTPServer struct {
	Host string `env:"HTTP_HOST" envDefault:"0.0.0.0"`
	Port string `env:"HTTP_PORT" envDefault:"8080"`
	// requests per second allowed per client IP on /api/auth
	AuthRateLimit float64 `env:"HTTP_AUTH_RATE_LIMIT" envDefault:"5"`
}

// Database.Driver is one of mysql, postgres or sqlite.
type Database struct {
	Driver       string `env:"DRIVER" envDefault:"mysql"`
	URL          string `env:"URL"`
	MaxIdleConns int    `env:"MAX_IDLE_CONNS" envDefault:"10"`
	MaxOpenConns int    `env:"MAX_OPEN_CONNS" envDefault:"50"`
	AutoMigrate  bool   `env:"AUTO_MIGRATE" envDefault:"true"`
	Seed         bool   `env:"SEED" envDefault:"false"`
}

type JWT struct {
	Secret string        `env:"SECRET" envDefault:"rahasia"`
	TTL    time.Duration `env:"TTL" envDefault:"168h"`
}

type Midtrans struct {
	BaseApiURL string `env:"BASE_API_URL" envDefault:"https://app.sandbox.midtrans.com"`
	ServerKey  string `env:"SERVER_KEY"`
	ClientKey  string `env:"CLIENT_KEY"`
	FinishURL  string `env:"FINISH_URL"`
}

type Region struct {
	BaseURL  string        `env:"BASE_URL" envDefault:"https://wilayah.web.id/api"`
	CacheTTL time.Duration `env:"CACHE_TTL" envDefault:"24h"`
}

// Redis.Addr empty means the in-process cache is used instead.
type Redis struct {
	Addr     string `env:"ADDR"`
	Password string `env:"PASSWORD"`
	DB       int    `env:"DB" envDefault:"0"`
}

// Kafka.Brokers empty disables event publishing.
type Kafka struct {
	Brokers []string `env:"BROKERS" envSeparator:","`
	Topic   string   `env:"TOPIC" envDefault:"orders.events"`
	Buffer  int      `env:"BUFFER" envDefault:"256"`
}

// Expiry.SweepInterval zero keeps expiry read-triggered only.
type Expiry struct {
	SweepInterval time.Duration `env:"SWEEP_INTERVAL" envDefault:"0s"`
}

type OTP struct {
	TTL time.Duration `env:"TTL" envDefault:"10m"`
}
