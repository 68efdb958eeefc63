package env

import (
	"errors"
	"fmt"
	"os"
	"time"

	envparse "github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	ListenAddr     string   `env:"SIGNAL_LISTEN_ADDR" envDefault:":83"`
	UserSecret     string   `env:"USER_SECRET,required,notEmpty"`
	UserCollection string   `env:"USER_COLLECTION" envDefault:"users"`
	AllowedOrigins []string `env:"WEB_URL" envSeparator:","`

	ChatRedisURL  string `env:"CHAT_REDIS_URL"`
	ChatRedisPass string `env:"CHAT_REDIS_PASS"`
	EventsChannel string `env:"SIGNAL_EVENTS_CHANNEL" envDefault:"calls:events"`

	AWSRegion        string `env:"AWS_REGION"`
	AWSID            string `env:"AWS_ID"`
	AWSSecret        string `env:"AWS_SECRET"`
	AWSToken         string `env:"AWS_TOKEN"`
	DynamoDBEndpoint string `env:"DYNAMODB_ENDPOINT"`
	UsersTable       string `env:"USERS_TABLE" envDefault:"Users"`

	ReadLimit    int64         `env:"WS_READ_LIMIT_BYTES" envDefault:"524288"`
	WriteTimeout time.Duration `env:"WS_WRITE_TIMEOUT" envDefault:"10s"`
	PongWait     time.Duration `env:"WS_PONG_WAIT" envDefault:"60s"`
	PingInterval time.Duration `env:"WS_PING_INTERVAL" envDefault:"30s"`
	SendBuffer   int           `env:"WS_SEND_BUFFER" envDefault:"64"`

	EventWorkers   int `env:"SIGNAL_EVENT_WORKERS" envDefault:"2"`
	EventQueueSize int `env:"SIGNAL_EVENT_QUEUE_SIZE" envDefault:"256"`
	HTTPWorkers    int `env:"HTTP_WORKERS" envDefault:"10"`
	HTTPQueueSize  int `env:"HTTP_QUEUE_SIZE" envDefault:"10"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`
}

// Load reads the process environment, seeded from a .env file in the
// working directory when one exists. Variables already set win over the file.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("env: load .env: %w", err)
	}
	return Parse()
}

// Parse reads the process environment without touching .env files.
func Parse() (Config, error) {
	var cfg Config
	if err := envparse.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.PingInterval <= 0 || c.PongWait <= 0 {
		return fmt.Errorf("env: WS_PING_INTERVAL and WS_PONG_WAIT must be positive")
	}
	if c.PingInterval >= c.PongWait {
		return fmt.Errorf("env: WS_PING_INTERVAL (%s) must be lower than WS_PONG_WAIT (%s)", c.PingInterval, c.PongWait)
	}
	if c.SendBuffer < 1 {
		return fmt.Errorf("env: WS_SEND_BUFFER must be at least 1")
	}
	if c.EventWorkers < 1 || c.HTTPWorkers < 1 {
		return fmt.Errorf("env: worker counts must be at least 1")
	}
	if c.EventQueueSize < 1 || c.HTTPQueueSize < 1 {
		return fmt.Errorf("env: queue sizes must be at least 1")
	}
	return nil
}

func (c Config) RedisEnabled() bool {
	return c.ChatRedisURL != ""
}

func (c Config) DirectoryEnabled() bool {
	return c.AWSRegion != ""
}
