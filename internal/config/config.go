package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ErrConfigFailed обозначает любую проблему с чтением или разбором config.yaml.
var ErrConfigFailed = errors.New("config: failed to load")

const (
	DefaultGatewayURL   = "wss://gateway.discord.gg/?v=10&encoding=json"
	DefaultAPIURL       = "https://discord.com/api/v10"
	DefaultPollInterval = 60 * time.Second
	DefaultTimeout      = 10 * time.Second
	DefaultHours        = 3
)

type SSC struct {
	Endpoint     string        `yaml:"endpoint"`
	Key          string        `yaml:"-"` // только из окружения (SSC_KEY)
	Client       string        `yaml:"client"`
	DemoRootPath string        `yaml:"demo_root_path"`
	Timeout      time.Duration `yaml:"timeout"`
}

type Discord struct {
	Token        string        `yaml:"-"` // только из окружения (DISCORD_TOKEN)
	Channels     []string      `yaml:"channels"`
	PollInterval time.Duration `yaml:"poll_interval"`
	GatewayURL   string        `yaml:"gateway_url"`
	APIURL       string        `yaml:"api_url"`
	Intents      int           `yaml:"intents"`
}

type Booking struct {
	Hours int `yaml:"hours"`
}

// Config хранит настройки бота, это файл config.yaml + секреты из окружения/.env.
type Config struct {
	LogLevel   string `yaml:"log_level"`
	LogFormat  string `yaml:"log_format"`
	HealthAddr string `yaml:"health_addr"`

	SSC     SSC     `yaml:"ssc"`
	Discord Discord `yaml:"discord"`
	Booking Booking `yaml:"booking"`
}

// Error содержит дополнительный контекст при неудачной загрузке конфигурации.
type Error struct {
	Path string
	Err  error
}

func (e *Error) Error() string {
	if e == nil {
		return ErrConfigFailed.Error()
	}
	return fmt.Sprintf("%v: %s: %v", ErrConfigFailed, e.Path, e.Err)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func (e *Error) Is(target error) bool {
	return target == ErrConfigFailed
}

// Load читает YAML, подмешивает переменные окружения (.env в рабочем каталоге
// подхватывается, если есть) и валидирует результат.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, &Error{Path: path, Err: errors.New("config path is empty")}
	}
	_ = godotenv.Load() // .env необязателен; уже выставленные переменные не перетираются

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &Error{Path: path, Err: err}
	}
	return Parse(path, data)
}

// Parse разбирает содержимое config.yaml; path нужен только для текста ошибки.
func Parse(path string, data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, &Error{Path: path, Err: err}
	}

	cfg.applyEnv()
	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return nil, &Error{Path: path, Err: err}
	}
	return &cfg, nil
}

func (c *Config) applyEnv() {
	c.Discord.Token = os.Getenv("DISCORD_TOKEN")
	c.SSC.Key = os.Getenv("SSC_KEY")
	if v := os.Getenv("SSC_ENDPOINT"); v != "" {
		c.SSC.Endpoint = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
}

func (c *Config) applyDefaults() {
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.LogFormat == "" {
		c.LogFormat = "json"
	}
	if c.SSC.Timeout == 0 {
		c.SSC.Timeout = DefaultTimeout
	}
	if c.Discord.PollInterval == 0 {
		c.Discord.PollInterval = DefaultPollInterval
	}
	if c.Discord.GatewayURL == "" {
		c.Discord.GatewayURL = DefaultGatewayURL
	}
	if c.Discord.APIURL == "" {
		c.Discord.APIURL = DefaultAPIURL
	}
	if c.Booking.Hours == 0 {
		c.Booking.Hours = DefaultHours
	}
	c.SSC.Endpoint = strings.TrimRight(c.SSC.Endpoint, "/")
	c.SSC.DemoRootPath = strings.TrimRight(c.SSC.DemoRootPath, "/")
}

func (c *Config) validate() error {
	var missing []string
	if c.Discord.Token == "" {
		missing = append(missing, "DISCORD_TOKEN")
	}
	if c.SSC.Key == "" {
		missing = append(missing, "SSC_KEY")
	}
	if c.SSC.Endpoint == "" {
		missing = append(missing, "ssc.endpoint")
	}
	if c.SSC.DemoRootPath == "" {
		missing = append(missing, "ssc.demo_root_path")
	}
	if c.SSC.Client == "" {
		missing = append(missing, "ssc.client")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required values: %s", strings.Join(missing, ", "))
	}

	if c.Booking.Hours < 0 {
		return fmt.Errorf("booking.hours must be positive (got %d)", c.Booking.Hours)
	}
	if c.Discord.PollInterval < 0 {
		return fmt.Errorf("discord.poll_interval must be positive (got %s)", c.Discord.PollInterval)
	}
	if c.SSC.Timeout < 0 {
		return fmt.Errorf("ssc.timeout must be positive (got %s)", c.SSC.Timeout)
	}
	return nil
}
