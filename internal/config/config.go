package config

import (
	"os"
	"path"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v2"
)

type Config struct {
	Public  Public
	Private Private
}

// Public holds settings safe to commit alongside the code.
// Durations are plain numbers of seconds in yaml; call sites multiply
// by time.Second.
type Public struct {
	Pg                        Pg            `yaml:"pg"`
	OpsAddr                   string        `yaml:"ops_addr" validate:"required"`
	LogLevel                  string        `yaml:"log_level"`
	LogJSON                   bool          `yaml:"log_json"`
	SweepInterval             time.Duration `yaml:"sweep_interval" validate:"required,min=1"`
	DeliveryMaxAttempts       int           `yaml:"delivery_max_attempts" validate:"required,min=1"`
	DeliveryRetryDelay        time.Duration `yaml:"delivery_retry_delay" validate:"required,min=1"`
	BroadcastConfirmThreshold int           `yaml:"broadcast_confirm_threshold" validate:"required,min=1"`
	PendingNoticeThreshold    int           `yaml:"pending_notice_threshold" validate:"required,min=1"`
	VaultPageSize             int           `yaml:"vault_page_size" validate:"required,min=1"`
	AllowedOrigins            []string      `yaml:"allowed_origins"`
}

type Pg struct {
	Host     string `yaml:"host" validate:"required"`
	Port     int    `yaml:"port" validate:"required"`
	User     string `yaml:"user" validate:"required"`
	Password string `yaml:"password"`
	Dbname   string `yaml:"dbname" validate:"required"`
	// InitPath points at the schema script applied on startup.
	// Empty skips initialization (the test harness applies it itself).
	InitPath string `yaml:"init_path"`
}

// Private holds secrets loaded from a separate, uncommitted file.
type Private struct {
	BotToken  string  `yaml:"bot_token" validate:"required"`
	Uploaders []int64 `yaml:"uploaders" validate:"required,min=1"`
}

func mustLoadPath(configPath string, output interface{}) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		panic("config file does not exist: " + configPath)
	}
	configFile, err := os.ReadFile(configPath)
	if err != nil {
		panic("can't read config file")
	}

	err = yaml.Unmarshal(configFile, output)
	if err != nil {
		panic("can't unmarshal config file")
	}
}

func MustLoad(configFolder string) *Config {
	var public Public
	mustLoadPath(path.Join(configFolder, "public.yaml"), &public)

	var private Private
	mustLoadPath(path.Join(configFolder, "private.yaml"), &private)

	cfg := &Config{public, private}

	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(cfg); err != nil {
		panic("invalid config: " + err.Error())
	}
	return cfg
}
