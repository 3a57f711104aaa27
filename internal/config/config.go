package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds the environment driven configuration for the shareboard service.
type Config struct {
	// Service Configuration
	ServiceName     string        `env:"SERVICE_NAME" envDefault:"shareboard"`
	Environment     string        `env:"ENVIRONMENT" envDefault:"development"`
	HTTPPort        int           `env:"SHAREBOARD_PORT" envDefault:"3000"`
	LogLevel        string        `env:"SHAREBOARD_LOG_LEVEL" envDefault:"info"`
	LogFormat       string        `env:"SHAREBOARD_LOG_FORMAT" envDefault:"console"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`

	// Storage
	DatabasePath string `env:"SHAREBOARD_DB_PATH" envDefault:"data/shareboard.db"`
	UploadDir    string `env:"SHAREBOARD_UPLOAD_DIR" envDefault:"uploads"`

	// Upload limits
	MaxUploadBytes  int64 `env:"SHAREBOARD_MAX_UPLOAD_BYTES" envDefault:"524288000"` // 500MB
	MaxFilesPerPost int   `env:"SHAREBOARD_MAX_FILES_PER_POST" envDefault:"10"`

	// Recycle bin cleanup defaults (runtime-mutable, resets on restart)
	CleanupEnabled    bool `env:"SHAREBOARD_CLEANUP_ENABLED" envDefault:"false"`
	CleanupPeriodDays int  `env:"SHAREBOARD_CLEANUP_PERIOD_DAYS" envDefault:"30"`

	// Transcoding
	FFmpegBinary     string        `env:"SHAREBOARD_FFMPEG_BINARY" envDefault:"ffmpeg"`
	TranscodeTimeout time.Duration `env:"SHAREBOARD_TRANSCODE_TIMEOUT" envDefault:"10m"`

	// Speech vendor (static pre-shared credentials)
	SpeechAPIBase     string        `env:"SPEECH_API_BASE" envDefault:"https://openspeech.bytedance.com"`
	SpeechAppID       string        `env:"SPEECH_APP_ID"`
	SpeechAccessToken string        `env:"SPEECH_ACCESS_TOKEN"`
	SpeechHTTPTimeout time.Duration `env:"SPEECH_HTTP_TIMEOUT" envDefault:"120s"`
	SpeechPollEvery   time.Duration `env:"SPEECH_POLL_INTERVAL" envDefault:"2s"`
	SpeechPollBudget  time.Duration `env:"SPEECH_POLL_BUDGET" envDefault:"6m"`
}

// Load parses environment variables into Config.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env config: %w", err)
	}

	cfg.SpeechAPIBase = strings.TrimSuffix(strings.TrimSpace(cfg.SpeechAPIBase), "/")
	cfg.SpeechAppID = strings.TrimSpace(cfg.SpeechAppID)
	cfg.SpeechAccessToken = strings.TrimSpace(cfg.SpeechAccessToken)
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 500 * 1024 * 1024
	}
	if cfg.MaxFilesPerPost <= 0 {
		cfg.MaxFilesPerPost = 10
	}
	if cfg.CleanupPeriodDays <= 0 {
		cfg.CleanupPeriodDays = 30
	}
	return cfg, nil
}

// Addr returns the HTTP listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}
