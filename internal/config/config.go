package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/saturnino-fabrica-de-software/portaria/internal/domain"
)

// Deployment modes select the transition policy.
const (
	ModeAttendance = "attendance"
	ModeZone       = "zone"
)

// Log store backends.
const (
	StoreXLSX     = "xlsx"
	StorePostgres = "postgres"
	StoreSQLite   = "sqlite"
	StoreMemory   = "memory"
)

const (
	defaultAttendanceAPICooldown = 2500 * time.Millisecond
	defaultZoneAPICooldown       = 1200 * time.Millisecond
)

type Config struct {
	Environment string `envconfig:"ENV" default:"development"`
	LogLevel    string `envconfig:"LOG_LEVEL"`
	Mode        string `envconfig:"MODE" default:"attendance"`

	// Timing. API_COOLDOWN has a per-mode default applied in Load.
	APICooldown   time.Duration `envconfig:"API_COOLDOWN"`
	EventCooldown time.Duration `envconfig:"EVENT_COOLDOWN" default:"2.5s"`
	MinExitGap    time.Duration `envconfig:"MIN_EXIT_GAP" default:"20m"`
	ReentryBlock  time.Duration `envconfig:"REENTRY_BLOCK" default:"21h"`
	LineY         int           `envconfig:"LINE_Y" default:"240"`

	// Recognizer
	Recognizer            string        `envconfig:"RECOGNIZER" default:"facecloud"`
	MinScore              float64       `envconfig:"MIN_SCORE" default:"0.6"`
	SearchMode            string        `envconfig:"SEARCH_MODE" default:"fast"`
	RecognitionTimeout    time.Duration `envconfig:"RECOGNITION_TIMEOUT" default:"10s"`
	FaceCloudURL          string        `envconfig:"FACECLOUD_URL" default:"https://us.opencv.fr"`
	FaceCloudAPIKey       string        `envconfig:"FACECLOUD_API_KEY"`
	FaceCloudCollection   string        `envconfig:"FACECLOUD_COLLECTION"`
	AWSRegion             string        `envconfig:"AWS_REGION" default:"us-east-1"`
	RekognitionCollection string        `envconfig:"REKOGNITION_COLLECTION" default:"portaria"`
	MockPersonID          string        `envconfig:"MOCK_PERSON_ID" default:"demo"`
	MockPersonName        string        `envconfig:"MOCK_PERSON_NAME" default:"Demo Person"`
	PeopleFile            string        `envconfig:"PEOPLE_FILE"`

	// Attendance log
	Store       string `envconfig:"STORE" default:"xlsx"`
	XLSXPath    string `envconfig:"XLSX_PATH" default:"attendance_log.xlsx"`
	DatabaseURL string `envconfig:"DATABASE_URL"`
	SQLitePath  string `envconfig:"SQLITE_PATH" default:"./data/portaria.db"`
	AutoMigrate bool   `envconfig:"AUTO_MIGRATE" default:"true"`

	// Capture
	CameraDevice string `envconfig:"CAMERA_DEVICE" default:"0"`
	CascadePath  string `envconfig:"CASCADE_PATH" default:"haarcascade_frontalface_default.xml"`
	FrameWidth   int    `envconfig:"FRAME_WIDTH" default:"640"`
	FrameHeight  int    `envconfig:"FRAME_HEIGHT" default:"480"`
	Preview      bool   `envconfig:"PREVIEW" default:"true"`

	// Notification
	SpeechEnabled bool   `envconfig:"SPEECH_ENABLED" default:"true"`
	SpeechCommand string `envconfig:"SPEECH_COMMAND" default:"espeak"`
	WebhookURL    string `envconfig:"WEBHOOK_URL"`
	WebhookSecret string `envconfig:"WEBHOOK_SECRET"`

	// Status API
	HTTPEnabled bool `envconfig:"HTTP_ENABLED" default:"true"`
	Port        int  `envconfig:"PORT" default:"3000"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	cfg.applyModeDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) applyModeDefaults() {
	if c.APICooldown > 0 {
		return
	}
	if c.Mode == ModeZone {
		c.APICooldown = defaultZoneAPICooldown
	} else {
		c.APICooldown = defaultAttendanceAPICooldown
	}
}

// Validate rejects settings the poller cannot run with.
func (c *Config) Validate() error {
	switch c.Mode {
	case ModeAttendance, ModeZone:
	default:
		return domain.ErrInvalidConfig.WithError(fmt.Errorf("unknown mode %q (supported: %s, %s)", c.Mode, ModeAttendance, ModeZone))
	}

	switch c.Store {
	case StoreXLSX, StoreSQLite, StoreMemory:
	case StorePostgres:
		if c.DatabaseURL == "" {
			return domain.ErrInvalidConfig.WithError(fmt.Errorf("DATABASE_URL is required for store %q", c.Store))
		}
	default:
		return domain.ErrInvalidConfig.WithError(fmt.Errorf("unknown store %q", c.Store))
	}

	switch c.Recognizer {
	case "facecloud", "rekognition", "mock":
	default:
		return domain.ErrInvalidConfig.WithError(fmt.Errorf("unknown recognizer %q", c.Recognizer))
	}

	switch c.SearchMode {
	case "fast", "accurate":
	default:
		return domain.ErrInvalidConfig.WithError(fmt.Errorf("SEARCH_MODE must be fast or accurate, got %q", c.SearchMode))
	}

	durations := map[string]time.Duration{
		"API_COOLDOWN":   c.APICooldown,
		"EVENT_COOLDOWN": c.EventCooldown,
		"MIN_EXIT_GAP":   c.MinExitGap,
		"REENTRY_BLOCK":  c.ReentryBlock,
	}
	for name, d := range durations {
		if d <= 0 {
			return domain.ErrInvalidConfig.WithError(fmt.Errorf("%s must be positive, got %s", name, d))
		}
	}

	if c.MinScore < 0 || c.MinScore > 1 {
		return domain.ErrInvalidConfig.WithError(fmt.Errorf("MIN_SCORE must be between 0 and 1, got %v", c.MinScore))
	}

	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
