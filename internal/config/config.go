package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	// Application
	Version     string
	Environment string
	HUDID       string
	Port        int
	LogLevel    string

	// Logdy (lightweight web log viewer)
	LogdyEnabled bool
	LogdyHost    string
	LogdyPort    int

	// NATS (for the state feed and telemetry)
	// Default: nats://localhost:4222 (works with Docker Compose setup)
	// Docker: Use nats://nats:4222 if running the HUD in Docker
	NatsURL            string
	NatsConnectTimeout time.Duration
	NatsReconnectWait  time.Duration
	NatsMaxReconnects  int
	NatsDrainTimeout   time.Duration // For graceful shutdown

	// Subject prefixes; the HUD id is appended as the last token
	StateSubjectPrefix       string
	CalibrationSubjectPrefix string
	TelemetrySubjectPrefix   string
	AlertsSubjectPrefix      string

	// State feed
	StateTimeout       time.Duration // No state for this long means offroad
	StateCheckInterval time.Duration

	// Video capture
	VideoSource          string // Device index ("0") or stream URL
	CaptureWidth         int
	CaptureHeight        int
	CaptureTimeout       time.Duration
	MaxConsecutiveErrors int // Reset the capture after this many bad reads

	// Backoff/Jitter config for capture reconnections
	ReconnectBackoffMin time.Duration
	ReconnectBackoffMax time.Duration
	ReconnectJitterPct  int

	// Camera intrinsics for the frame projection
	CameraFocalX  float64
	CameraFocalY  float64
	CameraCenterX float64
	CameraCenterY float64

	// HUD rendering
	HUDZoom         float64
	MinLaneProb     float64
	FPSTimeConstant time.Duration // Smoothing for the draw-rate estimate
	NominalFPS      int
	FPSThreshold    float64 // Below this the overlay recompute is throttled
	SkipStride      int     // Recompute every Nth frame while throttled

	// Overlay layers
	ShowLaneLines     bool
	ShowRoadEdges     bool
	ShowLeads         bool
	ShowHUD           bool
	ShowDM            bool
	ShowScanner       bool
	ShowDebugStats    bool
	RenderEmptyAlerts bool

	// Buffer sizes
	StateBufferSize int // State snapshots waiting for the paint goroutine
	FrameBufferSize int // Raw frames from OpenCV

	// Telemetry via NATS
	TelemetryEnabled  bool
	TelemetryInterval time.Duration // Min gap between draw-telemetry publishes
	AlertsCooldown    time.Duration

	// Image compression for alert snapshots (to prevent NATS payload exceeded errors)
	ImageCompressionEnabled bool
	MaxImageWidth           int
	MaxImageHeight          int
	ImageQuality            int // JPEG quality (1-100)

	// MJPEG preview
	PreviewFPS     int
	PreviewQuality int

	// Alert clip recording
	RecordingEnabled bool
	VideoOutputDir   string
	ClipSeconds      int // Length of an alert-triggered clip
	VideoMaxClips    int // Max clips to keep on disk

	// Swagger Configuration
	SwaggerHost string
	SwaggerPort int

	// Health Check
	HealthCheckInterval time.Duration
	FrameStaleThreshold time.Duration

	// Graceful Shutdown
	ShutdownTimeout time.Duration
}

func Load() *Config {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Debug().Err(err).Msg("No .env file found or error loading .env file, using environment variables and defaults")
	} else {
		log.Info().Msg("Loaded configuration from .env file")
	}

	return &Config{
		// Application
		Version:     getEnv("VERSION", "1.0.0"),
		Environment: getEnv("ENVIRONMENT", "development"),
		HUDID:       getEnv("HUD_ID", "hud-1"),
		Port:        getEnvInt("PORT", 8000),
		LogLevel:    getEnv("LOG_LEVEL", "info"),

		// Logdy (lightweight web log viewer)
		LogdyEnabled: getEnvBool("LOGDY_ENABLED", true),
		LogdyHost:    getEnv("LOGDY_HOST", "localhost"),
		LogdyPort:    getEnvInt("LOGDY_PORT", 8080),

		// NATS (configured for Docker Compose setup)
		NatsURL:            getNatsURL(),
		NatsConnectTimeout: getEnvDuration("NATS_CONNECT_TIMEOUT", 10*time.Second),
		NatsReconnectWait:  getEnvDuration("NATS_RECONNECT_WAIT", 2*time.Second),
		NatsMaxReconnects:  getEnvInt("NATS_MAX_RECONNECTS", -1), // -1 = unlimited
		NatsDrainTimeout:   getEnvDuration("NATS_DRAIN_TIMEOUT", 5*time.Second),

		// Subjects
		StateSubjectPrefix:       getEnv("STATE_SUBJECT_PREFIX", "vehicle.state"),
		CalibrationSubjectPrefix: getEnv("CALIBRATION_SUBJECT_PREFIX", "vehicle.calibration"),
		TelemetrySubjectPrefix:   getEnv("TELEMETRY_SUBJECT_PREFIX", "hud.telemetry"),
		AlertsSubjectPrefix:      getEnv("ALERTS_SUBJECT_PREFIX", "hud.alerts"),

		// State feed
		StateTimeout:       getEnvDuration("STATE_TIMEOUT", 2500*time.Millisecond),
		StateCheckInterval: getEnvDuration("STATE_CHECK_INTERVAL", 500*time.Millisecond),

		// Video capture
		VideoSource:          getEnv("VIDEO_SOURCE", "0"),
		CaptureWidth:         getEnvInt("CAPTURE_WIDTH", 1920),
		CaptureHeight:        getEnvInt("CAPTURE_HEIGHT", 1080),
		CaptureTimeout:       getEnvDuration("CAPTURE_TIMEOUT", 10*time.Second),
		MaxConsecutiveErrors: getEnvInt("MAX_CONSECUTIVE_ERRORS", 30),

		// Backoff/Jitter
		ReconnectBackoffMin: getEnvDuration("RECONNECT_BACKOFF_MIN", 1*time.Second),
		ReconnectBackoffMax: getEnvDuration("RECONNECT_BACKOFF_MAX", 30*time.Second),
		ReconnectJitterPct:  getEnvInt("RECONNECT_JITTER_PCT", 20),

		// Camera intrinsics (defaults match a 1920x1080 road camera)
		CameraFocalX:  getEnvFloat("CAMERA_FOCAL_X", 2648.0),
		CameraFocalY:  getEnvFloat("CAMERA_FOCAL_Y", 2648.0),
		CameraCenterX: getEnvFloat("CAMERA_CENTER_X", 960.0),
		CameraCenterY: getEnvFloat("CAMERA_CENTER_Y", 540.0),

		// HUD rendering
		HUDZoom:         getEnvFloat("HUD_ZOOM", 1.0),
		MinLaneProb:     getEnvFloat("HUD_MIN_LANE_PROB", 0.4),
		FPSTimeConstant: getEnvDuration("HUD_FPS_TIME_CONSTANT", 5*time.Second),
		NominalFPS:      getEnvInt("HUD_NOMINAL_FPS", 30),
		FPSThreshold:    getEnvFloat("HUD_FPS_THRESHOLD", 15.0),
		SkipStride:      getEnvInt("HUD_SKIP_STRIDE", 2),

		// Overlay layers
		ShowLaneLines:     getEnvBool("HUD_SHOW_LANE_LINES", true),
		ShowRoadEdges:     getEnvBool("HUD_SHOW_ROAD_EDGES", true),
		ShowLeads:         getEnvBool("HUD_SHOW_LEADS", true),
		ShowHUD:           getEnvBool("HUD_SHOW_READOUTS", true),
		ShowDM:            getEnvBool("HUD_SHOW_DM", true),
		ShowScanner:       getEnvBool("HUD_SHOW_SCANNER", false),
		ShowDebugStats:    getEnvBool("HUD_SHOW_DEBUG_STATS", false),
		RenderEmptyAlerts: getEnvBool("HUD_RENDER_EMPTY_ALERTS", true),

		// Buffer sizes
		StateBufferSize: getEnvInt("STATE_BUFFER_SIZE", 8),
		FrameBufferSize: getEnvInt("FRAME_BUFFER_SIZE", 4),

		// Telemetry via NATS
		TelemetryEnabled:  getEnvBool("TELEMETRY_ENABLED", true),
		TelemetryInterval: getEnvDuration("TELEMETRY_INTERVAL", 0),
		AlertsCooldown:    getEnvDuration("ALERTS_COOLDOWN", 10*time.Second),

		// Image compression for alert snapshots
		ImageCompressionEnabled: getEnvBool("IMAGE_COMPRESSION_ENABLED", true),
		MaxImageWidth:           getEnvInt("MAX_IMAGE_WIDTH", 1280),
		MaxImageHeight:          getEnvInt("MAX_IMAGE_HEIGHT", 720),
		ImageQuality:            getEnvInt("IMAGE_QUALITY", 80),

		// MJPEG preview
		PreviewFPS:     getEnvInt("PREVIEW_FPS", 15),
		PreviewQuality: getEnvInt("PREVIEW_QUALITY", 70),

		// Alert clip recording
		RecordingEnabled: getEnvBool("RECORDING_ENABLED", false),
		VideoOutputDir:   getEnv("VIDEO_OUTPUT_DIR", "./roadhud-clips"),
		ClipSeconds:      getEnvInt("CLIP_SECONDS", 20),
		VideoMaxClips:    getEnvInt("VIDEO_MAX_CLIPS", 50),

		// Swagger Configuration
		SwaggerHost: getEnv("SWAGGER_HOST", "localhost"),
		SwaggerPort: getEnvInt("SWAGGER_PORT", 8000),

		// Health Check
		HealthCheckInterval: getEnvDuration("HEALTH_CHECK_INTERVAL", 30*time.Second),
		FrameStaleThreshold: getEnvDuration("FRAME_STALE_THRESHOLD", 10*time.Second),

		// Graceful Shutdown
		ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 30*time.Second),
	}
}

// StateSubject returns the vehicle state subject for this HUD
func (c *Config) StateSubject() string {
	return c.StateSubjectPrefix + "." + c.HUDID
}

// CalibrationSubject returns the camera calibration subject for this HUD
func (c *Config) CalibrationSubject() string {
	return c.CalibrationSubjectPrefix + "." + c.HUDID
}

// TelemetrySubject returns the draw telemetry subject for this HUD
func (c *Config) TelemetrySubject() string {
	return c.TelemetrySubjectPrefix + "." + c.HUDID
}

// AlertsSubject returns the alert event subject for this HUD
func (c *Config) AlertsSubject() string {
	return c.AlertsSubjectPrefix + "." + c.HUDID
}

// NominalFrameTime returns the expected inter-frame interval in seconds
func (c *Config) NominalFrameTime() float64 {
	if c.NominalFPS <= 0 {
		return 1.0 / 30
	}
	return 1.0 / float64(c.NominalFPS)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// Helper functions for Docker environment detection
func isRunningInDocker() bool {
	// Check for Docker-specific environment indicators
	if os.Getenv("DOCKER_CONTAINER") == "true" {
		return true
	}

	// Check for .dockerenv file
	if _, err := os.Stat("/.dockerenv"); err == nil {
		return true
	}

	return false
}

// getNatsURL returns the appropriate NATS URL based on environment
func getNatsURL() string {
	if envURL := os.Getenv("NATS_URL"); envURL != "" {
		return envURL
	}

	// If running in Docker, use service name; otherwise use localhost
	if isRunningInDocker() {
		return "nats://nats:4222"
	}

	return "nats://localhost:4222"
}
