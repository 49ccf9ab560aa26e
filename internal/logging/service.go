package logging

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"roadhud-go/internal/config"
)

// NewServiceLogger returns a logger tagged with the HUD identity and the
// subsystem name
func NewServiceLogger(cfg *config.Config, service string) zerolog.Logger {
	return log.With().Str("hud_id", cfg.HUDID).Str("service", service).Logger()
}
