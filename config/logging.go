package config

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/kilianp07/esom/infra/logger"
)

func validateLogging(c logger.Config) error {
	if _, err := zerolog.ParseLevel(c.Level); err != nil {
		return fmt.Errorf("unknown level %s", c.Level)
	}
	if c.Format != "json" && c.Format != "console" {
		return fmt.Errorf("unknown format %s", c.Format)
	}
	return nil
}
