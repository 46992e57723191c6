package config

import (
	"fmt"
	"time"
)

// MetricsConfig controls the Prometheus endpoint served by the daemon
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`

	// Listen address of the scrape endpoint. Binds to localhost unless told
	// otherwise.
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port" validate:"omitempty,min=1024,max=65535"`
	Path string `mapstructure:"path" validate:"omitempty,startswith=/"`

	// How often machine and inventory gauges are refreshed from the workshop
	CollectInterval time.Duration `mapstructure:"collect_interval" validate:"omitempty,min=1s"`
}

// Addr is the host:port the scrape endpoint listens on
func (m MetricsConfig) Addr() string {
	return fmt.Sprintf("%s:%d", m.Host, m.Port)
}
