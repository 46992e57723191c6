package config

import "time"

// SetDefaults sets default values for all configuration fields
func SetDefaults(cfg *Config) {
	// Database defaults
	if cfg.Database.Type == "" {
		cfg.Database.Type = "sqlite"
	}
	if cfg.Database.Type == "sqlite" && cfg.Database.Path == "" {
		cfg.Database.Path = "outpost.db"
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "outpost"
	}
	if cfg.Database.Name == "" {
		cfg.Database.Name = "outpost"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.Pool.MaxOpen == 0 {
		cfg.Database.Pool.MaxOpen = 10
	}
	if cfg.Database.Pool.MaxIdle == 0 {
		cfg.Database.Pool.MaxIdle = 2
	}
	if cfg.Database.Pool.MaxLifetime == 0 {
		cfg.Database.Pool.MaxLifetime = 5 * time.Minute
	}

	// Daemon defaults
	if cfg.Daemon.SocketPath == "" {
		cfg.Daemon.SocketPath = "/tmp/outpost-daemon.sock"
	}
	if cfg.Daemon.PIDFile == "" {
		cfg.Daemon.PIDFile = "/tmp/outpost-daemon.pid"
	}
	if cfg.Daemon.ShutdownTimeout == 0 {
		cfg.Daemon.ShutdownTimeout = 10 * time.Second
	}

	// Logging defaults
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "text"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stderr"
	}
	if cfg.Logging.Prefix == "" {
		cfg.Logging.Prefix = "outpost"
	}

	// Metrics defaults
	if cfg.Metrics.Host == "" {
		cfg.Metrics.Host = "localhost"
	}
	if cfg.Metrics.Port == 0 {
		cfg.Metrics.Port = 9464
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = "/metrics"
	}
	if cfg.Metrics.CollectInterval == 0 {
		cfg.Metrics.CollectInterval = 15 * time.Second
	}

	// World defaults
	if cfg.World.ChunkSize == 0 {
		cfg.World.ChunkSize = 16
	}
	if cfg.World.ViewRadius == 0 {
		cfg.World.ViewRadius = 1
	}
	if cfg.World.NodeDensityPermille == 0 {
		cfg.World.NodeDensityPermille = 150
	}
	if cfg.World.MinNodeCapacity == 0 {
		cfg.World.MinNodeCapacity = 20
	}
	if cfg.World.MaxNodeCapacity == 0 {
		cfg.World.MaxNodeCapacity = 200
	}

	// Discovery defaults
	if cfg.Discovery.Radius == 0 {
		cfg.Discovery.Radius = 3
	}
	if cfg.Discovery.Debounce == 0 {
		cfg.Discovery.Debounce = 50 * time.Millisecond
	}
	if cfg.Discovery.ShutdownPolicy == "" {
		cfg.Discovery.ShutdownPolicy = "flush"
	}

	// Crafting defaults
	if cfg.Crafting.TickInterval == 0 {
		cfg.Crafting.TickInterval = time.Second
	}

	// Save defaults
	if cfg.Save.Profile == "" {
		cfg.Save.Profile = "default"
	}
	if cfg.Save.AutosaveInterval == 0 {
		cfg.Save.AutosaveInterval = 30 * time.Second
	}
	if cfg.Save.MinSaveInterval == 0 {
		cfg.Save.MinSaveInterval = 2 * time.Second
	}
	if cfg.Save.BreakerMaxFailures == 0 {
		cfg.Save.BreakerMaxFailures = 5
	}
	if cfg.Save.BreakerTimeout == 0 {
		cfg.Save.BreakerTimeout = time.Minute
	}
}
