package config

import "time"

// DaemonConfig controls the long-running outpost daemon
type DaemonConfig struct {
	// The health and control gRPC service listens on this unix socket. A
	// stale socket left by a crashed daemon is removed on start.
	SocketPath string `mapstructure:"socket_path" validate:"required"`

	// Guards against two daemons writing the same save
	PIDFile string `mapstructure:"pid_file" validate:"required"`

	// Upper bound on the final discovery flush and save after SIGTERM
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"required,min=1s"`
}
