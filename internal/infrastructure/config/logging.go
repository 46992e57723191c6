package config

// LoggingConfig selects where the charm logger writes and how much
type LoggingConfig struct {
	Level  string `mapstructure:"level" validate:"required,oneof=debug info warn error fatal"`
	Format string `mapstructure:"format" validate:"required,oneof=json text logfmt"`

	// stdout, stderr or file. The daemon usually runs with file.
	Output   string `mapstructure:"output" validate:"required,oneof=stdout stderr file"`
	FilePath string `mapstructure:"file_path" validate:"required_if=Output file"`

	// Prefix printed before every entry, e.g. "outpost" or a profile name
	Prefix string `mapstructure:"prefix"`

	IncludeCaller bool `mapstructure:"include_caller"`
}
