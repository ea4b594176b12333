package config

// Default configuration values.
const (
	DefaultMaxFileSize      = "10MB"
	DefaultNoDefaultIgnores = false
	DefaultSkipVendored     = false

	DefaultWorkers  = 0
	DefaultTimeout  = ""
	DefaultFailFast = false
	DefaultChurn    = false

	DefaultOutputFormat = "console"
	DefaultShowFiles    = false

	DefaultLogLevel = "info"
	DefaultLogJSON  = false
)
