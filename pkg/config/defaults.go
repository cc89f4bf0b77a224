package config

// Analysis defaults.
const (
	DefaultSanitize         = false
	DefaultStrict           = false
	DefaultOutlierThreshold = int64(50)
	DefaultSpacingMode      = "literal"
)

// Diagnostics defaults.
const (
	DefaultDiagnosticsEnabled = true
	DefaultDiagnosticsOutput  = OutputStderr
)

// Logging defaults.
const (
	DefaultLogLevel  = "info"
	DefaultLogFormat = "text"
)

// Telemetry defaults.
const (
	DefaultOTLPEndpoint = ""
	DefaultOTLPInsecure = false
	DefaultMetricsFile  = ""
)

// Diagnostic output targets. Any other value is a file path.
const (
	OutputStderr = "stderr"
	OutputStdout = "stdout"
	OutputLog    = "log"
)
