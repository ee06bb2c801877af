package config

// MaxSelectionAttempts caps how many times a menu may be re-prompted.
const MaxSelectionAttempts = 5

// Config is read-only: gimbalcal never writes its configuration back.
type Config interface {
	// Python is the interpreter used to launch the service tool.
	Python() string
	// ServiceTool is the path of comm_og_service_tool.py.
	ServiceTool() string
	// Models overrides the built-in model catalog when non-empty.
	Models() []string
	// SelectionAttempts is how many inputs a menu accepts before aborting.
	SelectionAttempts() int
	// VerifyEndpoint opens the selected port once before calibrating.
	VerifyEndpoint() bool
	BaudRate() int

	// Load reads the configuration from the source.
	Load() error
}
