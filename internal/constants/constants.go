package constants

import "time"

// Graph service defaults.
const (
	// DefaultAPIEndpoint is the base URL of the graph service.
	DefaultAPIEndpoint = "https://graph.facebook.com"

	// DefaultAPIVersion is the version segment prefixed to call paths.
	DefaultAPIVersion = "v19.0"
)

// HTTP and network timeouts.
const (
	// DefaultHTTPTimeout is the default timeout for HTTP requests.
	DefaultHTTPTimeout = 30 * time.Second

	// ShortHTTPTimeout is used for quick operations.
	ShortHTTPTimeout = 10 * time.Second
)

// Retry limits for the default transport.
const (
	// DefaultRetryMax is the default maximum number of retries.
	DefaultRetryMax = 3

	// DefaultRetryWaitMin is the minimum wait time between retries.
	DefaultRetryWaitMin = 1 * time.Second

	// DefaultRetryWaitMax is the maximum wait time between retries.
	DefaultRetryWaitMax = 10 * time.Second
)

// Pagination limits.
const (
	// DefaultMaxPages bounds page walks to prevent unbounded fetch loops.
	DefaultMaxPages = 50
)

// File and directory permissions.
const (
	// ConfigDirPerm is the permission for configuration directories.
	ConfigDirPerm = 0750

	// ConfigFilePerm is the permission for configuration files.
	ConfigFilePerm = 0600
)

// Format constants.
const (
	// FormatJSON for JSON output format.
	FormatJSON = "json"

	// FormatYAML for YAML output format.
	FormatYAML = "yaml"
)

// UI and display constants.
const (
	// MaskedSecret is used to hide sensitive information.
	MaskedSecret = "***"

	// KeyValueSplitParts is the number of parts when splitting key=value strings.
	KeyValueSplitParts = 2
)
