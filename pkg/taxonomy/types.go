// Package taxonomy holds the XBRL voucher taxonomy table addressed by config ID.
package taxonomy

// Entry is one version of a voucher taxonomy.
type Entry struct {
	Version     string `yaml:"version"`
	Status      string `yaml:"status"`
	Namespace   string `yaml:"namespace"`
	Prefix      string `yaml:"prefix"`
	SchemaRef   string `yaml:"schemaRef"`
	VoucherType string `yaml:"voucherType"`
	// Currency is the ISO 4217 code used as the unit of numeric facts.
	Currency string `yaml:"currency,omitempty"`
	// EntityScheme is the identifier scheme of the reporting entity in generated contexts.
	EntityScheme string `yaml:"entityScheme,omitempty"`
}

// ConfigSpec groups the versions of one config ID.
type ConfigSpec struct {
	Description string `yaml:"description,omitempty"`
	// DefaultMajor is used when a reference has no range; 0 selects the highest major.
	DefaultMajor int     `yaml:"defaultMajor"`
	Versions     []Entry `yaml:"versions"`
}

// Table is the root of a taxonomy file.
type Table struct {
	Name    string                `yaml:"name"`
	Version string                `yaml:"version"`
	Configs map[string]ConfigSpec `yaml:"configs"`
	Aliases map[string]string     `yaml:"aliases,omitempty"`
}

// Resolved is a single taxonomy entry selected for a config reference.
type Resolved struct {
	ConfigID string
	Entry
}

// LookupError reports a config reference that cannot be resolved.
type LookupError struct {
	Code    string
	Message string
}

func (e *LookupError) Error() string {
	return e.Code + ": " + e.Message
}

// Lookup error codes.
const (
	CodeInvalidRef      = "INVALID_CONFIG_REF"
	CodeUnknownConfig   = "UNKNOWN_CONFIG"
	CodeNoMatchingEntry = "NO_MATCHING_VERSION"
)
