// Package semver parses versioned taxonomy config references and resolves them with SemVer ranges.
package semver

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

const logPrefix = "semver:parser"

// ConfigRef is a parsed taxonomy config reference such as "bker_issuer@^1.2".
type ConfigRef struct {
	// ID is the config identifier (e.g. "bker_issuer").
	ID string
	// Range is the version range after "@"; empty means the entry's default version.
	Range string
	// Raw is the trimmed input.
	Raw string
}

var (
	configIDRegex     = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_.-]*$`)
	majorOnlyRegex    = regexp.MustCompile(`^\d+$`)
	exactVersionRegex = regexp.MustCompile(`^\d+\.\d+\.\d+(-[\w.]+)?(\+[\w.]+)?$`)
)

// ParseConfigRef parses a config reference.
//
// Supported formats:
//   - bker_issuer           (default version)
//   - bker_issuer@1         (major only)
//   - bker_issuer@1.2.0     (exact version)
//   - bker_issuer@^1.2      (caret range)
//   - bker_issuer@>=1.0 <2  (comparison range)
func ParseConfigRef(input string) (*ConfigRef, error) {
	raw := strings.TrimSpace(input)

	id, rangeStr, _ := strings.Cut(raw, "@")
	id = strings.TrimSpace(id)
	rangeStr = strings.TrimSpace(rangeStr)

	if id == "" {
		return nil, fmt.Errorf("%s - empty config id: %q", logPrefix, input)
	}
	if !ValidateConfigID(id) {
		return nil, fmt.Errorf("%s - invalid config id: %s", logPrefix, id)
	}
	if strings.Contains(raw, "@") && rangeStr == "" {
		return nil, fmt.Errorf("%s - empty version range: %s", logPrefix, raw)
	}

	return &ConfigRef{ID: id, Range: rangeStr, Raw: raw}, nil
}

// String renders the reference back to "id[@range]".
func (r *ConfigRef) String() string {
	if r.Range == "" {
		return r.ID
	}
	return r.ID + "@" + r.Range
}

// IsMajorOnly checks if a range is a major-only specifier (e.g., "3").
func IsMajorOnly(rangeStr string) bool {
	return majorOnlyRegex.MatchString(rangeStr)
}

// IsExactVersion checks if a range is an exact version (e.g., "3.2.1").
func IsExactVersion(rangeStr string) bool {
	return exactVersionRegex.MatchString(rangeStr)
}

// ExtractMajorFromRange returns the major of a major-only range, or -1.
func ExtractMajorFromRange(rangeStr string) int {
	if !IsMajorOnly(rangeStr) {
		return -1
	}
	major, err := strconv.Atoi(rangeStr)
	if err != nil {
		return -1
	}
	return major
}

// ValidateConfigID validates a config identifier (letters, digits, underscores, dots, hyphens).
func ValidateConfigID(id string) bool {
	return configIDRegex.MatchString(id)
}
