package semver

import (
	"fmt"
	"sort"

	masterminds "github.com/Masterminds/semver/v3"
)

const resolverLogPrefix = "semver:resolver"

// Version statuses.
const (
	StatusActive     = "active"
	StatusDeprecated = "deprecated"
	StatusDisabled   = "disabled"
)

// Candidate is one selectable version.
type Candidate struct {
	Version string
	Status  string
}

// ResolveParams holds parameters for Resolve.
type ResolveParams struct {
	Candidates []Candidate
	// Range is a SemVer range, a major-only specifier, an exact version, or empty.
	Range string
	// DefaultMajor is used when Range is empty; -1 means the highest major.
	DefaultMajor int
	// IncludeDeprecated lets deprecated versions win over active ones.
	IncludeDeprecated bool
}

type parsed struct {
	idx int
	v   *masterminds.Version
}

// Resolve returns the index of the best candidate for the range, or -1.
// Disabled candidates and unparsable versions never match. Stable releases beat
// prereleases when no explicit range is given, and active beats deprecated unless
// IncludeDeprecated is set.
func Resolve(params ResolveParams) int {
	var pool []parsed
	for i, c := range params.Candidates {
		if c.Status == StatusDisabled {
			continue
		}
		v, err := masterminds.NewVersion(c.Version)
		if err != nil {
			continue
		}
		pool = append(pool, parsed{idx: i, v: v})
	}
	if len(pool) == 0 {
		return -1
	}

	switch {
	case params.Range == "":
		major := params.DefaultMajor
		if major < 0 {
			major = highestMajor(pool)
		}
		pool = filterMajor(pool, major)
		pool = preferStable(pool)
	case IsMajorOnly(params.Range):
		pool = preferStable(filterMajor(pool, ExtractMajorFromRange(params.Range)))
	default:
		constraint, err := masterminds.NewConstraint(params.Range)
		if err != nil {
			// Not a range; try as an exact version string.
			for _, p := range pool {
				if params.Candidates[p.idx].Version == params.Range {
					return p.idx
				}
			}
			return -1
		}
		var matching []parsed
		for _, p := range pool {
			if constraint.Check(p.v) {
				matching = append(matching, p)
			}
		}
		pool = matching
	}

	if len(pool) == 0 {
		return -1
	}

	sort.SliceStable(pool, func(i, j int) bool {
		return pool[i].v.GreaterThan(pool[j].v)
	})

	if !params.IncludeDeprecated {
		for _, p := range pool {
			if params.Candidates[p.idx].Status != StatusDeprecated {
				return p.idx
			}
		}
	}
	return pool[0].idx
}

// SatisfiesRange checks if a version string satisfies a range.
func SatisfiesRange(version, rangeStr string) bool {
	return CheckConstraint(version, rangeStr) == nil
}

// CheckConstraint returns an error describing why version does not satisfy rangeStr.
// Versions are parsed leniently, so "1.1" is read as 1.1.0.
func CheckConstraint(version, rangeStr string) error {
	sv, err := masterminds.NewVersion(version)
	if err != nil {
		return fmt.Errorf("%s - invalid version %q: %w", resolverLogPrefix, version, err)
	}

	if IsMajorOnly(rangeStr) {
		if int(sv.Major()) != ExtractMajorFromRange(rangeStr) {
			return fmt.Errorf("%s - version %s is not in major %s", resolverLogPrefix, version, rangeStr)
		}
		return nil
	}

	constraint, err := masterminds.NewConstraint(rangeStr)
	if err != nil {
		return fmt.Errorf("%s - invalid range %q: %w", resolverLogPrefix, rangeStr, err)
	}
	if ok, errs := constraint.Validate(sv); !ok {
		if len(errs) > 0 {
			return fmt.Errorf("%s - version %s does not satisfy %s: %w", resolverLogPrefix, version, rangeStr, errs[0])
		}
		return fmt.Errorf("%s - version %s does not satisfy %s", resolverLogPrefix, version, rangeStr)
	}
	return nil
}

// ValidateRange reports whether rangeStr is usable by CheckConstraint.
func ValidateRange(rangeStr string) error {
	if IsMajorOnly(rangeStr) {
		return nil
	}
	if _, err := masterminds.NewConstraint(rangeStr); err != nil {
		return fmt.Errorf("%s - invalid range %q: %w", resolverLogPrefix, rangeStr, err)
	}
	return nil
}

// UniqueMajors returns the distinct majors of the candidates, highest first.
func UniqueMajors(candidates []Candidate) []int {
	seen := make(map[int]bool)
	var majors []int
	for _, c := range candidates {
		v, err := masterminds.NewVersion(c.Version)
		if err != nil {
			continue
		}
		m := int(v.Major())
		if !seen[m] {
			seen[m] = true
			majors = append(majors, m)
		}
	}
	sort.Sort(sort.Reverse(sort.IntSlice(majors)))
	return majors
}

// --- internal helpers ---

func highestMajor(pool []parsed) int {
	highest := -1
	for _, p := range pool {
		if int(p.v.Major()) > highest {
			highest = int(p.v.Major())
		}
	}
	return highest
}

func filterMajor(pool []parsed, major int) []parsed {
	var out []parsed
	for _, p := range pool {
		if int(p.v.Major()) == major {
			out = append(out, p)
		}
	}
	return out
}

// preferStable drops prereleases when at least one stable release remains.
func preferStable(pool []parsed) []parsed {
	var stable []parsed
	for _, p := range pool {
		if p.v.Prerelease() == "" {
			stable = append(stable, p)
		}
	}
	if len(stable) > 0 {
		return stable
	}
	return pool
}
