package taxonomy

import (
	"fmt"
	"sort"

	masterminds "github.com/Masterminds/semver/v3"

	"github.com/hyg/voucher-invoker/pkg/semver"
)

// MajorInfo summarises one major version line of a config ID.
type MajorInfo struct {
	Major         int
	LatestVersion string
	Status        string
	VersionCount  int
	IsDefault     bool
}

// ListMajors returns the major version lines of a config ID or alias, highest first.
// Disabled versions are left out unless includeDisabled is set.
func (ix *Index) ListMajors(id string, includeDisabled bool) ([]MajorInfo, error) {
	spec, ok := ix.configs[id]
	if !ok {
		if target, isAlias := ix.aliases[id]; isAlias {
			spec, ok = ix.configs[target]
		}
	}
	if !ok {
		return nil, &LookupError{Code: CodeUnknownConfig, Message: fmt.Sprintf("unknown config id: %s", id)}
	}

	type versioned struct {
		v     *masterminds.Version
		entry Entry
	}
	groups := make(map[int][]versioned)
	candidates := make([]semver.Candidate, 0, len(spec.Versions))
	for _, e := range spec.Versions {
		if !includeDisabled && e.Status == semver.StatusDisabled {
			continue
		}
		v, err := masterminds.NewVersion(e.Version)
		if err != nil {
			continue
		}
		groups[int(v.Major())] = append(groups[int(v.Major())], versioned{v: v, entry: e})
		candidates = append(candidates, semver.Candidate{Version: e.Version, Status: e.Status})
	}

	defaultMajor := spec.DefaultMajor
	majorsDesc := semver.UniqueMajors(candidates)
	if defaultMajor <= 0 && len(majorsDesc) > 0 {
		defaultMajor = majorsDesc[0]
	}

	out := make([]MajorInfo, 0, len(majorsDesc))
	for _, major := range majorsDesc {
		group := groups[major]
		sort.Slice(group, func(i, j int) bool {
			return group[i].v.GreaterThan(group[j].v)
		})
		latest := group[0].entry
		out = append(out, MajorInfo{
			Major:         major,
			LatestVersion: latest.Version,
			Status:        latest.Status,
			VersionCount:  len(group),
			IsDefault:     major == defaultMajor,
		})
	}
	return out, nil
}
