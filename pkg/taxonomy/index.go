package taxonomy

import (
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/hyg/voucher-invoker/pkg/semver"
)

const (
	defaultCurrency     = "CNY"
	defaultEntityScheme = "http://www.mof.gov.cn/entity"
)

// Index provides fast lookup of taxonomy entries.
type Index struct {
	name    string
	version string
	configs map[string]*ConfigSpec
	aliases map[string]string
}

// NewIndex builds an Index from a table.
func NewIndex(table *Table) *Index {
	configs := make(map[string]*ConfigSpec, len(table.Configs))
	for id, spec := range table.Configs {
		s := spec
		s.Versions = make([]Entry, len(spec.Versions))
		copy(s.Versions, spec.Versions)
		configs[id] = &s
	}

	aliases := make(map[string]string, len(table.Aliases))
	for alias, target := range table.Aliases {
		aliases[alias] = target
	}

	return &Index{
		name:    table.Name,
		version: table.Version,
		configs: configs,
		aliases: aliases,
	}
}

// Name returns the table name.
func (ix *Index) Name() string { return ix.name }

// Version returns the table version.
func (ix *Index) Version() string { return ix.version }

// IDs returns the known config IDs, sorted.
func (ix *Index) IDs() []string {
	ids := make([]string, 0, len(ix.configs))
	for id := range ix.configs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Resolve selects the taxonomy entry for a config reference such as "bker_issuer" or "bker@^1.1".
func (ix *Index) Resolve(ref string) (*Resolved, error) {
	parsed, err := semver.ParseConfigRef(ref)
	if err != nil {
		return nil, &LookupError{Code: CodeInvalidRef, Message: err.Error()}
	}

	id := parsed.ID
	spec, ok := ix.configs[id]
	if !ok {
		if target, isAlias := ix.aliases[id]; isAlias {
			id = target
			spec, ok = ix.configs[id]
		}
	}
	if !ok {
		return nil, &LookupError{Code: CodeUnknownConfig, Message: fmt.Sprintf("unknown config id: %s", parsed.ID)}
	}

	candidates := make([]semver.Candidate, len(spec.Versions))
	for i, e := range spec.Versions {
		candidates[i] = semver.Candidate{Version: e.Version, Status: e.Status}
	}
	defaultMajor := spec.DefaultMajor
	if defaultMajor <= 0 {
		defaultMajor = -1
	}

	idx := semver.Resolve(semver.ResolveParams{
		Candidates:   candidates,
		Range:        parsed.Range,
		DefaultMajor: defaultMajor,
	})
	if idx < 0 {
		msg := fmt.Sprintf("no version of %s matches %q", id, parsed.Range)
		if semver.IsExactVersion(parsed.Range) {
			msg = fmt.Sprintf("version %s of %s not found", parsed.Range, id)
		}
		return nil, &LookupError{Code: CodeNoMatchingEntry, Message: msg}
	}
	return withDefaults(id, spec.Versions[idx]), nil
}

// Classify finds the entry an XBRL instance was written against, by schemaRef first and
// then by declared namespace. Config IDs are scanned in sorted order and the highest
// matching version wins, so the result is deterministic.
func (ix *Index) Classify(schemaRef string, namespaces []string) (*Resolved, bool) {
	if schemaRef != "" {
		base := path.Base(strings.ReplaceAll(schemaRef, `\`, "/"))
		if r, ok := ix.match(func(e Entry) bool {
			return e.SchemaRef == schemaRef || (e.SchemaRef != "" && path.Base(e.SchemaRef) == base)
		}); ok {
			return r, true
		}
	}

	declared := make(map[string]bool, len(namespaces))
	for _, ns := range namespaces {
		declared[ns] = true
	}
	return ix.match(func(e Entry) bool {
		return e.Namespace != "" && declared[e.Namespace]
	})
}

func (ix *Index) match(pred func(Entry) bool) (*Resolved, bool) {
	for _, id := range ix.IDs() {
		spec := ix.configs[id]
		var best *Entry
		for i := range spec.Versions {
			e := &spec.Versions[i]
			if e.Status == semver.StatusDisabled || !pred(*e) {
				continue
			}
			if best == nil || semver.SatisfiesRange(e.Version, ">"+best.Version) {
				best = e
			}
		}
		if best != nil {
			return withDefaults(id, *best), true
		}
	}
	return nil, false
}

func withDefaults(id string, e Entry) *Resolved {
	if e.Currency == "" {
		e.Currency = defaultCurrency
	}
	if e.EntityScheme == "" {
		e.EntityScheme = defaultEntityScheme
	}
	if e.Prefix == "" {
		e.Prefix = strings.SplitN(id, "_", 2)[0]
	}
	return &Resolved{ConfigID: id, Entry: e}
}
