// Package registry holds the import configuration of each public registry.
//
// Every domain is a value: its fields, header aliases, quality weights and
// natural key. Adding a registry means adding one file here, not a new
// pipeline.
package registry

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/mrima/records-portal/internal/importers"
)

var ErrUnknownDomain = errors.New("unknown registry domain")

// Domain is an import configuration plus the columns the public registry
// exposes for search and statistics.
type Domain struct {
	importers.Config
	SearchColumns []string
	StatsColumns  []string
}

// AllowsStats reports whether counts may be grouped by column.
func (d Domain) AllowsStats(column string) bool {
	for _, c := range d.StatsColumns {
		if c == column {
			return true
		}
	}
	return false
}

var domains = map[string]Domain{}

var aliases = map[string]string{
	"society":  Societies,
	"trustees": PublicTrustees,
	"trustee":  PublicTrustees,
	"cases":    GovernmentCases,
	"case":     GovernmentCases,
}

func register(d Domain) {
	if _, exists := domains[d.Name]; exists {
		panic("registry: duplicate domain " + d.Name)
	}
	domains[d.Name] = d
}

// Lookup resolves a domain by name. Hyphens and case are ignored and the
// short names "trustees" and "cases" are accepted.
func Lookup(name string) (Domain, error) {
	key := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "-", "_")
	if canonical, ok := aliases[key]; ok {
		key = canonical
	}
	d, ok := domains[key]
	if !ok {
		return Domain{}, fmt.Errorf("%w: %q", ErrUnknownDomain, name)
	}
	return d, nil
}

// All returns every domain ordered by name.
func All() []Domain {
	all := make([]Domain, 0, len(domains))
	for _, d := range domains {
		all = append(all, d)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })
	return all
}

// Names returns the domain names ordered alphabetically.
func Names() []string {
	all := All()
	names := make([]string, len(all))
	for i, d := range all {
		names[i] = d.Name
	}
	return names
}

func init() {
	register(societies())
	register(publicTrustees())
	register(governmentCases())
}
