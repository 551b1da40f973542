// Package taxonomy resolves related-skill lookups through a cluster table.
// Clusters are data, not control flow: the default table below can be
// replaced or extended with a caller-supplied mapping loaded from
// configuration, which keeps locale-specific skill names out of code paths.
package taxonomy

import (
	"strings"
)

// Table answers whether two skill names belong to the same cluster.
// Membership is exact on normalized names; substring containment is
// deliberately not used to avoid false positives.
type Table struct {
	clusters map[string][]string
	// membership maps a normalized skill name to the set of cluster ids
	// containing it.
	membership map[string]map[string]struct{}
}

// Option applies a configuration option to the Table.
type Option func(*Table)

// WithClusters replaces the default cluster table with a caller-supplied
// mapping from cluster id to member skill names.
func WithClusters(clusters map[string][]string) Option {
	return func(t *Table) {
		if len(clusters) > 0 {
			t.clusters = clusters
		}
	}
}

// WithAdditionalClusters merges extra clusters into the current table.
// Members are appended to existing clusters with the same id.
func WithAdditionalClusters(clusters map[string][]string) Option {
	return func(t *Table) {
		for id, members := range clusters {
			t.clusters[id] = append(t.clusters[id], members...)
		}
	}
}

// New builds a Table from the default clusters and any options.
func New(opts ...Option) *Table {
	t := &Table{
		clusters: defaultClusters(),
	}

	for _, opt := range opts {
		opt(t)
	}

	t.membership = make(map[string]map[string]struct{})
	for id, members := range t.clusters {
		for _, member := range members {
			name := Normalize(member)
			if name == "" {
				continue
			}
			if t.membership[name] == nil {
				t.membership[name] = make(map[string]struct{})
			}
			t.membership[name][id] = struct{}{}
		}
	}

	return t
}

// Normalize lowercases and trims a skill name for lookups.
func Normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Related reports whether two skill names share at least one cluster.
// Identical normalized names are always related.
func (t *Table) Related(a, b string) bool {
	na, nb := Normalize(a), Normalize(b)
	if na == "" || nb == "" {
		return false
	}
	if na == nb {
		return true
	}
	for id := range t.membership[na] {
		if _, ok := t.membership[nb][id]; ok {
			return true
		}
	}
	return false
}

// Clusters returns the cluster ids containing the given skill name.
func (t *Table) Clusters(name string) []string {
	set := t.membership[Normalize(name)]
	if len(set) == 0 {
		return nil
	}
	out := make([]string, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	return out
}

// defaultClusters is the built-in table. It covers the core categories of
// the platform and carries the French skill names used by the original
// marketplace alongside their English counterparts.
func defaultClusters() map[string][]string {
	return map[string][]string{
		"home-repair": {
			"home repair", "repair", "maintenance", "tools", "construction",
			"plumbing", "electricity", "painting", "carpentry",
			"bricolage", "réparation", "outils", "plomberie",
			"électricité", "peinture", "menuiserie",
		},
		"gardening": {
			"gardening", "landscaping", "pruning", "mowing", "planting",
			"jardinage", "tonte", "taille", "plantation", "paysagisme",
		},
		"technology": {
			"technology", "computers", "it support", "software", "smartphone",
			"internet", "printer setup",
			"informatique", "ordinateur", "dépannage informatique", "logiciel",
		},
		"cooking": {
			"cooking", "baking", "meal prep", "catering",
			"cuisine", "pâtisserie", "traiteur",
		},
		"transportation": {
			"transportation", "driving", "moving", "delivery", "errands",
			"transport", "conduite", "déménagement", "livraison", "courses",
		},
		"cleaning": {
			"cleaning", "housekeeping", "ironing", "laundry", "window cleaning",
			"ménage", "nettoyage", "repassage", "lessive", "vitres",
		},
		"education": {
			"education", "tutoring", "teaching", "homework help", "languages",
			"music lessons",
			"éducation", "soutien scolaire", "cours particuliers", "langues",
			"cours de musique",
		},
	}
}
