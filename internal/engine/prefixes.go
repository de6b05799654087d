package engine

import (
	"maps"
	"slices"
)

// PrefixTable maps a property identifier to the base URL of its authority file.
type PrefixTable map[string]string

// DefaultPrefixes returns the built-in prefix table.
func DefaultPrefixes() PrefixTable {
	return PrefixTable{
		"P245":  "http://vocab.getty.edu/ulan/",
		"P650":  "https://rkd.nl/artists/",
		"P1871": "http://data.cerl.org/thesaurus/",
		"P214":  "http://viaf.org/viaf/",
	}
}

// Base returns the base URL for property, or "" if it is unmapped.
func (t PrefixTable) Base(property string) string {
	return t[property]
}

// Merge returns a new table holding t overlaid with other.
// Entries in other win; an empty value in other removes the mapping.
func (t PrefixTable) Merge(other PrefixTable) PrefixTable {
	out := make(PrefixTable, len(t)+len(other))
	maps.Copy(out, t)
	for k, v := range other {
		if v == "" {
			delete(out, k)
			continue
		}
		out[k] = v
	}
	return out
}

// Properties returns the mapped property identifiers in sorted order.
func (t PrefixTable) Properties() []string {
	return slices.Sorted(maps.Keys(t))
}

// FullURL builds the canonical URL for a property value: the base URL of
// property followed by the last path segment of value. It returns "" when the
// value is empty or the property has no base URL.
func (t PrefixTable) FullURL(property, value string) string {
	base := t.Base(property)
	if base == "" || value == "" {
		return ""
	}
	return base + lastSegment(value)
}
