// Package engine resolves a single Wikidata property for a list of entity codes.
//
// The Resolver partitions input records into batches, asks a BindingSource for
// the property values of each batch and reconciles the returned bindings onto
// the input rows, emitting exactly one ResolvedRecord per InputRecord in input
// order.
package engine

import (
	"context"
	"strings"
)

// InputRecord is one row of the input table.
type InputRecord struct {
	RecordID   string
	EntityCode string
}

// PropertyBinding is a single (entity, value) pair returned by a BindingSource.
type PropertyBinding struct {
	EntityCode    string
	PropertyValue string
}

// ResolvedRecord is an InputRecord joined with its property value.
// PropertyURI and FullURL are empty when the entity has no value for the property.
type ResolvedRecord struct {
	RecordID    string
	EntityCode  string
	PropertyURI string
	FullURL     string
}

// Matched reports whether a property value was found for the record.
func (r ResolvedRecord) Matched() bool {
	return r.PropertyURI != ""
}

// BindingSource looks up one property for a set of entity codes.
// Implementations return zero or more bindings; codes without a value are
// simply absent from the result.
type BindingSource interface {
	LookupProperty(ctx context.Context, codes []string, property string) ([]PropertyBinding, error)
}

// RecordSink receives resolved records in the order they are produced.
type RecordSink interface {
	Write(rec ResolvedRecord) error
}

// lastSegment returns the substring after the final '/' in s, or s itself.
func lastSegment(s string) string {
	if i := strings.LastIndex(s, "/"); i >= 0 {
		return s[i+1:]
	}
	return s
}
