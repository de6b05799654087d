package sparql

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Wikidata namespaces bound to the wd: and wdt: prefixes.
const (
	EntityNamespace      = "http://www.wikidata.org/entity/"
	DirectClaimNamespace = "http://www.wikidata.org/prop/direct/"
)

// Result variable names used by property queries.
const (
	VarItem  = "item"
	VarValue = "prop_value"
)

// ErrInvalidProperty indicates a property identifier that is not of the form P<digits>.
var ErrInvalidProperty = errors.New("invalid property identifier")

//nolint:gochecknoglobals // Compiled once.
var (
	entityCodePattern = regexp.MustCompile(`^Q[0-9]+$`)
	propertyPattern   = regexp.MustCompile(`^P[0-9]+$`)
)

// IsEntityCode reports whether code is a well-formed item identifier such as "Q42".
func IsEntityCode(code string) bool {
	return entityCodePattern.MatchString(code)
}

// IsPropertyID reports whether id is a well-formed property identifier such as "P245".
func IsPropertyID(id string) bool {
	return propertyPattern.MatchString(id)
}

// ValidateProperty returns an error wrapping ErrInvalidProperty if id is malformed.
func ValidateProperty(id string) error {
	if !IsPropertyID(id) {
		return fmt.Errorf("%w: %q (expected e.g. P245)", ErrInvalidProperty, id)
	}
	return nil
}

// FilterCodes returns the distinct well-formed entity codes in first-seen order.
// Malformed codes are dropped: they cannot match and would break the query syntax.
func FilterCodes(codes []string) []string {
	seen := make(map[string]struct{}, len(codes))
	out := make([]string, 0, len(codes))
	for _, c := range codes {
		if !IsEntityCode(c) {
			continue
		}
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}

// BuildPropertyQuery returns a SELECT query binding ?item and ?prop_value for
// every code in codes that has a direct claim for property. Codes must already
// be filtered with FilterCodes.
func BuildPropertyQuery(codes []string, property string) (string, error) {
	if err := ValidateProperty(property); err != nil {
		return "", err
	}

	values := make([]string, len(codes))
	for i, c := range codes {
		values[i] = "wd:" + c
	}

	var b strings.Builder
	b.WriteString("PREFIX wd: <" + EntityNamespace + ">\n")
	b.WriteString("PREFIX wdt: <" + DirectClaimNamespace + ">\n")
	b.WriteString("SELECT ?" + VarItem + " ?" + VarValue + "\n")
	b.WriteString("WHERE {\n")
	b.WriteString("  VALUES ?" + VarItem + " { " + strings.Join(values, " ") + " }\n")
	b.WriteString("  ?" + VarItem + " wdt:" + property + " ?" + VarValue + " .\n")
	b.WriteString("}\n")
	return b.String(), nil
}
