package domain

import (
	"fmt"
	"strings"
	"unicode"
)

const (
	// AttrFullName is the catalog attribute holding the spoken product name.
	AttrFullName = "Full Product Name"

	// UnknownAttribute is spoken when a requested attribute cannot be found.
	UnknownAttribute = "unknown"
)

// DefaultSummaryAttributes are read out after a product is resolved.
var DefaultSummaryAttributes = []string{"Description", "Inventory"}

// ProductRecord is the full attribute record of one catalog product, keyed by
// attribute name. Values may be strings or nested structures depending on the
// catalog schema; both render through AttributeValue.
type ProductRecord map[string]any

// Attribute returns the value for the requested attribute name using a
// case-insensitive exact match, or UnknownAttribute when the name is empty or
// absent from the record.
func (p ProductRecord) Attribute(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return UnknownAttribute
	}
	for key, value := range p {
		if strings.ToLower(key) == name {
			return AttributeValue(value)
		}
	}
	return UnknownAttribute
}

// FullName returns the spoken product name, or UnknownAttribute when missing.
func (p ProductRecord) FullName() string {
	return p.Attribute(AttrFullName)
}

// AttributeValue renders a catalog attribute value for speech. Multi-valued
// attributes are joined with commas.
func AttributeValue(v any) string {
	switch value := v.(type) {
	case string:
		return value
	case []any:
		parts := make([]string, 0, len(value))
		for _, item := range value {
			parts = append(parts, AttributeValue(item))
		}
		return strings.Join(parts, ", ")
	default:
		return fmt.Sprintf("%v", value)
	}
}

// FilterCriterion is one (attribute name, attribute value) pair stated by the
// user. Both fields are stored in canonical casing via NormalizeTerm.
type FilterCriterion struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// NormalizeTerm upper-cases the first rune and leaves the remainder unchanged,
// so that repeated statements of "name" and "Name" serialize identically.
func NormalizeTerm(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	runes := []rune(s)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
