package usecase

import (
	"fmt"
	"strings"

	"catalog-skill/internal/domain"
)

// appendCriterion merges a newly stated criterion into the accumulated
// sequence. The first criterion seeds the sequence from the product name
// alone; later turns append a (property, value) pair when both halves were
// spoken. A turn that states neither half contributes nothing and the
// sequence is returned unchanged.
func appendCriterion(filters []domain.FilterCriterion, productName, property, value string) []domain.FilterCriterion {
	productName = domain.NormalizeTerm(productName)
	property = domain.NormalizeTerm(property)
	value = domain.NormalizeTerm(value)

	if len(filters) == 0 && productName != "" {
		filters = append(filters, domain.FilterCriterion{Name: "Product Name", Value: productName})
	}
	if property != "" && value != "" {
		filters = append(filters, domain.FilterCriterion{Name: property, Value: value})
	}
	return filters
}

// serializeQuery rebuilds the catalog search query from the full accumulated
// sequence. The access token is embedded so the query is self-contained; the
// result is the raw query-string tail consumed by the catalog search endpoint.
func serializeQuery(accessToken string, filters []domain.FilterCriterion) string {
	var b strings.Builder
	fmt.Fprintf(&b, "access_token=%s&filter==", accessToken)
	for i, f := range filters {
		if i > 0 {
			b.WriteByte(',')
		}
		fmt.Fprintf(&b, "'%s':'%s'", f.Name, f.Value)
	}
	return b.String()
}

// querySegments counts the comma-separated segments of a serialized query.
// The token and first criterion share a segment, so the count equals the
// number of accumulated criteria (and 1 for an empty filter set).
func querySegments(query string) int {
	return len(strings.Split(query, ","))
}

// collectingPrompt asks the user for more criteria while the query is below
// the lookup threshold.
func collectingPrompt(segments int) string {
	if segments > 1 {
		return "Okay cool. Anything else?"
	}
	return "I'll start looking. Any requirements?"
}
