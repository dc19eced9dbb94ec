package usecase

import (
	"fmt"
	"strings"

	"catalog-skill/internal/domain"
)

// reduceSearchResult collapses an ordered candidate list to a single product
// id. The tie-break is deterministic: the first candidate in returned order
// wins. An empty list is the no-results outcome.
func reduceSearchResult(ids []string) (string, error) {
	if len(ids) == 0 {
		return "", newError(ErrorNoResults, "empty_match_set", nil)
	}
	return ids[0], nil
}

// summarySpeech composes the post-resolution readout: the full product name
// followed by each default attribute as "<attribute> is <value>.".
func summarySpeech(product domain.ProductRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s. ", product.FullName())
	for _, attr := range domain.DefaultSummaryAttributes {
		fmt.Fprintf(&b, "%s is %s. ", attr, product.Attribute(attr))
	}
	b.WriteString("Would you like to know more about this product?")
	return b.String()
}

// followUpSpeech answers a single-attribute question from the cached record.
// It intentionally omits the summary framing and falls back to the sentinel
// when the attribute is missing or no product is cached.
func followUpSpeech(product domain.ProductRecord, property string) string {
	value := domain.UnknownAttribute
	if product != nil {
		value = product.Attribute(property)
	}
	if strings.TrimSpace(property) == "" {
		property = "property"
	}
	return fmt.Sprintf("This product's %s is %s. Anything else?", property, value)
}
