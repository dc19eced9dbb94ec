package domain

// ConversationState is the per-conversation state handed to the skill by the
// voice platform's session store at turn start and persisted back at turn end.
// The skill itself never holds state across turns.
type ConversationState struct {
	// Filters is the ordered sequence of accumulated criteria. Insertion
	// order is significant: later criteria append to the serialized query.
	Filters []FilterCriterion `json:"filters,omitempty"`

	// Product is the cached record of the most recently resolved product.
	// Replaced wholesale on each new resolution, never merged.
	Product ProductRecord `json:"productData,omitempty"`
}

// HasProduct reports whether a resolved product is cached.
func (s ConversationState) HasProduct() bool {
	return len(s.Product) > 0
}

// TurnRecord is a single persisted audit entry for one handled intent.
type TurnRecord struct {
	PK        string
	SK        string
	SessionID string
	Intent    string
	Speech    string
	ProductID string
	TTL       int64
}

// ConversationMeta stores aggregate per-conversation audit state.
type ConversationMeta struct {
	PK           string
	SK           string
	SessionID    string
	LastActivity string
	Turns        int
	TTL          int64
}
