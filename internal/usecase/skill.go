package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"catalog-skill/internal/domain"
)

const (
	IntentGetProduct       = "GetProductIntent"
	IntentGetProductFilter = "GetProductFilterIntent"
	IntentGetNextEvent     = "GetNextEventIntent"
	IntentHelp             = "AMAZON.HelpIntent"
	IntentStop             = "AMAZON.StopIntent"
	IntentCancel           = "AMAZON.CancelIntent"
)

const (
	defaultLookupThreshold = 3

	speechError      = "There was an error looking up this product."
	speechNoResults  = "No results found."
	speechGoodbye    = "Goodbye."
	speechWelcome    = "What product ID would you like to look up?"
	speechLinkNeeded = "Please link your catalog account to use this skill."
	speechHelp       = "With the product catalog, you can ask for information about products stored in your catalog. " +
		"For example, you could say 'ask about product 123', or 'what is the color of product 123'. Now, how can I assist?"
	repromptDefault = "What would you like to know about your products?"
	cardWelcome     = "Welcome to the Product Catalog!"
)

// CatalogReader issues read-only catalog queries. Implemented by the catalog
// integration client; faked in tests.
type CatalogReader interface {
	GetProduct(ctx context.Context, productID, accessToken string) (domain.ProductRecord, error)
	Search(ctx context.Context, query string) ([]string, error)
}

// IntentInput is one decoded conversational turn.
type IntentInput struct {
	Name        string
	Slots       map[string]string
	AccessToken string
	State       domain.ConversationState
}

// Outcome is the result of one handled turn: what to speak, whether the
// conversation stays open, and the updated session state to persist.
type Outcome struct {
	Speech            string
	SSML              bool
	Reprompt          string
	CardTitle         string
	CardContent       string
	EndSession        bool
	ResolvedProductID string
	State             domain.ConversationState
}

// SkillService is the dialogue controller: it routes each turn by intent,
// accumulates filter criteria, decides when to query the catalog, and answers
// attribute questions from the cached product record.
type SkillService struct {
	catalog         CatalogReader
	lookupThreshold int
}

func NewSkillService(catalog CatalogReader, lookupThreshold int) (*SkillService, error) {
	if catalog == nil {
		return nil, errors.New("usecase: catalog reader must not be nil")
	}
	if lookupThreshold <= 0 {
		lookupThreshold = defaultLookupThreshold
	}
	return &SkillService{catalog: catalog, lookupThreshold: lookupThreshold}, nil
}

// HandleSessionStart is invoked when the platform opens a new session.
func (s *SkillService) HandleSessionStart(_ context.Context, sessionID string) {
	slog.Info("session started", "sessionId", sessionID)
}

// HandleSessionEnd is invoked when the platform closes the session.
func (s *SkillService) HandleSessionEnd(_ context.Context, sessionID string) {
	slog.Info("session ended", "sessionId", sessionID)
}

// HandleLaunch produces the welcome outcome for a bare skill launch.
func (s *SkillService) HandleLaunch(_ context.Context) Outcome {
	return Outcome{
		Speech:      speechWelcome,
		SSML:        true,
		Reprompt:    speechHelp,
		CardTitle:   cardWelcome,
		CardContent: speechWelcome,
	}
}

// HandleIntent routes one turn to the matching sub-flow. Every failure path
// yields a spoken outcome; nothing propagates to the platform as an error.
func (s *SkillService) HandleIntent(ctx context.Context, in IntentInput) Outcome {
	switch in.Name {
	case IntentGetProduct:
		return s.handleProductLookup(ctx, in)
	case IntentGetProductFilter:
		return s.handleProductFilter(ctx, in)
	case IntentGetNextEvent:
		return s.handleFollowUp(in)
	case IntentHelp:
		return Outcome{Speech: speechHelp, Reprompt: repromptDefault, State: in.State}
	case IntentStop, IntentCancel:
		return Outcome{Speech: speechGoodbye, EndSession: true, State: in.State}
	default:
		return Outcome{
			Speech:   "Sorry, I didn't catch that. " + repromptDefault,
			Reprompt: repromptDefault,
			State:    in.State,
		}
	}
}

// handleProductLookup fetches a product directly by id, bypassing the filter
// machinery entirely. A successful lookup discards accumulated filters.
func (s *SkillService) handleProductLookup(ctx context.Context, in IntentInput) Outcome {
	productID := strings.TrimSpace(in.Slots["number"])
	if productID == "" {
		return Outcome{Speech: speechWelcome, Reprompt: repromptDefault, State: in.State}
	}
	if in.AccessToken == "" {
		return Outcome{Speech: speechLinkNeeded, EndSession: true, State: in.State}
	}

	product, err := s.catalog.GetProduct(ctx, productID, in.AccessToken)
	if err != nil {
		slog.Error("product lookup failed", "productId", productID, "err", classify(err))
		return Outcome{Speech: speechError, EndSession: true, State: in.State}
	}

	state := in.State
	state.Filters = nil
	state.Product = product
	return Outcome{
		Speech:            firstEventSpeech(product, in.Slots["property"]),
		SSML:              true,
		Reprompt:          repromptDefault,
		ResolvedProductID: productID,
		State:             state,
	}
}

// handleProductFilter accumulates one criterion and either prompts for more
// detail or, once the serialized query reaches the lookup threshold, searches
// the catalog and resolves the first match.
func (s *SkillService) handleProductFilter(ctx context.Context, in IntentInput) Outcome {
	if in.AccessToken == "" {
		return Outcome{Speech: speechLinkNeeded, EndSession: true, State: in.State}
	}

	state := in.State
	state.Filters = appendCriterion(state.Filters, in.Slots["productName"], in.Slots["property"], in.Slots["propertyValue"])

	query := serializeQuery(in.AccessToken, state.Filters)
	segments := querySegments(query)
	if segments < s.lookupThreshold {
		return Outcome{Speech: collectingPrompt(segments), Reprompt: repromptDefault, State: state}
	}

	ids, err := s.catalog.Search(ctx, query)
	if err != nil {
		slog.Error("product search failed", "segments", segments, "err", classify(err))
		return Outcome{Speech: speechError, EndSession: true, State: state}
	}

	productID, err := reduceSearchResult(ids)
	if err != nil {
		// Accumulated filters survive a no-results outcome; only a direct
		// id lookup clears them.
		return Outcome{Speech: speechNoResults, EndSession: true, State: state}
	}

	product, err := s.catalog.GetProduct(ctx, productID, in.AccessToken)
	if err != nil {
		slog.Error("product fetch after search failed", "productId", productID, "err", classify(err))
		return Outcome{Speech: speechError, EndSession: true, State: state}
	}

	state.Product = product
	return Outcome{
		Speech:            summarySpeech(product),
		SSML:              true,
		Reprompt:          repromptDefault,
		ResolvedProductID: productID,
		State:             state,
	}
}

// handleFollowUp answers an attribute question from the cached record with no
// catalog call. With no cached product the sentinel is spoken.
func (s *SkillService) handleFollowUp(in IntentInput) Outcome {
	return Outcome{
		Speech:   followUpSpeech(in.State.Product, in.Slots["property"]),
		Reprompt: repromptDefault,
		State:    in.State,
	}
}

// firstEventSpeech answers the turn immediately after a direct id resolution:
// a single attribute when one was asked for, otherwise the full summary.
func firstEventSpeech(product domain.ProductRecord, property string) string {
	property = strings.TrimSpace(property)
	if property == "" {
		return summarySpeech(product)
	}
	return fmt.Sprintf("This product's %s is %s. Would you like to know more about this product?", property, product.Attribute(property))
}

// classify wraps catalog failures in the usecase error taxonomy for logging.
func classify(err error) error {
	var statusErr interface{ HTTPStatusCode() int }
	if errors.As(err, &statusErr) {
		return newError(ErrorTransport, fmt.Sprintf("catalog_status_%d", statusErr.HTTPStatusCode()), err)
	}
	var usecaseErr *Error
	if errors.As(err, &usecaseErr) {
		return err
	}
	return newError(ErrorDataFormat, "catalog_decode", err)
}
