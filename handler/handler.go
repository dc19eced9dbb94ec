package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"catalog-skill/internal/domain"
	"catalog-skill/internal/usecase"
)

// SkillService is the dialogue controller capability consumed by the adapter.
type SkillService interface {
	HandleLaunch(ctx context.Context) usecase.Outcome
	HandleIntent(ctx context.Context, in usecase.IntentInput) usecase.Outcome
	HandleSessionStart(ctx context.Context, sessionID string)
	HandleSessionEnd(ctx context.Context, sessionID string)
}

// TurnStore records handled turns for auditing. Writes are best-effort: a
// failure is logged and never surfaces in the spoken response.
type TurnStore interface {
	GetConversationTurnCount(ctx context.Context, sessionID string) (int, error)
	SaveCompletedTurn(ctx context.Context, sessionID, intentName, speech, productID string, turns int) error
}

// Handler adapts the voice-platform Lambda envelope to the skill service.
type Handler struct {
	svc           SkillService
	turns         TurnStore
	applicationID string
}

// NewHandler creates a Handler. applicationID is the skill id every inbound
// envelope must carry; an empty value disables the check (local testing).
func NewHandler(svc SkillService, turns TurnStore, applicationID string) (*Handler, error) {
	if svc == nil {
		return nil, errors.New("handler: skill service must not be nil")
	}
	if turns == nil {
		return nil, errors.New("handler: turn store must not be nil")
	}
	return &Handler{svc: svc, turns: turns, applicationID: applicationID}, nil
}

// Handle processes one inbound turn. Only an application-id mismatch is
// returned as a Lambda-level error; everything else becomes a spoken response.
func (h *Handler) Handle(ctx context.Context, env RequestEnvelope) (ResponseEnvelope, error) {
	if h.applicationID != "" && env.Session.Application.ApplicationID != h.applicationID {
		return ResponseEnvelope{}, fmt.Errorf("handler: application id mismatch: %q", env.Session.Application.ApplicationID)
	}

	sessionID := env.Session.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	if env.Session.New {
		h.svc.HandleSessionStart(ctx, sessionID)
	}

	switch env.Request.Type {
	case RequestTypeLaunch:
		slog.Info("handling launch", "sessionId", sessionID, "requestId", env.Request.RequestID)
		return buildResponse(h.svc.HandleLaunch(ctx)), nil

	case RequestTypeIntent:
		out := h.svc.HandleIntent(ctx, usecase.IntentInput{
			Name:        env.Request.Intent.Name,
			Slots:       flattenSlots(env.Request.Intent.Slots),
			AccessToken: env.Session.User.AccessToken,
			State:       decodeState(env.Session.Attributes),
		})
		h.auditTurn(ctx, sessionID, env.Request.Intent.Name, out)
		return buildResponse(out), nil

	case RequestTypeSessionEnded:
		h.svc.HandleSessionEnd(ctx, sessionID)
		return ResponseEnvelope{Version: "1.0"}, nil

	default:
		slog.Warn("unsupported request type", "type", env.Request.Type, "requestId", env.Request.RequestID)
		return ResponseEnvelope{Version: "1.0"}, nil
	}
}

// auditTurn records the handled turn and its running count.
func (h *Handler) auditTurn(ctx context.Context, sessionID, intentName string, out usecase.Outcome) {
	turns, err := h.turns.GetConversationTurnCount(ctx, sessionID)
	if err != nil {
		slog.Warn("turn count read failed", "sessionId", sessionID, "err", err)
	}
	if err := h.turns.SaveCompletedTurn(ctx, sessionID, intentName, out.Speech, out.ResolvedProductID, turns+1); err != nil {
		slog.Warn("turn audit write failed", "sessionId", sessionID, "err", err)
	}
}

// flattenSlots reduces the platform slot structure to name → spoken value.
func flattenSlots(slots map[string]Slot) map[string]string {
	out := make(map[string]string, len(slots))
	for name, slot := range slots {
		out[name] = slot.Value
	}
	return out
}

// decodeState reads the conversation state out of the session attributes.
// Malformed attributes start the conversation over rather than failing the turn.
func decodeState(attrs map[string]json.RawMessage) domain.ConversationState {
	if len(attrs) == 0 {
		return domain.ConversationState{}
	}
	raw, err := json.Marshal(attrs)
	if err != nil {
		slog.Warn("session attributes marshal failed", "err", err)
		return domain.ConversationState{}
	}
	var state domain.ConversationState
	if err := json.Unmarshal(raw, &state); err != nil {
		slog.Warn("session attributes decode failed", "err", err)
		return domain.ConversationState{}
	}
	return state
}

// encodeState persists the conversation state back into session attributes.
func encodeState(state domain.ConversationState) map[string]json.RawMessage {
	raw, err := json.Marshal(state)
	if err != nil {
		slog.Warn("session state marshal failed", "err", err)
		return nil
	}
	var attrs map[string]json.RawMessage
	if err := json.Unmarshal(raw, &attrs); err != nil {
		slog.Warn("session state encode failed", "err", err)
		return nil
	}
	return attrs
}

// buildResponse converts a dialogue outcome into the platform envelope.
func buildResponse(out usecase.Outcome) ResponseEnvelope {
	speech := plainSpeech(out.Speech)
	if out.SSML {
		speech = ssmlSpeech(out.Speech)
	}

	resp := Response{
		OutputSpeech:     speech,
		ShouldEndSession: out.EndSession,
	}
	if out.Reprompt != "" {
		resp.Reprompt = &Reprompt{OutputSpeech: plainSpeech(out.Reprompt)}
	}
	if out.CardTitle != "" || out.CardContent != "" {
		resp.Card = &Card{Type: "Simple", Title: out.CardTitle, Content: out.CardContent}
	}

	return ResponseEnvelope{
		Version:           "1.0",
		SessionAttributes: encodeState(out.State),
		Response:          resp,
	}
}
