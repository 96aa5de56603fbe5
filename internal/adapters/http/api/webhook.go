package api

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	service "github.com/okian/fulfillment/internal/app"
	"github.com/okian/fulfillment/internal/domain/model"
	"github.com/okian/fulfillment/internal/fulfillment"
	"github.com/okian/fulfillment/pkg/logger"
)

// SecretHeader carries the shared webhook secret.
const SecretHeader = "X-Webhook-Secret"

const maxWebhookBody = 1 << 20

// webhookRequest mirrors the platform's fulfillment request envelope.
type webhookRequest struct {
	ResponseID  string      `json:"responseId"`
	Session     string      `json:"session"`
	QueryResult queryResult `json:"queryResult"`
}

type queryResult struct {
	QueryText      string         `json:"queryText"`
	Parameters     map[string]any `json:"parameters"`
	Intent         intentRef      `json:"intent"`
	OutputContexts []wireContext  `json:"outputContexts"`
}

type intentRef struct {
	Name        string `json:"name,omitempty"`
	DisplayName string `json:"displayName"`
}

type wireContext struct {
	Name          string         `json:"name"`
	LifespanCount int            `json:"lifespanCount"`
	Parameters    map[string]any `json:"parameters,omitempty"`
}

// webhookResponse mirrors the platform's fulfillment response envelope.
type webhookResponse struct {
	FulfillmentText string        `json:"fulfillmentText"`
	OutputContexts  []wireContext `json:"outputContexts,omitempty"`
}

func (req webhookRequest) validate() error {
	if strings.TrimSpace(req.QueryResult.Intent.DisplayName) == "" {
		return errors.New("missing queryResult.intent.displayName")
	}
	return nil
}

// WebhookHandler answers fulfillment calls from the platform.
type WebhookHandler struct {
	deps   Dependencies
	secret string
	log    logger.Logger
}

// NewWebhookHandler creates a new webhook handler.
func NewWebhookHandler(deps Dependencies, secret string, log logger.Logger) *WebhookHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &WebhookHandler{deps: deps, secret: secret, log: log}
}

// HandleWebhook handles POST /webhook requests.
func (h *WebhookHandler) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	const op = "api.webhook"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	if h.secret != "" && subtle.ConstantTimeCompare([]byte(r.Header.Get(SecretHeader)), []byte(h.secret)) != 1 {
		writeError(w, http.StatusUnauthorized, "unauthorized", NewKind(op, ErrUnauthorized))
		return
	}

	var req webhookRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxWebhookBody)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	ctx := r.Context()
	turn := h.turn(r, req)
	reply, err := h.deps.Fulfill(ctx, turn)
	switch {
	case err == nil, errors.Is(err, fulfillment.ErrUnknownIntent):
		// unknown intents still get the fallback text so the turn is answered
	case errors.Is(err, service.ErrNotStarted):
		writeError(w, http.StatusServiceUnavailable, "unavailable", WrapKind(op, ErrUnavailable, err))
		return
	default:
		h.log.Error(ctx, "fulfillment failed", logger.Error(err), logger.String("intent", turn.Intent))
		writeError(w, http.StatusInternalServerError, "internal", WrapKind(op, ErrInternal, err))
		return
	}

	resp := webhookResponse{FulfillmentText: reply.Text}
	if reply.Context != nil {
		resp.OutputContexts = []wireContext{{
			Name:          qualify(req.Session, reply.Context.Name),
			LifespanCount: reply.Context.Lifespan,
			Parameters:    reply.Context.Parameters,
		}}
	}
	writeJSON(w, http.StatusOK, resp)
}

// turn converts the envelope. Contexts the service does not know, such as
// the platform's own system contexts, are dropped.
func (h *WebhookHandler) turn(r *http.Request, req webhookRequest) fulfillment.Turn {
	contexts := make([]model.Context, 0, len(req.QueryResult.OutputContexts))
	for _, wc := range req.QueryResult.OutputContexts {
		name, err := model.ParseContextName(wc.Name)
		if err != nil {
			h.log.Debug(r.Context(), "ignoring context", logger.String("name", wc.Name))
			continue
		}
		contexts = append(contexts, model.Context{Name: name, Lifespan: wc.LifespanCount, Parameters: wc.Parameters})
	}
	return fulfillment.Turn{
		ID:       req.ResponseID,
		Session:  req.Session,
		Intent:   strings.TrimSpace(req.QueryResult.Intent.DisplayName),
		Params:   req.QueryResult.Parameters,
		Contexts: contexts,
	}
}

// qualify scopes a context name under the session path.
func qualify(session string, name model.ContextName) string {
	if session == "" {
		return string(name)
	}
	return strings.TrimSuffix(session, "/") + "/contexts/" + string(name)
}
