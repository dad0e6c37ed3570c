package api

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/pssabdus/hidrazy-fluent-journey-sub003/internal/auth"
	"github.com/pssabdus/hidrazy-fluent-journey-sub003/internal/ledger"
	"github.com/pssabdus/hidrazy-fluent-journey-sub003/internal/provider"
	"github.com/pssabdus/hidrazy-fluent-journey-sub003/internal/tutor"
	"github.com/pssabdus/hidrazy-fluent-journey-sub003/internal/usage"
)

const defaultVoice = "alloy"

// ChatGateway and SpeechGateway are what the handlers need from the
// provider layer; *provider.Gateway satisfies both.
type ChatGateway interface {
	Complete(ctx context.Context, req *provider.ChatRequest) (*provider.ChatResponse, error)
}

type SpeechGateway interface {
	Synthesize(ctx context.Context, req *provider.SpeechRequest) (*provider.SpeechResponse, error)
}

// AudioCache is the best-effort TTS cache. May be nil.
type AudioCache interface {
	Get(ctx context.Context, model, voice, text string) ([]byte, bool)
	Set(ctx context.Context, model, voice, text string, audio []byte)
}

type Handler struct {
	store  ledger.Store
	agg    *usage.Aggregator
	limits usage.Limits
	chat   ChatGateway
	speech SpeechGateway
	audio  AudioCache
	tracer trace.Tracer
}

func NewHandler(store ledger.Store, limits usage.Limits, chat ChatGateway, speech SpeechGateway, audio AudioCache, tracer trace.Tracer) *Handler {
	return &Handler{
		store:  store,
		agg:    usage.NewAggregator(store),
		limits: limits,
		chat:   chat,
		speech: speech,
		audio:  audio,
		tracer: tracer,
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// HandleGetUsage serves GET /v1/usage. Unlike the pre-request check,
// the display path fails hard when the ledger is unavailable.
func (h *Handler) HandleGetUsage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := auth.GetUserID(ctx)
	if userID == "" {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}

	monthly, daily, err := h.agg.Report(ctx, userID, time.Now())
	if err != nil {
		log.Printf("usage: failed to aggregate for user %s: %v", userID, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "usage data unavailable"})
		return
	}

	warnings := usage.Warnings(monthly, h.limits)
	if warnings == nil {
		warnings = []string{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"monthly_stats": monthly,
		"daily_stats":   daily,
		"limits":        h.limits,
		"warnings":      warnings,
	})
}

type checkRequest struct {
	RequestType usage.RequestType `json:"request_type"`
}

type checkResponse struct {
	Allowed  bool   `json:"allowed"`
	Degraded bool   `json:"degraded,omitempty"`
	Fallback string `json:"fallback,omitempty"`
	Message  string `json:"message,omitempty"`
}

// HandleCheckLimits serves POST /v1/usage/check. A ledger outage is
// swallowed here: the check fails open so a monitoring problem never
// blocks the product.
func (h *Handler) HandleCheckLimits(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := auth.GetUserID(ctx)
	if userID == "" {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}

	var req checkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	_, span := h.tracer.Start(ctx, "api.check_limits")
	defer span.End()
	span.SetAttributes(
		attribute.String("user_id", userID),
		attribute.String("request_type", string(req.RequestType)),
	)

	decision := h.decide(ctx, userID, req.RequestType)

	writeJSON(w, http.StatusOK, checkResponse{
		Allowed:  decision.Allowed(),
		Degraded: decision.Outcome == usage.OutcomeAllowedDegraded,
		Fallback: decision.Fallback,
		Message:  decision.Message,
	})
}

// decide aggregates and evaluates, failing open on ledger errors.
func (h *Handler) decide(ctx context.Context, userID string, requestType usage.RequestType) usage.Decision {
	monthly, daily, err := h.agg.Report(ctx, userID, time.Now())
	if err != nil {
		log.Printf("usage: ledger unavailable for limit check, allowing request: %v", err)
		return usage.Degraded()
	}
	return usage.Evaluate(requestType, monthly, daily, h.limits)
}

type chatRequest struct {
	Messages  []chatMessage `json:"messages"`
	Detailed  bool          `json:"detailed"`
	Complex   bool          `json:"complex"`
	MaxTokens int           `json:"max_tokens"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// HandleChat serves POST /v1/chat — one conversation turn with Razia.
// The model selector runs first, then the quota policy; a premium
// denial downgrades to the fallback tier instead of failing the turn.
func (h *Handler) HandleChat(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := auth.GetUserID(ctx)
	if userID == "" {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}

	requestID := auth.GetRequestID(ctx)
	if requestID == "" {
		requestID = uuid.New().String()
	}

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if len(req.Messages) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "messages are required"})
		return
	}

	model := tutor.SelectModel(tutor.Signals{WantsDetailed: req.Detailed, Complex: req.Complex})

	requestType := usage.RequestConversation
	if model == ledger.ModelPremiumChat {
		requestType = usage.RequestPremiumChat
	}

	_, span := h.tracer.Start(ctx, "api.chat")
	defer span.End()
	span.SetAttributes(
		attribute.String("user_id", userID),
		attribute.String("request_id", requestID),
		attribute.String("model", model),
	)

	var notice string
	decision := h.decide(ctx, userID, requestType)
	switch decision.Outcome {
	case usage.OutcomeDeniedWithFallback:
		model = decision.Fallback
		notice = decision.Message
	case usage.OutcomeDeniedWithMessage:
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"denied":  true,
			"message": decision.Message,
		})
		return
	}

	messages := make([]provider.Message, len(req.Messages))
	for i, m := range req.Messages {
		messages[i] = provider.Message{Role: m.Role, Content: m.Content}
	}

	response, err := h.chat.Complete(ctx, &provider.ChatRequest{
		Model:     model,
		Messages:  messages,
		MaxTokens: req.MaxTokens,
	})
	if err != nil {
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
		return
	}

	h.appendEntry(&ledger.Entry{
		UserID:        userID,
		RequestID:     requestID,
		Model:         model,
		EstimatedCost: ledger.EstimateChatCost(model, response.InputTokens, response.OutputTokens),
		InputTokens:   response.InputTokens,
	})

	respID := response.ID
	if respID == "" {
		respID = uuid.New().String()
	}

	body := map[string]interface{}{
		"id":      respID,
		"content": response.Content,
		"model":   model,
		"usage": map[string]int{
			"prompt_tokens":     response.InputTokens,
			"completion_tokens": response.OutputTokens,
			"total_tokens":      response.InputTokens + response.OutputTokens,
		},
	}
	if notice != "" {
		body["notice"] = notice
	}
	writeJSON(w, http.StatusOK, body)
}

type speechRequest struct {
	Text            string               `json:"text"`
	Voice           string               `json:"voice"`
	Model           string               `json:"model"`
	MessageType     string               `json:"message_type"`
	UserPreferences tutor.TTSPreferences `json:"user_preferences"`
}

type speechResponse struct {
	AudioContent *string `json:"audio_content"`
	AudioURL     *string `json:"audio_url"`
	Skipped      bool    `json:"skipped,omitempty"`
	Reason       string  `json:"reason,omitempty"`
	Denied       bool    `json:"denied,omitempty"`
	Message      string  `json:"message,omitempty"`
	Cached       bool    `json:"cached,omitempty"`
}

// HandleSpeech serves POST /v1/speech. Order matters: the synthesis
// gate runs before the quota check so a skipped message consumes no
// quota, and a cache hit is served before either touches the ledger.
func (h *Handler) HandleSpeech(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := auth.GetUserID(ctx)
	if userID == "" {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}

	requestID := auth.GetRequestID(ctx)
	if requestID == "" {
		requestID = uuid.New().String()
	}

	var req speechRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Text == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "text is required"})
		return
	}

	model := req.Model
	if model == "" {
		model = ledger.ModelSpeech
	}
	voice := req.Voice
	if voice == "" {
		voice = defaultVoice
	}

	_, span := h.tracer.Start(ctx, "api.speech")
	defer span.End()
	span.SetAttributes(
		attribute.String("user_id", userID),
		attribute.String("request_id", requestID),
		attribute.String("message_type", req.MessageType),
		attribute.Int("characters", len(req.Text)),
	)

	if ok, reason := tutor.ShouldSynthesize(req.MessageType, req.UserPreferences); !ok {
		writeJSON(w, http.StatusOK, speechResponse{Skipped: true, Reason: reason})
		return
	}

	if h.audio != nil {
		if cached, ok := h.audio.Get(ctx, model, voice, req.Text); ok {
			writeAudio(w, cached, true)
			return
		}
	}

	decision := h.decide(ctx, userID, usage.RequestSpeech)
	if !decision.Allowed() {
		writeJSON(w, http.StatusOK, speechResponse{Denied: true, Message: decision.Message})
		return
	}

	response, err := h.speech.Synthesize(ctx, &provider.SpeechRequest{
		Model: model,
		Voice: voice,
		Text:  req.Text,
	})
	if err != nil {
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
		return
	}

	// Quota is accounted in characters, recorded under the speech tag
	// regardless of which upstream voice model ran.
	h.appendEntry(&ledger.Entry{
		UserID:        userID,
		RequestID:     requestID,
		Model:         ledger.ModelSpeech,
		EstimatedCost: ledger.EstimateSpeechCost(response.Characters),
		InputTokens:   response.Characters,
	})

	if h.audio != nil {
		h.audio.Set(ctx, model, voice, req.Text, response.Audio)
	}

	writeAudio(w, response.Audio, false)
}

func writeAudio(w http.ResponseWriter, audio []byte, cached bool) {
	encoded := base64.StdEncoding.EncodeToString(audio)
	url := "data:audio/mp3;base64," + encoded
	writeJSON(w, http.StatusOK, speechResponse{
		AudioContent: &encoded,
		AudioURL:     &url,
		Cached:       cached,
	})
}

// appendEntry records a billable call without blocking the response.
func (h *Handler) appendEntry(entry *ledger.Entry) {
	go func() {
		if err := h.store.Append(context.Background(), entry); err != nil {
			log.Printf("ledger: failed to append entry for user %s: %v", entry.UserID, err)
		}
	}()
}
