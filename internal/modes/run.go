package modes

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/Dicklesworthstone/quorum/internal/events"
	"github.com/Dicklesworthstone/quorum/internal/gateway"
)

// Gateway is the model-gateway contract runners depend on. Failures are nil
// results, never errors.
type Gateway interface {
	QueryOne(ctx context.Context, model, prompt string, timeout time.Duration) *gateway.Result
	QueryOneWithMessages(ctx context.Context, model string, turns []gateway.Turn, timeout time.Duration) *gateway.Result
	QueryMany(ctx context.Context, models []string, prompt string, timeout time.Duration) map[string]*gateway.Result
	QueryManyWithMessages(ctx context.Context, models []string, turns []gateway.Turn, timeout time.Duration) map[string]*gateway.Result
}

// StageRecord is one persisted pipeline phase row. Records are appended in a
// total order consistent with event order.
type StageRecord struct {
	StageType      string `json:"stage_type"`
	StageOrder     int    `json:"stage_order"`
	Model          string `json:"model,omitempty"`
	Role           string `json:"role,omitempty"`
	Content        string `json:"content"`
	ParsedData     any    `json:"parsed_data,omitempty"`
	ResponseTimeMS int64  `json:"response_time_ms,omitempty"`
}

// StageResponse is a model's surviving initial answer: non-empty content,
// immutable thereafter.
type StageResponse struct {
	Model          string `json:"model"`
	Response       string `json:"response"`
	ResponseTimeMS int64  `json:"response_time_ms"`
}

// Run carries one pipeline execution: identity, inputs, collaborators, and
// the accumulated stage records.
type Run struct {
	Def            Definition
	Question       string
	ConversationID string
	MessageID      string
	History        []gateway.Turn
	Config         Config
	Models         []string
	GW             Gateway
	Timeout        time.Duration
	Logger         *slog.Logger

	emitter events.Emitter
	stages  []StageRecord
}

// NewRun builds a run carrier. The model list and timeout are resolved from
// the config bag with registry defaults.
func NewRun(def Definition, question, conversationID, messageID string, history []gateway.Turn, cfg Config, gw Gateway, em events.Emitter, logger *slog.Logger) *Run {
	if cfg == nil {
		cfg = Config{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	timeout := def.DefaultTimeout
	if ms := cfg.Int("timeoutMs", 0); ms > 0 {
		timeout = time.Duration(ms) * time.Millisecond
	}
	return &Run{
		Def:            def,
		Question:       question,
		ConversationID: conversationID,
		MessageID:      messageID,
		History:        history,
		Config:         cfg,
		Models:         cfg.Models(),
		GW:             gw,
		Timeout:        timeout,
		Logger:         logger,
		emitter:        em,
	}
}

// Emit sends one typed event to the stream. Emitter failures are logged, not
// fatal: a slow consumer must not kill the pipeline.
func (r *Run) Emit(eventType string, data any) {
	if err := r.emitter.Emit(events.Event{Type: eventType, Data: data}); err != nil {
		r.Logger.Warn("event emit failed", "type", eventType, "error", err)
	}
}

// Fatal emits the terminal error event and returns the run error. Stage
// records accumulated so far stay available through Stages.
func (r *Run) Fatal(msg string) error {
	if err := r.emitter.Emit(events.Event{Type: events.TypeError, Message: msg}); err != nil {
		r.Logger.Warn("error event emit failed", "error", err)
	}
	r.Logger.Error("run failed", "mode", r.Def.ID, "reason", msg)
	return errors.New(msg)
}

// Record appends one stage record.
func (r *Run) Record(stageType, model, role, content string, parsed any, responseTimeMS int64) {
	r.stages = append(r.stages, StageRecord{
		StageType:      stageType,
		StageOrder:     len(r.stages),
		Model:          model,
		Role:           role,
		Content:        content,
		ParsedData:     parsed,
		ResponseTimeMS: responseTimeMS,
	})
}

// Stages returns the accumulated stage records.
func (r *Run) Stages() []StageRecord {
	return r.stages
}

// StartData is the common payload of every `<mode>_start` event.
type StartData struct {
	ConversationID string   `json:"conversation_id"`
	MessageID      string   `json:"message_id"`
	Mode           string   `json:"mode"`
	Models         []string `json:"models"`
	Warning        string   `json:"warning,omitempty"`
}

// Start emits the `<mode>_start` event.
func (r *Run) Start(warning string) {
	r.Emit(r.Def.ID+"_start", StartData{
		ConversationID: r.ConversationID,
		MessageID:      r.MessageID,
		Mode:           r.Def.ID,
		Models:         r.Models,
		Warning:        warning,
	})
}

// Turns builds the gateway message list: prior history plus the prompt as
// the current user turn. Modes without multi-turn support pass no history.
func (r *Run) Turns(prompt string) []gateway.Turn {
	turns := make([]gateway.Turn, 0, len(r.History)+1)
	if r.Def.SupportsMultiTurn {
		turns = append(turns, r.History...)
	}
	return append(turns, gateway.Turn{Role: "user", Content: prompt})
}

// PhaseCounts is the partial-failure accounting every phase reports.
type PhaseCounts struct {
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
}

// Collect fans turns out to models, keeps responses with non-empty content
// in model-list order, and records one stage per surviving call.
func (r *Run) Collect(ctx context.Context, stageType string, models []string, turns []gateway.Turn) []StageResponse {
	results := r.GW.QueryManyWithMessages(ctx, models, turns, r.Timeout)

	var out []StageResponse
	for _, model := range models {
		res := results[model]
		if res == nil || res.Content == "" {
			r.Logger.Debug("model dropped from stage", "stage", stageType, "model", model)
			continue
		}
		sr := StageResponse{Model: model, Response: res.Content, ResponseTimeMS: res.ResponseTimeMS}
		out = append(out, sr)
		r.Record(stageType, model, "", res.Content, nil, res.ResponseTimeMS)
	}
	return out
}

// ModelCall is one entry of a heterogeneous parallel fan-out: a distinct
// prompt per call, keyed for join.
type ModelCall struct {
	Key    string
	Model  string
	Prompt string
}

// FanOut runs distinct prompts in parallel, one gateway call each. The join
// is a barrier; results are keyed by ModelCall.Key with nil for failures.
func (r *Run) FanOut(ctx context.Context, calls []ModelCall) map[string]*gateway.Result {
	results := make(map[string]*gateway.Result, len(calls))
	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, call := range calls {
		wg.Add(1)
		go func(c ModelCall) {
			defer wg.Done()
			res := r.GW.QueryOne(ctx, c.Model, c.Prompt, r.Timeout)
			mu.Lock()
			results[c.Key] = res
			mu.Unlock()
		}(call)
	}
	wg.Wait()
	return results
}
