package modes

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Dicklesworthstone/quorum/internal/events"
	"github.com/Dicklesworthstone/quorum/internal/gateway"
	"github.com/Dicklesworthstone/quorum/internal/prompts"
	"github.com/google/uuid"
)

// Runner executes one mode pipeline. It emits `<mode>_start` first and, on
// fatal conditions, the terminal error event before returning the error.
// On success it returns the final answer without emitting `complete`.
type Runner func(ctx context.Context, r *Run) (string, error)

// runners maps mode id to its pipeline. Populated at init by the per-mode
// files.
var runners = map[string]Runner{}

// Request is one deliberation request as the dispatcher sees it.
type Request struct {
	Question       string
	Mode           string
	ConversationID string
	History        []gateway.Turn
	Config         Config
}

// Result is the dispatcher's summary of one finished run.
type Result struct {
	ConversationID string
	MessageID      string
	Answer         string
	Title          string
	Stages         []StageRecord
	Err            error
}

// Dispatcher validates requests, routes them to runners, and appends the
// shared terminal events (title_complete, complete).
type Dispatcher struct {
	GW           Gateway
	Logger       *slog.Logger
	TitleTimeout time.Duration
}

// NewDispatcher wires a dispatcher around a gateway.
func NewDispatcher(gw Gateway, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{GW: gw, Logger: logger, TitleTimeout: 10 * time.Second}
}

// DefaultTitle is the title fallback when generation fails.
const DefaultTitle = "New Conversation"

// Execute runs one request end to end, streaming events to em. Stage records
// are returned even after a fatal error so partial results persist.
func (d *Dispatcher) Execute(ctx context.Context, req Request, em events.Emitter) Result {
	out := Result{ConversationID: req.ConversationID}
	if out.ConversationID == "" {
		out.ConversationID = uuid.NewString()
	}
	out.MessageID = uuid.NewString()

	def, ok := Lookup(req.Mode)
	if !ok {
		out.Err = emitError(em, d.Logger, fmt.Sprintf("unknown mode %q", req.Mode))
		return out
	}
	runner, ok := runners[req.Mode]
	if !ok {
		out.Err = emitError(em, d.Logger, fmt.Sprintf("mode %q has no runner", req.Mode))
		return out
	}

	r := NewRun(def, req.Question, out.ConversationID, out.MessageID, req.History, req.Config, d.GW, em, d.Logger)
	if n := len(r.Models); n < def.MinModels || n > def.MaxModels {
		out.Err = emitError(em, d.Logger, fmt.Sprintf("%s requires between %d and %d models, got %d",
			def.Name, def.MinModels, def.MaxModels, n))
		return out
	}

	start := time.Now()
	answer, err := runner(ctx, r)
	out.Stages = r.Stages()
	if err != nil {
		// Runner already emitted the error event.
		out.Err = err
		return out
	}
	out.Answer = answer
	d.Logger.Info("run complete", "mode", def.ID, "conversation", out.ConversationID,
		"stages", len(out.Stages), "elapsed_ms", time.Since(start).Milliseconds())

	out.Title = d.generateTitle(ctx, r)
	r.Emit(events.TypeTitleComplete, map[string]string{"title": out.Title})
	r.Emit(events.TypeComplete, map[string]string{
		"conversation_id": out.ConversationID,
		"message_id":      out.MessageID,
	})
	return out
}

// generateTitle issues the short post-run titling call. Failure is non-fatal
// and falls back to DefaultTitle.
func (d *Dispatcher) generateTitle(ctx context.Context, r *Run) string {
	model := r.Config.String("titleModel", "")
	if model == "" && len(r.Models) > 0 {
		model = r.Models[0]
	}
	if model == "" {
		return DefaultTitle
	}

	res := d.GW.QueryOne(ctx, model, prompts.Title(r.Question), d.TitleTimeout)
	if res == nil {
		return DefaultTitle
	}
	title := strings.TrimSpace(strings.Trim(res.Content, "\"'“”"))
	if title == "" {
		return DefaultTitle
	}
	if runes := []rune(title); len(runes) > 50 {
		title = string(runes[:49]) + "…"
	}
	return title
}

func emitError(em events.Emitter, logger *slog.Logger, msg string) error {
	if err := em.Emit(events.Event{Type: events.TypeError, Message: msg}); err != nil {
		logger.Warn("error event emit failed", "error", err)
	}
	return fmt.Errorf("%s", msg)
}
