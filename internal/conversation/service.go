package conversation

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"

	"github.com/careloop/hospital-scheduler/internal/observability/metrics"
	"github.com/careloop/hospital-scheduler/pkg/logging"
)

var conversationTracer = otel.Tracer("scheduler.internal.conversation")

const (
	replyRephrase          = "I couldn't understand your request. Can you rephrase?"
	replyRetry             = "Please try again."
	replyOracleUnavailable = "The scheduling assistant is unavailable right now. Please try again in a moment."

	defaultOracleTimeout = 30 * time.Second
)

// BookingResolver dispatches a completed extraction. The reply is always
// user-facing; final=true means the conversation reached a terminal outcome
// and its history should be cleared.
type BookingResolver interface {
	Resolve(ctx context.Context, fields BookingFields, userMessage string) (reply string, final bool)
}

// Service runs one chat turn end to end: record the turn, consult the
// oracle, classify its reply, and hand completed extractions to the
// resolver.
type Service struct {
	llm           LLMClient
	history       *HistoryStore
	resolver      BookingResolver
	metrics       *metrics.SchedulerMetrics
	logger        *logging.Logger
	oracleTimeout time.Duration
}

// NewService constructs the turn service.
func NewService(llm LLMClient, history *HistoryStore, resolver BookingResolver, m *metrics.SchedulerMetrics, logger *logging.Logger, oracleTimeout time.Duration) *Service {
	if llm == nil {
		panic("conversation: llm client required")
	}
	if history == nil {
		panic("conversation: history store required")
	}
	if resolver == nil {
		panic("conversation: booking resolver required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	if oracleTimeout <= 0 {
		oracleTimeout = defaultOracleTimeout
	}
	return &Service{
		llm:           llm,
		history:       history,
		resolver:      resolver,
		metrics:       m,
		logger:        logger,
		oracleTimeout: oracleTimeout,
	}
}

// HandleTurn processes one user message for a session and returns the reply
// to show the user. Every failure path yields a user-facing string; nothing
// propagates to the transport layer as an error.
func (s *Service) HandleTurn(ctx context.Context, sessionID, userMessage string) string {
	ctx, span := conversationTracer.Start(ctx, "conversation.handle_turn")
	defer span.End()

	if err := s.history.Append(ctx, sessionID, ChatMessage{Role: ChatRoleUser, Content: userMessage}); err != nil {
		span.RecordError(err)
		s.logger.Error("failed to record user turn", "error", err, "session_id", sessionID)
		s.metrics.ObserveTurn("history_error")
		return replyRetry
	}

	history, err := s.history.Snapshot(ctx, sessionID)
	if err != nil {
		span.RecordError(err)
		s.logger.Error("failed to load history", "error", err, "session_id", sessionID)
		s.metrics.ObserveTurn("history_error")
		return replyRetry
	}

	// The oracle call resolves fully before any store transaction starts, so
	// a stalled model can never hold a database transaction open.
	oracleCtx, cancel := context.WithTimeout(ctx, s.oracleTimeout)
	defer cancel()

	started := time.Now()
	resp, err := s.llm.Complete(oracleCtx, LLMRequest{
		System:   []string{schedulerSystemPrompt},
		Messages: history,
	})
	s.metrics.ObserveOracleLatency(time.Since(started).Seconds())
	if err != nil {
		span.RecordError(err)
		s.logger.Error("oracle completion failed", "error", err, "session_id", sessionID)
		s.metrics.ObserveTurn("oracle_error")
		return replyOracleUnavailable
	}

	extraction := ParseOracleReply(resp.Text)
	switch extraction.Outcome {
	case OutcomeIncomplete:
		s.metrics.ObserveTurn("incomplete")
		if err := s.history.Append(ctx, sessionID, ChatMessage{Role: ChatRoleAssistant, Content: extraction.FollowUp}); err != nil {
			// The follow-up still goes to the user; the next turn just won't
			// see it in history.
			s.logger.Error("failed to record follow-up", "error", err, "session_id", sessionID)
		}
		return extraction.FollowUp

	case OutcomeComplete:
		s.metrics.ObserveTurn("complete")
		reply, final := s.resolver.Resolve(ctx, extraction.Fields, userMessage)
		if final {
			if err := s.history.Reset(ctx, sessionID); err != nil {
				s.logger.Error("failed to reset session after terminal outcome", "error", err, "session_id", sessionID)
			}
		}
		return reply

	default:
		s.metrics.ObserveTurn("unparseable")
		s.logger.Warn("oracle reply unparseable", "session_id", sessionID, "stop_reason", resp.StopReason)
		return replyRephrase
	}
}

// ResetSession clears a session's history. This is the out-of-band "new
// chat" signal; it never touches the appointment store.
func (s *Service) ResetSession(ctx context.Context, sessionID string) error {
	return s.history.Reset(ctx, sessionID)
}
