package appointments

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/careloop/hospital-scheduler/internal/conversation"
	"github.com/careloop/hospital-scheduler/internal/observability/metrics"
	"github.com/careloop/hospital-scheduler/pkg/logging"
)

var resolverTracer = otel.Tracer("scheduler.internal.appointments")

// cancelKeyword drives intent detection: a case-insensitive substring match
// on the raw user message. Coarse on purpose ("please don't cancel" and a
// Dr. Cancelmore both trip it); the upstream product accepted that tradeoff.
const cancelKeyword = "cancel"

const (
	replySlotTaken  = "That slot is already booked. Please choose another time."
	replyNoMatch    = "No appointment found to cancel at the specified time."
	replyStoreRetry = "Please try again."
)

// Resolver dispatches a completed extraction to either booking or
// cancellation against the store.
type Resolver struct {
	store   Store
	metrics *metrics.SchedulerMetrics
	logger  *logging.Logger
}

// NewResolver constructs a booking resolver.
func NewResolver(store Store, m *metrics.SchedulerMetrics, logger *logging.Logger) *Resolver {
	if store == nil {
		panic("appointments: store required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Resolver{store: store, metrics: m, logger: logger}
}

// Resolve books or cancels the slot described by fields. The returned reply
// is always user-facing; final reports whether the request reached a
// terminal outcome (booked or cancelled), which tells the caller to reset
// the conversation. Store faults never escape: they map to a retry reply.
func (r *Resolver) Resolve(ctx context.Context, fields conversation.BookingFields, userMessage string) (reply string, final bool) {
	ctx, span := resolverTracer.Start(ctx, "appointments.resolve")
	defer span.End()
	span.SetAttributes(
		attribute.String("scheduler.doctor", fields.Doctor),
		attribute.String("scheduler.slot", SlotKey(fields.Date, fields.Time)),
	)

	slot := SlotKey(fields.Date, fields.Time)
	if wantsCancellation(userMessage) {
		return r.cancel(ctx, fields, slot)
	}
	return r.book(ctx, fields, slot)
}

func (r *Resolver) cancel(ctx context.Context, fields conversation.BookingFields, slot string) (string, bool) {
	err := r.store.Cancel(ctx, fields.Doctor, slot)
	switch {
	case err == nil:
		r.metrics.ObserveResolution("cancel", "success")
		r.logger.Info("appointment cancelled", "doctor", fields.Doctor, "slot", slot)
		return fmt.Sprintf("Your appointment with %s on %s at %s has been successfully cancelled.",
			fields.Doctor, fields.Date, fields.Time), true
	case errors.Is(err, ErrNoneScheduled):
		r.metrics.ObserveResolution("cancel", "not_found")
		return replyNoMatch, false
	default:
		r.metrics.ObserveResolution("cancel", "error")
		r.logger.Error("cancellation failed", "error", err, "doctor", fields.Doctor, "slot", slot)
		return replyStoreRetry, false
	}
}

func (r *Resolver) book(ctx context.Context, fields conversation.BookingFields, slot string) (string, bool) {
	appt, err := r.store.Book(ctx, fields.Doctor, slot)
	switch {
	case err == nil:
		r.metrics.ObserveResolution("book", "success")
		r.logger.Info("appointment booked", "appointment_id", appt.ID, "doctor", fields.Doctor, "slot", slot)
		return fmt.Sprintf("Your appointment with %s is confirmed on %s at %s!",
			fields.Doctor, fields.Date, fields.Time), true
	case errors.Is(err, ErrSlotTaken):
		r.metrics.ObserveResolution("book", "conflict")
		return replySlotTaken, false
	default:
		r.metrics.ObserveResolution("book", "error")
		r.logger.Error("booking failed", "error", err, "doctor", fields.Doctor, "slot", slot)
		return replyStoreRetry, false
	}
}

func wantsCancellation(userMessage string) bool {
	return strings.Contains(strings.ToLower(userMessage), cancelKeyword)
}
