package appointments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrSlotTaken means a Scheduled appointment already occupies the slot.
	ErrSlotTaken = errors.New("appointments: slot already scheduled")
	// ErrNoneScheduled means no Scheduled appointment matches the slot.
	ErrNoneScheduled = errors.New("appointments: no scheduled appointment matches")
)

const uniqueViolationCode = "23505"

// PgxPool is the subset of pgxpool.Pool the repository needs; pgxmock
// satisfies it in tests.
type PgxPool interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store abstracts appointment persistence for the resolver.
type Store interface {
	Book(ctx context.Context, doctorName, scheduledAt string) (Appointment, error)
	Cancel(ctx context.Context, doctorName, scheduledAt string) error
}

// Repository persists appointments in Postgres.
type Repository struct {
	pool PgxPool
}

// NewRepository creates a repository backed by a pgx pool.
func NewRepository(pool PgxPool) *Repository {
	if pool == nil {
		panic("appointments: pgx pool required")
	}
	return &Repository{pool: pool}
}

// Book inserts a Scheduled appointment for the slot. The conflict check and
// the insert run in one transaction with the existing row locked, so two
// concurrent requests for the same slot cannot both commit; the partial
// unique index on (doctor_name, scheduled_at) backstops the same invariant
// and its violation also reports ErrSlotTaken.
func (r *Repository) Book(ctx context.Context, doctorName, scheduledAt string) (Appointment, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return Appointment{}, fmt.Errorf("appointments: begin booking tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var existing uuid.UUID
	err = tx.QueryRow(ctx,
		`SELECT id FROM appointments
		 WHERE doctor_name = $1 AND scheduled_at = $2 AND status = $3
		 FOR UPDATE`,
		doctorName, scheduledAt, StatusScheduled,
	).Scan(&existing)
	if err == nil {
		return Appointment{}, ErrSlotTaken
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return Appointment{}, fmt.Errorf("appointments: conflict check: %w", err)
	}

	appt := Appointment{
		ID:          uuid.New(),
		PatientName: PlaceholderPatientName,
		DoctorName:  doctorName,
		ScheduledAt: scheduledAt,
		Status:      StatusScheduled,
		CreatedAt:   time.Now().UTC(),
		UpdatedAt:   time.Now().UTC(),
	}
	_, err = tx.Exec(ctx,
		`INSERT INTO appointments (id, patient_name, doctor_name, scheduled_at, status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		appt.ID, appt.PatientName, appt.DoctorName, appt.ScheduledAt, appt.Status, appt.CreatedAt, appt.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return Appointment{}, ErrSlotTaken
		}
		return Appointment{}, fmt.Errorf("appointments: insert: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		if isUniqueViolation(err) {
			return Appointment{}, ErrSlotTaken
		}
		return Appointment{}, fmt.Errorf("appointments: commit booking: %w", err)
	}
	return appt, nil
}

// Cancel transitions the matching Scheduled appointment to Cancelled.
// A single UPDATE keeps the match and the transition atomic.
func (r *Repository) Cancel(ctx context.Context, doctorName, scheduledAt string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE appointments
		 SET status = $1, updated_at = now()
		 WHERE doctor_name = $2 AND scheduled_at = $3 AND status = $4`,
		StatusCancelled, doctorName, scheduledAt, StatusScheduled,
	)
	if err != nil {
		return fmt.Errorf("appointments: cancel: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNoneScheduled
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}
