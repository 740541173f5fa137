package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/felixgeelhaar/opportunity/internal/booking/domain"
	sharedPersistence "github.com/felixgeelhaar/opportunity/internal/shared/infrastructure/persistence"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
)

// PostgresSessionRepository implements domain.Repository using PostgreSQL.
type PostgresSessionRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresSessionRepository creates a new PostgreSQL session repository.
func NewPostgresSessionRepository(pool *pgxpool.Pool) *PostgresSessionRepository {
	return &PostgresSessionRepository{pool: pool}
}

type sessionRow struct {
	ID             uuid.UUID
	JobNumber      string
	Version        int
	SubmittedRoles []string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Save persists a session and its slots.
func (r *PostgresSessionRepository) Save(ctx context.Context, session *domain.Session) error {
	if info, ok := sharedPersistence.TxInfoFromContext(ctx); ok {
		return r.saveWithTx(ctx, info.Tx, session)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := r.saveWithTx(ctx, tx, session); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *PostgresSessionRepository) saveWithTx(ctx context.Context, tx pgx.Tx, session *domain.Session) error {
	query := `
		INSERT INTO booking_sessions (id, job_number, version, submitted_roles, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			job_number = EXCLUDED.job_number,
			version = EXCLUDED.version,
			submitted_roles = EXCLUDED.submitted_roles,
			updated_at = EXCLUDED.updated_at
	`

	pool := session.Pool()
	_, err := tx.Exec(ctx, query,
		session.ID(),
		session.JobNumber(),
		session.Version(),
		pq.Array(roleStrings(pool.SubmittedRoles())),
		session.CreatedAt(),
		session.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM booking_slots WHERE session_id = $1`, session.ID()); err != nil {
		return fmt.Errorf("failed to clear slots: %w", err)
	}

	batch := &pgx.Batch{}
	position := 0
	for slot := range pool.All() {
		batch.Queue(`
			INSERT INTO booking_slots (
				session_id, slot_id, position, slot_date, period,
				receiver_available, facilitator_available, selected,
				receiver_confirmation, facilitator_confirmation,
				receiver_responded_at, facilitator_responded_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
			session.ID(),
			slot.ID,
			position,
			slot.Date,
			string(slot.Period),
			slot.ReceiverAvailable,
			slot.FacilitatorAvailable,
			slot.Selected,
			string(slot.ReceiverConfirmation),
			string(slot.FacilitatorConfirmation),
			slot.ReceiverRespondedAt,
			slot.FacilitatorRespondedAt,
		)
		position++
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to save slots: %w", err)
	}
	return nil
}

// FindByID retrieves a session by its ID.
func (r *PostgresSessionRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Session, error) {
	query := `
		SELECT id, job_number, version, submitted_roles, created_at, updated_at
		FROM booking_sessions
		WHERE id = $1
	`

	exec := sharedPersistence.Executor(ctx, r.pool)
	var row sessionRow
	err := exec.QueryRow(ctx, query, id).Scan(
		&row.ID, &row.JobNumber, &row.Version, pq.Array(&row.SubmittedRoles), &row.CreatedAt, &row.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return r.load(ctx, exec, row)
}

// List returns sessions most recently updated first.
func (r *PostgresSessionRepository) List(ctx context.Context) ([]*domain.Session, error) {
	query := `
		SELECT id, job_number, version, submitted_roles, created_at, updated_at
		FROM booking_sessions
		ORDER BY updated_at DESC, id
	`

	exec := sharedPersistence.Executor(ctx, r.pool)
	rows, err := exec.Query(ctx, query)
	if err != nil {
		return nil, err
	}

	var headers []sessionRow
	for rows.Next() {
		var row sessionRow
		if err := rows.Scan(
			&row.ID, &row.JobNumber, &row.Version, pq.Array(&row.SubmittedRoles), &row.CreatedAt, &row.UpdatedAt,
		); err != nil {
			rows.Close()
			return nil, err
		}
		headers = append(headers, row)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sessions := make([]*domain.Session, 0, len(headers))
	for _, header := range headers {
		session, err := r.load(ctx, exec, header)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}
	return sessions, nil
}

func (r *PostgresSessionRepository) load(ctx context.Context, exec sharedPersistence.DBExecutor, header sessionRow) (*domain.Session, error) {
	query := `
		SELECT slot_id, slot_date, period, receiver_available, facilitator_available, selected,
		       receiver_confirmation, facilitator_confirmation,
		       receiver_responded_at, facilitator_responded_at
		FROM booking_slots
		WHERE session_id = $1
		ORDER BY position
	`

	rows, err := exec.Query(ctx, query, header.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var slots []domain.TimeSlot
	for rows.Next() {
		var (
			slot                  domain.TimeSlot
			period, receiver, fac string
		)
		if err := rows.Scan(
			&slot.ID, &slot.Date, &period,
			&slot.ReceiverAvailable, &slot.FacilitatorAvailable, &slot.Selected,
			&receiver, &fac,
			&slot.ReceiverRespondedAt, &slot.FacilitatorRespondedAt,
		); err != nil {
			return nil, err
		}
		slot.Date = time.Date(slot.Date.Year(), slot.Date.Month(), slot.Date.Day(), 0, 0, 0, 0, time.UTC)
		slot.Period = domain.Period(period)
		slot.ReceiverConfirmation = domain.Confirmation(receiver)
		slot.FacilitatorConfirmation = domain.Confirmation(fac)
		slot.ReceiverRespondedAt = utcPtr(slot.ReceiverRespondedAt)
		slot.FacilitatorRespondedAt = utcPtr(slot.FacilitatorRespondedAt)
		slots = append(slots, slot)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return rehydrate(header.ID, header.JobNumber, slots, header.SubmittedRoles, header.Version, header.CreatedAt, header.UpdatedAt)
}
