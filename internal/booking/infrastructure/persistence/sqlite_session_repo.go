package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/felixgeelhaar/opportunity/internal/booking/domain"
	sharedPersistence "github.com/felixgeelhaar/opportunity/internal/shared/infrastructure/persistence"
	"github.com/google/uuid"
)

const (
	sqliteUpsertSession = `
		INSERT INTO booking_sessions (id, job_number, version, submitted_roles, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			job_number = excluded.job_number,
			version = excluded.version,
			submitted_roles = excluded.submitted_roles,
			updated_at = excluded.updated_at
	`
	sqliteInsertSlot = `
		INSERT INTO booking_slots (
			session_id, slot_id, position, slot_date, period,
			receiver_available, facilitator_available, selected,
			receiver_confirmation, facilitator_confirmation,
			receiver_responded_at, facilitator_responded_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	sqliteSelectSession = `
		SELECT id, job_number, version, submitted_roles, created_at, updated_at
		FROM booking_sessions
	`
	sqliteSelectSlots = `
		SELECT slot_id, slot_date, period, receiver_available, facilitator_available, selected,
		       receiver_confirmation, facilitator_confirmation,
		       receiver_responded_at, facilitator_responded_at
		FROM booking_slots
		WHERE session_id = ?
		ORDER BY position
	`
)

// SQLiteSessionRepository implements domain.Repository using SQLite.
type SQLiteSessionRepository struct {
	db *sql.DB
}

// NewSQLiteSessionRepository creates a new SQLite session repository.
func NewSQLiteSessionRepository(db *sql.DB) *SQLiteSessionRepository {
	return &SQLiteSessionRepository{db: db}
}

// Save writes the session row and replaces its slots. It joins the
// transaction in ctx or opens its own.
func (r *SQLiteSessionRepository) Save(ctx context.Context, session *domain.Session) error {
	if _, ok := sharedPersistence.SQLiteTxInfoFromContext(ctx); ok {
		return r.save(ctx, sharedPersistence.SQLiteExecutor(ctx, r.db), session)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if err := r.save(ctx, tx, session); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *SQLiteSessionRepository) save(ctx context.Context, exec sharedPersistence.SQLExecutor, session *domain.Session) error {
	pool := session.Pool()
	submitted, err := json.Marshal(roleStrings(pool.SubmittedRoles()))
	if err != nil {
		return err
	}

	id := session.ID().String()
	if _, err := exec.ExecContext(ctx, sqliteUpsertSession,
		id,
		session.JobNumber(),
		session.Version(),
		string(submitted),
		sharedPersistence.FormatSQLiteTime(session.CreatedAt()),
		sharedPersistence.FormatSQLiteTime(session.UpdatedAt()),
	); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	if _, err := exec.ExecContext(ctx, `DELETE FROM booking_slots WHERE session_id = ?`, id); err != nil {
		return fmt.Errorf("failed to clear slots: %w", err)
	}

	position := 0
	for slot := range pool.All() {
		if _, err := exec.ExecContext(ctx, sqliteInsertSlot,
			id,
			slot.ID,
			position,
			slot.Date.Format(domain.DateLayout),
			string(slot.Period),
			boolToInt64(slot.ReceiverAvailable),
			boolToInt64(slot.FacilitatorAvailable),
			boolToInt64(slot.Selected),
			string(slot.ReceiverConfirmation),
			string(slot.FacilitatorConfirmation),
			sharedPersistence.NullSQLiteTime(slot.ReceiverRespondedAt),
			sharedPersistence.NullSQLiteTime(slot.FacilitatorRespondedAt),
		); err != nil {
			return fmt.Errorf("failed to save slot %s: %w", slot.ID, err)
		}
		position++
	}
	return nil
}

// FindByID retrieves a session by its ID.
func (r *SQLiteSessionRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Session, error) {
	exec := sharedPersistence.SQLiteExecutor(ctx, r.db)
	row := exec.QueryRowContext(ctx, sqliteSelectSession+` WHERE id = ?`, id.String())

	header, err := scanSQLiteSession(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return r.load(ctx, exec, header)
}

// List returns sessions most recently updated first.
func (r *SQLiteSessionRepository) List(ctx context.Context) ([]*domain.Session, error) {
	exec := sharedPersistence.SQLiteExecutor(ctx, r.db)
	rows, err := exec.QueryContext(ctx, sqliteSelectSession+` ORDER BY updated_at DESC, id`)
	if err != nil {
		return nil, err
	}

	var headers []sqliteSessionRow
	for rows.Next() {
		header, err := scanSQLiteSession(rows)
		if err != nil {
			_ = rows.Close()
			return nil, err
		}
		headers = append(headers, header)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return nil, err
	}
	_ = rows.Close()

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

type sqliteSessionRow struct {
	id        uuid.UUID
	jobNumber string
	version   int
	submitted []string
	createdAt time.Time
	updatedAt time.Time
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteSession(row rowScanner) (sqliteSessionRow, error) {
	var (
		out                             sqliteSessionRow
		id, submitted, created, updated string
	)
	if err := row.Scan(&id, &out.jobNumber, &out.version, &submitted, &created, &updated); err != nil {
		return out, err
	}

	var err error
	if out.id, err = uuid.Parse(id); err != nil {
		return out, fmt.Errorf("invalid session id %q: %w", id, err)
	}
	if err := json.Unmarshal([]byte(submitted), &out.submitted); err != nil {
		return out, fmt.Errorf("session %s: invalid submitted roles: %w", id, err)
	}
	if out.createdAt, err = sharedPersistence.ParseSQLiteTime(created); err != nil {
		return out, err
	}
	if out.updatedAt, err = sharedPersistence.ParseSQLiteTime(updated); err != nil {
		return out, err
	}
	return out, nil
}

func (r *SQLiteSessionRepository) load(ctx context.Context, exec sharedPersistence.SQLExecutor, header sqliteSessionRow) (*domain.Session, error) {
	rows, err := exec.QueryContext(ctx, sqliteSelectSlots, header.id.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var slots []domain.TimeSlot
	for rows.Next() {
		var (
			slot                                domain.TimeSlot
			date, period, receiver, facilitator string
			receiverAvailable, facilitatorAvail int64
			selected                            int64
			receiverAt, facilitatorAt           sql.NullString
		)
		if err := rows.Scan(&slot.ID, &date, &period, &receiverAvailable, &facilitatorAvail, &selected,
			&receiver, &facilitator, &receiverAt, &facilitatorAt); err != nil {
			return nil, err
		}

		if slot.Date, err = time.Parse(domain.DateLayout, date); err != nil {
			return nil, fmt.Errorf("slot %s: invalid date: %w", slot.ID, err)
		}
		slot.Period = domain.Period(period)
		slot.ReceiverAvailable = receiverAvailable != 0
		slot.FacilitatorAvailable = facilitatorAvail != 0
		slot.Selected = selected != 0
		slot.ReceiverConfirmation = domain.Confirmation(receiver)
		slot.FacilitatorConfirmation = domain.Confirmation(facilitator)
		if slot.ReceiverRespondedAt, err = sharedPersistence.ParseNullSQLiteTime(receiverAt); err != nil {
			return nil, err
		}
		if slot.FacilitatorRespondedAt, err = sharedPersistence.ParseNullSQLiteTime(facilitatorAt); err != nil {
			return nil, err
		}
		slots = append(slots, slot)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return rehydrate(header.id, header.jobNumber, slots, header.submitted, header.version, header.createdAt, header.updatedAt)
}

func boolToInt64(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
