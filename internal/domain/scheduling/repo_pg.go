package scheduling

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/medkit/medkit/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

func conn(ctx context.Context, pool *pgxpool.Pool) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return pool
}

// =========== Slot Repository ===========

type slotRepoPG struct{ pool *pgxpool.Pool }

func NewSlotRepoPG(pool *pgxpool.Pool) SlotRepository { return &slotRepoPG{pool: pool} }

const slotCols = `id, specialty, slot_start, slot_end, provider, location, status, created_at`

func scanSlot(row pgx.Row) (*Slot, error) {
	var s Slot
	err := row.Scan(&s.ID, &s.Specialty, &s.SlotStart, &s.SlotEnd, &s.Provider,
		&s.Location, &s.Status, &s.CreatedAt)
	return &s, err
}

func (r *slotRepoPG) Insert(ctx context.Context, s *Slot) error {
	if s.Status == "" {
		s.Status = SlotOpen
	}
	return conn(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO appointment_slots (specialty, slot_start, slot_end, provider, location, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`,
		strings.ToLower(s.Specialty), s.SlotStart, s.SlotEnd, s.Provider, s.Location, s.Status,
	).Scan(&s.ID)
}

func (r *slotRepoPG) NextOpenBySpecialty(ctx context.Context, specialty string) (*Slot, error) {
	return scanSlot(conn(ctx, r.pool).QueryRow(ctx, `
		SELECT `+slotCols+` FROM appointment_slots
		WHERE specialty = $1 AND status = 'open'
		ORDER BY slot_start
		LIMIT 1`,
		strings.ToLower(strings.TrimSpace(specialty))))
}

func (r *slotRepoPG) MarkBooked(ctx context.Context, id uuid.UUID) error {
	_, err := conn(ctx, r.pool).Exec(ctx,
		`UPDATE appointment_slots SET status = 'booked' WHERE id = $1`, id)
	return err
}

func (r *slotRepoPG) ListBySpecialty(ctx context.Context, specialty string, limit, offset int) ([]*Slot, int, error) {
	specialty = strings.ToLower(strings.TrimSpace(specialty))
	var total int
	if err := conn(ctx, r.pool).QueryRow(ctx,
		`SELECT COUNT(*) FROM appointment_slots WHERE ($1 = '' OR specialty = $1)`,
		specialty).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := conn(ctx, r.pool).Query(ctx, `
		SELECT `+slotCols+` FROM appointment_slots
		WHERE ($1 = '' OR specialty = $1)
		ORDER BY slot_start
		LIMIT $2 OFFSET $3`,
		specialty, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Slot
	for rows.Next() {
		s, err := scanSlot(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, s)
	}
	return items, total, rows.Err()
}

// =========== Appointment Repository ===========

type appointmentRepoPG struct{ pool *pgxpool.Pool }

func NewAppointmentRepoPG(pool *pgxpool.Pool) AppointmentRepository {
	return &appointmentRepoPG{pool: pool}
}

const appointmentCols = `id, patient_id, scheduled_start, scheduled_end, specialty, reason,
	provider, location, status, created_at, updated_at`

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment
	err := row.Scan(&a.ID, &a.PatientID, &a.ScheduledStart, &a.ScheduledEnd, &a.Specialty,
		&a.Reason, &a.Provider, &a.Location, &a.Status, &a.CreatedAt, &a.UpdatedAt)
	return &a, err
}

func (r *appointmentRepoPG) Insert(ctx context.Context, a *Appointment) error {
	if a.Status == "" {
		a.Status = StatusScheduled
	}
	return conn(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO appointments (patient_id, scheduled_start, scheduled_end, specialty,
			reason, provider, location, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`,
		a.PatientID, a.ScheduledStart, a.ScheduledEnd, a.Specialty,
		a.Reason, a.Provider, a.Location, a.Status,
	).Scan(&a.ID)
}

func (r *appointmentRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return scanAppointment(conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+appointmentCols+` FROM appointments WHERE id = $1`, id))
}

func (r *appointmentRepoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	var total int
	if err := conn(ctx, r.pool).QueryRow(ctx,
		`SELECT COUNT(*) FROM appointments WHERE patient_id = $1`, patientID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := conn(ctx, r.pool).Query(ctx, `
		SELECT `+appointmentCols+` FROM appointments
		WHERE patient_id = $1
		ORDER BY scheduled_start DESC
		LIMIT $2 OFFSET $3`,
		patientID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, a)
	}
	return items, total, rows.Err()
}

func (r *appointmentRepoPG) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	tag, err := conn(ctx, r.pool).Exec(ctx,
		`UPDATE appointments SET status = $1, updated_at = NOW() WHERE id = $2`, status, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
