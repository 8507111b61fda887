package patient

import (
	"context"

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

// =========== Patient Repository ===========

type patientRepoPG struct{ pool *pgxpool.Pool }

func NewPatientRepoPG(pool *pgxpool.Pool) PatientRepository { return &patientRepoPG{pool: pool} }

const patientCols = `id, first_name, last_name, date_of_birth, sex, mrn, email, phone, created_at, updated_at`

func scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient
	err := row.Scan(&p.ID, &p.FirstName, &p.LastName, &p.DateOfBirth, &p.Sex,
		&p.MRN, &p.Email, &p.Phone, &p.CreatedAt, &p.UpdatedAt)
	return &p, err
}

func (r *patientRepoPG) Create(ctx context.Context, p *Patient) error {
	p.ID = uuid.New()
	_, err := conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO patients (id, first_name, last_name, date_of_birth, sex, mrn, email, phone)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		p.ID, p.FirstName, p.LastName, p.DateOfBirth, p.Sex, p.MRN, p.Email, p.Phone)
	return err
}

func (r *patientRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return scanPatient(conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+patientCols+` FROM patients WHERE id = $1`, id))
}

func (r *patientRepoPG) GetByMRN(ctx context.Context, mrn string) (*Patient, error) {
	return scanPatient(conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+patientCols+` FROM patients WHERE mrn = $1`, mrn))
}

func (r *patientRepoPG) Update(ctx context.Context, p *Patient) error {
	_, err := conn(ctx, r.pool).Exec(ctx, `
		UPDATE patients SET first_name=$2, last_name=$3, date_of_birth=$4, sex=$5,
			mrn=$6, email=$7, phone=$8, updated_at=NOW()
		WHERE id = $1`,
		p.ID, p.FirstName, p.LastName, p.DateOfBirth, p.Sex, p.MRN, p.Email, p.Phone)
	return err
}

func (r *patientRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := conn(ctx, r.pool).Exec(ctx, `DELETE FROM patients WHERE id = $1`, id)
	return err
}

func (r *patientRepoPG) List(ctx context.Context, limit, offset int) ([]*Patient, int, error) {
	var total int
	if err := conn(ctx, r.pool).QueryRow(ctx, `SELECT COUNT(*) FROM patients`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := conn(ctx, r.pool).Query(ctx,
		`SELECT `+patientCols+` FROM patients ORDER BY last_name, first_name LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Patient
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, p)
	}
	return items, total, rows.Err()
}

// =========== Vitals Repository ===========

type vitalsRepoPG struct{ pool *pgxpool.Pool }

func NewVitalsRepoPG(pool *pgxpool.Pool) VitalsRepository { return &vitalsRepoPG{pool: pool} }

const vitalsCols = `id, patient_id, timestamp_utc, systolic_mmhg, diastolic_mmhg, heart_rate_bpm,
	resp_rate_min, temperature_c, spo2_percent, weight_kg, height_cm, bmi,
	serum_creatinine, egfr_ml_min_1_73m2`

func scanVitals(row pgx.Row) (*Vitals, error) {
	var v Vitals
	err := row.Scan(&v.ID, &v.PatientID, &v.TimestampUTC, &v.SystolicMmHg, &v.DiastolicMmHg,
		&v.HeartRateBPM, &v.RespRateMin, &v.TemperatureC, &v.SpO2Percent, &v.WeightKg,
		&v.HeightCm, &v.BMI, &v.SerumCreatinine, &v.EGFR)
	return &v, err
}

func (r *vitalsRepoPG) Insert(ctx context.Context, v *Vitals) error {
	v.ID = uuid.New()
	_, err := conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO vitals (id, patient_id, timestamp_utc, systolic_mmhg, diastolic_mmhg,
			heart_rate_bpm, resp_rate_min, temperature_c, spo2_percent, weight_kg,
			height_cm, bmi, serum_creatinine, egfr_ml_min_1_73m2)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)`,
		v.ID, v.PatientID, v.TimestampUTC, v.SystolicMmHg, v.DiastolicMmHg,
		v.HeartRateBPM, v.RespRateMin, v.TemperatureC, v.SpO2Percent, v.WeightKg,
		v.HeightCm, v.BMI, v.SerumCreatinine, v.EGFR)
	return err
}

func (r *vitalsRepoPG) LatestByPatient(ctx context.Context, patientID uuid.UUID) (*Vitals, error) {
	return scanVitals(conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+vitalsCols+` FROM v_latest_vitals WHERE patient_id = $1`, patientID))
}

func (r *vitalsRepoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Vitals, int, error) {
	var total int
	if err := conn(ctx, r.pool).QueryRow(ctx,
		`SELECT COUNT(*) FROM vitals WHERE patient_id = $1`, patientID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := conn(ctx, r.pool).Query(ctx,
		`SELECT `+vitalsCols+` FROM vitals WHERE patient_id = $1 ORDER BY timestamp_utc DESC LIMIT $2 OFFSET $3`,
		patientID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Vitals
	for rows.Next() {
		v, err := scanVitals(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, v)
	}
	return items, total, rows.Err()
}

// =========== Profile Repository ===========

type profileRepoPG struct{ pool *pgxpool.Pool }

func NewProfileRepoPG(pool *pgxpool.Pool) ProfileRepository { return &profileRepoPG{pool: pool} }

func (r *profileRepoPG) Conditions(ctx context.Context, patientID uuid.UUID) ([]*Condition, error) {
	rows, err := conn(ctx, r.pool).Query(ctx, `
		SELECT id, patient_id, name, code, recorded_at
		FROM patient_conditions WHERE patient_id = $1 ORDER BY recorded_at`, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Condition
	for rows.Next() {
		var c Condition
		if err := rows.Scan(&c.ID, &c.PatientID, &c.Name, &c.Code, &c.RecordedAt); err != nil {
			return nil, err
		}
		items = append(items, &c)
	}
	return items, rows.Err()
}

func (r *profileRepoPG) Allergies(ctx context.Context, patientID uuid.UUID) ([]*Allergy, error) {
	rows, err := conn(ctx, r.pool).Query(ctx, `
		SELECT id, patient_id, substance, reaction, severity, recorded_at
		FROM patient_allergies WHERE patient_id = $1 ORDER BY recorded_at`, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Allergy
	for rows.Next() {
		var a Allergy
		if err := rows.Scan(&a.ID, &a.PatientID, &a.Substance, &a.Reaction, &a.Severity, &a.RecordedAt); err != nil {
			return nil, err
		}
		items = append(items, &a)
	}
	return items, rows.Err()
}

func (r *profileRepoPG) Medications(ctx context.Context, patientID uuid.UUID) ([]*Medication, error) {
	rows, err := conn(ctx, r.pool).Query(ctx, `
		SELECT id, patient_id, drug_name, dose, route, frequency, recorded_at
		FROM patient_medications WHERE patient_id = $1 ORDER BY recorded_at`, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Medication
	for rows.Next() {
		var m Medication
		if err := rows.Scan(&m.ID, &m.PatientID, &m.DrugName, &m.Dose, &m.Route, &m.Frequency, &m.RecordedAt); err != nil {
			return nil, err
		}
		items = append(items, &m)
	}
	return items, rows.Err()
}

func (r *profileRepoPG) AddCondition(ctx context.Context, c *Condition) error {
	c.ID = uuid.New()
	_, err := conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO patient_conditions (id, patient_id, name, code)
		VALUES ($1,$2,$3,$4)`,
		c.ID, c.PatientID, c.Name, c.Code)
	return err
}

func (r *profileRepoPG) AddAllergy(ctx context.Context, a *Allergy) error {
	a.ID = uuid.New()
	_, err := conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO patient_allergies (id, patient_id, substance, reaction, severity)
		VALUES ($1,$2,$3,$4,$5)`,
		a.ID, a.PatientID, a.Substance, a.Reaction, a.Severity)
	return err
}

func (r *profileRepoPG) AddMedication(ctx context.Context, m *Medication) error {
	m.ID = uuid.New()
	_, err := conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO patient_medications (id, patient_id, drug_name, dose, route, frequency)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		m.ID, m.PatientID, m.DrugName, m.Dose, m.Route, m.Frequency)
	return err
}

// =========== Link Repository ===========

type linkRepoPG struct{ pool *pgxpool.Pool }

func NewLinkRepoPG(pool *pgxpool.Pool) LinkRepository { return &linkRepoPG{pool: pool} }

const linkCols = `id, patient_id, user_id, role, linked_at`

func scanLink(row pgx.Row) (*UserLink, error) {
	var l UserLink
	err := row.Scan(&l.ID, &l.PatientID, &l.UserID, &l.Role, &l.LinkedAt)
	return &l, err
}

func (r *linkRepoPG) Upsert(ctx context.Context, l *UserLink) error {
	// The unique (patient_id, user_id) pair makes this idempotent.
	return conn(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO patient_users (patient_id, user_id, role)
		VALUES ($1,$2,$3)
		ON CONFLICT (patient_id, user_id) DO UPDATE SET role = EXCLUDED.role
		RETURNING `+linkCols,
		l.PatientID, l.UserID, l.Role,
	).Scan(&l.ID, &l.PatientID, &l.UserID, &l.Role, &l.LinkedAt)
}

func (r *linkRepoPG) GetByPair(ctx context.Context, patientID, userID uuid.UUID) (*UserLink, error) {
	return scanLink(conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+linkCols+` FROM patient_users WHERE patient_id = $1 AND user_id = $2`,
		patientID, userID))
}

func (r *linkRepoPG) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*UserLink, error) {
	rows, err := conn(ctx, r.pool).Query(ctx,
		`SELECT `+linkCols+` FROM patient_users WHERE patient_id = $1 ORDER BY linked_at`, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*UserLink
	for rows.Next() {
		l, err := scanLink(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, l)
	}
	return items, rows.Err()
}
