package drug

import (
	"bytes"
	"context"
	"errors"
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

// =========== Drug Repository ===========

type drugRepoPG struct{ pool *pgxpool.Pool }

func NewDrugRepoPG(pool *pgxpool.Pool) DrugRepository { return &drugRepoPG{pool: pool} }

const drugCols = `id, drug_name, drug_class, mechanism, pregnancy_category, lactation,
	renal_adjustment, hepatic_adjustment, indications, contraindications, warnings,
	common_adverse_effects, serious_adverse_effects, brand_names, atc_codes, reference_urls,
	created_at, updated_at`

func scanDrug(row pgx.Row) (*Drug, error) {
	var d Drug
	err := row.Scan(&d.ID, &d.DrugName, &d.DrugClass, &d.Mechanism, &d.PregnancyCategory,
		&d.Lactation, &d.RenalAdjustment, &d.HepaticAdjustment, &d.Indications,
		&d.Contraindications, &d.Warnings, &d.CommonAdverseEffects, &d.SeriousAdverseEffects,
		&d.BrandNames, &d.ATCCodes, &d.ReferenceURLs, &d.CreatedAt, &d.UpdatedAt)
	return &d, err
}

func (r *drugRepoPG) Upsert(ctx context.Context, d *Drug) error {
	d.DrugName = strings.ToLower(strings.TrimSpace(d.DrugName))
	return conn(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO drugs (drug_name, drug_class, mechanism, pregnancy_category, lactation,
			renal_adjustment, hepatic_adjustment, indications, contraindications, warnings,
			common_adverse_effects, serious_adverse_effects, brand_names, atc_codes, reference_urls)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
		ON CONFLICT (drug_name) DO UPDATE SET
			drug_class = EXCLUDED.drug_class,
			mechanism = EXCLUDED.mechanism,
			pregnancy_category = EXCLUDED.pregnancy_category,
			lactation = EXCLUDED.lactation,
			renal_adjustment = EXCLUDED.renal_adjustment,
			hepatic_adjustment = EXCLUDED.hepatic_adjustment,
			indications = EXCLUDED.indications,
			contraindications = EXCLUDED.contraindications,
			warnings = EXCLUDED.warnings,
			common_adverse_effects = EXCLUDED.common_adverse_effects,
			serious_adverse_effects = EXCLUDED.serious_adverse_effects,
			brand_names = EXCLUDED.brand_names,
			atc_codes = EXCLUDED.atc_codes,
			reference_urls = EXCLUDED.reference_urls,
			updated_at = NOW()
		RETURNING id`,
		d.DrugName, d.DrugClass, d.Mechanism, d.PregnancyCategory, d.Lactation,
		d.RenalAdjustment, d.HepaticAdjustment, d.Indications, d.Contraindications,
		d.Warnings, d.CommonAdverseEffects, d.SeriousAdverseEffects, d.BrandNames,
		d.ATCCodes, d.ReferenceURLs,
	).Scan(&d.ID)
}

func (r *drugRepoPG) GetByName(ctx context.Context, name string) (*Drug, error) {
	return scanDrug(conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+drugCols+` FROM drugs WHERE drug_name = $1`,
		strings.ToLower(strings.TrimSpace(name))))
}

func (r *drugRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Drug, error) {
	return scanDrug(conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+drugCols+` FROM drugs WHERE id = $1`, id))
}

func (r *drugRepoPG) List(ctx context.Context, limit, offset int) ([]*Drug, int, error) {
	var total int
	if err := conn(ctx, r.pool).QueryRow(ctx, `SELECT COUNT(*) FROM drugs`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := conn(ctx, r.pool).Query(ctx,
		`SELECT `+drugCols+` FROM drugs ORDER BY drug_name LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Drug
	for rows.Next() {
		d, err := scanDrug(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, d)
	}
	return items, total, rows.Err()
}

// =========== Interaction Repository ===========

type interactionRepoPG struct{ pool *pgxpool.Pool }

func NewInteractionRepoPG(pool *pgxpool.Pool) InteractionRepository {
	return &interactionRepoPG{pool: pool}
}

const interactionCols = `id, primary_drug_id, interacting_drug_id, severity, mechanism,
	clinical_effect, management, reference_urls, created_at, updated_at`

func scanInteraction(row pgx.Row) (*Interaction, error) {
	var i Interaction
	err := row.Scan(&i.ID, &i.PrimaryDrugID, &i.InteractingDrugID, &i.Severity, &i.Mechanism,
		&i.ClinicalEffect, &i.Management, &i.ReferenceURLs, &i.CreatedAt, &i.UpdatedAt)
	return &i, err
}

// canonicalPair orders two drug ids the way Postgres orders uuids (bytewise),
// so inserts land in the same order LEAST/GREATEST produces.
func canonicalPair(a, b uuid.UUID) (uuid.UUID, uuid.UUID) {
	if bytes.Compare(a[:], b[:]) <= 0 {
		return a, b
	}
	return b, a
}

func (r *interactionRepoPG) Upsert(ctx context.Context, i *Interaction) error {
	low, high := canonicalPair(i.PrimaryDrugID, i.InteractingDrugID)
	i.PrimaryDrugID, i.InteractingDrugID = low, high

	// The pair uniqueness lives in an expression index, which ON CONFLICT
	// cannot target. Insert first; on a unique violation update the
	// existing row through the same canonical pair.
	err := conn(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO drug_interactions (primary_drug_id, interacting_drug_id, severity,
			mechanism, clinical_effect, management, reference_urls)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING id`,
		low, high, i.Severity, i.Mechanism, i.ClinicalEffect, i.Management, i.ReferenceURLs,
	).Scan(&i.ID)
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != "23505" {
		return err
	}

	return conn(ctx, r.pool).QueryRow(ctx, `
		UPDATE drug_interactions
		SET severity = $1, mechanism = $2, clinical_effect = $3, management = $4,
			reference_urls = $5, updated_at = NOW()
		WHERE LEAST(primary_drug_id, interacting_drug_id) = $6
		  AND GREATEST(primary_drug_id, interacting_drug_id) = $7
		RETURNING id`,
		i.Severity, i.Mechanism, i.ClinicalEffect, i.Management, i.ReferenceURLs, low, high,
	).Scan(&i.ID)
}

func (r *interactionRepoPG) GetByPair(ctx context.Context, a, b uuid.UUID) (*Interaction, error) {
	return scanInteraction(conn(ctx, r.pool).QueryRow(ctx, `
		SELECT `+interactionCols+` FROM drug_interactions
		WHERE LEAST(primary_drug_id, interacting_drug_id) = LEAST($1::uuid, $2::uuid)
		  AND GREATEST(primary_drug_id, interacting_drug_id) = GREATEST($1::uuid, $2::uuid)`,
		a, b))
}

func (r *interactionRepoPG) List(ctx context.Context, limit, offset int) ([]*Interaction, int, error) {
	var total int
	if err := conn(ctx, r.pool).QueryRow(ctx, `SELECT COUNT(*) FROM drug_interactions`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := conn(ctx, r.pool).Query(ctx,
		`SELECT `+interactionCols+` FROM drug_interactions ORDER BY created_at LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Interaction
	for rows.Next() {
		i, err := scanInteraction(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, i)
	}
	return items, total, rows.Err()
}

// =========== Alternative Repository ===========

type alternativeRepoPG struct{ pool *pgxpool.Pool }

func NewAlternativeRepoPG(pool *pgxpool.Pool) AlternativeRepository {
	return &alternativeRepoPG{pool: pool}
}

func (r *alternativeRepoPG) Upsert(ctx context.Context, a *Alternative) error {
	a.Indication = strings.ToLower(strings.TrimSpace(a.Indication))
	return conn(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO drug_alternatives (indication, drug_name, rationale, notes, suitability, reference_urls)
		VALUES ($1,$2,$3,$4,$5,$6)
		ON CONFLICT (indication, drug_name) DO UPDATE SET
			rationale = EXCLUDED.rationale,
			notes = EXCLUDED.notes,
			suitability = EXCLUDED.suitability,
			reference_urls = EXCLUDED.reference_urls
		RETURNING id`,
		a.Indication, a.DrugName, a.Rationale, a.Notes, a.Suitability, a.ReferenceURLs,
	).Scan(&a.ID)
}

func (r *alternativeRepoPG) ListByIndication(ctx context.Context, indication string) ([]*Alternative, error) {
	rows, err := conn(ctx, r.pool).Query(ctx, `
		SELECT id, indication, drug_name, rationale, notes, suitability, reference_urls, created_at
		FROM drug_alternatives WHERE indication = $1 ORDER BY drug_name`,
		strings.ToLower(strings.TrimSpace(indication)))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Alternative
	for rows.Next() {
		var a Alternative
		if err := rows.Scan(&a.ID, &a.Indication, &a.DrugName, &a.Rationale, &a.Notes,
			&a.Suitability, &a.ReferenceURLs, &a.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, &a)
	}
	return items, rows.Err()
}
