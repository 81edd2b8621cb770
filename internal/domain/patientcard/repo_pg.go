package patientcard

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/patientcard/patientcard/internal/platform/apperr"
	"github.com/patientcard/patientcard/internal/platform/db"
)

// -- Patient Repository --

type patientRepoPG struct {
	pool *pgxpool.Pool
}

func NewPatientRepo(pool *pgxpool.Pool) PatientRepository {
	return &patientRepoPG{pool: pool}
}

func (r *patientRepoPG) conn(ctx context.Context) db.Querier {
	return db.Conn(ctx, r.pool)
}

const patientCols = `id, last_name, first_name, middle_name, gender, birth_date, oms_number, created_at, updated_at`

func (r *patientRepoPG) Create(ctx context.Context, p *Patient) error {
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO patient (last_name, first_name, middle_name, gender, birth_date, oms_number)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`,
		p.LastName, p.FirstName, p.MiddleName, p.Gender, p.BirthDate, p.OMSNumber,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	return apperr.FromDB("patient.create", err)
}

func (r *patientRepoPG) GetByID(ctx context.Context, id int64) (*Patient, error) {
	p, err := scanPatient(r.conn(ctx).QueryRow(ctx, `SELECT `+patientCols+` FROM patient WHERE id = $1`, id))
	if err != nil {
		return nil, patientLookupError("patient.get", id, err)
	}
	return p, nil
}

// GetWithDiseases left-joins disease onto patient so a patient without
// diseases still yields one row with NULL disease columns.
func (r *patientRepoPG) GetWithDiseases(ctx context.Context, id int64) (*Patient, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT p.id, p.last_name, p.first_name, p.middle_name, p.gender, p.birth_date, p.oms_number,
			p.created_at, p.updated_at,
			d.id, d.icd_code, d.start_date, d.end_date, d.prescription, d.created_at, d.updated_at
		FROM patient p
		LEFT JOIN disease d ON d.patient_id = p.id
		WHERE p.id = $1
		ORDER BY d.id`, id)
	if err != nil {
		return nil, apperr.FromDB("patient.get_with_diseases", err)
	}
	defer rows.Close()

	var p *Patient
	for rows.Next() {
		var (
			row                 Patient
			dID                 *int64
			dICD, dPrescription *string
			dStart, dEnd        *time.Time
			dCreated, dUpdated  *time.Time
		)
		if err := rows.Scan(
			&row.ID, &row.LastName, &row.FirstName, &row.MiddleName, &row.Gender, &row.BirthDate, &row.OMSNumber,
			&row.CreatedAt, &row.UpdatedAt,
			&dID, &dICD, &dStart, &dEnd, &dPrescription, &dCreated, &dUpdated,
		); err != nil {
			return nil, apperr.FromDB("patient.get_with_diseases", err)
		}
		if p == nil {
			row.Diseases = []*Disease{}
			p = &row
		}
		if dID == nil {
			continue
		}
		p.Diseases = append(p.Diseases, &Disease{
			ID:           *dID,
			ICDCode:      deref(dICD),
			StartDate:    derefTime(dStart),
			EndDate:      dEnd,
			Prescription: deref(dPrescription),
			PatientID:    p.ID,
			CreatedAt:    derefTime(dCreated),
			UpdatedAt:    derefTime(dUpdated),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.FromDB("patient.get_with_diseases", err)
	}
	if p == nil {
		return nil, apperr.NotFound("patient.get_with_diseases", fmt.Sprintf("patient %d not found", id))
	}
	return p, nil
}

func (r *patientRepoPG) Exists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.conn(ctx).QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM patient WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, apperr.FromDB("patient.exists", err)
	}
	return exists, nil
}

func (r *patientRepoPG) Update(ctx context.Context, p *Patient) error {
	err := r.conn(ctx).QueryRow(ctx, `
		UPDATE patient SET
			last_name=$2, first_name=$3, middle_name=$4, gender=$5, birth_date=$6, oms_number=$7,
			updated_at=NOW()
		WHERE id = $1
		RETURNING updated_at`,
		p.ID, p.LastName, p.FirstName, p.MiddleName, p.Gender, p.BirthDate, p.OMSNumber,
	).Scan(&p.UpdatedAt)
	if err != nil {
		return patientLookupError("patient.update", p.ID, err)
	}
	return nil
}

func (r *patientRepoPG) Delete(ctx context.Context, id int64) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM patient WHERE id = $1`, id)
	if err != nil {
		return apperr.FromDB("patient.delete", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("patient.delete", fmt.Sprintf("patient %d not found", id))
	}
	return nil
}

func scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient
	err := row.Scan(&p.ID, &p.LastName, &p.FirstName, &p.MiddleName, &p.Gender, &p.BirthDate, &p.OMSNumber,
		&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func patientLookupError(op string, id int64, err error) error {
	if err == pgx.ErrNoRows {
		return apperr.NotFound(op, fmt.Sprintf("patient %d not found", id))
	}
	return apperr.FromDB(op, err)
}

// -- Disease Repository --

type diseaseRepoPG struct {
	pool *pgxpool.Pool
}

func NewDiseaseRepo(pool *pgxpool.Pool) DiseaseRepository {
	return &diseaseRepoPG{pool: pool}
}

func (r *diseaseRepoPG) conn(ctx context.Context) db.Querier {
	return db.Conn(ctx, r.pool)
}

const diseaseCols = `id, icd_code, start_date, end_date, prescription, patient_id, created_at, updated_at`

func (r *diseaseRepoPG) Create(ctx context.Context, d *Disease) error {
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO disease (icd_code, start_date, end_date, prescription, patient_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`,
		d.ICDCode, d.StartDate, d.EndDate, d.Prescription, d.PatientID,
	).Scan(&d.ID, &d.CreatedAt, &d.UpdatedAt)
	return apperr.FromDB("disease.create", err)
}

func (r *diseaseRepoPG) GetByID(ctx context.Context, id int64) (*Disease, error) {
	d, err := scanDisease(r.conn(ctx).QueryRow(ctx, `SELECT `+diseaseCols+` FROM disease WHERE id = $1`, id))
	if err != nil {
		return nil, diseaseLookupError("disease.get", id, err)
	}
	return d, nil
}

func (r *diseaseRepoPG) ListByPatient(ctx context.Context, patientID int64) ([]*Disease, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+diseaseCols+` FROM disease WHERE patient_id = $1 ORDER BY id`, patientID)
	if err != nil {
		return nil, apperr.FromDB("disease.list_by_patient", err)
	}
	defer rows.Close()

	diseases := []*Disease{}
	for rows.Next() {
		d, err := scanDisease(rows)
		if err != nil {
			return nil, apperr.FromDB("disease.list_by_patient", err)
		}
		diseases = append(diseases, d)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.FromDB("disease.list_by_patient", err)
	}
	return diseases, nil
}

func (r *diseaseRepoPG) Exists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.conn(ctx).QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM disease WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, apperr.FromDB("disease.exists", err)
	}
	return exists, nil
}

// Update never writes patient_id.
func (r *diseaseRepoPG) Update(ctx context.Context, d *Disease) error {
	err := r.conn(ctx).QueryRow(ctx, `
		UPDATE disease SET
			icd_code=$2, start_date=$3, end_date=$4, prescription=$5, updated_at=NOW()
		WHERE id = $1
		RETURNING updated_at`,
		d.ID, d.ICDCode, d.StartDate, d.EndDate, d.Prescription,
	).Scan(&d.UpdatedAt)
	if err != nil {
		return diseaseLookupError("disease.update", d.ID, err)
	}
	return nil
}

func (r *diseaseRepoPG) Delete(ctx context.Context, id int64) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM disease WHERE id = $1`, id)
	if err != nil {
		return apperr.FromDB("disease.delete", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("disease.delete", fmt.Sprintf("disease %d not found", id))
	}
	return nil
}

func (r *diseaseRepoPG) DeleteByPatient(ctx context.Context, patientID int64) (int64, error) {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM disease WHERE patient_id = $1`, patientID)
	if err != nil {
		return 0, apperr.FromDB("disease.delete_by_patient", err)
	}
	return tag.RowsAffected(), nil
}

func scanDisease(row pgx.Row) (*Disease, error) {
	var d Disease
	err := row.Scan(&d.ID, &d.ICDCode, &d.StartDate, &d.EndDate, &d.Prescription, &d.PatientID,
		&d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func diseaseLookupError(op string, id int64, err error) error {
	if err == pgx.ErrNoRows {
		return apperr.NotFound(op, fmt.Sprintf("disease %d not found", id))
	}
	return apperr.FromDB(op, err)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func derefTime(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}
