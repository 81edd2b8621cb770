package patientcard

import (
	"context"
)

// PatientRepository persists patients. Lookups of a missing id return an
// apperr NotFound error; a duplicate OMS number returns Conflict.
type PatientRepository interface {
	Create(ctx context.Context, p *Patient) error
	GetByID(ctx context.Context, id int64) (*Patient, error)
	// GetWithDiseases loads the patient and its diseases in one round trip,
	// diseases in insertion order.
	GetWithDiseases(ctx context.Context, id int64) (*Patient, error)
	Exists(ctx context.Context, id int64) (bool, error)
	Update(ctx context.Context, p *Patient) error
	Delete(ctx context.Context, id int64) error
}

type DiseaseRepository interface {
	Create(ctx context.Context, d *Disease) error
	GetByID(ctx context.Context, id int64) (*Disease, error)
	ListByPatient(ctx context.Context, patientID int64) ([]*Disease, error)
	Exists(ctx context.Context, id int64) (bool, error)
	Update(ctx context.Context, d *Disease) error
	Delete(ctx context.Context, id int64) error
	// DeleteByPatient removes every disease owned by patientID and returns
	// how many rows went away.
	DeleteByPatient(ctx context.Context, patientID int64) (int64, error)
}
