package patientcard

import (
	"time"
)

// Patient maps to the patient table. It is the aggregate root; Diseases is
// only populated by the eager read.
type Patient struct {
	ID         int64      `db:"id"`
	LastName   string     `db:"last_name"`
	FirstName  string     `db:"first_name"`
	MiddleName *string    `db:"middle_name"`
	Gender     string     `db:"gender"`
	BirthDate  time.Time  `db:"birth_date"`
	OMSNumber  string     `db:"oms_number"`
	Diseases   []*Disease `db:"-"`
	CreatedAt  time.Time  `db:"created_at"`
	UpdatedAt  time.Time  `db:"updated_at"`
}

// Disease maps to the disease table. PatientID is the owning reference and
// never changes after creation.
type Disease struct {
	ID           int64      `db:"id"`
	ICDCode      string     `db:"icd_code"`
	StartDate    time.Time  `db:"start_date"`
	EndDate      *time.Time `db:"end_date"`
	Prescription string     `db:"prescription"`
	PatientID    int64      `db:"patient_id"`
	CreatedAt    time.Time  `db:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at"`
}
