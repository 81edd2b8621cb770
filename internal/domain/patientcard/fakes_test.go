package patientcard

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/patientcard/patientcard/internal/platform/apperr"
)

// -- In-memory store --

// memStore backs both fake repositories so a fake transaction can snapshot
// and restore patients and diseases together.
type memStore struct {
	patients      map[int64]Patient
	diseases      map[int64]Disease
	nextPatientID int64
	nextDiseaseID int64

	// failPatientDelete makes the next patient delete fail after diseases
	// were already removed.
	failPatientDelete error
}

func newMemStore() *memStore {
	return &memStore{
		patients: make(map[int64]Patient),
		diseases: make(map[int64]Disease),
	}
}

func (s *memStore) snapshot() *memStore {
	cp := &memStore{
		patients:      make(map[int64]Patient, len(s.patients)),
		diseases:      make(map[int64]Disease, len(s.diseases)),
		nextPatientID: s.nextPatientID,
		nextDiseaseID: s.nextDiseaseID,
	}
	for k, v := range s.patients {
		cp.patients[k] = v
	}
	for k, v := range s.diseases {
		cp.diseases[k] = v
	}
	return cp
}

func (s *memStore) restore(from *memStore) {
	s.patients = from.patients
	s.diseases = from.diseases
	s.nextPatientID = from.nextPatientID
	s.nextDiseaseID = from.nextDiseaseID
}

func (s *memStore) diseasesOf(patientID int64) []*Disease {
	var ids []int64
	for id, d := range s.diseases {
		if d.PatientID == patientID {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := make([]*Disease, 0, len(ids))
	for _, id := range ids {
		d := s.diseases[id]
		out = append(out, &d)
	}
	return out
}

// fakeTx runs fn directly and rolls the store back when fn fails.
type fakeTx struct {
	store *memStore
	calls int
}

func (t *fakeTx) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	t.calls++
	saved := t.store.snapshot()
	if err := fn(ctx); err != nil {
		t.store.restore(saved)
		return err
	}
	return nil
}

// -- Mock Patient Repository --

type mockPatientRepo struct {
	store *memStore
}

func (m *mockPatientRepo) Create(_ context.Context, p *Patient) error {
	if err := m.checkOMS(p.ID, p.OMSNumber); err != nil {
		return err
	}
	m.store.nextPatientID++
	p.ID = m.store.nextPatientID
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	row := *p
	row.Diseases = nil
	m.store.patients[p.ID] = row
	return nil
}

func (m *mockPatientRepo) GetByID(_ context.Context, id int64) (*Patient, error) {
	p, ok := m.store.patients[id]
	if !ok {
		return nil, apperr.NotFound("patient.get", fmt.Sprintf("patient %d not found", id))
	}
	return &p, nil
}

func (m *mockPatientRepo) GetWithDiseases(ctx context.Context, id int64) (*Patient, error) {
	p, err := m.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	p.Diseases = m.store.diseasesOf(id)
	return p, nil
}

func (m *mockPatientRepo) Exists(_ context.Context, id int64) (bool, error) {
	_, ok := m.store.patients[id]
	return ok, nil
}

func (m *mockPatientRepo) Update(_ context.Context, p *Patient) error {
	if _, ok := m.store.patients[p.ID]; !ok {
		return apperr.NotFound("patient.update", fmt.Sprintf("patient %d not found", p.ID))
	}
	if err := m.checkOMS(p.ID, p.OMSNumber); err != nil {
		return err
	}
	p.UpdatedAt = time.Now()
	row := *p
	row.Diseases = nil
	m.store.patients[p.ID] = row
	return nil
}

func (m *mockPatientRepo) Delete(_ context.Context, id int64) error {
	if err := m.store.failPatientDelete; err != nil {
		m.store.failPatientDelete = nil
		return err
	}
	if _, ok := m.store.patients[id]; !ok {
		return apperr.NotFound("patient.delete", fmt.Sprintf("patient %d not found", id))
	}
	for _, d := range m.store.diseases {
		if d.PatientID == id {
			return errors.New("foreign key violation: disease still references patient")
		}
	}
	delete(m.store.patients, id)
	return nil
}

func (m *mockPatientRepo) checkOMS(selfID int64, oms string) error {
	for id, p := range m.store.patients {
		if id != selfID && p.OMSNumber == oms {
			return apperr.Conflict("patient.save", "a patient with this OMS number already exists")
		}
	}
	return nil
}

// -- Mock Disease Repository --

type mockDiseaseRepo struct {
	store *memStore
}

func (m *mockDiseaseRepo) Create(_ context.Context, d *Disease) error {
	if _, ok := m.store.patients[d.PatientID]; !ok {
		return errors.New("foreign key violation: unknown patient")
	}
	m.store.nextDiseaseID++
	d.ID = m.store.nextDiseaseID
	d.CreatedAt = time.Now()
	d.UpdatedAt = d.CreatedAt
	m.store.diseases[d.ID] = *d
	return nil
}

func (m *mockDiseaseRepo) GetByID(_ context.Context, id int64) (*Disease, error) {
	d, ok := m.store.diseases[id]
	if !ok {
		return nil, apperr.NotFound("disease.get", fmt.Sprintf("disease %d not found", id))
	}
	return &d, nil
}

func (m *mockDiseaseRepo) ListByPatient(_ context.Context, patientID int64) ([]*Disease, error) {
	return m.store.diseasesOf(patientID), nil
}

func (m *mockDiseaseRepo) Exists(_ context.Context, id int64) (bool, error) {
	_, ok := m.store.diseases[id]
	return ok, nil
}

func (m *mockDiseaseRepo) Update(_ context.Context, d *Disease) error {
	old, ok := m.store.diseases[d.ID]
	if !ok {
		return apperr.NotFound("disease.update", fmt.Sprintf("disease %d not found", d.ID))
	}
	d.PatientID = old.PatientID
	d.UpdatedAt = time.Now()
	m.store.diseases[d.ID] = *d
	return nil
}

func (m *mockDiseaseRepo) Delete(_ context.Context, id int64) error {
	if _, ok := m.store.diseases[id]; !ok {
		return apperr.NotFound("disease.delete", fmt.Sprintf("disease %d not found", id))
	}
	delete(m.store.diseases, id)
	return nil
}

func (m *mockDiseaseRepo) DeleteByPatient(_ context.Context, patientID int64) (int64, error) {
	var n int64
	for id, d := range m.store.diseases {
		if d.PatientID == patientID {
			delete(m.store.diseases, id)
			n++
		}
	}
	return n, nil
}

// -- Fixture --

var testNow = time.Date(2024, time.June, 15, 10, 30, 0, 0, time.UTC)

type fixture struct {
	store    *memStore
	tx       *fakeTx
	patients *PatientService
	diseases *DiseaseService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := newMemStore()
	tx := &fakeTx{store: store}
	pr := &mockPatientRepo{store: store}
	dr := &mockDiseaseRepo{store: store}
	logger := zerolog.New(io.Discard)

	ps := NewPatientService(pr, dr, tx, logger)
	ps.now = func() time.Time { return testNow }
	ds := NewDiseaseService(pr, dr, tx, logger)
	ds.now = func() time.Time { return testNow }

	return &fixture{store: store, tx: tx, patients: ps, diseases: ds}
}

func strPtr(s string) *string { return &s }

func datePtr(d Date) *Date { return &d }

func validPatientDTO(oms string) PatientDTO {
	return PatientDTO{
		LastName:  "Brown",
		FirstName: "Mark",
		Gender:    "male",
		BirthDate: NewDate(1999, time.December, 12),
		OMSNumber: oms,
	}
}

func validDiseaseDTO() DiseaseDTO {
	return DiseaseDTO{
		ICDCode:      "J45.0",
		StartDate:    NewDate(2024, time.January, 10),
		Prescription: "Salbutamol inhaler as needed",
	}
}
