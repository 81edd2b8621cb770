package patientcard

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/patientcard/patientcard/internal/platform/apperr"
	"github.com/patientcard/patientcard/internal/platform/db"
)

// PatientService manages the patient aggregate: the patient row and, on
// delete, every disease it owns.
type PatientService struct {
	patients PatientRepository
	diseases DiseaseRepository
	tx       db.TxRunner
	logger   zerolog.Logger
	now      func() time.Time
}

func NewPatientService(patients PatientRepository, diseases DiseaseRepository, tx db.TxRunner, logger zerolog.Logger) *PatientService {
	return &PatientService{
		patients: patients,
		diseases: diseases,
		tx:       tx,
		logger:   logger.With().Str("component", "patient_service").Logger(),
		now:      time.Now,
	}
}

// GetPatient returns the patient with its diseases loaded eagerly.
func (s *PatientService) GetPatient(ctx context.Context, id int64) (PatientDTO, error) {
	s.logger.Debug().Int64("patient_id", id).Msg("get patient")

	var out PatientDTO
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		p, err := s.patients.GetWithDiseases(ctx, id)
		if err != nil {
			return err
		}
		out = PatientToDTO(p)
		return nil
	})
	if err != nil {
		s.logFailure(err, id, "get patient failed")
		return PatientDTO{}, err
	}
	return out, nil
}

// CreatePatient validates and stores a new patient with no diseases. Any
// diseases on dto are ignored.
func (s *PatientService) CreatePatient(ctx context.Context, dto PatientDTO) (PatientDTO, error) {
	s.logger.Debug().Str("oms_number", dto.OMSNumber).Msg("create patient")

	if err := ValidatePatient(dto, s.now()); err != nil {
		s.logFailure(err, 0, "invalid patient")
		return PatientDTO{}, err
	}

	p := PatientFromDTO(dto)
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		return s.patients.Create(ctx, p)
	})
	if err != nil {
		s.logFailure(err, 0, "create patient failed")
		return PatientDTO{}, err
	}

	s.logger.Info().Int64("patient_id", p.ID).Msg("patient created")
	return PatientToDTO(p), nil
}

// UpdatePatient replaces every scalar field of an existing patient. The
// disease collection is left as it is.
func (s *PatientService) UpdatePatient(ctx context.Context, id int64, dto PatientDTO) (PatientDTO, error) {
	s.logger.Debug().Int64("patient_id", id).Msg("update patient")

	var out PatientDTO
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		p, err := s.patients.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if err := ValidatePatient(dto, s.now()); err != nil {
			return err
		}

		ApplyPatientDTO(p, dto)
		if err := s.patients.Update(ctx, p); err != nil {
			return err
		}

		diseases, err := s.diseases.ListByPatient(ctx, id)
		if err != nil {
			return err
		}
		p.Diseases = diseases
		out = PatientToDTO(p)
		return nil
	})
	if err != nil {
		s.logFailure(err, id, "update patient failed")
		return PatientDTO{}, err
	}

	s.logger.Info().Int64("patient_id", id).Msg("patient updated")
	return out, nil
}

// DeletePatient removes the patient and all of its diseases in one
// transaction, diseases first.
func (s *PatientService) DeletePatient(ctx context.Context, id int64) error {
	s.logger.Debug().Int64("patient_id", id).Msg("delete patient")

	var removed int64
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		exists, err := s.patients.Exists(ctx, id)
		if err != nil {
			return err
		}
		if !exists {
			return apperr.NotFound("patient.delete", fmt.Sprintf("patient %d not found", id))
		}

		removed, err = s.diseases.DeleteByPatient(ctx, id)
		if err != nil {
			return err
		}
		return s.patients.Delete(ctx, id)
	})
	if err != nil {
		s.logFailure(err, id, "delete patient failed")
		return err
	}

	s.logger.Info().Int64("patient_id", id).Int64("diseases_removed", removed).Msg("patient deleted")
	return nil
}

func (s *PatientService) logFailure(err error, id int64, msg string) {
	evt := s.logger.Error()
	switch apperr.CodeOf(err) {
	case apperr.CodeNotFound, apperr.CodeConflict:
		evt = s.logger.Warn()
	case apperr.CodeInvalidArgument:
		evt = s.logger.Info()
	}
	if id != 0 {
		evt = evt.Int64("patient_id", id)
	}
	evt.Err(err).Msg(msg)
}
