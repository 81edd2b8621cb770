package patientcard

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/patientcard/patientcard/internal/platform/apperr"
	"github.com/patientcard/patientcard/internal/platform/db"
)

// DiseaseService manages disease records owned by a patient.
type DiseaseService struct {
	patients PatientRepository
	diseases DiseaseRepository
	tx       db.TxRunner
	logger   zerolog.Logger
	now      func() time.Time
}

func NewDiseaseService(patients PatientRepository, diseases DiseaseRepository, tx db.TxRunner, logger zerolog.Logger) *DiseaseService {
	return &DiseaseService{
		patients: patients,
		diseases: diseases,
		tx:       tx,
		logger:   logger.With().Str("component", "disease_service").Logger(),
		now:      time.Now,
	}
}

// CreateDisease validates dto before looking up the owning patient.
func (s *DiseaseService) CreateDisease(ctx context.Context, patientID int64, dto DiseaseDTO) (DiseaseDTO, error) {
	s.logger.Info().Int64("patient_id", patientID).Msg("create disease")

	if err := ValidateDisease(dto, s.now()); err != nil {
		s.logger.Info().Err(err).Int64("patient_id", patientID).Msg("invalid disease")
		return DiseaseDTO{}, err
	}

	d := DiseaseFromDTO(dto)
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		exists, err := s.patients.Exists(ctx, patientID)
		if err != nil {
			return err
		}
		if !exists {
			return apperr.NotFound("disease.create", fmt.Sprintf("patient %d not found", patientID))
		}
		d.PatientID = patientID
		return s.diseases.Create(ctx, d)
	})
	if err != nil {
		s.logFailure(err, "create disease failed", "patient_id", patientID)
		return DiseaseDTO{}, err
	}

	s.logger.Info().Int64("patient_id", patientID).Int64("disease_id", d.ID).Msg("disease created")
	return DiseaseToDTO(d), nil
}

// GetAllDiseases lists the patient's diseases in insertion order.
func (s *DiseaseService) GetAllDiseases(ctx context.Context, patientID int64) ([]DiseaseDTO, error) {
	s.logger.Debug().Int64("patient_id", patientID).Msg("list diseases")

	var out []DiseaseDTO
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		p, err := s.patients.GetWithDiseases(ctx, patientID)
		if err != nil {
			return err
		}
		out = DiseasesToDTO(p.Diseases)
		return nil
	})
	if err != nil {
		s.logFailure(err, "list diseases failed", "patient_id", patientID)
		return nil, err
	}
	return out, nil
}

func (s *DiseaseService) GetDiseaseByID(ctx context.Context, id int64) (DiseaseDTO, error) {
	s.logger.Debug().Int64("disease_id", id).Msg("get disease")

	var out DiseaseDTO
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		d, err := s.diseases.GetByID(ctx, id)
		if err != nil {
			return err
		}
		out = DiseaseToDTO(d)
		return nil
	})
	if err != nil {
		s.logFailure(err, "get disease failed", "disease_id", id)
		return DiseaseDTO{}, err
	}
	return out, nil
}

// UpdateDisease replaces icd code, dates and prescription in place. The
// owning patient never changes.
func (s *DiseaseService) UpdateDisease(ctx context.Context, id int64, dto DiseaseDTO) (DiseaseDTO, error) {
	s.logger.Info().Int64("disease_id", id).Msg("update disease")

	var out DiseaseDTO
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		d, err := s.diseases.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if err := ValidateDisease(dto, s.now()); err != nil {
			return err
		}
		ApplyDiseaseDTO(d, dto)
		if err := s.diseases.Update(ctx, d); err != nil {
			return err
		}
		out = DiseaseToDTO(d)
		return nil
	})
	if err != nil {
		s.logFailure(err, "update disease failed", "disease_id", id)
		return DiseaseDTO{}, err
	}

	s.logger.Info().Int64("disease_id", id).Msg("disease updated")
	return out, nil
}

func (s *DiseaseService) DeleteDisease(ctx context.Context, id int64) error {
	s.logger.Warn().Int64("disease_id", id).Msg("delete disease")

	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		exists, err := s.diseases.Exists(ctx, id)
		if err != nil {
			return err
		}
		if !exists {
			return apperr.NotFound("disease.delete", fmt.Sprintf("disease %d not found", id))
		}
		return s.diseases.Delete(ctx, id)
	})
	if err != nil {
		s.logFailure(err, "delete disease failed", "disease_id", id)
		return err
	}

	s.logger.Info().Int64("disease_id", id).Msg("disease deleted")
	return nil
}

func (s *DiseaseService) logFailure(err error, msg, key string, id int64) {
	evt := s.logger.Error()
	switch apperr.CodeOf(err) {
	case apperr.CodeNotFound, apperr.CodeConflict:
		evt = s.logger.Warn()
	case apperr.CodeInvalidArgument:
		evt = s.logger.Info()
	}
	evt.Err(err).Int64(key, id).Msg(msg)
}
