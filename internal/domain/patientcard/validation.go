package patientcard

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/patientcard/patientcard/internal/platform/apperr"
)

const (
	MaxPrescriptionLength = 1024
	MaxOMSNumberLength    = 16
)

// ValidatePatient checks a candidate patient against the calendar day of now.
// Checks run in a fixed order and the first failure is reported.
func ValidatePatient(dto PatientDTO, now time.Time) error {
	const op = "patient.validate"

	if dto.BirthDate.IsZero() {
		return apperr.InvalidArgument(op, "birth date is required")
	}
	if afterToday(dto.BirthDate.Time, now) {
		return apperr.InvalidArgument(op, "birth date cannot be in the future")
	}
	if dto.OMSNumber == "" {
		return apperr.InvalidArgument(op, "OMS number cannot be empty")
	}
	if utf8.RuneCountInString(dto.OMSNumber) > MaxOMSNumberLength {
		return apperr.InvalidArgument(op, fmt.Sprintf("OMS number cannot exceed %d characters", MaxOMSNumberLength))
	}
	if blank(dto.LastName) {
		return apperr.InvalidArgument(op, "last name is required")
	}
	if blank(dto.FirstName) {
		return apperr.InvalidArgument(op, "first name is required")
	}
	if blank(dto.Gender) {
		return apperr.InvalidArgument(op, "gender is required")
	}
	return nil
}

// ValidateDisease checks a candidate disease against the calendar day of now.
// An end date earlier than the start date is accepted.
func ValidateDisease(dto DiseaseDTO, now time.Time) error {
	const op = "disease.validate"

	if dto.StartDate.IsZero() {
		return apperr.InvalidArgument(op, "start date is required")
	}
	if afterToday(dto.StartDate.Time, now) {
		return apperr.InvalidArgument(op, "disease start date cannot be in the future")
	}
	if dto.EndDate != nil && !dto.EndDate.IsZero() && afterToday(dto.EndDate.Time, now) {
		return apperr.InvalidArgument(op, "disease end date cannot be in the future")
	}
	if utf8.RuneCountInString(dto.Prescription) > MaxPrescriptionLength {
		return apperr.InvalidArgument(op, fmt.Sprintf("prescription cannot exceed %d characters", MaxPrescriptionLength))
	}
	if blank(dto.ICDCode) {
		return apperr.InvalidArgument(op, "ICD code is required")
	}
	if blank(dto.Prescription) {
		return apperr.InvalidArgument(op, "prescription is required")
	}
	return nil
}

// afterToday compares calendar days only; now's location decides what today is.
func afterToday(d, now time.Time) bool {
	ty, tm, td := now.Date()
	dy, dm, dd := d.Date()
	return time.Date(dy, dm, dd, 0, 0, 0, 0, time.UTC).After(time.Date(ty, tm, td, 0, 0, 0, 0, time.UTC))
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}
