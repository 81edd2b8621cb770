package patientcard

import (
	"encoding/json"
	"fmt"
	"time"
)

// DateLayout is the wire format of calendar dates.
const DateLayout = "2006-01-02"

// Date is a calendar date carried on the wire as "YYYY-MM-DD".
type Date struct {
	time.Time
}

// NewDate returns the date at midnight UTC.
func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar day.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, m, d)
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.Format(DateLayout))
}

func (d *Date) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*d = Date{}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("date must be a string in %s format", DateLayout)
	}
	if s == "" {
		*d = Date{}
		return nil
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return fmt.Errorf("invalid date %q, expected %s", s, DateLayout)
	}
	d.Time = t
	return nil
}

// PatientDTO is the wire shape of a patient.
type PatientDTO struct {
	ID         int64        `json:"id,omitempty"`
	LastName   string       `json:"lastName"`
	FirstName  string       `json:"firstName"`
	MiddleName *string      `json:"middleName,omitempty"`
	Gender     string       `json:"gender"`
	BirthDate  Date         `json:"birthDate"`
	OMSNumber  string       `json:"omsNumber"`
	Diseases   []DiseaseDTO `json:"diseases"`
}

// DiseaseDTO is the wire shape of a disease. It has no back-reference to
// the owning patient.
type DiseaseDTO struct {
	ID           int64  `json:"id,omitempty"`
	ICDCode      string `json:"icdCode"`
	StartDate    Date   `json:"startDate"`
	EndDate      *Date  `json:"endDate,omitempty"`
	Prescription string `json:"prescription"`
}
