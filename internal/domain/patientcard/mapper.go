package patientcard

// PatientToDTO copies every scalar and maps the owned diseases. Diseases is
// never nil.
func PatientToDTO(p *Patient) PatientDTO {
	dto := PatientDTO{
		ID:         p.ID,
		LastName:   p.LastName,
		FirstName:  p.FirstName,
		MiddleName: copyString(p.MiddleName),
		Gender:     p.Gender,
		BirthDate:  DateOf(p.BirthDate),
		OMSNumber:  p.OMSNumber,
	}
	dto.Diseases = DiseasesToDTO(p.Diseases)
	return dto
}

func DiseaseToDTO(d *Disease) DiseaseDTO {
	dto := DiseaseDTO{
		ID:           d.ID,
		ICDCode:      d.ICDCode,
		StartDate:    DateOf(d.StartDate),
		Prescription: d.Prescription,
	}
	if d.EndDate != nil {
		end := DateOf(*d.EndDate)
		dto.EndDate = &end
	}
	return dto
}

func DiseasesToDTO(diseases []*Disease) []DiseaseDTO {
	out := make([]DiseaseDTO, 0, len(diseases))
	for _, d := range diseases {
		out = append(out, DiseaseToDTO(d))
	}
	return out
}

// PatientFromDTO builds a new, unsaved patient. The id is left for the store
// and the disease collection is never taken from the wire.
func PatientFromDTO(dto PatientDTO) *Patient {
	p := &Patient{}
	ApplyPatientDTO(p, dto)
	return p
}

// DiseaseFromDTO builds a new, unsaved disease without an owner. The caller
// assigns PatientID.
func DiseaseFromDTO(dto DiseaseDTO) *Disease {
	d := &Disease{}
	ApplyDiseaseDTO(d, dto)
	return d
}

// ApplyPatientDTO replaces every scalar field of p. ID and Diseases are not touched.
func ApplyPatientDTO(p *Patient, dto PatientDTO) {
	p.LastName = dto.LastName
	p.FirstName = dto.FirstName
	p.MiddleName = copyString(dto.MiddleName)
	p.Gender = dto.Gender
	p.BirthDate = dto.BirthDate.Time
	p.OMSNumber = dto.OMSNumber
}

// ApplyDiseaseDTO replaces every scalar field of d. ID and PatientID are not touched.
func ApplyDiseaseDTO(d *Disease, dto DiseaseDTO) {
	d.ICDCode = dto.ICDCode
	d.StartDate = dto.StartDate.Time
	d.EndDate = nil
	if dto.EndDate != nil && !dto.EndDate.IsZero() {
		end := dto.EndDate.Time
		d.EndDate = &end
	}
	d.Prescription = dto.Prescription
}

func copyString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
