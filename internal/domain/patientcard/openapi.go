package patientcard

import (
	"net/http"

	"github.com/patientcard/patientcard/internal/platform/openapi"
)

// Operations documents the routes added by RegisterRoutes.
func (h *Handler) Operations() []openapi.Operation {
	return []openapi.Operation{
		{
			Method: http.MethodGet, Path: "/patient/:id", Tag: "Patient",
			Summary: "Get patient by id", OperationID: "getPatient",
			Status: http.StatusOK, Response: "Patient",
			Errors: []int{http.StatusBadRequest, http.StatusNotFound},
		},
		{
			Method: http.MethodPost, Path: "/patient", Tag: "Patient",
			Summary: "Create patient", OperationID: "createPatient", Request: "Patient",
			Status: http.StatusCreated, Response: "Patient",
			Errors: []int{http.StatusBadRequest, http.StatusConflict},
		},
		{
			Method: http.MethodPut, Path: "/patient/:id", Tag: "Patient",
			Summary: "Update patient", OperationID: "updatePatient", Request: "Patient",
			Status: http.StatusOK, Response: "Patient",
			Errors: []int{http.StatusBadRequest, http.StatusNotFound, http.StatusConflict},
		},
		{
			Method: http.MethodDelete, Path: "/patient/:id", Tag: "Patient",
			Summary: "Delete patient and its diseases", OperationID: "deletePatient",
			Status: http.StatusNoContent,
			Errors: []int{http.StatusBadRequest, http.StatusNotFound},
		},
		{
			Method: http.MethodGet, Path: "/diseases/:patientId/getAllById", Tag: "Disease",
			Summary: "List diseases of a patient", OperationID: "getAllDiseases",
			Status: http.StatusOK, Response: "Disease", List: true,
			Errors: []int{http.StatusBadRequest, http.StatusNotFound},
		},
		{
			Method: http.MethodGet, Path: "/diseases/:id", Tag: "Disease",
			Summary: "Get disease by id", OperationID: "getDisease",
			Status: http.StatusOK, Response: "Disease",
			Errors: []int{http.StatusBadRequest, http.StatusNotFound},
		},
		{
			Method: http.MethodPost, Path: "/diseases/:patientId", Tag: "Disease",
			Summary: "Create disease for a patient", OperationID: "createDisease", Request: "Disease",
			Status: http.StatusCreated, Response: "Disease",
			Errors: []int{http.StatusBadRequest, http.StatusNotFound},
		},
		{
			Method: http.MethodPut, Path: "/diseases/:id", Tag: "Disease",
			Summary: "Update disease", OperationID: "updateDisease", Request: "Disease",
			Status: http.StatusOK, Response: "Disease",
			Errors: []int{http.StatusBadRequest, http.StatusNotFound},
		},
		{
			Method: http.MethodDelete, Path: "/diseases/:id", Tag: "Disease",
			Summary: "Delete disease", OperationID: "deleteDisease",
			Status: http.StatusNoContent,
			Errors: []int{http.StatusBadRequest, http.StatusNotFound},
		},
	}
}

// Schemas returns the component schemas of PatientDTO and DiseaseDTO.
func (h *Handler) Schemas() map[string]interface{} {
	date := map[string]interface{}{"type": "string", "format": "date", "example": "1999-12-12"}
	readOnlyID := map[string]interface{}{"type": "integer", "format": "int64", "readOnly": true}

	return map[string]interface{}{
		"Patient": map[string]interface{}{
			"type":     "object",
			"required": []string{"lastName", "firstName", "gender", "birthDate", "omsNumber"},
			"properties": map[string]interface{}{
				"id":         readOnlyID,
				"lastName":   map[string]interface{}{"type": "string"},
				"firstName":  map[string]interface{}{"type": "string"},
				"middleName": map[string]interface{}{"type": "string", "nullable": true},
				"gender":     map[string]interface{}{"type": "string"},
				"birthDate":  date,
				"omsNumber":  map[string]interface{}{"type": "string", "maxLength": MaxOMSNumberLength},
				"diseases": map[string]interface{}{
					"type":     "array",
					"readOnly": true,
					"items":    map[string]interface{}{"$ref": "#/components/schemas/Disease"},
				},
			},
		},
		"Disease": map[string]interface{}{
			"type":     "object",
			"required": []string{"icdCode", "startDate", "prescription"},
			"properties": map[string]interface{}{
				"id":           readOnlyID,
				"icdCode":      map[string]interface{}{"type": "string"},
				"startDate":    date,
				"endDate":      map[string]interface{}{"type": "string", "format": "date", "nullable": true},
				"prescription": map[string]interface{}{"type": "string", "maxLength": MaxPrescriptionLength},
			},
		},
	}
}
