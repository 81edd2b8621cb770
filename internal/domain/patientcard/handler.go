package patientcard

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/patientcard/patientcard/internal/platform/apperr"
)

type Handler struct {
	patients *PatientService
	diseases *DiseaseService
}

func NewHandler(patients *PatientService, diseases *DiseaseService) *Handler {
	return &Handler{patients: patients, diseases: diseases}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("/patient/:id", h.GetPatient)
	g.POST("/patient", h.CreatePatient)
	g.PUT("/patient/:id", h.UpdatePatient)
	g.DELETE("/patient/:id", h.DeletePatient)

	g.GET("/diseases/:patientId/getAllById", h.GetAllDiseases)
	g.GET("/diseases/:id", h.GetDisease)
	g.POST("/diseases/:patientId", h.CreateDisease)
	g.PUT("/diseases/:id", h.UpdateDisease)
	g.DELETE("/diseases/:id", h.DeleteDisease)
}

// -- Patient Handlers --

func (h *Handler) GetPatient(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	p, err := h.patients.GetPatient(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) CreatePatient(c echo.Context) error {
	var dto PatientDTO
	if err := c.Bind(&dto); err != nil {
		return bindError(err)
	}
	p, err := h.patients.CreatePatient(c.Request().Context(), dto)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *Handler) UpdatePatient(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var dto PatientDTO
	if err := c.Bind(&dto); err != nil {
		return bindError(err)
	}
	p, err := h.patients.UpdatePatient(c.Request().Context(), id, dto)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) DeletePatient(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.patients.DeletePatient(c.Request().Context(), id); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// -- Disease Handlers --

func (h *Handler) GetAllDiseases(c echo.Context) error {
	patientID, err := pathID(c, "patientId")
	if err != nil {
		return err
	}
	diseases, err := h.diseases.GetAllDiseases(c.Request().Context(), patientID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, diseases)
}

func (h *Handler) GetDisease(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	d, err := h.diseases.GetDiseaseByID(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, d)
}

func (h *Handler) CreateDisease(c echo.Context) error {
	patientID, err := pathID(c, "patientId")
	if err != nil {
		return err
	}
	var dto DiseaseDTO
	if err := c.Bind(&dto); err != nil {
		return bindError(err)
	}
	d, err := h.diseases.CreateDisease(c.Request().Context(), patientID, dto)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, d)
}

func (h *Handler) UpdateDisease(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var dto DiseaseDTO
	if err := c.Bind(&dto); err != nil {
		return bindError(err)
	}
	d, err := h.diseases.UpdateDisease(c.Request().Context(), id, dto)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, d)
}

func (h *Handler) DeleteDisease(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.diseases.DeleteDisease(c.Request().Context(), id); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func pathID(c echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name)
	}
	return id, nil
}

// bindError keeps non-400 echo errors, such as the 413 raised while reading
// an oversized body, and reports decode failures as 400 with their reason.
func bindError(err error) error {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		if he.Code != http.StatusBadRequest {
			return he
		}
		reason := fmt.Sprint(he.Message)
		if he.Internal != nil {
			reason = he.Internal.Error()
		}
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body: "+reason).SetInternal(err)
	}
	return echo.NewHTTPError(http.StatusBadRequest, "invalid request body: "+err.Error()).SetInternal(err)
}

// httpError converts a service error into an echo error whose body is
// {"message": "..."}.
func httpError(err error) error {
	he := echo.NewHTTPError(apperr.HTTPStatus(apperr.CodeOf(err)), apperr.MessageOf(err))
	return he.SetInternal(err)
}
