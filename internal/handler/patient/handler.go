package patient

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/servir-hc/internal/handler"
	"github.com/jwalitptl/servir-hc/internal/model"
	"github.com/jwalitptl/servir-hc/internal/service/clinical"
	"github.com/jwalitptl/servir-hc/internal/service/document"
)

type Handler struct {
	svc  *clinical.Service
	docs *document.Service
}

func NewHandler(svc *clinical.Service, docs *document.Service) *Handler {
	return &Handler{svc: svc, docs: docs}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	patients := r.Group("/patients")
	{
		patients.POST("", h.CreatePatient)
		patients.GET("", h.ListPatients)
		patients.GET("/:id", h.GetPatient)
		patients.PUT("/:id", h.UpdatePatient)

		patients.POST("/:id/records", h.AddMedicalRecord)
		patients.GET("/:id/records", h.ListMedicalRecords)

		patients.POST("/:id/appointments", h.CreateAppointment)
		patients.GET("/:id/appointments", h.ListAppointments)

		patients.GET("/:id/document", h.ClinicalDocument)
	}

	r.PUT("/records/:id", h.UpdateMedicalRecord)
	r.PUT("/appointments/:id/status", h.UpdateAppointmentStatus)
}

func (h *Handler) CreatePatient(c *gin.Context) {
	var req model.PatientInput
	if !handler.BindJSON(c, &req) {
		return
	}

	patient, err := h.svc.AddPatient(c.Request.Context(), &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(patient))
}

// ListPatients lists every patient, or searches when ?q= is given.
func (h *Handler) ListPatients(c *gin.Context) {
	var (
		patients []*model.Patient
		err      error
	)
	if q, ok := c.GetQuery("q"); ok {
		patients, err = h.svc.SearchPatients(c.Request.Context(), q)
	} else {
		patients, err = h.svc.GetPatients(c.Request.Context())
	}
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(patients))
}

func (h *Handler) GetPatient(c *gin.Context) {
	id, ok := handler.PathID(c, "id")
	if !ok {
		return
	}

	patient, err := h.svc.GetPatient(c.Request.Context(), id)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(patient))
}

func (h *Handler) UpdatePatient(c *gin.Context) {
	id, ok := handler.PathID(c, "id")
	if !ok {
		return
	}
	var req model.PatientUpdate
	if !handler.BindJSON(c, &req) {
		return
	}

	patient, err := h.svc.UpdatePatient(c.Request.Context(), id, &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(patient))
}

func (h *Handler) AddMedicalRecord(c *gin.Context) {
	id, ok := handler.PathID(c, "id")
	if !ok {
		return
	}
	var req model.MedicalRecordInput
	if !handler.BindJSON(c, &req) {
		return
	}

	record, err := h.svc.AddMedicalRecord(c.Request.Context(), id, &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(record))
}

func (h *Handler) ListMedicalRecords(c *gin.Context) {
	id, ok := handler.PathID(c, "id")
	if !ok {
		return
	}

	records, err := h.svc.GetMedicalRecords(c.Request.Context(), id)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(records))
}

func (h *Handler) UpdateMedicalRecord(c *gin.Context) {
	id, ok := handler.PathID(c, "id")
	if !ok {
		return
	}
	var req model.MedicalRecordUpdate
	if !handler.BindJSON(c, &req) {
		return
	}

	record, err := h.svc.UpdateMedicalRecord(c.Request.Context(), id, &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(record))
}

func (h *Handler) CreateAppointment(c *gin.Context) {
	id, ok := handler.PathID(c, "id")
	if !ok {
		return
	}
	var req model.AppointmentInput
	if !handler.BindJSON(c, &req) {
		return
	}

	appointment, err := h.svc.AddAppointment(c.Request.Context(), id, &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(appointment))
}

func (h *Handler) ListAppointments(c *gin.Context) {
	id, ok := handler.PathID(c, "id")
	if !ok {
		return
	}

	appointments, err := h.svc.ListAppointments(c.Request.Context(), id)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(appointments))
}

func (h *Handler) UpdateAppointmentStatus(c *gin.Context) {
	id, ok := handler.PathID(c, "id")
	if !ok {
		return
	}
	var req model.UpdateAppointmentStatusRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	appointment, err := h.svc.UpdateAppointmentStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(appointment))
}

func (h *Handler) ClinicalDocument(c *gin.Context) {
	id, ok := handler.PathID(c, "id")
	if !ok {
		return
	}

	doc, err := h.docs.GenerateClinicalDocument(c.Request.Context(), id)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.Filename))
	c.Data(http.StatusOK, document.ContentType, doc.Content)
}
