package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"pilot-logbook-backend/internal/maintenance"
	"pilot-logbook-backend/internal/model"
)

type maintenanceRequest struct {
	AircraftID    string                  `json:"aircraftId" binding:"required"`
	CheckType     model.CheckType         `json:"checkType" binding:"required"`
	Status        model.MaintenanceStatus `json:"status" binding:"required"`
	ScheduledDate model.Date              `json:"scheduledDate"`
	CompletedDate *model.Date             `json:"completedDate"`
	HoursAtCheck  float64                 `json:"hoursAtCheck" binding:"gte=0"`
	NextDueHours  *float64                `json:"nextDueHours" binding:"omitempty,gte=0"`
	NextDueDate   *model.Date             `json:"nextDueDate"`
	Technician    string                  `json:"technician"`
	Squawks       string                  `json:"squawks"`
	Cost          *float64                `json:"cost" binding:"omitempty,gte=0"`
	Notes         string                  `json:"notes"`
}

func (r maintenanceRequest) toModel(id string) (*model.MaintenanceRecord, error) {
	if !r.CheckType.Valid() {
		return nil, fmt.Errorf("unknown check type %q", r.CheckType)
	}
	if !r.Status.Valid() {
		return nil, fmt.Errorf("unknown maintenance status %q", r.Status)
	}
	if r.ScheduledDate.IsZero() {
		return nil, fmt.Errorf("scheduledDate is required")
	}
	if r.Status == model.MaintenanceCompleted && r.CompletedDate == nil {
		return nil, fmt.Errorf("completedDate is required for a completed check")
	}
	return &model.MaintenanceRecord{
		ID:            id,
		AircraftID:    r.AircraftID,
		CheckType:     r.CheckType,
		Status:        r.Status,
		ScheduledDate: r.ScheduledDate,
		CompletedDate: r.CompletedDate,
		HoursAtCheck:  r.HoursAtCheck,
		NextDueHours:  r.NextDueHours,
		NextDueDate:   r.NextDueDate,
		Technician:    r.Technician,
		Squawks:       r.Squawks,
		Cost:          r.Cost,
		Notes:         r.Notes,
	}, nil
}

// ListMaintenance returns all maintenance records, or those of one aircraft
// when aircraftId is given.
func (h *Handler) ListMaintenance(c *gin.Context) {
	records, err := h.store.ListMaintenanceRecords(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	if id := c.Query("aircraftId"); id != "" {
		records = maintenance.RecordsForAircraft(records, id)
	}
	c.JSON(http.StatusOK, nonNil(records))
}

func (h *Handler) GetMaintenance(c *gin.Context) {
	r, err := h.store.GetMaintenanceRecord(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

func (h *Handler) CreateMaintenance(c *gin.Context) {
	var req maintenanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	r, err := req.toModel("")
	if err != nil {
		badRequest(c, err)
		return
	}
	if err := h.store.CreateMaintenanceRecord(c.Request.Context(), r); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, r)
}

func (h *Handler) UpdateMaintenance(c *gin.Context) {
	var req maintenanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	r, err := req.toModel(c.Param("id"))
	if err != nil {
		badRequest(c, err)
		return
	}
	if err := h.store.UpdateMaintenanceRecord(c.Request.Context(), r); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

func (h *Handler) DeleteMaintenance(c *gin.Context) {
	if err := h.store.DeleteMaintenanceRecord(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetMaintenanceAlerts returns the alert list together with fleet stats,
// both computed from one snapshot.
func (h *Handler) GetMaintenanceAlerts(c *gin.Context) {
	snap, err := h.store.Snapshot(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, maintenance.BuildReport(snap.Aircraft, snap.MaintenanceRecords, h.now(), h.loc))
}
