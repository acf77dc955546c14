package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"pilot-logbook-backend/internal/maintenance"
	"pilot-logbook-backend/internal/model"
	"pilot-logbook-backend/internal/parse"
)

type aircraftRequest struct {
	TailNumber         string                 `json:"tailNumber" binding:"required"`
	Make               string                 `json:"make" binding:"required"`
	Model              string                 `json:"model" binding:"required"`
	Year               int                    `json:"year" binding:"omitempty,gte=1900,lte=2100"`
	Category           model.AircraftCategory `json:"category" binding:"required"`
	TotalAirframeHours float64                `json:"totalAirframeHours" binding:"gte=0"`
	Status             model.AircraftStatus   `json:"status"`
	EngineCount        int                    `json:"engineCount" binding:"gte=0"`
	MaxPassengers      int                    `json:"maxPassengers" binding:"gte=0"`
	OwnerID            *string                `json:"ownerId"`
	ImageURL           string                 `json:"imageUrl"`
	RotorDiameter      *float64               `json:"rotorDiameter" binding:"omitempty,gt=0"`
}

func (r aircraftRequest) toModel(id string) (*model.Aircraft, error) {
	tail, err := parse.TailNumber(r.TailNumber)
	if err != nil {
		return nil, err
	}
	if !r.Category.Valid() {
		return nil, fmt.Errorf("unknown aircraft category %q", r.Category)
	}
	status := r.Status
	if status == "" {
		status = model.StatusAirworthy
	}
	if !status.Valid() {
		return nil, fmt.Errorf("unknown aircraft status %q", status)
	}
	if r.RotorDiameter != nil && r.Category != model.CategoryHelicopter {
		return nil, fmt.Errorf("rotorDiameter only applies to helicopters")
	}
	return &model.Aircraft{
		ID:                 id,
		TailNumber:         tail,
		Make:               r.Make,
		Model:              r.Model,
		Year:               r.Year,
		Category:           r.Category,
		TotalAirframeHours: r.TotalAirframeHours,
		Status:             status,
		EngineCount:        r.EngineCount,
		MaxPassengers:      r.MaxPassengers,
		OwnerID:            r.OwnerID,
		ImageURL:           r.ImageURL,
		RotorDiameter:      r.RotorDiameter,
	}, nil
}

// ListAircraft returns the whole fleet ordered by tail number.
func (h *Handler) ListAircraft(c *gin.Context) {
	list, err := h.store.ListAircraft(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, nonNil(list))
}

func (h *Handler) GetAircraft(c *gin.Context) {
	ac, err := h.store.GetAircraft(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ac)
}

func (h *Handler) CreateAircraft(c *gin.Context) {
	var req aircraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	ac, err := req.toModel("")
	if err != nil {
		badRequest(c, err)
		return
	}
	if err := h.store.CreateAircraft(c.Request.Context(), ac); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, ac)
}

func (h *Handler) UpdateAircraft(c *gin.Context) {
	var req aircraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	ac, err := req.toModel(c.Param("id"))
	if err != nil {
		badRequest(c, err)
		return
	}
	if err := h.store.UpdateAircraft(c.Request.Context(), ac); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ac)
}

func (h *Handler) DeleteAircraft(c *gin.Context) {
	if err := h.store.DeleteAircraft(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetFleetStats summarises the fleet by status and pending checks.
func (h *Handler) GetFleetStats(c *gin.Context) {
	snap, err := h.store.Snapshot(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, maintenance.ComputeFleetStats(snap.Aircraft, snap.MaintenanceRecords, h.now(), h.loc))
}

// GetAircraftAlerts returns the fleet's maintenance alerts, most urgent first.
func (h *Handler) GetAircraftAlerts(c *gin.Context) {
	snap, err := h.store.Snapshot(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, maintenance.ComputeAlerts(snap.MaintenanceRecords, snap.Aircraft, h.now(), h.loc))
}

// nonNil turns a nil slice into an empty one so it encodes as [].
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
