package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"pilot-logbook-backend/internal/logbook"
	"pilot-logbook-backend/internal/model"
	"pilot-logbook-backend/internal/mw"
	"pilot-logbook-backend/internal/parse"
)

type flightLogRequest struct {
	PilotID          string                 `json:"pilotId"`
	AircraftID       string                 `json:"aircraftId" binding:"required"`
	Date             model.Date             `json:"date"`
	DepartureAirport string                 `json:"departureAirport" binding:"required"`
	ArrivalAirport   string                 `json:"arrivalAirport" binding:"required"`
	TotalFlightTime  float64                `json:"totalFlightTime"`
	PICTime          float64                `json:"picTime"`
	SICTime          float64                `json:"sicTime"`
	DualReceivedTime float64                `json:"dualReceivedTime"`
	SoloTime         float64                `json:"soloTime"`
	NightTime        float64                `json:"nightTime"`
	IFRTime          float64                `json:"ifrTime"`
	CrossCountryTime float64                `json:"crossCountryTime"`
	DayLandings      int                    `json:"dayLandings" binding:"gte=0"`
	NightLandings    int                    `json:"nightLandings" binding:"gte=0"`
	WeatherCondition model.WeatherCondition `json:"weatherCondition"`
	FlightRule       model.FlightRule       `json:"flightRule"`
	Remarks          string                 `json:"remarks"`
	ApproachTypes    []string               `json:"approachTypes"`
	SimulatorTime    *float64               `json:"simulatorTime" binding:"omitempty,gte=0"`
}

// validateHours rejects negative hours and any category exceeding the total.
func (r flightLogRequest) validateHours() error {
	if r.TotalFlightTime <= 0 {
		return errors.New("totalFlightTime must be positive")
	}
	categories := []struct {
		name  string
		value float64
	}{
		{"picTime", r.PICTime},
		{"sicTime", r.SICTime},
		{"dualReceivedTime", r.DualReceivedTime},
		{"soloTime", r.SoloTime},
		{"nightTime", r.NightTime},
		{"ifrTime", r.IFRTime},
		{"crossCountryTime", r.CrossCountryTime},
	}
	for _, cat := range categories {
		if cat.value < 0 {
			return fmt.Errorf("%s must not be negative", cat.name)
		}
		if cat.value > r.TotalFlightTime {
			return fmt.Errorf("%s (%.1f) exceeds totalFlightTime (%.1f)", cat.name, cat.value, r.TotalFlightTime)
		}
	}
	return nil
}

func (r flightLogRequest) toModel(id string) (*model.FlightLogEntry, error) {
	if r.Date.IsZero() {
		return nil, errors.New("date is required")
	}
	dep, err := parse.Airport(r.DepartureAirport)
	if err != nil {
		return nil, err
	}
	arr, err := parse.Airport(r.ArrivalAirport)
	if err != nil {
		return nil, err
	}
	if err := r.validateHours(); err != nil {
		return nil, err
	}

	weather := r.WeatherCondition
	if weather == "" {
		weather = model.WeatherVMC
	}
	if weather != model.WeatherVMC && weather != model.WeatherIMC {
		return nil, fmt.Errorf("unknown weather condition %q", weather)
	}
	rule := r.FlightRule
	if rule == "" {
		rule = model.RuleVFR
	}
	if rule != model.RuleVFR && rule != model.RuleIFR {
		return nil, fmt.Errorf("unknown flight rule %q", rule)
	}

	return &model.FlightLogEntry{
		ID:               id,
		PilotID:          r.PilotID,
		AircraftID:       r.AircraftID,
		Date:             r.Date,
		DepartureAirport: dep,
		ArrivalAirport:   arr,
		TotalFlightTime:  r.TotalFlightTime,
		PICTime:          r.PICTime,
		SICTime:          r.SICTime,
		DualReceivedTime: r.DualReceivedTime,
		SoloTime:         r.SoloTime,
		NightTime:        r.NightTime,
		IFRTime:          r.IFRTime,
		CrossCountryTime: r.CrossCountryTime,
		DayLandings:      r.DayLandings,
		NightLandings:    r.NightLandings,
		WeatherCondition: weather,
		FlightRule:       rule,
		Remarks:          r.Remarks,
		ApproachTypes:    r.ApproachTypes,
		SimulatorTime:    r.SimulatorTime,
	}, nil
}

// ListFlights returns all flight logs, or one pilot's logs newest first when
// pilotId is given.
func (h *Handler) ListFlights(c *gin.Context) {
	logs, err := h.store.ListFlightLogs(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	if id := c.Query("pilotId"); id != "" {
		logs = logbook.LogsForPilot(logs, id)
	}
	c.JSON(http.StatusOK, nonNil(logs))
}

func (h *Handler) GetFlight(c *gin.Context) {
	entry, err := h.store.GetFlightLog(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

// CreateFlight logs a flight. A pilot acting for themself may omit pilotId;
// only an admin may log a flight for someone else.
func (h *Handler) CreateFlight(c *gin.Context) {
	var req flightLogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	if user, ok := mw.CurrentUser(c); ok {
		if req.PilotID == "" {
			req.PilotID = user.ID
		}
		if req.PilotID != user.ID && user.Role != model.RoleAdmin {
			c.JSON(http.StatusForbidden, gin.H{"error": "pilots may only log their own flights"})
			return
		}
	}
	if req.PilotID == "" {
		badRequest(c, errors.New("pilotId is required"))
		return
	}

	entry, err := req.toModel("")
	if err != nil {
		badRequest(c, err)
		return
	}
	if err := h.store.CreateFlightLog(c.Request.Context(), entry); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}

func (h *Handler) UpdateFlight(c *gin.Context) {
	var req flightLogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	entry, err := req.toModel(c.Param("id"))
	if err != nil {
		badRequest(c, err)
		return
	}
	if !h.ownsFlight(c, entry.ID) {
		return
	}
	if err := h.store.UpdateFlightLog(c.Request.Context(), entry); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

func (h *Handler) DeleteFlight(c *gin.Context) {
	if !h.ownsFlight(c, c.Param("id")) {
		return
	}
	if err := h.store.DeleteFlightLog(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ownsFlight writes an error response and reports false when the acting
// pilot may not modify the entry.
func (h *Handler) ownsFlight(c *gin.Context, id string) bool {
	user, ok := mw.CurrentUser(c)
	if !ok || user.Role == model.RoleAdmin {
		return true
	}
	existing, err := h.store.GetFlightLog(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return false
	}
	if existing.PilotID != user.ID {
		c.JSON(http.StatusForbidden, gin.H{"error": "pilots may only modify their own flights"})
		return false
	}
	return true
}

// GetFlightStats returns a pilot's totals, the trailing six months and hours
// by aircraft model.
func (h *Handler) GetFlightStats(c *gin.Context) {
	pilotID := c.Query("pilotId")
	if pilotID == "" {
		badRequest(c, errors.New("pilotId is required"))
		return
	}
	if _, err := h.store.GetUser(c.Request.Context(), pilotID); err != nil {
		respondError(c, err)
		return
	}

	logs, err := h.store.ListFlightLogs(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	now := h.now()
	c.JSON(http.StatusOK, gin.H{
		"stats":      logbook.CalculatePilotStats(logs, pilotID, now, h.loc),
		"monthly":    logbook.MonthlyFlightData(logs, pilotID, now, h.loc),
		"byCategory": logbook.HoursByCategory(logs, pilotID),
	})
}
