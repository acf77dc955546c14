package maintenance

import (
	"time"

	"pilot-logbook-backend/internal/calendar"
	"pilot-logbook-backend/internal/model"
)

// DueSoonDays is the horizon for counting DUE checks as "due soon".
const DueSoonDays = 30

// FleetStats is the fleet manager's dashboard summary.
type FleetStats struct {
	TotalAircraft    int     `json:"totalAircraft"`
	AirworthyCount   int     `json:"airworthyCount"`
	GroundedCount    int     `json:"groundedCount"`
	MaintenanceCount int     `json:"maintenanceCount"`
	OverdueChecks    int     `json:"overdueChecks"`
	DueSoonChecks    int     `json:"dueSoonChecks"`
	TotalFleetHours  float64 `json:"totalFleetHours"`
}

// ComputeFleetStats counts aircraft by status and checks by due state.
// DUE records without a next-due date are never due soon; DUE records whose
// date has already passed are.
func ComputeFleetStats(aircraft []model.Aircraft, records []model.MaintenanceRecord, now time.Time, loc *time.Location) FleetStats {
	stats := FleetStats{TotalAircraft: len(aircraft)}

	var hours float64
	for _, ac := range aircraft {
		switch ac.Status {
		case model.StatusAirworthy:
			stats.AirworthyCount++
		case model.StatusGrounded:
			stats.GroundedCount++
		case model.StatusMaintenance:
			stats.MaintenanceCount++
		}
		hours += ac.TotalAirframeHours
	}
	stats.TotalFleetHours = calendar.Round1(hours)

	for _, r := range records {
		switch r.Status {
		case model.MaintenanceOverdue:
			stats.OverdueChecks++
		case model.MaintenanceDue:
			if r.NextDueDate != nil && calendar.DaysUntil(*r.NextDueDate, now, loc) <= DueSoonDays {
				stats.DueSoonChecks++
			}
		}
	}
	return stats
}
