package maintenance

import (
	"time"

	"pilot-logbook-backend/internal/model"
)

// Report bundles the alert list with the fleet summary it was computed alongside.
type Report struct {
	Alerts      []Alert    `json:"alerts"`
	FleetStats  FleetStats `json:"fleetStats"`
	GeneratedAt time.Time  `json:"generatedAt"`
}

// BuildReport runs ComputeAlerts and ComputeFleetStats over the same inputs.
func BuildReport(aircraft []model.Aircraft, records []model.MaintenanceRecord, now time.Time, loc *time.Location) Report {
	return Report{
		Alerts:      ComputeAlerts(records, aircraft, now, loc),
		FleetStats:  ComputeFleetStats(aircraft, records, now, loc),
		GeneratedAt: now.UTC(),
	}
}

// Critical returns the CRITICAL alerts of the report.
func (r Report) Critical() []Alert {
	var out []Alert
	for _, a := range r.Alerts {
		if a.Urgency == UrgencyCritical {
			out = append(out, a)
		}
	}
	return out
}
