// Package maintenance derives alert urgencies and fleet-wide counts from
// maintenance records. Urgency is always recomputed from the records and the
// current time and is never stored.
package maintenance

import (
	"sort"
	"time"

	"pilot-logbook-backend/internal/calendar"
	"pilot-logbook-backend/internal/model"
)

// Sentinels reported when a record has no calendar or no hour deadline. A
// missing date reads as past due; missing hours never meet an hour threshold.
const (
	NoDueDate  = -999
	NoDueHours = 999.0
)

// Alert thresholds.
const (
	CriticalDays  = 7
	WarningDays   = 30
	CriticalHours = 5.0
	WarningHours  = 25.0
)

// Urgency is the derived classification of a pending check.
type Urgency string

const (
	UrgencyCritical Urgency = "CRITICAL"
	UrgencyWarning  Urgency = "WARNING"
	UrgencyInfo     Urgency = "INFO"
)

// Rank orders urgencies, most urgent first.
func (u Urgency) Rank() int {
	switch u {
	case UrgencyCritical:
		return 0
	case UrgencyWarning:
		return 1
	default:
		return 2
	}
}

// Alert is the computed view of one pending maintenance record.
type Alert struct {
	RecordID      string                  `json:"recordId"`
	AircraftID    string                  `json:"aircraftId"`
	TailNumber    string                  `json:"tailNumber"`
	CheckType     model.CheckType         `json:"checkType"`
	Status        model.MaintenanceStatus `json:"status"`
	DaysUntilDue  int                     `json:"daysUntilDue"`
	HoursUntilDue float64                 `json:"hoursUntilDue"`
	Urgency       Urgency                 `json:"urgency"`
}

// ComputeAlerts produces one alert per pending record (DUE, OVERDUE or
// IN_PROGRESS), most urgent first. Records whose aircraft is missing are
// skipped. Alerts of equal urgency keep their input order.
func ComputeAlerts(records []model.MaintenanceRecord, aircraft []model.Aircraft, now time.Time, loc *time.Location) []Alert {
	byID := make(map[string]model.Aircraft, len(aircraft))
	for _, ac := range aircraft {
		byID[ac.ID] = ac
	}

	alerts := []Alert{}
	for _, r := range records {
		if !r.Status.Pending() {
			continue
		}
		ac, ok := byID[r.AircraftID]
		if !ok {
			continue
		}

		days := NoDueDate
		if r.NextDueDate != nil {
			days = calendar.DaysUntil(*r.NextDueDate, now, loc)
		}
		hours := NoDueHours
		if r.NextDueHours != nil {
			hours = calendar.Round1(*r.NextDueHours - ac.TotalAirframeHours)
		}

		alerts = append(alerts, Alert{
			RecordID:      r.ID,
			AircraftID:    ac.ID,
			TailNumber:    ac.TailNumber,
			CheckType:     r.CheckType,
			Status:        r.Status,
			DaysUntilDue:  days,
			HoursUntilDue: hours,
			Urgency:       Classify(r.Status, days, hours),
		})
	}

	sort.SliceStable(alerts, func(i, j int) bool {
		return alerts[i].Urgency.Rank() < alerts[j].Urgency.Rank()
	})
	return alerts
}

// Classify applies the urgency rules in precedence order to the reported
// values, sentinels included.
func Classify(status model.MaintenanceStatus, daysUntilDue int, hoursUntilDue float64) Urgency {
	switch {
	case status == model.MaintenanceOverdue || daysUntilDue < 0 || hoursUntilDue < 0:
		return UrgencyCritical
	case daysUntilDue <= CriticalDays || hoursUntilDue <= CriticalHours:
		return UrgencyCritical
	case daysUntilDue <= WarningDays || hoursUntilDue <= WarningHours:
		return UrgencyWarning
	default:
		return UrgencyInfo
	}
}

// RecordsForAircraft returns the records of one aircraft, latest scheduled
// date first.
func RecordsForAircraft(records []model.MaintenanceRecord, aircraftID string) []model.MaintenanceRecord {
	result := []model.MaintenanceRecord{}
	for _, r := range records {
		if r.AircraftID == aircraftID {
			result = append(result, r)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].ScheduledDate.After(result[j].ScheduledDate.Time)
	})
	return result
}
