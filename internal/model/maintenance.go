package model

import "time"

// CheckType is the kind of maintenance check.
type CheckType string

const (
	CheckAnnual       CheckType = "ANNUAL"
	CheckHundredHour  CheckType = "HUNDRED_HOUR"
	CheckFiftyHour    CheckType = "FIFTY_HOUR"
	CheckPhase        CheckType = "PHASE"
	CheckUnscheduled  CheckType = "UNSCHEDULED"
	CheckADCompliance CheckType = "AD_COMPLIANCE"
)

var checkTypeLabels = map[CheckType]string{
	CheckAnnual:       "Annual Inspection",
	CheckHundredHour:  "100-Hour Inspection",
	CheckFiftyHour:    "50-Hour Inspection",
	CheckPhase:        "Phase Check",
	CheckUnscheduled:  "Unscheduled",
	CheckADCompliance: "AD Compliance",
}

// Valid reports whether c is a known check type.
func (c CheckType) Valid() bool {
	_, ok := checkTypeLabels[c]
	return ok
}

// Label returns the human readable name of the check type.
func (c CheckType) Label() string {
	if l, ok := checkTypeLabels[c]; ok {
		return l
	}
	return string(c)
}

// MaintenanceStatus is the manually managed lifecycle state of a record.
type MaintenanceStatus string

const (
	MaintenanceDue        MaintenanceStatus = "DUE"
	MaintenanceOverdue    MaintenanceStatus = "OVERDUE"
	MaintenanceInProgress MaintenanceStatus = "IN_PROGRESS"
	MaintenanceCompleted  MaintenanceStatus = "COMPLETED"
)

// Valid reports whether s is a known status.
func (s MaintenanceStatus) Valid() bool {
	switch s {
	case MaintenanceDue, MaintenanceOverdue, MaintenanceInProgress, MaintenanceCompleted:
		return true
	}
	return false
}

// Pending reports whether the record still needs work.
func (s MaintenanceStatus) Pending() bool {
	return s == MaintenanceDue || s == MaintenanceOverdue || s == MaintenanceInProgress
}

// MaintenanceRecord is a scheduled or completed check on one aircraft.
type MaintenanceRecord struct {
	ID                 string            `gorm:"primaryKey;size:36" json:"id"`
	AircraftID         string            `gorm:"size:36;not null;index" json:"aircraftId"`
	AircraftTailNumber string            `gorm:"size:16" json:"aircraftTailNumber"`
	CheckType          CheckType         `gorm:"size:32;not null" json:"checkType"`
	Status             MaintenanceStatus `gorm:"size:16;not null;index" json:"status"`
	ScheduledDate      Date              `gorm:"not null" json:"scheduledDate"`
	CompletedDate      *Date             `json:"completedDate,omitempty"`
	HoursAtCheck       float64           `json:"hoursAtCheck"`
	NextDueHours       *float64          `json:"nextDueHours,omitempty"`
	NextDueDate        *Date             `json:"nextDueDate,omitempty"`
	Technician         string            `gorm:"size:128" json:"technician,omitempty"`
	Squawks            string            `json:"squawks,omitempty"`
	Cost               *float64          `json:"cost,omitempty"`
	Notes              string            `json:"notes,omitempty"`
	CreatedAt          time.Time         `json:"createdAt"`
	UpdatedAt          time.Time         `json:"updatedAt"`
}
