package model

import "time"

// AircraftCategory classifies an aircraft for logbook purposes.
type AircraftCategory string

const (
	CategorySingleEngineLand AircraftCategory = "SINGLE_ENGINE_LAND"
	CategoryMultiEngineLand  AircraftCategory = "MULTI_ENGINE_LAND"
	CategorySingleEngineSea  AircraftCategory = "SINGLE_ENGINE_SEA"
	CategoryMultiEngineSea   AircraftCategory = "MULTI_ENGINE_SEA"
	CategoryHelicopter       AircraftCategory = "HELICOPTER"
	CategoryGlider           AircraftCategory = "GLIDER"
	CategoryTurboprop        AircraftCategory = "TURBOPROP"
	CategoryJet              AircraftCategory = "JET"
)

var categoryLabels = map[AircraftCategory]string{
	CategorySingleEngineLand: "Single Engine Land",
	CategoryMultiEngineLand:  "Multi Engine Land",
	CategorySingleEngineSea:  "Single Engine Sea",
	CategoryMultiEngineSea:   "Multi Engine Sea",
	CategoryHelicopter:       "Helicopter",
	CategoryGlider:           "Glider",
	CategoryTurboprop:        "Turboprop",
	CategoryJet:              "Jet",
}

// Valid reports whether c is a known category.
func (c AircraftCategory) Valid() bool {
	_, ok := categoryLabels[c]
	return ok
}

// Label returns the human readable name of the category.
func (c AircraftCategory) Label() string {
	if l, ok := categoryLabels[c]; ok {
		return l
	}
	return string(c)
}

// AircraftStatus is the operational state of an aircraft.
type AircraftStatus string

const (
	StatusAirworthy   AircraftStatus = "AIRWORTHY"
	StatusGrounded    AircraftStatus = "GROUNDED"
	StatusMaintenance AircraftStatus = "MAINTENANCE"
)

// Valid reports whether s is a known status.
func (s AircraftStatus) Valid() bool {
	switch s {
	case StatusAirworthy, StatusGrounded, StatusMaintenance:
		return true
	}
	return false
}

// Aircraft is a fleet aircraft. Subtype attributes (RotorDiameter) are optional
// fields on the flat record.
type Aircraft struct {
	ID                 string           `gorm:"primaryKey;size:36" json:"id"`
	TailNumber         string           `gorm:"uniqueIndex;size:16;not null" json:"tailNumber"`
	Make               string           `gorm:"size:64;not null" json:"make"`
	Model              string           `gorm:"size:64;not null" json:"model"`
	Year               int              `json:"year"`
	Category           AircraftCategory `gorm:"size:32;not null" json:"category"`
	TotalAirframeHours float64          `gorm:"not null" json:"totalAirframeHours"`
	Status             AircraftStatus   `gorm:"size:16;not null;index" json:"status"`
	EngineCount        int              `json:"engineCount"`
	MaxPassengers      int              `json:"maxPassengers"`
	OwnerID            *string          `gorm:"size:36" json:"ownerId,omitempty"`
	ImageURL           string           `gorm:"size:512" json:"imageUrl,omitempty"`
	RotorDiameter      *float64         `json:"rotorDiameter,omitempty"`
	CreatedAt          time.Time        `json:"createdAt"`
	UpdatedAt          time.Time        `json:"updatedAt"`
}

// TableName keeps the table name singular; "aircraft" is its own plural.
func (Aircraft) TableName() string {
	return "aircraft"
}
