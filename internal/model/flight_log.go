package model

import "time"

// WeatherCondition is the meteorological condition a flight was flown in.
type WeatherCondition string

const (
	WeatherVMC WeatherCondition = "VMC"
	WeatherIMC WeatherCondition = "IMC"
)

// FlightRule is the rule set a flight was flown under.
type FlightRule string

const (
	RuleVFR FlightRule = "VFR"
	RuleIFR FlightRule = "IFR"
)

// FlightLogEntry is one logbook line. Entries are immutable history once
// written; tail number and model are copied from the aircraft for display.
type FlightLogEntry struct {
	ID                 string           `gorm:"primaryKey;size:36" json:"id"`
	PilotID            string           `gorm:"size:36;not null;index" json:"pilotId"`
	AircraftID         string           `gorm:"size:36;not null;index" json:"aircraftId"`
	AircraftTailNumber string           `gorm:"size:16" json:"aircraftTailNumber"`
	AircraftModel      string           `gorm:"size:64" json:"aircraftModel"`
	Date               Date             `gorm:"not null;index" json:"date"`
	DepartureAirport   string           `gorm:"size:4;not null" json:"departureAirport"`
	ArrivalAirport     string           `gorm:"size:4;not null" json:"arrivalAirport"`
	TotalFlightTime    float64          `gorm:"not null" json:"totalFlightTime"`
	PICTime            float64          `gorm:"column:pic_time" json:"picTime"`
	SICTime            float64          `gorm:"column:sic_time" json:"sicTime"`
	DualReceivedTime   float64          `json:"dualReceivedTime"`
	SoloTime           float64          `json:"soloTime"`
	NightTime          float64          `json:"nightTime"`
	IFRTime            float64          `gorm:"column:ifr_time" json:"ifrTime"`
	CrossCountryTime   float64          `json:"crossCountryTime"`
	DayLandings        int              `json:"dayLandings"`
	NightLandings      int              `json:"nightLandings"`
	WeatherCondition   WeatherCondition `gorm:"size:8" json:"weatherCondition"`
	FlightRule         FlightRule       `gorm:"size:8" json:"flightRule"`
	Remarks            string           `json:"remarks,omitempty"`
	ApproachTypes      []string         `gorm:"type:text;serializer:json" json:"approachTypes,omitempty"`
	SimulatorTime      *float64         `json:"simulatorTime,omitempty"`
	CreatedAt          time.Time        `json:"createdAt"`
	UpdatedAt          time.Time        `json:"updatedAt"`
}
