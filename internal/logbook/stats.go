// Package logbook aggregates a pilot's flight log entries into totals,
// recency windows, monthly trends and per-model hour distributions.
package logbook

import (
	"sort"
	"time"

	"pilot-logbook-backend/internal/calendar"
	"pilot-logbook-backend/internal/model"
)

const (
	trendMonths  = 6
	unknownModel = "Unknown"
)

// Recency windows in days.
const (
	window30Days  = 30
	window90Days  = 90
	window365Days = 365
)

// PilotFlightStats summarises all flights of one pilot.
type PilotFlightStats struct {
	TotalTime          float64            `json:"totalTime"`
	PICTime            float64            `json:"picTime"`
	SICTime            float64            `json:"sicTime"`
	NightTime          float64            `json:"nightTime"`
	IFRTime            float64            `json:"ifrTime"`
	CrossCountryTime   float64            `json:"crossCountryTime"`
	DualReceived       float64            `json:"dualReceived"`
	SoloTime           float64            `json:"soloTime"`
	TotalLandings      int                `json:"totalLandings"`
	NightLandings      int                `json:"nightLandings"`
	Last30Days         float64            `json:"last30Days"`
	Last90Days         float64            `json:"last90Days"`
	LastYear           float64            `json:"lastYear"`
	ByAircraftCategory map[string]float64 `json:"byAircraftCategory"`
}

// MonthlyHours is one bucket of the monthly trend.
type MonthlyHours struct {
	Month     string  `json:"month"`
	TotalTime float64 `json:"totalTime"`
	IFRTime   float64 `json:"ifrTime"`
	NightTime float64 `json:"nightTime"`
}

// CategoryHours is the time flown in one aircraft model.
type CategoryHours struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// CalculatePilotStats reduces the entries of pilotID into a PilotFlightStats.
// An unknown pilot yields zero totals and an empty category map.
func CalculatePilotStats(logs []model.FlightLogEntry, pilotID string, now time.Time, loc *time.Location) PilotFlightStats {
	var stats PilotFlightStats
	var total, pic, sic, dual, solo, night, ifr, xcountry float64
	var last30, last90, lastYear float64
	byModel := make(map[string]float64)

	for _, l := range logs {
		if l.PilotID != pilotID {
			continue
		}
		total += l.TotalFlightTime
		pic += l.PICTime
		sic += l.SICTime
		dual += l.DualReceivedTime
		solo += l.SoloTime
		night += l.NightTime
		ifr += l.IFRTime
		xcountry += l.CrossCountryTime

		stats.TotalLandings += l.DayLandings + l.NightLandings
		stats.NightLandings += l.NightLandings

		if calendar.WithinLastDays(l.Date, now, window30Days, loc) {
			last30 += l.TotalFlightTime
		}
		if calendar.WithinLastDays(l.Date, now, window90Days, loc) {
			last90 += l.TotalFlightTime
		}
		if calendar.WithinLastDays(l.Date, now, window365Days, loc) {
			lastYear += l.TotalFlightTime
		}

		byModel[modelName(l)] += l.TotalFlightTime
	}

	stats.TotalTime = calendar.Round1(total)
	stats.PICTime = calendar.Round1(pic)
	stats.SICTime = calendar.Round1(sic)
	stats.DualReceived = calendar.Round1(dual)
	stats.SoloTime = calendar.Round1(solo)
	stats.NightTime = calendar.Round1(night)
	stats.IFRTime = calendar.Round1(ifr)
	stats.CrossCountryTime = calendar.Round1(xcountry)
	stats.Last30Days = calendar.Round1(last30)
	stats.Last90Days = calendar.Round1(last90)
	stats.LastYear = calendar.Round1(lastYear)

	for k, v := range byModel {
		byModel[k] = calendar.Round1(v)
	}
	stats.ByAircraftCategory = byModel

	return stats
}

// MonthlyFlightData returns exactly six buckets for the trailing six calendar
// months, oldest first. Months without flights report zero.
func MonthlyFlightData(logs []model.FlightLogEntry, pilotID string, now time.Time, loc *time.Location) []MonthlyHours {
	months := calendar.TrailingMonths(now, trendMonths, loc)

	buckets := make([]MonthlyHours, len(months))
	index := make(map[string]int, len(months))
	for i, m := range months {
		buckets[i] = MonthlyHours{Month: m.Label}
		index[m.Key] = i
	}

	for _, l := range logs {
		if l.PilotID != pilotID {
			continue
		}
		i, ok := index[l.Date.YearMonth()]
		if !ok {
			continue
		}
		buckets[i].TotalTime += l.TotalFlightTime
		buckets[i].IFRTime += l.IFRTime
		buckets[i].NightTime += l.NightTime
	}

	for i := range buckets {
		buckets[i].TotalTime = calendar.Round1(buckets[i].TotalTime)
		buckets[i].IFRTime = calendar.Round1(buckets[i].IFRTime)
		buckets[i].NightTime = calendar.Round1(buckets[i].NightTime)
	}
	return buckets
}

// HoursByCategory groups the pilot's time by aircraft model in order of first
// appearance.
func HoursByCategory(logs []model.FlightLogEntry, pilotID string) []CategoryHours {
	result := []CategoryHours{}
	index := make(map[string]int)

	for _, l := range logs {
		if l.PilotID != pilotID {
			continue
		}
		name := modelName(l)
		i, ok := index[name]
		if !ok {
			i = len(result)
			index[name] = i
			result = append(result, CategoryHours{Name: name})
		}
		result[i].Value += l.TotalFlightTime
	}

	for i := range result {
		result[i].Value = calendar.Round1(result[i].Value)
	}
	return result
}

// LogsForPilot returns the pilot's entries, newest date first. The input slice
// is not modified.
func LogsForPilot(logs []model.FlightLogEntry, pilotID string) []model.FlightLogEntry {
	result := []model.FlightLogEntry{}
	for _, l := range logs {
		if l.PilotID == pilotID {
			result = append(result, l)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Date.After(result[j].Date.Time)
	})
	return result
}

func modelName(l model.FlightLogEntry) string {
	if l.AircraftModel == "" {
		return unknownModel
	}
	return l.AircraftModel
}
