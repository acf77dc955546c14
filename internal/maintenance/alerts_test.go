package maintenance

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pilot-logbook-backend/internal/model"
)

var testNow = time.Date(2026, 10, 17, 14, 30, 0, 0, time.UTC)

func dueIn(days int) *model.Date {
	d := model.DateOf(testNow.AddDate(0, 0, days))
	return &d
}

func hoursPtr(h float64) *float64 {
	return &h
}

func testFleet() []model.Aircraft {
	return []model.Aircraft{
		{ID: "ac-1", TailNumber: "N172SP", TotalAirframeHours: 1243.5, Status: model.StatusAirworthy},
		{ID: "ac-2", TailNumber: "N4521K", TotalAirframeHours: 3120.2, Status: model.StatusAirworthy},
		{ID: "ac-3", TailNumber: "N88BK", TotalAirframeHours: 410.0, Status: model.StatusGrounded},
	}
}

func TestComputeAlerts_HourRuleFiresBeforeDayRule(t *testing.T) {
	records := []model.MaintenanceRecord{
		{ID: "mr-1", AircraftID: "ac-1", CheckType: model.CheckHundredHour, Status: model.MaintenanceDue,
			NextDueHours: hoursPtr(1248.5), NextDueDate: dueIn(10)},
	}

	alerts := ComputeAlerts(records, testFleet(), testNow, time.UTC)

	require.Len(t, alerts, 1)
	assert.Equal(t, Alert{
		RecordID:      "mr-1",
		AircraftID:    "ac-1",
		TailNumber:    "N172SP",
		CheckType:     model.CheckHundredHour,
		Status:        model.MaintenanceDue,
		DaysUntilDue:  10,
		HoursUntilDue: 5.0,
		Urgency:       UrgencyCritical,
	}, alerts[0])
}

func TestComputeAlerts_Sentinels(t *testing.T) {
	records := []model.MaintenanceRecord{
		{ID: "no-deadlines", AircraftID: "ac-1", Status: model.MaintenanceDue},
		{ID: "hours-only", AircraftID: "ac-1", Status: model.MaintenanceDue, NextDueHours: hoursPtr(1263.5)},
		{ID: "date-only", AircraftID: "ac-1", Status: model.MaintenanceDue, NextDueDate: dueIn(60)},
	}

	alerts := ComputeAlerts(records, testFleet(), testNow, time.UTC)
	require.Len(t, alerts, 3)

	byID := make(map[string]Alert)
	for _, a := range alerts {
		byID[a.RecordID] = a
	}

	assert.Equal(t, NoDueDate, byID["no-deadlines"].DaysUntilDue)
	assert.Equal(t, NoDueHours, byID["no-deadlines"].HoursUntilDue)
	assert.Equal(t, UrgencyCritical, byID["no-deadlines"].Urgency)

	// An undated check reads as past due however many hours remain.
	assert.Equal(t, NoDueDate, byID["hours-only"].DaysUntilDue)
	assert.Equal(t, 20.0, byID["hours-only"].HoursUntilDue)
	assert.Equal(t, UrgencyCritical, byID["hours-only"].Urgency)

	assert.Equal(t, 60, byID["date-only"].DaysUntilDue)
	assert.Equal(t, NoDueHours, byID["date-only"].HoursUntilDue)
	assert.Equal(t, UrgencyInfo, byID["date-only"].Urgency)
}

func TestComputeAlerts_DayThresholds(t *testing.T) {
	testCases := []struct {
		days     int
		expected Urgency
	}{
		{days: -1, expected: UrgencyCritical},
		{days: 0, expected: UrgencyCritical},
		{days: 7, expected: UrgencyCritical},
		{days: 8, expected: UrgencyWarning},
		{days: 30, expected: UrgencyWarning},
		{days: 31, expected: UrgencyInfo},
	}

	for _, tc := range testCases {
		t.Run(fmt.Sprintf("%d days", tc.days), func(t *testing.T) {
			records := []model.MaintenanceRecord{
				{ID: "mr", AircraftID: "ac-2", Status: model.MaintenanceDue, NextDueDate: dueIn(tc.days)},
			}
			alerts := ComputeAlerts(records, testFleet(), testNow, time.UTC)
			require.Len(t, alerts, 1)
			assert.Equal(t, tc.days, alerts[0].DaysUntilDue)
			assert.Equal(t, tc.expected, alerts[0].Urgency)
		})
	}
}

func TestComputeAlerts_HourThresholds(t *testing.T) {
	testCases := []struct {
		remaining float64
		expected  Urgency
	}{
		{remaining: -0.1, expected: UrgencyCritical},
		{remaining: 5.0, expected: UrgencyCritical},
		{remaining: 5.1, expected: UrgencyWarning},
		{remaining: 25.0, expected: UrgencyWarning},
		{remaining: 25.1, expected: UrgencyInfo},
	}

	for _, tc := range testCases {
		t.Run(fmt.Sprintf("%.1f hours", tc.remaining), func(t *testing.T) {
			// ac-3 sits at a round 410.0 hours so the subtraction is exact after rounding.
			records := []model.MaintenanceRecord{
				{ID: "mr", AircraftID: "ac-3", Status: model.MaintenanceInProgress, NextDueDate: dueIn(90), NextDueHours: hoursPtr(410.0 + tc.remaining)},
			}
			alerts := ComputeAlerts(records, testFleet(), testNow, time.UTC)
			require.Len(t, alerts, 1)
			assert.Equal(t, tc.remaining, alerts[0].HoursUntilDue)
			assert.Equal(t, tc.expected, alerts[0].Urgency)
		})
	}
}

func TestComputeAlerts_OverdueIsAlwaysCritical(t *testing.T) {
	records := []model.MaintenanceRecord{
		{ID: "mr", AircraftID: "ac-2", Status: model.MaintenanceOverdue, NextDueDate: dueIn(300), NextDueHours: hoursPtr(9000)},
		{ID: "mr-no-deadline", AircraftID: "ac-2", Status: model.MaintenanceOverdue},
	}

	alerts := ComputeAlerts(records, testFleet(), testNow, time.UTC)

	require.Len(t, alerts, 2)
	for _, a := range alerts {
		assert.Equal(t, UrgencyCritical, a.Urgency)
	}
}

func TestComputeAlerts_Eligibility(t *testing.T) {
	records := []model.MaintenanceRecord{
		{ID: "completed", AircraftID: "ac-1", Status: model.MaintenanceCompleted, NextDueDate: dueIn(-3)},
		{ID: "orphan", AircraftID: "ac-gone", Status: model.MaintenanceOverdue},
		{ID: "due", AircraftID: "ac-1", Status: model.MaintenanceDue},
		{ID: "in-progress", AircraftID: "ac-2", Status: model.MaintenanceInProgress},
		{ID: "overdue", AircraftID: "ac-3", Status: model.MaintenanceOverdue},
	}

	alerts := ComputeAlerts(records, testFleet(), testNow, time.UTC)

	ids := make([]string, len(alerts))
	for i, a := range alerts {
		ids[i] = a.RecordID
		assert.NotEqual(t, model.MaintenanceCompleted, a.Status)
	}
	assert.ElementsMatch(t, []string{"due", "in-progress", "overdue"}, ids)
}

func TestComputeAlerts_SortedStably(t *testing.T) {
	records := []model.MaintenanceRecord{
		{ID: "info-1", AircraftID: "ac-1", Status: model.MaintenanceDue, NextDueDate: dueIn(90)},
		{ID: "critical-1", AircraftID: "ac-1", Status: model.MaintenanceOverdue},
		{ID: "warning-1", AircraftID: "ac-2", Status: model.MaintenanceDue, NextDueDate: dueIn(20)},
		{ID: "info-2", AircraftID: "ac-2", Status: model.MaintenanceDue, NextDueDate: dueIn(120)},
		{ID: "critical-2", AircraftID: "ac-3", Status: model.MaintenanceDue, NextDueDate: dueIn(2)},
		{ID: "warning-2", AircraftID: "ac-3", Status: model.MaintenanceInProgress, NextDueDate: dueIn(60), NextDueHours: hoursPtr(430)},
	}

	alerts := ComputeAlerts(records, testFleet(), testNow, time.UTC)

	ids := make([]string, len(alerts))
	for i, a := range alerts {
		ids[i] = a.RecordID
		if i > 0 {
			assert.LessOrEqual(t, alerts[i-1].Urgency.Rank(), a.Urgency.Rank())
		}
	}
	assert.Equal(t, []string{"critical-1", "critical-2", "warning-1", "warning-2", "info-1", "info-2"}, ids)
}

func TestComputeAlerts_Empty(t *testing.T) {
	alerts := ComputeAlerts(nil, nil, testNow, time.UTC)
	assert.NotNil(t, alerts)
	assert.Empty(t, alerts)
}

func TestClassify(t *testing.T) {
	assert.Equal(t, UrgencyCritical, Classify(model.MaintenanceOverdue, NoDueDate, NoDueHours))
	assert.Equal(t, UrgencyCritical, Classify(model.MaintenanceDue, NoDueDate, NoDueHours))
	assert.Equal(t, UrgencyCritical, Classify(model.MaintenanceInProgress, NoDueDate, 400))
	assert.Equal(t, UrgencyInfo, Classify(model.MaintenanceDue, 45, NoDueHours))
	assert.Equal(t, UrgencyCritical, Classify(model.MaintenanceDue, 7, NoDueHours))
	assert.Equal(t, UrgencyWarning, Classify(model.MaintenanceDue, 8, NoDueHours))
	assert.Equal(t, UrgencyInfo, Classify(model.MaintenanceDue, 31, 25.5))
	assert.Equal(t, UrgencyCritical, Classify(model.MaintenanceDue, 31, -2))
}

func TestClassify_MatchesComputeAlerts(t *testing.T) {
	records := []model.MaintenanceRecord{
		{ID: "undated", AircraftID: "ac-1", Status: model.MaintenanceDue},
		{ID: "undated-hours", AircraftID: "ac-3", Status: model.MaintenanceInProgress, NextDueHours: hoursPtr(810)},
		{ID: "far-past", AircraftID: "ac-1", Status: model.MaintenanceDue, NextDueDate: dueIn(-999)},
		{ID: "past", AircraftID: "ac-2", Status: model.MaintenanceDue, NextDueDate: dueIn(-1)},
		{ID: "soon", AircraftID: "ac-2", Status: model.MaintenanceDue, NextDueDate: dueIn(12)},
		{ID: "later", AircraftID: "ac-2", Status: model.MaintenanceDue, NextDueDate: dueIn(45), NextDueHours: hoursPtr(3200)},
		{ID: "hours-close", AircraftID: "ac-3", Status: model.MaintenanceDue, NextDueDate: dueIn(45), NextDueHours: hoursPtr(413)},
		{ID: "overdue", AircraftID: "ac-3", Status: model.MaintenanceOverdue, NextDueDate: dueIn(200)},
	}

	alerts := ComputeAlerts(records, testFleet(), testNow, time.UTC)
	require.Len(t, alerts, len(records))

	for _, a := range alerts {
		assert.Equal(t, a.Urgency, Classify(a.Status, a.DaysUntilDue, a.HoursUntilDue), a.RecordID)
	}
}

func TestRecordsForAircraft(t *testing.T) {
	records := []model.MaintenanceRecord{
		{ID: "a", AircraftID: "ac-1", ScheduledDate: model.NewDate(2025, 3, 1)},
		{ID: "b", AircraftID: "ac-2", ScheduledDate: model.NewDate(2026, 1, 1)},
		{ID: "c", AircraftID: "ac-1", ScheduledDate: model.NewDate(2026, 6, 1)},
	}

	result := RecordsForAircraft(records, "ac-1")

	require.Len(t, result, 2)
	assert.Equal(t, "c", result[0].ID)
	assert.Equal(t, "a", result[1].ID)
	assert.Empty(t, RecordsForAircraft(records, "ac-9"))
}
