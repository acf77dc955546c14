package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"pilot-logbook-backend/config"
	"pilot-logbook-backend/internal/db"
	"pilot-logbook-backend/internal/maintenance"
	"pilot-logbook-backend/internal/model"
	"pilot-logbook-backend/internal/mw"
	"pilot-logbook-backend/internal/store"
)

var testNow = time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)

type testServer struct {
	router *gin.Engine
	store  store.Store
}

func newTestServer(t *testing.T, opts Options) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	gormDB, err := db.Init(&config.DatabaseConfig{
		Driver:   "sqlite",
		DSN:      fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()),
		LogLevel: "silent",
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := gormDB.DB(); err == nil {
			sqlDB.Close()
		}
	})

	s := store.NewGormStore(gormDB)
	opts.RateLimit = rate.Inf
	if opts.Clock == nil {
		opts.Clock = func() time.Time { return testNow }
	}
	return &testServer{router: NewRouter(s, opts), store: s}
}

func (ts *testServer) do(method, path string, body any, userID string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req, _ := http.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set(mw.UserIDHeader, userID)
	}
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

func (ts *testServer) createUser(t *testing.T, name string, role model.UserRole) *model.User {
	t.Helper()
	u := &model.User{Name: name, Email: uuid.NewString() + "@example.com", Role: role}
	require.NoError(t, ts.store.CreateUser(context.Background(), u))
	return u
}

func (ts *testServer) createAircraft(t *testing.T, tail, modelName string) *model.Aircraft {
	t.Helper()
	ac := &model.Aircraft{
		TailNumber: tail, Make: "Cessna", Model: modelName,
		Category: model.CategorySingleEngineLand, Status: model.StatusAirworthy, TotalAirframeHours: 1000,
	}
	require.NoError(t, ts.store.CreateAircraft(context.Background(), ac))
	return ac
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func aircraftBody(tail string) map[string]any {
	return map[string]any{
		"tailNumber":         tail,
		"make":               "Piper",
		"model":              "PA-28-181",
		"year":               1998,
		"category":           "SINGLE_ENGINE_LAND",
		"totalAirframeHours": 5120.4,
		"engineCount":        1,
		"maxPassengers":      3,
	}
}

func TestAircraftRoleGating(t *testing.T) {
	srv := newTestServer(t, Options{EnforceRoles: true})
	manager := srv.createUser(t, "Fleet Manager", model.RoleFleetManager)
	pilot := srv.createUser(t, "Line Pilot", model.RolePilot)

	testCases := []struct {
		name     string
		userID   string
		body     map[string]any
		wantCode int
	}{
		{"no acting user", "", aircraftBody("N4521K"), http.StatusUnauthorized},
		{"unknown acting user", "ghost", aircraftBody("N4521K"), http.StatusUnauthorized},
		{"pilot may not add aircraft", pilot.ID, aircraftBody("N4521K"), http.StatusForbidden},
		{"fleet manager adds aircraft", manager.ID, aircraftBody("n4521k"), http.StatusCreated},
		{"duplicate tail number", manager.ID, aircraftBody("N4521K"), http.StatusConflict},
		{"invalid tail number", manager.ID, aircraftBody("N-45-21K!"), http.StatusBadRequest},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := srv.do(http.MethodPost, "/api/aircraft", tc.body, tc.userID)
			assert.Equal(t, tc.wantCode, w.Code, w.Body.String())
		})
	}

	w := srv.do(http.MethodGet, "/api/aircraft", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[[]model.Aircraft](t, w)
	require.Len(t, list, 1)
	assert.Equal(t, "N4521K", list[0].TailNumber)
	assert.Equal(t, model.StatusAirworthy, list[0].Status)
}

func TestAircraftCRUD(t *testing.T) {
	srv := newTestServer(t, Options{})

	w := srv.do(http.MethodGet, "/api/aircraft", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())

	w = srv.do(http.MethodPost, "/api/aircraft", aircraftBody("N88BK"), "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[model.Aircraft](t, w)

	update := aircraftBody("N88BK")
	update["status"] = "GROUNDED"
	w = srv.do(http.MethodPut, "/api/aircraft/"+created.ID, update, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = srv.do(http.MethodGet, "/api/aircraft/"+created.ID, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, model.StatusGrounded, decode[model.Aircraft](t, w).Status)

	heli := aircraftBody("N212HX")
	heli["rotorDiameter"] = 10.7
	w = srv.do(http.MethodPost, "/api/aircraft", heli, "")
	assert.Equal(t, http.StatusBadRequest, w.Code, "rotor diameter on a fixed-wing aircraft")

	w = srv.do(http.MethodDelete, "/api/aircraft/"+created.ID, nil, "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = srv.do(http.MethodGet, "/api/aircraft/"+created.ID, nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func flightBody(pilotID, aircraftID, date string, total float64) map[string]any {
	return map[string]any{
		"pilotId":          pilotID,
		"aircraftId":       aircraftID,
		"date":             date,
		"departureAirport": "kpao",
		"arrivalAirport":   "KSQL",
		"totalFlightTime":  total,
		"picTime":          total,
		"nightTime":        0.5,
		"dayLandings":      1,
		"nightLandings":    1,
	}
}

func TestCreateFlightValidation(t *testing.T) {
	srv := newTestServer(t, Options{EnforceRoles: true})
	pilot := srv.createUser(t, "Ada Pilot", model.RolePilot)
	other := srv.createUser(t, "Bea Pilot", model.RolePilot)
	ac := srv.createAircraft(t, "N172SP", "172S")

	withField := func(key string, value any) map[string]any {
		b := flightBody(pilot.ID, ac.ID, "2026-10-10", 1.5)
		b[key] = value
		return b
	}

	testCases := []struct {
		name     string
		userID   string
		body     map[string]any
		wantCode int
	}{
		{"valid entry", pilot.ID, flightBody(pilot.ID, ac.ID, "2026-10-10", 1.5), http.StatusCreated},
		{"pilot id defaults to acting user", pilot.ID, withField("pilotId", ""), http.StatusCreated},
		{"logging for another pilot", pilot.ID, withField("pilotId", other.ID), http.StatusForbidden},
		{"negative night time", pilot.ID, withField("nightTime", -0.5), http.StatusBadRequest},
		{"category exceeds total", pilot.ID, withField("ifrTime", 2.0), http.StatusBadRequest},
		{"zero total", pilot.ID, withField("totalFlightTime", 0), http.StatusBadRequest},
		{"bad airport", pilot.ID, withField("arrivalAirport", "K$QL"), http.StatusBadRequest},
		{"bad date", pilot.ID, withField("date", "10/10/2026"), http.StatusBadRequest},
		{"unknown aircraft", pilot.ID, withField("aircraftId", "nothing"), http.StatusUnprocessableEntity},
		{"unknown weather", pilot.ID, withField("weatherCondition", "FOG"), http.StatusBadRequest},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := srv.do(http.MethodPost, "/api/flights", tc.body, tc.userID)
			assert.Equal(t, tc.wantCode, w.Code, w.Body.String())
		})
	}

	w := srv.do(http.MethodGet, "/api/flights?pilotId="+pilot.ID, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	logs := decode[[]model.FlightLogEntry](t, w)
	require.Len(t, logs, 2)
	assert.Equal(t, "KPAO", logs[0].DepartureAirport)
	assert.Equal(t, "N172SP", logs[0].AircraftTailNumber)
	assert.Equal(t, model.WeatherVMC, logs[0].WeatherCondition)
}

func TestFlightOwnership(t *testing.T) {
	srv := newTestServer(t, Options{EnforceRoles: true})
	pilot := srv.createUser(t, "Ada Pilot", model.RolePilot)
	other := srv.createUser(t, "Bea Pilot", model.RolePilot)
	admin := srv.createUser(t, "Root Admin", model.RoleAdmin)
	ac := srv.createAircraft(t, "N172SP", "172S")

	w := srv.do(http.MethodPost, "/api/flights", flightBody(pilot.ID, ac.ID, "2026-10-10", 1.5), pilot.ID)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	entry := decode[model.FlightLogEntry](t, w)

	w = srv.do(http.MethodPut, "/api/flights/"+entry.ID, flightBody(pilot.ID, ac.ID, "2026-10-10", 2.0), other.ID)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = srv.do(http.MethodPut, "/api/flights/"+entry.ID, flightBody(pilot.ID, ac.ID, "2026-10-10", 2.0), pilot.ID)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = srv.do(http.MethodDelete, "/api/flights/"+entry.ID, nil, other.ID)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = srv.do(http.MethodDelete, "/api/flights/"+entry.ID, nil, admin.ID)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = srv.do(http.MethodGet, "/api/flights/"+entry.ID, nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetFlightStats(t *testing.T) {
	srv := newTestServer(t, Options{})
	pilot := srv.createUser(t, "Ada Pilot", model.RolePilot)
	c172 := srv.createAircraft(t, "N172SP", "172S")
	pa28 := srv.createAircraft(t, "N4521K", "PA-28-181")

	for _, b := range []map[string]any{
		flightBody(pilot.ID, c172.ID, "2026-10-10", 1.5),
		flightBody(pilot.ID, pa28.ID, "2026-08-01", 2.0),
		flightBody(pilot.ID, c172.ID, "2025-01-05", 1.0),
	} {
		w := srv.do(http.MethodPost, "/api/flights", b, "")
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}

	w := srv.do(http.MethodGet, "/api/flights/stats", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = srv.do(http.MethodGet, "/api/flights/stats?pilotId=ghost", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = srv.do(http.MethodGet, "/api/flights/stats?pilotId="+pilot.ID, nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Stats struct {
			TotalTime     float64            `json:"totalTime"`
			Last30Days    float64            `json:"last30Days"`
			Last90Days    float64            `json:"last90Days"`
			LastYear      float64            `json:"lastYear"`
			TotalLandings int                `json:"totalLandings"`
			ByCategory    map[string]float64 `json:"byAircraftCategory"`
		} `json:"stats"`
		Monthly []struct {
			Month     string  `json:"month"`
			TotalTime float64 `json:"totalTime"`
		} `json:"monthly"`
		ByCategory []struct {
			Name  string  `json:"name"`
			Value float64 `json:"value"`
		} `json:"byCategory"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	assert.Equal(t, 4.5, resp.Stats.TotalTime)
	assert.Equal(t, 1.5, resp.Stats.Last30Days)
	assert.Equal(t, 3.5, resp.Stats.Last90Days)
	assert.Equal(t, 3.5, resp.Stats.LastYear)
	assert.Equal(t, 6, resp.Stats.TotalLandings)
	assert.Equal(t, map[string]float64{"172S": 2.5, "PA-28-181": 2.0}, resp.Stats.ByCategory)

	require.Len(t, resp.Monthly, 6)
	assert.Equal(t, "Oct 26", resp.Monthly[5].Month)
	assert.Equal(t, 1.5, resp.Monthly[5].TotalTime)
	assert.Equal(t, "Aug 26", resp.Monthly[3].Month)
	assert.Equal(t, 2.0, resp.Monthly[3].TotalTime)

	require.Len(t, resp.ByCategory, 2)
}

func TestMaintenanceAlertsEndpoint(t *testing.T) {
	srv := newTestServer(t, Options{})
	c172 := srv.createAircraft(t, "N172SP", "172S")
	pa28 := srv.createAircraft(t, "N4521K", "PA-28-181")

	records := []map[string]any{
		{"aircraftId": c172.ID, "checkType": "ANNUAL", "status": "DUE", "scheduledDate": "2026-11-01", "nextDueDate": "2026-12-01"},
		{"aircraftId": pa28.ID, "checkType": "HUNDRED_HOUR", "status": "OVERDUE", "scheduledDate": "2026-10-01"},
		{"aircraftId": c172.ID, "checkType": "FIFTY_HOUR", "status": "DUE", "scheduledDate": "2026-10-20", "nextDueDate": "2026-10-22"},
		{"aircraftId": c172.ID, "checkType": "PHASE", "status": "COMPLETED", "scheduledDate": "2026-09-01", "completedDate": "2026-09-02"},
	}
	for _, r := range records {
		w := srv.do(http.MethodPost, "/api/maintenance", r, "")
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}

	w := srv.do(http.MethodGet, "/api/maintenance/alerts", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	report := decode[maintenance.Report](t, w)

	require.Len(t, report.Alerts, 3)
	// Records arrive newest scheduled date first; ties in urgency keep that order.
	assert.Equal(t, model.CheckFiftyHour, report.Alerts[0].CheckType)
	assert.Equal(t, 5, report.Alerts[0].DaysUntilDue)
	assert.Equal(t, maintenance.UrgencyCritical, report.Alerts[0].Urgency)
	assert.Equal(t, model.CheckHundredHour, report.Alerts[1].CheckType)
	assert.Equal(t, maintenance.NoDueDate, report.Alerts[1].DaysUntilDue)
	assert.Equal(t, maintenance.UrgencyCritical, report.Alerts[1].Urgency)
	assert.Equal(t, maintenance.UrgencyInfo, report.Alerts[2].Urgency)
	assert.Equal(t, 45, report.Alerts[2].DaysUntilDue)

	assert.Equal(t, 2, report.FleetStats.TotalAircraft)
	assert.Equal(t, 1, report.FleetStats.OverdueChecks)
	assert.Equal(t, 1, report.FleetStats.DueSoonChecks)
	assert.Equal(t, 2000.0, report.FleetStats.TotalFleetHours)

	w = srv.do(http.MethodGet, "/api/maintenance?aircraftId="+c172.ID, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[[]model.MaintenanceRecord](t, w)
	require.Len(t, list, 3)
	assert.Equal(t, "2026-11-01", list[0].ScheduledDate.String())

	w = srv.do(http.MethodGet, "/api/aircraft/fleet-stats", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, report.FleetStats, decode[maintenance.FleetStats](t, w))

	w = srv.do(http.MethodPost, "/api/maintenance", map[string]any{
		"aircraftId": c172.ID, "checkType": "PHASE", "status": "COMPLETED", "scheduledDate": "2026-09-01",
	}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code, "completed without completedDate")
}

func TestUsersEndpoint(t *testing.T) {
	srv := newTestServer(t, Options{})

	w := srv.do(http.MethodPost, "/api/users", map[string]any{
		"name": "Amelia Mary Earhart", "email": "Amelia@Example.com", "role": "PILOT",
		"medicalClass": "2", "medicalExpiry": "2027-06-30",
	}, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	u := decode[model.User](t, w)
	assert.Equal(t, "AE", u.AvatarInitials)
	assert.Equal(t, "amelia@example.com", u.Email)

	w = srv.do(http.MethodGet, "/api/users/"+u.ID, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "2027-06-30", decode[model.User](t, w).MedicalExpiry.String())

	w = srv.do(http.MethodPost, "/api/users", map[string]any{"name": "X", "email": "x@example.com", "role": "CAPTAIN"}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = srv.do(http.MethodPost, "/api/users", map[string]any{"name": "Y", "email": "amelia@example.com", "role": "PILOT"}, "")
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t, Options{})
	w := srv.do(http.MethodGet, "/healthz", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestAlertsFollowTheClock(t *testing.T) {
	now := testNow
	srv := newTestServer(t, Options{Clock: func() time.Time { return now }})
	ac := srv.createAircraft(t, "N172SP", "172S")

	record := map[string]any{
		"aircraftId": ac.ID, "checkType": "ANNUAL", "status": "DUE",
		"scheduledDate": "2026-10-20", "nextDueDate": "2026-10-25",
	}
	require.Equal(t, http.StatusCreated, srv.do(http.MethodPost, "/api/maintenance", record, "").Code)

	w := srv.do(http.MethodGet, "/api/maintenance/alerts", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	report := decode[maintenance.Report](t, w)
	require.Len(t, report.Alerts, 1)
	assert.Equal(t, 8, report.Alerts[0].DaysUntilDue)
	assert.Equal(t, maintenance.UrgencyWarning, report.Alerts[0].Urgency)

	now = now.Add(24 * time.Hour)

	for _, path := range []string{"/api/maintenance/alerts", "/api/aircraft/alerts"} {
		w = srv.do(http.MethodGet, path, nil, "")
		require.Equal(t, http.StatusOK, w.Code, path)
		assert.Empty(t, w.Header().Get("X-Cache"), path)
	}
	report = decode[maintenance.Report](t, srv.do(http.MethodGet, "/api/maintenance/alerts", nil, ""))
	require.Len(t, report.Alerts, 1)
	assert.Equal(t, 7, report.Alerts[0].DaysUntilDue)
	assert.Equal(t, maintenance.UrgencyCritical, report.Alerts[0].Urgency)

	// Plain reads are still served from the cache.
	srv.do(http.MethodGet, "/api/aircraft", nil, "")
	assert.Equal(t, "HIT", srv.do(http.MethodGet, "/api/aircraft", nil, "").Header().Get("X-Cache"))
}
