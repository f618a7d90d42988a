package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/EzraBr1dger/space-map-admin/internal/config"
	"github.com/EzraBr1dger/space-map-admin/internal/middleware"
	"github.com/EzraBr1dger/space-map-admin/internal/models"
	"github.com/EzraBr1dger/space-map-admin/internal/security"
	"github.com/EzraBr1dger/space-map-admin/internal/services"
	"github.com/EzraBr1dger/space-map-admin/internal/spreadsheet"
	"github.com/EzraBr1dger/space-map-admin/internal/store"
)

type testServer struct {
	t       *testing.T
	handler http.Handler
	svc     *services.Services
	store   store.Store
}

func newTestServer(t *testing.T, limiter *middleware.RateLimiter) *testServer {
	t.Helper()
	st := store.NewMemoryStore()
	svc := services.New(st, services.Options{
		DefaultTravelDays: services.DefaultTravelDays,
		JWTSecret:         "test_secret_key_minimum_32_chars",
		TokenTTL:          time.Hour,
	})
	hash, err := security.HashPassword("hunter2hunter2")
	if err != nil {
		t.Fatal(err)
	}
	if err := svc.Auth.SeedAdmin(context.Background(), "admin", hash); err != nil {
		t.Fatal(err)
	}
	cfg := &config.Config{FrontendURL: "http://localhost:5173"}
	h := NewHandlerManager(cfg, svc, "test")
	return &testServer{t: t, handler: NewRouter(h, limiter), svc: svc, store: st}
}

func (s *testServer) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			s.t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) login(username, password string) string {
	s.t.Helper()
	rec := s.do(http.MethodPost, "/api/auth/login", "", loginRequest{Username: username, Password: password})
	if rec.Code != http.StatusOK {
		s.t.Fatalf("login %s status = %d, body %s", username, rec.Code, rec.Body)
	}
	var res struct {
		Token string `json:"token"`
	}
	decode(s.t, rec, &res)
	return res.Token
}

func (s *testServer) addUser(username, role string) string {
	s.t.Helper()
	admin := models.Principal{ID: 1, Username: "admin", Role: models.RoleAdmin}
	if _, err := s.svc.Auth.Register(context.Background(), admin, username, "password123", role); err != nil {
		s.t.Fatal(err)
	}
	return s.login(username, "password123")
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Code string `json:"code"`
	}
	decode(t, rec, &body)
	return body.Code
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, nil)
	rec := s.do(http.MethodGet, "/api/health", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body map[string]interface{}
	decode(t, rec, &body)
	if body["status"] != "OK" || body["version"] != "test" {
		t.Errorf("body = %v", body)
	}
	if rec.Header().Get(middleware.RequestIDHeader) == "" {
		t.Error("missing request id header")
	}
}

func TestAuthRoutes(t *testing.T) {
	s := newTestServer(t, nil)
	token := s.login("admin", "hunter2hunter2")

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		body   interface{}
		want   int
	}{
		{"verify", http.MethodGet, "/api/auth/verify", token, nil, http.StatusOK},
		{"no token", http.MethodGet, "/api/auth/verify", "", nil, http.StatusUnauthorized},
		{"bad token", http.MethodGet, "/api/auth/verify", "forged", nil, http.StatusForbidden},
		{"wrong password", http.MethodPost, "/api/auth/login", "", loginRequest{Username: "admin", Password: "nope"}, http.StatusUnauthorized},
		{"register", http.MethodPost, "/api/auth/register", token, registerRequest{Username: "rex", Password: "captain-rex", Role: "admiral"}, http.StatusCreated},
		{"register duplicate", http.MethodPost, "/api/auth/register", token, registerRequest{Username: "rex", Password: "captain-rex"}, http.StatusConflict},
		{"logout", http.MethodPost, "/api/auth/logout", token, nil, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(tt.method, tt.path, tt.token, tt.body)
			if rec.Code != tt.want {
				t.Errorf("%s %s status = %d, want %d (body %s)", tt.method, tt.path, rec.Code, tt.want, rec.Body)
			}
		})
	}

	rexToken := s.login("rex", "captain-rex")
	rec := s.do(http.MethodPost, "/api/auth/register", rexToken, registerRequest{Username: "cody", Password: "commander-cody"})
	if rec.Code != http.StatusForbidden {
		t.Errorf("register as admiral status = %d, want 403", rec.Code)
	}
}

func TestSupplyRoutes(t *testing.T) {
	s := newTestServer(t, nil)
	token := s.login("admin", "hunter2hunter2")

	rec := s.do(http.MethodPut, "/api/supplies/Food%20Rations", token, map[string]interface{}{"amount": 5})
	if rec.Code != http.StatusOK {
		t.Fatalf("set status = %d, body %s", rec.Code, rec.Body)
	}
	rec = s.do(http.MethodPatch, "/api/supplies/Food%20Rations/add", token, map[string]interface{}{"amount": -2})
	if rec.Code != http.StatusOK {
		t.Fatalf("add status = %d, body %s", rec.Code, rec.Body)
	}

	rec = s.do(http.MethodGet, "/api/supplies", token, nil)
	var supply models.Supply
	decode(t, rec, &supply)
	if supply.Items["Food Rations"] != 3 || supply.TotalSupply != 3 {
		t.Errorf("supply = %+v", supply)
	}

	tests := []struct {
		name   string
		method string
		path   string
		body   interface{}
		want   int
	}{
		{"negative set", http.MethodPut, "/api/supplies/Ammo", map[string]interface{}{"amount": -1}, http.StatusBadRequest},
		{"missing amount", http.MethodPut, "/api/supplies/Ammo", map[string]interface{}{}, http.StatusBadRequest},
		{"delete missing", http.MethodDelete, "/api/supplies/Ammo", nil, http.StatusNotFound},
		{"delete present", http.MethodDelete, "/api/supplies/Food%20Rations", nil, http.StatusOK},
		{"stats", http.MethodGet, "/api/supplies/stats", nil, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(tt.method, tt.path, token, tt.body)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d (body %s)", rec.Code, tt.want, rec.Body)
			}
		})
	}
}

func TestPlanetAndMapRoutes(t *testing.T) {
	s := newTestServer(t, nil)
	token := s.login("admin", "hunter2hunter2")
	admiral := s.addUser("yularen", "admiral")

	create := map[string]interface{}{"planetName": "Kamino", "faction": "Republic", "status": "Active"}
	if rec := s.do(http.MethodPost, "/api/planets", token, create); rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", rec.Code, rec.Body)
	}
	if rec := s.do(http.MethodPost, "/api/planets", token, create); rec.Code != http.StatusConflict {
		t.Errorf("duplicate status = %d, want 409", rec.Code)
	}
	if rec := s.do(http.MethodPost, "/api/planets", admiral, create); rec.Code != http.StatusForbidden {
		t.Errorf("create as admiral status = %d, want 403", rec.Code)
	}

	rec := s.do(http.MethodPut, "/api/mapdata/planet/Kamino", token, map[string]interface{}{"faction": "Republic", "reputation": 1.5})
	if rec.Code != http.StatusOK {
		t.Fatalf("map update status = %d, body %s", rec.Code, rec.Body)
	}
	rec = s.do(http.MethodPut, "/api/mapdata/planet/Kamino", token, map[string]interface{}{"faction": "Republic", "reputation": 2.5})
	if rec.Code != http.StatusBadRequest || errorCode(t, rec) != "VALIDATION_ERROR" {
		t.Errorf("out of range status = %d, body %s", rec.Code, rec.Body)
	}

	rec = s.do(http.MethodGet, "/api/planets/Kamino", admiral, nil)
	var got struct {
		Planet models.Planet `json:"planet"`
	}
	decode(t, rec, &got)
	if got.Planet.Reputation == nil || *got.Planet.Reputation != 1.5 {
		t.Errorf("planet = %+v", got.Planet)
	}

	rec = s.do(http.MethodPost, "/api/mapdata/planet/Kamino/building", token, services.BuildingRequest{BuildingType: "Shipyard", Cost: 10, Days: 2})
	if rec.Code != http.StatusBadRequest || errorCode(t, rec) != "INSUFFICIENT_FUNDS" {
		t.Errorf("unfunded building status = %d, body %s", rec.Code, rec.Body)
	}

	if rec := s.do(http.MethodGet, "/api/planets/Hoth", token, nil); rec.Code != http.StatusNotFound {
		t.Errorf("missing planet status = %d, want 404", rec.Code)
	}
	if rec := s.do(http.MethodGet, "/api/stats/dashboard", admiral, nil); rec.Code != http.StatusOK {
		t.Errorf("dashboard status = %d", rec.Code)
	}
	if rec := s.do(http.MethodPost, "/api/stats/recalculate", admiral, nil); rec.Code != http.StatusForbidden {
		t.Errorf("recalculate as admiral status = %d, want 403", rec.Code)
	}
}

func TestFleetRoutes(t *testing.T) {
	s := newTestServer(t, nil)
	admin := s.login("admin", "hunter2hunter2")
	admiral := s.addUser("yularen", "admiral")
	trooper := s.addUser("fives", "user")

	if rec := s.do(http.MethodPut, "/api/supplies/Capital%20Ships", admin, map[string]interface{}{"amount": 3}); rec.Code != http.StatusOK {
		t.Fatalf("seed supply status = %d", rec.Code)
	}

	fleet := services.FleetInput{
		Name:           "Open Circle",
		Faction:        "Republic",
		Group:          "212th",
		StartingPlanet: "Coruscant",
		Composition:    map[string]int{models.CapitalShipClass: 2},
	}
	rec := s.do(http.MethodPost, "/api/fleet", admiral, fleet)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", rec.Code, rec.Body)
	}
	rec = s.do(http.MethodPost, "/api/fleet", admiral, fleet)
	if rec.Code != http.StatusBadRequest || errorCode(t, rec) != "INSUFFICIENT_CAPACITY" {
		t.Errorf("over capacity status = %d, body %s", rec.Code, rec.Body)
	}
	if rec := s.do(http.MethodGet, "/api/fleet", trooper, nil); rec.Code != http.StatusForbidden {
		t.Errorf("list as user status = %d, want 403", rec.Code)
	}

	rec = s.do(http.MethodPost, "/api/fleet/move", admiral, services.MoveRequest{UnitIDs: []string{"fleet-1"}, Destination: "Kamino"})
	if rec.Code != http.StatusOK {
		t.Fatalf("move status = %d, body %s", rec.Code, rec.Body)
	}
	var moved services.MoveResult
	decode(t, rec, &moved)
	if moved.Count != 1 || moved.TravelDays != 2 {
		t.Errorf("move = %+v", moved)
	}

	rec = s.do(http.MethodPost, "/api/fleet/move", admiral, services.MoveRequest{UnitIDs: []string{"fleet-1"}, Destination: "Kamino", InstantMove: true})
	if rec.Code != http.StatusForbidden {
		t.Errorf("instant move as admiral status = %d, want 403", rec.Code)
	}

	rec = s.do(http.MethodGet, "/api/fleet/travel?from=Coruscant&to=Kamino", admiral, nil)
	var est map[string]interface{}
	decode(t, rec, &est)
	if est["travelDays"] != float64(2) {
		t.Errorf("travel estimate = %v", est)
	}

	rec = s.do(http.MethodGet, "/api/fleet", admiral, nil)
	var list services.FleetList
	decode(t, rec, &list)
	if want := (models.CapitalShipPool{Total: 3, Assigned: 2, Available: 1}); list.Pool != want {
		t.Errorf("pool = %+v, want %+v", list.Pool, want)
	}

	if rec := s.do(http.MethodDelete, "/api/fleet/fleet-9", admiral, nil); rec.Code != http.StatusNotFound {
		t.Errorf("delete missing status = %d, want 404", rec.Code)
	}
}

func TestAnnouncementRoutes(t *testing.T) {
	s := newTestServer(t, nil)
	token := s.login("admin", "hunter2hunter2")

	rec := s.do(http.MethodPost, "/api/announcements", token, services.AnnouncementInput{
		RobloxImageID:    "12345",
		AnnouncementType: "News",
		AnnouncementText: "Kamino secured",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", rec.Code, rec.Body)
	}

	rec = s.do(http.MethodGet, "/api/announcements/public/latest?limit=5", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("public latest status = %d", rec.Code)
	}
	var latest struct {
		Count int `json:"count"`
	}
	decode(t, rec, &latest)
	if latest.Count != 1 {
		t.Errorf("count = %d, want 1", latest.Count)
	}

	if rec := s.do(http.MethodGet, "/api/announcements/public/latest?limit=x", "", nil); rec.Code != http.StatusBadRequest {
		t.Errorf("bad limit status = %d, want 400", rec.Code)
	}
	if rec := s.do(http.MethodGet, "/api/announcements", "", nil); rec.Code != http.StatusUnauthorized {
		t.Errorf("private list without token status = %d, want 401", rec.Code)
	}
}

func TestExportWorkbook(t *testing.T) {
	s := newTestServer(t, nil)
	token := s.login("admin", "hunter2hunter2")
	if _, err := s.svc.Planets.Create(context.Background(), models.Principal{Username: "admin", Role: models.RoleAdmin}, "Ryloth", &models.Planet{Faction: "Separatists", Status: "Active"}); err != nil {
		t.Fatal(err)
	}

	rec := s.do(http.MethodGet, "/api/export/xlsx", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	if ct := rec.Header().Get("Content-Type"); ct != xlsxContentType {
		t.Errorf("Content-Type = %q", ct)
	}

	f, err := excelize.OpenReader(rec.Body)
	if err != nil {
		t.Fatalf("OpenReader() error = %v", err)
	}
	defer f.Close()
	if v, _ := f.GetCellValue(spreadsheet.PlanetsSheet, "A2"); v != "Ryloth" {
		t.Errorf("Planets!A2 = %q, want Ryloth", v)
	}
}

func TestRateLimit(t *testing.T) {
	limiter := middleware.NewRateLimiter(2, time.Hour)
	defer limiter.Stop()
	s := newTestServer(t, limiter)

	for i := 0; i < 2; i++ {
		if rec := s.do(http.MethodGet, "/api/announcements/public/latest", "", nil); rec.Code != http.StatusOK {
			t.Fatalf("request %d status = %d", i+1, rec.Code)
		}
	}
	rec := s.do(http.MethodGet, "/api/announcements/public/latest", "", nil)
	if rec.Code != http.StatusTooManyRequests || errorCode(t, rec) != "RATE_LIMIT_EXCEEDED" {
		t.Errorf("status = %d, body %s", rec.Code, rec.Body)
	}
	if rec := s.do(http.MethodGet, "/api/health", "", nil); rec.Code != http.StatusOK {
		t.Errorf("health should not be rate limited, status = %d", rec.Code)
	}
}
