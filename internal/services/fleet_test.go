package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/EzraBr1dger/space-map-admin/internal/models"
	"github.com/EzraBr1dger/space-map-admin/pkg/errors"
)

func republicFleet(id, planet string, venators int) *models.Fleet {
	return &models.Fleet{
		ID:            id,
		Name:          "Task Force " + id,
		Faction:       models.FactionRepublic,
		Group:         "501st",
		CurrentPlanet: planet,
		Composition:   map[string]int{models.CapitalShipClass: venators},
		Created:       time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestFleetService_Pool(t *testing.T) {
	h := newHarness(t, Options{})
	h.seedSupply(t, map[string]float64{models.ResourceCapitalShips: 5})
	h.seedFleet(t, republicFleet("fleet-1", "Coruscant", 2))

	pool, err := h.svc.Fleets.Pool(context.Background())
	if err != nil {
		t.Fatalf("Pool() error = %v", err)
	}
	want := models.CapitalShipPool{Total: 5, Assigned: 2, Available: 3}
	if pool != want {
		t.Errorf("Pool() = %+v, want %+v", pool, want)
	}
}

func TestFleetService_CreateRejectsOverCapacity(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, Options{})
	h.seedSupply(t, map[string]float64{models.ResourceCapitalShips: 5})
	h.seedFleet(t, republicFleet("fleet-1", "Coruscant", 2))

	_, err := h.svc.Fleets.Create(ctx, admiral, FleetInput{
		Name:           "Open Circle",
		Faction:        "Republic",
		Group:          "212th",
		StartingPlanet: "Coruscant",
		Composition:    map[string]int{models.CapitalShipClass: 4},
	})
	wantCode(t, err, errors.ErrCodeInsufficientCapacity)
	if msg := errors.MessageOf(err); !strings.Contains(msg, "available 3") || !strings.Contains(msg, "requested 4") {
		t.Errorf("error message %q should name requested 4 and available 3", msg)
	}

	list, err := h.svc.Fleets.List(ctx, admiral, "")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(list.Fleets) != 1 {
		t.Errorf("fleet count = %d, want 1 after rejected create", len(list.Fleets))
	}
	if list.Pool.Available != 3 {
		t.Errorf("available = %d, want 3", list.Pool.Available)
	}
}

func TestFleetService_CreateConsumesPool(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, Options{})
	h.seedSupply(t, map[string]float64{models.ResourceCapitalShips: 5})
	h.seedFleet(t, republicFleet("fleet-1", "Coruscant", 2))

	tests := []struct {
		name          string
		venators      int
		wantAvailable int
	}{
		{"two venators", 2, 1},
		{"no venators", 0, 1},
		{"last venator", 1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before, err := h.svc.Fleets.Pool(ctx)
			if err != nil {
				t.Fatal(err)
			}
			fleet, err := h.svc.Fleets.Create(ctx, admiral, FleetInput{
				Name:           "Fleet " + tt.name,
				Faction:        "Republic",
				StartingPlanet: "Kamino",
				Composition:    map[string]int{models.CapitalShipClass: tt.venators},
			})
			if err != nil {
				t.Fatalf("Create() error = %v", err)
			}
			if fleet.Group != models.GroupUnassigned {
				t.Errorf("Group = %q, want %q", fleet.Group, models.GroupUnassigned)
			}
			after, err := h.svc.Fleets.Pool(ctx)
			if err != nil {
				t.Fatal(err)
			}
			if after.Available != tt.wantAvailable {
				t.Errorf("available = %d, want %d", after.Available, tt.wantAvailable)
			}
			if before.Available-after.Available != tt.venators {
				t.Errorf("available dropped by %d, want %d", before.Available-after.Available, tt.venators)
			}
		})
	}
}

func TestFleetService_CreateSequentialIDs(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, Options{})
	h.seedFleet(t, republicFleet("fleet-1", "Coruscant", 0))
	h.seedFleet(t, republicFleet("fleet-3", "Coruscant", 0))

	fleet, err := h.svc.Fleets.Create(ctx, admin, FleetInput{
		Name:           "Grievous Flagship",
		Faction:        "CIS",
		Group:          "Grievous Fleet",
		StartingPlanet: "Geonosis",
		Composition:    map[string]int{"providences": 1},
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if fleet.ID != "fleet-4" {
		t.Errorf("ID = %q, want fleet-4", fleet.ID)
	}
	if fleet.Faction != models.FactionSeparatists {
		t.Errorf("Faction = %q, want Separatists", fleet.Faction)
	}
	if fleet.Composition["dreadnoughts"] != 0 || fleet.Composition["providences"] != 1 {
		t.Errorf("Composition = %v", fleet.Composition)
	}
}

func TestFleetService_CreateValidation(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, Options{})

	tests := []struct {
		name  string
		actor models.Principal
		in    FleetInput
		code  string
	}{
		{
			name:  "unprivileged",
			actor: trooper,
			in:    FleetInput{Name: "x", Faction: "Republic", StartingPlanet: "Naboo"},
			code:  errors.ErrCodeForbidden,
		},
		{
			name:  "missing name",
			actor: admiral,
			in:    FleetInput{Faction: "Republic", StartingPlanet: "Naboo"},
			code:  errors.ErrCodeValidation,
		},
		{
			name:  "untracked faction",
			actor: admiral,
			in:    FleetInput{Name: "x", Faction: "Mandalore", StartingPlanet: "Naboo"},
			code:  errors.ErrCodeValidation,
		},
		{
			name:  "cross faction group",
			actor: admiral,
			in:    FleetInput{Name: "x", Faction: "Republic", Group: "Techno Union", StartingPlanet: "Naboo"},
			code:  errors.ErrCodeValidation,
		},
		{
			name:  "wrong ship class",
			actor: admiral,
			in:    FleetInput{Name: "x", Faction: "Separatists", StartingPlanet: "Naboo", Composition: map[string]int{"venators": 1}},
			code:  errors.ErrCodeValidation,
		},
		{
			name:  "negative count",
			actor: admiral,
			in:    FleetInput{Name: "x", Faction: "Republic", StartingPlanet: "Naboo", Composition: map[string]int{"venators": -1}},
			code:  errors.ErrCodeValidation,
		},
		{
			name:  "missing planet",
			actor: admiral,
			in:    FleetInput{Name: "x", Faction: "Republic"},
			code:  errors.ErrCodeValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.svc.Fleets.Create(ctx, tt.actor, tt.in)
			wantCode(t, err, tt.code)
		})
	}
}

func TestFleetService_UpdateChecksOnlyDelta(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, Options{})
	h.seedSupply(t, map[string]float64{models.ResourceCapitalShips: 5})
	h.seedFleet(t, republicFleet("fleet-1", "Coruscant", 3))
	h.seedFleet(t, republicFleet("fleet-2", "Coruscant", 1))

	// available is 1: raising fleet-1 from 3 to 4 fits even though 4 > 1.
	fleet, err := h.svc.Fleets.Update(ctx, admiral, "fleet-1", FleetUpdate{
		Composition: map[string]int{models.CapitalShipClass: 4},
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if fleet.CapitalShips() != 4 {
		t.Errorf("CapitalShips() = %d, want 4", fleet.CapitalShips())
	}

	_, err = h.svc.Fleets.Update(ctx, admiral, "fleet-2", FleetUpdate{
		Composition: map[string]int{models.CapitalShipClass: 2},
	})
	wantCode(t, err, errors.ErrCodeInsufficientCapacity)

	// lowering never needs capacity
	if _, err := h.svc.Fleets.Update(ctx, admiral, "fleet-2", FleetUpdate{
		Composition: map[string]int{models.CapitalShipClass: 0},
	}); err != nil {
		t.Fatalf("Update() lowering error = %v", err)
	}
	pool, err := h.svc.Fleets.Pool(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if pool.Available != 1 {
		t.Errorf("available = %d, want 1", pool.Available)
	}
}

func TestFleetService_UpdateFields(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, Options{})
	h.seedFleet(t, republicFleet("fleet-1", "Coruscant", 0))

	fleet, err := h.svc.Fleets.Update(ctx, admiral, "fleet-1", FleetUpdate{
		Name:        strPtr("Resolute"),
		Commander:   strPtr("Anakin Skywalker"),
		Group:       strPtr("212th"),
		Description: strPtr("<b>Flagship</b>"),
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if fleet.Name != "Resolute" || fleet.Commander != "Anakin Skywalker" || fleet.Group != "212th" {
		t.Errorf("Update() = %+v", fleet)
	}
	if fleet.Description != "Flagship" {
		t.Errorf("Description = %q, want markup stripped", fleet.Description)
	}
	if fleet.CurrentPlanet != "Coruscant" {
		t.Errorf("CurrentPlanet = %q, update must not relocate", fleet.CurrentPlanet)
	}

	_, err = h.svc.Fleets.Update(ctx, admiral, "fleet-9", FleetUpdate{Name: strPtr("x")})
	wantCode(t, err, errors.ErrCodeNotFound)

	_, err = h.svc.Fleets.Update(ctx, admiral, "fleet-1", FleetUpdate{Group: strPtr("Dooku Command")})
	wantCode(t, err, errors.ErrCodeValidation)
}

func TestFleetService_Move(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, Options{})
	h.seedFleet(t, republicFleet("fleet-1", "Naboo", 1))
	h.seedFleet(t, republicFleet("fleet-2", "Naboo", 0))

	res, err := h.svc.Fleets.Move(ctx, admiral, MoveRequest{
		UnitIDs:     []string{"fleet-1", "fleet-2"},
		Destination: "Coruscant",
	})
	if err != nil {
		t.Fatalf("Move() error = %v", err)
	}
	if res.Count != 2 || res.TravelDays != 1 {
		t.Errorf("Move() = %+v, want 2 fleets and 1 day", res)
	}
	if res.Message != "2 fleet(s) en route to Coruscant (1 days)" {
		t.Errorf("Message = %q", res.Message)
	}

	fleet, err := h.svc.Fleets.GetFleet(ctx, admiral, "fleet-2")
	if err != nil {
		t.Fatal(err)
	}
	if fleet.CurrentPlanet != "Naboo" || fleet.TravelingTo != "Coruscant" {
		t.Errorf("fleet at %q traveling to %q, want Naboo -> Coruscant", fleet.CurrentPlanet, fleet.TravelingTo)
	}
	if err := fleet.CheckTransitState(); err != nil {
		t.Errorf("CheckTransitState() = %v", err)
	}
	wantArrival := h.clock.Now().Add(24 * time.Hour)
	if fleet.ArrivalDate == nil || !fleet.ArrivalDate.Equal(wantArrival) {
		t.Errorf("ArrivalDate = %v, want %v", fleet.ArrivalDate, wantArrival)
	}
}

func TestFleetService_MoveExplicitDays(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, Options{})
	h.seedFleet(t, republicFleet("fleet-1", "Naboo", 0))

	res, err := h.svc.Fleets.Move(ctx, admiral, MoveRequest{
		UnitIDs:     []string{"fleet-1"},
		Destination: "Ryloth",
		TravelDays:  intPtr(3),
	})
	if err != nil {
		t.Fatalf("Move() error = %v", err)
	}
	if res.TravelDays != 3 {
		t.Errorf("TravelDays = %d, want 3", res.TravelDays)
	}
}

func TestFleetService_MoveRejectsSplitSelectionBeforeWriting(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, Options{})
	h.seedFleet(t, republicFleet("fleet-1", "Naboo", 0))
	h.seedFleet(t, republicFleet("fleet-2", "Kamino", 0))

	_, err := h.svc.Fleets.Move(ctx, admiral, MoveRequest{
		UnitIDs:     []string{"fleet-1", "fleet-2"},
		Destination: "Coruscant",
	})
	wantCode(t, err, errors.ErrCodeConflict)

	for _, id := range []string{"fleet-1", "fleet-2"} {
		fleet, err := h.svc.Fleets.GetFleet(ctx, admiral, id)
		if err != nil {
			t.Fatal(err)
		}
		if fleet.InTransit() {
			t.Errorf("%s is in transit after a rejected move", id)
		}
	}
}

func TestFleetService_MoveMissingIDRejectsBatch(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, Options{})
	h.seedFleet(t, republicFleet("fleet-1", "Naboo", 0))

	_, err := h.svc.Fleets.Move(ctx, admiral, MoveRequest{
		UnitIDs:     []string{"fleet-1", "fleet-7"},
		Destination: "Coruscant",
	})
	wantCode(t, err, errors.ErrCodeNotFound)

	fleet, err := h.svc.Fleets.GetFleet(ctx, admiral, "fleet-1")
	if err != nil {
		t.Fatal(err)
	}
	if fleet.InTransit() {
		t.Error("fleet-1 moved although the batch was rejected")
	}
	list, err := h.svc.Fleets.List(ctx, admiral, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(list.Fleets) != 1 {
		t.Errorf("fleet count = %d, want 1: no record may be created for a missing id", len(list.Fleets))
	}
}

func TestFleetService_InstantMove(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, Options{})
	h.seedFleet(t, republicFleet("fleet-1", "Naboo", 0))

	_, err := h.svc.Fleets.Move(ctx, admiral, MoveRequest{
		UnitIDs:     []string{"fleet-1"},
		Destination: "Kamino",
		InstantMove: true,
	})
	wantCode(t, err, errors.ErrCodeForbidden)

	// put it in transit, then jump it instantly
	if _, err := h.svc.Fleets.Move(ctx, admiral, MoveRequest{UnitIDs: []string{"fleet-1"}, Destination: "Ryloth"}); err != nil {
		t.Fatal(err)
	}
	res, err := h.svc.Fleets.Move(ctx, admin, MoveRequest{
		UnitIDs:     []string{"fleet-1"},
		Destination: "Kamino",
		InstantMove: true,
	})
	if err != nil {
		t.Fatalf("Move() error = %v", err)
	}
	if res.Message != "1 fleet(s) moved instantly to Kamino" {
		t.Errorf("Message = %q", res.Message)
	}
	fleet, err := h.svc.Fleets.GetFleet(ctx, admin, "fleet-1")
	if err != nil {
		t.Fatal(err)
	}
	if fleet.CurrentPlanet != "Kamino" || fleet.InTransit() || fleet.ArrivalDate != nil || fleet.DepartureDate != nil {
		t.Errorf("after instant move fleet = %+v", fleet)
	}
}

func TestFleetService_MoveAtomicOnStoreFailure(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, Options{})
	h.seedFleet(t, republicFleet("fleet-1", "Naboo", 0))
	h.seedFleet(t, republicFleet("fleet-2", "Naboo", 0))

	h.store.failUpdates = true
	_, err := h.svc.Fleets.Move(ctx, admiral, MoveRequest{UnitIDs: []string{"fleet-1", "fleet-2"}, Destination: "Coruscant"})
	wantCode(t, err, errors.ErrCodeInternalError)
	h.store.failUpdates = false

	list, err := h.svc.Fleets.List(ctx, admiral, "")
	if err != nil {
		t.Fatal(err)
	}
	for id, f := range list.Fleets {
		if f.InTransit() {
			t.Errorf("%s moved although the commit failed", id)
		}
	}
}

func TestFleetService_Delete(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, Options{})
	h.seedSupply(t, map[string]float64{models.ResourceCapitalShips: 5, models.ResourceAmmo: 10})
	h.seedFleet(t, republicFleet("fleet-1", "Naboo", 2))
	h.seedFleet(t, republicFleet("fleet-2", "Naboo", 0))

	if err := h.svc.Fleets.Delete(ctx, admiral, "fleet-1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	supply, err := h.svc.Supplies.Get(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if supply.Items[models.ResourceCapitalShips] != 4 {
		t.Errorf("Capital Ships = %v, want 4", supply.Items[models.ResourceCapitalShips])
	}
	if supply.TotalSupply != 14 {
		t.Errorf("TotalSupply = %v, want 14", supply.TotalSupply)
	}

	// a fleet with no capital ships leaves the supply alone
	if err := h.svc.Fleets.Delete(ctx, admiral, "fleet-2"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	supply, err = h.svc.Supplies.Get(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if supply.Items[models.ResourceCapitalShips] != 4 {
		t.Errorf("Capital Ships = %v, want 4", supply.Items[models.ResourceCapitalShips])
	}

	wantCode(t, h.svc.Fleets.Delete(ctx, admiral, "fleet-1"), errors.ErrCodeNotFound)
}

func TestFleetService_DeleteIsAtomic(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, Options{})
	h.seedSupply(t, map[string]float64{models.ResourceCapitalShips: 5})
	h.seedFleet(t, republicFleet("fleet-1", "Naboo", 1))

	h.store.failUpdates = true
	wantCode(t, h.svc.Fleets.Delete(ctx, admiral, "fleet-1"), errors.ErrCodeInternalError)
	h.store.failUpdates = false

	if _, err := h.svc.Fleets.GetFleet(ctx, admiral, "fleet-1"); err != nil {
		t.Errorf("fleet-1 should survive a failed delete: %v", err)
	}
	supply, err := h.svc.Supplies.Get(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if supply.Items[models.ResourceCapitalShips] != 5 {
		t.Errorf("Capital Ships = %v, want 5 after a failed delete", supply.Items[models.ResourceCapitalShips])
	}
}

func TestFleetService_SettleArrivals(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, Options{})
	h.seedFleet(t, republicFleet("fleet-1", "Naboo", 0))
	h.seedFleet(t, republicFleet("fleet-2", "Naboo", 0))

	if _, err := h.svc.Fleets.Move(ctx, admiral, MoveRequest{UnitIDs: []string{"fleet-1"}, Destination: "Coruscant"}); err != nil {
		t.Fatal(err)
	}
	if _, err := h.svc.Fleets.Move(ctx, admiral, MoveRequest{UnitIDs: []string{"fleet-2"}, Destination: "Mustafar", TravelDays: intPtr(7)}); err != nil {
		t.Fatal(err)
	}

	_, err := h.svc.Fleets.SettleArrivals(ctx, admiral)
	wantCode(t, err, errors.ErrCodeForbidden)

	h.clock.Advance(2 * 24 * time.Hour)
	settled, err := h.svc.Fleets.SettleArrivals(ctx, admin)
	if err != nil {
		t.Fatalf("SettleArrivals() error = %v", err)
	}
	if len(settled) != 1 || settled[0] != "fleet-1" {
		t.Fatalf("SettleArrivals() = %v, want [fleet-1]", settled)
	}

	fleet, err := h.svc.Fleets.GetFleet(ctx, admin, "fleet-1")
	if err != nil {
		t.Fatal(err)
	}
	if fleet.CurrentPlanet != "Coruscant" || fleet.InTransit() {
		t.Errorf("fleet-1 = %+v, want stationary at Coruscant", fleet)
	}
	still, err := h.svc.Fleets.GetFleet(ctx, admin, "fleet-2")
	if err != nil {
		t.Fatal(err)
	}
	if !still.InTransit() {
		t.Error("fleet-2 should still be in transit")
	}
}

func TestFleetService_ListByFaction(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, Options{})
	h.seedFleet(t, republicFleet("fleet-1", "Naboo", 0))
	cis := republicFleet("fleet-2", "Geonosis", 0)
	cis.Faction = models.FactionSeparatists
	cis.Group = "Techno Union"
	cis.Composition = map[string]int{"munificents": 2}
	h.seedFleet(t, cis)

	list, err := h.svc.Fleets.List(ctx, admiral, "Separatists")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(list.Fleets) != 1 || list.Fleets["fleet-2"] == nil {
		t.Errorf("List(Separatists) = %v", list.Fleets)
	}

	_, err = h.svc.Fleets.List(ctx, trooper, "")
	wantCode(t, err, errors.ErrCodeForbidden)
}
