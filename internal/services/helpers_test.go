package services

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/EzraBr1dger/space-map-admin/internal/models"
	"github.com/EzraBr1dger/space-map-admin/internal/store"
	"github.com/EzraBr1dger/space-map-admin/pkg/errors"
)

var (
	admin   = models.Principal{ID: 1, Username: "admin", Role: models.RoleAdmin}
	admiral = models.Principal{ID: 2, Username: "yularen", Role: models.RoleAdmiral}
	trooper = models.Principal{ID: 3, Username: "trooper", Role: models.RoleUser}
)

var errStoreDown = stderrors.New("store unavailable")

type testClock struct {
	t time.Time
}

func (c *testClock) Now() time.Time { return c.t }

func (c *testClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

// failingStore passes through to the wrapped store until told to fail.
type failingStore struct {
	store.Store
	failUpdates bool
	failSets    bool
	failGets    bool
}

func (f *failingStore) Get(ctx context.Context, path string, dest interface{}) (bool, error) {
	if f.failGets {
		return false, errStoreDown
	}
	return f.Store.Get(ctx, path, dest)
}

func (f *failingStore) Set(ctx context.Context, path string, value interface{}) error {
	if f.failSets {
		return errStoreDown
	}
	return f.Store.Set(ctx, path, value)
}

func (f *failingStore) Update(ctx context.Context, path string, fields map[string]interface{}) error {
	if f.failUpdates {
		return errStoreDown
	}
	return f.Store.Update(ctx, path, fields)
}

func (f *failingStore) Remove(ctx context.Context, path string) error {
	if f.failSets {
		return errStoreDown
	}
	return f.Store.Remove(ctx, path)
}

type harness struct {
	svc   *Services
	store *failingStore
	clock *testClock
}

func newHarness(t *testing.T, opts Options) *harness {
	t.Helper()
	fs := &failingStore{Store: store.NewMemoryStore()}
	if opts.JWTSecret == "" {
		opts.JWTSecret = "test_secret_key_minimum_32_chars"
	}
	if opts.TokenTTL == 0 {
		opts.TokenTTL = 7 * 24 * time.Hour
	}
	if opts.DefaultTravelDays == 0 {
		opts.DefaultTravelDays = DefaultTravelDays
	}
	svc := New(fs, opts)
	clock := &testClock{t: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
	svc.SetClock(clock.Now)
	return &harness{svc: svc, store: fs, clock: clock}
}

func (h *harness) seed(t *testing.T, path string, value interface{}) {
	t.Helper()
	if err := h.store.Set(context.Background(), path, value); err != nil {
		t.Fatalf("seed %s: %v", path, err)
	}
}

func (h *harness) seedSupply(t *testing.T, items map[string]float64) {
	t.Helper()
	supply := &models.Supply{Items: items}
	supply.Recalculate()
	h.seed(t, "globalSupply", supply)
}

func (h *harness) seedFleet(t *testing.T, f *models.Fleet) {
	t.Helper()
	h.seed(t, "fleets/"+f.ID, f)
}

func (h *harness) seedPlanet(t *testing.T, name string, p *models.Planet) {
	t.Helper()
	h.seed(t, "mapData/planets/"+name, p)
}

func wantCode(t *testing.T, err error, code string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", code)
	}
	if got := errors.CodeOf(err); got != code {
		t.Fatalf("error code = %s, want %s (err: %v)", got, code, err)
	}
}

func floatPtr(v float64) *float64 { return &v }

func intPtr(v int) *int { return &v }

func strPtr(v string) *string { return &v }
