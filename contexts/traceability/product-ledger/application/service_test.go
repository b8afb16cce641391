package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"agritrace/contexts/traceability/product-ledger/adapters/memory"
	"agritrace/contexts/traceability/product-ledger/domain/entities"
	domainerrors "agritrace/contexts/traceability/product-ledger/domain/errors"
	"agritrace/contexts/traceability/product-ledger/ports"
)

type staticAccess struct {
	allowed map[string]bool
}

func (a staticAccess) IsAuthorized(_ context.Context, handlerID string) (bool, error) {
	return a.allowed[handlerID], nil
}

func newTestService() Service {
	store := memory.NewStore()
	service := Service{
		Repo:        store,
		Access:      staticAccess{allowed: map[string]bool{"farmer_a": true, "handler_b": true}},
		Idempotency: store,
		Clock:       store,
	}
	return service
}

func registerWheat(t *testing.T, service Service, key string) entities.Product {
	t.Helper()
	item, err := service.Register(context.Background(), key, ports.RegisterProductInput{
		FarmerID:    "farmer_a",
		Name:        "Wheat",
		Origin:      "Farm1",
		HarvestDate: time.Unix(1000, 0).UTC(),
		Quantity:    50,
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	return item
}

func TestRegisterAssignsSequentialIDs(t *testing.T) {
	service := newTestService()

	first := registerWheat(t, service, "idem-reg-1")
	if first.ProductID != 1 {
		t.Fatalf("expected first id 1, got %d", first.ProductID)
	}

	total, err := service.TotalProducts(context.Background())
	if err != nil {
		t.Fatalf("total failed: %v", err)
	}
	if total != first.ProductID {
		t.Fatalf("expected total %d to equal last id, got %d", first.ProductID, total)
	}

	second := registerWheat(t, service, "idem-reg-2")
	if second.ProductID != first.ProductID+1 {
		t.Fatalf("ids must be strictly increasing, got %d after %d", second.ProductID, first.ProductID)
	}
}

func TestRegisterCreatesSingleHarvestedEntry(t *testing.T) {
	service := newTestService()

	item := registerWheat(t, service, "idem-reg-1")
	if item.Status != entities.StatusHarvested {
		t.Fatalf("expected Harvested, got %s", item.Status)
	}
	if item.CurrentLocation != "Farm1" {
		t.Fatalf("expected initial location to mirror origin, got %s", item.CurrentLocation)
	}

	journey, err := service.GetJourney(context.Background(), item.ProductID)
	if err != nil {
		t.Fatalf("journey failed: %v", err)
	}
	if len(journey) != 1 {
		t.Fatalf("expected exactly one entry, got %d", len(journey))
	}
	if journey[0].Status != entities.StatusHarvested {
		t.Fatalf("first entry must be Harvested, got %s", journey[0].Status)
	}
	if journey[0].HandlerID != "farmer_a" {
		t.Fatalf("first entry handler must be the registrant, got %s", journey[0].HandlerID)
	}
}

func TestRegisterValidation(t *testing.T) {
	service := newTestService()

	cases := []struct {
		name  string
		input ports.RegisterProductInput
	}{
		{"empty name", ports.RegisterProductInput{FarmerID: "farmer_a", Origin: "Farm1", Quantity: 5}},
		{"empty origin", ports.RegisterProductInput{FarmerID: "farmer_a", Name: "Wheat", Quantity: 5}},
		{"zero quantity", ports.RegisterProductInput{FarmerID: "farmer_a", Name: "Wheat", Origin: "Farm1"}},
		{"negative quantity", ports.RegisterProductInput{FarmerID: "farmer_a", Name: "Wheat", Origin: "Farm1", Quantity: -1}},
	}
	for _, tc := range cases {
		_, err := service.Register(context.Background(), "idem-val", tc.input)
		if !errors.Is(err, domainerrors.ErrInvalidInput) {
			t.Fatalf("%s: expected invalid input, got %v", tc.name, err)
		}
	}

	total, err := service.TotalProducts(context.Background())
	if err != nil {
		t.Fatalf("total failed: %v", err)
	}
	if total != 0 {
		t.Fatalf("failed registrations must not allocate ids, counter = %d", total)
	}
}

func TestRegisterUnauthorizedCausesNoStateChange(t *testing.T) {
	service := newTestService()

	_, err := service.Register(context.Background(), "idem-unauth", ports.RegisterProductInput{
		FarmerID: "handler_stranger",
		Name:     "Wheat",
		Origin:   "Farm1",
		Quantity: 50,
	})
	if !errors.Is(err, domainerrors.ErrPermissionDenied) {
		t.Fatalf("expected permission denied, got %v", err)
	}

	total, err := service.TotalProducts(context.Background())
	if err != nil {
		t.Fatalf("total failed: %v", err)
	}
	if total != 0 {
		t.Fatalf("unauthorized register must not change state, counter = %d", total)
	}
}

func TestEndToEndWheatJourney(t *testing.T) {
	service := newTestService()

	item := registerWheat(t, service, "idem-reg-1")
	if item.ProductID != 1 {
		t.Fatalf("expected id 1, got %d", item.ProductID)
	}

	updated, err := service.UpdateStatus(context.Background(), "idem-upd-1", ports.StatusUpdateInput{
		ProductID: 1,
		HandlerID: "farmer_a",
		Status:    entities.StatusInTransit,
		Location:  "Warehouse1",
		Notes:     "moved",
	})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.Status != entities.StatusInTransit {
		t.Fatalf("expected InTransit, got %s", updated.Status)
	}
	if updated.CurrentLocation != "Warehouse1" {
		t.Fatalf("expected Warehouse1, got %s", updated.CurrentLocation)
	}

	journey, err := service.GetJourney(context.Background(), 1)
	if err != nil {
		t.Fatalf("journey failed: %v", err)
	}
	if len(journey) != 2 {
		t.Fatalf("expected two entries, got %d", len(journey))
	}
	second := journey[1]
	if second.Location != "Warehouse1" || second.Status != entities.StatusInTransit {
		t.Fatalf("unexpected second entry %+v", second)
	}
	if second.Notes != "moved" {
		t.Fatalf("expected notes to be recorded, got %q", second.Notes)
	}
}

func TestUpdateStatusUnknownProduct(t *testing.T) {
	service := newTestService()
	registerWheat(t, service, "idem-reg-1")

	for _, id := range []int64{0, 2, -5} {
		_, err := service.UpdateStatus(context.Background(), "idem-upd-bad", ports.StatusUpdateInput{
			ProductID: id,
			HandlerID: "farmer_a",
			Status:    entities.StatusSold,
			Location:  "Market",
		})
		if !errors.Is(err, domainerrors.ErrProductNotFound) {
			t.Fatalf("id %d: expected not found, got %v", id, err)
		}
	}

	total, err := service.TotalProducts(context.Background())
	if err != nil {
		t.Fatalf("total failed: %v", err)
	}
	if total != 1 {
		t.Fatalf("failed updates must not change the counter, got %d", total)
	}
	journey, err := service.GetJourney(context.Background(), 1)
	if err != nil {
		t.Fatalf("journey failed: %v", err)
	}
	if len(journey) != 1 {
		t.Fatalf("failed updates must not append entries, got %d", len(journey))
	}
}

func TestUpdateStatusUnauthorizedCausesNoStateChange(t *testing.T) {
	service := newTestService()
	registerWheat(t, service, "idem-reg-1")

	_, err := service.UpdateStatus(context.Background(), "idem-upd-1", ports.StatusUpdateInput{
		ProductID: 1,
		HandlerID: "handler_stranger",
		Status:    entities.StatusSold,
		Location:  "Market",
	})
	if !errors.Is(err, domainerrors.ErrPermissionDenied) {
		t.Fatalf("expected permission denied, got %v", err)
	}

	item, err := service.GetProduct(context.Background(), 1)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if item.Status != entities.StatusHarvested {
		t.Fatalf("status must be unchanged, got %s", item.Status)
	}
	journey, err := service.GetJourney(context.Background(), 1)
	if err != nil {
		t.Fatalf("journey failed: %v", err)
	}
	if len(journey) != 1 {
		t.Fatalf("journey must be unchanged, got %d entries", len(journey))
	}
}

func TestStatusRegressionIsPermitted(t *testing.T) {
	service := newTestService()
	registerWheat(t, service, "idem-reg-1")

	if _, err := service.UpdateStatus(context.Background(), "idem-upd-1", ports.StatusUpdateInput{
		ProductID: 1,
		HandlerID: "handler_b",
		Status:    entities.StatusSold,
		Location:  "Market",
	}); err != nil {
		t.Fatalf("update to Sold failed: %v", err)
	}

	item, err := service.UpdateStatus(context.Background(), "idem-upd-2", ports.StatusUpdateInput{
		ProductID: 1,
		HandlerID: "handler_b",
		Status:    entities.StatusHarvested,
		Location:  "Farm1",
	})
	if err != nil {
		t.Fatalf("regression to Harvested must be permitted: %v", err)
	}
	if item.Status != entities.StatusHarvested {
		t.Fatalf("expected Harvested, got %s", item.Status)
	}
}

func TestGetProductUnknownID(t *testing.T) {
	service := newTestService()

	_, err := service.GetProduct(context.Background(), 1)
	if !errors.Is(err, domainerrors.ErrProductNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	_, err = service.GetJourney(context.Background(), 0)
	if !errors.Is(err, domainerrors.ErrProductNotFound) {
		t.Fatalf("expected not found for id 0, got %v", err)
	}
}

func TestRegisterIdempotencyReplay(t *testing.T) {
	service := newTestService()

	first := registerWheat(t, service, "idem-replay")
	second := registerWheat(t, service, "idem-replay")
	if first.ProductID != second.ProductID {
		t.Fatalf("replay must return the recorded product, got %d vs %d", first.ProductID, second.ProductID)
	}

	total, err := service.TotalProducts(context.Background())
	if err != nil {
		t.Fatalf("total failed: %v", err)
	}
	if total != 1 {
		t.Fatalf("replay must not allocate a new id, counter = %d", total)
	}
}

func TestRegisterIdempotencyConflict(t *testing.T) {
	service := newTestService()
	registerWheat(t, service, "idem-conflict")

	_, err := service.Register(context.Background(), "idem-conflict", ports.RegisterProductInput{
		FarmerID: "farmer_a",
		Name:     "Barley",
		Origin:   "Farm2",
		Quantity: 10,
	})
	if !errors.Is(err, domainerrors.ErrIdempotencyConflict) {
		t.Fatalf("expected idempotency conflict, got %v", err)
	}
}

func TestMutationsRequireIdempotencyKey(t *testing.T) {
	service := newTestService()

	_, err := service.Register(context.Background(), "  ", ports.RegisterProductInput{
		FarmerID: "farmer_a",
		Name:     "Wheat",
		Origin:   "Farm1",
		Quantity: 50,
	})
	if !errors.Is(err, domainerrors.ErrIdempotencyKeyRequired) {
		t.Fatalf("expected idempotency key required, got %v", err)
	}
}
