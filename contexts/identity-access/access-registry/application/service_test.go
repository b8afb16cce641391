package application

import (
	"context"
	"errors"
	"testing"

	"agritrace/contexts/identity-access/access-registry/adapters/memory"
	domainerrors "agritrace/contexts/identity-access/access-registry/domain/errors"
)

func newTestService() Service {
	store := memory.NewStore("owner_farm_coop")
	return Service{
		Registry: store,
		Clock:    store,
	}
}

func TestOwnerAuthorizesHandler(t *testing.T) {
	service := newTestService()

	item, err := service.Authorize(context.Background(), "owner_farm_coop", "handler_truck_1")
	if err != nil {
		t.Fatalf("authorize failed: %v", err)
	}
	if item.HandlerID != "handler_truck_1" {
		t.Fatalf("unexpected handler id %s", item.HandlerID)
	}

	authorized, err := service.IsAuthorized(context.Background(), "handler_truck_1")
	if err != nil {
		t.Fatalf("lookup failed: %v", err)
	}
	if !authorized {
		t.Fatal("expected handler to be authorized")
	}
}

func TestAuthorizeRequiresOwner(t *testing.T) {
	service := newTestService()

	_, err := service.Authorize(context.Background(), "handler_stranger", "handler_truck_1")
	if !errors.Is(err, domainerrors.ErrPermissionDenied) {
		t.Fatalf("expected permission denied, got %v", err)
	}

	authorized, err := service.IsAuthorized(context.Background(), "handler_truck_1")
	if err != nil {
		t.Fatalf("lookup failed: %v", err)
	}
	if authorized {
		t.Fatal("failed grant must not change state")
	}
}

func TestAuthorizeBlankTargetFails(t *testing.T) {
	service := newTestService()

	_, err := service.Authorize(context.Background(), "owner_farm_coop", "   ")
	if !errors.Is(err, domainerrors.ErrInvalidIdentity) {
		t.Fatalf("expected invalid identity, got %v", err)
	}
}

func TestDoubleAuthorizeFails(t *testing.T) {
	service := newTestService()

	if _, err := service.Authorize(context.Background(), "owner_farm_coop", "handler_truck_1"); err != nil {
		t.Fatalf("first authorize failed: %v", err)
	}
	_, err := service.Authorize(context.Background(), "owner_farm_coop", "handler_truck_1")
	if !errors.Is(err, domainerrors.ErrAlreadyAuthorized) {
		t.Fatalf("expected already authorized, got %v", err)
	}

	items, err := service.ListHandlers(context.Background())
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected owner plus one handler, got %d entries", len(items))
	}
}

func TestAuthorizeOwnerFailsAlreadyAuthorized(t *testing.T) {
	service := newTestService()

	_, err := service.Authorize(context.Background(), "owner_farm_coop", "owner_farm_coop")
	if !errors.Is(err, domainerrors.ErrAlreadyAuthorized) {
		t.Fatalf("expected already authorized, got %v", err)
	}
}

func TestRevokeOwnerFails(t *testing.T) {
	service := newTestService()

	err := service.Revoke(context.Background(), "owner_farm_coop", "owner_farm_coop")
	if !errors.Is(err, domainerrors.ErrCannotRevokeOwner) {
		t.Fatalf("expected cannot revoke owner, got %v", err)
	}

	authorized, err := service.IsAuthorized(context.Background(), "owner_farm_coop")
	if err != nil {
		t.Fatalf("lookup failed: %v", err)
	}
	if !authorized {
		t.Fatal("owner must remain authorized")
	}
}

func TestRevokeUnknownHandlerFails(t *testing.T) {
	service := newTestService()

	err := service.Revoke(context.Background(), "owner_farm_coop", "handler_ghost")
	if !errors.Is(err, domainerrors.ErrNotAuthorized) {
		t.Fatalf("expected not authorized, got %v", err)
	}
}

func TestRevokeClearsAuthorization(t *testing.T) {
	service := newTestService()

	if _, err := service.Authorize(context.Background(), "owner_farm_coop", "handler_truck_1"); err != nil {
		t.Fatalf("authorize failed: %v", err)
	}
	if err := service.Revoke(context.Background(), "owner_farm_coop", "handler_truck_1"); err != nil {
		t.Fatalf("revoke failed: %v", err)
	}

	authorized, err := service.IsAuthorized(context.Background(), "handler_truck_1")
	if err != nil {
		t.Fatalf("lookup failed: %v", err)
	}
	if authorized {
		t.Fatal("expected authorization to be cleared")
	}
}

func TestIsAuthorizedBlankIdentity(t *testing.T) {
	service := newTestService()

	authorized, err := service.IsAuthorized(context.Background(), "")
	if err != nil {
		t.Fatalf("lookup failed: %v", err)
	}
	if authorized {
		t.Fatal("blank identity must never be authorized")
	}
}
