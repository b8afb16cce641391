package memory

import (
	"context"
	"sync"
	"time"

	"agritrace/contexts/traceability/product-ledger/domain/entities"
	domainerrors "agritrace/contexts/traceability/product-ledger/domain/errors"
	"agritrace/contexts/traceability/product-ledger/ports"
)

// Store is the in-memory ledger. A single mutex serializes all
// mutations, so every call is atomic relative to all others and reads
// observe a consistent snapshot.
type Store struct {
	mu sync.RWMutex

	counter     int64
	products    map[int64]entities.Product
	journeys    map[int64][]entities.JourneyEntry
	idempotency map[string]ports.IdempotencyRecord
}

func NewStore() *Store {
	return &Store{
		products:    make(map[int64]entities.Product),
		journeys:    make(map[int64][]entities.JourneyEntry),
		idempotency: make(map[string]ports.IdempotencyRecord),
	}
}

func (s *Store) RegisterProduct(ctx context.Context, input ports.RegisterProductInput, now time.Time) (entities.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now = now.UTC()
	s.counter++
	product := entities.Product{
		ProductID:       s.counter,
		Name:            input.Name,
		Origin:          input.Origin,
		FarmerID:        input.FarmerID,
		HarvestDate:     input.HarvestDate.UTC(),
		Quantity:        input.Quantity,
		CurrentLocation: input.Origin,
		Status:          entities.StatusHarvested,
		LastUpdated:     now,
		CreatedAt:       now,
	}
	s.products[product.ProductID] = product
	s.journeys[product.ProductID] = []entities.JourneyEntry{{
		ProductID: product.ProductID,
		Seq:       1,
		HandlerID: input.FarmerID,
		Location:  input.Origin,
		Status:    entities.StatusHarvested,
		Timestamp: now,
		Notes:     "registered",
	}}
	return product, nil
}

func (s *Store) UpdateStatus(ctx context.Context, input ports.StatusUpdateInput, now time.Time) (entities.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	product, ok := s.products[input.ProductID]
	if !ok {
		return entities.Product{}, domainerrors.ErrProductNotFound
	}

	now = now.UTC()
	product.Status = input.Status
	product.CurrentLocation = input.Location
	product.LastUpdated = now
	s.products[input.ProductID] = product

	entries := s.journeys[input.ProductID]
	s.journeys[input.ProductID] = append(entries, entities.JourneyEntry{
		ProductID: input.ProductID,
		Seq:       len(entries) + 1,
		HandlerID: input.HandlerID,
		Location:  input.Location,
		Status:    input.Status,
		Timestamp: now,
		Notes:     input.Notes,
	})
	return product, nil
}

func (s *Store) GetProduct(ctx context.Context, productID int64) (entities.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	product, ok := s.products[productID]
	if !ok {
		return entities.Product{}, domainerrors.ErrProductNotFound
	}
	return product, nil
}

func (s *Store) ListJourney(ctx context.Context, productID int64) ([]entities.JourneyEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.products[productID]; !ok {
		return nil, domainerrors.ErrProductNotFound
	}
	entries := s.journeys[productID]
	return append([]entities.JourneyEntry(nil), entries...), nil
}

func (s *Store) TotalProducts(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.counter, nil
}

func (s *Store) Get(ctx context.Context, key string, now time.Time) (ports.IdempotencyRecord, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.idempotency[key]
	if !ok {
		return ports.IdempotencyRecord{}, false, nil
	}
	if !record.ExpiresAt.IsZero() && now.UTC().After(record.ExpiresAt.UTC()) {
		delete(s.idempotency, key)
		return ports.IdempotencyRecord{}, false, nil
	}
	return record, true, nil
}

func (s *Store) Put(ctx context.Context, record ports.IdempotencyRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.idempotency[record.Key]; ok {
		if existing.RequestHash != record.RequestHash {
			return domainerrors.ErrIdempotencyConflict
		}
		return nil
	}
	s.idempotency[record.Key] = record
	return nil
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

var _ ports.Repository = (*Store)(nil)
var _ ports.IdempotencyStore = (*Store)(nil)
var _ ports.Clock = (*Store)(nil)
