package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	domainerrors "agritrace/contexts/identity-access/access-registry/domain/errors"
	"agritrace/contexts/identity-access/access-registry/ports"
)

type handlerRecord struct {
	HandlerID    string
	AuthorizedBy string
	AuthorizedAt time.Time
}

type Store struct {
	mu sync.RWMutex

	ownerID  string
	handlers map[string]handlerRecord
}

func NewStore(ownerID string) *Store {
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		ownerID = "owner_root"
	}
	return &Store{
		ownerID:  ownerID,
		handlers: make(map[string]handlerRecord),
	}
}

func (s *Store) Owner(ctx context.Context) (string, error) {
	return s.ownerID, nil
}

func (s *Store) IsAuthorized(ctx context.Context, handlerID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	handlerID = strings.TrimSpace(handlerID)
	if handlerID == s.ownerID {
		return true, nil
	}
	_, ok := s.handlers[handlerID]
	return ok, nil
}

func (s *Store) GetHandler(ctx context.Context, handlerID string) (ports.Handler, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	handlerID = strings.TrimSpace(handlerID)
	if handlerID == s.ownerID {
		return ports.Handler{HandlerID: s.ownerID, IsOwner: true}, nil
	}
	record, ok := s.handlers[handlerID]
	if !ok {
		return ports.Handler{}, domainerrors.ErrHandlerNotFound
	}
	return ports.Handler{
		HandlerID:    record.HandlerID,
		AuthorizedBy: record.AuthorizedBy,
		AuthorizedAt: record.AuthorizedAt,
	}, nil
}

func (s *Store) Authorize(ctx context.Context, handlerID string, authorizedBy string, now time.Time) (ports.Handler, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	handlerID = strings.TrimSpace(handlerID)
	if handlerID == "" {
		return ports.Handler{}, domainerrors.ErrInvalidIdentity
	}
	if handlerID == s.ownerID {
		return ports.Handler{}, domainerrors.ErrAlreadyAuthorized
	}
	if _, ok := s.handlers[handlerID]; ok {
		return ports.Handler{}, domainerrors.ErrAlreadyAuthorized
	}

	record := handlerRecord{
		HandlerID:    handlerID,
		AuthorizedBy: strings.TrimSpace(authorizedBy),
		AuthorizedAt: now.UTC(),
	}
	s.handlers[handlerID] = record
	return ports.Handler{
		HandlerID:    record.HandlerID,
		AuthorizedBy: record.AuthorizedBy,
		AuthorizedAt: record.AuthorizedAt,
	}, nil
}

func (s *Store) Revoke(ctx context.Context, handlerID string, revokedBy string, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	handlerID = strings.TrimSpace(handlerID)
	if handlerID == s.ownerID {
		return domainerrors.ErrCannotRevokeOwner
	}
	if _, ok := s.handlers[handlerID]; !ok {
		return domainerrors.ErrNotAuthorized
	}
	delete(s.handlers, handlerID)
	return nil
}

func (s *Store) ListHandlers(ctx context.Context) ([]ports.Handler, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]ports.Handler, 0, len(s.handlers)+1)
	items = append(items, ports.Handler{HandlerID: s.ownerID, IsOwner: true})
	for _, record := range s.handlers {
		items = append(items, ports.Handler{
			HandlerID:    record.HandlerID,
			AuthorizedBy: record.AuthorizedBy,
			AuthorizedAt: record.AuthorizedAt,
		})
	}
	sort.Slice(items, func(i int, j int) bool {
		if items[i].IsOwner != items[j].IsOwner {
			return items[i].IsOwner
		}
		return items[i].HandlerID < items[j].HandlerID
	})
	return items, nil
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

var _ ports.Registry = (*Store)(nil)
var _ ports.Clock = (*Store)(nil)
