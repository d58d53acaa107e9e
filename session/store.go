// Package session keeps the per-visitor list of custom tickets that are
// printed after the catalog selection and discarded once a sheet is made.
package session

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/ByLCY/pricetag/product"
)

// ErrTicketNotFound is returned when removing an unknown custom ticket.
var ErrTicketNotFound = errors.New("custom ticket not found")

// Store holds custom tickets per session id.
type Store interface {
	List(ctx context.Context, sid string) ([]product.Product, error)
	Add(ctx context.Context, sid string, p product.Product) (product.Product, error)
	Remove(ctx context.Context, sid, id string) error
	Clear(ctx context.Context, sid string) error
}

// NewTicketID returns an id for a custom ticket.
func NewTicketID() product.ID {
	return product.ID("custom_" + strings.ReplaceAll(uuid.NewString(), "-", ""))
}

// prepare stamps p as a custom ticket with a fresh id.
func prepare(p product.Product) product.Product {
	p.ID = NewTicketID()
	p.IsCustom = true
	return p
}

// removeByID returns list without the ticket id, or ErrTicketNotFound.
func removeByID(list []product.Product, id string) ([]product.Product, error) {
	for i, p := range list {
		if string(p.ID) == id {
			return append(list[:i:i], list[i+1:]...), nil
		}
	}
	return list, ErrTicketNotFound
}

// MemoryStore keeps sessions in process memory. State is still keyed by
// session id, never shared between visitors.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string][]product.Product
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: map[string][]product.Product{}}
}

func (s *MemoryStore) List(_ context.Context, sid string) ([]product.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]product.Product(nil), s.sessions[sid]...), nil
}

func (s *MemoryStore) Add(_ context.Context, sid string, p product.Product) (product.Product, error) {
	p = prepare(p)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sid] = append(s.sessions[sid], p)
	return p, nil
}

func (s *MemoryStore) Remove(_ context.Context, sid, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	list, err := removeByID(s.sessions[sid], id)
	if err != nil {
		return err
	}
	s.sessions[sid] = list
	return nil
}

func (s *MemoryStore) Clear(_ context.Context, sid string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sid)
	return nil
}
