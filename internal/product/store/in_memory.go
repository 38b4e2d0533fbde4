package store

import (
	"context"
	"sync"

	"github.com/abgdnv/productcatalog/internal/product/errors"
)

// inMemory implements ProductStore using an in-memory map.
type inMemory struct {
	mu       sync.RWMutex
	products map[string]Product
}

// NewInMemoryStore creates a new instance of ProductStore
func NewInMemoryStore() ProductStore {
	return &inMemory{
		products: make(map[string]Product),
	}
}

// Put stores the product under its ID.
func (s *inMemory) Put(_ context.Context, product Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.products[product.ID] = product
	return nil
}

// Get retrieves a product by its ID.
func (s *inMemory) Get(_ context.Context, id string) (*Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[id]
	if !ok {
		return nil, errors.ErrProductNotFound
	}
	return &p, nil
}

// Delete deletes a product by its ID.
func (s *inMemory) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.products, id)
	return nil
}

// ListAll retrieves all products.
func (s *inMemory) ListAll(_ context.Context) ([]Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := make([]Product, 0, len(s.products))
	for _, p := range s.products {
		list = append(list, p)
	}
	return list, nil
}
