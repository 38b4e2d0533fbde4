// Package store provides an interface for product storage operations.
package store

import (
	"context"
)

// Product is the persisted product record.
// CreatedAt and UpdatedAt hold UTC ISO-8601 timestamps with millisecond precision.
type Product struct {
	ID          string  `json:"id"          dynamodbav:"id"          db:"id"`
	Name        string  `json:"name"        dynamodbav:"name"        db:"name"`
	Description string  `json:"description" dynamodbav:"description" db:"description"`
	Price       float64 `json:"price"       dynamodbav:"price"       db:"price"`
	ImageURL    string  `json:"imageUrl"    dynamodbav:"imageUrl"    db:"image_url"`
	CreatedAt   string  `json:"createdAt"   dynamodbav:"createdAt"   db:"created_at"`
	UpdatedAt   string  `json:"updatedAt"   dynamodbav:"updatedAt"   db:"updated_at"`
}

// ProductStore is an interface for product storage operations.
// It abstracts the underlying data store, allowing for different implementations (e.g., in-memory, DynamoDB, PostgreSQL).
type ProductStore interface {
	// Put writes the record, replacing any record with the same ID.
	Put(ctx context.Context, product Product) error

	// Get retrieves a single product by its unique identifier.
	// Returns ErrProductNotFound if no product exists with the given ID.
	Get(ctx context.Context, id string) (*Product, error)

	// Delete removes a product by its ID.
	// Deleting a missing record is not an error.
	Delete(ctx context.Context, id string) error

	// ListAll returns every stored product in no particular order.
	// Returns an empty slice if no products exist.
	ListAll(ctx context.Context) ([]Product, error)
}
