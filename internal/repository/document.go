package repository

import (
	"context"

	"docqa/internal/model"
)

// DocumentRepository defines data access for documents using SQL queries only.
// Every read and write is scoped to an owner: a row owned by someone else is
// indistinguishable from a missing one.
type DocumentRepository interface {
	// Create inserts a new document record. OwnerID must be set.
	// Returns the stored document (may include values set by the DB).
	Create(ctx context.Context, doc *model.Document) (*model.Document, error)

	// FindByID returns the owner's document by its ID.
	FindByID(ctx context.Context, ownerID, id string) (*model.Document, error)

	// List returns a page of the owner's documents, newest first, and the owner's total count.
	List(ctx context.Context, ownerID string, pq PageQuery) (*PageResult[model.Document], error)

	// UpdateFile replaces the file columns of the owner's document identified by doc.ID.
	UpdateFile(ctx context.Context, doc *model.Document) (*model.Document, error)

	// Delete removes the owner's document by ID.
	Delete(ctx context.Context, ownerID, id string) error
}

// PageQuery holds limit/offset pagination parameters.
type PageQuery struct {
	Limit  int
	Offset int
}

// PageResult is a generic pagination result wrapper.
// T is typically a model type.
type PageResult[T any] struct {
	Items []T
	Total int
}
