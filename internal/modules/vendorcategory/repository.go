package vendorcategory

import (
	"context"

	"github.com/google/uuid"

	"github.com/georgemunganga/vendor-categories/internal/modules/vendor"
)

// TermFilter selects categories from the term store.
type TermFilter struct {
	// HideEmpty drops categories with no assigned vendor.
	HideEmpty bool
}

// TermStore persists the category tree. Lookups of a missing category
// return ErrCategoryNotFound.
type TermStore interface {
	CreateTerm(ctx context.Context, c *Category) error
	UpdateTerm(ctx context.Context, c *Category) error
	DeleteTerm(ctx context.Context, id int64) error
	GetTerm(ctx context.Context, id int64) (*Category, error)
	GetTermBySlug(ctx context.Context, slug string) (*Category, error)
	ListTerms(ctx context.Context, filter TermFilter) ([]*Category, error)
	GetObjectsInTerm(ctx context.Context, id int64) ([]uuid.UUID, error)
}

// AssignmentStore persists the vendor to category relation. The relation is
// many-to-many at the storage level.
type AssignmentStore interface {
	GetAssignedTerms(ctx context.Context, vendorID uuid.UUID) ([]int64, error)
	// SetAssignedTerms replaces every assignment of the vendor with ids.
	SetAssignedTerms(ctx context.Context, vendorID uuid.UUID, ids []int64) error
}

// VendorLookup resolves vendors; vendor.Service satisfies it.
type VendorLookup interface {
	GetVendor(ctx context.Context, id uuid.UUID) (*vendor.Vendor, error)
	GetVendorByOwnerID(ctx context.Context, ownerID uuid.UUID) (*vendor.Vendor, error)
}

// StoreLister lists stores; vendor.Service satisfies it.
type StoreLister interface {
	ListStores(ctx context.Context, args vendor.ListArgs) ([]*vendor.Vendor, error)
}
