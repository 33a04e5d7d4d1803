package vendorcategory

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/georgemunganga/vendor-categories/internal/metrics"
	"github.com/georgemunganga/vendor-categories/internal/modules/auth"
	"github.com/georgemunganga/vendor-categories/internal/modules/vendor"
	"github.com/georgemunganga/vendor-categories/internal/slug"
)

var (
	ErrPermissionDenied = errors.New("permission denied")
	ErrInvalidSlug      = errors.New("invalid category slug")
	ErrCategoryNotFound = errors.New("category not found")
	ErrVendorNotFound   = errors.New("vendor not found")
	ErrDuplicateSlug    = errors.New("category slug already exists")
	ErrInvalidParent    = errors.New("invalid parent category")
	ErrInvalidName      = errors.New("category name is required")
)

// Service is the vendor category filter service.
type Service interface {
	// AssignCategory replaces the vendor's category. A nil or zero categoryID
	// clears it. Only the vendor's owner or an admin may write.
	AssignCategory(ctx context.Context, vendorID uuid.UUID, categoryID *int64, actor *auth.Actor) error
	// AssignedCategory returns the vendor's category, or nil when unassigned.
	// Like writes, it is limited to the vendor's owner and admins.
	AssignedCategory(ctx context.Context, vendorID uuid.UUID, actor *auth.Actor) (*int64, error)
	ListCategories(ctx context.Context, includeEmpty bool) ([]*Category, error)
	GetCategory(ctx context.Context, id int64) (*Category, error)
	ResolveCategoryBySlug(ctx context.Context, raw string) (*Category, error)
	FilterVendorsByCategory(ctx context.Context, categoryID *int64) ([]uuid.UUID, error)
	ApplyVendorListingFilter(ctx context.Context, args vendor.ListArgs, rawSlug string) (vendor.ListArgs, error)

	CreateCategory(ctx context.Context, actor *auth.Actor, req CreateCategoryRequest) (*Category, error)
	UpdateCategory(ctx context.Context, actor *auth.Actor, id int64, req UpdateCategoryRequest) (*Category, error)
	DeleteCategory(ctx context.Context, actor *auth.Actor, id int64) error
}

// CreateCategoryRequest holds the data for a new category. The slug is
// derived from the name when left empty.
type CreateCategoryRequest struct {
	Name        string `json:"name" validate:"required,max=200"`
	Slug        string `json:"slug" validate:"max=200"`
	Description string `json:"description" validate:"max=2000"`
	ParentID    *int64 `json:"parent_id" validate:"omitempty,min=0"`
}

// UpdateCategoryRequest changes the fields that are set. ParentID 0 moves the
// category to the root.
type UpdateCategoryRequest struct {
	Name        *string `json:"name" validate:"omitempty,max=200"`
	Slug        *string `json:"slug" validate:"omitempty,max=200"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
	ParentID    *int64  `json:"parent_id" validate:"omitempty,min=0"`
}

// Option configures the service.
type Option func(*service)

// WithLogger sets the logger used for degraded read paths and writes.
func WithLogger(log *zap.Logger) Option {
	return func(s *service) { s.log = log }
}

// WithMetrics records filter outcomes and assignment writes.
func WithMetrics(c *metrics.Collector) Option {
	return func(s *service) { s.metrics = c }
}

type service struct {
	terms       TermStore
	assignments AssignmentStore
	vendors     VendorLookup
	log         *zap.Logger
	metrics     *metrics.Collector
}

func NewService(terms TermStore, assignments AssignmentStore, vendors VendorLookup, opts ...Option) Service {
	s := &service{
		terms:       terms,
		assignments: assignments,
		vendors:     vendors,
		log:         zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) lookupVendor(ctx context.Context, id uuid.UUID) (*vendor.Vendor, error) {
	v, err := s.vendors.GetVendor(ctx, id)
	if errors.Is(err, vendor.ErrNotFound) {
		return nil, ErrVendorNotFound
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}

// canEditVendor holds for the vendor's own account and for admins.
func canEditVendor(actor *auth.Actor, v *vendor.Vendor) bool {
	if actor == nil {
		return false
	}
	return actor.IsAdmin() || actor.UserID == v.OwnerID
}

func (s *service) AssignCategory(ctx context.Context, vendorID uuid.UUID, categoryID *int64, actor *auth.Actor) error {
	v, err := s.lookupVendor(ctx, vendorID)
	if err != nil {
		return err
	}
	if !canEditVendor(actor, v) {
		s.metrics.ObserveAssignment(metrics.AssignDenied)
		s.log.Warn("category assignment denied",
			zap.Stringer("vendor_id", vendorID),
			zap.Stringer("actor_id", actor.UserIDOrNil()))
		return ErrPermissionDenied
	}

	ids := []int64{}
	if categoryID != nil && *categoryID != 0 {
		if _, err := s.terms.GetTerm(ctx, *categoryID); err != nil {
			return err
		}
		ids = append(ids, *categoryID)
	}

	if err := s.assignments.SetAssignedTerms(ctx, vendorID, ids); err != nil {
		return fmt.Errorf("set vendor category: %w", err)
	}

	if len(ids) == 0 {
		s.metrics.ObserveAssignment(metrics.AssignCleared)
	} else {
		s.metrics.ObserveAssignment(metrics.AssignAssigned)
	}
	s.log.Info("vendor category saved",
		zap.Stringer("vendor_id", vendorID),
		zap.Int64s("category_ids", ids))
	return nil
}

func (s *service) AssignedCategory(ctx context.Context, vendorID uuid.UUID, actor *auth.Actor) (*int64, error) {
	v, err := s.lookupVendor(ctx, vendorID)
	if err != nil {
		return nil, err
	}
	if !canEditVendor(actor, v) {
		return nil, ErrPermissionDenied
	}
	ids, err := s.assignments.GetAssignedTerms(ctx, vendorID)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}
	id := ids[0]
	return &id, nil
}

func (s *service) ListCategories(ctx context.Context, includeEmpty bool) ([]*Category, error) {
	return s.terms.ListTerms(ctx, TermFilter{HideEmpty: !includeEmpty})
}

func (s *service) GetCategory(ctx context.Context, id int64) (*Category, error) {
	return s.terms.GetTerm(ctx, id)
}

func (s *service) ResolveCategoryBySlug(ctx context.Context, raw string) (*Category, error) {
	clean, err := slug.Normalize(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSlug, err)
	}
	return s.terms.GetTermBySlug(ctx, clean)
}

func (s *service) FilterVendorsByCategory(ctx context.Context, categoryID *int64) ([]uuid.UUID, error) {
	if categoryID == nil {
		return []uuid.UUID{}, nil
	}
	return s.terms.GetObjectsInTerm(ctx, *categoryID)
}

// ApplyVendorListingFilter narrows args to the vendors of the category named
// by rawSlug. A blank slug leaves args untouched. Any other slug restricts
// the listing, so a malformed or unknown slug and an empty category all
// produce a listing that matches nothing. Only storage failures are returned.
func (s *service) ApplyVendorListingFilter(ctx context.Context, args vendor.ListArgs, rawSlug string) (vendor.ListArgs, error) {
	if strings.TrimSpace(rawSlug) == "" {
		s.metrics.ObserveListingFilter(metrics.FilterNone)
		return args, nil
	}

	category, err := s.ResolveCategoryBySlug(ctx, rawSlug)
	switch {
	case errors.Is(err, ErrInvalidSlug), errors.Is(err, ErrCategoryNotFound):
		s.log.Debug("listing filter matched no category", zap.String("slug", rawSlug), zap.Error(err))
		s.metrics.ObserveListingFilter(metrics.FilterEmpty)
		return args.Only(nil), nil
	case err != nil:
		return args, err
	}

	ids, err := s.FilterVendorsByCategory(ctx, &category.ID)
	if err != nil {
		return args, err
	}

	narrowed := args.Narrow(ids)
	if narrowed.MatchesNothing() {
		s.metrics.ObserveListingFilter(metrics.FilterEmpty)
	} else {
		s.metrics.ObserveListingFilter(metrics.FilterMatched)
	}
	return narrowed, nil
}

func requireAdmin(actor *auth.Actor) error {
	if !actor.IsAdmin() {
		return ErrPermissionDenied
	}
	return nil
}

func (s *service) validParent(ctx context.Context, parentID *int64) (*int64, error) {
	if parentID == nil || *parentID == 0 {
		return nil, nil
	}
	if _, err := s.terms.GetTerm(ctx, *parentID); err != nil {
		if errors.Is(err, ErrCategoryNotFound) {
			return nil, ErrInvalidParent
		}
		return nil, err
	}
	id := *parentID
	return &id, nil
}

func cleanSlug(name, requested string) (string, error) {
	if strings.TrimSpace(requested) == "" {
		if made := slug.Make(name); made != "" {
			return made, nil
		}
		return "", ErrInvalidSlug
	}
	clean, err := slug.Normalize(requested)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidSlug, err)
	}
	return clean, nil
}

func (s *service) CreateCategory(ctx context.Context, actor *auth.Actor, req CreateCategoryRequest) (*Category, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, ErrInvalidName
	}
	categorySlug, err := cleanSlug(name, req.Slug)
	if err != nil {
		return nil, err
	}
	parentID, err := s.validParent(ctx, req.ParentID)
	if err != nil {
		return nil, err
	}

	c := &Category{
		Slug:        categorySlug,
		Name:        name,
		Description: strings.TrimSpace(req.Description),
		ParentID:    parentID,
	}
	if err := s.terms.CreateTerm(ctx, c); err != nil {
		return nil, err
	}
	s.log.Info("vendor category created", zap.Int64("category_id", c.ID), zap.String("slug", c.Slug))
	return c, nil
}

func (s *service) UpdateCategory(ctx context.Context, actor *auth.Actor, id int64, req UpdateCategoryRequest) (*Category, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	c, err := s.terms.GetTerm(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, ErrInvalidName
		}
		c.Name = name
	}
	if req.Slug != nil {
		if c.Slug, err = cleanSlug(c.Name, *req.Slug); err != nil {
			return nil, err
		}
	}
	if req.Description != nil {
		c.Description = strings.TrimSpace(*req.Description)
	}
	if req.ParentID != nil {
		parentID, err := s.validParent(ctx, req.ParentID)
		if err != nil {
			return nil, err
		}
		if parentID != nil {
			if err := s.checkNoCycle(ctx, id, *parentID); err != nil {
				return nil, err
			}
		}
		c.ParentID = parentID
	}

	if err := s.terms.UpdateTerm(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// checkNoCycle rejects making parentID the parent of id when id is parentID
// itself or one of its ancestors.
func (s *service) checkNoCycle(ctx context.Context, id, parentID int64) error {
	seen := map[int64]bool{}
	for cur := &parentID; cur != nil; {
		if *cur == id || seen[*cur] {
			return ErrInvalidParent
		}
		seen[*cur] = true
		c, err := s.terms.GetTerm(ctx, *cur)
		if err != nil {
			return err
		}
		cur = c.ParentID
	}
	return nil
}

func (s *service) DeleteCategory(ctx context.Context, actor *auth.Actor, id int64) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	if err := s.terms.DeleteTerm(ctx, id); err != nil {
		return err
	}
	s.log.Info("vendor category deleted", zap.Int64("category_id", id))
	return nil
}
