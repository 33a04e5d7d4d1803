package vendorcategory

import (
	"context"
	"net/url"
	"strconv"

	"go.uber.org/zap"

	"github.com/georgemunganga/vendor-categories/internal/modules/vendor"
)

// FilterParam is the query parameter carrying the category slug on store
// listing pages.
const FilterParam = "vendor_cat_filter"

// ListingQuery is the typed form of the listing page query.
type ListingQuery struct {
	// FilterSlug is the raw, unsanitised slug; empty means no filter.
	FilterSlug string
	// Preserved holds every other parameter, echoed back by the filter form.
	Preserved url.Values
}

// ParseListingQuery splits query into the category filter and the rest.
func ParseListingQuery(query url.Values) ListingQuery {
	q := ListingQuery{FilterSlug: query.Get(FilterParam), Preserved: url.Values{}}
	for key, values := range query {
		if key == FilterParam {
			continue
		}
		q.Preserved[key] = append([]string(nil), values...)
	}
	return q
}

// AssignRequest is the body of a category save from the profile screen or
// the vendor dashboard. An empty VendorCategory clears the assignment.
type AssignRequest struct {
	VendorCategory string `json:"vendor_category" validate:"omitempty,numeric,max=19"`
}

// CategoryID converts the submitted value; nil means "none".
func (r AssignRequest) CategoryID() (*int64, error) {
	if r.VendorCategory == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(r.VendorCategory, 10, 64)
	if err != nil || id < 0 {
		return nil, ErrCategoryNotFound
	}
	if id == 0 {
		return nil, nil
	}
	return &id, nil
}

// ListingFilter adapts a Service to vendor.ListingFilter. Storage failures
// are logged and produce a listing that matches nothing, so a requested
// filter never falls back to every store.
func ListingFilter(svc Service, log *zap.Logger) vendor.ListingFilter {
	return listingFilter{svc: svc, log: log}
}

type listingFilter struct {
	svc Service
	log *zap.Logger
}

func (f listingFilter) FilterListing(ctx context.Context, args vendor.ListArgs, query url.Values) (vendor.ListArgs, error) {
	raw := ParseListingQuery(query).FilterSlug
	narrowed, err := f.svc.ApplyVendorListingFilter(ctx, args, raw)
	if err != nil {
		f.log.Error("vendor category filter failed", zap.String("slug", raw), zap.Error(err))
		return args.Only(nil), nil
	}
	return narrowed, nil
}
