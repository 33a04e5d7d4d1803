package vendorcategory

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/georgemunganga/vendor-categories/internal/modules/auth"
	"github.com/georgemunganga/vendor-categories/internal/modules/vendor"
)

// VendorDirectory is the part of the vendor module the handler reads from.
type VendorDirectory interface {
	VendorLookup
	StoreLister
}

// Handler exposes vendor category endpoints and the store listing pages.
type Handler struct {
	service      Service
	vendors      VendorDirectory
	authenticate func(http.Handler) http.Handler
	validate     *validator.Validate
	log          *zap.Logger
}

func NewHandler(service Service, vendors VendorDirectory, authenticate func(http.Handler) http.Handler, log *zap.Logger) *Handler {
	return &Handler{
		service:      service,
		vendors:      vendors,
		authenticate: authenticate,
		validate:     validator.New(),
		log:          log,
	}
}

// RegisterRoutes adds the JSON endpoints to the API router.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/vendor-categories", h.listCategories)
	r.Get("/vendor-categories/taxonomy", h.getTaxonomy)
	r.Get("/vendor-categories/by-slug/{slug}", h.getCategoryBySlug)
	r.Get("/vendor-categories/{id}", h.getCategory)

	r.Group(func(r chi.Router) {
		r.Use(h.authenticate)

		// Management screen
		r.Post("/vendor-categories", h.createCategory)
		r.Put("/vendor-categories/{id}", h.updateCategory)
		r.Delete("/vendor-categories/{id}", h.deleteCategory)

		// Profile screen, for the vendor's owner or an admin
		r.Get("/vendors/{id}/category", h.getVendorCategory)
		r.Put("/vendors/{id}/category", h.saveVendorCategory)

		// Self-service dashboard
		r.Get("/dashboard/category", h.getDashboardCategory)
		r.Put("/dashboard/category", h.saveDashboardCategory)
	})
}

// RegisterPages adds the HTML store listing pages.
func (h *Handler) RegisterPages(r chi.Router) {
	r.Get("/stores", h.storeListPage)
	r.Get("/stores/filter", h.filterFormFragment)
}

func (h *Handler) listCategories(w http.ResponseWriter, r *http.Request) {
	hideEmpty, _ := strconv.ParseBool(r.URL.Query().Get("hide_empty"))
	categories, err := h.service.ListCategories(r.Context(), !hideEmpty)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if tree, _ := strconv.ParseBool(r.URL.Query().Get("tree")); tree {
		respond(w, http.StatusOK, BuildTree(categories))
		return
	}
	respond(w, http.StatusOK, categories)
}

func (h *Handler) getTaxonomy(w http.ResponseWriter, r *http.Request) {
	respond(w, http.StatusOK, VendorTaxonomy)
}

func (h *Handler) getCategoryBySlug(w http.ResponseWriter, r *http.Request) {
	c, err := h.service.ResolveCategoryBySlug(r.Context(), chi.URLParam(r, "slug"))
	if errors.Is(err, ErrInvalidSlug) {
		err = ErrCategoryNotFound
	}
	if err != nil {
		h.writeError(w, err)
		return
	}
	respond(w, http.StatusOK, c)
}

func (h *Handler) getCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := categoryIDParam(r)
	if !ok {
		h.writeError(w, ErrCategoryNotFound)
		return
	}
	c, err := h.service.GetCategory(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	respond(w, http.StatusOK, c)
}

func (h *Handler) createCategory(w http.ResponseWriter, r *http.Request) {
	var req CreateCategoryRequest
	if !h.decode(w, r, &req) {
		return
	}
	actor, _ := auth.ActorFromContext(r.Context())
	c, err := h.service.CreateCategory(r.Context(), actor, req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	respond(w, http.StatusCreated, c)
}

func (h *Handler) updateCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := categoryIDParam(r)
	if !ok {
		h.writeError(w, ErrCategoryNotFound)
		return
	}
	var req UpdateCategoryRequest
	if !h.decode(w, r, &req) {
		return
	}
	actor, _ := auth.ActorFromContext(r.Context())
	c, err := h.service.UpdateCategory(r.Context(), actor, id, req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	respond(w, http.StatusOK, c)
}

func (h *Handler) deleteCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := categoryIDParam(r)
	if !ok {
		h.writeError(w, ErrCategoryNotFound)
		return
	}
	actor, _ := auth.ActorFromContext(r.Context())
	if err := h.service.DeleteCategory(r.Context(), actor, id); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// categorySelection feeds the single-select control of the profile and
// dashboard screens.
type categorySelection struct {
	VendorID uuid.UUID   `json:"vendor_id"`
	Selected *int64      `json:"selected"`
	Options  []*Category `json:"options"`
}

func (h *Handler) writeSelection(w http.ResponseWriter, r *http.Request, vendorID uuid.UUID) {
	actor, _ := auth.ActorFromContext(r.Context())
	selected, err := h.service.AssignedCategory(r.Context(), vendorID, actor)
	if err != nil {
		h.writeError(w, err)
		return
	}
	options, err := h.service.ListCategories(r.Context(), true)
	if err != nil {
		h.writeError(w, err)
		return
	}
	respond(w, http.StatusOK, categorySelection{VendorID: vendorID, Selected: selected, Options: options})
}

func (h *Handler) getVendorCategory(w http.ResponseWriter, r *http.Request) {
	vendorID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, ErrVendorNotFound)
		return
	}
	h.writeSelection(w, r, vendorID)
}

func (h *Handler) saveVendorCategory(w http.ResponseWriter, r *http.Request) {
	vendorID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, ErrVendorNotFound)
		return
	}
	h.save(w, r, vendorID)
}

func (h *Handler) dashboardVendor(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	actor, _ := auth.ActorFromContext(r.Context())
	v, err := h.vendors.GetVendorByOwnerID(r.Context(), actor.UserIDOrNil())
	if errors.Is(err, vendor.ErrNotFound) {
		respond(w, http.StatusNotFound, map[string]string{"error": "this account has no store"})
		return uuid.Nil, false
	}
	if err != nil {
		h.writeError(w, err)
		return uuid.Nil, false
	}
	return v.ID, true
}

func (h *Handler) getDashboardCategory(w http.ResponseWriter, r *http.Request) {
	if vendorID, ok := h.dashboardVendor(w, r); ok {
		h.writeSelection(w, r, vendorID)
	}
}

func (h *Handler) saveDashboardCategory(w http.ResponseWriter, r *http.Request) {
	if vendorID, ok := h.dashboardVendor(w, r); ok {
		h.save(w, r, vendorID)
	}
}

func (h *Handler) save(w http.ResponseWriter, r *http.Request, vendorID uuid.UUID) {
	req, ok := h.decodeAssign(w, r)
	if !ok {
		return
	}
	categoryID, err := req.CategoryID()
	if err != nil {
		respond(w, http.StatusUnprocessableEntity, map[string]string{"error": "unknown vendor category"})
		return
	}

	actor, _ := auth.ActorFromContext(r.Context())
	err = h.service.AssignCategory(r.Context(), vendorID, categoryID, actor)
	if errors.Is(err, ErrCategoryNotFound) {
		respond(w, http.StatusUnprocessableEntity, map[string]string{"error": "unknown vendor category"})
		return
	}
	if err != nil {
		h.writeError(w, err)
		return
	}
	respond(w, http.StatusOK, categorySelectionSaved{VendorID: vendorID, CategoryID: categoryID})
}

type categorySelectionSaved struct {
	VendorID   uuid.UUID `json:"vendor_id"`
	CategoryID *int64    `json:"category_id"`
}

// decodeAssign accepts the field from a JSON body or a submitted form.
func (h *Handler) decodeAssign(w http.ResponseWriter, r *http.Request) (AssignRequest, bool) {
	var req AssignRequest
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/x-www-form-urlencoded") {
		if err := r.ParseForm(); err != nil {
			respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return req, false
		}
		req.VendorCategory = r.PostForm.Get("vendor_category")
	} else if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return req, false
	}
	req.VendorCategory = strings.TrimSpace(req.VendorCategory)
	if err := h.validate.Struct(req); err != nil {
		respond(w, http.StatusUnprocessableEntity, map[string]string{"error": "unknown vendor category"})
		return req, false
	}
	return req, true
}

// storeListPage renders the filter control and the matching stores. Failures
// are logged and degrade to an empty list; the page itself always renders.
func (h *Handler) storeListPage(w http.ResponseWriter, r *http.Request) {
	query := ParseListingQuery(r.URL.Query())

	categories, err := h.service.ListCategories(r.Context(), true)
	if err != nil {
		h.log.Error("list vendor categories", zap.Error(err))
	}

	args, err := h.service.ApplyVendorListingFilter(r.Context(), vendor.ParseListArgs(r.URL.Query()), query.FilterSlug)
	if err != nil {
		h.log.Error("apply vendor category filter", zap.String("slug", query.FilterSlug), zap.Error(err))
		args = args.Only(nil)
	}

	stores, err := h.vendors.ListStores(r.Context(), args)
	if err != nil {
		h.log.Error("list stores", zap.Error(err))
		stores = nil
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := RenderStoreList(w, NewFilterForm(r.URL.Path, categories, query), stores); err != nil {
		h.log.Error("render store list", zap.Error(err))
	}
}

func (h *Handler) filterFormFragment(w http.ResponseWriter, r *http.Request) {
	query := ParseListingQuery(r.URL.Query())
	categories, err := h.service.ListCategories(r.Context(), true)
	if err != nil {
		h.log.Error("list vendor categories", zap.Error(err))
	}

	// An empty action submits the form to the page embedding the fragment.
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := RenderFilterForm(w, NewFilterForm("", categories, query)); err != nil {
		h.log.Error("render filter form", zap.Error(err))
	}
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return false
	}
	return true
}

func categoryIDParam(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil && id > 0
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrPermissionDenied):
		respond(w, http.StatusForbidden, map[string]string{"error": ErrPermissionDenied.Error()})
	case errors.Is(err, ErrCategoryNotFound), errors.Is(err, ErrVendorNotFound):
		respond(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, ErrDuplicateSlug):
		respond(w, http.StatusConflict, map[string]string{"error": err.Error()})
	case errors.Is(err, ErrInvalidSlug), errors.Is(err, ErrInvalidName), errors.Is(err, ErrInvalidParent):
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	default:
		h.log.Error("vendor category request failed", zap.Error(err))
		respond(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
