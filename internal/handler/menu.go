package handler

import (
	"log/slog"
	"net/http"

	"github.com/MatzeKitt/km-advanced-menu/internal/auth"
	"github.com/MatzeKitt/km-advanced-menu/internal/config"
	"github.com/MatzeKitt/km-advanced-menu/internal/domain"
	models "github.com/MatzeKitt/km-advanced-menu/internal/domain/models/menu"
	menuSvc "github.com/MatzeKitt/km-advanced-menu/internal/domain/services/menu"
	"github.com/MatzeKitt/km-advanced-menu/internal/httputil"
	"github.com/MatzeKitt/km-advanced-menu/internal/reorder"
)

// MenuHandler serves the public menu and the admin JSON API
type MenuHandler struct {
	menu       menuSvc.MenuService
	mutations  menuSvc.MutationService
	hierarchy  menuSvc.HierarchyService
	nonces     auth.NonceManager
	mainSiteID int64
	logger     *slog.Logger
}

// NewMenuHandler creates a new menu handler
func NewMenuHandler(
	menu menuSvc.MenuService,
	mutations menuSvc.MutationService,
	hierarchy menuSvc.HierarchyService,
	nonces auth.NonceManager,
	mainSiteID int64,
	logger *slog.Logger,
) *MenuHandler {
	return &MenuHandler{
		menu:       menu,
		mutations:  mutations,
		hierarchy:  hierarchy,
		nonces:     nonces,
		mainSiteID: mainSiteID,
		logger:     logger,
	}
}

// HealthCheck reports liveness
// GET /health
func (h *MenuHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// PublicMenu renders the navigation markup
// GET /menu?arrows=&depth=&only_current_site=&only_sub=&site=&cat=&page_id=
func (h *MenuHandler) PublicMenu(w http.ResponseWriter, r *http.Request) {
	opts, current, err := parsePublicQuery(r.URL.Query(), h.mainSiteID)
	if err != nil {
		handleError(w, err)
		return
	}

	out, err := h.menu.RenderPublic(r.Context(), opts, current)
	if err != nil {
		h.logger.Error("public menu render failed", "error", err)
		handleError(w, err)
		return
	}

	httputil.RespondHTML(w, http.StatusOK, []byte(out))
}

// editResponse is the edit list with what a client needs to submit it
type editResponse struct {
	SiteID   int64               `json:"site_id"`
	Records  []models.NodeRecord `json:"records"`
	MaxDepth int                 `json:"max_depth"`
	Nonce    string              `json:"nonce"`
}

// GetEditRecords returns the flat edit list of a site
// GET /api/sites/{site}/menu/edit
func (h *MenuHandler) GetEditRecords(w http.ResponseWriter, r *http.Request) {
	siteID, err := pathID(r, "site")
	if err != nil {
		handleError(w, err)
		return
	}

	records, err := h.menu.EditRecords(r.Context(), siteID)
	if err != nil {
		handleError(w, err)
		return
	}

	nonce, err := h.nonces.Issue(httputil.GetUserID(r), config.MenuNonceAction)
	if err != nil {
		h.logger.Error("nonce issue failed", "error", err)
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, editResponse{
		SiteID:   siteID,
		Records:  records,
		MaxDepth: models.MaxDepth(records),
		Nonce:    nonce,
	})
}

// submitRequest is a JSON submission of the whole edit list
type submitRequest struct {
	Records []models.NodeRecord `json:"records"`
}

// SubmitRecords applies a submitted edit list
// POST /api/sites/{site}/menu (nonce in X-WP-Nonce)
func (h *MenuHandler) SubmitRecords(w http.ResponseWriter, r *http.Request) {
	siteID, err := pathID(r, "site")
	if err != nil {
		handleError(w, err)
		return
	}

	if err := h.nonces.Verify(r.Header.Get("X-WP-Nonce"), httputil.GetUserID(r), config.MenuNonceAction); err != nil {
		h.logger.Debug("menu submission rejected", "reason", "nonce", "user_id", httputil.GetUserID(r))
		handleError(w, err)
		return
	}

	var req submitRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondBodyError(w, err)
		return
	}

	result, err := h.mutations.ApplySubmission(r.Context(), siteID, models.ItemsFromRecords(req.Records))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, result)
}

// previewRequest is an edit list plus the operations to run over it
type previewRequest struct {
	Records         []models.NodeRecord `json:"records"`
	Operations      []reorder.Operation `json:"operations"`
	RTL             bool                `json:"rtl"`
	TargetTolerance int                 `json:"target_tolerance"` // px of overlap before a dragged row nests
}

// Preview runs editor operations without touching the store
// POST /api/sites/{site}/menu/preview
func (h *MenuHandler) Preview(w http.ResponseWriter, r *http.Request) {
	if _, err := pathID(r, "site"); err != nil {
		handleError(w, err)
		return
	}

	var req previewRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondBodyError(w, err)
		return
	}
	if len(req.Records) > config.MaxSubmittedItems {
		handleError(w, &domain.ValidationError{Field: "records", Message: "too many records"})
		return
	}

	result, err := reorder.Run(req.Records, req.Operations, reorder.Options{RTL: req.RTL, TargetTolerance: req.TargetTolerance})
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, result)
}

// categoryOrderRequest is the category order field. Null or "" deletes
// the stored order; numbers and numeric strings are accepted.
type categoryOrderRequest struct {
	MenuOrder httputil.OptionalString `json:"menu_order"`
}

// SetCategoryOrder stores the order field of a category
// PUT /api/sites/{site}/categories/{id}/menu-order
func (h *MenuHandler) SetCategoryOrder(w http.ResponseWriter, r *http.Request) {
	siteID, err := pathID(r, "site")
	if err != nil {
		handleError(w, err)
		return
	}
	categoryID, err := pathID(r, "id")
	if err != nil {
		handleError(w, err)
		return
	}

	var req categoryOrderRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondBodyError(w, err)
		return
	}
	if !req.MenuOrder.Present {
		handleError(w, &domain.ValidationError{Field: "menu_order", Message: "is required"})
		return
	}

	if err := h.mutations.SetCategoryOrder(r.Context(), siteID, categoryID, req.MenuOrder.String()); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// contentEventRequest reports a content change
type contentEventRequest struct {
	Event menuSvc.ContentEvent `json:"event"`
}

// ContentEvent keeps the cached menu in step with the content store
// POST /api/hooks/content
func (h *MenuHandler) ContentEvent(w http.ResponseWriter, r *http.Request) {
	var req contentEventRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondBodyError(w, err)
		return
	}

	if err := h.hierarchy.HandleContentEvent(r.Context(), req.Event); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusAccepted)
}
