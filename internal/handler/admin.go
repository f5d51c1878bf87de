package handler

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/MatzeKitt/km-advanced-menu/internal/auth"
	"github.com/MatzeKitt/km-advanced-menu/internal/config"
	models "github.com/MatzeKitt/km-advanced-menu/internal/domain/models/menu"
	menuSvc "github.com/MatzeKitt/km-advanced-menu/internal/domain/services/menu"
	"github.com/MatzeKitt/km-advanced-menu/internal/httputil"
	"github.com/MatzeKitt/km-advanced-menu/internal/reorder"
)

//go:embed templates/admin.html
var adminFS embed.FS

var adminTemplate = template.Must(template.New("admin").ParseFS(adminFS, "templates/admin.html"))

// adminPage is the data of the admin template
type adminPage struct {
	Action   string
	Nonce    string
	Rows     []models.NodeRecord
	MaxDepth int
	Changed  bool
	Saved    bool
}

// AdminHandler serves the menu structure page
type AdminHandler struct {
	menu       menuSvc.MenuService
	mutations  menuSvc.MutationService
	nonces     auth.NonceManager
	mainSiteID int64
	logger     *slog.Logger
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(
	menu menuSvc.MenuService,
	mutations menuSvc.MutationService,
	nonces auth.NonceManager,
	mainSiteID int64,
	logger *slog.Logger,
) *AdminHandler {
	return &AdminHandler{
		menu:       menu,
		mutations:  mutations,
		nonces:     nonces,
		mainSiteID: mainSiteID,
		logger:     logger,
	}
}

// Page renders the edit list of a site from the store
// GET /admin/menu?site=
func (h *AdminHandler) Page(w http.ResponseWriter, r *http.Request) {
	siteID, err := queryID(r.URL.Query(), "site", h.mainSiteID)
	if err != nil {
		handleError(w, err)
		return
	}
	h.renderStored(w, r, siteID, false)
}

// Submit saves the posted list or, when a move button was pressed,
// applies the move and shows the unsaved result. A missing capability or
// a bad authenticity token makes the request a silent no-op.
// POST /admin/menu?site=
func (h *AdminHandler) Submit(w http.ResponseWriter, r *http.Request) {
	siteID, err := queryID(r.URL.Query(), "site", h.mainSiteID)
	if err != nil {
		handleError(w, err)
		return
	}

	principal, _ := httputil.GetPrincipal(r)
	if !principal.Can(config.EditMenuCapability) {
		h.logger.Debug("menu submission ignored", "reason", "capability", "user_id", principal.UserID)
		w.WriteHeader(http.StatusNoContent)
		return
	}

	fields, err := httputil.ParseOrderedForm(w, r)
	if err != nil {
		httputil.RespondBodyError(w, err)
		return
	}

	if err := h.nonces.Verify(httputil.FirstValue(fields, fieldNonce), principal.UserID, config.MenuNonceAction); err != nil {
		h.logger.Debug("menu submission ignored", "reason", "nonce", "user_id", principal.UserID)
		h.renderStored(w, r, siteID, false)
		return
	}

	records, err := parseMenuRows(fields)
	if err != nil {
		handleError(w, err)
		return
	}

	if move := httputil.FirstValue(fields, fieldMove); move != "" {
		h.applyMove(w, r, siteID, records, move, truthy(httputil.FirstValue(fields, fieldChanged)))
		return
	}

	result, err := h.mutations.ApplySubmission(r.Context(), siteID, models.ItemsFromRecords(records))
	if err != nil {
		handleError(w, err)
		return
	}
	h.logger.Debug("menu saved from admin page", "site_id", siteID, "writes", result.Writes())
	h.renderStored(w, r, siteID, true)
}

// applyMove runs one move button and re-renders the list without saving
func (h *AdminHandler) applyMove(w http.ResponseWriter, r *http.Request, siteID int64, records []models.NodeRecord, move string, changed bool) {
	index, rawDirection, err := parseMoveButton(move)
	if err != nil {
		handleError(w, err)
		return
	}
	direction, err := reorder.ParseDirection(rawDirection)
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	editor := reorder.NewEditor(records, reorder.Options{})
	if editor.Move(index, direction) {
		changed = true
	}

	h.render(w, r, siteID, adminPage{
		Rows:     editor.Records(),
		MaxDepth: editor.MaxDepth(),
		Changed:  changed,
	})
}

func (h *AdminHandler) renderStored(w http.ResponseWriter, r *http.Request, siteID int64, saved bool) {
	records, err := h.menu.EditRecords(r.Context(), siteID)
	if err != nil {
		handleError(w, err)
		return
	}
	h.render(w, r, siteID, adminPage{
		Rows:     records,
		MaxDepth: models.MaxDepth(records),
		Saved:    saved,
	})
}

func (h *AdminHandler) render(w http.ResponseWriter, r *http.Request, siteID int64, page adminPage) {
	nonce, err := h.nonces.Issue(httputil.GetUserID(r), config.MenuNonceAction)
	if err != nil {
		h.logger.Error("nonce issue failed", "error", err)
		handleError(w, err)
		return
	}
	page.Nonce = nonce
	page.Action = fmt.Sprintf("/admin/menu?site=%d", siteID)

	var buf bytes.Buffer
	if err := adminTemplate.ExecuteTemplate(&buf, "admin", page); err != nil {
		h.logger.Error("admin page render failed", "error", err)
		httputil.RespondError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	httputil.RespondHTML(w, http.StatusOK, buf.Bytes())
}
