package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/hashicorp/go-hclog"
	"github.com/kahvecikaan/catalog-browser/internal/browser"
	"github.com/kahvecikaan/catalog-browser/internal/domain"
	"github.com/kahvecikaan/catalog-browser/internal/service"
)

// actionForm is the body of every POST action
type actionForm struct {
	// viewport width at activation time, 0 when unknown
	Width int `validate:"gte=0,lte=100000"`

	// where to go back to after the action
	Return string `validate:"max=2048"`
}

type BrowserHandler struct {
	browserService service.BrowserService
	views          *Views
	validation     *domain.Validation
	logger         hclog.Logger
}

func NewBrowserHandler(bs service.BrowserService, views *Views, validation *domain.Validation, log hclog.Logger) *BrowserHandler {
	return &BrowserHandler{
		browserService: bs,
		views:          views,
		validation:     validation,
		logger:         log,
	}
}

// Index handles GET /
func (h *BrowserHandler) Index(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}

	if err := h.browserService.MountList(r.Context(), session.ID); err != nil {
		h.serviceError(w, "loading product list", err)
		return
	}
	if err := h.browserService.ClearProduct(r.Context(), session.ID); err != nil {
		h.serviceError(w, "clearing product", err)
		return
	}

	h.render(w, r, session.ID, browser.RootPath)
}

// ShowProduct handles GET /product/{id}
func (h *BrowserHandler) ShowProduct(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}

	if err := h.browserService.MountList(r.Context(), session.ID); err != nil {
		h.serviceError(w, "loading product list", err)
		return
	}

	id := mux.Vars(r)["id"]
	if _, err := h.browserService.ShowProduct(r.Context(), session.ID, id); err != nil {
		h.serviceError(w, "showing product", err)
		return
	}

	h.render(w, r, session.ID, browser.ProductPath(id))
}

// Select handles POST /select/{id}
func (h *BrowserHandler) Select(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	form, ok := h.parseForm(w, r)
	if !ok {
		return
	}

	location, err := h.browserService.Select(r.Context(), session.ID, mux.Vars(r)["id"], form.Width)
	if err != nil {
		h.serviceError(w, "selecting product", err)
		return
	}

	http.Redirect(w, r, location, http.StatusSeeOther)
}

// NextPage handles POST /page/next
func (h *BrowserHandler) NextPage(w http.ResponseWriter, r *http.Request) {
	h.action(w, r, "moving to next page", func(sessionID string, _ actionForm) error {
		_, err := h.browserService.NextPage(r.Context(), sessionID)
		return err
	})
}

// PrevPage handles POST /page/prev
func (h *BrowserHandler) PrevPage(w http.ResponseWriter, r *http.Request) {
	h.action(w, r, "moving to previous page", func(sessionID string, _ actionForm) error {
		_, err := h.browserService.PrevPage(r.Context(), sessionID)
		return err
	})
}

// ToggleList handles POST /list/toggle
func (h *BrowserHandler) ToggleList(w http.ResponseWriter, r *http.Request) {
	h.action(w, r, "toggling list", func(sessionID string, form actionForm) error {
		if form.Width > 0 {
			if err := h.browserService.ResizeViewport(r.Context(), sessionID, form.Width); err != nil {
				return err
			}
		}
		_, err := h.browserService.ToggleList(r.Context(), sessionID)
		return err
	})
}

// GetState handles GET /api/state
//
// swagger:route GET /api/state state getState
//
// Returns the state of the caller's browser session.
//
// Responses:
//
//	200: stateResponse
//	500: errorResponse
func (h *BrowserHandler) GetState(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}

	state, err := h.browserService.State(r.Context(), session.ID)
	if err != nil {
		h.logger.Error("Error getting state", "error", err)
		writeJSONError(w, "Error getting state", http.StatusInternalServerError)
		return
	}

	if err := json.NewEncoder(w).Encode(state); err != nil {
		h.logger.Error("Error encoding state", "error", err)
	}
}

// Healthz handles GET /healthz
//
// swagger:route GET /healthz health healthz
//
// Liveness probe.
//
// Responses:
//
//	200: noContentResponse
func (h *BrowserHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("ok"))
}

// action runs fn for a POST action and redirects back to the submitted
// return location
func (h *BrowserHandler) action(w http.ResponseWriter, r *http.Request, what string, fn func(sessionID string, form actionForm) error) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	form, ok := h.parseForm(w, r)
	if !ok {
		return
	}

	if err := fn(session.ID, form); err != nil {
		h.serviceError(w, what, err)
		return
	}

	location, valid := browser.ParseLocation(form.Return)
	if !valid && form.Return != "" {
		h.logger.Debug("Ignoring invalid return location", "return", form.Return)
	}
	http.Redirect(w, r, location, http.StatusSeeOther)
}

func (h *BrowserHandler) parseForm(w http.ResponseWriter, r *http.Request) (actionForm, bool) {
	if err := r.ParseForm(); err != nil {
		h.logger.Debug("Error parsing form", "error", err)
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return actionForm{}, false
	}

	form := actionForm{Return: r.PostForm.Get("return")}
	if raw := strings.TrimSpace(r.PostForm.Get("vw")); raw != "" {
		width, err := strconv.Atoi(raw)
		if err != nil {
			http.Error(w, "Invalid viewport width", http.StatusBadRequest)
			return actionForm{}, false
		}
		form.Width = width
	}

	if errs := h.validation.Validate(&form); len(errs) > 0 {
		h.logger.Debug("Invalid form", "fields", errs.Fields())
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return actionForm{}, false
	}
	return form, true
}

func (h *BrowserHandler) render(w http.ResponseWriter, r *http.Request, sessionID, location string) {
	state, err := h.browserService.State(r.Context(), sessionID)
	if err != nil {
		h.serviceError(w, "getting state", err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if err := h.views.Render(w, state, location); err != nil {
		h.logger.Error("Error rendering page", "location", location, "error", err)
		http.Error(w, "Error rendering page", http.StatusInternalServerError)
	}
}

func (h *BrowserHandler) session(w http.ResponseWriter, r *http.Request) (*browser.Session, bool) {
	session, ok := browser.SessionFromContext(r.Context())
	if !ok {
		h.logger.Error("Request reached handler without a session")
		http.Error(w, "No session", http.StatusInternalServerError)
		return nil, false
	}
	return session, true
}

func (h *BrowserHandler) serviceError(w http.ResponseWriter, what string, err error) {
	if errors.Is(err, domain.ErrSessionNotFound) {
		// expired between middleware and handler; the next request starts a new one
		http.Error(w, "Session expired", http.StatusConflict)
		return
	}
	h.logger.Error("Error "+what, "error", err)
	http.Error(w, "Error "+what, http.StatusInternalServerError)
}

func writeJSONError(w http.ResponseWriter, message string, status int) {
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{Message: message})
}
