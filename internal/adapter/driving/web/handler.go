// Package web implements the HTML settings page driving adapter using templ
// components.
package web

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/a-h/templ"

	vm "github.com/ericfisherdev/gitswitch/internal/adapter/driving/web/viewmodel"
	"github.com/ericfisherdev/gitswitch/internal/application"
	"github.com/ericfisherdev/gitswitch/internal/domain/model"
)

var flashMessages = map[string]string{
	"added":   "Identity added successfully",
	"deleted": "Identity deleted successfully",
}

// Handler is the web GUI driving adapter that serves HTML via templ components.
type Handler struct {
	identities *application.IdentityRegistry
	bindings   *application.BindingStore
	engine     *application.ReconciliationEngine
	session    *application.Session
	status     *application.StatusService
	logger     *slog.Logger
}

// NewHandler creates a Handler with all required dependencies.
func NewHandler(
	identities *application.IdentityRegistry,
	bindings *application.BindingStore,
	engine *application.ReconciliationEngine,
	session *application.Session,
	status *application.StatusService,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		identities: identities,
		bindings:   bindings,
		engine:     engine,
		session:    session,
		status:     status,
		logger:     logger,
	}
}

// Settings renders the settings page.
func (h *Handler) Settings(w http.ResponseWriter, r *http.Request) {
	page := h.page(w, r)
	page.Flash = flashMessages[r.URL.Query().Get("done")]
	h.render(w, r, http.StatusOK, page)
}

// AddIdentity handles the add form post.
func (h *Handler) AddIdentity(w http.ResponseWriter, r *http.Request) {
	if !validateCSRF(r) {
		http.Error(w, "invalid csrf token", http.StatusForbidden)
		return
	}

	form := vm.IdentityFormViewModel{
		Label:          strings.TrimSpace(r.FormValue("label")),
		Name:           strings.TrimSpace(r.FormValue("name")),
		Email:          strings.TrimSpace(r.FormValue("email")),
		SSHKeyPath:     strings.TrimSpace(r.FormValue("sshKeyPath")),
		GitHubUsername: strings.TrimSpace(r.FormValue("githubUsername")),
	}

	id, err := h.identities.Add(r.Context(), model.IdentityFields{
		Label:          form.Label,
		Name:           form.Name,
		Email:          form.Email,
		SSHKeyPath:     form.SSHKeyPath,
		GitHubUsername: form.GitHubUsername,
	})
	if err != nil {
		page := h.page(w, r)
		page.Form = form
		page.Error = "Failed to add identity: " + err.Error()
		h.render(w, r, http.StatusUnprocessableEntity, page)
		return
	}

	h.logger.Info("identity added", "id", id.ID, "label", id.Label)
	http.Redirect(w, r, "/?done=added", http.StatusSeeOther)
}

// DeleteIdentity handles the delete button post for one identity.
func (h *Handler) DeleteIdentity(w http.ResponseWriter, r *http.Request) {
	if !validateCSRF(r) {
		http.Error(w, "invalid csrf token", http.StatusForbidden)
		return
	}

	id := r.PathValue("id")
	if err := h.identities.Delete(r.Context(), id); err != nil {
		page := h.page(w, r)
		page.Error = "Failed to delete identity: " + err.Error()
		h.render(w, r, http.StatusNotFound, page)
		return
	}

	h.logger.Info("identity deleted", "id", id)
	http.Redirect(w, r, "/?done=deleted", http.StatusSeeOther)
}

func (h *Handler) page(w http.ResponseWriter, r *http.Request) vm.SettingsPageViewModel {
	page := vm.SettingsPageViewModel{
		Identities: toIdentityViewModels(h.identities.GetAll(), h.bindings),
		CSRFToken:  csrfToken(w, r),
		HelpHTML:   helpHTML(),
	}

	for _, info := range h.session.AllRepos(r.Context()) {
		page.Repos = append(page.Repos, toRepoViewModel(info, h.status.Annotate(info)))
	}
	for _, d := range h.engine.Decisions().Pending() {
		page.Decisions = append(page.Decisions, toDecisionViewModel(d))
	}
	return page
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, page vm.SettingsPageViewModel) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)

	var layout templ.Component = Layout("GitSwitch - Manage Identities", SettingsPage(page))
	if err := layout.Render(r.Context(), w); err != nil {
		h.logger.Error("failed to render settings page", "error", err)
	}
}
