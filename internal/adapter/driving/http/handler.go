// Package httphandler serves the settings message channel and the JSON API
// over net/http.
package httphandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/ericfisherdev/gitswitch/internal/application"
	"github.com/ericfisherdev/gitswitch/internal/domain/model"
	"github.com/ericfisherdev/gitswitch/internal/domain/port/driven"
)

// maxBodyBytes caps request bodies; identity payloads are tiny.
const maxBodyBytes = 64 << 10

// Handler is the HTTP driving adapter that serves the REST API.
type Handler struct {
	identities *application.IdentityRegistry
	engine     *application.ReconciliationEngine
	session    *application.Session
	status     *application.StatusService
	logger     *slog.Logger
}

// NewHandler creates a Handler with all required dependencies.
func NewHandler(
	identities *application.IdentityRegistry,
	engine *application.ReconciliationEngine,
	session *application.Session,
	status *application.StatusService,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		identities: identities,
		engine:     engine,
		session:    session,
		status:     status,
		logger:     logger,
	}
}

// Register adds the API routes to mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/v1/messages", h.HandleMessage)
	mux.HandleFunc("GET /api/v1/repos", h.ListRepos)
	mux.HandleFunc("GET /api/v1/decisions", h.ListDecisions)
	mux.HandleFunc("POST /api/v1/decisions/resolve", h.ResolveDecision)
	mux.HandleFunc("GET /api/v1/health", h.Health)
}

// NewServeMux creates an http.Handler with the API routes, plus any extra
// registrations, wrapped with security header, recovery and logging
// middleware.
func NewServeMux(h *Handler, logger *slog.Logger, extra ...func(*http.ServeMux)) http.Handler {
	mux := http.NewServeMux()
	h.Register(mux)
	for _, register := range extra {
		register(mux)
	}

	// Recovery innermost so panics are caught before logging.
	wrapped := recoveryMiddleware(logger, securityHeadersMiddleware(mux))
	wrapped = loggingMiddleware(logger, wrapped)

	return wrapped
}

// HandleMessage processes one settings channel message. Every outcome,
// including failures, is answered with 200 and a tagged payload.
func (h *Handler) HandleMessage(w http.ResponseWriter, r *http.Request) {
	var msg Message
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&msg); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ctx := r.Context()

	switch msg.Type {
	case MessageLoad:
		// Nothing to mutate.

	case MessageAdd:
		var fields model.IdentityFields
		if err := json.Unmarshal(msg.Payload, &fields); err != nil {
			h.replyError(w, "invalid identity payload")
			return
		}
		id, err := h.identities.Add(ctx, fields)
		if err != nil {
			h.replyError(w, err.Error())
			return
		}
		h.logger.Info("identity added", "id", id.ID, "label", id.Label)

	case MessageUpdate:
		var p updatePayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil || p.ID == "" {
			h.replyError(w, "invalid update payload")
			return
		}
		if _, err := h.identities.Update(ctx, p.ID, p.IdentityUpdate); err != nil {
			h.replyError(w, err.Error())
			return
		}
		h.logger.Info("identity updated", "id", p.ID)

	case MessageDelete:
		var p deletePayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil || p.ID == "" {
			h.replyError(w, "invalid delete payload")
			return
		}
		if err := h.identities.Delete(ctx, p.ID); err != nil {
			h.replyError(w, err.Error())
			return
		}
		h.logger.Info("identity deleted", "id", p.ID)

	default:
		h.replyError(w, "unknown message type: "+msg.Type)
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{
		Type:    MessageLoad,
		Payload: identityList(h.identities.GetAll()),
	})
}

func (h *Handler) replyError(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusOK, MessageResponse{Type: MessageError, Payload: message})
}

// ListRepos returns the repositories under the session roots, or under the
// root given by the "root" query parameter.
func (h *Handler) ListRepos(w http.ResponseWriter, r *http.Request) {
	var infos []model.RepoInfo
	if root := r.URL.Query().Get("root"); root != "" {
		infos = h.session.ReposForRoot(r.Context(), root)
	} else {
		infos = h.session.AllRepos(r.Context())
	}

	resp := make([]RepoResponse, 0, len(infos))
	for _, info := range infos {
		resp = append(resp, toRepoResponse(info, h.status.Annotate(info)))
	}

	writeJSON(w, http.StatusOK, resp)
}

// ListDecisions returns the mismatches waiting for the user.
func (h *Handler) ListDecisions(w http.ResponseWriter, _ *http.Request) {
	pending := h.engine.Decisions().Pending()

	resp := make([]DecisionResponse, 0, len(pending))
	for _, d := range pending {
		resp = append(resp, toDecisionResponse(d))
	}

	writeJSON(w, http.StatusOK, resp)
}

// ResolveDecision carries out the user's answer to a pending mismatch.
func (h *Handler) ResolveDecision(w http.ResponseWriter, r *http.Request) {
	var req ResolveRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resolution, ok := model.LookupResolution(req.Resolution)
	if !ok {
		writeError(w, http.StatusBadRequest, "resolution must be switch, override or cancel")
		return
	}
	if resolution == model.ResolutionSwitch && req.IdentityID == "" {
		writeError(w, http.StatusBadRequest, "identity_id is required to switch")
		return
	}

	repoPath := application.NormalizePath(req.RepoPath)
	var (
		decision model.Decision
		found    bool
	)
	for _, d := range h.engine.Decisions().Pending() {
		if d.RepoPath == repoPath {
			decision, found = d, true
			break
		}
	}
	if !found {
		writeError(w, http.StatusNotFound, "no pending decision for repository")
		return
	}

	if err := h.engine.Resolve(r.Context(), decision, resolution, req.IdentityID); err != nil {
		switch {
		case errors.Is(err, application.ErrIdentityNotFound):
			writeError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, application.ErrNoMatchingIdentity):
			writeError(w, http.StatusConflict, err.Error())
		case errors.Is(err, driven.ErrApply):
			writeError(w, http.StatusBadGateway, err.Error())
		default:
			h.logger.Error("failed to resolve decision", "repo", repoPath, "error", err)
			writeError(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	h.session.RefreshRepo(r.Context(), repoPath)
	h.logger.Info("decision resolved", "repo", repoPath, "resolution", resolution)
	w.WriteHeader(http.StatusNoContent)
}

// Health returns a simple health check response.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "ok",
		Time:      nowRFC3339(),
		Decisions: h.engine.Decisions().Len(),
	})
}
