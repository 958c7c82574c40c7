package httphandler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ericfisherdev/gitswitch/internal/application"
	"github.com/ericfisherdev/gitswitch/internal/domain/model"
)

// writeJSON marshals v to JSON and writes it to the response with the given
// status code. If marshaling fails, a 500 error is written instead.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// writeError writes a JSON error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// errorResponse is the standard error response body.
type errorResponse struct {
	Error string `json:"error"`
}

// Message types carried on the settings channel.
const (
	MessageLoad   = "load"
	MessageAdd    = "add"
	MessageUpdate = "update"
	MessageDelete = "delete"
	MessageError  = "error"
)

// Message is one tagged payload on the settings channel. Requests carry a raw
// payload whose shape depends on Type.
type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// MessageResponse is the reply to a Message: either the full identity list
// under "load" or an error string under "error".
type MessageResponse struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// updatePayload is the body of an update message: the identity id plus the
// fields to change.
type updatePayload struct {
	ID string `json:"id"`
	model.IdentityUpdate
}

// deletePayload is the body of a delete message.
type deletePayload struct {
	ID string `json:"id"`
}

// RepoResponse is the JSON representation of a discovered repository.
type RepoResponse struct {
	Path          string `json:"path"`
	Name          string `json:"name"`
	WorkspaceRoot string `json:"workspace_root"`
	IdentityID    string `json:"identity_id,omitempty"`
	CurrentName   string `json:"current_name,omitempty"`
	CurrentEmail  string `json:"current_email,omitempty"`
	Description   string `json:"description"`
	Tooltip       string `json:"tooltip"`
	Mismatch      bool   `json:"mismatch"`
}

// DecisionResponse is the JSON representation of a pending mismatch.
type DecisionResponse struct {
	RepoPath      string `json:"repo_path"`
	Reason        string `json:"reason"`
	CurrentName   string `json:"current_name,omitempty"`
	CurrentEmail  string `json:"current_email,omitempty"`
	ExpectedName  string `json:"expected_name,omitempty"`
	ExpectedEmail string `json:"expected_email,omitempty"`
}

// ResolveRequest is the JSON body for the resolve decision endpoint.
// IdentityID is required when Resolution is "switch".
type ResolveRequest struct {
	RepoPath   string `json:"repo_path"`
	Resolution string `json:"resolution"`
	IdentityID string `json:"identity_id"`
}

// HealthResponse is the JSON representation of the health check endpoint.
type HealthResponse struct {
	Status    string `json:"status"`
	Time      string `json:"time"`
	Decisions int    `json:"pending_decisions"`
}

func identityList(identities []model.Identity) []model.Identity {
	if identities == nil {
		return []model.Identity{}
	}
	return identities
}

// toRepoResponse converts a RepoInfo and its annotation to its JSON representation.
func toRepoResponse(info model.RepoInfo, a application.RepoAnnotation) RepoResponse {
	resp := RepoResponse{
		Path:          info.Path,
		Name:          info.Name,
		WorkspaceRoot: info.WorkspaceRoot,
		Description:   a.Description,
		Tooltip:       a.Tooltip,
		Mismatch:      a.Mismatch,
	}
	if info.Binding != nil {
		resp.IdentityID = info.Binding.IdentityID
	}
	if info.Config != nil {
		resp.CurrentName = info.Config.Name
		resp.CurrentEmail = info.Config.Email
	}
	return resp
}

// toDecisionResponse converts a pending Decision to its JSON representation.
func toDecisionResponse(d model.Decision) DecisionResponse {
	resp := DecisionResponse{RepoPath: d.RepoPath, Reason: d.Mismatch.Reason}
	if c := d.Mismatch.Current; c != nil {
		resp.CurrentName = c.Name
		resp.CurrentEmail = c.Email
	}
	if e := d.Mismatch.Expected; e != nil {
		resp.ExpectedName = e.Name
		resp.ExpectedEmail = e.Email
	}
	return resp
}

func nowRFC3339() string {
	return time.Now().UTC().Format(time.RFC3339)
}
