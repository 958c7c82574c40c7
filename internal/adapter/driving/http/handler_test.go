package httphandler_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httphandler "github.com/ericfisherdev/gitswitch/internal/adapter/driving/http"
	"github.com/ericfisherdev/gitswitch/internal/domain/model"
	"github.com/ericfisherdev/gitswitch/internal/domain/port/driven"
)

func newServer(e *env) http.Handler {
	h := httphandler.NewHandler(e.identities, e.engine, e.session, e.status, discardLogger())
	return httphandler.NewServeMux(h, discardLogger())
}

func do(t *testing.T, srv http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

type messageReply struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

func postMessage(t *testing.T, srv http.Handler, body string) messageReply {
	t.Helper()
	rec := do(t, srv, http.MethodPost, "/api/v1/messages", body)
	require.Equal(t, http.StatusOK, rec.Code)
	var reply messageReply
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &reply))
	return reply
}

func decodeIdentities(t *testing.T, raw json.RawMessage) []model.Identity {
	t.Helper()
	var ids []model.Identity
	require.NoError(t, json.Unmarshal(raw, &ids))
	return ids
}

func addWork(t *testing.T, e *env) model.Identity {
	t.Helper()
	id, err := e.identities.Add(context.Background(), model.IdentityFields{
		Label: "Work", Name: "Jane Doe", Email: "jane@corp.example", SSHKeyPath: keyPath,
	})
	require.NoError(t, err)
	return id
}

func TestMessages_LoadEmpty(t *testing.T) {
	srv := newServer(newEnv())

	reply := postMessage(t, srv, `{"type":"load"}`)

	assert.Equal(t, "load", reply.Type)
	assert.JSONEq(t, `[]`, string(reply.Payload))
}

func TestMessages_AddEchoesList(t *testing.T) {
	e := newEnv()
	srv := newServer(e)

	reply := postMessage(t, srv, `{"type":"add","payload":{"label":"Work","name":"Jane","email":"jane@corp.example","sshKeyPath":"/keys/id_work"}}`)

	require.Equal(t, "load", reply.Type)
	ids := decodeIdentities(t, reply.Payload)
	require.Len(t, ids, 1)
	assert.NotEmpty(t, ids[0].ID)
	assert.Equal(t, "jane@corp.example", ids[0].Email)
	assert.Len(t, e.identities.GetAll(), 1)
}

func TestMessages_AddValidationError(t *testing.T) {
	e := newEnv()
	srv := newServer(e)

	reply := postMessage(t, srv, `{"type":"add","payload":{"label":"Bad","name":"Jane","email":"not-an-email","sshKeyPath":"/keys/id_work"}}`)

	assert.Equal(t, "error", reply.Type)
	var msg string
	require.NoError(t, json.Unmarshal(reply.Payload, &msg))
	assert.NotEmpty(t, msg)
	assert.Empty(t, e.identities.GetAll())
}

func TestMessages_UpdatePartial(t *testing.T) {
	e := newEnv()
	id := addWork(t, e)
	srv := newServer(e)

	reply := postMessage(t, srv, `{"type":"update","payload":{"id":"`+id.ID+`","label":"Day job"}}`)

	require.Equal(t, "load", reply.Type)
	got, ok := e.identities.Get(id.ID)
	require.True(t, ok)
	assert.Equal(t, "Day job", got.Label)
	assert.Equal(t, "jane@corp.example", got.Email)
}

func TestMessages_UpdateUnknownID(t *testing.T) {
	srv := newServer(newEnv())

	reply := postMessage(t, srv, `{"type":"update","payload":{"id":"nope","label":"x"}}`)

	assert.Equal(t, "error", reply.Type)
}

func TestMessages_Delete(t *testing.T) {
	e := newEnv()
	id := addWork(t, e)
	srv := newServer(e)

	reply := postMessage(t, srv, `{"type":"delete","payload":{"id":"`+id.ID+`"}}`)

	require.Equal(t, "load", reply.Type)
	assert.JSONEq(t, `[]`, string(reply.Payload))
}

func TestMessages_UnknownType(t *testing.T) {
	srv := newServer(newEnv())

	reply := postMessage(t, srv, `{"type":"explode"}`)

	assert.Equal(t, "error", reply.Type)
}

func TestMessages_InvalidBody(t *testing.T) {
	srv := newServer(newEnv())

	rec := do(t, srv, http.MethodPost, "/api/v1/messages", `{`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListRepos_Annotated(t *testing.T) {
	e := newEnv("/ws/app", "/ws/lib")
	id := addWork(t, e)
	ctx := context.Background()
	_, err := e.bindings.SetBinding(ctx, "/ws/app", id.ID, false)
	require.NoError(t, err)
	e.vcs.configs["/ws/app"] = &model.GitConfig{Name: "Jane Doe", Email: "other@corp.example"}
	e.session.AddRoots("/ws")
	srv := newServer(e)

	rec := do(t, srv, http.MethodGet, "/api/v1/repos", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var repos []httphandler.RepoResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &repos))
	require.Len(t, repos, 2)

	assert.Equal(t, "app", repos[0].Name)
	assert.Equal(t, id.ID, repos[0].IdentityID)
	assert.True(t, repos[0].Mismatch)
	assert.Equal(t, "Work ⚠ Mismatch", repos[0].Description)

	assert.Equal(t, "lib", repos[1].Name)
	assert.Equal(t, "No identity bound", repos[1].Description)
}

func TestDecisions_ListAndResolveSwitch(t *testing.T) {
	e := newEnv("/ws/app")
	id := addWork(t, e)
	ctx := context.Background()
	_, err := e.bindings.SetBinding(ctx, "/ws/app", id.ID, false)
	require.NoError(t, err)
	e.vcs.configs["/ws/app"] = &model.GitConfig{Name: "Jane", Email: "jane@home.example"}
	e.session.AddRoots("/ws")
	e.session.ScanAll(ctx)
	srv := newServer(e)

	rec := do(t, srv, http.MethodGet, "/api/v1/decisions", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var pending []httphandler.DecisionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &pending))
	require.Len(t, pending, 1)
	assert.Equal(t, "/ws/app", pending[0].RepoPath)
	assert.Equal(t, model.ReasonEmailMismatch, pending[0].Reason)
	assert.Equal(t, "jane@home.example", pending[0].CurrentEmail)
	assert.Equal(t, "jane@corp.example", pending[0].ExpectedEmail)

	rec = do(t, srv, http.MethodPost, "/api/v1/decisions/resolve",
		`{"repo_path":"/ws/app","resolution":"switch","identity_id":"`+id.ID+`"}`)
	require.Equal(t, http.StatusNoContent, rec.Code)

	assert.Equal(t, 0, e.engine.Decisions().Len())
	assert.Equal(t, "jane@corp.example", e.vcs.GetConfig(ctx, "/ws/app").Email)
}

func TestDecisions_ResolveOverrideWithoutMatch(t *testing.T) {
	e := newEnv("/ws/app")
	id := addWork(t, e)
	ctx := context.Background()
	_, err := e.bindings.SetBinding(ctx, "/ws/app", id.ID, false)
	require.NoError(t, err)
	e.vcs.configs["/ws/app"] = &model.GitConfig{Name: "Jane", Email: "jane@home.example"}
	e.session.AddRoots("/ws")
	e.session.ScanAll(ctx)
	srv := newServer(e)

	rec := do(t, srv, http.MethodPost, "/api/v1/decisions/resolve", `{"repo_path":"/ws/app","resolution":"override"}`)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, 0, e.engine.Decisions().Len())
}

func TestDecisions_ResolveApplyFailure(t *testing.T) {
	e := newEnv("/ws/app")
	id := addWork(t, e)
	ctx := context.Background()
	_, err := e.bindings.SetBinding(ctx, "/ws/app", id.ID, false)
	require.NoError(t, err)
	e.vcs.configs["/ws/app"] = &model.GitConfig{Name: "Jane", Email: "jane@home.example"}
	e.session.AddRoots("/ws")
	e.session.ScanAll(ctx)
	e.vcs.applyErr = errors.Join(driven.ErrApply, errors.New("exit status 255"))
	srv := newServer(e)

	rec := do(t, srv, http.MethodPost, "/api/v1/decisions/resolve",
		`{"repo_path":"/ws/app","resolution":"switch","identity_id":"`+id.ID+`"}`)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, 1, e.engine.Decisions().Len())
}

func TestDecisions_ResolveUnknownResolutionKeepsDecision(t *testing.T) {
	e := newEnv("/ws/app")
	id := addWork(t, e)
	ctx := context.Background()
	_, err := e.bindings.SetBinding(ctx, "/ws/app", id.ID, false)
	require.NoError(t, err)
	e.vcs.configs["/ws/app"] = &model.GitConfig{Name: "Jane", Email: "jane@home.example"}
	e.session.AddRoots("/ws")
	e.session.ScanAll(ctx)
	require.Equal(t, 1, e.engine.Decisions().Len())
	srv := newServer(e)

	rec := do(t, srv, http.MethodPost, "/api/v1/decisions/resolve",
		`{"repo_path":"/ws/app","resolution":"swtich","identity_id":"`+id.ID+`"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 1, e.engine.Decisions().Len())
	assert.Equal(t, "jane@home.example", e.vcs.GetConfig(ctx, "/ws/app").Email)
}

func TestDecisions_ResolveValidation(t *testing.T) {
	srv := newServer(newEnv())

	tests := []struct {
		name string
		body string
		want int
	}{
		{"bad json", `{`, http.StatusBadRequest},
		{"switch without identity", `{"repo_path":"/ws/app","resolution":"switch"}`, http.StatusBadRequest},
		{"missing resolution", `{"repo_path":"/ws/app"}`, http.StatusBadRequest},
		{"nothing pending", `{"repo_path":"/ws/app","resolution":"cancel"}`, http.StatusNotFound},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := do(t, srv, http.MethodPost, "/api/v1/decisions/resolve", tc.body)
			assert.Equal(t, tc.want, rec.Code)
		})
	}
}

func TestHealth(t *testing.T) {
	srv := newServer(newEnv())

	rec := do(t, srv, http.MethodGet, "/api/v1/health", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var resp httphandler.HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 0, resp.Decisions)
}

func TestRecoveryMiddleware(t *testing.T) {
	e := newEnv()
	h := httphandler.NewHandler(e.identities, e.engine, e.session, e.status, discardLogger())
	srv := httphandler.NewServeMux(h, discardLogger(), func(mux *http.ServeMux) {
		mux.HandleFunc("GET /boom", func(http.ResponseWriter, *http.Request) { panic("boom") })
	})

	rec := do(t, srv, http.MethodGet, "/boom", "")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestSecurityHeaders(t *testing.T) {
	srv := newServer(newEnv())

	rec := do(t, srv, http.MethodGet, "/api/v1/health", "")

	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
}
