package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/authz"
	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/common"
	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/execution"
	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/identity"
	invitationops "github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/invitation/operations"
	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/permission"
	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/platformtest"
	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/ratelimit"
	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/store"
	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/subadmin"
)

const (
	coreEmail     = "owner@example.com"
	coreToken     = "core-token"
	delegateToken = "delegate-token"
	strangerToken = "stranger-token"
)

// tokenVerifier maps fixed tokens to identities.
type tokenVerifier map[string]identity.Identity

func (v tokenVerifier) Verify(_ context.Context, token string) (identity.Identity, error) {
	id, ok := v[token]
	if !ok {
		return identity.Identity{}, errors.New("unknown token")
	}
	return id, nil
}

type testEnv struct {
	router    http.Handler
	uow       *common.MemoryUnitOfWork
	subAdmins *platformtest.SubAdmins
	requests  *platformtest.PendingRequests
	docs      *store.MemoryStore
	files     *platformtest.Files
	notifier  *platformtest.Notifier
	delegate  *subadmin.SubAdmin
}

func newTestEnv(t *testing.T, configure ...func(*Dependencies)) *testEnv {
	t.Helper()

	env := &testEnv{
		uow:       common.NewMemoryUnitOfWork(),
		subAdmins: platformtest.NewSubAdmins(),
		requests:  platformtest.NewPendingRequests(),
		docs:      store.NewMemoryStore(),
		files:     platformtest.NewFiles(),
		notifier:  &platformtest.Notifier{},
	}
	env.delegate = env.subAdmins.Seed(&subadmin.SubAdmin{
		Email:    "delegate@example.com",
		IsActive: true,
		PagePermissions: permission.PagePermissions{
			permission.PageProjects: permission.NewActionSet(permission.ActionView, permission.ActionCreate, permission.ActionUpdate),
			permission.PageProfile:  permission.NewActionSet(permission.ActionView, permission.ActionUpdate),
		},
	})

	verifier := tokenVerifier{
		coreToken:     {SubjectID: "core-sub", Email: coreEmail},
		delegateToken: {SubjectID: "delegate-sub", Email: "delegate@example.com"},
		strangerToken: {SubjectID: "stranger-sub", Email: "stranger@example.com"},
	}

	deps := Dependencies{
		UnitOfWork:      env.uow,
		SubAdmins:       env.subAdmins,
		Invitations:     platformtest.NewInvitations(),
		PendingRequests: env.requests,
		AuditLogs:       &platformtest.AuditLogs{UoW: env.uow},
		Documents:       env.docs,
		Files:           env.files,
		Dispatcher:      execution.NewDispatcher(env.docs, env.files),
		Notifier:        env.notifier,
		Resolver:        authz.NewResolver(verifier, env.subAdmins, coreEmail),
		Invitation: invitationops.Settings{
			CoreAdminEmail: coreEmail,
			TTL:            time.Hour,
			AcceptURLBase:  "https://portfolio.test/admin/accept",
		},
		MaxBodyBytes: 1 << 20,
	}
	for _, fn := range configure {
		fn(&deps)
	}

	r := chi.NewRouter()
	r.Use(common.TracingMiddleware)
	NewHandlers(deps).Mount(r)
	env.router = r
	return env
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Message string          `json:"message"`
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return e.serve(t, req)
}

func (e *testEnv) serve(t *testing.T, req *http.Request) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
			t.Fatalf("decode response %q: %v", rec.Body.String(), err)
		}
	}
	return rec, env
}

func expectStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("Expected status %d, got %d: %s", want, rec.Code, rec.Body.String())
	}
}

func decodeData[T any](t *testing.T, env envelope) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(env.Data, &v); err != nil {
		t.Fatalf("decode data %s: %v", env.Data, err)
	}
	return v
}

func TestAuthentication(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name   string
		token  string
		status int
		code   string
	}{
		{"missing credential", "", http.StatusUnauthorized, common.ErrCodeMissingCredential},
		{"invalid credential", "forged", http.StatusUnauthorized, common.ErrCodeInvalidCredential},
		{"verified but not an administrator", strangerToken, http.StatusForbidden, common.ErrCodeNotAdmin},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, body := env.do(t, http.MethodGet, "/api/my-permissions", tt.token, nil)
			expectStatus(t, rec, tt.status)
			if body.Success || body.Error != tt.code {
				t.Errorf("Expected error %s, got %+v", tt.code, body)
			}
		})
	}
}

func TestMyPermissions(t *testing.T) {
	env := newTestEnv(t)

	rec, body := env.do(t, http.MethodGet, "/api/my-permissions", coreToken, nil)
	expectStatus(t, rec, http.StatusOK)
	core := decodeData[MyPermissionsResponse](t, body)
	if core.Role != "core" || !core.Permissions.Allows(permission.PageMessages, permission.ActionDelete) {
		t.Errorf("Expected core with every permission, got %+v", core)
	}

	rec, body = env.do(t, http.MethodGet, "/api/my-permissions", delegateToken, nil)
	expectStatus(t, rec, http.StatusOK)
	delegate := decodeData[MyPermissionsResponse](t, body)
	if delegate.Role != "delegated" || delegate.Email != "delegate@example.com" {
		t.Errorf("Unexpected delegate response: %+v", delegate)
	}
	if delegate.Permissions.Allows(permission.PageMessages, permission.ActionView) {
		t.Error("Delegate should not see messages")
	}
}

func TestInvitationFlow(t *testing.T) {
	env := newTestEnv(t)

	rec, body := env.do(t, http.MethodPost, "/api/invitations", coreToken, map[string]any{
		"email": "Stranger@Example.com",
		"pagePermissions": []map[string]any{
			{"page": "faqs", "permissions": []string{"VIEW", "CREATE"}},
		},
	})
	expectStatus(t, rec, http.StatusCreated)
	created := decodeData[invitationops.CreatedInvitation](t, body)
	if created.Token == "" || created.Invitation.Email != "stranger@example.com" {
		t.Fatalf("Unexpected invitation: %+v", created)
	}
	if invites := env.notifier.Invites(); len(invites) != 1 || invites[0].To != "stranger@example.com" {
		t.Errorf("Expected one invite notification, got %+v", invites)
	}

	rec, body = env.do(t, http.MethodGet, "/api/invitations/"+created.Token+"/verify", "", nil)
	expectStatus(t, rec, http.StatusOK)
	if summary := decodeData[map[string]any](t, body); summary["email"] != "stranger@example.com" {
		t.Errorf("Unexpected verify summary: %v", summary)
	}

	rec, _ = env.do(t, http.MethodPost, "/api/invitations/"+created.Token+"/accept", "", nil)
	expectStatus(t, rec, http.StatusUnauthorized)

	rec, _ = env.do(t, http.MethodPost, "/api/invitations/"+created.Token+"/accept", strangerToken,
		map[string]string{"displayName": "New Helper"})
	expectStatus(t, rec, http.StatusOK)

	rec, body = env.do(t, http.MethodGet, "/api/my-permissions", strangerToken, nil)
	expectStatus(t, rec, http.StatusOK)
	perms := decodeData[MyPermissionsResponse](t, body)
	if !perms.Permissions.Allows(permission.PageFAQs, permission.ActionCreate) || perms.DisplayName != "New Helper" {
		t.Errorf("Expected the invited grant, got %+v", perms)
	}

	rec, body = env.do(t, http.MethodGet, "/api/invitations/"+created.Token+"/verify", "", nil)
	expectStatus(t, rec, http.StatusNotFound)
	if body.Error != common.ErrCodeInvitationNotFound {
		t.Errorf("Expected INVITATION_NOT_FOUND after acceptance, got %s", body.Error)
	}
}

func TestInvitations_CoreOnly(t *testing.T) {
	env := newTestEnv(t)

	rec, body := env.do(t, http.MethodPost, "/api/invitations", delegateToken, map[string]string{"email": "x@example.com"})
	expectStatus(t, rec, http.StatusForbidden)
	if body.Error != common.ErrCodeAccessDenied {
		t.Errorf("Expected ACCESS_DENIED, got %s", body.Error)
	}

	rec, _ = env.do(t, http.MethodGet, "/api/invitations?status=bogus", coreToken, nil)
	expectStatus(t, rec, http.StatusBadRequest)

	rec, body = env.do(t, http.MethodPost, "/api/invitations", coreToken, map[string]string{"email": coreEmail})
	expectStatus(t, rec, http.StatusConflict)
	if body.Error != common.ErrCodeInvalidTarget {
		t.Errorf("Expected INVALID_TARGET, got %s", body.Error)
	}
}

func TestDelegates(t *testing.T) {
	env := newTestEnv(t)

	rec, body := env.do(t, http.MethodGet, "/api/delegates", coreToken, nil)
	expectStatus(t, rec, http.StatusOK)
	if list := decodeData[[]subadmin.SubAdmin](t, body); len(list) != 1 {
		t.Errorf("Expected one delegate, got %d", len(list))
	}

	rec, body = env.do(t, http.MethodGet, "/api/delegates/missing", coreToken, nil)
	expectStatus(t, rec, http.StatusNotFound)
	if body.Error != common.ErrCodeSubAdminNotFound {
		t.Errorf("Expected SUBADMIN_NOT_FOUND, got %s", body.Error)
	}

	rec, _ = env.do(t, http.MethodGet, "/api/delegates", delegateToken, nil)
	expectStatus(t, rec, http.StatusForbidden)

	rec, _ = env.do(t, http.MethodPut, "/api/delegates/"+env.delegate.ID+"/permissions", coreToken, map[string]any{
		"pagePermissions": []map[string]any{{"page": "skills", "permissions": []string{"VIEW"}}},
	})
	expectStatus(t, rec, http.StatusOK)
	stored, _ := env.subAdmins.FindByID(context.Background(), env.delegate.ID)
	if !stored.PagePermissions.Allows(permission.PageSkills, permission.ActionView) ||
		stored.PagePermissions.Allows(permission.PageProjects, permission.ActionView) {
		t.Errorf("Expected the grant to be replaced, got %v", stored.PagePermissions)
	}

	rec, _ = env.do(t, http.MethodPut, "/api/delegates/"+env.delegate.ID+"/disable", coreToken, map[string]string{"reason": "left"})
	expectStatus(t, rec, http.StatusOK)

	rec, body = env.do(t, http.MethodGet, "/api/my-permissions", delegateToken, nil)
	expectStatus(t, rec, http.StatusForbidden)
	if body.Error != common.ErrCodeNotAdmin {
		t.Errorf("Expected a disabled delegate to be refused, got %s", body.Error)
	}

	rec, _ = env.do(t, http.MethodPut, "/api/delegates/"+env.delegate.ID+"/enable", coreToken, nil)
	expectStatus(t, rec, http.StatusOK)
	rec, _ = env.do(t, http.MethodGet, "/api/my-permissions", delegateToken, nil)
	expectStatus(t, rec, http.StatusOK)

	rec, _ = env.do(t, http.MethodDelete, "/api/delegates/"+env.delegate.ID, coreToken, nil)
	expectStatus(t, rec, http.StatusOK)
	if env.subAdmins.Count() != 0 {
		t.Errorf("Expected the delegate to be deleted")
	}
}

func TestContent_PublicReadsAndCoreWrites(t *testing.T) {
	env := newTestEnv(t)
	env.docs.Put("projects", "p2", map[string]any{"title": "Second", "order": 2})
	env.docs.Put("projects", "p1", map[string]any{"title": "First", "order": 1})

	rec, body := env.do(t, http.MethodGet, "/api/projects", "", nil)
	expectStatus(t, rec, http.StatusOK)
	list := decodeData[[]map[string]any](t, body)
	if len(list) != 2 || list[0]["title"] != "First" {
		t.Errorf("Expected projects in order, got %v", list)
	}

	rec, _ = env.do(t, http.MethodGet, "/api/projects/missing", "", nil)
	expectStatus(t, rec, http.StatusNotFound)

	rec, body = env.do(t, http.MethodPost, "/api/projects", coreToken, map[string]any{"title": "Third"})
	expectStatus(t, rec, http.StatusCreated)
	id, _ := decodeData[map[string]any](t, body)["id"].(string)
	if id == "" {
		t.Fatal("Expected the created document id")
	}

	rec, _ = env.do(t, http.MethodPut, "/api/projects/"+id, coreToken, map[string]any{"title": "Third, renamed"})
	expectStatus(t, rec, http.StatusOK)
	doc, _ := env.docs.Get(context.Background(), "projects", id)
	if doc["title"] != "Third, renamed" {
		t.Errorf("Expected the update to apply, got %v", doc["title"])
	}

	rec, _ = env.do(t, http.MethodDelete, "/api/projects/"+id, coreToken, nil)
	expectStatus(t, rec, http.StatusOK)

	rec, _ = env.do(t, http.MethodPost, "/api/projects", "", map[string]any{"title": "anonymous"})
	expectStatus(t, rec, http.StatusUnauthorized)

	rec, _ = env.do(t, http.MethodGet, "/api/messages", "", nil)
	expectStatus(t, rec, http.StatusUnauthorized)
	rec, _ = env.do(t, http.MethodGet, "/api/messages", delegateToken, nil)
	expectStatus(t, rec, http.StatusForbidden)
	rec, _ = env.do(t, http.MethodGet, "/api/messages", coreToken, nil)
	expectStatus(t, rec, http.StatusOK)

	if got := len(env.uow.EventTypes()); got != 3 {
		t.Errorf("Expected three content events, got %d", got)
	}
}

func TestContent_DelegateWrites(t *testing.T) {
	env := newTestEnv(t)
	env.docs.Put("projects", "p1", map[string]any{"title": "First"})
	env.docs.Put("skills", "s1", map[string]any{"name": "Go"})

	rec, _ := env.do(t, http.MethodPost, "/api/projects", delegateToken, map[string]any{"title": "Mine"})
	expectStatus(t, rec, http.StatusCreated)

	rec, body := env.do(t, http.MethodPut, "/api/projects/p1", delegateToken, map[string]any{"title": "Changed"})
	expectStatus(t, rec, http.StatusForbidden)
	if body.Error != common.ErrCodeRequiresApproval {
		t.Errorf("Expected REQUIRES_APPROVAL, got %s", body.Error)
	}
	if hints := decodeData[map[string]any](t, body); hints["requiresApproval"] != true {
		t.Errorf("Expected approval hints, got %v", hints)
	}

	rec, body = env.do(t, http.MethodPost, "/api/skills", delegateToken, map[string]any{"name": "Rust"})
	expectStatus(t, rec, http.StatusForbidden)
	if body.Error != common.ErrCodeAccessDenied {
		t.Errorf("Expected ACCESS_DENIED without CREATE, got %s", body.Error)
	}

	doc, _ := env.docs.Get(context.Background(), "projects", "p1")
	if doc["title"] != "First" {
		t.Errorf("Refused write must not apply, got %v", doc["title"])
	}
}

func TestContent_AutoEnqueueAndApproval(t *testing.T) {
	env := newTestEnv(t, func(d *Dependencies) { d.AutoEnqueue = true })
	env.docs.Put("projects", "p1", map[string]any{"title": "First"})

	rec, body := env.do(t, http.MethodPut, "/api/projects/p1", delegateToken, map[string]any{"title": "Changed"})
	expectStatus(t, rec, http.StatusAccepted)
	pendingID := decodeData[map[string]string](t, body)["pendingRequestId"]
	if pendingID == "" {
		t.Fatal("Expected a pending request id")
	}

	rec, body = env.do(t, http.MethodPut, "/api/projects/p1", delegateToken, map[string]any{"title": "Again"})
	expectStatus(t, rec, http.StatusConflict)
	if body.Error != common.ErrCodeDuplicateRequest {
		t.Errorf("Expected DUPLICATE_REQUEST, got %s", body.Error)
	}

	doc, _ := env.docs.Get(context.Background(), "projects", "p1")
	if doc["title"] != "First" {
		t.Fatalf("Enqueued write must wait for approval, got %v", doc["title"])
	}

	rec, body = env.do(t, http.MethodPut, "/api/pending-requests/"+pendingID+"/process", coreToken,
		map[string]string{"status": "approved"})
	expectStatus(t, rec, http.StatusOK)
	processed := decodeData[map[string]any](t, body)
	action, _ := processed["actionResult"].(map[string]any)
	if action["success"] != true {
		t.Errorf("Expected a successful execution, got %v", processed["actionResult"])
	}

	doc, _ = env.docs.Get(context.Background(), "projects", "p1")
	if doc["title"] != "Changed" {
		t.Errorf("Expected the approved change to apply, got %v", doc["title"])
	}
	if len(env.notifier.Decisions()) != 1 {
		t.Errorf("Expected a decision notification")
	}

	rec, body = env.do(t, http.MethodPut, "/api/pending-requests/"+pendingID+"/process", coreToken,
		map[string]string{"status": "rejected"})
	expectStatus(t, rec, http.StatusConflict)
	if body.Error != common.ErrCodeAlreadyProcessed {
		t.Errorf("Expected ALREADY_PROCESSED, got %s", body.Error)
	}
}

func TestPendingRequests(t *testing.T) {
	env := newTestEnv(t)

	submit := map[string]any{
		"action":       "DELETE",
		"resourceType": "project",
		"resourceId":   "p1",
		"page":         "projects",
		"data":         map[string]any{},
	}
	rec, body := env.do(t, http.MethodPost, "/api/pending-requests", delegateToken, submit)
	expectStatus(t, rec, http.StatusCreated)
	id, _ := decodeData[map[string]any](t, body)["id"].(string)

	rec, _ = env.do(t, http.MethodPost, "/api/pending-requests", coreToken, submit)
	expectStatus(t, rec, http.StatusForbidden)

	rec, body = env.do(t, http.MethodGet, "/api/pending-requests/mine", delegateToken, nil)
	expectStatus(t, rec, http.StatusOK)
	if mine := decodeData[[]map[string]any](t, body); len(mine) != 1 {
		t.Errorf("Expected one own request, got %d", len(mine))
	}

	rec, _ = env.do(t, http.MethodGet, "/api/pending-requests", delegateToken, nil)
	expectStatus(t, rec, http.StatusForbidden)

	rec, body = env.do(t, http.MethodGet, "/api/pending-requests?status=pending", coreToken, nil)
	expectStatus(t, rec, http.StatusOK)
	if all := decodeData[[]map[string]any](t, body); len(all) != 1 {
		t.Errorf("Expected one pending request, got %d", len(all))
	}

	rec, body = env.do(t, http.MethodGet, "/api/pending-requests/stats", coreToken, nil)
	expectStatus(t, rec, http.StatusOK)
	if stats := decodeData[map[string]any](t, body); stats["pending"] != float64(1) {
		t.Errorf("Expected one pending in stats, got %v", stats)
	}

	rec, _ = env.do(t, http.MethodGet, "/api/pending-requests/"+id, delegateToken, nil)
	expectStatus(t, rec, http.StatusOK)

	rec, _ = env.do(t, http.MethodDelete, "/api/pending-requests/"+id, delegateToken, nil)
	expectStatus(t, rec, http.StatusOK)
	if _, ok := env.requests.Get(id); ok {
		t.Error("Expected the request to be deleted")
	}
}

func TestProfile(t *testing.T) {
	env := newTestEnv(t)

	rec, body := env.do(t, http.MethodGet, "/api/profile", "", nil)
	expectStatus(t, rec, http.StatusOK)
	if string(body.Data) != "{}" {
		t.Errorf("Expected an empty profile, got %s", body.Data)
	}

	rec, _ = env.do(t, http.MethodPut, "/api/profile", coreToken, map[string]any{
		"section": "about",
		"fields":  map[string]any{"headline": "Engineer"},
	})
	expectStatus(t, rec, http.StatusOK)

	rec, body = env.do(t, http.MethodGet, "/api/profile", "", nil)
	expectStatus(t, rec, http.StatusOK)
	profile := decodeData[map[string]any](t, body)
	if about, _ := profile["about"].(map[string]any); about["headline"] != "Engineer" {
		t.Errorf("Expected the about section, got %v", profile)
	}

	rec, body = env.do(t, http.MethodPut, "/api/profile", delegateToken, map[string]any{"section": "about", "value": "x"})
	expectStatus(t, rec, http.StatusForbidden)
	if body.Error != common.ErrCodeRequiresApproval {
		t.Errorf("Expected REQUIRES_APPROVAL for a delegate, got %s", body.Error)
	}
}

func TestContact_RateLimited(t *testing.T) {
	env := newTestEnv(t, func(d *Dependencies) {
		d.PublicLimiter = ratelimit.NewLocalLimiter(1, time.Minute)
	})
	msg := map[string]string{"name": "Visitor", "email": "visitor@example.com", "message": "Hi"}

	rec, body := env.do(t, http.MethodPost, "/api/contact", "", msg)
	expectStatus(t, rec, http.StatusCreated)
	id := decodeData[map[string]string](t, body)["id"]
	if _, err := env.docs.Get(context.Background(), "messages", id); err != nil {
		t.Errorf("Expected the message to be stored: %v", err)
	}

	rec, body = env.do(t, http.MethodPost, "/api/contact", "", msg)
	expectStatus(t, rec, http.StatusTooManyRequests)
	if body.Error != common.ErrCodeRateLimited || rec.Header().Get("Retry-After") == "" {
		t.Errorf("Expected RATE_LIMITED with Retry-After, got %+v", body)
	}
}

func TestContact_Validation(t *testing.T) {
	env := newTestEnv(t)

	rec, body := env.do(t, http.MethodPost, "/api/contact", "", map[string]string{"name": "Visitor"})
	expectStatus(t, rec, http.StatusBadRequest)
	if body.Success {
		t.Error("Expected a failure envelope")
	}
}

func multipartUpload(t *testing.T, token, contentType string, payload []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="file"; filename="avatar.png"`)
	header.Set("Content-Type", contentType)
	part, err := mw.CreatePart(header)
	if err != nil {
		t.Fatalf("create part: %v", err)
	}
	part.Write(payload)
	mw.WriteField("folder", "profile")
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/uploads", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func TestUploads(t *testing.T) {
	env := newTestEnv(t)

	rec, body := env.serve(t, multipartUpload(t, coreToken, "image/png", []byte("png-bytes")))
	expectStatus(t, rec, http.StatusCreated)
	stored := decodeData[map[string]string](t, body)
	data, ok := env.files.Object(stored["storageId"])
	if !ok || string(data) != "png-bytes" || stored["url"] == "" {
		t.Errorf("Expected the file to be stored, got %v", stored)
	}

	rec, _ = env.serve(t, multipartUpload(t, coreToken, "application/x-msdownload", []byte("exe")))
	expectStatus(t, rec, http.StatusBadRequest)

	// The delegate has no CREATE on profile
	rec, _ = env.serve(t, multipartUpload(t, delegateToken, "image/png", []byte("png-bytes")))
	expectStatus(t, rec, http.StatusForbidden)
}

func TestUploadFolder(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"", defaultUploadFolder, true},
		{"profile/", "profile", true},
		{"a/../b", "b", true},
		{"../etc", "", false},
		{"a/../../etc", "", false},
	}
	for _, tt := range tests {
		got, ok := uploadFolder(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("uploadFolder(%q) = %q, %v; want %q, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestAuditLogs(t *testing.T) {
	env := newTestEnv(t)

	rec, _ := env.do(t, http.MethodPost, "/api/projects", coreToken, map[string]any{"title": "Audited"})
	expectStatus(t, rec, http.StatusCreated)

	rec, body := env.do(t, http.MethodGet, "/api/audit-logs?limit=10", coreToken, nil)
	expectStatus(t, rec, http.StatusOK)
	logs := decodeData[[]map[string]any](t, body)
	if len(logs) != 1 || logs[0]["principalId"] != "core-sub" {
		t.Fatalf("Expected one audit entry by the core administrator, got %v", logs)
	}

	rec, _ = env.do(t, http.MethodGet, "/api/audit-logs/"+logs[0]["id"].(string), coreToken, nil)
	expectStatus(t, rec, http.StatusOK)

	rec, _ = env.do(t, http.MethodGet, "/api/audit-logs?limit=abc", coreToken, nil)
	expectStatus(t, rec, http.StatusBadRequest)

	rec, _ = env.do(t, http.MethodGet, "/api/audit-logs", delegateToken, nil)
	expectStatus(t, rec, http.StatusForbidden)
}

func TestMaxBodySize(t *testing.T) {
	env := newTestEnv(t, func(d *Dependencies) { d.MaxBodyBytes = 64 })

	big := map[string]string{"name": "Visitor", "email": "visitor@example.com", "message": string(bytes.Repeat([]byte("x"), 256))}
	rec, body := env.do(t, http.MethodPost, "/api/contact", "", big)
	expectStatus(t, rec, http.StatusBadRequest)
	if body.Message != "Request body is too large" {
		t.Errorf("Expected the size error, got %q", body.Message)
	}
}
