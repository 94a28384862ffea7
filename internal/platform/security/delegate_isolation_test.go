package security

import (
	"context"
	"errors"
	"testing"

	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/authz"
	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/common"
	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/execution"
	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/identity"
	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/pendingrequest"
	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/pendingrequest/operations"
	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/permission"
	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/platformtest"
	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/store"
	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/subadmin"
)

/*
THREAT MODEL: Delegated Administrators

A delegate acts on the portfolio only through the grant the core
administrator gave them:

1. NO DIRECT EDITS: UPDATE and DELETE by a delegate never apply without approval
2. REQUEST ISOLATION: A delegate only sees and withdraws their own requests
3. REVOCATION: A disabled delegate loses access on the next request
4. CORE IDENTITY: Only the configured email is the core administrator

Attack vectors being tested:
- Editing existing content with only a delegated grant
- Reading or deleting another delegate's pending request
- Reusing a token after the account was disabled
- Case and whitespace variations of the core email
- Approving the same request twice to run its effect twice
*/

const coreEmail = "owner@example.com"

type staticVerifier map[string]identity.Identity

func (v staticVerifier) Verify(_ context.Context, token string) (identity.Identity, error) {
	if id, ok := v[token]; ok {
		return id, nil
	}
	return identity.Identity{}, errors.New("unknown token")
}

func delegateRole(s *subadmin.SubAdmin) authz.Role {
	return authz.Role{
		Kind:     permission.RoleDelegated,
		Identity: identity.Identity{Email: s.Email},
		Profile:  s,
	}
}

// TestDelegate_NeverEditsDirectly verifies that holding every permission bit
// still routes UPDATE and DELETE through approval.
func TestDelegate_NeverEditsDirectly(t *testing.T) {
	role := delegateRole(&subadmin.SubAdmin{
		ID:              "s1",
		Email:           "delegate@example.com",
		IsActive:        true,
		PagePermissions: permission.FullPermissions(),
	})

	for _, page := range permission.AllPages {
		for _, action := range []permission.Action{permission.ActionUpdate, permission.ActionDelete} {
			d := authz.Decide(role, page, action)
			if d.Outcome != permission.RequiresApproval {
				t.Errorf("%s %s: expected approval, got %v", action, page, d.Outcome)
			}
		}
	}
}

// TestDelegate_RequestIsolation verifies that delegates cannot read or delete
// each other's requests.
func TestDelegate_RequestIsolation(t *testing.T) {
	ctx := context.Background()
	repo := platformtest.NewPendingRequests()
	uow := common.NewMemoryUnitOfWork()

	alice := &subadmin.SubAdmin{ID: "alice", Email: "alice@example.com", IsActive: true}
	mallory := &subadmin.SubAdmin{ID: "mallory", Email: "mallory@example.com", IsActive: true}

	req := repo.Seed(&pendingrequest.PendingRequest{
		SubAdminID:   alice.ID,
		Action:       "UPDATE",
		ResourceType: "project",
		ResourceID:   "p1",
		Page:         permission.PageProjects,
		Data:         map[string]any{"title": "x"},
		Status:       pendingrequest.StatusPending,
	})

	queries := operations.NewQueries(repo)
	if _, err := queries.Get(ctx, req.ID, operations.DelegateRequester(mallory)); err == nil || err.Code != common.ErrCodeAccessDenied {
		t.Errorf("Expected ACCESS_DENIED reading another delegate's request, got %v", err)
	}
	if _, err := queries.Get(ctx, req.ID, operations.DelegateRequester(alice)); err != nil {
		t.Errorf("Owner should read own request: %v", err)
	}
	if mine, _ := queries.ListMine(ctx, mallory.ID); len(mine) != 0 {
		t.Errorf("Expected no requests for another delegate, got %d", len(mine))
	}

	del := operations.NewDeleteRequestUseCase(repo, uow)
	execCtx := common.NewExecutionContext(mallory.ID)
	result := del.Execute(ctx, operations.DeleteRequestCommand{ID: req.ID}, operations.DelegateRequester(mallory), execCtx)
	if result.IsSuccess() || result.Error().Code != common.ErrCodeAccessDenied {
		t.Errorf("Expected ACCESS_DENIED deleting another delegate's request, got %v", result.Error())
	}
	if _, ok := repo.Get(req.ID); !ok {
		t.Fatal("Request must survive a foreign delete")
	}
	if len(uow.EventTypes()) != 0 {
		t.Errorf("Refused delete must not emit events, got %v", uow.EventTypes())
	}
}

// TestDelegate_RevocationIsImmediate verifies that a disabled delegate is no
// longer an administrator even with a still valid token.
func TestDelegate_RevocationIsImmediate(t *testing.T) {
	ctx := context.Background()
	subAdmins := platformtest.NewSubAdmins()
	s := subAdmins.Seed(&subadmin.SubAdmin{
		Email:           "delegate@example.com",
		IsActive:        true,
		PagePermissions: permission.DefaultPermissions(),
	})

	resolver := authz.NewResolver(staticVerifier{
		"token": {SubjectID: "sub-1", Email: "delegate@example.com"},
	}, subAdmins, coreEmail)

	role, err := resolver.Resolve(ctx, "token")
	if err != nil || !role.IsDelegated() {
		t.Fatalf("Expected a delegate, got %v %v", role.Kind, err)
	}

	stored, _ := subAdmins.FindByID(ctx, s.ID)
	stored.IsActive = false
	stored.DisabledReason = "revoked"
	if err := subAdmins.Update(ctx, stored); err != nil {
		t.Fatalf("disable: %v", err)
	}

	role, err = resolver.Resolve(ctx, "token")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if role.IsAdmin() {
		t.Error("Disabled delegate must not resolve to an administrator")
	}
}

// TestCoreIdentity_OnlyConfiguredEmail verifies core detection.
func TestCoreIdentity_OnlyConfiguredEmail(t *testing.T) {
	resolver := authz.NewResolver(staticVerifier{
		"exact":      {Email: coreEmail},
		"upper":      {Email: "  OWNER@Example.COM "},
		"lookalike":  {Email: "owner@example.com.evil.test"},
		"plus-alias": {Email: "owner+admin@example.com"},
	}, platformtest.NewSubAdmins(), coreEmail)

	tests := []struct {
		token string
		core  bool
	}{
		{"exact", true},
		{"upper", true},
		{"lookalike", false},
		{"plus-alias", false},
	}
	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			role, err := resolver.Resolve(context.Background(), tt.token)
			if err != nil {
				t.Fatalf("resolve: %v", err)
			}
			if role.IsCore() != tt.core {
				t.Errorf("Expected core=%v, got %v", tt.core, role.Kind)
			}
		})
	}
}

// TestApproval_ExecutesOnce verifies that a second decision on the same
// request is refused and the change is not applied twice.
func TestApproval_ExecutesOnce(t *testing.T) {
	ctx := context.Background()
	repo := platformtest.NewPendingRequests()
	uow := common.NewMemoryUnitOfWork()
	docs := store.NewMemoryStore()
	docs.Put("messages", "m1", map[string]any{"subject": "hello"})

	req := repo.Seed(&pendingrequest.PendingRequest{
		SubAdminID:    "s1",
		SubAdminEmail: "s1@example.com",
		Action:        "DELETE",
		ResourceType:  "message",
		ResourceID:    "m1",
		Page:          permission.PageMessages,
		Data:          map[string]any{},
		Status:        pendingrequest.StatusPending,
	})

	notifier := &platformtest.Notifier{}
	process := operations.NewProcessRequestUseCase(repo, execution.NewDispatcher(docs, platformtest.NewFiles()), uow, notifier)
	execCtx := common.NewExecutionContext("core")

	first := process.Execute(ctx, operations.ProcessRequestCommand{ID: req.ID, Status: "approved"}, execCtx)
	if first.IsFailure() {
		t.Fatalf("approve: %v", first.Error())
	}
	if _, err := docs.Get(ctx, "messages", "m1"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("Expected the message to be deleted, got %v", err)
	}

	docs.Put("messages", "m1", map[string]any{"subject": "re-created"})
	second := process.Execute(ctx, operations.ProcessRequestCommand{ID: req.ID, Status: "approved"}, execCtx)
	if second.IsSuccess() || second.Error().Code != common.ErrCodeAlreadyProcessed {
		t.Errorf("Expected ALREADY_PROCESSED, got %v", second.Error())
	}
	if _, err := docs.Get(ctx, "messages", "m1"); err != nil {
		t.Errorf("A repeated approval must not run the deletion again: %v", err)
	}
	decisions := notifier.Decisions()
	if len(decisions) != 1 {
		t.Fatalf("Expected one decision notification, got %d", len(decisions))
	}
	if decisions[0].To != "s1@example.com" || !decisions[0].Executed {
		t.Errorf("Unexpected decision notification: %+v", decisions[0])
	}
}
