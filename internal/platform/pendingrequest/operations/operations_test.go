package operations

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/common"
	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/events"
	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/execution"
	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/pendingrequest"
	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/permission"
	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/platformtest"
	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/store"
	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/subadmin"
)

// scriptedExecutor returns queued outcomes and records the requests it saw.
type scriptedExecutor struct {
	outcomes []execution.Outcome
	seen     []string
}

func (e *scriptedExecutor) Execute(_ context.Context, req *pendingrequest.PendingRequest) execution.Outcome {
	e.seen = append(e.seen, req.ID)
	if len(e.outcomes) == 0 {
		return execution.Outcome{Success: true, Message: "ok"}
	}
	next := e.outcomes[0]
	e.outcomes = e.outcomes[1:]
	return next
}

func (e *scriptedExecutor) IsSpecial(kind string) bool {
	return kind == execution.KindReorder
}

type fixture struct {
	repo     *platformtest.PendingRequests
	docs     *store.MemoryStore
	notifier *platformtest.Notifier
	uow      *common.MemoryUnitOfWork
	delegate *subadmin.SubAdmin
	now      time.Time
}

func newFixture() *fixture {
	return &fixture{
		repo:     platformtest.NewPendingRequests(),
		docs:     store.NewMemoryStore(),
		notifier: &platformtest.Notifier{},
		uow:      common.NewMemoryUnitOfWork(),
		delegate: &subadmin.SubAdmin{
			ID:          "delegate-1",
			Email:       "delegate@example.com",
			DisplayName: "Dee",
			IsActive:    true,
		},
		now: time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC),
	}
}

func (f *fixture) clock() time.Time { return f.now }

func (f *fixture) submit(kinds KindRegistry) *SubmitRequestUseCase {
	uc := NewSubmitRequestUseCase(f.repo, kinds, f.uow)
	uc.now = f.clock
	return uc
}

func (f *fixture) process(executor Executor) *ProcessRequestUseCase {
	uc := NewProcessRequestUseCase(f.repo, executor, f.uow, f.notifier)
	uc.now = f.clock
	return uc
}

func (f *fixture) delegateCtx() *common.ExecutionContext {
	return common.NewExecutionContext(f.delegate.ID)
}

func coreCtx() *common.ExecutionContext {
	return common.NewExecutionContext("core-subject")
}

func (f *fixture) mustSubmit(t *testing.T, cmd SubmitRequestCommand) *pendingrequest.PendingRequest {
	t.Helper()
	result := f.submit(execution.NewDispatcher(f.docs, nil)).Execute(context.Background(), cmd, DelegateRequester(f.delegate), f.delegateCtx())
	if result.IsFailure() {
		t.Fatalf("submit: %v", result.Error())
	}
	return result.Value()
}

func updateProject(id string) SubmitRequestCommand {
	return SubmitRequestCommand{
		Action:       "update",
		ResourceType: "project",
		ResourceID:   id,
		Page:         "projects",
		Data:         map[string]any{"title": "New title"},
	}
}

func TestSubmitRequest_Success(t *testing.T) {
	f := newFixture()

	req := f.mustSubmit(t, updateProject("p1"))

	if req.Status != pendingrequest.StatusPending || req.ExecutionStatus != pendingrequest.ExecutionNone {
		t.Errorf("Unexpected state: %s/%s", req.Status, req.ExecutionStatus)
	}
	if req.Action != "UPDATE" || req.Page != permission.PageProjects {
		t.Errorf("Expected normalized action and page, got %s %s", req.Action, req.Page)
	}
	if req.SubAdminID != "delegate-1" || req.SubAdminName != "Dee" || req.SubAdminEmail != "delegate@example.com" {
		t.Errorf("Expected requester to be copied, got %+v", req)
	}
	if !req.CreatedAt.Equal(f.now) {
		t.Errorf("Expected createdAt now, got %v", req.CreatedAt)
	}
	if got := f.uow.EventTypes(); len(got) != 1 || got[0] != events.EventTypePendingRequestSubmitted {
		t.Errorf("Unexpected events: %v", got)
	}
}

func TestSubmitRequest_Duplicate(t *testing.T) {
	f := newFixture()
	first := f.mustSubmit(t, updateProject("p1"))

	result := f.submit(nil).Execute(context.Background(), updateProject("p1"), DelegateRequester(f.delegate), f.delegateCtx())
	if result.IsSuccess() {
		t.Fatal("Expected duplicate to be rejected")
	}
	if result.Error().Code != common.ErrCodeDuplicateRequest || result.Error().HTTPStatus() != http.StatusConflict {
		t.Errorf("Expected 409 DUPLICATE_REQUEST, got %v", result.Error())
	}
	if result.Error().Details["existingRequestId"] != first.ID {
		t.Errorf("Expected existing request id hint, got %v", result.Error().Details)
	}

	// A different resource id is a different request.
	f.mustSubmit(t, updateProject("p2"))
}

func TestSubmitRequest_DuplicateAfterDecisionAllowed(t *testing.T) {
	f := newFixture()
	first := f.mustSubmit(t, updateProject("p1"))

	reject := f.process(&scriptedExecutor{}).Execute(context.Background(),
		ProcessRequestCommand{ID: first.ID, Status: "rejected"}, coreCtx())
	if reject.IsFailure() {
		t.Fatalf("reject: %v", reject.Error())
	}

	f.mustSubmit(t, updateProject("p1"))
}

func TestSubmitRequest_Forbidden(t *testing.T) {
	f := newFixture()
	uc := f.submit(nil)

	result := uc.Execute(context.Background(), updateProject("p1"), CoreRequester(), coreCtx())
	if result.IsSuccess() || result.Error().HTTPStatus() != http.StatusForbidden {
		t.Errorf("Expected core submission to be forbidden, got %v", result.Error())
	}

	disabled := *f.delegate
	disabled.IsActive = false
	result = uc.Execute(context.Background(), updateProject("p1"), DelegateRequester(&disabled), f.delegateCtx())
	if result.IsSuccess() || result.Error().HTTPStatus() != http.StatusForbidden {
		t.Errorf("Expected disabled delegate to be forbidden, got %v", result.Error())
	}
}

func TestSubmitRequest_Validation(t *testing.T) {
	tests := []struct {
		name  string
		cmd   SubmitRequestCommand
		field string
	}{
		{"view action", SubmitRequestCommand{Action: "VIEW", ResourceType: "project", Page: "projects", Data: map[string]any{}}, "action"},
		{"bogus action", SubmitRequestCommand{Action: "PUBLISH", ResourceType: "project", Page: "projects", Data: map[string]any{}}, "action"},
		{"unknown page", SubmitRequestCommand{Action: "CREATE", ResourceType: "project", Page: "billing", Data: map[string]any{}}, "page"},
		{"missing type", SubmitRequestCommand{Action: "CREATE", Page: "projects", Data: map[string]any{}}, "resourceType"},
		{"missing data", SubmitRequestCommand{Action: "CREATE", ResourceType: "project", Page: "projects"}, "data"},
		{"update without id", SubmitRequestCommand{Action: "UPDATE", ResourceType: "project", Page: "projects", Data: map[string]any{}}, "resourceId"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			result := f.submit(&scriptedExecutor{}).Execute(context.Background(), tt.cmd, DelegateRequester(f.delegate), f.delegateCtx())
			if result.IsSuccess() {
				t.Fatal("Expected validation failure")
			}
			if result.Error().Code != common.ErrCodeValidationFailed {
				t.Errorf("Expected VALIDATION_FAILED, got %s", result.Error().Code)
			}
			if result.Error().Details["field"] != tt.field {
				t.Errorf("Expected field %s, got %v", tt.field, result.Error().Details)
			}
		})
	}
}

func TestSubmitRequest_SelfAddressedKinds(t *testing.T) {
	f := newFixture()
	uc := f.submit(&scriptedExecutor{})

	reorder := SubmitRequestCommand{Action: "UPDATE", ResourceType: execution.KindReorder, Page: "projects",
		Data: map[string]any{"collection": "projects", "items": []any{}}}
	if result := uc.Execute(context.Background(), reorder, DelegateRequester(f.delegate), f.delegateCtx()); result.IsFailure() {
		t.Errorf("Expected reorder without resourceId to be accepted, got %v", result.Error())
	}

	bulk := SubmitRequestCommand{Action: "DELETE", ResourceType: "message", Page: "messages",
		Data: map[string]any{"ids": []any{"m1", "m2"}}}
	if result := uc.Execute(context.Background(), bulk, DelegateRequester(f.delegate), f.delegateCtx()); result.IsFailure() {
		t.Errorf("Expected bulk delete with ids to be accepted, got %v", result.Error())
	}
}

func TestProcessRequest_ApproveExecutes(t *testing.T) {
	f := newFixture()
	f.docs.Put("projects", "p1", map[string]any{"title": "Old title", "order": 3})
	req := f.mustSubmit(t, updateProject("p1"))

	result := f.process(execution.NewDispatcher(f.docs, nil)).Execute(context.Background(),
		ProcessRequestCommand{ID: req.ID, Status: "approved"}, coreCtx())
	if result.IsFailure() {
		t.Fatalf("process: %v", result.Error())
	}

	processed := result.Value()
	if processed.ActionResult == nil || !processed.ActionResult.Success {
		t.Fatalf("Expected successful action result, got %+v", processed.ActionResult)
	}

	doc, _ := f.docs.Get(context.Background(), "projects", "p1")
	if doc["title"] != "New title" || doc["order"] != 3 {
		t.Errorf("Expected project to be updated, got %v", doc)
	}

	stored, _ := f.repo.Get(req.ID)
	if stored.Status != pendingrequest.StatusApproved || stored.ProcessedBy != "core-subject" {
		t.Errorf("Expected approved by core, got %s/%s", stored.Status, stored.ProcessedBy)
	}
	if stored.ExecutionStatus != pendingrequest.ExecutionSucceeded || stored.ExecutionAttempts != 1 {
		t.Errorf("Expected one successful execution, got %s/%d", stored.ExecutionStatus, stored.ExecutionAttempts)
	}
	if stored.ClaimedAt != nil {
		t.Error("Expected claim to be released")
	}

	want := []string{
		events.EventTypePendingRequestSubmitted,
		events.EventTypePendingRequestApproved,
		events.EventTypePendingRequestExecuted,
	}
	got := f.uow.EventTypes()
	if len(got) != len(want) {
		t.Fatalf("Expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Event %d: expected %s, got %s", i, want[i], got[i])
		}
	}

	decisions := f.notifier.Decisions()
	if len(decisions) != 1 || decisions[0].To != "delegate@example.com" || !decisions[0].Executed {
		t.Errorf("Unexpected decision notifications: %+v", decisions)
	}
}

func TestProcessRequest_IsExactlyOnce(t *testing.T) {
	f := newFixture()
	f.docs.Put("projects", "p1", map[string]any{"title": "Old"})
	req := f.mustSubmit(t, updateProject("p1"))
	executor := &scriptedExecutor{}
	uc := f.process(executor)

	first := uc.Execute(context.Background(), ProcessRequestCommand{ID: req.ID, Status: "approved"}, coreCtx())
	if first.IsFailure() {
		t.Fatalf("first process: %v", first.Error())
	}

	for _, status := range []string{"approved", "rejected"} {
		again := uc.Execute(context.Background(), ProcessRequestCommand{ID: req.ID, Status: status}, coreCtx())
		if again.IsSuccess() || again.Error().Code != common.ErrCodeAlreadyProcessed {
			t.Errorf("Expected ALREADY_PROCESSED for %s, got %v", status, again.Error())
		}
	}
	if len(executor.seen) != 1 {
		t.Errorf("Expected exactly one execution, got %d", len(executor.seen))
	}
}

func TestProcessRequest_ConcurrentDecisionLoses(t *testing.T) {
	f := newFixture()
	req := f.mustSubmit(t, updateProject("p1"))

	// Another processor decides between our read and our write.
	uc := f.process(&scriptedExecutor{})
	uc.repo = &racingRepo{PendingRequests: f.repo}

	result := uc.Execute(context.Background(), ProcessRequestCommand{ID: req.ID, Status: "approved"}, coreCtx())
	if result.IsSuccess() || result.Error().Code != common.ErrCodeAlreadyProcessed {
		t.Errorf("Expected ALREADY_PROCESSED, got %v", result.Error())
	}
}

type racingRepo struct {
	*platformtest.PendingRequests
}

func (r *racingRepo) Decide(ctx context.Context, id string, d pendingrequest.Decision) error {
	_ = r.PendingRequests.Decide(ctx, id, pendingrequest.Decision{
		Status:      pendingrequest.StatusRejected,
		ProcessedBy: "someone-else",
		ProcessedAt: d.ProcessedAt,
	})
	return r.PendingRequests.Decide(ctx, id, d)
}

func TestProcessRequest_Reject(t *testing.T) {
	f := newFixture()
	f.docs.Put("projects", "p1", map[string]any{"title": "Old"})
	req := f.mustSubmit(t, updateProject("p1"))
	executor := &scriptedExecutor{}

	result := f.process(executor).Execute(context.Background(),
		ProcessRequestCommand{ID: req.ID, Status: "REJECTED", RejectionReason: " not now "}, coreCtx())
	if result.IsFailure() {
		t.Fatalf("process: %v", result.Error())
	}
	if result.Value().ActionResult != nil {
		t.Error("Expected no action result for a rejection")
	}
	if len(executor.seen) != 0 {
		t.Error("Rejection must not execute")
	}

	stored, _ := f.repo.Get(req.ID)
	if stored.Status != pendingrequest.StatusRejected || stored.RejectionReason != "not now" {
		t.Errorf("Unexpected stored request: %+v", stored)
	}
	if stored.ExecutionStatus != pendingrequest.ExecutionNone {
		t.Errorf("Expected no execution phase, got %s", stored.ExecutionStatus)
	}
	decisions := f.notifier.Decisions()
	if len(decisions) != 1 || decisions[0].RejectionReason != "not now" {
		t.Errorf("Unexpected decision notifications: %+v", decisions)
	}
}

func TestProcessRequest_ExecutionFailureKeepsApproval(t *testing.T) {
	f := newFixture()
	req := f.mustSubmit(t, updateProject("p1"))
	executor := &scriptedExecutor{outcomes: []execution.Outcome{
		{Success: false, Message: "Target resource no longer exists", Code: common.ErrCodeExecutionFailed},
	}}

	result := f.process(executor).Execute(context.Background(),
		ProcessRequestCommand{ID: req.ID, Status: "approved"}, coreCtx())
	if result.IsFailure() {
		t.Fatalf("Expected the decision to succeed, got %v", result.Error())
	}
	action := result.Value().ActionResult
	if action == nil || action.Success || action.Code != common.ErrCodeExecutionFailed {
		t.Errorf("Expected failed action result, got %+v", action)
	}

	stored, _ := f.repo.Get(req.ID)
	if stored.Status != pendingrequest.StatusApproved {
		t.Errorf("Expected approval to stand, got %s", stored.Status)
	}
	if stored.ExecutionStatus != pendingrequest.ExecutionFailed || stored.ExecutionError != "Target resource no longer exists" {
		t.Errorf("Expected recorded failure, got %s %q", stored.ExecutionStatus, stored.ExecutionError)
	}
}

func TestProcessRequest_Validation(t *testing.T) {
	f := newFixture()
	uc := f.process(&scriptedExecutor{})

	for _, status := range []string{"", "pending", "maybe"} {
		result := uc.Execute(context.Background(), ProcessRequestCommand{ID: "x", Status: status}, coreCtx())
		if result.IsSuccess() || result.Error().Code != common.ErrCodeValidationFailed {
			t.Errorf("status %q: expected VALIDATION_FAILED, got %v", status, result.Error())
		}
	}

	result := uc.Execute(context.Background(), ProcessRequestCommand{ID: "missing", Status: "approved"}, coreCtx())
	if result.IsSuccess() || result.Error().Code != common.ErrCodeRequestNotFound {
		t.Errorf("Expected REQUEST_NOT_FOUND, got %v", result.Error())
	}
}

func TestRetryExecution(t *testing.T) {
	f := newFixture()
	req := f.mustSubmit(t, updateProject("p1"))
	executor := &scriptedExecutor{outcomes: []execution.Outcome{
		{Success: false, Message: "boom", Code: common.ErrCodeExecutionFailed},
		{Success: true, Message: "Updated project p1"},
	}}
	if result := f.process(executor).Execute(context.Background(), ProcessRequestCommand{ID: req.ID, Status: "approved"}, coreCtx()); result.IsFailure() {
		t.Fatalf("process: %v", result.Error())
	}

	retry := NewRetryExecutionUseCase(f.repo, executor, f.uow, f.notifier, time.Minute)
	retry.now = f.clock

	result := retry.Execute(context.Background(), RetryExecutionCommand{ID: req.ID}, coreCtx())
	if result.IsFailure() {
		t.Fatalf("retry: %v", result.Error())
	}
	if !result.Value().ActionResult.Success {
		t.Errorf("Expected retry to succeed, got %+v", result.Value().ActionResult)
	}

	stored, _ := f.repo.Get(req.ID)
	if stored.ExecutionStatus != pendingrequest.ExecutionSucceeded || stored.ExecutionAttempts != 2 {
		t.Errorf("Expected success on second attempt, got %s/%d", stored.ExecutionStatus, stored.ExecutionAttempts)
	}

	again := retry.Execute(context.Background(), RetryExecutionCommand{ID: req.ID}, coreCtx())
	if again.IsSuccess() || again.Error().Code != common.ErrCodeInvalidState {
		t.Errorf("Expected INVALID_STATE after success, got %v", again.Error())
	}
}

func TestRetryExecution_NotApproved(t *testing.T) {
	f := newFixture()
	req := f.mustSubmit(t, updateProject("p1"))
	retry := NewRetryExecutionUseCase(f.repo, &scriptedExecutor{}, f.uow, f.notifier, 0)

	result := retry.Execute(context.Background(), RetryExecutionCommand{ID: req.ID}, coreCtx())
	if result.IsSuccess() || result.Error().Code != common.ErrCodeInvalidState {
		t.Errorf("Expected INVALID_STATE, got %v", result.Error())
	}
}

func TestRetryExecution_ClaimedElsewhere(t *testing.T) {
	f := newFixture()
	claimed := f.now.Add(-10 * time.Second)
	processed := f.now.Add(-time.Minute)
	f.repo.Seed(&pendingrequest.PendingRequest{
		ID:              "r1",
		Status:          pendingrequest.StatusApproved,
		ExecutionStatus: pendingrequest.ExecutionPending,
		ProcessedAt:     &processed,
		ClaimedAt:       &claimed,
	})
	retry := NewRetryExecutionUseCase(f.repo, &scriptedExecutor{}, f.uow, f.notifier, time.Minute)
	retry.now = f.clock

	result := retry.Execute(context.Background(), RetryExecutionCommand{ID: "r1"}, coreCtx())
	if result.IsSuccess() || result.Error().Message != "Execution is already in progress" {
		t.Errorf("Expected in-progress conflict, got %v", result.Error())
	}
}

func TestDeleteRequest(t *testing.T) {
	f := newFixture()
	uc := NewDeleteRequestUseCase(f.repo, f.uow)
	other := &subadmin.SubAdmin{ID: "delegate-2", Email: "other@example.com", IsActive: true}

	own := f.mustSubmit(t, updateProject("p1"))

	result := uc.Execute(context.Background(), DeleteRequestCommand{ID: own.ID}, DelegateRequester(other), f.delegateCtx())
	if result.IsSuccess() || result.Error().HTTPStatus() != http.StatusForbidden {
		t.Errorf("Expected 403 for another delegate's request, got %v", result.Error())
	}

	result = uc.Execute(context.Background(), DeleteRequestCommand{ID: own.ID}, DelegateRequester(f.delegate), f.delegateCtx())
	if result.IsFailure() {
		t.Fatalf("Expected owner to delete pending request, got %v", result.Error())
	}
	if _, ok := f.repo.Get(own.ID); ok {
		t.Error("Expected request to be deleted")
	}

	decided := f.mustSubmit(t, updateProject("p2"))
	if r := f.process(&scriptedExecutor{}).Execute(context.Background(), ProcessRequestCommand{ID: decided.ID, Status: "rejected"}, coreCtx()); r.IsFailure() {
		t.Fatalf("reject: %v", r.Error())
	}
	result = uc.Execute(context.Background(), DeleteRequestCommand{ID: decided.ID}, DelegateRequester(f.delegate), f.delegateCtx())
	if result.IsSuccess() || result.Error().HTTPStatus() != http.StatusForbidden {
		t.Errorf("Expected 403 for decided request, got %v", result.Error())
	}

	result = uc.Execute(context.Background(), DeleteRequestCommand{ID: decided.ID}, CoreRequester(), coreCtx())
	if result.IsFailure() {
		t.Errorf("Expected core to delete any request, got %v", result.Error())
	}

	result = uc.Execute(context.Background(), DeleteRequestCommand{ID: decided.ID}, CoreRequester(), coreCtx())
	if result.IsSuccess() || result.Error().Code != common.ErrCodeRequestNotFound {
		t.Errorf("Expected REQUEST_NOT_FOUND, got %v", result.Error())
	}
}

func TestQueries(t *testing.T) {
	f := newFixture()
	first := f.mustSubmit(t, updateProject("p1"))
	f.now = f.now.Add(time.Minute)
	second := f.mustSubmit(t, SubmitRequestCommand{Action: "DELETE", ResourceType: "faq", ResourceID: "f1", Page: "faqs", Data: map[string]any{}})
	if r := f.process(&scriptedExecutor{outcomes: []execution.Outcome{{Success: false, Message: "x"}}}).Execute(
		context.Background(), ProcessRequestCommand{ID: first.ID, Status: "approved"}, coreCtx()); r.IsFailure() {
		t.Fatalf("approve: %v", r.Error())
	}
	f.repo.Seed(&pendingrequest.PendingRequest{ID: "foreign", SubAdminID: "delegate-2", Status: pendingrequest.StatusPending, Action: "CREATE", Page: permission.PageSkills})

	q := NewQueries(f.repo)
	ctx := context.Background()

	all, _ := q.List(ctx, "")
	if len(all) != 3 {
		t.Errorf("Expected 3 requests, got %d", len(all))
	}
	pending, _ := q.List(ctx, "pending")
	if len(pending) != 2 {
		t.Errorf("Expected 2 pending, got %d", len(pending))
	}
	if _, ucErr := q.List(ctx, "archived"); ucErr == nil {
		t.Error("Expected error for unknown status")
	}

	mine, _ := q.ListMine(ctx, f.delegate.ID)
	if len(mine) != 2 || mine[0].ID != second.ID {
		t.Errorf("Expected own requests newest first, got %+v", mine)
	}

	if _, ucErr := q.Get(ctx, "foreign", DelegateRequester(f.delegate)); ucErr == nil || ucErr.HTTPStatus() != http.StatusForbidden {
		t.Errorf("Expected 403 reading another delegate's request, got %v", ucErr)
	}
	if got, ucErr := q.Get(ctx, first.ID, CoreRequester()); ucErr != nil || got.Status != pendingrequest.StatusApproved {
		t.Errorf("Expected core to read approved request, got %v %v", got, ucErr)
	}

	stats, _ := q.Stats(ctx)
	if stats.Total != 3 || stats.Pending != 2 || stats.Approved != 1 || stats.ExecutionFailed != 1 {
		t.Errorf("Unexpected stats: %+v", stats)
	}
	if stats.ByPage["projects"] != 1 || stats.ByAction["DELETE"] != 1 {
		t.Errorf("Unexpected breakdown: %+v", stats)
	}
}

func TestQueries_StoreFailure(t *testing.T) {
	f := newFixture()
	f.repo.Err = errors.New("timeout")

	if _, ucErr := NewQueries(f.repo).Stats(context.Background()); ucErr == nil || ucErr.HTTPStatus() != http.StatusBadGateway {
		t.Errorf("Expected 502, got %v", ucErr)
	}
}
