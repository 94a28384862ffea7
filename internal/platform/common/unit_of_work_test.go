package common

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/common/repository"
)

type testEvent struct {
	BaseDomainEvent
}

type CreateThingCommand struct {
	Name  string `json:"name"`
	Token string `json:"token"`
}

func (c CreateThingCommand) ToAuditJSON() string {
	return MarshalDataJSON(map[string]string{"name": c.Name})
}

func newTestEvent() *testEvent {
	ec := NewExecutionContext("admin-1")
	return &testEvent{BaseDomainEvent: NewBaseDomainEvent(ec, "admin:thing:created", "admin.sub_admin.abc")}
}

func TestMemoryUnitOfWork_CommitRecordsEventAndAudit(t *testing.T) {
	uow := NewMemoryUnitOfWork()
	persisted := false

	result := uow.Commit(context.Background(), newTestEvent(), CreateThingCommand{Name: "x", Token: "secret"}, func(ctx context.Context) error {
		persisted = true
		return nil
	})

	if !result.IsSuccess() {
		t.Fatalf("Expected success, got %v", result.Error())
	}
	if !persisted {
		t.Error("Expected persist func to run")
	}
	if got := uow.EventTypes(); len(got) != 1 || got[0] != "admin:thing:created" {
		t.Errorf("Unexpected events: %v", got)
	}

	entries := uow.AuditEntries()
	if len(entries) != 1 {
		t.Fatalf("Expected 1 audit entry, got %d", len(entries))
	}
	entry := entries[0]
	if entry.EntityType != "SubAdmin" {
		t.Errorf("Expected entity type SubAdmin, got %q", entry.EntityType)
	}
	if entry.EntityID != "abc" {
		t.Errorf("Expected entity id abc, got %q", entry.EntityID)
	}
	if entry.Operation != "CreateThingCommand" {
		t.Errorf("Expected operation CreateThingCommand, got %q", entry.Operation)
	}
	if entry.OperationJSON != `{"name":"x"}` {
		t.Errorf("Expected redacted audit JSON, got %s", entry.OperationJSON)
	}
	if entry.PrincipalID != "admin-1" {
		t.Errorf("Expected principal admin-1, got %q", entry.PrincipalID)
	}
}

func TestMemoryUnitOfWork_PersistUseCaseErrorIsReturned(t *testing.T) {
	uow := NewMemoryUnitOfWork()

	result := uow.Commit(context.Background(), newTestEvent(), CreateThingCommand{}, func(ctx context.Context) error {
		return BusinessRuleError(ErrCodeAlreadyProcessed, "already processed", nil)
	})

	if result.IsSuccess() {
		t.Fatal("Expected failure")
	}
	if result.Error().Code != ErrCodeAlreadyProcessed {
		t.Errorf("Expected ALREADY_PROCESSED, got %s", result.Error().Code)
	}
	if len(uow.Events()) != 0 {
		t.Error("Expected no events on failed commit")
	}
}

func TestCommitFailure_Classification(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantCode   string
		wantStatus int
	}{
		{"duplicate key", repository.ErrDuplicateKey, ErrCodeDuplicateKey, http.StatusConflict},
		{"not found", repository.ErrNotFound, ErrCodeEntityMissing, http.StatusNotFound},
		{"other", errors.New("socket closed"), ErrCodeCommitFailed, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ucErr := commitFailure(newTestEvent(), tt.err)
			if ucErr.Code != tt.wantCode {
				t.Errorf("Expected code %s, got %s", tt.wantCode, ucErr.Code)
			}
			if ucErr.HTTPStatus() != tt.wantStatus {
				t.Errorf("Expected status %d, got %d", tt.wantStatus, ucErr.HTTPStatus())
			}
			if tt.name == "other" && ucErr.Message != "Failed to save changes" {
				t.Errorf("Internal error text must not leak, got %q", ucErr.Message)
			}
		})
	}
}

func TestCommitValue_MapsSuccess(t *testing.T) {
	uow := NewMemoryUnitOfWork()

	result := CommitValue(context.Background(), uow, "value", newTestEvent(), CreateThingCommand{}, nil)
	if !result.IsSuccess() || result.Value() != "value" {
		t.Errorf("Expected success with value, got %+v", result)
	}

	uow.FailWith(errors.New("boom"))
	result = CommitValue(context.Background(), uow, "value", newTestEvent(), CreateThingCommand{}, nil)
	if result.IsSuccess() {
		t.Error("Expected failure after FailWith")
	}
}

func TestErrorKind_HTTPStatus(t *testing.T) {
	tests := []struct {
		kind ErrorKind
		want int
	}{
		{ErrorKindValidation, http.StatusBadRequest},
		{ErrorKindUnauthenticated, http.StatusUnauthorized},
		{ErrorKindForbidden, http.StatusForbidden},
		{ErrorKindNotFound, http.StatusNotFound},
		{ErrorKindBusinessRule, http.StatusConflict},
		{ErrorKindGone, http.StatusGone},
		{ErrorKindUpstream, http.StatusBadGateway},
		{ErrorKindInternal, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := tt.kind.HTTPStatus(); got != tt.want {
			t.Errorf("%s: expected %d, got %d", tt.kind, tt.want, got)
		}
	}
}
