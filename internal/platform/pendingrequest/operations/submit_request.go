package operations

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/common/metrics"
	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/common/repository"
	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/common"
	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/events"
	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/pendingrequest"
	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/permission"
)

// SubmitRequestCommand contains a proposed mutation
type SubmitRequestCommand struct {
	Action       string         `json:"action"`
	ResourceType string         `json:"resourceType"`
	ResourceID   string         `json:"resourceId,omitempty"`
	ResourceName string         `json:"resourceName,omitempty"`
	Page         string         `json:"page"`
	Data         map[string]any `json:"data"`
	PreviousData map[string]any `json:"previousData,omitempty"`
	Reason       string         `json:"reason,omitempty"`
}

// ToAuditJSON omits the payloads, which the request document already holds.
func (c SubmitRequestCommand) ToAuditJSON() string {
	return common.MarshalDataJSON(map[string]string{
		"action":       c.Action,
		"resourceType": c.ResourceType,
		"resourceId":   c.ResourceID,
		"page":         c.Page,
	})
}

// SubmitRequestUseCase handles a delegate proposing a change
type SubmitRequestUseCase struct {
	repo       pendingrequest.Repository
	kinds      KindRegistry
	unitOfWork common.UnitOfWork
	now        func() time.Time
}

// NewSubmitRequestUseCase creates a new SubmitRequestUseCase
func NewSubmitRequestUseCase(repo pendingrequest.Repository, kinds KindRegistry, uow common.UnitOfWork) *SubmitRequestUseCase {
	return &SubmitRequestUseCase{
		repo:       repo,
		kinds:      kinds,
		unitOfWork: uow,
		now:        time.Now,
	}
}

// Execute validates and stores the request with status pending.
func (uc *SubmitRequestUseCase) Execute(
	ctx context.Context,
	cmd SubmitRequestCommand,
	requester Requester,
	execCtx *common.ExecutionContext,
) common.Result[*pendingrequest.PendingRequest] {
	if requester.Core {
		return common.Failure[*pendingrequest.PendingRequest](
			common.ForbiddenError(common.ErrCodeAccessDenied, "The main administrator never needs approval", nil),
		)
	}
	profile := requester.Profile
	if profile == nil || !profile.IsActive {
		return common.Failure[*pendingrequest.PendingRequest](
			common.ForbiddenError(common.ErrCodeAccessDenied, "Only active sub-admins can submit requests", nil),
		)
	}

	req, ucErr := uc.build(cmd)
	if ucErr != nil {
		return common.Failure[*pendingrequest.PendingRequest](ucErr)
	}
	req.ID = uuid.NewString()
	req.SubAdminID = profile.ID
	req.SubAdminEmail = profile.Email
	req.SubAdminName = profile.Name()
	req.Status = pendingrequest.StatusPending
	req.ExecutionStatus = pendingrequest.ExecutionNone
	req.CreatedAt = uc.now()
	req.DedupeKey = pendingrequest.DedupeKey(req.SubAdminID, req.Action, req.ResourceType, req.Page, req.ResourceID)

	existing, err := uc.repo.FindPendingByDedupeKey(ctx, req.DedupeKey)
	if err != nil {
		return common.Failure[*pendingrequest.PendingRequest](common.StoreError(ctx, "check duplicate requests", err))
	}
	if existing != nil {
		return common.Failure[*pendingrequest.PendingRequest](duplicateRequest(existing.ID))
	}

	event := events.NewPendingRequestSubmitted(execCtx, req)
	result := common.CommitValue(ctx, uc.unitOfWork, req, event, cmd, func(ctx context.Context) error {
		err := uc.repo.Insert(ctx, req)
		if errors.Is(err, repository.ErrDuplicateKey) {
			return duplicateRequest("")
		}
		return err
	})
	if result.IsSuccess() {
		metrics.ApprovalSubmissions.WithLabelValues(string(req.Page), req.Action).Inc()
	}
	return result
}

func (uc *SubmitRequestUseCase) build(cmd SubmitRequestCommand) (*pendingrequest.PendingRequest, *common.UseCaseError) {
	action, err := permission.ParseAction(cmd.Action)
	if err != nil || !action.IsWrite() {
		return nil, invalid("action", "Action must be one of CREATE, UPDATE, DELETE")
	}
	page, err := permission.ParsePage(cmd.Page)
	if err != nil {
		return nil, invalid("page", "Unknown page")
	}
	resourceType := strings.TrimSpace(cmd.ResourceType)
	if resourceType == "" {
		return nil, invalid("resourceType", "Resource type is required")
	}
	if cmd.Data == nil {
		return nil, invalid("data", "Request data is required")
	}

	resourceID := strings.TrimSpace(cmd.ResourceID)
	if action != permission.ActionCreate && resourceID == "" && !uc.selfAddressed(resourceType, cmd.Data) {
		return nil, invalid("resourceId", "Resource id is required for "+action.String())
	}

	return &pendingrequest.PendingRequest{
		Action:       action.String(),
		ResourceType: resourceType,
		ResourceID:   resourceID,
		ResourceName: strings.TrimSpace(cmd.ResourceName),
		Page:         page,
		Data:         cmd.Data,
		PreviousData: cmd.PreviousData,
		Reason:       strings.TrimSpace(cmd.Reason),
	}, nil
}

// selfAddressed reports whether the payload identifies its own targets.
func (uc *SubmitRequestUseCase) selfAddressed(resourceType string, data map[string]any) bool {
	if uc.kinds != nil && uc.kinds.IsSpecial(resourceType) {
		return true
	}
	_, ok := data["ids"]
	return ok
}

func invalid(field, message string) *common.UseCaseError {
	return common.ValidationError(common.ErrCodeValidationFailed, message, map[string]any{"field": field})
}

func duplicateRequest(existingID string) *common.UseCaseError {
	var details map[string]any
	if existingID != "" {
		details = map[string]any{"existingRequestId": existingID}
	}
	return common.BusinessRuleError(common.ErrCodeDuplicateRequest,
		"A similar request is already pending approval", details)
}
