package operations

import (
	"context"

	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/common"
	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/events"
	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/permission"
	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/subadmin"
)

// UpdatePermissionsCommand replaces a delegate's page permissions
type UpdatePermissionsCommand struct {
	ID              string                     `json:"id"`
	PagePermissions permission.PagePermissions `json:"pagePermissions"`
}

// UpdatePermissionsUseCase handles replacing a delegate's grant
type UpdatePermissionsUseCase struct {
	repo       subadmin.Repository
	unitOfWork common.UnitOfWork
}

// NewUpdatePermissionsUseCase creates a new UpdatePermissionsUseCase
func NewUpdatePermissionsUseCase(repo subadmin.Repository, uow common.UnitOfWork) *UpdatePermissionsUseCase {
	return &UpdatePermissionsUseCase{repo: repo, unitOfWork: uow}
}

// Execute replaces the permissions. The new grant applies from the delegate's next request.
func (uc *UpdatePermissionsUseCase) Execute(
	ctx context.Context,
	cmd UpdatePermissionsCommand,
	execCtx *common.ExecutionContext,
) common.Result[*subadmin.SubAdmin] {
	if cmd.ID == "" {
		return common.Failure[*subadmin.SubAdmin](
			common.ValidationError(common.ErrCodeRequired, "Sub-admin ID is required", nil),
		)
	}
	if cmd.PagePermissions == nil {
		return common.Failure[*subadmin.SubAdmin](
			common.ValidationError(common.ErrCodeRequired, "pagePermissions is required", nil),
		)
	}

	existing, err := uc.repo.FindByID(ctx, cmd.ID)
	if err != nil {
		return common.Failure[*subadmin.SubAdmin](common.StoreError(ctx, "load sub-admin", err))
	}
	if existing == nil {
		return common.Failure[*subadmin.SubAdmin](
			common.NotFoundError(common.ErrCodeSubAdminNotFound, "Sub-admin not found", map[string]any{"id": cmd.ID}),
		)
	}

	existing.PagePermissions = cmd.PagePermissions

	event := events.NewSubAdminPermissionsUpdated(execCtx, existing)
	return common.CommitValue(ctx, uc.unitOfWork, existing, event, cmd, func(ctx context.Context) error {
		return uc.repo.Update(ctx, existing)
	})
}
