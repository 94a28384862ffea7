package events

import (
	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/common"
	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/pendingrequest"
)

const aggregatePendingRequest = "pending_request"

// requestData is the payload shared by pending request events
type requestData struct {
	RequestID    string `json:"requestId"`
	SubAdminID   string `json:"subAdminId"`
	Action       string `json:"action"`
	ResourceType string `json:"resourceType"`
	ResourceID   string `json:"resourceId,omitempty"`
	Page         string `json:"page"`
}

func newRequestData(r *pendingrequest.PendingRequest) requestData {
	return requestData{
		RequestID:    r.ID,
		SubAdminID:   r.SubAdminID,
		Action:       r.Action,
		ResourceType: r.ResourceType,
		ResourceID:   r.ResourceID,
		Page:         string(r.Page),
	}
}

// PendingRequestSubmitted is emitted when a delegate proposes a change
type PendingRequestSubmitted struct {
	common.BaseDomainEvent
	requestData
}

func (e *PendingRequestSubmitted) ToDataJSON() string {
	return common.MarshalDataJSON(e.requestData)
}

func NewPendingRequestSubmitted(ctx *common.ExecutionContext, r *pendingrequest.PendingRequest) *PendingRequestSubmitted {
	return &PendingRequestSubmitted{
		BaseDomainEvent: newBase(ctx, EventTypePendingRequestSubmitted, aggregatePendingRequest, r.ID),
		requestData:     newRequestData(r),
	}
}

// PendingRequestApproved is emitted when the core administrator approves a request
type PendingRequestApproved struct {
	common.BaseDomainEvent
	requestData
}

func (e *PendingRequestApproved) ToDataJSON() string {
	return common.MarshalDataJSON(e.requestData)
}

func NewPendingRequestApproved(ctx *common.ExecutionContext, r *pendingrequest.PendingRequest) *PendingRequestApproved {
	return &PendingRequestApproved{
		BaseDomainEvent: newBase(ctx, EventTypePendingRequestApproved, aggregatePendingRequest, r.ID),
		requestData:     newRequestData(r),
	}
}

// PendingRequestRejected is emitted when the core administrator rejects a request
type PendingRequestRejected struct {
	common.BaseDomainEvent
	requestData
	RejectionReason string `json:"rejectionReason,omitempty"`
}

func (e *PendingRequestRejected) ToDataJSON() string {
	return common.MarshalDataJSON(struct {
		requestData
		RejectionReason string `json:"rejectionReason,omitempty"`
	}{e.requestData, e.RejectionReason})
}

func NewPendingRequestRejected(ctx *common.ExecutionContext, r *pendingrequest.PendingRequest, reason string) *PendingRequestRejected {
	return &PendingRequestRejected{
		BaseDomainEvent: newBase(ctx, EventTypePendingRequestRejected, aggregatePendingRequest, r.ID),
		requestData:     newRequestData(r),
		RejectionReason: reason,
	}
}

// PendingRequestExecuted records one execution attempt of an approved request
type PendingRequestExecuted struct {
	common.BaseDomainEvent
	requestData
	Success bool   `json:"success"`
	Message string `json:"message"`
	Attempt int    `json:"attempt"`
}

func (e *PendingRequestExecuted) ToDataJSON() string {
	return common.MarshalDataJSON(struct {
		requestData
		Success bool   `json:"success"`
		Message string `json:"message"`
		Attempt int    `json:"attempt"`
	}{e.requestData, e.Success, e.Message, e.Attempt})
}

func NewPendingRequestExecuted(ctx *common.ExecutionContext, r *pendingrequest.PendingRequest, success bool, message string) *PendingRequestExecuted {
	return &PendingRequestExecuted{
		BaseDomainEvent: newBase(ctx, EventTypePendingRequestExecuted, aggregatePendingRequest, r.ID),
		requestData:     newRequestData(r),
		Success:         success,
		Message:         message,
		Attempt:         r.ExecutionAttempts + 1,
	}
}

// PendingRequestDeleted is emitted when a request is removed
type PendingRequestDeleted struct {
	common.BaseDomainEvent
	requestData
	Status string `json:"status"`
}

func (e *PendingRequestDeleted) ToDataJSON() string {
	return common.MarshalDataJSON(struct {
		requestData
		Status string `json:"status"`
	}{e.requestData, e.Status})
}

func NewPendingRequestDeleted(ctx *common.ExecutionContext, r *pendingrequest.PendingRequest) *PendingRequestDeleted {
	return &PendingRequestDeleted{
		BaseDomainEvent: newBase(ctx, EventTypePendingRequestDeleted, aggregatePendingRequest, r.ID),
		requestData:     newRequestData(r),
		Status:          string(r.Status),
	}
}
