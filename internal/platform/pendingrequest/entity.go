// Package pendingrequest holds write proposals from delegated administrators
// that wait for a decision by the core administrator.
//
// A request is decided exactly once. Approval is followed by an execution
// phase whose progress is persisted separately (ExecutionStatus), so a failed
// execution never reverts the decision and can be retried.
package pendingrequest

import (
	"strings"
	"time"

	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/permission"
)

// Status is the decision state of a request.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// ParseStatus returns the status named s, or false.
func ParseStatus(s string) (Status, bool) {
	switch Status(s) {
	case StatusPending, StatusApproved, StatusRejected:
		return Status(s), true
	}
	return "", false
}

// ExecutionStatus tracks the side effect of an approved request.
type ExecutionStatus string

const (
	ExecutionNone      ExecutionStatus = "none"
	ExecutionPending   ExecutionStatus = "pending"
	ExecutionSucceeded ExecutionStatus = "succeeded"
	ExecutionFailed    ExecutionStatus = "failed"
)

// PendingRequest is a proposed mutation awaiting a decision.
type PendingRequest struct {
	ID              string          `bson:"_id" json:"id"`
	SubAdminID      string          `bson:"subAdminId" json:"subAdminId"`
	SubAdminEmail   string          `bson:"subAdminEmail" json:"subAdminEmail"`
	SubAdminName    string          `bson:"subAdminName" json:"subAdminName"`
	Action          string          `bson:"action" json:"action"`
	ResourceType    string          `bson:"resourceType" json:"resourceType"`
	ResourceID      string          `bson:"resourceId,omitempty" json:"resourceId,omitempty"`
	ResourceName    string          `bson:"resourceName,omitempty" json:"resourceName,omitempty"`
	Page            permission.Page `bson:"page" json:"page"`
	Data            map[string]any  `bson:"data" json:"data"`
	PreviousData    map[string]any  `bson:"previousData,omitempty" json:"previousData,omitempty"`
	Reason          string          `bson:"reason,omitempty" json:"reason,omitempty"`
	Status          Status          `bson:"status" json:"status"`
	CreatedAt       time.Time       `bson:"createdAt" json:"createdAt"`
	ProcessedAt     *time.Time      `bson:"processedAt,omitempty" json:"processedAt,omitempty"`
	ProcessedBy     string          `bson:"processedBy,omitempty" json:"processedBy,omitempty"`
	RejectionReason string          `bson:"rejectionReason,omitempty" json:"rejectionReason,omitempty"`
	DedupeKey       string          `bson:"dedupeKey" json:"-"`

	ExecutionStatus   ExecutionStatus `bson:"executionStatus" json:"executionStatus"`
	ExecutionAttempts int             `bson:"executionAttempts" json:"executionAttempts"`
	ExecutionError    string          `bson:"executionError,omitempty" json:"executionError,omitempty"`
	ExecutionMessage  string          `bson:"executionMessage,omitempty" json:"executionMessage,omitempty"`
	ExecutedAt        *time.Time      `bson:"executedAt,omitempty" json:"executedAt,omitempty"`
	ClaimedAt         *time.Time      `bson:"executionClaimedAt,omitempty" json:"-"`
}

// DedupeKey identifies requests that may not be pending at the same time.
func DedupeKey(subAdminID, action, resourceType string, page permission.Page, resourceID string) string {
	return strings.Join([]string{subAdminID, action, resourceType, string(page), resourceID}, "|")
}

// Executable reports whether the execution phase may (re)run.
func (r *PendingRequest) Executable() bool {
	return r.Status == StatusApproved &&
		(r.ExecutionStatus == ExecutionPending || r.ExecutionStatus == ExecutionFailed)
}

// Decision is the state change applied by processing a request.
type Decision struct {
	Status          Status
	ProcessedBy     string
	ProcessedAt     time.Time
	RejectionReason string
}

// ExecutionResult is the outcome of one execution attempt.
type ExecutionResult struct {
	Succeeded bool
	Message   string
	Error     string
	At        time.Time
}

// Stats is the dashboard projection over all requests.
type Stats struct {
	Total           int64            `json:"total"`
	Pending         int64            `json:"pending"`
	Approved        int64            `json:"approved"`
	Rejected        int64            `json:"rejected"`
	ExecutionFailed int64            `json:"executionFailed"`
	ByPage          map[string]int64 `json:"byPage"`
	ByAction        map[string]int64 `json:"byAction"`
}

// BacklogQuery selects approved requests whose execution should be retried.
type BacklogQuery struct {
	// PendingBefore selects executions still pending that were claimed before this time.
	PendingBefore time.Time
	// MaxAttempts excludes failed executions that have used up their attempts.
	MaxAttempts int
	Limit       int64
}
