// Package operations contains the approval workflow use cases: submitting,
// deciding, executing and deleting pending requests.
package operations

import (
	"context"

	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/execution"
	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/pendingrequest"
	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/subadmin"
)

// Requester is the caller of a workflow operation as classified by the
// authorization resolver.
type Requester struct {
	Core    bool
	Profile *subadmin.SubAdmin
}

// CoreRequester returns the requester for the core administrator.
func CoreRequester() Requester {
	return Requester{Core: true}
}

// DelegateRequester returns the requester for a delegated administrator.
func DelegateRequester(profile *subadmin.SubAdmin) Requester {
	return Requester{Profile: profile}
}

// Executor applies the effect of an approved request.
type Executor interface {
	Execute(ctx context.Context, req *pendingrequest.PendingRequest) execution.Outcome
}

// KindRegistry tells which resource kinds carry their own addressing.
type KindRegistry interface {
	IsSpecial(kind string) bool
}
