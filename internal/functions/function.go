// Package functions exposes the worker operations as POST /functions/{name} endpoints.
package functions

import (
	"context"
	"encoding/json"
	"fmt"

	"laundry-workers/internal/common/auth"
	"laundry-workers/internal/common/camunda"
	"laundry-workers/internal/common/errors"
	"laundry-workers/internal/common/validation"
)

// Function is one operation reachable over HTTP. Invoke receives the validated request body.
type Function struct {
	Name   string
	Roles  []string
	Schema *validation.Schema
	Invoke func(ctx context.Context, body []byte) (interface{}, error)
}

// Bind adapts an operation's executor. roles lists the realm roles allowed to call it; nil
// admits any authenticated caller. fill, when set, runs after decoding so the caller's identity
// can replace fields taken from the body.
func Bind[In any, Out any](name string, roles []string, schema *validation.Schema, exec camunda.Executor[In, Out], fill func(in *In, caller *auth.TokenInfo)) Function {
	return Function{
		Name:   name,
		Roles:  roles,
		Schema: schema,
		Invoke: func(ctx context.Context, body []byte) (interface{}, error) {
			var in In
			if err := json.Unmarshal(body, &in); err != nil {
				return nil, errors.NewValidationError("decode body: " + err.Error())
			}
			if fill != nil {
				caller := CallerFrom(ctx)
				if caller == nil {
					return nil, errors.NewAuthenticationError("no caller identity")
				}
				fill(&in, caller)
			}
			return exec(ctx, &in)
		},
	}
}

// authorize checks the caller against a function's roles before its body is read.
func authorize(caller *auth.TokenInfo, roles []string) error {
	if len(roles) == 0 {
		return nil
	}
	if caller == nil {
		return errors.NewAuthenticationError("no caller identity")
	}
	if !caller.HasAnyRole(roles...) {
		return errors.NewForbiddenError(fmt.Sprintf("requires one of roles %v", roles))
	}
	return nil
}

type callerKey struct{}

// WithCaller stores the authenticated caller on ctx.
func WithCaller(ctx context.Context, info *auth.TokenInfo) context.Context {
	return context.WithValue(ctx, callerKey{}, info)
}

// CallerFrom returns the authenticated caller, or nil.
func CallerFrom(ctx context.Context) *auth.TokenInfo {
	info, _ := ctx.Value(callerKey{}).(*auth.TokenInfo)
	return info
}
