package gql

import (
	"context"
	"fmt"
	"sync"

	"rps_backend/internal/common"
	"rps_backend/internal/permission"
	"rps_backend/internal/user"

	"github.com/graphql-go/graphql"
)

type requestKey struct{}

// request is the per-execution state the handler passes to resolvers: the
// viewer resolved from the session and a sink for resolver errors.
type request struct {
	viewer *user.User

	mu     sync.Mutex
	errors []error
}

func withRequest(ctx context.Context, viewer *user.User) (context.Context, *request) {
	req := &request{viewer: viewer}
	return context.WithValue(ctx, requestKey{}, req), req
}

func requestFrom(ctx context.Context) *request {
	if req, ok := ctx.Value(requestKey{}).(*request); ok {
		return req
	}
	return &request{}
}

func (r *request) record(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errors = append(r.errors, err)
}

// recorded returns the resolver errors seen so far.
func (r *request) recorded() []error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]error(nil), r.errors...)
}

// fieldError is what clients see for a failed field: the API message and code,
// never the underlying cause.
type fieldError struct {
	api *common.APIError
}

func (e *fieldError) Error() string { return e.api.Message }

func (e *fieldError) Extensions() map[string]interface{} { return e.api.Extensions() }

// guard records resolver errors and replaces them with their public form.
func guard(fn func(p graphql.ResolveParams, viewer *user.User) (interface{}, error)) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (interface{}, error) {
		req := requestFrom(p.Context)
		out, err := fn(p, req.viewer)
		if err != nil {
			req.record(err)
			return nil, &fieldError{api: common.ToAPIError(err)}
		}
		return out, nil
	}
}

type resolvers struct {
	users user.Service
}

func (r *resolvers) getMany(p graphql.ResolveParams, viewer *user.User) (interface{}, error) {
	users, err := r.users.GetMany(p.Context, viewer)
	if err != nil {
		return nil, err
	}
	out := make([]*user.User, len(users))
	for i := range users {
		out[i] = &users[i]
	}
	return out, nil
}

func (r *resolvers) get(p graphql.ResolveParams, viewer *user.User) (interface{}, error) {
	id, _ := p.Args["id"].(string)
	return r.users.Get(p.Context, viewer, id)
}

func (r *resolvers) delete(p graphql.ResolveParams, viewer *user.User) (interface{}, error) {
	id, _ := p.Args["id"].(string)
	return r.users.Delete(p.Context, viewer, id)
}

func (r *resolvers) setPermissions(p graphql.ResolveParams, viewer *user.User) (interface{}, error) {
	id, _ := p.Args["id"].(string)
	perms, err := permissionsArg(p.Args["permissions"])
	if err != nil {
		return nil, common.ErrBadRequest.WithDetails(err.Error())
	}
	return r.users.SetPermissions(p.Context, viewer, id, perms)
}

// permissionsArg converts the coerced enum list argument.
func permissionsArg(raw interface{}) ([]permission.Permission, error) {
	items, ok := raw.([]interface{})
	if !ok {
		return nil, fmt.Errorf("permissions must be a list, got %T", raw)
	}
	perms := make([]permission.Permission, 0, len(items))
	for _, item := range items {
		switch v := item.(type) {
		case permission.Permission:
			perms = append(perms, v)
		case string:
			p, err := permission.Parse(v)
			if err != nil {
				return nil, err
			}
			perms = append(perms, p)
		default:
			return nil, fmt.Errorf("unexpected permission value %T", item)
		}
	}
	return perms, nil
}
