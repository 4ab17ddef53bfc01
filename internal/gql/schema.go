// Package gql exposes the user service as a GraphQL schema.
package gql

import (
	"fmt"

	"rps_backend/internal/permission"
	"rps_backend/internal/user"

	"github.com/graphql-go/graphql"
)

var permissionEnum = newPermissionEnum()

func newPermissionEnum() *graphql.Enum {
	values := graphql.EnumValueConfigMap{}
	for _, p := range permission.All {
		values[string(p)] = &graphql.EnumValueConfig{Value: p}
	}
	return graphql.NewEnum(graphql.EnumConfig{
		Name:        "Permission",
		Description: "A grant a user may hold.",
		Values:      values,
	})
}

var userType = graphql.NewObject(graphql.ObjectConfig{
	Name:        "User",
	Description: "A person who has signed in with Google.",
	Fields: graphql.Fields{
		"id":          userField(graphql.String, "Google account subject.", func(u *user.User) interface{} { return u.ID }),
		"permissions": userField(graphql.NewList(graphql.NewNonNull(permissionEnum)), "", permissionsOf),
		"email":       userField(graphql.String, "", func(u *user.User) interface{} { return u.Email }),
		"name":        userField(graphql.String, "", func(u *user.User) interface{} { return u.Name }),
		"picture":     userField(graphql.String, "Profile picture URL.", func(u *user.User) interface{} { return u.Picture }),
		"givenName":   userField(graphql.String, "", func(u *user.User) interface{} { return u.GivenName }),
		"familyName":  userField(graphql.String, "", func(u *user.User) interface{} { return u.FamilyName }),
		"locale":      userField(graphql.String, "", func(u *user.User) interface{} { return u.Locale }),
	},
})

func permissionsOf(u *user.User) interface{} {
	if u.Permissions == nil {
		return permission.Set{}
	}
	return u.Permissions
}

// userField declares a non-null field read from the *user.User source.
func userField(t graphql.Output, description string, get func(u *user.User) interface{}) *graphql.Field {
	return &graphql.Field{
		Type:        graphql.NewNonNull(t),
		Description: description,
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			u, ok := p.Source.(*user.User)
			if !ok {
				return nil, fmt.Errorf("unexpected User source %T", p.Source)
			}
			return get(u), nil
		},
	}
}

// NewSchema builds the Query and Mutation roots over users.
func NewSchema(users user.Service) (graphql.Schema, error) {
	r := &resolvers{users: users}

	idArg := &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)}

	query := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"getMany": &graphql.Field{
				Type:        graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(userType))),
				Description: "All users. Requires ViewUsers.",
				Resolve:     guard(r.getMany),
			},
			"get": &graphql.Field{
				Type:        graphql.NewNonNull(userType),
				Description: "One user by ID. Requires ViewUsers.",
				Args:        graphql.FieldConfigArgument{"id": idArg},
				Resolve:     guard(r.get),
			},
		},
	})

	mutation := graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"delete": &graphql.Field{
				Type:        graphql.NewNonNull(userType),
				Description: "Deletes a user and returns it. Requires ManageUsers.",
				Args:        graphql.FieldConfigArgument{"id": idArg},
				Resolve:     guard(r.delete),
			},
			"setPermissions": &graphql.Field{
				Type:        graphql.NewNonNull(userType),
				Description: "Replaces a user's permissions. Requires ManageUsers.",
				Args: graphql.FieldConfigArgument{
					"id": idArg,
					"permissions": &graphql.ArgumentConfig{
						Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(permissionEnum))),
					},
				},
				Resolve: guard(r.setPermissions),
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query:    query,
		Mutation: mutation,
	})
}
