// Package permission defines the closed set of grants a user can hold and
// their textual encoding in the users table.
package permission

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Permission names a single grant.
type Permission string

const (
	ViewUsers            Permission = "ViewUsers"
	ManageUsers          Permission = "ManageUsers"
	ManagePages          Permission = "ManagePages"
	ViewUnpublishedPosts Permission = "ViewUnpublishedPosts"
	ManagePosts          Permission = "ManagePosts"
)

// All lists every permission in declaration order.
var All = []Permission{ViewUsers, ManageUsers, ManagePages, ViewUnpublishedPosts, ManagePosts}

// Valid reports whether p is one of the declared permissions.
func (p Permission) Valid() bool {
	for _, known := range All {
		if p == known {
			return true
		}
	}
	return false
}

func (p Permission) String() string { return string(p) }

// Parse converts a name into a Permission.
func Parse(name string) (Permission, error) {
	p := Permission(name)
	if !p.Valid() {
		return "", fmt.Errorf("unknown permission %q", name)
	}
	return p, nil
}

// Set is the collection of permissions held by one user. A permission is either
// held or not; Set never carries duplicates once built through Unique or Scan.
type Set []Permission

// Unique returns the permissions with duplicates removed, keeping first occurrences.
func Unique(perms ...Permission) Set {
	out := make(Set, 0, len(perms))
	seen := make(map[Permission]struct{}, len(perms))
	for _, p := range perms {
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}

// Has reports whether p is in the set.
func (s Set) Has(p Permission) bool {
	for _, held := range s {
		if held == p {
			return true
		}
	}
	return false
}

// Value stores the set as a JSON array of names, e.g. ["ViewUsers","ManageUsers"].
func (s Set) Value() (driver.Value, error) {
	if s == nil {
		s = Set{}
	}
	for _, p := range s {
		if !p.Valid() {
			return nil, fmt.Errorf("cannot store unknown permission %q", string(p))
		}
	}
	b, err := json.Marshal([]Permission(s))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan reads a set written by Value.
func (s *Set) Scan(src interface{}) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*s = Set{}
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("cannot scan %T into permission.Set", src)
	}
	if len(raw) == 0 {
		*s = Set{}
		return nil
	}

	var names []string
	if err := json.Unmarshal(raw, &names); err != nil {
		return fmt.Errorf("decode permission set: %w", err)
	}
	perms := make([]Permission, 0, len(names))
	for _, name := range names {
		p, err := Parse(name)
		if err != nil {
			return err
		}
		perms = append(perms, p)
	}
	*s = Unique(perms...)
	return nil
}
