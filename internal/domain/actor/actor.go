// Package actor describes the authenticated principal that every domain operation receives explicitly.
package actor

import (
	"context"
	"strings"
)

type Role string

const (
	RoleSuperAdmin  Role = "superadmin"
	RoleAdmin       Role = "admin"
	RoleRegionAdmin Role = "region_admin"
	RoleRTOMAdmin   Role = "rtom_admin"
	RoleSupervisor  Role = "supervisor"
	RoleUploader    Role = "uploader"
	RoleCaller      Role = "caller"
)

// Actor is who is performing an operation. Region and RTOM scope the territorial admin roles.
type Actor struct {
	ID     string `json:"id"`
	Role   Role   `json:"role"`
	Region string `json:"region,omitempty"`
	RTOM   string `json:"rtom,omitempty"`
}

// System is used when authentication is switched off.
func System() Actor {
	return Actor{ID: "system", Role: RoleSuperAdmin}
}

func (a Actor) IsZero() bool {
	return a.ID == "" && a.Role == ""
}

func (a Actor) HasRole(roles ...Role) bool {
	for _, r := range roles {
		if a.Role == r {
			return true
		}
	}
	return false
}

func (a Actor) IsAdmin() bool {
	return a.HasRole(RoleSuperAdmin, RoleAdmin, RoleRegionAdmin, RoleRTOMAdmin, RoleSupervisor)
}

// Territorial reports whether the role is confined to a region or RTOM.
func (a Actor) Territorial() bool {
	return a.HasRole(RoleRegionAdmin, RoleRTOMAdmin, RoleSupervisor)
}

// CanAccess reports whether the actor's territory covers a record in region/rtom.
func (a Actor) CanAccess(region, rtom string) bool {
	switch a.Role {
	case RoleSuperAdmin, RoleAdmin:
		return true
	case RoleRegionAdmin:
		return strings.EqualFold(a.Region, region)
	case RoleRTOMAdmin, RoleSupervisor:
		return strings.EqualFold(a.RTOM, rtom)
	default:
		return false
	}
}

// Policy is a configured set of roles allowed to run an operation.
type Policy struct {
	roles map[Role]struct{}
}

func NewPolicy(roles []string) Policy {
	p := Policy{roles: make(map[Role]struct{}, len(roles))}
	for _, r := range roles {
		r = strings.ToLower(strings.TrimSpace(r))
		if r != "" {
			p.roles[Role(r)] = struct{}{}
		}
	}
	return p
}

func (p Policy) Allows(a Actor) bool {
	if a.IsZero() {
		return false
	}
	_, ok := p.roles[a.Role]
	return ok
}

type contextKey struct{}

// NewContext carries the actor from the auth middleware to the handler. Services never read it.
func NewContext(ctx context.Context, a Actor) context.Context {
	return context.WithValue(ctx, contextKey{}, a)
}

func FromContext(ctx context.Context) (Actor, bool) {
	a, ok := ctx.Value(contextKey{}).(Actor)
	return a, ok
}
