// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package authz decides which role may perform which action on which
// resource. Policies live in memory and are seeded at startup.
package authz

import (
	"fmt"
	"strings"

	"github.com/casbin/casbin/v3"
	"github.com/casbin/casbin/v3/model"
	"github.com/casbin/casbin/v3/util"

	"portfolio/internal/models"
)

// Resources.
const (
	ObjBlogs      = "blogs"
	ObjPosts      = "posts"
	ObjProjects   = "projects"
	ObjCategories = "categories"
	ObjComments   = "comments"
)

// Actions.
const (
	ActWrite    = "write"
	ActCreate   = "create"
	ActModerate = "moderate"
	ActDelete   = "delete"
)

const rolePrefix = "role:"

const rbacModel = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = (g(r.sub, p.sub) || r.sub == p.sub) && keyMatch2(r.obj, p.obj) && (r.act == p.act || p.act == "*")
`

// Policy is one allow rule.
type Policy struct {
	Subject string `json:"subject"`
	Object  string `json:"object"`
	Action  string `json:"action"`
}

// DefaultPolicies returns the built-in rules.
func DefaultPolicies() []Policy {
	admin := Subject(models.RoleAdministrator)
	mod := Subject(models.RoleModerator)
	author := Subject(models.RoleAuthor)

	var out []Policy
	for _, obj := range []string{ObjBlogs, ObjPosts, ObjProjects, ObjCategories} {
		out = append(out, Policy{admin, obj, ActWrite})
	}
	out = append(out,
		Policy{mod, ObjComments, ActModerate},
		Policy{mod, ObjComments, ActDelete},
		Policy{author, ObjComments, ActCreate},
	)
	return out
}

// roleLinks are the inheritance edges: the first role gets every right of
// the second.
var roleLinks = [][2]models.Role{
	{models.RoleAdministrator, models.RoleModerator},
	{models.RoleModerator, models.RoleAuthor},
}

// Service wraps a casbin enforcer.
type Service struct {
	enforcer *casbin.SyncedEnforcer
}

// NewService builds an enforcer seeded with policies. A nil policies uses
// DefaultPolicies.
func NewService(policies []Policy) (*Service, error) {
	m, err := model.NewModelFromString(rbacModel)
	if err != nil {
		return nil, fmt.Errorf("load authz model: %w", err)
	}
	enforcer, err := casbin.NewSyncedEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("init authz enforcer: %w", err)
	}
	enforcer.AddFunction("keyMatch2", util.KeyMatch2Func)

	if policies == nil {
		policies = DefaultPolicies()
	}
	rules := make([][]string, 0, len(policies))
	for _, p := range policies {
		rules = append(rules, []string{p.Subject, p.Object, p.Action})
	}
	if _, err := enforcer.AddPolicies(rules); err != nil {
		return nil, fmt.Errorf("seed authz policies: %w", err)
	}

	for _, link := range roleLinks {
		if _, err := enforcer.AddGroupingPolicy(Subject(link[0]), Subject(link[1])); err != nil {
			return nil, fmt.Errorf("seed authz role link: %w", err)
		}
	}
	return &Service{enforcer: enforcer}, nil
}

// Subject is the casbin subject of a role.
func Subject(role models.Role) string {
	return rolePrefix + string(role)
}

// Enforce reports whether sub may perform act on obj.
func (s *Service) Enforce(sub, obj, act string) (bool, error) {
	if s == nil || s.enforcer == nil {
		return false, fmt.Errorf("authz service unavailable")
	}
	return s.enforcer.Enforce(strings.TrimSpace(sub), strings.TrimSpace(obj), strings.ToLower(strings.TrimSpace(act)))
}

// Can reports whether role may perform act on obj. Unknown roles are
// treated as authors.
func (s *Service) Can(role models.Role, obj, act string) (bool, error) {
	switch role {
	case models.RoleAdministrator, models.RoleModerator, models.RoleAuthor:
	default:
		role = models.RoleAuthor
	}
	return s.Enforce(Subject(role), obj, act)
}

// Policies lists the rules granted directly to role.
func (s *Service) Policies(role models.Role) ([]Policy, error) {
	if s == nil || s.enforcer == nil {
		return nil, fmt.Errorf("authz service unavailable")
	}
	rules, err := s.enforcer.GetFilteredPolicy(0, Subject(role))
	if err != nil {
		return nil, fmt.Errorf("list policies: %w", err)
	}
	out := make([]Policy, 0, len(rules))
	for _, r := range rules {
		if len(r) >= 3 {
			out = append(out, Policy{Subject: r[0], Object: r[1], Action: r[2]})
		}
	}
	return out, nil
}
