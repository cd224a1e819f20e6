// Package rbac holds the static role tables and the permission enforcer.
// Both are loaded once at startup and are read-only afterwards, so request
// handlers consult them without locking.
package rbac

import (
	_ "embed"
	"fmt"
	"sort"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"

	"github.com/hintwise/hintgate/internal/config"
)

//go:embed model.conf
var rbacModelContent string

// methodRank fixes a stable presentation order for permission lists.
var methodRank = map[string]int{
	"GET":    0,
	"POST":   1,
	"PUT":    2,
	"DELETE": 3,
}

// Registry maps principals to roles and roles to the HTTP methods they may
// invoke. The principal map is an explicit allow-list with a default role;
// the permission map is evaluated by a Casbin enforcer built from the
// embedded model.
type Registry struct {
	enforcer       casbin.IEnforcer
	principalRoles map[string]string
	defaultRole    string
}

// NewRegistry builds the registry from startup configuration.
func NewRegistry(cfg config.RolesConfig) (*Registry, error) {
	m, err := model.NewModelFromString(rbacModelContent)
	if err != nil {
		return nil, fmt.Errorf("parse rbac model: %w", err)
	}

	enforcer, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("create rbac enforcer: %w", err)
	}

	for role, methods := range cfg.Permissions {
		for _, method := range methods {
			if _, err := enforcer.AddPolicy(role, method); err != nil {
				return nil, fmt.Errorf("add policy %s/%s: %w", role, method, err)
			}
		}
	}

	principalRoles := make(map[string]string, len(cfg.PrincipalRoles))
	for pid, role := range cfg.PrincipalRoles {
		principalRoles[pid] = role
	}

	return &Registry{
		enforcer:       enforcer,
		principalRoles: principalRoles,
		defaultRole:    cfg.DefaultRole,
	}, nil
}

// Resolve maps a principal identifier to its role, falling back to the
// default role for principals not listed. Total over all inputs.
func (r *Registry) Resolve(pid string) string {
	if role, ok := r.principalRoles[pid]; ok {
		return role
	}
	return r.defaultRole
}

// Allowed reports whether the role may invoke the HTTP method.
func (r *Registry) Allowed(role, method string) (bool, error) {
	allowed, err := r.enforcer.Enforce(role, method)
	if err != nil {
		return false, fmt.Errorf("enforce %s/%s: %w", role, method, err)
	}
	return allowed, nil
}

// AllowedMethods returns the methods the role may invoke, read back from the
// live policy so denial responses always reflect what is actually enforced.
func (r *Registry) AllowedMethods(role string) []string {
	policies, err := r.enforcer.GetFilteredPolicy(0, role)
	if err != nil {
		return nil
	}

	methods := make([]string, 0, len(policies))
	for _, policy := range policies {
		if len(policy) > 1 {
			methods = append(methods, policy[1])
		}
	}
	sort.Slice(methods, func(i, j int) bool {
		return methodRank[methods[i]] < methodRank[methods[j]]
	})
	return methods
}

// DefaultRole returns the role assigned to unlisted principals.
func (r *Registry) DefaultRole() string {
	return r.defaultRole
}
