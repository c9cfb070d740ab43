// Package access gates entry to protected views. Every protected entry point
// consults the same capability check, keyed by resource and identity role;
// there are no per-view conditionals. Enforcement authority stays with the
// server; this gate only decides what the client should render.
package access

import (
	_ "embed"
	"fmt"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"

	"github.com/outreachworks/followup/internal/session"
	"github.com/outreachworks/followup/pkg/sdk"
)

//go:embed model.conf
var casbinModelContent string

// Resources gated by the guard.
const (
	// ResourcePersons is the default protected view: the caller's persons.
	ResourcePersons = "persons"

	// ResourceReports covers report submission and per-person history.
	ResourceReports = "reports"

	// ResourceAdmin covers the cross-user admin views.
	ResourceAdmin = "admin"
)

// ActionEnter is the single action of the view-gating policy.
const ActionEnter = "enter"

// Decision is the outcome of a guard check.
type Decision int

const (
	// Wait means the session is still loading; render a neutral loading
	// state instead of redirecting prematurely.
	Wait Decision = iota

	// Allow admits the caller to the view.
	Allow

	// RedirectToLogin means the caller is not authenticated.
	RedirectToLogin

	// RedirectToDefault means the caller is authenticated but lacks the role
	// for this view; send them to the default protected view, not to login.
	RedirectToDefault
)

func (d Decision) String() string {
	switch d {
	case Wait:
		return "wait"
	case Allow:
		return "allow"
	case RedirectToLogin:
		return "redirect-to-login"
	case RedirectToDefault:
		return "redirect-to-default"
	default:
		return fmt.Sprintf("decision(%d)", int(d))
	}
}

// Guard evaluates view access synchronously against the session store.
type Guard struct {
	enforcer *casbin.Enforcer
	sessions *session.Store
}

// NewGuard creates the guard with the embedded RBAC model. Policies are
// static: both roles may enter the person and report views, only admin may
// enter the admin views.
func NewGuard(sessions *session.Store) (*Guard, error) {
	m, err := model.NewModelFromString(casbinModelContent)
	if err != nil {
		return nil, fmt.Errorf("parse access model: %w", err)
	}

	enforcer, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("create access enforcer: %w", err)
	}

	policies := [][]string{
		{string(sdk.RoleUser), ResourcePersons, ActionEnter},
		{string(sdk.RoleUser), ResourceReports, ActionEnter},
		{string(sdk.RoleAdmin), ResourceAdmin, ActionEnter},
	}
	if _, err := enforcer.AddPolicies(policies); err != nil {
		return nil, fmt.Errorf("load access policies: %w", err)
	}
	// Admin inherits the user views.
	if _, err := enforcer.AddGroupingPolicy(string(sdk.RoleAdmin), string(sdk.RoleUser)); err != nil {
		return nil, fmt.Errorf("load role hierarchy: %w", err)
	}

	return &Guard{enforcer: enforcer, sessions: sessions}, nil
}

// Check decides whether the current session may enter the resource.
func (g *Guard) Check(resource string) Decision {
	s := g.sessions.Read()

	if s.Loading {
		return Wait
	}
	if !s.Authenticated || s.Identity == nil {
		return RedirectToLogin
	}

	ok, err := g.enforcer.Enforce(string(s.Identity.Role), resource, ActionEnter)
	if err != nil || !ok {
		return RedirectToDefault
	}
	return Allow
}

// CanEnterProtected reports whether the session may enter any protected view.
func (g *Guard) CanEnterProtected() bool {
	return g.Check(ResourcePersons) == Allow
}

// CanEnterAdmin reports whether the identity may enter the admin views. A
// false result for an authenticated identity means redirect to the default
// protected view, not to login.
func (g *Guard) CanEnterAdmin(identity *sdk.Identity) bool {
	if identity == nil {
		return false
	}
	ok, err := g.enforcer.Enforce(string(identity.Role), ResourceAdmin, ActionEnter)
	return err == nil && ok
}
