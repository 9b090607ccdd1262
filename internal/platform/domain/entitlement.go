package domain

// Entitlement is a granted permission consulted by fine-grained guards.
// A closed enumeration so a typo'd check fails to compile instead of
// silently never matching.
type Entitlement string

const (
	EntAppUse           Entitlement = "app:use"
	EntTeacherTools     Entitlement = "teacher:tools"
	EntApproverContent  Entitlement = "approver:content"
	EntAdminUsersRead   Entitlement = "admin:users:read"
	EntAdminUsersWrite  Entitlement = "admin:users:write"
	EntAdminImpersonate Entitlement = "admin:impersonate"
)

// Capabilities are coarse booleans derived from entitlements and role for
// ergonomic gating. They are a redundant projection of the entitlement set
// and must stay consistent with it.
type Capabilities struct {
	CanUseApp             bool `json:"canUseApp"`
	CanAccessTeacherTools bool `json:"canAccessTeacherTools"`
	CanApproveContent     bool `json:"canApproveContent"`
	CanAdminUsers         bool `json:"canAdminUsers"`
	CanManageRoles        bool `json:"canManageRoles"`
	CanManageActivation   bool `json:"canManageActivation"`
	CanImpersonate        bool `json:"canImpersonate"`
}

// InfoFlags are display-only mirrors of the admin flags. They are returned
// to clients alongside entitlements but must never be used as authorization
// signals; only entitlement and capability checks gate behaviour.
type InfoFlags struct {
	IsAdmin     bool `json:"is_admin"`
	IsRootAdmin bool `json:"is_root_admin"`
}

// Grant is the full output of entitlement computation for one user.
type Grant struct {
	Entitlements []Entitlement
	Capabilities Capabilities
	Flags        InfoFlags
}

// Has reports whether the grant includes the entitlement.
func (g Grant) Has(e Entitlement) bool {
	for _, have := range g.Entitlements {
		if have == e {
			return true
		}
	}
	return false
}

// AuthContext is the request-scoped authorization state attached by the
// middleware. Computed fresh on every request, never cached.
type AuthContext struct {
	UserID        string
	Role          Role
	Active        bool
	Grant         Grant
	Impersonating bool
	ActorUserID   string
}
