package service

import "github.com/lecternhq/lectern/internal/platform/domain"

// ComputeEntitlements derives a user's full grant from role and flags. It is
// a pure function of the user record, recomputed on every request rather
// than cached, so a role change takes effect on the next request.
//
// An inactive user gets nothing, regardless of role or admin flags.
func ComputeEntitlements(u domain.User) domain.Grant {
	var g domain.Grant

	if !u.IsActive {
		return g
	}

	g.Entitlements = append(g.Entitlements, domain.EntAppUse)
	g.Capabilities.CanUseApp = true

	switch u.Role {
	case domain.RoleTeacher:
		g.Entitlements = append(g.Entitlements, domain.EntTeacherTools)
		g.Capabilities.CanAccessTeacherTools = true
	case domain.RoleApprover:
		g.Entitlements = append(g.Entitlements,
			domain.EntTeacherTools, domain.EntApproverContent)
		g.Capabilities.CanAccessTeacherTools = true
		g.Capabilities.CanApproveContent = true
	}

	// User administration is gated on the root-admin flag alone; plain
	// is_admin is informational and unlocks nothing here.
	if u.IsRootAdmin {
		g.Entitlements = append(g.Entitlements,
			domain.EntAdminUsersRead,
			domain.EntAdminUsersWrite,
			domain.EntAdminImpersonate)
		g.Capabilities.CanAdminUsers = true
		g.Capabilities.CanManageRoles = true
		g.Capabilities.CanManageActivation = true
		g.Capabilities.CanImpersonate = true
	}

	g.Flags.IsAdmin = u.IsAdmin
	g.Flags.IsRootAdmin = u.IsRootAdmin

	return g
}
