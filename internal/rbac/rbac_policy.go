package rbac

import "github.com/coffeebean-kenobi/shifteditor-sub001/internal/domain"

// ModelText is the casbin model. ADMIN inherits every STAFF permission
// through the g grouping, so STAFF rules are not repeated for ADMIN.
const ModelText = `[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub) && r.obj == p.obj && (r.act == p.act || p.act == "manage")
`

type Policy struct {
	Role     string
	Resource string
	Action   string
}

// DefaultPolicies returns the built-in permission table.
func DefaultPolicies() []Policy {
	return []Policy{
		{domain.RoleStaff, domain.ResourceShift, domain.ActionRead},
		{domain.RoleStaff, domain.ResourceShiftRequest, domain.ActionRead},
		{domain.RoleStaff, domain.ResourceShiftRequest, domain.ActionCreate},
		{domain.RoleStaff, domain.ResourceShiftRequest, domain.ActionDelete},
		{domain.RoleStaff, domain.ResourceAttendance, domain.ActionRead},
		{domain.RoleStaff, domain.ResourceAttendance, domain.ActionCreate},
		{domain.RoleStaff, domain.ResourceSettings, domain.ActionRead},
		{domain.RoleStaff, domain.ResourceNotification, domain.ActionManage},

		{domain.RoleAdmin, domain.ResourceStaff, domain.ActionManage},
		{domain.RoleAdmin, domain.ResourceShift, domain.ActionManage},
		{domain.RoleAdmin, domain.ResourceShiftRequest, domain.ActionManage},
		{domain.RoleAdmin, domain.ResourceAttendance, domain.ActionManage},
		{domain.RoleAdmin, domain.ResourceSettings, domain.ActionManage},
		{domain.RoleAdmin, domain.ResourceAuditLog, domain.ActionRead},
	}
}

// DefaultRoleInheritance returns child -> parent role links.
func DefaultRoleInheritance() [][2]string {
	return [][2]string{
		{domain.RoleAdmin, domain.RoleStaff},
	}
}
