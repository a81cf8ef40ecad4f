package rbac

const (
	PermResultsView   = "results:view"
	PermResultsExport = "results:export"
	PermUsersManage   = "users:manage"

	// PermAll grants every permission.
	PermAll = "*"
)

// RolePermissions is the default policy. Students are anonymous and never
// carry a role.
var RolePermissions = map[string][]string{
	"teacher": {PermResultsView, PermResultsExport},
	"admin":   {PermAll},
}

// Checker answers permission questions against a role policy.
type Checker struct {
	policy map[string][]string
}

// NewChecker uses RolePermissions when policy is nil.
func NewChecker(policy map[string][]string) *Checker {
	if policy == nil {
		policy = RolePermissions
	}
	return &Checker{policy: policy}
}

func (c *Checker) Has(role, perm string) bool {
	for _, p := range c.policy[role] {
		if p == PermAll || p == perm {
			return true
		}
	}
	return false
}

func (c *Checker) Any(role string, perms ...string) bool {
	for _, p := range perms {
		if c.Has(role, p) {
			return true
		}
	}
	return false
}
