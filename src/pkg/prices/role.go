package prices

import "strings"

// Role is what a parsed value means on the tag.
type Role string

const (
	RoleItem      Role = "item_price"    // current selling price
	RoleMember    Role = "member_price"  // loyalty-card price
	RoleInitial   Role = "initial_price" // original, pre-discount price
	RoleVolume    Role = "volume"        // bundle count ("buy 2")
	RolePackaging Role = "packaging"     // packaging banner ("6 BAL")
	RoleExclVAT   Role = "price_excl_vat"
)

// Detection-class names the pipeline uses for price fields.
var roleAliases = map[string]Role{
	"item_member_price":  RoleMember,
	"item_initial_price": RoleInitial,
}

// ParseRole reads a role hint. Only the three price roles (and their
// detection-class aliases) are valid hints.
func ParseRole(s string) (role Role, ok bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if alias, found := roleAliases[s]; found {
		return alias, true
	}
	switch Role(s) {
	case RoleItem, RoleMember, RoleInitial:
		return Role(s), true
	}
	return "", false
}

// IsHint reports whether r can be passed to a rule as the role hint.
func (r Role) IsHint() bool {
	switch r {
	case RoleItem, RoleMember, RoleInitial:
		return true
	}
	return false
}

// DetectionClass returns the detection-class name of a price role, e.g.
// "item_member_price" for RoleMember. Other roles map to themselves.
func (r Role) DetectionClass() string {
	for class, role := range roleAliases {
		if role == r {
			return class
		}
	}
	return string(r)
}
